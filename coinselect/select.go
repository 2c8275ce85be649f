package coinselect

import (
	"cmp"
	"fmt"
	"math/bits"
	"slices"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// TokenSelection is the result of SelectTokenUtxos.
type TokenSelection struct {
	Selected    []*tx.UTXO
	TotalAtoms  uint64
	ChangeAtoms uint64
}

// FundingPlan is the XEC side of a transaction: which plain UTXOs fund it and
// whether a change output is created.
type FundingPlan struct {
	Selected      []*tx.UTXO
	InputSats     uint64 // selected plus fixed inputs
	ChangeAmount  uint64
	IncludeChange bool
	FeeSats       uint64
	TxBytes       uint32
}

// SatsRequest describes everything in the transaction except the funding
// inputs and the change output.
type SatsRequest struct {
	FixedOutputsSats uint64 // total value of non-change outputs
	NumFixedOutputs  int    // P2PKH-sized non-change outputs
	NumFixedInputs   int    // P2PKH-sized inputs already spent by the transaction
	FixedInputsSats  uint64 // value of inputs already spent by the transaction
	ExtraBytes       int    // bytes outside the P2PKH model (OP_RETURN, covenant inputs)
	FeeRate          uint64 // sat/kB, 0 for tx.DefaultFeeRate
	Dust             uint64 // 0 for tx.DustLimit
}

// SelectTokenUtxos picks token UTXOs of tokenID, largest first, until their
// atoms reach targetAtoms. Mint batons are never selected. Equal amounts keep
// their input order.
func SelectTokenUtxos(utxos []*tx.UTXO, tokenID string, targetAtoms uint64) (*TokenSelection, error) {
	if targetAtoms == 0 {
		return nil, fmt.Errorf("%w: zero token target", ErrInvalidRequest)
	}
	var candidates []*tx.UTXO
	for _, u := range utxos {
		if u != nil && u.Token != nil && u.Token.TokenID == tokenID && !u.Token.IsMintBaton {
			candidates = append(candidates, u)
		}
	}
	slices.SortStableFunc(candidates, func(a, b *tx.UTXO) int {
		return cmp.Compare(b.Token.Atoms, a.Token.Atoms)
	})

	var total uint64
	for i, u := range candidates {
		total = saturatingAdd(total, u.Token.Atoms)
		if total >= targetAtoms {
			return &TokenSelection{
				Selected:    candidates[:i+1],
				TotalAtoms:  total,
				ChangeAtoms: total - targetAtoms,
			}, nil
		}
	}
	return nil, &InsufficientFundsError{Kind: KindToken, Need: targetAtoms, Have: total}
}

// SelectSats picks plain UTXOs, largest first, until the transaction is
// funded. After each addition it prefers a change output, emitted once the
// change would be at least dust, and otherwise settles without change once
// the inputs cover outputs plus fee. Change below dust is never produced.
func SelectSats(utxos []*tx.UTXO, req SatsRequest) (*FundingPlan, error) {
	if req.NumFixedOutputs < 0 || req.NumFixedInputs < 0 || req.ExtraBytes < 0 {
		return nil, fmt.Errorf("%w: negative size field", ErrInvalidRequest)
	}
	dust := req.Dust
	if dust == 0 {
		dust = tx.DustLimit
	}
	plain := sortedPlain(utxos)

	total := req.FixedInputsSats
	start := 1
	if req.NumFixedInputs > 0 || req.FixedInputsSats > 0 {
		start = 0
	}
	var need uint64
	for k := start; k <= len(plain); k++ {
		if k > 0 {
			total = saturatingAdd(total, plain[k-1].Value)
		}
		numInputs := req.NumFixedInputs + k

		sizeChange := tx.EstimateTxSize(numInputs, req.NumFixedOutputs+1, req.ExtraBytes)
		feeChange := tx.EstimateFee(sizeChange, req.FeeRate)
		if spend := saturatingAdd(req.FixedOutputsSats, feeChange); total >= spend && total-spend >= dust {
			return &FundingPlan{
				Selected:      plain[:k],
				InputSats:     total,
				ChangeAmount:  total - spend,
				IncludeChange: true,
				FeeSats:       feeChange,
				TxBytes:       uint32(sizeChange),
			}, nil
		}

		sizeNoChange := tx.EstimateTxSize(numInputs, req.NumFixedOutputs, req.ExtraBytes)
		feeNoChange := tx.EstimateFee(sizeNoChange, req.FeeRate)
		need = saturatingAdd(req.FixedOutputsSats, feeNoChange)
		if total >= need {
			return &FundingPlan{
				Selected:  plain[:k],
				InputSats: total,
				FeeSats:   feeNoChange,
				TxBytes:   uint32(sizeNoChange),
			}, nil
		}
	}
	if need == 0 {
		need = saturatingAdd(req.FixedOutputsSats, tx.EstimateFeeFor(req.NumFixedInputs+1, req.NumFixedOutputs, req.ExtraBytes, req.FeeRate))
	}
	return nil, &InsufficientFundsError{Kind: KindXEC, Need: need, Have: total}
}

// SelectTarget is plain target-sum selection: largest plain UTXOs first until
// their value reaches targetSats.
func SelectTarget(utxos []*tx.UTXO, targetSats uint64) ([]*tx.UTXO, uint64, error) {
	if targetSats == 0 {
		return nil, 0, fmt.Errorf("%w: zero sats target", ErrInvalidRequest)
	}
	plain := sortedPlain(utxos)
	var total uint64
	for i, u := range plain {
		total = saturatingAdd(total, u.Value)
		if total >= targetSats {
			return plain[:i+1], total, nil
		}
	}
	return nil, total, &InsufficientFundsError{Kind: KindXEC, Need: targetSats, Have: total}
}

// TotalSats sums the value of utxos.
func TotalSats(utxos []*tx.UTXO) uint64 {
	var total uint64
	for _, u := range utxos {
		total = saturatingAdd(total, u.Value)
	}
	return total
}

func sortedPlain(utxos []*tx.UTXO) []*tx.UTXO {
	var plain []*tx.UTXO
	for _, u := range utxos {
		if u != nil && u.IsPlain() {
			plain = append(plain, u)
		}
	}
	slices.SortStableFunc(plain, func(a, b *tx.UTXO) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return plain
}

func saturatingAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return ^uint64(0)
	}
	return sum
}
