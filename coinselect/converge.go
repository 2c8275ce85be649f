package coinselect

import (
	"fmt"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// MaxFeeIterations bounds the fee fixed-point search in ConvergeFee.
const MaxFeeIterations = 5

// ConvergeRequest describes a plain XEC send.
type ConvergeRequest struct {
	AmountSats     uint64 // paid to the recipient
	ServiceFeeSats uint64 // paid to a second output when non-zero
	MessageBytes   int    // serialized size of the OP_RETURN output, 0 without a message
	FeeRate        uint64 // sat/kB, 0 for tx.DefaultFeeRate
	MinFee         uint64 // starting fee guess
	Dust           uint64 // 0 for tx.DustLimit
}

func (r ConvergeRequest) numOutputs() int {
	if r.ServiceFeeSats > 0 {
		return 2
	}
	return 1
}

// plan settles change for a concrete selection. ok is false when total does
// not cover the outputs plus the fee for this input count.
func (r ConvergeRequest) plan(selected []*tx.UTXO, total uint64) (*FundingPlan, bool) {
	dust := r.Dust
	if dust == 0 {
		dust = tx.DustLimit
	}
	base := saturatingAdd(r.AmountSats, r.ServiceFeeSats)

	sizeChange := tx.EstimateTxSize(len(selected), r.numOutputs()+1, r.MessageBytes)
	feeChange := tx.EstimateFee(sizeChange, r.FeeRate)
	if spend := saturatingAdd(base, feeChange); total >= spend && total-spend >= dust {
		return &FundingPlan{
			Selected:      selected,
			InputSats:     total,
			ChangeAmount:  total - spend,
			IncludeChange: true,
			FeeSats:       feeChange,
			TxBytes:       uint32(sizeChange),
		}, true
	}

	size := tx.EstimateTxSize(len(selected), r.numOutputs(), r.MessageBytes)
	fee := tx.EstimateFee(size, r.FeeRate)
	plan := &FundingPlan{Selected: selected, InputSats: total, FeeSats: fee, TxBytes: uint32(size)}
	return plan, total >= saturatingAdd(base, fee)
}

// ConvergeFee funds an XEC send whose fee depends on how many inputs get
// selected. Starting from MinFee it selects for amount+serviceFee+fee,
// re-estimates the fee from the resulting input and output counts, and stops
// at a fixed point or after MaxFeeIterations. A final selection with the
// settled fee produces the plan, so FeeSats always equals the estimate for
// the returned input and output counts.
func ConvergeFee(utxos []*tx.UTXO, req ConvergeRequest) (*FundingPlan, error) {
	if req.AmountSats == 0 {
		return nil, fmt.Errorf("%w: zero amount", ErrInvalidRequest)
	}
	if req.MessageBytes < 0 {
		return nil, fmt.Errorf("%w: negative message size", ErrInvalidRequest)
	}
	base := saturatingAdd(req.AmountSats, req.ServiceFeeSats)

	fee := req.MinFee
	for i := 0; i < MaxFeeIterations; i++ {
		selected, total, err := SelectTarget(utxos, saturatingAdd(base, fee))
		if err != nil {
			return nil, err
		}
		p, _ := req.plan(selected, total)
		if p.FeeSats == fee {
			break
		}
		fee = p.FeeSats
	}

	// Final selection. Each retry raises the target to the fee the current
	// selection needs, so the selection only grows and the loop ends.
	for attempt := 0; attempt <= len(utxos); attempt++ {
		selected, total, err := SelectTarget(utxos, saturatingAdd(base, fee))
		if err != nil {
			return nil, err
		}
		p, ok := req.plan(selected, total)
		if ok {
			return p, nil
		}
		fee = p.FeeSats
	}
	return nil, &InsufficientFundsError{Kind: KindXEC, Need: saturatingAdd(base, fee), Have: TotalSats(utxos)}
}
