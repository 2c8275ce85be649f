package offer

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/xolosArmy/RMZWallet-sub000/coinselect"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// draft is a transaction before funding: the inputs and outputs the operation
// requires. Funding inputs follow the draft inputs and change follows the
// draft outputs.
type draft struct {
	inputs   []tx.Input
	outputs  []tx.Output
	lockTime uint32
}

// fund selects plain wallet UTXOs for d and returns the complete input and
// output lists. XEC change is paid to the owner.
func (e *Engine) fund(d draft, utxos []*tx.UTXO, o *owner) ([]tx.Input, []tx.Output, *coinselect.FundingPlan, error) {
	extra := outputBytes(d.outputs)
	var fixedSats uint64
	for i, in := range d.inputs {
		n, err := inputBytes(in)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("offer: measure input %d: %w", i, err)
		}
		extra += n
		fixedSats += in.UTXO.Value
	}
	plan, err := coinselect.SelectSats(utxos, coinselect.SatsRequest{
		FixedOutputsSats: sumValues(d.outputs),
		FixedInputsSats:  fixedSats,
		ExtraBytes:       extra,
		FeeRate:          e.feeRate,
		Dust:             e.dust,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	inputs := append(slices.Clone(d.inputs), o.walletInputs(plan.Selected)...)
	outputs := slices.Clone(d.outputs)
	if plan.IncludeChange {
		outputs = append(outputs, tx.Output{Value: plan.ChangeAmount, Script: o.script})
	}
	e.log.Debug("funded",
		zap.Int("inputs", len(inputs)),
		zap.Int("outputs", len(outputs)),
		zap.Uint64("fee", plan.FeeSats),
		zap.Bool("change", plan.IncludeChange))
	return inputs, outputs, plan, nil
}

// inputBytes is the serialized size of in once signed, measured with the
// signer's placeholder.
func inputBytes(in tx.Input) (int, error) {
	if in.UTXO == nil {
		return 0, fmt.Errorf("%w: input utxo", tx.ErrNilParam)
	}
	p, err := tx.PlaceholderFor(in.Signer)
	if err != nil {
		return 0, err
	}
	s, err := p.Sign(nil, 0)
	if err != nil {
		return 0, err
	}
	n := len(*s)
	// prevout(36) + script length + script + sequence(4)
	return 36 + tx.VarIntSize(uint64(n)) + n + 4, nil
}

// sumValues totals output values.
func sumValues(outputs []tx.Output) uint64 {
	var total uint64
	for _, o := range outputs {
		total += o.Value
	}
	return total
}

// outputBytes is the serialized size of outputs.
func outputBytes(outputs []tx.Output) int {
	n := 0
	for _, o := range outputs {
		n += tx.OutputSize(len(o.Script))
	}
	return n
}

// tokenInfo returns the protocol and type shared by the selected token UTXOs.
func tokenInfo(selected []*tx.UTXO) (byte, tx.Protocol, error) {
	if len(selected) == 0 {
		return 0, tx.ProtocolNone, fmt.Errorf("%w: no token inputs", ErrInvalidRequest)
	}
	first := selected[0].Token
	for _, u := range selected[1:] {
		if u.Token.Protocol != first.Protocol || u.Token.TokenType != first.TokenType {
			return 0, tx.ProtocolNone, fmt.Errorf("%w: %s type %d and %s type %d",
				ErrMixedTokenUTXOs, first.Protocol, first.TokenType, u.Token.Protocol, u.Token.TokenType)
		}
	}
	return first.TokenType, first.Protocol, nil
}
