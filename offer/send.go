package offer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xolosArmy/RMZWallet-sub000/coinselect"
	"github.com/xolosArmy/RMZWallet-sub000/token"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// SendXEC pays req.AmountSats to req.To. Outputs are
// [recipient, service fee?, message?, change?]; the fee converges over the
// number of inputs the amount needs.
func (e *Engine) SendXEC(ctx context.Context, req SendRequest) (*Result, error) {
	res := &Result{State: StateDraft}
	if err := req.Validate(); err != nil {
		return res, err
	}
	o, err := newOwner(req.Key)
	if err != nil {
		return res, err
	}
	utxos, err := e.utxos(ctx, o)
	if err != nil {
		return res, err
	}
	return res, e.sendXEC(ctx, res, o, utxos, req)
}

// sendXEC funds req from utxos.
func (e *Engine) sendXEC(ctx context.Context, res *Result, o *owner, utxos []*tx.UTXO, req SendRequest) error {
	recipient, err := e.net.LockingScript(req.To)
	if err != nil {
		return fmt.Errorf("%w: recipient: %w", ErrInvalidRequest, err)
	}
	outputs := []tx.Output{{Value: req.AmountSats, Script: recipient}}
	paid := 1
	conv := coinselect.ConvergeRequest{
		AmountSats: req.AmountSats,
		FeeRate:    e.feeRate,
		Dust:       e.dust,
	}
	if f := req.ServiceFee; f != nil {
		script, err := e.net.LockingScript(f.Address)
		if err != nil {
			return fmt.Errorf("%w: service fee address: %w", ErrInvalidRequest, err)
		}
		outputs = append(outputs, tx.Output{Value: f.Sats, Script: script})
		conv.ServiceFeeSats = f.Sats
		paid++
	}
	if req.Message != "" {
		script, err := tx.BuildMessageScript(req.Message)
		if err != nil {
			return err
		}
		outputs = append(outputs, tx.Output{Value: 0, Script: script})
		conv.MessageBytes = tx.OutputSize(len(script))
	}
	conv.MinFee = tx.EstimateFeeFor(1, paid, conv.MessageBytes, e.feeRate)

	plan, err := coinselect.ConvergeFee(utxos, conv)
	if err != nil {
		return err
	}
	if plan.IncludeChange {
		outputs = append(outputs, tx.Output{Value: plan.ChangeAmount, Script: o.script})
	}
	res.State = StateFunded
	built, err := e.sign(res, o.walletInputs(plan.Selected), outputs, 0)
	if err != nil {
		return err
	}
	if err := e.broadcast(ctx, res, built); err != nil {
		return err
	}
	e.log.Info("xec sent",
		zap.String("txid", built.TxID),
		zap.Uint64("amount", req.AmountSats),
		zap.Uint64("fee", plan.FeeSats))
	return nil
}

// SendToken sends req.Atoms to req.To with token change back to the sender:
// [SEND, recipient, token change?, XEC change?].
func (e *Engine) SendToken(ctx context.Context, req TokenSendRequest) (*Result, error) {
	res := &Result{State: StateDraft}
	if err := req.Validate(); err != nil {
		return res, err
	}
	o, err := newOwner(req.Key)
	if err != nil {
		return res, err
	}
	recipient, err := e.net.LockingScript(req.To)
	if err != nil {
		return res, fmt.Errorf("%w: recipient: %w", ErrInvalidRequest, err)
	}
	tokenID := strings.ToLower(req.TokenID)
	utxos, sel, err := e.selectTokens(ctx, o, tokenID, req.Atoms)
	if err != nil {
		return res, err
	}
	tokenType, protocol, err := tokenInfo(sel.Selected)
	if err != nil {
		return res, err
	}

	amounts := []uint64{req.Atoms}
	if sel.ChangeAtoms > 0 {
		amounts = append(amounts, sel.ChangeAtoms)
	}
	opReturn, err := token.SendScript(tokenID, tokenType, protocol, amounts)
	if err != nil {
		return res, err
	}
	outputs := []tx.Output{{Value: 0, Script: opReturn}, {Value: e.dust, Script: recipient}}
	if sel.ChangeAtoms > 0 {
		outputs = append(outputs, tx.Output{Value: e.dust, Script: o.script})
	}

	inputs, outputs, _, err := e.fund(draft{inputs: o.walletInputs(sel.Selected), outputs: outputs}, utxos, o)
	if err != nil {
		return res, err
	}
	res.State = StateFunded
	built, err := e.sign(res, inputs, outputs, 0)
	if err != nil {
		return res, err
	}
	if err := e.broadcast(ctx, res, built); err != nil {
		return res, err
	}
	e.log.Info("token sent",
		zap.String("txid", built.TxID),
		zap.String("token", tokenID),
		zap.Uint64("atoms", req.Atoms))
	return res, nil
}
