package offer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xolosArmy/RMZWallet-sub000/agora"
	"github.com/xolosArmy/RMZWallet-sub000/network"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// FetchOffer loads and decodes the offer at id. An offer whose covenant
// output has already been spent is ErrOfferSpent.
func (e *Engine) FetchOffer(ctx context.Context, id agora.OfferOutpoint, tokenID string) (*agora.Offer, error) {
	t, err := network.FetchTx(ctx, e.chain, id.TxID)
	if err != nil {
		return nil, fmt.Errorf("offer: fetch %s: %w", id.TxID, err)
	}
	offer, err := agora.ParseOfferFromTx(t, id.Vout, strings.ToLower(tokenID))
	if err != nil {
		return nil, err
	}
	unspent, err := e.chain.IsUnspent(ctx, id.TxID, id.Vout)
	if err != nil {
		return nil, fmt.Errorf("offer: spent check %s: %w", id, err)
	}
	if !unspent {
		return nil, fmt.Errorf("%w: %s", ErrOfferSpent, id)
	}
	return offer, nil
}

// takerOutputsBound bounds the serialized outputs the taker adds after the
// enforced ones: a change output paying script plus one spare.
func takerOutputsBound(script []byte) int {
	return 2 * (8 + 1 + len(script))
}

// Accept takes atoms from an offer. The covenant input comes first, funded
// by the buyer's plain UTXOs; the buyer receives the atoms at
// AcceptPlan.BuyerVout. A partial accept that leaves a remainder reports the
// re-listed covenant in Result.OfferID.
func (e *Engine) Accept(ctx context.Context, req AcceptRequest) (*Result, error) {
	res := &Result{State: StateDraft}
	if err := req.Validate(); err != nil {
		return res, err
	}
	id, _ := agora.ParseOfferID(req.OfferID)
	buyer, err := newOwner(req.Key)
	if err != nil {
		return res, err
	}
	offer, err := e.FetchOffer(ctx, id, req.TokenID)
	if err != nil {
		return res, err
	}

	accepted := req.AcceptedAtoms
	if accepted == 0 {
		accepted = offer.OfferedAtoms()
	} else if offer.Partial != nil {
		accepted = offer.Partial.PrepareAcceptedAtoms(accepted)
	}
	plan, err := offer.AcceptOutputs(accepted, buyer.script, e.dust)
	if err != nil {
		return res, err
	}
	unlocker, err := agora.NewAcceptUnlocker(offer, plan, takerOutputsBound(buyer.script))
	if err != nil {
		return res, err
	}
	covenantIn := tx.Input{UTXO: offer.UTXO(), Signer: unlocker, ScriptCode: offer.ScriptCode}

	utxos, err := e.utxos(ctx, buyer)
	if err != nil {
		return res, err
	}
	inputs, outputs, _, err := e.fund(draft{
		inputs:   []tx.Input{covenantIn},
		outputs:  plan.Outputs,
		lockTime: plan.LockTime,
	}, utxos, buyer)
	if err != nil {
		return res, err
	}
	res.State = StateFunded
	built, err := e.sign(res, inputs, outputs, plan.LockTime)
	if err != nil {
		return res, err
	}
	if err := e.broadcast(ctx, res, built); err != nil {
		return res, err
	}
	if plan.LeftoverVout > 0 {
		res.OfferID = agora.OfferOutpoint{TxID: built.TxID, Vout: plan.LeftoverVout}.String()
	}
	e.log.Info("offer accepted",
		zap.String("offer", id.String()),
		zap.String("txid", built.TxID),
		zap.Uint64("atoms", accepted),
		zap.Uint64("asked", plan.AskedSats))
	return res, nil
}

// Cancel returns every offered atom to the maker through the covenant's
// cancel branch. Only the key matching the offer's cancel key may cancel.
func (e *Engine) Cancel(ctx context.Context, req CancelRequest) (*Result, error) {
	res := &Result{State: StateDraft}
	if err := req.Validate(); err != nil {
		return res, err
	}
	id, _ := agora.ParseOfferID(req.OfferID)
	maker, err := newOwner(req.Key)
	if err != nil {
		return res, err
	}
	offer, err := e.FetchOffer(ctx, id, req.TokenID)
	if err != nil {
		return res, err
	}
	if !bytes.Equal(offer.CancelPk(), maker.key.PubKey().Compressed()) {
		return res, fmt.Errorf("%w: %s", ErrNotOfferOwner, id)
	}

	outputs, err := offer.CancelOutputs(maker.script, e.dust)
	if err != nil {
		return res, err
	}
	unlocker, err := agora.NewCancelUnlocker(maker.key, offer)
	if err != nil {
		return res, err
	}
	covenantIn := tx.Input{UTXO: offer.UTXO(), Signer: unlocker, ScriptCode: offer.ScriptCode}

	utxos, err := e.utxos(ctx, maker)
	if err != nil {
		return res, err
	}
	inputs, outputs, _, err := e.fund(draft{inputs: []tx.Input{covenantIn}, outputs: outputs}, utxos, maker)
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
	e.log.Info("offer cancelled", zap.String("offer", id.String()), zap.String("txid", built.TxID))
	return res, nil
}
