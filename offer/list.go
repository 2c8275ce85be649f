package offer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xolosArmy/RMZWallet-sub000/agora"
	"github.com/xolosArmy/RMZWallet-sub000/coinselect"
	"github.com/xolosArmy/RMZWallet-sub000/token"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// ListPartial places a divisible offer on chain. ALP offers take one
// transaction; SLP offers take an ad-setup transaction followed by the
// offer. Result.OfferID names the covenant output.
func (e *Engine) ListPartial(ctx context.Context, req ListPartialRequest) (*Result, error) {
	res := &Result{State: StateDraft}
	if err := req.Validate(); err != nil {
		return res, err
	}
	o, err := newOwner(req.Key)
	if err != nil {
		return res, err
	}
	utxos, sel, err := e.selectTokens(ctx, o, req.TokenID, req.OfferedAtoms)
	if err != nil {
		return res, err
	}
	tokenType, protocol, err := tokenInfo(sel.Selected)
	if err != nil {
		return res, err
	}
	p, err := agora.NewPartialParams(agora.PartialRequest{
		OfferedAtoms:         req.OfferedAtoms,
		PriceNanoSatsPerAtom: req.PriceNanoSatsPerAtom,
		MinAcceptedAtoms:     req.MinAcceptedAtoms,
		MakerPk:              o.key.PubKey().Compressed(),
		TokenID:              strings.ToLower(req.TokenID),
		TokenType:            tokenType,
		Protocol:             protocol,
		EnforcedLockTime:     req.EnforcedLockTime,
		Dust:                 e.dust,
		ScriptIntegerBits:    req.ScriptIntegerBits,
	})
	if err != nil {
		return res, err
	}
	return res, e.list(ctx, res, o, utxos, sel, p)
}

// ListOneshot places an all-or-nothing offer paying AskedSats to the
// maker's address. The maker key is also the cancel key.
func (e *Engine) ListOneshot(ctx context.Context, req ListOneshotRequest) (*Result, error) {
	res := &Result{State: StateDraft}
	if err := req.Validate(); err != nil {
		return res, err
	}
	o, err := newOwner(req.Key)
	if err != nil {
		return res, err
	}
	utxos, sel, err := e.selectTokens(ctx, o, req.TokenID, req.OfferedAtoms)
	if err != nil {
		return res, err
	}
	tokenType, protocol, err := tokenInfo(sel.Selected)
	if err != nil {
		return res, err
	}
	p, err := agora.NewOneshotParams(agora.OneshotRequest{
		OfferedAtoms: req.OfferedAtoms,
		AskedSats:    req.AskedSats,
		PayoutScript: o.script,
		CancelPk:     o.key.PubKey().Compressed(),
		TokenID:      strings.ToLower(req.TokenID),
		TokenType:    tokenType,
		Protocol:     protocol,
	})
	if err != nil {
		return res, err
	}
	return res, e.list(ctx, res, o, utxos, sel, p)
}

// selectTokens lists the owner's UTXOs and picks token inputs covering atoms.
func (e *Engine) selectTokens(ctx context.Context, o *owner, tokenID string, atoms uint64) ([]*tx.UTXO, *coinselect.TokenSelection, error) {
	utxos, err := e.utxos(ctx, o)
	if err != nil {
		return nil, nil, err
	}
	sel, err := coinselect.SelectTokenUtxos(utxos, strings.ToLower(tokenID), atoms)
	if err != nil {
		return nil, nil, err
	}
	return utxos, sel, nil
}

func (e *Engine) list(ctx context.Context, res *Result, o *owner, utxos []*tx.UTXO, sel *coinselect.TokenSelection, p agora.Params) error {
	// Selection targets the requested atoms; partial params may round the
	// offer down, so change is recomputed against the final amount.
	changeAtoms := sel.TotalAtoms - p.OfferedAtoms()
	_, _, protocol := p.TokenInfo()
	var err error
	if protocol == tx.ProtocolALP {
		err = e.listInline(ctx, res, o, utxos, sel.Selected, changeAtoms, p)
	} else {
		err = e.listWithAdSetup(ctx, res, o, utxos, sel.Selected, changeAtoms, p)
	}
	if err != nil {
		return err
	}
	e.log.Info("offer listed",
		zap.String("offer", res.OfferID),
		zap.String("variant", string(p.Variant())),
		zap.Uint64("atoms", p.OfferedAtoms()),
		zap.Uint64("fee", res.FeeSats))
	return nil
}

// listInline writes the ad into the eMPP output of the listing transaction:
// [SEND+ad, covenant, token change?, XEC change?].
func (e *Engine) listInline(ctx context.Context, res *Result, o *owner, utxos, tokens []*tx.UTXO, changeAtoms uint64, p agora.Params) error {
	opReturn, err := agora.ListingOpReturn(p, changeAtoms)
	if err != nil {
		return err
	}
	_, covenant, err := agora.Covenant(p)
	if err != nil {
		return err
	}
	outputs := []tx.Output{{Value: 0, Script: opReturn}, {Value: e.dust, Script: covenant}}
	if changeAtoms > 0 {
		outputs = append(outputs, tx.Output{Value: e.dust, Script: o.script})
	}

	inputs, outputs, _, err := e.fund(draft{inputs: o.walletInputs(tokens), outputs: outputs}, utxos, o)
	if err != nil {
		return err
	}
	res.State = StateFunded
	built, err := e.sign(res, inputs, outputs, 0)
	if err != nil {
		return err
	}
	if err := e.broadcast(ctx, res, built); err != nil {
		return err
	}
	res.OfferID = agora.OfferOutpoint{TxID: built.TxID, Vout: 1}.String()
	return nil
}

// listWithAdSetup runs the two-transaction listing. The ad-setup transaction
// moves the offered atoms into a P2SH output whose redeem script carries the
// ad, funded with dust plus the measured fee of the offer transaction. The
// offer transaction spends it through the ad signatory into the covenant.
func (e *Engine) listWithAdSetup(ctx context.Context, res *Result, o *owner, utxos, tokens []*tx.UTXO, changeAtoms uint64, p agora.Params) error {
	tokenID, tokenType, _ := p.TokenInfo()
	ad, err := p.Ad()
	if err != nil {
		return err
	}
	adRedeem, err := agora.AdSetupScript(ad, o.key.PubKey().Compressed())
	if err != nil {
		return err
	}
	adLocking, err := tx.P2SHScript(adRedeem)
	if err != nil {
		return err
	}
	offerOpReturn, err := agora.ListingOpReturn(p, 0)
	if err != nil {
		return err
	}
	_, covenant, err := agora.Covenant(p)
	if err != nil {
		return err
	}
	offerOutputs := []tx.Output{{Value: 0, Script: offerOpReturn}, {Value: e.dust, Script: covenant}}

	// Measure the offer transaction against a stand-in outpoint; the
	// signatory placeholder does not depend on which input it unlocks.
	standIn := tx.Outpoint{TxID: strings.Repeat("00", tx.TxIDLen), Vout: 1}
	measure, err := agora.NewAdSignatory(o.key, ad, standIn)
	if err != nil {
		return err
	}
	offerFee, err := tx.MeasureFee([]tx.Input{{
		UTXO:       &tx.UTXO{Outpoint: standIn, Value: e.dust, Script: adLocking},
		Signer:     measure,
		ScriptCode: adRedeem,
	}}, offerOutputs, 0, e.feeRate)
	if err != nil {
		return err
	}

	amounts := []uint64{p.OfferedAtoms()}
	if changeAtoms > 0 {
		amounts = append(amounts, changeAtoms)
	}
	setupOpReturn, err := token.SLPSend(tokenID, tokenType, amounts)
	if err != nil {
		return err
	}
	adValue := e.dust + offerFee
	setupOutputs := []tx.Output{{Value: 0, Script: setupOpReturn}, {Value: adValue, Script: adLocking}}
	if changeAtoms > 0 {
		setupOutputs = append(setupOutputs, tx.Output{Value: e.dust, Script: o.script})
	}

	inputs, outputs, _, err := e.fund(draft{inputs: o.walletInputs(tokens), outputs: setupOutputs}, utxos, o)
	if err != nil {
		return err
	}
	res.State = StateFunded
	setup, err := e.sign(res, inputs, outputs, 0)
	if err != nil {
		return err
	}
	if err := e.broadcast(ctx, res, setup); err != nil {
		return err
	}
	e.log.Debug("ad setup broadcast", zap.String("txid", setup.TxID), zap.Uint64("offer_fee", offerFee))

	adOutpoint := setup.Outpoint(1)
	signatory, err := agora.NewAdSignatory(o.key, ad, adOutpoint)
	if err != nil {
		return err
	}
	offerTx, err := e.sign(res, []tx.Input{{
		UTXO:       &tx.UTXO{Outpoint: adOutpoint, Value: adValue, Script: adLocking},
		Signer:     signatory,
		ScriptCode: adRedeem,
	}}, offerOutputs, 0)
	if err != nil {
		return err
	}
	if err := e.broadcast(ctx, res, offerTx); err != nil {
		return err
	}
	res.OfferID = agora.OfferOutpoint{TxID: offerTx.TxID, Vout: 1}.String()
	return nil
}
