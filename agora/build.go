package agora

import (
	"fmt"

	"github.com/xolosArmy/RMZWallet-sub000/token"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// ListingOpReturn builds output 0 of a transaction that places the offered
// atoms in output 1 and changeAtoms, when non-zero, in output 2. ALP listings
// carry the advertisement as an eMPP chunk ahead of the SEND.
func ListingOpReturn(p Params, changeAtoms uint64) ([]byte, error) {
	tokenID, tokenType, protocol := p.TokenInfo()
	amounts := []uint64{p.OfferedAtoms()}
	if changeAtoms > 0 {
		amounts = append(amounts, changeAtoms)
	}
	var extra [][]byte
	if protocol == tx.ProtocolALP {
		ad, err := p.Ad()
		if err != nil {
			return nil, err
		}
		extra = append(extra, ad)
	}
	return token.SendScript(tokenID, tokenType, protocol, amounts, extra...)
}

// AcceptPlan is the fixed part of an accept transaction. Funding inputs and
// the XEC change output are appended by the caller after Outputs.
type AcceptPlan struct {
	Outputs       []tx.Output
	AcceptedAtoms uint64
	AskedSats     uint64
	LockTime      uint32
	BuyerVout     uint32 // also the number of outputs the covenant rebuilds
	LeftoverVout  uint32 // 0 when the offer is fully taken
}

// AcceptOutputs lays out the outputs of a transaction taking acceptedAtoms
// from the offer and sending them with dust sats to buyerScript.
//
// Partial: [SEND, maker payout, leftover covenant?, buyer]; the leftover
// covenant keeps the offer's sats and re-lists the remainder under the same
// terms.
// Oneshot: [enforced outputs..., buyer].
func (o *Offer) AcceptOutputs(acceptedAtoms uint64, buyerScript []byte, dust uint64) (*AcceptPlan, error) {
	if len(buyerScript) == 0 {
		return nil, fmt.Errorf("%w: empty buyer script", ErrInvalidParams)
	}
	if dust < tx.DustLimit {
		return nil, fmt.Errorf("%w: dust %d below %d", ErrInvalidParams, dust, tx.DustLimit)
	}
	asked, err := o.AskedSats(acceptedAtoms)
	if err != nil {
		return nil, err
	}
	if o.Oneshot != nil {
		outs := make([]tx.Output, 0, len(o.Oneshot.EnforcedOutputs)+1)
		outs = append(outs, o.Oneshot.EnforcedOutputs...)
		outs = append(outs, tx.Output{Value: dust, Script: buyerScript})
		return &AcceptPlan{
			Outputs:       outs,
			AcceptedAtoms: acceptedAtoms,
			AskedSats:     asked,
			BuyerVout:     uint32(len(outs) - 1),
		}, nil
	}

	p := o.Partial
	payout, err := p.PayoutScript()
	if err != nil {
		return nil, err
	}
	leftover := p.OfferedAtoms() - acceptedAtoms

	amounts := []uint64{0}
	if leftover > 0 {
		amounts = append(amounts, leftover)
	}
	amounts = append(amounts, acceptedAtoms)
	opReturn, err := token.SendScript(p.TokenID, p.TokenType, p.TokenProtocol, amounts)
	if err != nil {
		return nil, err
	}

	plan := &AcceptPlan{AcceptedAtoms: acceptedAtoms, AskedSats: asked, LockTime: p.EnforcedLockTime}
	plan.Outputs = append(plan.Outputs,
		tx.Output{Value: 0, Script: opReturn},
		tx.Output{Value: asked, Script: payout},
	)
	if leftover > 0 {
		left := *p
		left.TruncAtoms = leftover >> p.atomShift()
		_, locking, err := Covenant(&left)
		if err != nil {
			return nil, err
		}
		plan.LeftoverVout = uint32(len(plan.Outputs))
		plan.Outputs = append(plan.Outputs, tx.Output{Value: o.Value, Script: locking})
	}
	plan.BuyerVout = uint32(len(plan.Outputs))
	plan.Outputs = append(plan.Outputs, tx.Output{Value: dust, Script: buyerScript})
	return plan, nil
}

// CancelOutputs lays out a transaction returning every offered atom with
// dust sats to makerScript at output 1.
func (o *Offer) CancelOutputs(makerScript []byte, dust uint64) ([]tx.Output, error) {
	if len(makerScript) == 0 {
		return nil, fmt.Errorf("%w: empty maker script", ErrInvalidParams)
	}
	if dust < tx.DustLimit {
		return nil, fmt.Errorf("%w: dust %d below %d", ErrInvalidParams, dust, tx.DustLimit)
	}
	tokenID, tokenType, protocol := o.Params().TokenInfo()
	opReturn, err := token.SendScript(tokenID, tokenType, protocol, []uint64{o.OfferedAtoms()})
	if err != nil {
		return nil, err
	}
	return []tx.Output{
		{Value: 0, Script: opReturn},
		{Value: dust, Script: makerScript},
	}, nil
}

// PayoutScript is P2PKH(hash160(MakerPk)); the ad never stores it.
func (p *PartialParams) PayoutScript() ([]byte, error) {
	if err := validatePk("maker key", p.MakerPk); err != nil {
		return nil, err
	}
	return tx.P2PKHScript(tx.Hash160(p.MakerPk))
}

// CancelPk returns the public key that can cancel the offer.
func (o *Offer) CancelPk() []byte {
	return o.Params().CovenantPk()
}
