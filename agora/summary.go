package agora

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/xolosArmy/RMZWallet-sub000/wallet"
)

// SatsPerXEC is the number of satoshis in one XEC.
const SatsPerXEC = 100

// OfferSummary is a read-only view of an offer for display.
type OfferSummary struct {
	OfferID              string  `json:"offer_id"`
	Variant              Variant `json:"variant"`
	TokenID              string  `json:"token_id"`
	OfferedAtoms         uint64  `json:"offered_atoms"`
	AskedSats            uint64  `json:"asked_sats"`
	PriceNanoSatsPerAtom uint64  `json:"price_nanosats_per_atom"`
	PayoutAddress        string  `json:"payout_address,omitempty"`
	MinAcceptedAtoms     uint64  `json:"min_accepted_atoms"`
}

// Summary computes the display fields of taking the whole offer. The payout
// address is derived from the maker key (partial) or the enforced payout
// output (oneshot) and encoded for net; it is empty when the payout script
// has no address form.
func (o *Offer) Summary(net *wallet.NetworkConfig) (*OfferSummary, error) {
	s := &OfferSummary{
		OfferID:      o.Outpoint.String(),
		Variant:      o.Variant,
		TokenID:      o.TokenID(),
		OfferedAtoms: o.OfferedAtoms(),
	}
	var payout []byte
	if p := o.Partial; p != nil {
		var err error
		if s.AskedSats, err = p.AskedSats(s.OfferedAtoms); err != nil {
			return nil, err
		}
		if s.PriceNanoSatsPerAtom, err = p.PriceNanoSatsPerAtom(s.OfferedAtoms); err != nil {
			return nil, err
		}
		if payout, err = p.PayoutScript(); err != nil {
			return nil, err
		}
		s.MinAcceptedAtoms = p.MinAcceptedAtoms()
	} else {
		var err error
		s.AskedSats = o.Oneshot.AskedSats()
		if s.PriceNanoSatsPerAtom, err = o.Oneshot.PriceNanoSatsPerAtom(); err != nil {
			return nil, err
		}
		payout = o.Oneshot.EnforcedOutputs[1].Script
		s.MinAcceptedAtoms = s.OfferedAtoms
	}
	if net != nil {
		if addr, err := net.Address(payout); err == nil {
			s.PayoutAddress = addr
		}
	}
	return s, nil
}

// AskedXEC formats the asked amount in XEC with two decimals.
func (s *OfferSummary) AskedXEC() string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(s.AskedSats), -2).StringFixed(2)
}

// PriceXECPerToken formats the price of one whole token, where a token is
// 10^decimals atoms.
func (s *OfferSummary) PriceXECPerToken(decimals int32) string {
	nanoSats := decimal.NewFromBigInt(new(big.Int).SetUint64(s.PriceNanoSatsPerAtom), 0)
	return nanoSats.Shift(decimals - 9).Div(decimal.NewFromInt(SatsPerXEC)).String()
}
