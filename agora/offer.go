package agora

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"

	"github.com/xolosArmy/RMZWallet-sub000/token"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// Offer is a decoded, spendable agora offer output.
type Offer struct {
	Outpoint      OfferOutpoint
	Variant       Variant
	Value         uint64 // sats locked in the covenant output
	LockingScript []byte
	RedeemScript  []byte
	ScriptCode    []byte // RedeemScript after OP_CODESEPARATOR; the signed script code
	Ad            []byte

	Partial *PartialParams // set for VariantPartial
	Oneshot *OneshotParams // set for VariantOneshot
}

// Params returns the variant-specific terms.
func (o *Offer) Params() Params {
	if o.Partial != nil {
		return o.Partial
	}
	return o.Oneshot
}

// TokenID returns the token held by the offer.
func (o *Offer) TokenID() string {
	id, _, _ := o.Params().TokenInfo()
	return id
}

// OfferedAtoms returns the atoms held by the offer.
func (o *Offer) OfferedAtoms() uint64 {
	return o.Params().OfferedAtoms()
}

// UTXO returns the covenant output as a spendable token UTXO.
func (o *Offer) UTXO() *tx.UTXO {
	tokenID, tokenType, protocol := o.Params().TokenInfo()
	return &tx.UTXO{
		Outpoint: o.Outpoint.Outpoint(),
		Value:    o.Value,
		Script:   o.LockingScript,
		Token: &tx.TokenEntry{
			TokenID:   tokenID,
			Protocol:  protocol,
			TokenType: tokenType,
			Atoms:     o.OfferedAtoms(),
		},
	}
}

// AskedSats returns what the maker is paid when acceptedAtoms are taken.
// Oneshot offers only accept their full amount.
func (o *Offer) AskedSats(acceptedAtoms uint64) (uint64, error) {
	if o.Partial != nil {
		if err := o.Partial.ValidateAccept(acceptedAtoms); err != nil {
			return 0, err
		}
		return o.Partial.AskedSats(acceptedAtoms)
	}
	if acceptedAtoms != o.Oneshot.OfferedAtoms() {
		return 0, fmt.Errorf("%w: oneshot offer accepts exactly %d atoms", ErrInvalidParams, o.Oneshot.OfferedAtoms())
	}
	return o.Oneshot.AskedSats(), nil
}

// ParseOfferFromTx decodes the offer at outputIndex of t. The output must be
// a funded P2SH covenant holding expectedTokenID according to the SEND in
// output 0. The advertisement is read from an eMPP chunk of output 0 (ALP) or
// from the redeem script of a spent input (SLP), and the covenant rebuilt
// from it must hash to the output's script.
func ParseOfferFromTx(t *transaction.Transaction, outputIndex uint32, expectedTokenID string) (*Offer, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: transaction", tx.ErrNilParam)
	}
	if int(outputIndex) >= len(t.Outputs) || outputIndex == 0 {
		return nil, fmt.Errorf("%w: output %d of %d", ErrNotCovenant, outputIndex, len(t.Outputs))
	}
	out := t.Outputs[outputIndex]
	locking := scriptBytes(out.LockingScript)
	if _, ok := tx.P2SHHash(locking); !ok || out.Satoshis == 0 {
		return nil, fmt.Errorf("%w: output %d is not a funded P2SH", ErrNotCovenant, outputIndex)
	}

	opReturn := scriptBytes(t.Outputs[0].LockingScript)
	msgs, err := token.ParseTokenScript(opReturn)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("%w: output 0 carries no token message", ErrUnsupportedProtocol)
	}
	send := token.FindSend(msgs, expectedTokenID)
	if send == nil {
		for _, m := range msgs {
			if m.Action == token.ActionSend {
				return nil, fmt.Errorf("%w: offer moves %s, expected %s", ErrTokenMismatch, m.TokenID, expectedTokenID)
			}
		}
		return nil, fmt.Errorf("%w: output 0 is not a SEND", ErrUnsupportedProtocol)
	}
	offered := send.OutputAtoms(outputIndex)
	if offered == 0 {
		return nil, fmt.Errorf("%w: output %d holds no tokens", ErrNotCovenant, outputIndex)
	}

	var lastErr error
	for _, ad := range adCandidates(t, opReturn) {
		o, err := matchAd(ad, locking, send, offered)
		if err != nil {
			lastErr = err
			continue
		}
		if o == nil {
			continue
		}
		o.Outpoint = OfferOutpoint{TxID: tx.TxIDHex(t), Vout: outputIndex}
		o.Value = out.Satoshis
		return o, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: no advertisement matches output %d", ErrNotCovenant, outputIndex)
}

// matchAd decodes ad and returns the offer when its covenant hashes to
// locking, or (nil, nil) when the ad belongs to another output.
func matchAd(ad, locking []byte, send *token.Message, offered uint64) (*Offer, error) {
	variant, err := AdVariant(ad)
	if err != nil {
		return nil, err
	}
	o := &Offer{Variant: variant, LockingScript: locking, Ad: ad}
	switch variant {
	case VariantPartial:
		p, err := DecodePartial(ad, offered)
		if err != nil {
			return nil, err
		}
		p.TokenID = send.TokenID
		p.TokenType = send.TokenType
		p.TokenProtocol = send.Protocol
		o.Partial = p
	case VariantOneshot:
		one, err := DecodeOneshot(ad, send.TokenID, offered)
		if err != nil {
			return nil, err
		}
		o.Oneshot = one
	}

	redeem, scriptCode, err := covenantScripts(o.Params())
	if err != nil {
		return nil, err
	}
	if !tx.IsP2SHOf(locking, redeem) {
		return nil, nil
	}
	o.RedeemScript = redeem
	o.ScriptCode = scriptCode
	return o, nil
}

// adCandidates collects advertisement pushes: eMPP chunks of output 0, then
// the leading push of each input's redeem script.
func adCandidates(t *transaction.Transaction, opReturn []byte) [][]byte {
	var ads [][]byte
	if chunks, err := token.ParseEMPP(opReturn); err == nil {
		for _, c := range chunks {
			if IsAd(c) {
				ads = append(ads, c)
			}
		}
	}
	for _, in := range t.Inputs {
		if in.UnlockingScript == nil {
			continue
		}
		chunks, err := in.UnlockingScript.Chunks()
		if err != nil || len(chunks) == 0 {
			continue
		}
		redeem := chunks[len(chunks)-1].Data
		if ad, ok := leadingPush(redeem); ok && IsAd(ad) {
			ads = append(ads, ad)
		}
	}
	return ads
}

func scriptBytes(s *script.Script) []byte {
	if s == nil {
		return nil
	}
	return []byte(*s)
}
