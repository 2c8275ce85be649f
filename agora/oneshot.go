package agora

import (
	"fmt"

	"github.com/xolosArmy/RMZWallet-sub000/token"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// maxEnforcedOutputs bounds the ONESHOT output list.
const maxEnforcedOutputs = 16

// OneshotRequest is the maker's intent for an all-or-nothing offer.
type OneshotRequest struct {
	OfferedAtoms uint64
	AskedSats    uint64
	PayoutScript []byte // maker's payout output script
	CancelPk     []byte
	TokenID      string
	TokenType    byte
	Protocol     tx.Protocol
}

// OneshotParams are the terms of an all-or-nothing offer. An accepting
// transaction must start with EnforcedOutputs verbatim: output 0 is the token
// SEND leg and output 1 the maker payout.
type OneshotParams struct {
	EnforcedOutputs []tx.Output
	CancelPk        []byte
	TokenID         string
	TokenType       byte
	TokenProtocol   tx.Protocol
	TokenAtoms      uint64
}

// NewOneshotParams builds the enforced outputs for req. The SEND leg assigns
// all offered atoms to output 2, the buyer's output.
func NewOneshotParams(req OneshotRequest) (*OneshotParams, error) {
	tokenID, err := validateToken(req.TokenID, req.Protocol)
	if err != nil {
		return nil, err
	}
	if err := validatePk("cancel key", req.CancelPk); err != nil {
		return nil, err
	}
	if req.OfferedAtoms == 0 {
		return nil, fmt.Errorf("%w: nothing offered", ErrInvalidParams)
	}
	if req.AskedSats < tx.DustLimit {
		return nil, fmt.Errorf("%w: asked %d sats, below dust", ErrInvalidParams, req.AskedSats)
	}
	if len(req.PayoutScript) == 0 {
		return nil, fmt.Errorf("%w: empty payout script", ErrInvalidParams)
	}

	send, err := token.SendScript(tokenID, req.TokenType, req.Protocol, []uint64{0, req.OfferedAtoms})
	if err != nil {
		return nil, err
	}
	return &OneshotParams{
		EnforcedOutputs: []tx.Output{
			{Value: 0, Script: send},
			{Value: req.AskedSats, Script: append([]byte(nil), req.PayoutScript...)},
		},
		CancelPk:      append([]byte(nil), req.CancelPk...),
		TokenID:       tokenID,
		TokenType:     req.TokenType,
		TokenProtocol: req.Protocol,
		TokenAtoms:    req.OfferedAtoms,
	}, nil
}

func (o *OneshotParams) Variant() Variant { return VariantOneshot }

func (o *OneshotParams) CovenantPk() []byte { return o.CancelPk }

func (o *OneshotParams) TokenInfo() (string, byte, tx.Protocol) {
	return o.TokenID, o.TokenType, o.TokenProtocol
}

func (o *OneshotParams) OfferedAtoms() uint64 { return o.TokenAtoms }

// AskedSats is the value of the maker payout output.
func (o *OneshotParams) AskedSats() uint64 {
	if len(o.EnforcedOutputs) < 2 {
		return 0
	}
	return o.EnforcedOutputs[1].Value
}

// PriceNanoSatsPerAtom is the price of the whole offer.
func (o *OneshotParams) PriceNanoSatsPerAtom() (uint64, error) {
	if o.TokenAtoms == 0 {
		return 0, fmt.Errorf("%w: zero offered atoms", ErrInvalidParams)
	}
	q, _ := mulWide(o.AskedSats(), NanoSatsPerSat).QuoRem64(o.TokenAtoms)
	v, ok := fit64(q)
	if !ok {
		return 0, fmt.Errorf("%w: oneshot price", ErrOverflow)
	}
	return v, nil
}

// Ad serializes the ONESHOT advertisement:
//
//	"AGR0" <7 "ONESHOT"> n:u8 (value:u64LE script:varbytes)*n cancelPk:33
func (o *OneshotParams) Ad() ([]byte, error) {
	if len(o.EnforcedOutputs) < 2 || len(o.EnforcedOutputs) > maxEnforcedOutputs {
		return nil, fmt.Errorf("%w: %d enforced outputs", ErrInvalidParams, len(o.EnforcedOutputs))
	}
	if err := validatePk("cancel key", o.CancelPk); err != nil {
		return nil, err
	}
	w := adHeader(VariantOneshot)
	w.PutU8(byte(len(o.EnforcedOutputs)))
	for _, out := range o.EnforcedOutputs {
		w.PutU64LE(out.Value)
		w.PutVarBytes(out.Script)
	}
	w.PutBytes(o.CancelPk)
	return w.Bytes(), nil
}

// DecodeOneshot reads a ONESHOT advertisement. The SEND leg in output 0 must
// move exactly offeredAtoms of tokenID.
func DecodeOneshot(ad []byte, tokenID string, offeredAtoms uint64) (*OneshotParams, error) {
	v, r, err := readAdHeader(ad)
	if err != nil {
		return nil, err
	}
	if v != VariantOneshot {
		return nil, fmt.Errorf("%w: expected %s advertisement, got %s", ErrUnsupportedProtocol, VariantOneshot, v)
	}
	n, err := r.U8()
	if err != nil {
		return nil, err
	}
	if n < 2 || n > maxEnforcedOutputs {
		return nil, fmt.Errorf("%w: %d enforced outputs", ErrMalformedPayload, n)
	}
	o := &OneshotParams{TokenID: tokenID, TokenAtoms: offeredAtoms}
	for i := 0; i < int(n); i++ {
		value, err := r.U64LE()
		if err != nil {
			return nil, err
		}
		script, err := r.VarBytes()
		if err != nil {
			return nil, err
		}
		o.EnforcedOutputs = append(o.EnforcedOutputs, tx.Output{Value: value, Script: append([]byte(nil), script...)})
	}
	pk, err := r.Bytes(tx.CompressedPubKeyLen)
	if err != nil {
		return nil, err
	}
	o.CancelPk = append([]byte(nil), pk...)
	if err := r.Done(); err != nil {
		return nil, err
	}

	msgs, err := token.ParseTokenScript(o.EnforcedOutputs[0].Script)
	if err != nil {
		return nil, err
	}
	send := token.FindSend(msgs, tokenID)
	if send == nil {
		return nil, fmt.Errorf("%w: enforced SEND leg does not move %s", ErrTokenMismatch, tokenID)
	}
	moved, ok := send.TotalAtoms()
	if !ok || moved != offeredAtoms {
		return nil, fmt.Errorf("%w: enforced SEND moves %d atoms, offer holds %d", ErrMalformedPayload, moved, offeredAtoms)
	}
	o.TokenType = send.TokenType
	o.TokenProtocol = send.Protocol
	return o, nil
}
