package agora

import (
	"bytes"
	"fmt"

	"github.com/xolosArmy/RMZWallet-sub000/token"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// AdLokad prefixes every agora advertisement payload.
var AdLokad = []byte{'A', 'G', 'R', '0'}

// Variant names the covenant kind an advertisement describes.
type Variant string

const (
	VariantPartial Variant = "PARTIAL"
	VariantOneshot Variant = "ONESHOT"
)

// Params is implemented by *PartialParams and *OneshotParams.
type Params interface {
	Variant() Variant
	// Ad serializes the advertisement payload bound into the covenant.
	Ad() ([]byte, error)
	// CovenantPk is the key of the maker-controlled branch.
	CovenantPk() []byte
	TokenInfo() (tokenID string, tokenType byte, protocol tx.Protocol)
	OfferedAtoms() uint64
}

// IsAd reports whether a pushed chunk carries an agora advertisement.
func IsAd(chunk []byte) bool {
	return bytes.HasPrefix(chunk, AdLokad)
}

func adHeader(v Variant) *token.Writer {
	w := &token.Writer{}
	w.PutBytes(AdLokad)
	w.PutU8(byte(len(v)))
	w.PutBytes([]byte(v))
	return w
}

// readAdHeader consumes the lokad and variant tag of payload.
func readAdHeader(payload []byte) (Variant, *token.Reader, error) {
	if !IsAd(payload) {
		return "", nil, fmt.Errorf("%w: not an agora advertisement", ErrUnsupportedProtocol)
	}
	r := token.NewReader(payload[len(AdLokad):])
	n, err := r.U8()
	if err != nil {
		return "", nil, err
	}
	tag, err := r.Bytes(int(n))
	if err != nil {
		return "", nil, err
	}
	v := Variant(tag)
	switch v {
	case VariantPartial, VariantOneshot:
		return v, r, nil
	}
	return "", nil, fmt.Errorf("%w: covenant variant %q", ErrUnsupportedProtocol, tag)
}

// AdVariant returns the variant of an advertisement payload.
func AdVariant(payload []byte) (Variant, error) {
	v, _, err := readAdHeader(payload)
	return v, err
}

func validatePk(name string, pk []byte) error {
	if len(pk) != tx.CompressedPubKeyLen {
		return fmt.Errorf("%w: %s must be %d bytes, got %d", ErrInvalidParams, name, tx.CompressedPubKeyLen, len(pk))
	}
	if pk[0] != 0x02 && pk[0] != 0x03 {
		return fmt.Errorf("%w: %s is not a compressed public key", ErrInvalidParams, name)
	}
	return nil
}

func validateToken(tokenID string, protocol tx.Protocol) (string, error) {
	id, err := tx.ValidateTxID(tokenID)
	if err != nil {
		return "", fmt.Errorf("%w: token id: %w", ErrInvalidParams, err)
	}
	if protocol != tx.ProtocolSLP && protocol != tx.ProtocolALP {
		return "", fmt.Errorf("%w: token protocol %s", ErrInvalidParams, protocol)
	}
	return id, nil
}
