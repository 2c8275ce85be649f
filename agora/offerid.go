package agora

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// OfferOutpoint identifies an offer by the outpoint of its covenant output.
type OfferOutpoint struct {
	TxID string `json:"txid"`
	Vout uint32 `json:"vout"`
}

// String renders the canonical "txid:vout" form.
func (o OfferOutpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Vout)
}

// Outpoint converts o to a transaction outpoint.
func (o OfferOutpoint) Outpoint() tx.Outpoint {
	return tx.Outpoint{TxID: o.TxID, Vout: o.Vout}
}

// ParseOfferID accepts "txid:vout" or {"txid":"...","vout":N}. The txid is
// lowercased; vout must be a non-negative integer that fits 32 bits.
func ParseOfferID(s string) (OfferOutpoint, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		return parseOfferIDJSON(s)
	}
	txid, vout, found := strings.Cut(s, ":")
	if !found {
		return OfferOutpoint{}, fmt.Errorf("%w: %q", ErrInvalidOfferID, s)
	}
	return newOfferOutpoint(txid, vout)
}

func parseOfferIDJSON(s string) (OfferOutpoint, error) {
	var raw struct {
		TxID *string     `json:"txid"`
		Vout json.Number `json:"vout"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return OfferOutpoint{}, fmt.Errorf("%w: %w", ErrInvalidOfferID, err)
	}
	if raw.TxID == nil || raw.Vout == "" {
		return OfferOutpoint{}, fmt.Errorf("%w: missing txid or vout", ErrInvalidOfferID)
	}
	return newOfferOutpoint(*raw.TxID, raw.Vout.String())
}

func newOfferOutpoint(txid, vout string) (OfferOutpoint, error) {
	id, err := tx.ValidateTxID(txid)
	if err != nil {
		return OfferOutpoint{}, fmt.Errorf("%w: %w", ErrInvalidOfferID, err)
	}
	n, err := strconv.ParseUint(vout, 10, 32)
	if err != nil {
		return OfferOutpoint{}, fmt.Errorf("%w: vout %q", ErrInvalidOfferID, vout)
	}
	return OfferOutpoint{TxID: id, Vout: uint32(n)}, nil
}
