package tx

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Protocol identifies the token protocol carried by an output.
type Protocol uint8

const (
	// ProtocolNone marks an output that carries no token.
	ProtocolNone Protocol = iota
	// ProtocolSLP is the Simple Ledger Protocol (OP_RETURN, big-endian amounts).
	ProtocolSLP
	// ProtocolALP is the Augmented Ledger Protocol (eMPP sections, 48-bit LE amounts).
	ProtocolALP
)

func (p Protocol) String() string {
	switch p {
	case ProtocolSLP:
		return "SLP"
	case ProtocolALP:
		return "ALP"
	default:
		return "none"
	}
}

// Outpoint identifies a transaction output by txid (display order hex) and index.
type Outpoint struct {
	TxID string `json:"txid"`
	Vout uint32 `json:"vout"`
}

// String renders the outpoint as "txid:vout".
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Vout)
}

// TokenEntry describes the token amount held by an output.
type TokenEntry struct {
	TokenID     string   `json:"token_id"`
	Protocol    Protocol `json:"protocol"`
	TokenType   byte     `json:"token_type"`
	Atoms       uint64   `json:"atoms"`
	IsMintBaton bool     `json:"is_mint_baton"`
}

// UTXO represents an unspent output handed to the engine. It is never mutated.
type UTXO struct {
	Outpoint
	Value  uint64      `json:"value"`  // satoshis
	Script []byte      `json:"script"` // locking script bytes
	Token  *TokenEntry `json:"token,omitempty"`
}

// IsPlain reports whether the output holds only XEC.
func (u *UTXO) IsPlain() bool {
	return u.Token == nil
}

// Output is a transaction output to be created.
type Output struct {
	Value  uint64
	Script []byte
}

// ValidateTxID checks that txid is 64 lowercase or uppercase hex characters
// and returns its lowercase form.
func ValidateTxID(txid string) (string, error) {
	if len(txid) != 2*TxIDLen {
		return "", fmt.Errorf("%w: got %d characters", ErrInvalidTxID, len(txid))
	}
	if _, err := hex.DecodeString(txid); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTxID, err)
	}
	return strings.ToLower(txid), nil
}
