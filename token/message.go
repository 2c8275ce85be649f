package token

import (
	"encoding/hex"
	"fmt"
	"math/bits"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// Token type numbers.
const (
	TypeSLPFungible  byte = 0x01
	TypeSLPMintVault byte = 0x02
	TypeSLPNFT1Child byte = 0x41
	TypeSLPNFT1Group byte = 0x81
	TypeALPStandard  byte = 0x00
)

// Action is the transaction type of a token message.
type Action string

const (
	ActionGenesis Action = "GENESIS"
	ActionMint    Action = "MINT"
	ActionSend    Action = "SEND"
	ActionBurn    Action = "BURN"
)

// GenesisInfo is the metadata of a newly created token.
type GenesisInfo struct {
	Ticker   string
	Name     string
	URL      string
	Hash     []byte // SLP document hash, empty or 32 bytes
	Data     []byte // ALP only
	AuthPub  []byte // ALP only
	Decimals byte
}

// Message is a decoded SLP message or ALP section.
type Message struct {
	Protocol  tx.Protocol
	TokenType byte
	Action    Action
	TokenID   string // display-order hex; empty for GENESIS

	// Amounts are the atoms assigned to outputs 1..len(Amounts) for SEND,
	// GENESIS and MINT; for BURN it holds the single burned amount.
	Amounts []uint64

	MintBatonVout byte // SLP GENESIS/MINT; 0 means no baton
	NumBatons     byte // ALP GENESIS/MINT; batons follow the amounts
	Genesis       *GenesisInfo
}

// OutputAtoms returns the atoms the message assigns to output vout.
func (m *Message) OutputAtoms(vout uint32) uint64 {
	if m.Action == ActionBurn || vout == 0 || int(vout) > len(m.Amounts) {
		return 0
	}
	return m.Amounts[vout-1]
}

// TotalAtoms sums Amounts; ok is false on overflow.
func (m *Message) TotalAtoms() (total uint64, ok bool) {
	for _, a := range m.Amounts {
		var carry uint64
		total, carry = bits.Add64(total, a, 0)
		if carry != 0 {
			return 0, false
		}
	}
	return total, true
}

// IsMintBaton reports whether output vout carries a mint baton.
func (m *Message) IsMintBaton(vout uint32) bool {
	switch m.Protocol {
	case tx.ProtocolSLP:
		return m.MintBatonVout != 0 && uint32(m.MintBatonVout) == vout
	case tx.ProtocolALP:
		first := uint32(len(m.Amounts)) + 1
		return vout >= first && vout < first+uint32(m.NumBatons)
	}
	return false
}

func decodeTokenID(tokenID string) ([]byte, error) {
	b, err := hex.DecodeString(tokenID)
	if err != nil || len(b) != 32 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTokenID, tokenID)
	}
	return b, nil
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
