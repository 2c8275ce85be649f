package token

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// SLPLokad is the SLP protocol identifier ("SLP\x00").
var SLPLokad = []byte{'S', 'L', 'P', 0x00}

// MaxSLPSendOutputs is the most amounts a SEND can list.
const MaxSLPSendOutputs = 19

// SLPSend builds OP_RETURN <SLP> <type> <SEND> <tokenId> <amount>... where
// amounts[i] goes to output i+1.
func SLPSend(tokenID string, tokenType byte, amounts []uint64) ([]byte, error) {
	id, err := decodeTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	if len(amounts) == 0 || len(amounts) > MaxSLPSendOutputs {
		return nil, fmt.Errorf("%w: SLP SEND takes 1..%d amounts, got %d", ErrTooManyOutputs, MaxSLPSendOutputs, len(amounts))
	}
	s := slpHeader(tokenType, ActionSend)
	s = appendPush(s, id)
	for _, a := range amounts {
		s = appendPush(s, be64(a))
	}
	return s, nil
}

// SLPGenesis builds an SLP GENESIS script. mintBatonVout 0 creates no baton.
func SLPGenesis(tokenType byte, info GenesisInfo, initialQty uint64, mintBatonVout byte) ([]byte, error) {
	if len(info.Hash) != 0 && len(info.Hash) != 32 {
		return nil, fmt.Errorf("%w: document hash must be 0 or 32 bytes", ErrInvalidGenesis)
	}
	if info.Decimals > 9 {
		return nil, fmt.Errorf("%w: decimals %d > 9", ErrInvalidGenesis, info.Decimals)
	}
	if mintBatonVout == 1 {
		return nil, fmt.Errorf("%w: mint baton cannot be output 1", ErrInvalidGenesis)
	}
	s := slpHeader(tokenType, ActionGenesis)
	s = appendPush(s, []byte(info.Ticker))
	s = appendPush(s, []byte(info.Name))
	s = appendPush(s, []byte(info.URL))
	s = appendPush(s, info.Hash)
	s = appendPush(s, []byte{info.Decimals})
	s = appendPush(s, batonPush(mintBatonVout))
	s = appendPush(s, be64(initialQty))
	return s, nil
}

// SLPMint builds an SLP MINT script.
func SLPMint(tokenID string, tokenType byte, qty uint64, mintBatonVout byte) ([]byte, error) {
	id, err := decodeTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	if mintBatonVout == 1 {
		return nil, fmt.Errorf("%w: mint baton cannot be output 1", ErrInvalidGenesis)
	}
	s := slpHeader(tokenType, ActionMint)
	s = appendPush(s, id)
	s = appendPush(s, batonPush(mintBatonVout))
	s = appendPush(s, be64(qty))
	return s, nil
}

// SLPBurn builds an SLP BURN script destroying amount atoms.
func SLPBurn(tokenID string, tokenType byte, amount uint64) ([]byte, error) {
	id, err := decodeTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	s := slpHeader(tokenType, ActionBurn)
	s = appendPush(s, id)
	s = appendPush(s, be64(amount))
	return s, nil
}

// ParseSLP decodes an SLP OP_RETURN script. It returns (nil, nil) when the
// script is not SLP, and ErrMalformedPayload when it is SLP but corrupt.
func ParseSLP(lockingScript []byte) (*Message, error) {
	if !tx.IsOPReturn(lockingScript) {
		return nil, nil
	}
	body := lockingScript[1:]
	// Cheap lokad check before a full parse: a direct 4-byte push of "SLP\0".
	if len(body) < 5 || body[0] != 4 || !bytes.Equal(body[1:5], SLPLokad) {
		return nil, nil
	}
	pushes, err := splitPushes(body)
	if err != nil {
		return nil, err
	}
	for i, p := range pushes {
		if p.op == script.Op0 {
			return nil, fmt.Errorf("%w: OP_0 at push %d", ErrMalformedPayload, i)
		}
	}
	if len(pushes) < 3 {
		return nil, fmt.Errorf("%w: SLP needs at least 3 pushes, got %d", ErrMalformedPayload, len(pushes))
	}

	typ := pushes[1].data
	if len(typ) != 1 && len(typ) != 2 {
		return nil, fmt.Errorf("%w: token type push of %d bytes", ErrMalformedPayload, len(typ))
	}
	if len(typ) == 2 {
		return nil, fmt.Errorf("%w: SLP token type 0x%s", ErrUnsupportedProtocol, hex.EncodeToString(typ))
	}
	msg := &Message{Protocol: tx.ProtocolSLP, TokenType: typ[0]}
	switch msg.TokenType {
	case TypeSLPFungible, TypeSLPMintVault, TypeSLPNFT1Child, TypeSLPNFT1Group:
	default:
		return nil, fmt.Errorf("%w: SLP token type %d", ErrUnsupportedProtocol, msg.TokenType)
	}

	rest := pushes[3:]
	switch Action(pushes[2].data) {
	case ActionSend:
		err = parseSLPSend(msg, rest)
	case ActionGenesis:
		err = parseSLPGenesis(msg, rest)
	case ActionMint:
		err = parseSLPMint(msg, rest)
	case ActionBurn:
		err = parseSLPBurn(msg, rest)
	default:
		return nil, fmt.Errorf("%w: unknown SLP transaction type %q", ErrMalformedPayload, pushes[2].data)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func parseSLPSend(msg *Message, rest []push) error {
	msg.Action = ActionSend
	if len(rest) < 2 || len(rest) > 1+MaxSLPSendOutputs {
		return fmt.Errorf("%w: SEND expects token id and 1..%d amounts, got %d pushes", ErrMalformedPayload, MaxSLPSendOutputs, len(rest))
	}
	id, err := slpTokenID(rest[0])
	if err != nil {
		return err
	}
	msg.TokenID = id
	amounts, err := slpAmounts(rest[1:])
	if err != nil {
		return err
	}
	msg.Amounts = amounts
	return nil
}

func parseSLPGenesis(msg *Message, rest []push) error {
	msg.Action = ActionGenesis
	if len(rest) != 7 {
		return fmt.Errorf("%w: GENESIS expects 7 fields, got %d", ErrMalformedPayload, len(rest))
	}
	hash := rest[3].data
	if len(hash) != 0 && len(hash) != 32 {
		return fmt.Errorf("%w: document hash of %d bytes", ErrMalformedPayload, len(hash))
	}
	if len(rest[4].data) != 1 || rest[4].data[0] > 9 {
		return fmt.Errorf("%w: invalid decimals", ErrMalformedPayload)
	}
	baton, err := slpBaton(rest[5])
	if err != nil {
		return err
	}
	amounts, err := slpAmounts(rest[6:])
	if err != nil {
		return err
	}
	msg.Genesis = &GenesisInfo{
		Ticker:   string(rest[0].data),
		Name:     string(rest[1].data),
		URL:      string(rest[2].data),
		Hash:     clone(hash),
		Decimals: rest[4].data[0],
	}
	msg.MintBatonVout = baton
	msg.Amounts = amounts
	return nil
}

func parseSLPMint(msg *Message, rest []push) error {
	msg.Action = ActionMint
	if len(rest) != 3 {
		return fmt.Errorf("%w: MINT expects 3 fields, got %d", ErrMalformedPayload, len(rest))
	}
	id, err := slpTokenID(rest[0])
	if err != nil {
		return err
	}
	baton, err := slpBaton(rest[1])
	if err != nil {
		return err
	}
	amounts, err := slpAmounts(rest[2:])
	if err != nil {
		return err
	}
	msg.TokenID, msg.MintBatonVout, msg.Amounts = id, baton, amounts
	return nil
}

func parseSLPBurn(msg *Message, rest []push) error {
	msg.Action = ActionBurn
	if len(rest) != 2 {
		return fmt.Errorf("%w: BURN expects 2 fields, got %d", ErrMalformedPayload, len(rest))
	}
	id, err := slpTokenID(rest[0])
	if err != nil {
		return err
	}
	amounts, err := slpAmounts(rest[1:])
	if err != nil {
		return err
	}
	msg.TokenID, msg.Amounts = id, amounts
	return nil
}

func slpHeader(tokenType byte, action Action) []byte {
	s := []byte{script.OpRETURN}
	s = appendPush(s, SLPLokad)
	s = appendPush(s, []byte{tokenType})
	return appendPush(s, []byte(action))
}

func slpTokenID(p push) (string, error) {
	if len(p.data) != 32 {
		return "", fmt.Errorf("%w: token id of %d bytes", ErrMalformedPayload, len(p.data))
	}
	return hex.EncodeToString(p.data), nil
}

func slpAmounts(pushes []push) ([]uint64, error) {
	amounts := make([]uint64, len(pushes))
	for i, p := range pushes {
		if len(p.data) != 8 {
			return nil, fmt.Errorf("%w: amount %d is %d bytes", ErrMalformedPayload, i, len(p.data))
		}
		amounts[i] = binary.BigEndian.Uint64(p.data)
	}
	return amounts, nil
}

func slpBaton(p push) (byte, error) {
	switch len(p.data) {
	case 0:
		return 0, nil
	case 1:
		if p.data[0] < 2 {
			return 0, fmt.Errorf("%w: mint baton vout %d", ErrMalformedPayload, p.data[0])
		}
		return p.data[0], nil
	default:
		return 0, fmt.Errorf("%w: mint baton push of %d bytes", ErrMalformedPayload, len(p.data))
	}
}

func batonPush(vout byte) []byte {
	if vout == 0 {
		return nil
	}
	return []byte{vout}
}

func be64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}
