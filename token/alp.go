package token

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// ALPLokad is the ALP section prefix ("SLP2").
var ALPLokad = []byte{'S', 'L', 'P', '2'}

// MaxALPOutputs bounds the number of amounts or batons a section can list.
const MaxALPOutputs = 127

// ALPSend builds an ALP SEND section; amounts[i] goes to output i+1.
func ALPSend(tokenID string, tokenType byte, amounts []uint64) ([]byte, error) {
	id, err := decodeTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	w := alpHeader(tokenType, ActionSend)
	w.PutBytes(reversed(id))
	if err := putALPAmounts(w, amounts); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// ALPGenesis builds an ALP GENESIS section minting amounts to outputs 1.. and
// numBatons mint batons right after them.
func ALPGenesis(tokenType byte, info GenesisInfo, amounts []uint64, numBatons byte) ([]byte, error) {
	if info.Decimals > 9 {
		return nil, fmt.Errorf("%w: decimals %d > 9", ErrInvalidGenesis, info.Decimals)
	}
	if len(amounts)+int(numBatons) > MaxALPOutputs {
		return nil, fmt.Errorf("%w: %d amounts + %d batons", ErrTooManyOutputs, len(amounts), numBatons)
	}
	w := alpHeader(tokenType, ActionGenesis)
	w.PutVarBytes([]byte(info.Ticker))
	w.PutVarBytes([]byte(info.Name))
	w.PutVarBytes([]byte(info.URL))
	w.PutVarBytes(info.Data)
	w.PutVarBytes(info.AuthPub)
	w.PutU8(info.Decimals)
	if err := putALPAmounts(w, amounts); err != nil {
		return nil, err
	}
	w.PutU8(numBatons)
	return w.Bytes(), nil
}

// ALPMint builds an ALP MINT section.
func ALPMint(tokenID string, tokenType byte, amounts []uint64, numBatons byte) ([]byte, error) {
	id, err := decodeTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	if len(amounts)+int(numBatons) > MaxALPOutputs {
		return nil, fmt.Errorf("%w: %d amounts + %d batons", ErrTooManyOutputs, len(amounts), numBatons)
	}
	w := alpHeader(tokenType, ActionMint)
	w.PutBytes(reversed(id))
	if err := putALPAmounts(w, amounts); err != nil {
		return nil, err
	}
	w.PutU8(numBatons)
	return w.Bytes(), nil
}

// ALPBurn builds an ALP BURN section destroying amount atoms.
func ALPBurn(tokenID string, tokenType byte, amount uint64) ([]byte, error) {
	id, err := decodeTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	if amount > MaxU48 {
		return nil, fmt.Errorf("%w: %d exceeds 48 bits", ErrAmountOutOfRange, amount)
	}
	w := alpHeader(tokenType, ActionBurn)
	w.PutBytes(reversed(id))
	w.PutU48LE(amount)
	return w.Bytes(), nil
}

// ParseALPSection decodes one eMPP chunk. It returns (nil, nil) when the chunk
// does not start with the ALP lokad, so callers can skip foreign chunks.
func ParseALPSection(chunk []byte) (*Message, error) {
	if len(chunk) < len(ALPLokad) || !bytes.Equal(chunk[:len(ALPLokad)], ALPLokad) {
		return nil, nil
	}
	r := NewReader(chunk[len(ALPLokad):])
	tokenType, err := r.U8()
	if err != nil {
		return nil, err
	}
	if tokenType != TypeALPStandard {
		return nil, fmt.Errorf("%w: ALP token type %d", ErrUnsupportedProtocol, tokenType)
	}
	txTypeLen, err := r.U8()
	if err != nil {
		return nil, err
	}
	txType, err := r.Bytes(int(txTypeLen))
	if err != nil {
		return nil, err
	}

	msg := &Message{Protocol: tx.ProtocolALP, TokenType: tokenType, Action: Action(txType)}
	switch msg.Action {
	case ActionSend:
		if msg.TokenID, err = alpTokenID(r); err != nil {
			return nil, err
		}
		if msg.Amounts, err = readALPAmounts(r); err != nil {
			return nil, err
		}
	case ActionGenesis:
		if err := parseALPGenesis(msg, r); err != nil {
			return nil, err
		}
	case ActionMint:
		if msg.TokenID, err = alpTokenID(r); err != nil {
			return nil, err
		}
		if msg.Amounts, err = readALPAmounts(r); err != nil {
			return nil, err
		}
		if msg.NumBatons, err = r.U8(); err != nil {
			return nil, err
		}
	case ActionBurn:
		if msg.TokenID, err = alpTokenID(r); err != nil {
			return nil, err
		}
		amount, err := r.U48LE()
		if err != nil {
			return nil, err
		}
		msg.Amounts = []uint64{amount}
	default:
		return nil, fmt.Errorf("%w: unknown ALP transaction type %q", ErrMalformedPayload, txType)
	}
	if err := r.Done(); err != nil {
		return nil, err
	}
	return msg, nil
}

func parseALPGenesis(msg *Message, r *Reader) error {
	var fields [5][]byte
	for i := range fields {
		b, err := r.VarBytes()
		if err != nil {
			return err
		}
		fields[i] = b
	}
	decimals, err := r.U8()
	if err != nil {
		return err
	}
	if decimals > 9 {
		return fmt.Errorf("%w: decimals %d > 9", ErrMalformedPayload, decimals)
	}
	if msg.Amounts, err = readALPAmounts(r); err != nil {
		return err
	}
	if msg.NumBatons, err = r.U8(); err != nil {
		return err
	}
	msg.Genesis = &GenesisInfo{
		Ticker:   string(fields[0]),
		Name:     string(fields[1]),
		URL:      string(fields[2]),
		Data:     clone(fields[3]),
		AuthPub:  clone(fields[4]),
		Decimals: decimals,
	}
	return nil
}

func alpHeader(tokenType byte, action Action) *Writer {
	w := &Writer{}
	w.PutBytes(ALPLokad)
	w.PutU8(tokenType)
	w.PutU8(byte(len(action)))
	w.PutBytes([]byte(action))
	return w
}

func putALPAmounts(w *Writer, amounts []uint64) error {
	if len(amounts) > MaxALPOutputs {
		return fmt.Errorf("%w: %d amounts > %d", ErrTooManyOutputs, len(amounts), MaxALPOutputs)
	}
	w.PutU8(byte(len(amounts)))
	for i, a := range amounts {
		if a > MaxU48 {
			return fmt.Errorf("%w: amount %d (%d) exceeds 48 bits", ErrAmountOutOfRange, i, a)
		}
		w.PutU48LE(a)
	}
	return nil
}

func readALPAmounts(r *Reader) ([]uint64, error) {
	n, err := r.U8()
	if err != nil {
		return nil, err
	}
	if n > MaxALPOutputs {
		return nil, fmt.Errorf("%w: %d amounts", ErrMalformedPayload, n)
	}
	amounts := make([]uint64, n)
	for i := range amounts {
		if amounts[i], err = r.U48LE(); err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

func alpTokenID(r *Reader) (string, error) {
	b, err := r.Bytes(32)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(reversed(b)), nil
}
