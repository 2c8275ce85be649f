package token

import (
	"errors"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
)

// EMPPScript wraps sections as OP_RETURN OP_RESERVED <section>...
func EMPPScript(sections ...[]byte) ([]byte, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: eMPP needs at least one section", ErrMalformedPayload)
	}
	s := []byte{script.OpRETURN, opReserved}
	for i, sec := range sections {
		if len(sec) == 0 {
			return nil, fmt.Errorf("%w: empty eMPP section %d", ErrMalformedPayload, i)
		}
		s = appendPush(s, sec)
	}
	return s, nil
}

// ParseEMPP returns the pushed chunks of an eMPP script, or nil when the
// script is not eMPP. Empty pushes and non-push opcodes are malformed.
func ParseEMPP(lockingScript []byte) ([][]byte, error) {
	if len(lockingScript) < 2 || lockingScript[0] != script.OpRETURN || lockingScript[1] != opReserved {
		return nil, nil
	}
	pushes, err := splitPushes(lockingScript[2:])
	if err != nil {
		return nil, err
	}
	chunks := make([][]byte, 0, len(pushes))
	for i, p := range pushes {
		if len(p.data) == 0 {
			return nil, fmt.Errorf("%w: empty eMPP push %d", ErrMalformedPayload, i)
		}
		chunks = append(chunks, p.data)
	}
	return chunks, nil
}

// ParseTokenScript decodes every token message carried by an output script.
// SLP is tried first, then each eMPP chunk is classified on its own; chunks of
// other protocols and ALP sections of unknown token types are skipped.
// (nil, nil) means no token protocol owns the script.
func ParseTokenScript(lockingScript []byte) ([]*Message, error) {
	msg, err := ParseSLP(lockingScript)
	if err != nil {
		return nil, err
	}
	if msg != nil {
		return []*Message{msg}, nil
	}

	chunks, err := ParseEMPP(lockingScript)
	if err != nil || chunks == nil {
		return nil, err
	}
	var msgs []*Message
	for _, chunk := range chunks {
		m, err := ParseALPSection(chunk)
		if errors.Is(err, ErrUnsupportedProtocol) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if m != nil {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

// FindSend returns the first SEND message in msgs for tokenID, or nil.
func FindSend(msgs []*Message, tokenID string) *Message {
	for _, m := range msgs {
		if m.Action == ActionSend && m.TokenID == tokenID {
			return m
		}
	}
	return nil
}
