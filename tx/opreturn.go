package tx

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/bsv-blockchain/go-sdk/script"
)

// MessageLokad prefixes plain-text wallet messages ("\x00tab").
var MessageLokad = []byte{0x00, 0x74, 0x61, 0x62}

// MaxOPReturnBytes is the largest OP_RETURN script relayed by eCash nodes.
const MaxOPReturnBytes = 223

// BuildMessageScript creates an OP_RETURN script carrying a UTF-8 message.
//
// Layout:
//
//	OP_RETURN <"\x00tab"> <message>
func BuildMessageScript(msg string) ([]byte, error) {
	if msg == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidParams)
	}
	if !utf8.ValidString(msg) {
		return nil, fmt.Errorf("%w: message is not valid UTF-8", ErrInvalidParams)
	}
	s, err := BuildOPReturnScript([][]byte{MessageLokad, []byte(msg)})
	if err != nil {
		return nil, err
	}
	if len(s) > MaxOPReturnBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrMessageTooLong, len(s), MaxOPReturnBytes)
	}
	return s, nil
}

// ParseMessageScript extracts the message from a script built by BuildMessageScript.
// ok is false when the script is not a wallet message.
func ParseMessageScript(lockingScript []byte) (msg string, ok bool, err error) {
	if !IsOPReturn(lockingScript) {
		return "", false, nil
	}
	chunks, err := script.NewFromBytes(lockingScript[1:]).Chunks()
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrInvalidOPReturn, err)
	}
	if len(chunks) == 0 || !bytes.Equal(chunks[0].Data, MessageLokad) {
		return "", false, nil
	}
	if len(chunks) != 2 {
		return "", true, fmt.Errorf("%w: expected 2 pushes, got %d", ErrInvalidOPReturn, len(chunks))
	}
	return string(chunks[1].Data), true, nil
}

// BuildOPReturnScript creates an OP_RETURN script from data pushes.
func BuildOPReturnScript(pushes [][]byte) ([]byte, error) {
	s := &script.Script{}
	*s = append(*s, script.OpRETURN)
	for _, push := range pushes {
		if err := s.AppendPushData(push); err != nil {
			return nil, fmt.Errorf("%w: OP_RETURN push data: %w", ErrScriptBuild, err)
		}
	}
	return []byte(*s), nil
}

// IsOPReturn reports whether the script is a provably unspendable data carrier.
func IsOPReturn(lockingScript []byte) bool {
	return len(lockingScript) > 0 && lockingScript[0] == script.OpRETURN
}
