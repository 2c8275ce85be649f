package token

import (
	"encoding/binary"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
)

// opReserved marks an eMPP script after OP_RETURN.
const opReserved byte = 0x50

// push is one push-data item of a data-carrier script.
type push struct {
	op   byte
	data []byte
}

// appendPush appends data using the shortest push form. Empty data is encoded
// as OP_PUSHDATA1 0x00, which SLP requires in place of OP_0.
func appendPush(buf []byte, data []byte) []byte {
	n := len(data)
	switch {
	case n == 0:
		return append(buf, script.OpPUSHDATA1, 0x00)
	case n <= 75:
		buf = append(buf, byte(n))
	case n <= 0xff:
		buf = append(buf, script.OpPUSHDATA1, byte(n))
	case n <= 0xffff:
		buf = append(buf, script.OpPUSHDATA2)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(n))
	default:
		buf = append(buf, script.OpPUSHDATA4)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(n))
	}
	return append(buf, data...)
}

// splitPushes decodes a run of push-data items. Any non-push opcode or a
// push running past the end of the script is ErrMalformedPayload.
func splitPushes(s []byte) ([]push, error) {
	var pushes []push
	for pos := 0; pos < len(s); {
		op := s[pos]
		pos++
		var n int
		switch {
		case op < script.OpPUSHDATA1:
			n = int(op)
		case op == script.OpPUSHDATA1:
			if pos+1 > len(s) {
				return nil, fmt.Errorf("%w: truncated OP_PUSHDATA1", ErrMalformedPayload)
			}
			n = int(s[pos])
			pos++
		case op == script.OpPUSHDATA2:
			if pos+2 > len(s) {
				return nil, fmt.Errorf("%w: truncated OP_PUSHDATA2", ErrMalformedPayload)
			}
			n = int(binary.LittleEndian.Uint16(s[pos:]))
			pos += 2
		case op == script.OpPUSHDATA4:
			if pos+4 > len(s) {
				return nil, fmt.Errorf("%w: truncated OP_PUSHDATA4", ErrMalformedPayload)
			}
			size := binary.LittleEndian.Uint32(s[pos:])
			if uint64(size) > uint64(len(s)) {
				return nil, fmt.Errorf("%w: OP_PUSHDATA4 length %d", ErrMalformedPayload, size)
			}
			n = int(size)
			pos += 4
		default:
			return nil, fmt.Errorf("%w: non-push opcode 0x%02x", ErrMalformedPayload, op)
		}
		if pos+n > len(s) {
			return nil, fmt.Errorf("%w: push of %d bytes exceeds script", ErrMalformedPayload, n)
		}
		pushes = append(pushes, push{op: op, data: s[pos : pos+n]})
		pos += n
	}
	return pushes, nil
}
