package agora

import (
	"encoding/binary"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/util"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// eCash opcodes go-sdk only knows as OP_UNKNOWN.
const (
	opCheckDataSigVerify byte = 0xbb
	opReverseBytes       byte = 0xbc
)

// Consensus limits a covenant must stay within.
const (
	maxScriptElementSize = 520
	maxScriptOps         = 201
	maxScriptInt         = 1<<31 - 1
)

// BIP143 preimage layout for a single input.
const (
	preimageScriptCodeAt = 4 + 32 + 32 + 36 // version, hashPrevouts, hashSequence, outpoint
	preimageInputTailLen = 8 + 4            // value, nSequence
	preimageTailLen      = 32 + 4 + 4       // hashOutputs, locktime, sighash type
)

// scriptBuilder assembles scripts with minimal pushes. The first error sticks.
type scriptBuilder struct {
	buf []byte
	err error
}

func (b *scriptBuilder) op(ops ...byte) *scriptBuilder {
	b.buf = append(b.buf, ops...)
	return b
}

// push appends data in its minimal push form.
func (b *scriptBuilder) push(data []byte) *scriptBuilder {
	if b.err != nil {
		return b
	}
	n := len(data)
	switch {
	case n == 0:
		return b.op(script.Op0)
	case n == 1 && data[0] >= 1 && data[0] <= 16:
		return b.op(script.Op1 + data[0] - 1)
	case n == 1 && data[0] == 0x81:
		return b.op(script.Op1NEGATE)
	case n <= 75:
		b.buf = append(b.buf, byte(n))
	case n <= 0xff:
		b.buf = append(b.buf, script.OpPUSHDATA1, byte(n))
	case n <= 0xffff:
		b.buf = append(b.buf, script.OpPUSHDATA2)
		b.buf = binary.LittleEndian.AppendUint16(b.buf, uint16(n))
	default:
		b.err = fmt.Errorf("%w: push of %d bytes", tx.ErrScriptBuild, n)
		return b
	}
	b.buf = append(b.buf, data...)
	return b
}

// num pushes n as a minimal script number.
func (b *scriptBuilder) num(n int64) *scriptBuilder {
	return b.push(scriptNum(n))
}

// amountLE turns the number on top of the stack into width little-endian
// bytes of n << 8*shift.
func (b *scriptBuilder) amountLE(width, shift int) *scriptBuilder {
	if shift == 0 {
		return b.num(int64(width)).op(script.OpNUM2BIN)
	}
	return b.num(8).op(script.OpNUM2BIN).
		push(make([]byte, shift)).op(script.OpSWAP, script.OpCAT).
		num(int64(width)).op(script.OpSPLIT, script.OpDROP)
}

// divScale divides the number on top of the stack by scale.
func (b *scriptBuilder) divScale(scale int64) *scriptBuilder {
	if scale == 1 {
		return b
	}
	return b.num(scale).op(script.OpDIV)
}

func (b *scriptBuilder) script() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.buf, nil
}

// scriptNum encodes n the way script arithmetic reads it.
func scriptNum(n int64) []byte {
	if n == 0 {
		return nil
	}
	neg := n < 0
	abs := uint64(n)
	if neg {
		abs = uint64(-n)
	}
	var out []byte
	for abs > 0 {
		out = append(out, byte(abs))
		abs >>= 8
	}
	if out[len(out)-1]&0x80 != 0 {
		extra := byte(0)
		if neg {
			extra = 0x80
		}
		out = append(out, extra)
	} else if neg {
		out[len(out)-1] |= 0x80
	}
	return out
}

// countOps counts the opcodes of s that consume the op budget.
func countOps(s []byte) (int, error) {
	chunks, err := script.NewFromBytes(s).Chunks()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", tx.ErrScriptBuild, err)
	}
	n := 0
	for _, c := range chunks {
		if c.Op > script.Op16 {
			n++
		}
	}
	return n, nil
}

// preimagePrefixLen is the length of an input preimage without its
// outputs hash, locktime and sighash type.
func preimagePrefixLen(scriptCode []byte) int {
	return scriptCodeAt(scriptCode) + len(scriptCode) + preimageInputTailLen
}

// scriptCodeAt is the offset of scriptCode inside an input preimage.
func scriptCodeAt(scriptCode []byte) int {
	return preimageScriptCodeAt + util.VarInt(uint64(len(scriptCode))).Length()
}

// checkLimits rejects a covenant that could never be spent.
func checkLimits(redeem, scriptCode []byte) error {
	if len(redeem) > maxScriptElementSize {
		return fmt.Errorf("%w: redeem script is %d bytes, limit %d", ErrInvalidParams, len(redeem), maxScriptElementSize)
	}
	if n := preimagePrefixLen(scriptCode) + preimageTailLen; n > maxScriptElementSize {
		return fmt.Errorf("%w: sighash preimage is %d bytes, limit %d", ErrInvalidParams, n, maxScriptElementSize)
	}
	ops, err := countOps(redeem)
	if err != nil {
		return err
	}
	if ops > maxScriptOps {
		return fmt.Errorf("%w: redeem script has %d ops, limit %d", ErrInvalidParams, ops, maxScriptOps)
	}
	return nil
}

// sighashSuffix is the preimage tail after hashOutputs for SIGHASH_ALL|FORKID.
func sighashSuffix(lockTime uint32) []byte {
	out := binary.LittleEndian.AppendUint32(nil, lockTime)
	return binary.LittleEndian.AppendUint32(out, uint32(sighashAllForkID))
}
