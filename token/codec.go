package token

import (
	"encoding/binary"
	"fmt"
)

// MaxU48 is the largest amount an ALP section can carry.
const MaxU48 = uint64(1)<<48 - 1

// Writer appends fixed-width and compact-size encoded fields to a buffer.
type Writer struct {
	buf []byte
}

// Bytes returns the encoded buffer.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) PutU8(v byte) { w.buf = append(w.buf, v) }
func (w *Writer) PutBytes(b []byte) { w.buf = append(w.buf, b...) }
func (w *Writer) PutU32LE(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *Writer) PutU64LE(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *Writer) PutU64BE(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }
func (w *Writer) PutVarBytes(b []byte) {
	w.PutVarSize(uint64(len(b)))
	w.PutBytes(b)
}

// PutU48LE writes the low 48 bits of v; callers check the range first.
func (w *Writer) PutU48LE(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:6]...)
}

// PutVarSize writes n in Bitcoin compact-size form.
func (w *Writer) PutVarSize(n uint64) {
	switch {
	case n < 0xfd:
		w.PutU8(byte(n))
	case n <= 0xffff:
		w.PutU8(0xfd)
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(n))
	case n <= 0xffffffff:
		w.PutU8(0xfe)
		w.PutU32LE(uint32(n))
	default:
		w.PutU8(0xff)
		w.PutU64LE(n)
	}
}

// Reader consumes fields from a payload. Every short read is ErrMalformedPayload.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over b.
func NewReader(b []byte) *Reader {
	return &Reader{data: b}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.data) - r.pos }

// Bytes reads the next n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformedPayload, n, r.pos, r.Len())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) U8() (byte, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) U16LE() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) U32LE() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) U48LE() (uint64, error) {
	b, err := r.Bytes(6)
	if err != nil {
		return 0, err
	}
	var full [8]byte
	copy(full[:], b)
	return binary.LittleEndian.Uint64(full[:]), nil
}

func (r *Reader) U64LE() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// VarSize reads a Bitcoin compact-size integer.
func (r *Reader) VarSize() (uint64, error) {
	first, err := r.U8()
	if err != nil {
		return 0, err
	}
	switch first {
	case 0xfd:
		v, err := r.U16LE()
		return uint64(v), err
	case 0xfe:
		v, err := r.U32LE()
		return uint64(v), err
	case 0xff:
		return r.U64LE()
	default:
		return uint64(first), nil
	}
}

// VarBytes reads a compact-size length followed by that many bytes.
func (r *Reader) VarBytes() ([]byte, error) {
	n, err := r.VarSize()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: var bytes length %d exceeds remaining %d", ErrMalformedPayload, n, r.Len())
	}
	return r.Bytes(int(n))
}

// Done fails when unread bytes remain.
func (r *Reader) Done() error {
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformedPayload, r.Len())
	}
	return nil
}
