// Package canonical implements the table-driven byte encoding the Arweave
// block hash is computed over, one primitive write method per field
// shape (fixed-width, length-prefixed, big-int, optional). Every
// consensus serialization in this module is built exclusively from the
// primitive writes on Writer; nothing else constructs the signed
// preimage.
package canonical

import (
	"bytes"
	"encoding/binary"

	"arweave.network/validator/internal/primitives"
)

// Writer accumulates the canonical byte stream for a single header.
type Writer struct {
	buf bytes.Buffer
}

// Bytes returns the accumulated stream.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func lenPrefix(width int, n int) []byte {
	b := make([]byte, width)
	v := uint64(n)
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

// RawBuf writes a right-aligned, zero-padded-on-the-left copy of up to n
// trailing bytes of b into an n-byte field.
func (w *Writer) RawBuf(n int, b []byte) {
	out := make([]byte, n)
	if len(b) > n {
		b = b[len(b)-n:]
	}
	copy(out[n-len(b):], b)
	w.buf.Write(out)
}

// RawBufUint64 writes v's 8-byte big-endian form right-aligned into an
// n-byte field (used for global_step_number, zone_upper_bound and friends).
func (w *Writer) RawBufUint64(n int, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.RawBuf(n, b[:])
}

// U64 writes v trimmed of leading zero bytes, prefixed by its length
// encoded as k big-endian bytes.
func (w *Writer) U64(k int, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	trimmed := trimLeadingZeros(b[:])
	w.buf.Write(lenPrefix(k, len(trimmed)))
	w.buf.Write(trimmed)
}

// Big writes the 32-byte big-endian encoding of v, trimmed of leading zero
// bytes, length-prefixed as k bytes.
func (w *Writer) Big(k int, v *primitives.U256) {
	be := primitives.BE32(v)
	trimmed := trimLeadingZeros(be)
	w.buf.Write(lenPrefix(k, len(trimmed)))
	w.buf.Write(trimmed)
}

// OptionalBig writes Big when v is non-nil, or an empty (zero-length)
// field when absent.
func (w *Writer) OptionalBig(k int, v *primitives.U256) {
	if v == nil {
		w.buf.Write(lenPrefix(k, 0))
		return
	}
	w.Big(k, v)
}

// RawBig writes the right-aligned trailing n bytes of v's 32-byte
// big-endian encoding (used for the narrow kryder/denomination fields).
func (w *Writer) RawBig(n int, v *primitives.U256) {
	w.RawBuf(n, primitives.BE32(v))
}

// Buf writes b verbatim (untrimmed), length-prefixed as k bytes.
func (w *Writer) Buf(k int, b []byte) {
	w.buf.Write(lenPrefix(k, len(b)))
	w.buf.Write(b)
}

// OptionalHash writes Buf(k, h.Bytes()) when h is non-nil, or an empty
// field when absent.
func (w *Writer) OptionalHash(k int, h *primitives.Hash256) {
	if h == nil {
		w.buf.Write(lenPrefix(k, 0))
		return
	}
	w.Buf(k, h.Bytes())
}

// BufList writes a 2-byte count followed by each item encoded with
// Buf(innerWidth, ...). When reverse is true the items are written in
// reverse order; this is consensus-significant for the tags and txs
// lists and must never be "corrected".
func (w *Writer) BufList(innerWidth int, items [][]byte, reverse bool) {
	w.buf.Write(lenPrefix(2, len(items)))
	if !reverse {
		for _, item := range items {
			w.Buf(innerWidth, item)
		}
		return
	}
	for i := len(items) - 1; i >= 0; i-- {
		w.Buf(innerWidth, items[i])
	}
}

// HashList writes a 2-byte count followed by each fixed-width hash
// concatenated with no per-item length prefix.
func (w *Writer) HashList(items []primitives.Hash256) {
	w.buf.Write(lenPrefix(2, len(items)))
	for _, h := range items {
		w.buf.Write(h[:])
	}
}
