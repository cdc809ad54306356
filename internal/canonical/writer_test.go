package canonical

import (
	"bytes"
	"testing"

	"arweave.network/validator/internal/primitives"
)

func TestU64TrimsLeadingZeros(t *testing.T) {
	w := &Writer{}
	w.U64(1, 0)
	if got := w.Bytes(); !bytes.Equal(got, []byte{0}) {
		t.Fatalf("zero u64: got %x want [00]", got)
	}

	w2 := &Writer{}
	w2.U64(2, 1)
	if got := w2.Bytes(); !bytes.Equal(got, []byte{0, 1, 1}) {
		t.Fatalf("u64(1): got %x want [00 01 01]", got)
	}
}

func TestRawBufRightAligned(t *testing.T) {
	w := &Writer{}
	w.RawBuf(4, []byte{0xAA, 0xBB})
	if got := w.Bytes(); !bytes.Equal(got, []byte{0, 0, 0xAA, 0xBB}) {
		t.Fatalf("raw_buf: got %x want [00 00 AA BB]", got)
	}
}

func TestBufListReverseOrder(t *testing.T) {
	w := &Writer{}
	items := [][]byte{{1}, {2}, {3}}
	w.BufList(1, items, true)
	got := w.Bytes()
	want := []byte{0, 3, 1, 3, 1, 2, 1, 1}
	if !bytes.Equal(got, want) {
		t.Fatalf("buf_list reversed: got %x want %x", got, want)
	}
}

func TestHashListConcatenatesNoPrefix(t *testing.T) {
	var a, b primitives.Hash256
	a[0] = 1
	b[0] = 2
	w := &Writer{}
	w.HashList([]primitives.Hash256{a, b})
	got := w.Bytes()
	if len(got) != 2+64 {
		t.Fatalf("unexpected hash_list length %d", len(got))
	}
	if got[0] != 0 || got[1] != 2 {
		t.Fatalf("unexpected count prefix %x", got[:2])
	}
}

func TestBigOptionalAbsentIsEmpty(t *testing.T) {
	w := &Writer{}
	w.OptionalBig(2, nil)
	if got := w.Bytes(); !bytes.Equal(got, []byte{0, 0}) {
		t.Fatalf("optional_big absent: got %x want [00 00]", got)
	}
}
