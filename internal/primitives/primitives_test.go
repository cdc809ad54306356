package primitives

import (
	"bytes"
	"testing"
)

func TestHash256RoundTrip(t *testing.T) {
	var h Hash256
	for i := range h {
		h[i] = byte(i)
	}
	text, err := h.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var got Hash256
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %x want %x", got, h)
	}
}

func TestHash256ZeroIsEmptyString(t *testing.T) {
	var h Hash256
	text, err := h.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if len(text) != 0 {
		t.Fatalf("expected empty text for zero hash, got %q", text)
	}
	var got Hash256
	got[0] = 1
	if err := got.UnmarshalText(nil); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("expected zero hash after decoding empty text")
	}
}

func TestNonceMinimalBigEndianRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 255, 256, 399, 65535}
	for _, v := range cases {
		n := Nonce(v)
		text, err := n.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", v, err)
		}
		var got Nonce
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%d): %v", v, err)
		}
		if uint64(got) != v {
			t.Fatalf("nonce round trip: got %d want %d", got, v)
		}
	}
}

func TestU256BE32RoundTrip(t *testing.T) {
	v := U256FromUint64(0xdeadbeef)
	be := BE32(v)
	if len(be) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(be))
	}
	got := U256FromBE32(be)
	if !bytes.Equal(BE32(got), be) {
		t.Fatalf("BE32 round trip mismatch")
	}
}

func TestUSDToARRateJSON(t *testing.T) {
	var r USDToARRate
	if err := r.UnmarshalJSON([]byte(`["1","2500"]`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if r[0] != 1 || r[1] != 2500 {
		t.Fatalf("unexpected rate: %+v", r)
	}
	out, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(out) != `["1","2500"]` {
		t.Fatalf("unexpected JSON: %s", out)
	}
}
