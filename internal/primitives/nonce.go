package primitives

import "encoding/binary"

// Nonce is a non-negative integer below RECALL_RANGE_SIZE/DATA_CHUNK_SIZE.
// On the wire it is base64url of the minimum big-endian byte representation
// (1-3 bytes for the values this system ever sees).
type Nonce uint64

// minBigEndian returns v's big-endian encoding with leading zero bytes
// trimmed, keeping at least one byte so the zero value round-trips.
func minBigEndian(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

// MarshalText implements encoding.TextMarshaler.
func (n Nonce) MarshalText() ([]byte, error) {
	return []byte(wireEncoding.EncodeToString(minBigEndian(uint64(n)))), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Nonce) UnmarshalText(text []byte) error {
	b, err := wireEncoding.DecodeString(string(text))
	if err != nil {
		return err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	*n = Nonce(v)
	return nil
}
