// Package feistel implements the two-block Feistel decryption used to
// unpack a stored chunk, CBC-chained right-to-left over RandomX-derived
// entropy key material. The decrypt chain order follows the consensus
// description directly rather than any single reference implementation,
// since at least one known implementation's own CBC driver carries an
// acknowledged bug.
package feistel

import (
	"crypto/sha256"

	"github.com/pkg/errors"
)

// BlockLength is the width of one Feistel half.
const BlockLength = 32

// ErrInvalidCiphertextLength indicates the ciphertext is not a multiple of
// 64 bytes (two Feistel halves).
var ErrInvalidCiphertextLength = errors.New("feistel: ciphertext length not a multiple of 64")

// ErrKeyTooShort indicates the key material does not cover the
// ciphertext.
var ErrKeyTooShort = errors.New("feistel: key shorter than ciphertext")

func sha256Of(parts ...[]byte) [32]byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// decryptBlock implements the one-block decrypt primitive:
//
//	h1 = SHA-256(L || K[32..64])
//	tmp_left  = R XOR h1
//	tmp_right = L
//	h2 = SHA-256(tmp_left || K[0..32])
//	out_left  = tmp_right XOR h2
//	out_right = tmp_left
func decryptBlock(l, r, k []byte) (outLeft, outRight [BlockLength]byte) {
	h1 := sha256Of(l, k[32:64])
	var tmpLeft [BlockLength]byte
	for i := 0; i < BlockLength; i++ {
		tmpLeft[i] = r[i] ^ h1[i]
	}
	h2 := sha256Of(tmpLeft[:], k[0:32])
	for i := 0; i < BlockLength; i++ {
		outLeft[i] = l[i] ^ h2[i]
	}
	outRight = tmpLeft
	return outLeft, outRight
}

// Decrypt performs the CBC-like right-to-left chained Feistel decryption:
// for every 64-byte block but the first, the feed key is key[offset:offset+64]
// XORed with the preceding ciphertext block; the first block uses
// key[0:64] directly.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	if len(ciphertext)%64 != 0 {
		return nil, ErrInvalidCiphertextLength
	}
	if len(key) < len(ciphertext) {
		return nil, ErrKeyTooShort
	}

	out := make([]byte, len(ciphertext))
	for offset := len(ciphertext) - 64; offset >= 0; offset -= 64 {
		block := ciphertext[offset : offset+64]
		l, r := block[:32], block[32:]

		feedKey := make([]byte, 64)
		copy(feedKey, key[offset:offset+64])
		if offset > 0 {
			prev := ciphertext[offset-64 : offset]
			for i := range feedKey {
				feedKey[i] ^= prev[i]
			}
		}

		outLeft, outRight := decryptBlock(l, r, feedKey)
		copy(out[offset:offset+32], outLeft[:])
		copy(out[offset+32:offset+64], outRight[:])
	}
	return out, nil
}
