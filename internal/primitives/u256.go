package primitives

import "github.com/holiman/uint256"

// U256 is a 256-bit unsigned integer: decimal-string on the wire, big-endian
// in byte contexts. It is a thin alias over uint256.Int (the library
// go-ethereum uses for EVM words), which already implements the decimal and
// big-endian codecs this type needs.
type U256 = uint256.Int

// ZeroU256 returns the zero value of U256.
func ZeroU256() *U256 { return new(uint256.Int) }

// U256FromUint64 builds a U256 from a plain uint64.
func U256FromUint64(v uint64) *U256 { return new(uint256.Int).SetUint64(v) }

// U256FromBE32 decodes a 32-byte big-endian buffer into a U256.
func U256FromBE32(b []byte) *U256 {
	var u uint256.Int
	u.SetBytes(b)
	return &u
}

// BE32 returns v's 32-byte big-endian encoding.
func BE32(v *U256) []byte {
	b := v.Bytes32()
	return b[:]
}

// MaxU256 returns the all-ones U256 (consensus constant MAX).
func MaxU256() *U256 {
	max := new(uint256.Int)
	return max.Not(max)
}
