// Package merkle validates tx_path and data_path Merkle proofs against a
// root and a target byte offset, walking a sequence of branch nodes down
// to the single trailing leaf node.
package merkle

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/pkg/errors"

	"arweave.network/validator/internal/primitives"
)

const (
	hashSize   = 32
	notepad    = 24
	offsetSize = 8
	branchSize = hashSize*2 + notepad + offsetSize // 96
	leafSize   = hashSize + notepad + offsetSize    // 64
)

// ErrMalformedProof indicates a proof buffer's length isn't a valid
// sequence of 96-byte branch nodes followed by one 64-byte leaf node.
var ErrMalformedProof = errors.New("merkle: malformed proof buffer")

// ErrHashMismatch indicates a branch node's computed hash does not match
// the expected hash inherited from its parent.
var ErrHashMismatch = errors.New("merkle: branch hash mismatch")

// Result is the leaf reached by a validated proof and the byte bounds it
// proves membership over.
type Result struct {
	LeafHash   primitives.Hash256
	LeftBound  uint64
	RightBound uint64
}

func be32Offset(offset uint64) []byte {
	var b [32]byte
	binary.BigEndian.PutUint64(b[24:], offset)
	return b[:]
}

// ValidatePath walks buf from root to leaf, verifying that each branch
// node's declared children hash to the expected parent hash and following
// the right child whenever targetOffset exceeds the branch offset. It
// returns the leaf's data hash, the offset of the last branch where the
// walk went right as the left bound, and the leaf's own offset as the
// right bound. Whether targetOffset lies inside those bounds is not
// checked, and the leaf node is not hashed against the expected hash.
func ValidatePath(root primitives.Hash256, buf []byte, targetOffset uint64) (Result, error) {
	if len(buf) < leafSize || (len(buf)-leafSize)%branchSize != 0 {
		return Result{}, ErrMalformedProof
	}

	numBranches := (len(buf) - leafSize) / branchSize
	expected := root
	var leftBound uint64

	for i := 0; i < numBranches; i++ {
		node := buf[i*branchSize : (i+1)*branchSize]
		var leftID, rightID primitives.Hash256
		copy(leftID[:], node[0:hashSize])
		copy(rightID[:], node[hashSize:2*hashSize])
		offset := binary.BigEndian.Uint64(node[branchSize-offsetSize:])

		sum := sha256.Sum256(concat(leftID[:], rightID[:], be32Offset(offset)))
		var h primitives.Hash256
		copy(h[:], sum[:])
		if h != expected {
			return Result{}, ErrHashMismatch
		}

		if targetOffset > offset {
			expected = rightID
			leftBound = offset
		} else {
			expected = leftID
		}
	}

	leaf := buf[len(buf)-leafSize:]
	var leafHash primitives.Hash256
	copy(leafHash[:], leaf[0:hashSize])
	rightBound := binary.BigEndian.Uint64(leaf[leafSize-offsetSize:])

	return Result{LeafHash: leafHash, LeftBound: leftBound, RightBound: rightBound}, nil
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
