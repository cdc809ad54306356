// Package randomx wraps an externally supplied RandomX virtual machine,
// treating it as a two-operation oracle: this package never implements the
// VM itself. The wrapper is built once around a caller-supplied VM and is
// read-only after construction, in the style of other proof-of-work
// adapters that front a heavyweight external hashing library behind a
// small interface. It never creates a VM of its own.
package randomx

import (
	"crypto/sha256"
	"sync"

	"arweave.network/validator/internal/consensus"
	"arweave.network/validator/internal/primitives"
)

// VM is the narrow oracle interface the validator pipeline consumes.
type VM interface {
	// Hash computes a 32-byte RandomX hash of input under key.
	Hash(key, input []byte) (primitives.Hash256, error)
	// Entropy computes a programCount-program RandomX scratchpad (256 KiB)
	// of input under key.
	Entropy(key, input []byte, programCount int) ([]byte, error)
}

// Adapter binds a VM to the fixed Arweave packing key and exposes the
// domain-specific operations the pipeline needs (mining hash, chunk
// entropy). It is constructed once per process and shared read-only, like
// KawPow's cache/dataset pair.
type Adapter struct {
	mu  sync.Mutex
	vm  VM
	key []byte
}

// NewAdapter wraps vm, using the consensus packing key. vm must not be nil;
// callers that want a lazily-instantiated disposable VM should construct
// one and pass it in (the oracle boundary is external to this package).
func NewAdapter(vm VM) *Adapter {
	return &Adapter{vm: vm, key: consensus.PackingKey}
}

// MiningHash computes H0 = RandomX_hash(vdf_output || be_partition_number ||
// vdf_seed_first_32 || mining_address), a 128-byte input.
func (a *Adapter) MiningHash(vdfOutput primitives.Hash256, partitionNumber uint64, vdfSeed primitives.Hash384, miningAddr primitives.Hash256) (primitives.Hash256, error) {
	input := make([]byte, 0, 128)
	input = append(input, vdfOutput[:]...)
	input = append(input, bePartitionNumber32(partitionNumber)...)
	input = append(input, vdfSeed[:32]...)
	input = append(input, miningAddr[:]...)

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vm.Hash(a.key, input)
}

// SolutionHash computes SHA-256(H0 || hashPreimage).
func SolutionHash(h0, hashPreimage primitives.Hash256) primitives.Hash256 {
	sum := sha256.Sum256(append(append([]byte{}, h0[:]...), hashPreimage[:]...))
	var out primitives.Hash256
	copy(out[:], sum[:])
	return out
}

// ChunkEntropyInput computes SHA-256(be_chunk_offset || tx_root ||
// reward_addr), the seed for a chunk's RandomX entropy.
func ChunkEntropyInput(chunkOffset *primitives.U256, txRoot, rewardAddr primitives.Hash256) primitives.Hash256 {
	be := primitives.BE32(chunkOffset)
	buf := make([]byte, 0, 96)
	buf = append(buf, be...)
	buf = append(buf, txRoot[:]...)
	buf = append(buf, rewardAddr[:]...)
	sum := sha256.Sum256(buf)
	var out primitives.Hash256
	copy(out[:], sum[:])
	return out
}

// ChunkEntropy produces the 256 KiB RandomX scratchpad for the given
// input, using consensus.RandomXPackingRounds26 programs.
func (a *Adapter) ChunkEntropy(input primitives.Hash256) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vm.Entropy(a.key, input[:], int(consensus.RandomXPackingRounds26))
}

func bePartitionNumber32(v uint64) []byte {
	var b [32]byte
	for i := 0; i < 8; i++ {
		b[31-i] = byte(v >> (8 * i))
	}
	return b[:]
}
