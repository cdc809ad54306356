package validate

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"testing"

	"arweave.network/validator/internal/blockindex"
	"arweave.network/validator/internal/canonical"
	"arweave.network/validator/internal/consensus"
	"arweave.network/validator/internal/feistel"
	"arweave.network/validator/internal/header"
	"arweave.network/validator/internal/primitives"
	"arweave.network/validator/internal/randomx"
)

// fakeVM is a deterministic stand-in for a real RandomX VM: Hash and
// Entropy ignore their input and key, returning fixed bytes. It exercises
// the pipeline's orchestration of the oracle without depending on an
// actual RandomX implementation, mirroring the fakeVM in
// internal/randomx/vm_test.go.
type fakeVM struct {
	hash    primitives.Hash256
	entropy []byte
}

func (f *fakeVM) Hash(key, input []byte) (primitives.Hash256, error) { return f.hash, nil }
func (f *fakeVM) Entropy(key, input []byte, programCount int) ([]byte, error) {
	return f.entropy, nil
}

func leafNode(dataHash primitives.Hash256, offset uint64) []byte {
	buf := make([]byte, 64)
	copy(buf[0:32], dataHash[:])
	binary.BigEndian.PutUint64(buf[56:64], offset)
	return buf
}

// scenario bundles everything Verify needs, plus the pieces the tests
// mutate to exercise a specific rejection.
type scenario struct {
	parent, cand *header.BlockHeader
	pipeline     *Pipeline
}

// buildScenario constructs a fully self-consistent (candidate, parent)
// pair at a non-retarget height that Verify accepts outright, along with
// the block index and RandomX adapter it was built against. Every field
// a step inspects is derived the same way Verify itself derives it, so
// individual tests mutate exactly one input to exercise one rejection.
func buildScenario(t *testing.T) *scenario {
	t.Helper()

	rewardAddr := primitives.Hash256{0xAA}
	vdfSeed := primitives.Hash384{0xBB}
	vdfOutput := primitives.Hash256{0xCC}

	diff := primitives.U256FromUint64(1000)
	cumDiff := primitives.U256FromUint64(5)
	// MAX/(MAX-diff) floors to 1 for any diff much smaller than MAX.
	maxU := primitives.MaxU256()
	denom := new(primitives.U256).Sub(maxU, diff)
	quotient := new(primitives.U256).Div(maxU, denom)
	expectedCumDiff := new(primitives.U256).Add(cumDiff, quotient)

	filler := func() *primitives.U256 { return primitives.ZeroU256() }

	parent := &header.BlockHeader{
		Height:                     100,
		Timestamp:                  1000,
		LastRetarget:               1000,
		Diff:                       diff,
		CumulativeDiff:             cumDiff,
		PreviousCumulativeDiff:     filler(),
		PricePerGiBMinute:          filler(),
		ScheduledPricePerGiBMinute: filler(),
		DebtSupply:                 filler(),
		Denomination:               filler(),
		KryderPlusRateMultiplier:      filler(),
		KryderPlusRateMultiplierLatch: filler(),
		MerkleRebaseSupportThreshold:  filler(),
	}
	parent.IndepHash = canonical.ComputeBlockHash(parent)
	parent.NonceLimiterInfo = header.NonceLimiterInfo{
		GlobalStepNumber:   5,
		Seed:               vdfSeed,
		NextSeed:           primitives.Hash384{0xDD},
		ZoneUpperBound:     2 * consensus.PartitionSize,
		NextZoneUpperBound: 2 * consensus.PartitionSize,
	}

	vm := &fakeVM{
		hash:    primitives.Hash256{0xFF, 0xFF, 0xFF, 0xFF},
		entropy: make([]byte, consensus.DataChunkSize),
	}
	for i := range vm.entropy {
		vm.entropy[i] = byte(i)
	}
	adapter := randomx.NewAdapter(vm)

	partitionNumber := uint64(0)
	nonce := uint64(1)
	recall1, _, _ := recallBytes(vm.hash, partitionNumber, parent.NonceLimiterInfo.ZoneUpperBound, nonce)

	// One block in the index, large enough to contain recall1.
	blockEnd := consensus.PartitionSize * 3

	ciphertext := make([]byte, 64)
	for i := range ciphertext {
		ciphertext[i] = byte(i + 1)
	}
	key := vm.entropy[:64]
	plaintext, err := feistel.Decrypt(ciphertext, key)
	if err != nil {
		t.Fatalf("feistel decrypt: %v", err)
	}
	chunkDataHash := sha256.Sum256(plaintext)
	var dataHash primitives.Hash256
	copy(dataHash[:], chunkDataHash[:])

	// Zero branches: root IS the leaf hash, at both the tx_path and
	// data_path level, since this block carries exactly one transaction
	// with exactly one chunk.
	txPath := leafNode(dataHash, 64)
	dataPath := leafNode(dataHash, 64)

	idx := blockindex.NewInitializedFromRecords([]blockindex.Item{
		{WeaveSize: blockEnd, TxRoot: dataHash},
	})

	chunkHash := sha256.Sum256(ciphertext)
	var chunkHashValue primitives.Hash256
	copy(chunkHashValue[:], chunkHash[:])

	cand := &header.BlockHeader{
		Height:                     101,
		Timestamp:                  1100,
		LastRetarget:               1000,
		Diff:                       diff,
		CumulativeDiff:             expectedCumDiff,
		PreviousCumulativeDiff:     filler(),
		PricePerGiBMinute:          filler(),
		ScheduledPricePerGiBMinute: filler(),
		DebtSupply:                 filler(),
		Denomination:               filler(),
		KryderPlusRateMultiplier:      filler(),
		KryderPlusRateMultiplierLatch: filler(),
		MerkleRebaseSupportThreshold:  filler(),
		PreviousBlock:              parent.IndepHash,
		RewardAddr:                 rewardAddr,
		PartitionNumber:            partitionNumber,
		Nonce:                      primitives.Nonce(nonce),
		RecallByte:                 recall1,
		ChunkHash:                  chunkHashValue,
		Poa: header.PoaData{
			TxPath:   txPath,
			DataPath: dataPath,
			Chunk:    ciphertext,
		},
	}
	cand.NonceLimiterInfo = header.NonceLimiterInfo{
		Output:             vdfOutput,
		GlobalStepNumber:   5,
		Seed:               parent.NonceLimiterInfo.Seed,
		NextSeed:           parent.NonceLimiterInfo.NextSeed,
		ZoneUpperBound:     parent.NonceLimiterInfo.ZoneUpperBound,
		NextZoneUpperBound: parent.NonceLimiterInfo.NextZoneUpperBound,
	}
	cand.IndepHash = canonical.ComputeBlockHash(cand)

	return &scenario{
		parent:   parent,
		cand:     cand,
		pipeline: &Pipeline{Index: idx, Adapter: adapter},
	}
}

func TestVerifyAcceptsSelfConsistentScenario(t *testing.T) {
	s := buildScenario(t)
	solutionHash, err := s.pipeline.Verify(s.cand, s.parent)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if solutionHash.IsZero() {
		t.Fatalf("expected non-zero solution hash")
	}
	solutionU256 := primitives.U256FromBE32(solutionHash[:])
	if solutionU256.Cmp(s.cand.Diff) <= 0 {
		t.Fatalf("solution hash does not exceed diff")
	}
}

func TestVerifyIsDeterministic(t *testing.T) {
	s := buildScenario(t)
	h1, err1 := s.pipeline.Verify(s.cand, s.parent)
	h2, err2 := s.pipeline.Verify(s.cand, s.parent)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if h1 != h2 {
		t.Fatalf("repeat calls diverged: %v vs %v", h1, h2)
	}
}

func TestVerifyRejectsParentMismatch(t *testing.T) {
	s := buildScenario(t)
	s.cand.PreviousBlock = primitives.Hash384{0x01}
	// previous_block feeds the canonical hash too; recompute indep_hash so
	// the failure surfaces at the parent-linkage check, not the hash check.
	s.cand.IndepHash = canonical.ComputeBlockHash(s.cand)
	_, err := s.pipeline.Verify(s.cand, s.parent)
	assertKind(t, err, ErrParentMismatch)
}

func TestVerifyRejectsNonceOutOfRange(t *testing.T) {
	s := buildScenario(t)
	s.cand.Nonce = primitives.Nonce(consensus.MaxNonce)
	// nonce feeds the canonical hash too; recompute indep_hash so the
	// failure surfaces at the nonce-bound check, not the hash check.
	s.cand.IndepHash = canonical.ComputeBlockHash(s.cand)
	_, err := s.pipeline.Verify(s.cand, s.parent)
	assertKind(t, err, ErrNonceOutOfRange)
}

func TestVerifyRejectsCorruptedChunk(t *testing.T) {
	s := buildScenario(t)
	corrupted := append([]byte{}, s.cand.Poa.Chunk...)
	corrupted[0] ^= 0xFF
	s.cand.Poa.Chunk = corrupted
	// chunk_hash must still match the (now corrupted) ciphertext so the
	// failure surfaces at the decrypted-chunk comparison, not the earlier
	// raw chunk-hash coherence check. chunk_hash feeds the canonical hash
	// too, so indep_hash is recomputed to match.
	sum := sha256.Sum256(corrupted)
	copy(s.cand.ChunkHash[:], sum[:])
	s.cand.IndepHash = canonical.ComputeBlockHash(s.cand)
	_, err := s.pipeline.Verify(s.cand, s.parent)
	assertKind(t, err, ErrPoaInvalid)
}

func TestVerifyRejectsDifficultyMismatchAtNonRetargetHeight(t *testing.T) {
	s := buildScenario(t)
	s.cand.Diff = primitives.U256FromUint64(2000)
	// diff feeds the canonical hash too; recompute indep_hash so the
	// failure surfaces at the difficulty check, not the hash check.
	s.cand.IndepHash = canonical.ComputeBlockHash(s.cand)
	_, err := s.pipeline.Verify(s.cand, s.parent)
	assertKind(t, err, ErrDifficultyMismatch)
}

func TestVerifySkipsSecondRangeWhenRecallByte2Absent(t *testing.T) {
	s := buildScenario(t)
	// Poa2 carries stray, invalid data; since recall_byte2 is nil it must
	// never be consulted.
	s.cand.Poa2 = header.PoaData{Chunk: []byte{0x00}}
	_, err := s.pipeline.Verify(s.cand, s.parent)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %s, got nil", want)
	}
	var re *RuleError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RuleError, got %T: %v", err, err)
	}
	if re.Kind != want {
		t.Fatalf("expected kind %s, got %s (%v)", want, re.Kind, err)
	}
}
