package validate

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/holiman/uint256"

	"arweave.network/validator/internal/blockindex"
	"arweave.network/validator/internal/canonical"
	"arweave.network/validator/internal/consensus"
	"arweave.network/validator/internal/feistel"
	"arweave.network/validator/internal/header"
	"arweave.network/validator/internal/merkle"
	"arweave.network/validator/internal/primitives"
	"arweave.network/validator/internal/randomx"
)

// Pipeline bundles the shared, read-only resources the validator consults:
// an initialized block index and a RandomX adapter. Both are constructed
// once and shared by reference across calls.
type Pipeline struct {
	Index   *blockindex.Initialized
	Adapter *randomx.Adapter
}

// Verify runs every consensus check in order against (candidate, parent),
// short-circuiting on the first failure, and returns the solution hash on
// success.
func (p *Pipeline) Verify(cand, parent *header.BlockHeader) (primitives.Hash256, error) {
	if err := checkProofSizes(cand, parent); err != nil {
		return primitives.Hash256{}, err
	}
	if err := checkChunkHashes(cand); err != nil {
		return primitives.Hash256{}, err
	}
	if !canonical.IsBlockHashValid(cand) {
		return primitives.Hash256{}, ruleError(ErrBlockHashMismatch, "")
	}
	if cand.PreviousBlock != parent.IndepHash {
		return primitives.Hash256{}, ruleError(ErrParentMismatch, "")
	}
	if err := checkRetargetTimestamp(cand, parent); err != nil {
		return primitives.Hash256{}, err
	}
	if err := checkDifficulty(cand, parent); err != nil {
		return primitives.Hash256{}, err
	}
	if err := checkCumulativeDifficulty(cand, parent); err != nil {
		return primitives.Hash256{}, err
	}

	h0, err := p.Adapter.MiningHash(cand.NonceLimiterInfo.Output, cand.PartitionNumber, cand.NonceLimiterInfo.Seed, cand.RewardAddr)
	if err != nil {
		return primitives.Hash256{}, wrappedRuleError(ErrQuickPowBelowTarget, "mining hash", err)
	}
	solutionHash := randomx.SolutionHash(h0, cand.HashPreimage)
	solutionU256 := primitives.U256FromBE32(solutionHash[:])
	if solutionU256.Cmp(cand.Diff) <= 0 {
		return primitives.Hash256{}, ruleError(ErrQuickPowBelowTarget, "")
	}

	if err := checkSeedData(cand, parent); err != nil {
		return primitives.Hash256{}, err
	}
	if err := checkPartitionBound(cand); err != nil {
		return primitives.Hash256{}, err
	}
	if uint64(cand.Nonce) >= consensus.MaxNonce {
		return primitives.Hash256{}, ruleError(ErrNonceOutOfRange, "")
	}

	recallByte1, recallByte2, has2 := recallBytes(h0, cand.PartitionNumber, cand.NonceLimiterInfo.ZoneUpperBound, uint64(cand.Nonce))
	if cand.RecallByte != recallByte1 {
		return primitives.Hash256{}, ruleError(ErrRecallByteMismatch, "recall_byte")
	}
	if cand.RecallByte2 != nil {
		if !has2 || cand.RecallByte2.Cmp(primitives.U256FromUint64(recallByte2)) != 0 {
			return primitives.Hash256{}, ruleError(ErrRecallByteMismatch, "recall_byte2")
		}
	}

	if err := p.checkPoa(cand, recallByte1, cand.Poa, "1"); err != nil {
		return primitives.Hash256{}, err
	}
	if cand.RecallByte2 != nil {
		if err := p.checkPoa(cand, recallByte2, cand.Poa2, "2"); err != nil {
			return primitives.Hash256{}, err
		}
	}

	return solutionHash, nil
}

func isRetargetHeight(height uint64) bool {
	return height != 0 && height%consensus.RetargetBlocks == 0
}

func checkProofSizes(cand, parent *header.BlockHeader) error {
	check := func(height uint64, p header.PoaData, which string) error {
		if height < consensus.Fork27Height {
			return nil
		}
		if uint64(len(p.TxPath)) > consensus.MaxTxPathSize {
			return ruleError(ErrProofSizeTooLarge, which+":tx_path")
		}
		if uint64(len(p.DataPath)) > consensus.MaxDataPathSize {
			return ruleError(ErrProofSizeTooLarge, which+":data_path")
		}
		if uint64(len(p.Chunk)) > consensus.DataChunkSize {
			return ruleError(ErrProofSizeTooLarge, which+":chunk")
		}
		return nil
	}
	if err := check(parent.Height, parent.Poa, "parent.poa"); err != nil {
		return err
	}
	if err := check(parent.Height, parent.Poa2, "parent.poa2"); err != nil {
		return err
	}
	if err := check(cand.Height, cand.Poa, "cand.poa"); err != nil {
		return err
	}
	if err := check(cand.Height, cand.Poa2, "cand.poa2"); err != nil {
		return err
	}
	return nil
}

func checkChunkHashes(cand *header.BlockHeader) error {
	sum := sha256.Sum256(cand.Poa.Chunk)
	if sum != cand.ChunkHash {
		return ruleError(ErrChunkHashMismatch, "poa")
	}
	if cand.Chunk2Hash != nil {
		sum2 := sha256.Sum256(cand.Poa2.Chunk)
		if sum2 != *cand.Chunk2Hash {
			return ruleError(ErrChunkHashMismatch, "poa2")
		}
	}
	return nil
}

func checkRetargetTimestamp(cand, parent *header.BlockHeader) error {
	if isRetargetHeight(cand.Height) {
		if cand.LastRetarget != cand.Timestamp {
			return ruleError(ErrLastRetargetMismatch, "retarget height")
		}
		return nil
	}
	if cand.LastRetarget != parent.LastRetarget {
		return ruleError(ErrLastRetargetMismatch, "non-retarget height")
	}
	return nil
}

func checkDifficulty(cand, parent *header.BlockHeader) error {
	if !isRetargetHeight(cand.Height) {
		if cand.Diff.Cmp(parent.Diff) != 0 {
			return ruleError(ErrDifficultyMismatch, "non-retarget height")
		}
		return nil
	}

	var actualTime uint64
	if cand.Timestamp > parent.LastRetarget {
		actualTime = cand.Timestamp - parent.LastRetarget
	}
	if actualTime < consensus.MaxTimestampDeviation {
		actualTime = consensus.MaxTimestampDeviation
	}

	var expected *uint256.Int
	if actualTime > consensus.RetargetToleranceLowerBound && actualTime < consensus.RetargetToleranceUpperBound {
		expected = parent.Diff
	} else {
		maxU := primitives.MaxU256()
		delta := new(uint256.Int).Sub(maxU, parent.Diff)
		delta.AddUint64(delta, 1)
		delta.Mul(delta, primitives.U256FromUint64(actualTime))
		delta.Div(delta, primitives.U256FromUint64(consensus.RetargetBlocks*consensus.TargetTime))
		newDiff := new(uint256.Int).Sub(maxU, delta)
		newDiff.AddUint64(newDiff, 1)
		min := primitives.U256FromUint64(consensus.MinSporaDifficulty)
		if newDiff.Cmp(min) < 0 {
			newDiff = min
		}
		if newDiff.Cmp(maxU) > 0 {
			newDiff = maxU
		}
		expected = newDiff
	}

	if cand.Diff.Cmp(expected) != 0 {
		return ruleError(ErrDifficultyMismatch, "retarget height")
	}
	return nil
}

func checkCumulativeDifficulty(cand, parent *header.BlockHeader) error {
	maxU := primitives.MaxU256()
	denom := new(uint256.Int).Sub(maxU, cand.Diff)
	if denom.IsZero() {
		return ruleError(ErrCumulativeDiffMismatch, "diff == MAX")
	}
	quotient := new(uint256.Int).Div(maxU, denom)
	expected := new(uint256.Int).Add(parent.CumulativeDiff, quotient)
	if cand.CumulativeDiff.Cmp(expected) != 0 {
		return ruleError(ErrCumulativeDiffMismatch, "")
	}
	return nil
}

func checkSeedData(cand, parent *header.BlockHeader) error {
	crossed := parent.NonceLimiterInfo.GlobalStepNumber/consensus.NonceLimiterResetFrequency !=
		cand.NonceLimiterInfo.GlobalStepNumber/consensus.NonceLimiterResetFrequency

	var expectedSeed, expectedNextSeed primitives.Hash384
	var expectedZone, expectedNextZone uint64

	if crossed {
		expectedSeed = parent.NonceLimiterInfo.NextSeed
		expectedNextSeed = parent.IndepHash
		expectedZone = parent.NonceLimiterInfo.NextZoneUpperBound
		expectedNextZone = parent.NonceLimiterInfo.NextZoneUpperBound
	} else {
		expectedSeed = parent.NonceLimiterInfo.Seed
		expectedNextSeed = parent.NonceLimiterInfo.NextSeed
		expectedZone = parent.NonceLimiterInfo.ZoneUpperBound
		expectedNextZone = parent.NonceLimiterInfo.NextZoneUpperBound
	}

	if cand.NonceLimiterInfo.Seed != expectedSeed {
		return ruleError(ErrSeedDataMismatch, "seed")
	}
	if cand.NonceLimiterInfo.NextSeed != expectedNextSeed {
		return ruleError(ErrSeedDataMismatch, "next_seed")
	}
	if cand.NonceLimiterInfo.ZoneUpperBound != expectedZone {
		return ruleError(ErrSeedDataMismatch, "zone_upper_bound")
	}
	if cand.NonceLimiterInfo.NextZoneUpperBound != expectedNextZone {
		return ruleError(ErrSeedDataMismatch, "next_zone_upper_bound")
	}
	return nil
}

func checkPartitionBound(cand *header.BlockHeader) error {
	var bound uint64
	if cand.NonceLimiterInfo.ZoneUpperBound/consensus.PartitionSize >= 1 {
		bound = cand.NonceLimiterInfo.ZoneUpperBound/consensus.PartitionSize - 1
	}
	if cand.PartitionNumber > bound {
		return ruleError(ErrPartitionOutOfRange, "")
	}
	return nil
}

// recallBytes derives the two candidate recall byte positions from H0.
// has2 is false when zoneUpperBound is zero (no second range is meaningful
// yet, e.g. very early chain history).
func recallBytes(h0 primitives.Hash256, partitionNumber, zoneUpperBound, nonce uint64) (recall1, recall2 uint64, has2 bool) {
	limit := consensus.PartitionSize
	if zoneUpperBound < limit {
		limit = zoneUpperBound
	}
	var range1Mod uint64
	if limit != 0 {
		range1Mod = binary.BigEndian.Uint64(h0[0:8]) % limit
	}
	range1Start := partitionNumber*consensus.PartitionSize + range1Mod
	recall1 = range1Start + nonce*consensus.DataChunkSize

	if zoneUpperBound == 0 {
		return recall1, 0, false
	}
	h0U256 := primitives.U256FromBE32(h0[:])
	zoneU256 := primitives.U256FromUint64(zoneUpperBound)
	range2Start := new(uint256.Int).Mod(h0U256, zoneU256).Uint64()
	recall2 = range2Start + nonce*consensus.DataChunkSize
	return recall1, recall2, true
}

// blockOffset computes the in-block byte offset for a recall byte,
// re-bucketing to the nearest 256-KiB boundary past
// STRICT_DATA_SPLIT_THRESHOLD when the recall byte itself falls past the
// threshold. A block may straddle the threshold while the recall byte
// still lands before it, in which case no re-bucketing applies.
func blockOffset(recallByte, blockStart, blockEnd uint64) uint64 {
	if blockEnd > consensus.StrictDataSplitThreshold && recallByte >= consensus.StrictDataSplitThreshold {
		bucketStart := consensus.StrictDataSplitThreshold +
			((recallByte-consensus.StrictDataSplitThreshold)/consensus.DataChunkSize)*consensus.DataChunkSize
		return bucketStart - blockStart
	}
	return recallByte - blockStart
}

func (p *Pipeline) checkPoa(cand *header.BlockHeader, recallByte uint64, poa header.PoaData, which string) error {
	loc, err := p.Index.Locate(recallByte)
	if err != nil {
		return wrappedRuleError(ErrPoaInvalid, which+":locate", err)
	}

	offset := blockOffset(recallByte, loc.BlockStart, loc.BlockEnd)

	txResult, err := merkle.ValidatePath(loc.TxRoot, poa.TxPath, offset)
	if err != nil {
		return wrappedRuleError(ErrPoaInvalid, which+":tx_path", err)
	}

	dataResult, err := merkle.ValidatePath(txResult.LeafHash, poa.DataPath, offset-txResult.LeftBound)
	if err != nil {
		return wrappedRuleError(ErrPoaInvalid, which+":data_path", err)
	}

	entropyInput := randomx.ChunkEntropyInput(primitives.U256FromUint64(recallByte), loc.TxRoot, cand.RewardAddr)
	entropy, err := p.Adapter.ChunkEntropy(entropyInput)
	if err != nil {
		return wrappedRuleError(ErrPoaInvalid, which+":entropy", err)
	}

	padded := padTo64(poa.Chunk)
	if len(entropy) < len(padded) {
		return ruleError(ErrPoaInvalid, which+":entropy too short")
	}
	decrypted, err := feistel.Decrypt(padded, entropy[:len(padded)])
	if err != nil {
		return wrappedRuleError(ErrPoaInvalid, which+":feistel", err)
	}

	size := dataResult.RightBound - dataResult.LeftBound
	if uint64(len(decrypted)) < size {
		return ruleError(ErrPoaInvalid, which+":chunk too short")
	}
	trimmed := decrypted[:size]
	sum := sha256.Sum256(trimmed)
	if sum != dataResult.LeafHash {
		return ruleError(ErrPoaInvalid, which+":chunk hash")
	}

	return nil
}

func padTo64(b []byte) []byte {
	if len(b)%64 == 0 {
		return b
	}
	out := make([]byte, ((len(b)/64)+1)*64)
	copy(out, b)
	return out
}
