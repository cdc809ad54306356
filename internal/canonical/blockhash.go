package canonical

import (
	"crypto/sha256"
	"crypto/sha512"

	"arweave.network/validator/internal/header"
	"arweave.network/validator/internal/primitives"
)

// BuildPreimage drives the canonical block header byte layout in field
// order, over a single Writer, and returns the accumulated signed preimage
// bytes. This is the only place that layout is expressed; every other
// caller goes through it rather than re-deriving field order.
func BuildPreimage(h *header.BlockHeader) []byte {
	w := &Writer{}

	w.Buf(1, h.PreviousBlock.Bytes())
	w.U64(1, h.Timestamp)
	w.U64(2, uint64(h.Nonce))
	w.U64(1, h.Height)
	w.Buf(2, primitives.BE32(h.Diff))
	w.Big(2, h.CumulativeDiff)
	w.U64(1, h.LastRetarget)
	w.Buf(1, h.Hash.Bytes())
	w.U64(2, h.BlockSize)
	w.U64(2, h.WeaveSize)
	w.Buf(1, h.RewardAddr.Bytes())
	w.OptionalHash(1, h.TxRoot)
	w.Buf(1, h.WalletList.Bytes())
	w.Buf(1, h.HashListMerkle.Bytes())
	w.U64(1, h.RewardPool)
	w.U64(1, h.Packing25Threshold)
	w.U64(1, h.StrictDataSplitThreshold)
	w.U64(1, h.USDToARRate[0])
	w.U64(1, h.USDToARRate[1])
	w.U64(1, h.ScheduledUSDToARRate[0])
	w.U64(1, h.ScheduledUSDToARRate[1])

	tagBytes := make([][]byte, len(h.Tags))
	for i, t := range h.Tags {
		tagBytes[i] = t
	}
	w.BufList(2, tagBytes, true)

	txBytes := make([][]byte, len(h.Txs))
	for i, t := range h.Txs {
		txBytes[i] = t
	}
	w.BufList(1, txBytes, true)

	w.U64(1, h.Reward)
	w.U64(2, h.RecallByte)
	w.Buf(1, h.HashPreimage.Bytes())
	w.OptionalBig(2, h.RecallByte2)
	w.Buf(2, h.RewardKey)
	w.U64(1, h.PartitionNumber)

	nli := h.NonceLimiterInfo
	w.RawBuf(32, nli.Output.Bytes())
	w.RawBufUint64(8, nli.GlobalStepNumber)
	w.RawBuf(48, nli.Seed.Bytes())
	w.RawBuf(48, nli.NextSeed.Bytes())
	w.RawBufUint64(32, nli.ZoneUpperBound)
	w.RawBufUint64(32, nli.NextZoneUpperBound)
	w.Buf(1, nli.PrevOutput.Bytes())
	w.HashList(nli.Checkpoints)
	w.HashList(nli.LastStepCheckpoints)

	w.Buf(1, h.PreviousSolutionHash.Bytes())
	w.Big(1, h.PricePerGiBMinute)
	w.Big(1, h.ScheduledPricePerGiBMinute)
	w.RawBuf(32, h.RewardHistoryHash.Bytes())
	w.Big(1, h.DebtSupply)
	w.RawBig(3, h.KryderPlusRateMultiplier)
	w.RawBig(1, h.KryderPlusRateMultiplierLatch)
	w.RawBig(3, h.Denomination)
	w.U64(1, h.RedenominationHeight)

	writeDoubleSigningProof(w, h.DoubleSigningProof)

	w.Big(2, h.PreviousCumulativeDiff)
	w.Big(2, h.MerkleRebaseSupportThreshold)

	w.Buf(3, h.Poa.DataPath)
	w.Buf(3, h.Poa.TxPath)
	w.Buf(3, h.Poa2.DataPath)
	w.Buf(3, h.Poa2.TxPath)

	w.RawBuf(32, h.ChunkHash.Bytes())
	w.OptionalHash(1, h.Chunk2Hash)
	w.RawBuf(32, h.BlockTimeHistoryHash.Bytes())

	w.U64(1, h.EffectiveVdfDifficulty(0))
	var nextVdf uint64
	if nli.NextVdfDifficulty != nil {
		nextVdf = *nli.NextVdfDifficulty
	}
	w.U64(1, nextVdf)

	return w.Bytes()
}

// writeDoubleSigningProof writes the zero byte for an absent proof, or the
// 0x01 tag followed by its nine fields in canonical field order.
func writeDoubleSigningProof(w *Writer, p *header.DoubleSigningProof) {
	if !p.Present() {
		w.buf.WriteByte(0)
		return
	}
	w.buf.WriteByte(1)
	w.RawBuf(64, p.PubKey)
	w.RawBuf(64, p.Sig1)
	w.Big(2, p.CDiff1)
	w.Big(2, p.PrevCDiff1)
	w.RawBuf(8, p.Preimage1.Bytes())
	w.RawBuf(64, p.Sig2)
	w.Big(2, p.CDiff2)
	w.Big(2, p.PrevCDiff2)
	w.RawBuf(8, p.Preimage2.Bytes())
}

// ComputeBlockHash returns SHA-384(SHA-256(canonical_encode(header)) ||
// signature), the indep_hash the header's own value is checked against.
func ComputeBlockHash(h *header.BlockHeader) primitives.Hash384 {
	signed := sha256.Sum256(BuildPreimage(h))
	full := append(append([]byte{}, signed[:]...), h.Signature...)
	digest := sha512.Sum384(full)
	var out primitives.Hash384
	copy(out[:], digest[:])
	return out
}

// IsBlockHashValid reports whether the header's own indep_hash equals the
// freshly recomputed canonical block hash.
func IsBlockHashValid(h *header.BlockHeader) bool {
	return ComputeBlockHash(h) == h.IndepHash
}
