// Package header defines the Arweave block header shape and its JSON
// wire decoding: stringify-wrapped counters, base64url-encoded hashes,
// and the two-element usd_to_ar_rate string pair.
package header

import "arweave.network/validator/internal/primitives"

// PoaData is a single proof of access: the Merkle paths to a chunk plus the
// chunk bytes themselves.
type PoaData struct {
	Option   string          `json:"option"`
	TxPath   primitives.Bytes `json:"tx_path"`
	DataPath primitives.Bytes `json:"data_path"`
	Chunk    primitives.Bytes `json:"chunk"`
}

// DoubleSigningProof is present only when a miner double-signed at the same
// height; all fields are present together or all absent.
type DoubleSigningProof struct {
	PubKey     primitives.Bytes
	Sig1       primitives.Bytes
	CDiff1     *primitives.U256
	PrevCDiff1 *primitives.U256
	Preimage1  primitives.Hash512
	Sig2       primitives.Bytes
	CDiff2     *primitives.U256
	PrevCDiff2 *primitives.U256
	Preimage2  primitives.Hash512
}

// Present reports whether the proof carries data (vs. being entirely
// absent, the common case).
func (p *DoubleSigningProof) Present() bool {
	return p != nil && len(p.PubKey) > 0
}

// NonceLimiterInfo carries the VDF chain state attached to a block.
type NonceLimiterInfo struct {
	Output                primitives.Hash256
	PrevOutput            primitives.Hash256
	GlobalStepNumber      uint64
	Seed                  primitives.Hash384
	NextSeed              primitives.Hash384
	ZoneUpperBound        uint64
	NextZoneUpperBound    uint64
	LastStepCheckpoints   []primitives.Hash256
	Checkpoints           []primitives.Hash256
	VdfDifficulty         *uint64
	NextVdfDifficulty     *uint64
}

// BlockHeader is the shape shared by a candidate block and its parent.
type BlockHeader struct {
	Height                     uint64
	Timestamp                  uint64
	LastRetarget               uint64
	BlockSize                  uint64
	WeaveSize                  uint64
	Reward                     uint64
	RewardPool                 uint64
	RecallByte                 uint64
	PartitionNumber            uint64
	RedenominationHeight       uint64
	Packing25Threshold         uint64
	StrictDataSplitThreshold   uint64

	Diff                           *primitives.U256
	CumulativeDiff                 *primitives.U256
	PreviousCumulativeDiff         *primitives.U256
	PricePerGiBMinute              *primitives.U256
	ScheduledPricePerGiBMinute     *primitives.U256
	DebtSupply                     *primitives.U256
	Denomination                   *primitives.U256
	KryderPlusRateMultiplier       *primitives.U256
	KryderPlusRateMultiplierLatch  *primitives.U256
	MerkleRebaseSupportThreshold   *primitives.U256

	RecallByte2 *primitives.U256 // present iff the second recall range contributed

	Hash                 primitives.Hash256
	ChunkHash            primitives.Hash256
	HashPreimage         primitives.Hash256
	PreviousSolutionHash primitives.Hash256
	RewardAddr           primitives.Hash256
	RewardHistoryHash    primitives.Hash256
	BlockTimeHistoryHash primitives.Hash256
	Chunk2Hash           *primitives.Hash256
	TxRoot               *primitives.Hash256

	PreviousBlock  primitives.Hash384
	IndepHash      primitives.Hash384
	WalletList     primitives.Hash384
	HashListMerkle primitives.Hash384

	Signature          primitives.Bytes
	RewardKey          primitives.Bytes
	Poa                PoaData
	Poa2               PoaData
	DoubleSigningProof *DoubleSigningProof

	USDToARRate          primitives.USDToARRate
	ScheduledUSDToARRate primitives.USDToARRate

	Tags []primitives.Bytes
	Txs  []primitives.Bytes

	NonceLimiterInfo NonceLimiterInfo

	Nonce primitives.Nonce
}

// EffectiveVdfDifficulty returns the header's vdf_difficulty, or the
// consensus default when absent.
func (h *BlockHeader) EffectiveVdfDifficulty(defaultValue uint64) uint64 {
	if h.NonceLimiterInfo.VdfDifficulty == nil {
		return defaultValue
	}
	return *h.NonceLimiterInfo.VdfDifficulty
}
