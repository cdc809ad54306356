// Package consensus holds the frozen numeric constants the validator
// pipeline and its supporting components are driven by, as plain typed
// constants rather than a struct of network-selectable parameters: there
// is only one Arweave weave, so no per-network variants are needed.
package consensus

const (
	Fork25Height uint64 = 812970
	Fork26Height uint64 = 1132210
	Fork27Height uint64 = 1275480

	RetargetBlocks                uint64 = 10
	TargetTime                    uint64 = 120
	RetargetToleranceUpperBound   uint64 = 1320
	RetargetToleranceLowerBound   uint64 = 1080
	JoinClockTolerance            uint64 = 15
	ClockDriftMax                 uint64 = 5
	MaxTimestampDeviation         uint64 = 2*JoinClockTolerance + ClockDriftMax

	StrictDataSplitThreshold uint64 = 30607159107830
	PartitionSize            uint64 = 3600000000000
	RecallRangeSize          uint64 = 104857600
	DataChunkSize            uint64 = 262144
	MaxDataPathSize          uint64 = 349504
	MaxTxPathSize            uint64 = 2176

	VdfSha1s                   uint64 = 15000000
	NonceLimiterResetFrequency uint64 = 1200
	NumCheckpointsInVdfStep    uint64 = 25

	RandomXPackingRounds26 uint64 = 360

	MinSporaDifficulty uint64 = 2

	// MaxNonce is RECALL_RANGE_SIZE / DATA_CHUNK_SIZE (= 400).
	MaxNonce uint64 = RecallRangeSize / DataChunkSize
)

// PackingKey is the fixed ASCII byte string seeding the RandomX packing
// state.
var PackingKey = []byte("default arweave 2.5 pack key")

// DefaultVdfDifficulty is used when a header omits vdf_difficulty.
const DefaultVdfDifficulty uint64 = VdfSha1s / NumCheckpointsInVdfStep
