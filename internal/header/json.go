package header

import (
	"encoding/json"
	"strconv"

	"github.com/holiman/uint256"

	"arweave.network/validator/internal/primitives"
)

// wireHeader mirrors BlockHeader's fields using the peer JSON encoding
// conventions: u64 counters that could overflow a JSON number are decimal
// strings, U256 values are decimal strings, hashes are base64url strings,
// usd_to_ar_rate is a two-element string array, and
// vdf_difficulty/next_vdf_difficulty are optional strings.
type wireHeader struct {
	Height                   string `json:"height"`
	Timestamp                string `json:"timestamp"`
	LastRetarget             string `json:"last_retarget"`
	BlockSize                string `json:"block_size"`
	WeaveSize                string `json:"weave_size"`
	Reward                   string `json:"reward"`
	RewardPool               string `json:"reward_pool"`
	RecallByte               string `json:"recall_byte"`
	PartitionNumber          string `json:"partition_number"`
	RedenominationHeight     string `json:"redenomination_height"`
	Packing25Threshold       string `json:"packing_2_5_threshold"`
	StrictDataSplitThreshold string `json:"strict_data_split_threshold"`

	Diff                          string `json:"diff"`
	CumulativeDiff                string `json:"cumulative_diff"`
	PreviousCumulativeDiff        string `json:"previous_cumulative_diff"`
	PricePerGiBMinute             string `json:"price_per_gib_minute"`
	ScheduledPricePerGiBMinute    string `json:"scheduled_price_per_gib_minute"`
	DebtSupply                    string `json:"debt_supply"`
	Denomination                  string `json:"denomination"`
	KryderPlusRateMultiplier      string `json:"kryder_plus_rate_multiplier"`
	KryderPlusRateMultiplierLatch string `json:"kryder_plus_rate_multiplier_latch"`
	MerkleRebaseSupportThreshold  string `json:"merkle_rebase_support_threshold"`

	RecallByte2 string `json:"recall_byte2"`

	Hash                 primitives.Hash256  `json:"hash"`
	ChunkHash            primitives.Hash256  `json:"chunk_hash"`
	HashPreimage         primitives.Hash256  `json:"hash_preimage"`
	PreviousSolutionHash primitives.Hash256  `json:"previous_solution_hash"`
	RewardAddr           primitives.Hash256  `json:"reward_addr"`
	RewardHistoryHash    primitives.Hash256  `json:"reward_history_hash"`
	BlockTimeHistoryHash primitives.Hash256  `json:"block_time_history_hash"`
	Chunk2Hash           string              `json:"chunk2_hash"`
	TxRoot               string              `json:"tx_root"`

	PreviousBlock  primitives.Hash384 `json:"previous_block"`
	IndepHash      primitives.Hash384 `json:"indep_hash"`
	WalletList     primitives.Hash384 `json:"wallet_list"`
	HashListMerkle primitives.Hash384 `json:"hash_list_merkle"`

	Signature          primitives.Bytes    `json:"signature"`
	RewardKey          primitives.Bytes    `json:"reward_key"`
	Poa                PoaData             `json:"poa"`
	Poa2               PoaData             `json:"poa2"`
	DoubleSigningProof *wireDoubleSignProof `json:"double_signing_proof"`

	USDToARRate          primitives.USDToARRate `json:"usd_to_ar_rate"`
	ScheduledUSDToARRate primitives.USDToARRate `json:"scheduled_usd_to_ar_rate"`

	Tags []primitives.Bytes `json:"tags"`
	Txs  []primitives.Bytes `json:"txs"`

	NonceLimiterInfo wireNonceLimiterInfo `json:"nonce_limiter_info"`

	Nonce primitives.Nonce `json:"nonce"`
}

type wireDoubleSignProof struct {
	PubKey     primitives.Bytes   `json:"pub_key"`
	Sig1       primitives.Bytes   `json:"sig1"`
	CDiff1     string             `json:"cdiff1"`
	PrevCDiff1 string             `json:"prev_cdiff1"`
	Preimage1  primitives.Hash512 `json:"preimage1"`
	Sig2       primitives.Bytes   `json:"sig2"`
	CDiff2     string             `json:"cdiff2"`
	PrevCDiff2 string             `json:"prev_cdiff2"`
	Preimage2  primitives.Hash512 `json:"preimage2"`
}

type wireNonceLimiterInfo struct {
	Output              primitives.Hash256   `json:"output"`
	PrevOutput          primitives.Hash256   `json:"prev_output"`
	GlobalStepNumber    string               `json:"global_step_number"`
	Seed                primitives.Hash384   `json:"seed"`
	NextSeed            primitives.Hash384   `json:"next_seed"`
	ZoneUpperBound      string               `json:"zone_upper_bound"`
	NextZoneUpperBound  string               `json:"next_zone_upper_bound"`
	LastStepCheckpoints []primitives.Hash256 `json:"last_step_checkpoints"`
	Checkpoints         []primitives.Hash256 `json:"checkpoints"`
	VdfDifficulty       *string              `json:"vdf_difficulty"`
	NextVdfDifficulty   *string              `json:"next_vdf_difficulty"`
}

func parseU64(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

func parseU256(s string) (*primitives.U256, error) {
	if s == "" {
		return primitives.ZeroU256(), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// UnmarshalJSON implements json.Unmarshaler per the peer wire conventions
// described on wireHeader.
func (h *BlockHeader) UnmarshalJSON(data []byte) error {
	var w wireHeader
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var err error
	set := func(dst *uint64, s string) {
		if err != nil {
			return
		}
		*dst, err = parseU64(s)
	}
	setU256 := func(dst **primitives.U256, s string) {
		if err != nil {
			return
		}
		*dst, err = parseU256(s)
	}

	set(&h.Height, w.Height)
	set(&h.Timestamp, w.Timestamp)
	set(&h.LastRetarget, w.LastRetarget)
	set(&h.BlockSize, w.BlockSize)
	set(&h.WeaveSize, w.WeaveSize)
	set(&h.Reward, w.Reward)
	set(&h.RewardPool, w.RewardPool)
	set(&h.RecallByte, w.RecallByte)
	set(&h.PartitionNumber, w.PartitionNumber)
	set(&h.RedenominationHeight, w.RedenominationHeight)
	set(&h.Packing25Threshold, w.Packing25Threshold)
	set(&h.StrictDataSplitThreshold, w.StrictDataSplitThreshold)

	setU256(&h.Diff, w.Diff)
	setU256(&h.CumulativeDiff, w.CumulativeDiff)
	setU256(&h.PreviousCumulativeDiff, w.PreviousCumulativeDiff)
	setU256(&h.PricePerGiBMinute, w.PricePerGiBMinute)
	setU256(&h.ScheduledPricePerGiBMinute, w.ScheduledPricePerGiBMinute)
	setU256(&h.DebtSupply, w.DebtSupply)
	setU256(&h.Denomination, w.Denomination)
	setU256(&h.KryderPlusRateMultiplier, w.KryderPlusRateMultiplier)
	setU256(&h.KryderPlusRateMultiplierLatch, w.KryderPlusRateMultiplierLatch)
	setU256(&h.MerkleRebaseSupportThreshold, w.MerkleRebaseSupportThreshold)
	if err != nil {
		return err
	}

	if w.RecallByte2 != "" {
		h.RecallByte2, err = parseU256(w.RecallByte2)
		if err != nil {
			return err
		}
	}

	h.Hash = w.Hash
	h.ChunkHash = w.ChunkHash
	h.HashPreimage = w.HashPreimage
	h.PreviousSolutionHash = w.PreviousSolutionHash
	h.RewardAddr = w.RewardAddr
	h.RewardHistoryHash = w.RewardHistoryHash
	h.BlockTimeHistoryHash = w.BlockTimeHistoryHash

	if w.Chunk2Hash != "" {
		var hh primitives.Hash256
		if err := hh.UnmarshalText([]byte(w.Chunk2Hash)); err != nil {
			return err
		}
		h.Chunk2Hash = &hh
	}
	if w.TxRoot != "" {
		var hh primitives.Hash256
		if err := hh.UnmarshalText([]byte(w.TxRoot)); err != nil {
			return err
		}
		h.TxRoot = &hh
	}

	h.PreviousBlock = w.PreviousBlock
	h.IndepHash = w.IndepHash
	h.WalletList = w.WalletList
	h.HashListMerkle = w.HashListMerkle

	h.Signature = w.Signature
	h.RewardKey = w.RewardKey
	h.Poa = w.Poa
	h.Poa2 = w.Poa2

	if w.DoubleSigningProof != nil && len(w.DoubleSigningProof.PubKey) > 0 {
		dsp := &DoubleSigningProof{
			PubKey:    w.DoubleSigningProof.PubKey,
			Sig1:      w.DoubleSigningProof.Sig1,
			Preimage1: w.DoubleSigningProof.Preimage1,
			Sig2:      w.DoubleSigningProof.Sig2,
			Preimage2: w.DoubleSigningProof.Preimage2,
		}
		if dsp.CDiff1, err = parseU256(w.DoubleSigningProof.CDiff1); err != nil {
			return err
		}
		if dsp.PrevCDiff1, err = parseU256(w.DoubleSigningProof.PrevCDiff1); err != nil {
			return err
		}
		if dsp.CDiff2, err = parseU256(w.DoubleSigningProof.CDiff2); err != nil {
			return err
		}
		if dsp.PrevCDiff2, err = parseU256(w.DoubleSigningProof.PrevCDiff2); err != nil {
			return err
		}
		h.DoubleSigningProof = dsp
	}

	h.USDToARRate = w.USDToARRate
	h.ScheduledUSDToARRate = w.ScheduledUSDToARRate
	h.Tags = w.Tags
	h.Txs = w.Txs
	h.Nonce = w.Nonce

	nli := &h.NonceLimiterInfo
	nli.Output = w.NonceLimiterInfo.Output
	nli.PrevOutput = w.NonceLimiterInfo.PrevOutput
	nli.Seed = w.NonceLimiterInfo.Seed
	nli.NextSeed = w.NonceLimiterInfo.NextSeed
	nli.LastStepCheckpoints = w.NonceLimiterInfo.LastStepCheckpoints
	nli.Checkpoints = w.NonceLimiterInfo.Checkpoints
	if nli.GlobalStepNumber, err = parseU64(w.NonceLimiterInfo.GlobalStepNumber); err != nil {
		return err
	}
	if nli.ZoneUpperBound, err = parseU64(w.NonceLimiterInfo.ZoneUpperBound); err != nil {
		return err
	}
	if nli.NextZoneUpperBound, err = parseU64(w.NonceLimiterInfo.NextZoneUpperBound); err != nil {
		return err
	}
	if w.NonceLimiterInfo.VdfDifficulty != nil {
		v, err := parseU64(*w.NonceLimiterInfo.VdfDifficulty)
		if err != nil {
			return err
		}
		nli.VdfDifficulty = &v
	}
	if w.NonceLimiterInfo.NextVdfDifficulty != nil {
		v, err := parseU64(*w.NonceLimiterInfo.NextVdfDifficulty)
		if err != nil {
			return err
		}
		nli.NextVdfDifficulty = &v
	}

	return nil
}
