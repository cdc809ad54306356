package canonical

import (
	"testing"

	"arweave.network/validator/internal/header"
	"arweave.network/validator/internal/primitives"
)

func minimalHeader() *header.BlockHeader {
	return &header.BlockHeader{
		Diff:                          primitives.ZeroU256(),
		CumulativeDiff:                primitives.ZeroU256(),
		PreviousCumulativeDiff:        primitives.ZeroU256(),
		PricePerGiBMinute:             primitives.ZeroU256(),
		ScheduledPricePerGiBMinute:    primitives.ZeroU256(),
		DebtSupply:                    primitives.ZeroU256(),
		Denomination:                  primitives.ZeroU256(),
		KryderPlusRateMultiplier:      primitives.ZeroU256(),
		KryderPlusRateMultiplierLatch: primitives.ZeroU256(),
		MerkleRebaseSupportThreshold:  primitives.ZeroU256(),
	}
}

func TestBuildPreimageDeterministic(t *testing.T) {
	h := minimalHeader()
	a := BuildPreimage(h)
	b := BuildPreimage(h)
	if string(a) != string(b) {
		t.Fatalf("BuildPreimage is not deterministic")
	}
}

func TestIsBlockHashValidAgreesWithComputeBlockHash(t *testing.T) {
	h := minimalHeader()
	h.IndepHash = ComputeBlockHash(h)
	if !IsBlockHashValid(h) {
		t.Fatalf("expected freshly stamped indep_hash to validate")
	}
	h.IndepHash[0] ^= 0xFF
	if IsBlockHashValid(h) {
		t.Fatalf("expected corrupted indep_hash to fail validation")
	}
}

func TestDoubleSigningProofAbsentIsSingleZeroByte(t *testing.T) {
	w := &Writer{}
	writeDoubleSigningProof(w, nil)
	if got := w.Bytes(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("absent double signing proof: got %x want [00]", got)
	}
}
