// Package vdf reproduces the nonce-limiter step sequence and per-step
// checkpoint sequence by chained SHA-256 with salting and seed-reset
// mixing, following the consensus description directly. Step-level and
// within-step checkpoint chains are independent data-parallel tasks
// fanned out with golang.org/x/sync/errgroup and merged back in ascending
// index order before the final reversal and comparison.
package vdf

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/sync/errgroup"

	"arweave.network/validator/internal/header"
	"arweave.network/validator/internal/primitives"
)

// NumCheckpointsPerStep is the number of chained SHA-256 checkpoints that
// make up one VDF step.
const NumCheckpointsPerStep = 25

// ResetFrequency is the number of steps between reset-mixing boundaries.
const ResetFrequency = 1200

func saltBytes(salt uint64) []byte {
	var b [32]byte
	binary.BigEndian.PutUint64(b[24:], salt)
	return b[:]
}

// saltForStep implements salt(step) = (step-1)*25 + 1 for step >= 1, else 0.
func saltForStep(step int64) uint64 {
	if step < 1 {
		return 0
	}
	return uint64(step-1)*NumCheckpointsPerStep + 1
}

// checkpoint is the single-checkpoint primitive: h = SHA-256(salt||seed),
// then iters-1 further rounds of h = SHA-256(salt||h).
func checkpoint(salt uint64, seed primitives.Hash256, iters uint64) primitives.Hash256 {
	sb := saltBytes(salt)
	sum := sha256.Sum256(append(append([]byte{}, sb...), seed[:]...))
	h := sum
	for i := uint64(1); i < iters; i++ {
		sum = sha256.Sum256(append(append([]byte{}, sb...), h[:]...))
		h = sum
	}
	var out primitives.Hash256
	copy(out[:], h[:])
	return out
}

// resetMix computes the seed entering the next step after a reset
// boundary: SHA-256(seed || SHA-256(resetSeed)).
func resetMix(seed primitives.Hash256, resetSeed primitives.Hash384) primitives.Hash256 {
	inner := sha256.Sum256(resetSeed[:])
	outer := sha256.Sum256(append(append([]byte{}, seed[:]...), inner[:]...))
	var out primitives.Hash256
	copy(out[:], outer[:])
	return out
}

// chain runs count sequential single-checkpoint computations starting from
// seed with salts startSalt, startSalt+1, ..., returning every output.
func chain(seed primitives.Hash256, startSalt uint64, count int, iters uint64) []primitives.Hash256 {
	out := make([]primitives.Hash256, count)
	cur := seed
	for i := 0; i < count; i++ {
		cur = checkpoint(startSalt+uint64(i), cur, iters)
		out[i] = cur
	}
	return out
}

func reverseHashes(in []primitives.Hash256) []primitives.Hash256 {
	out := make([]primitives.Hash256, len(in))
	for i, h := range in {
		out[len(out)-1-i] = h
	}
	return out
}

// VerifyLastStepCheckpoints recomputes the 25 fine-grained checkpoints
// proving the final second of VDF work and compares them, reversed,
// against nli.LastStepCheckpoints.
func VerifyLastStepCheckpoints(nli *header.NonceLimiterInfo, parentSeed primitives.Hash384, iters uint64) (bool, error) {
	if len(nli.Checkpoints) < 2 {
		return false, errTooFewCheckpoints
	}
	if len(nli.LastStepCheckpoints) != NumCheckpointsPerStep {
		return false, errWrongCheckpointCount
	}

	seed0 := nli.Checkpoints[1]
	if nli.GlobalStepNumber%NumCheckpointsPerStep == 0 {
		seed0 = resetMix(seed0, parentSeed)
	}
	baseSalt := saltForStep(int64(nli.GlobalStepNumber) - 1)

	results := make([]primitives.Hash256, NumCheckpointsPerStep)
	var g errgroup.Group
	for i := 0; i < NumCheckpointsPerStep; i++ {
		i := i
		g.Go(func() error {
			out := chain(seed0, baseSalt, i+1, iters)
			results[i] = out[i]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	got := reverseHashes(results)
	for i := range got {
		if got[i] != nli.LastStepCheckpoints[i] {
			return false, nil
		}
	}
	return true, nil
}

// VerifyStepCheckpoints recomputes every step's committed output from its
// own declared starting seed and compares the reversed sequence against
// nli.Checkpoints.
func VerifyStepCheckpoints(nli *header.NonceLimiterInfo, parentSeed primitives.Hash384, iters uint64) (bool, error) {
	n := len(nli.Checkpoints)
	if n == 0 {
		return false, errTooFewCheckpoints
	}

	steps := make([]primitives.Hash256, 0, n+1)
	steps = append(steps, nli.Checkpoints...)
	steps = append(steps, nli.PrevOutput)
	steps = reverseHashes(steps)

	stepsSinceReset := nli.GlobalStepNumber % ResetFrequency
	resetIndex := n - int(stepsSinceReset) - 1

	results := make([]primitives.Hash256, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			seed := steps[i]
			if i == resetIndex {
				seed = resetMix(seed, parentSeed)
			}
			stepNumber := int64(nli.GlobalStepNumber) - int64(n-1-i)
			out := chain(seed, saltForStep(stepNumber), NumCheckpointsPerStep, iters)
			results[i] = out[NumCheckpointsPerStep-1]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	got := reverseHashes(results)
	for i := range got {
		if got[i] != nli.Checkpoints[i] {
			return false, nil
		}
	}
	return true, nil
}
