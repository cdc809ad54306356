package vdf

import "github.com/pkg/errors"

var (
	errTooFewCheckpoints   = errors.New("vdf: too few checkpoints to verify")
	errWrongCheckpointCount = errors.New("vdf: wrong last-step checkpoint count")
)
