package blockindex

import "github.com/pkg/errors"

var (
	errBadRecordLength  = errors.New("blockindex: record is not 96 bytes")
	errWeaveSizeOverflow = errors.New("blockindex: weave_size exceeds 64 bits")
	errOutOfRange       = errors.New("blockindex: index out of range")
	errEmptyIndex       = errors.New("blockindex: empty index")
	errByteBeyondWeave  = errors.New("blockindex: byte offset beyond weave size")
)
