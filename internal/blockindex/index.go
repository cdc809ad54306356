// Package blockindex implements the ordered, append-only sequence of
// {block_hash, weave_size, tx_root} records used to map a recall byte to
// the historical block that contains it. Uninitialized and Initialized
// are distinct types so the zero-length, not-yet-synced state can't be
// queried by mistake; on-disk records use little-endian weave_size and
// are paginated in 720-entry pages with a 20-block confirmation buffer.
// HTTP fetching itself stays an external collaborator: Fetcher is
// injected so the pagination arithmetic here is independently testable.
package blockindex

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"arweave.network/validator/internal/primitives"
)

// pageSize is the maximum number of records requested per fetch.
const pageSize = 720

// confirmationBuffer is how many blocks behind the peer's reported current
// height initialization stops at, to avoid indexing blocks that might
// still reorg out.
const confirmationBuffer = 20

// Fetcher retrieves block-index records for the inclusive height range
// [start, end] from a peer. Implementations live outside this module: peer
// HTTP fetching is an external collaborator injected at construction time.
type Fetcher interface {
	FetchPage(ctx context.Context, start, end uint64) ([]Item, error)
}

// Uninitialized is a block index that has not yet been brought up to date
// with a peer. It has no lookup operations; modeling the two-state
// lifecycle as distinct concrete types keeps a caller from ever calling
// Locate before the index has been initialized.
type Uninitialized struct {
	items []Item
}

// New returns an empty Uninitialized index.
func New() *Uninitialized {
	return &Uninitialized{}
}

// NewFromRecords returns an Uninitialized index seeded with already-loaded
// records (e.g. from LoadFile).
func NewFromRecords(items []Item) *Uninitialized {
	return &Uninitialized{items: append([]Item{}, items...)}
}

// Init fetches pages of at most 720 records, starting at len(records)+1 and
// ending at currentHeight-20, appending each page as it arrives, and
// returns the Initialized index. If the loaded tail is already within the
// confirmation buffer of currentHeight, nothing is fetched.
func (u *Uninitialized) Init(ctx context.Context, f Fetcher, currentHeight uint64) (*Initialized, error) {
	items := append([]Item{}, u.items...)

	if currentHeight < confirmationBuffer {
		return &Initialized{items: items}, nil
	}
	target := currentHeight - confirmationBuffer
	start := uint64(len(items)) + 1

	for start <= target {
		end := start + pageSize - 1
		if end > target {
			end = target
		}
		page, err := f.FetchPage(ctx, start, end)
		if err != nil {
			return nil, errors.Wrap(err, "blockindex: fetch page")
		}
		items = append(items, page...)
		start = end + 1
	}

	return &Initialized{items: items}, nil
}

// Initialized is a block index ready for lookups. It is immutable after
// construction and safe to share by reference across goroutines.
type Initialized struct {
	items []Item
}

// NewInitializedFromRecords wraps already-fetched records directly,
// bypassing Init; used by tests and by callers that maintain their own
// fetch/persist loop.
func NewInitializedFromRecords(items []Item) *Initialized {
	return &Initialized{items: append([]Item{}, items...)}
}

// Len returns the number of records in the index.
func (idx *Initialized) Len() uint64 { return uint64(len(idx.items)) }

// Get returns the record at position i (the block at height i).
func (idx *Initialized) Get(i uint64) (Item, error) {
	if i >= uint64(len(idx.items)) {
		return Item{}, errOutOfRange
	}
	return idx.items[i], nil
}

// LocateResult identifies the historical block a recall byte falls in.
type LocateResult struct {
	Height     uint64
	BlockStart uint64
	BlockEnd   uint64
	TxRoot     primitives.Hash256
}

// Locate binary-searches for the first record whose weave_size is >= byte,
// and returns that record as block_end along with the preceding record's
// weave_size as block_start.
func (idx *Initialized) Locate(b uint64) (LocateResult, error) {
	if len(idx.items) == 0 {
		return LocateResult{}, errEmptyIndex
	}
	i := sort.Search(len(idx.items), func(i int) bool {
		return idx.items[i].WeaveSize >= b
	})
	if i == len(idx.items) {
		return LocateResult{}, errByteBeyondWeave
	}
	var blockStart uint64
	if i > 0 {
		blockStart = idx.items[i-1].WeaveSize
	}
	return LocateResult{
		Height:     uint64(i),
		BlockStart: blockStart,
		BlockEnd:   idx.items[i].WeaveSize,
		TxRoot:     idx.items[i].TxRoot,
	}, nil
}
