package blockindex

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// LoadFile reads every fixed 96-byte record from path, in order. A missing
// file is treated as an empty index.
func LoadFile(path string) ([]Item, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "blockindex: open")
	}
	defer f.Close()

	var items []Item
	buf := make([]byte, recordSize)
	for {
		_, err := io.ReadFull(f, buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "blockindex: read record")
		}
		item, err := decodeItem(buf)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// AppendFile appends items to path in fixed 96-byte records, creating the
// file if necessary. The file is opened append-only for the duration of
// the call: the on-disk index is append-only by contract.
func AppendFile(path string, items []Item) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "blockindex: open for append")
	}
	defer f.Close()

	for _, item := range items {
		if _, err := f.Write(item.encode()); err != nil {
			return errors.Wrap(err, "blockindex: write record")
		}
	}
	return nil
}
