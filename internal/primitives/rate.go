package primitives

import (
	"encoding/json"
	"strconv"
)

// USDToARRate is a (dividend, divisor) pair of 64-bit counters; the wire
// form is a two-element array of decimal strings.
type USDToARRate [2]uint64

// UnmarshalJSON decodes the two-element string array form.
func (r *USDToARRate) UnmarshalJSON(data []byte) error {
	var raw [2]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for i, s := range raw {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		r[i] = v
	}
	return nil
}

// MarshalJSON encodes the pair back into its two-element decimal-string form.
func (r USDToARRate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{
		strconv.FormatUint(r[0], 10),
		strconv.FormatUint(r[1], 10),
	})
}
