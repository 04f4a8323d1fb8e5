package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Int decodes a JSON value that clients send either as a number or as a
// numeric string. present is false for a missing value, JSON null or an
// empty string.
func Int(raw json.RawMessage) (n int64, present bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false, fmt.Errorf("invalid integer %s: %w", raw, err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("invalid integer %q", s)
		}
		return n, true, nil
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, false, fmt.Errorf("invalid integer %s", raw)
	}
	n, err = num.Int64()
	if err != nil {
		// Accept 3.0 but not 3.5.
		f, ferr := num.Float64()
		if ferr != nil || f != float64(int64(f)) {
			return 0, false, fmt.Errorf("invalid integer %s", raw)
		}
		n = int64(f)
	}
	return n, true, nil
}

// Number is an integer JSON field that tolerates numeric strings.
type Number struct {
	Value int64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	v, ok, err := Int(b)
	if err != nil {
		return err
	}
	n.Value, n.Set = v, ok
	return nil
}
