// Package jsonid provides an identifier type that clients may send either as
// a JSON number or as a JSON string.
package jsonid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ID is an opaque product or user identifier. The wire form is a JSON number
// when the value is a canonical integer and a JSON string otherwise, so 7,
// 7.0 and "7" name the same product.
type ID string

// Parse trims s and returns it as an ID.
func Parse(s string) ID {
	return ID(strings.TrimSpace(s))
}

// String returns the textual form of the id.
func (id ID) String() string { return string(id) }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id == "" }

// numeric reports whether id is a canonical integer: an optional minus sign
// and digits, no leading zero unless the id is "0", no "-0", and small
// enough to survive a round-trip through a JavaScript number.
func (id ID) numeric() bool {
	s := strings.TrimPrefix(string(id), "-")
	if s == "" || len(s) > 15 {
		return false
	}
	if s[0] == '0' && (len(s) > 1 || len(s) != len(id)) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler. It accepts numbers, strings
// and null (the zero id).
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		if i, ok := integral(n); ok {
			*id = ID(strconv.FormatInt(i, 10))
			return nil
		}
		*id = ID(n.String())
		return nil
	}
}

// integral returns n as an int64 when it denotes a whole number, whatever
// its spelling: 1, 1.0, 1e0 and 10E-1 all yield 1.
func integral(n json.Number) (int64, bool) {
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, _, err := big.ParseFloat(n.String(), 10, 256, big.ToNearestEven)
	if err != nil || !f.IsInt() {
		return 0, false
	}
	i, acc := f.Int64()
	return i, acc == big.Exact
}
