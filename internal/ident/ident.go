package ident

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ID is a stable record identifier.
type ID uint64

// ErrInvalid reports a value that cannot be parsed into a positive ID.
var ErrInvalid = errors.New("invalid identifier")

// Parse converts a decimal string into an ID. Surrounding whitespace is ignored.
func Parse(value string) (ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalid)
	}
	n, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, value)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: zero", ErrInvalid)
	}
	return ID(n), nil
}

// MustParse is Parse for literals in tests and tables.
func MustParse(value string) ID {
	id, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return id
}

// Valid reports whether id can be handed out.
func (id ID) Valid() bool { return id > 0 }

// String returns the decimal form used in the catalog.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Next returns the identifier after id.
func (id ID) Next() ID { return id + 1 }

// MarshalJSON encodes the ID as a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*id = 0
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	parsed, err := Parse(trimmed)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Less orders identifiers numerically.
func Less(a, b ID) bool { return a < b }
