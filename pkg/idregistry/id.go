package idregistry

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by an ID.
type Kind uint8

const (
	// KindNone is the zero ID: "no identifier".
	KindNone Kind = iota
	KindString
	KindNumber
)

// ID is an opaque node identifier. It is either a string, a number, or None.
// IDs are comparable and can be used as map keys.
type ID struct {
	kind Kind
	str  string
	num  float64
}

// None is the absent identifier.
var None ID

// StringID returns a string identifier.
func StringID(s string) ID {
	return ID{kind: KindString, str: s}
}

// NumberID returns a numeric identifier.
func NumberID(n float64) ID {
	return ID{kind: KindNumber, num: n}
}

// Kind reports which variant the ID holds.
func (id ID) Kind() Kind {
	return id.kind
}

// IsNone reports whether id is the absent identifier.
func (id ID) IsNone() bool {
	return id.kind == KindNone
}

// AsString returns the string value of a string ID.
func (id ID) AsString() (string, bool) {
	return id.str, id.kind == KindString
}

// AsNumber returns the numeric value of a number ID.
func (id ID) AsNumber() (float64, bool) {
	return id.num, id.kind == KindNumber
}

// String implements fmt.Stringer.
func (id ID) String() string {
	switch id.kind {
	case KindString:
		return strconv.Quote(id.str)
	case KindNumber:
		return strconv.FormatFloat(id.num, 'g', -1, 64)
	default:
		return "<none>"
	}
}

// MarshalJSON encodes string IDs as JSON strings, number IDs as numbers and
// None as null.
func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case KindString:
		return json.Marshal(id.str)
	case KindNumber:
		return json.Marshal(id.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes the encoding produced by MarshalJSON.
func (id *ID) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		*id = StringID(x)
	case float64:
		*id = NumberID(x)
	default:
		*id = None
	}
	return nil
}

// normalize validates an ID and returns its canonical form: strings are
// trimmed and must be non-empty, numbers must be finite.
func normalize(id ID) (ID, bool) {
	switch id.kind {
	case KindString:
		s := strings.TrimSpace(id.str)
		if s == "" {
			return None, false
		}
		return StringID(s), true
	case KindNumber:
		if math.IsNaN(id.num) || math.IsInf(id.num, 0) {
			return None, false
		}
		return id, true
	default:
		return None, false
	}
}
