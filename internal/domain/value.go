package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ListSeparator joins the entries of a multi-valued attribute when it is
// rendered as a single string, and splits free-text "in" input.
const ListSeparator = ", "

// ValueKind discriminates the variants of Value.
type ValueKind int

const (
	ValueKindText ValueKind = iota
	ValueKindNumber
	ValueKindList
)

func (k ValueKind) String() string {
	switch k {
	case ValueKindText:
		return "text"
	case ValueKindNumber:
		return "number"
	case ValueKindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a stored attribute value: a string, a number, or an ordered list
// of strings for multi-valued enumerated attributes.
type Value struct {
	kind   ValueKind
	text   string
	number float64
	items  []string
}

// TextValue creates a string value.
func TextValue(text string) Value {
	return Value{kind: ValueKindText, text: text}
}

// NumberValue creates a numeric value.
func NumberValue(number float64) Value {
	return Value{kind: ValueKindNumber, number: number}
}

// ListValue creates a multi-valued attribute from its entries.
func ListValue(items ...string) Value {
	return Value{kind: ValueKindList, items: copyStrings(items)}
}

// DecodeList turns a ", "-joined string into a list value. Strings without a
// separator stay text values so single-valued attributes keep their kind.
func DecodeList(joined string) Value {
	if !strings.Contains(joined, ListSeparator) {
		return TextValue(joined)
	}
	return ListValue(strings.Split(joined, ListSeparator)...)
}

// Kind returns the value variant.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Number returns the numeric payload of a number value.
func (v Value) Number() (float64, bool) {
	if v.kind != ValueKindNumber {
		return 0, false
	}
	return v.number, true
}

// String renders the value the way it is compared against free-text input.
func (v Value) String() string {
	switch v.kind {
	case ValueKindNumber:
		return formatNumber(v.number)
	case ValueKindList:
		return strings.Join(v.items, ListSeparator)
	default:
		return v.text
	}
}

// formatNumber renders n in shortest form, switching to exponent notation
// below 1e-6 and from 1e21 up, e.g. 1e+21 and 1.5e-7.
func formatNumber(n float64) string {
	abs := math.Abs(n)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	mantissa, exponent, _ := strings.Cut(strconv.FormatFloat(n, 'e', -1, 64), "e")
	sign, digits := exponent[:1], strings.TrimLeft(exponent[1:], "0")
	return mantissa + "e" + sign + digits
}

// Items returns the decoded entries of the value. Single values yield
// themselves.
func (v Value) Items() []string {
	if v.kind == ValueKindList {
		return copyStrings(v.items)
	}
	return []string{v.String()}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueKindNumber:
		return v.number == other.number
	case ValueKindList:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if v.items[i] != other.items[i] {
				return false
			}
		}
		return true
	default:
		return v.text == other.text
	}
}

// MarshalJSON encodes numbers as JSON numbers, lists as arrays and text as
// strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueKindNumber:
		return json.Marshal(v.number)
	case ValueKindList:
		items := v.items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	default:
		return json.Marshal(v.text)
	}
}
