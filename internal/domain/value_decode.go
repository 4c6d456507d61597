package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// DecodeValue converts a raw value read by a catalog provider into a Value
// for a property of type t. Enumerated attributes have their ", "-joined
// strings decoded into lists; number attributes are coerced when possible and
// otherwise kept as text so validation can report them.
func (t PropertyType) DecodeValue(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Value{}, fmt.Errorf("empty value")
	case Value:
		return v, nil
	case []string:
		return t.decodeList(v), nil
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, err := cast.ToStringE(item)
			if err != nil {
				return Value{}, fmt.Errorf("unsupported list item %v: %w", item, err)
			}
			items = append(items, s)
		}
		return t.decodeList(items), nil
	case map[string]any, map[any]any:
		return Value{}, fmt.Errorf("unsupported value %v", raw)
	}

	switch t {
	case PropertyTypeNumber:
		if s, ok := raw.(string); ok {
			s = strings.TrimSpace(s)
			if n, ok := ParseNumber(s); ok {
				return NumberValue(n), nil
			}
			return TextValue(s), nil
		}
		if b, ok := raw.(bool); ok {
			return TextValue(cast.ToString(b)), nil
		}
		n, err := cast.ToFloat64E(raw)
		if err != nil {
			return Value{}, fmt.Errorf("unsupported value %v: %w", raw, err)
		}
		return NumberValue(n), nil
	case PropertyTypeEnumerated:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return Value{}, fmt.Errorf("unsupported value %v: %w", raw, err)
		}
		return DecodeList(s), nil
	default:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return Value{}, fmt.Errorf("unsupported value %v: %w", raw, err)
		}
		return TextValue(s), nil
	}
}

// ParseNumber parses trimmed decimal text into a finite float. Blank text,
// digit separators, NaN and infinities fail.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "_") {
		return 0, false
	}
	n, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func (t PropertyType) decodeList(items []string) Value {
	if len(items) == 1 {
		return t.decodeSingle(items[0])
	}
	return ListValue(items...)
}

func (t PropertyType) decodeSingle(item string) Value {
	v, err := t.DecodeValue(item)
	if err != nil {
		return TextValue(item)
	}
	return v
}
