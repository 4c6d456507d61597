package filtering

import (
	"math"
	"strings"

	"github.com/rpattn/productfilter/internal/domain"
)

// toNumber coerces input to a finite float. Blank input counts as zero;
// non-numeric input fails.
func toNumber(input string) (float64, bool) {
	if strings.TrimSpace(input) == "" {
		return 0, true
	}
	return domain.ParseNumber(input)
}

// valueNumber coerces a stored value. Number values are used directly, text
// goes through the same parsing as user input and lists never coerce.
func valueNumber(v domain.Value) (float64, bool) {
	switch v.Kind() {
	case domain.ValueKindNumber:
		n, _ := v.Number()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case domain.ValueKindText:
		return toNumber(v.String())
	default:
		return 0, false
	}
}
