package filtering

import (
	"strings"

	"github.com/rpattn/productfilter/internal/domain"
)

// Predicate reports whether a product satisfies a compiled request.
type Predicate func(domain.Product) bool

func matchNone(domain.Product) bool { return false }

// attributePredicate evaluates test against the product's value for
// propertyID. Products without the attribute never match.
func attributePredicate(propertyID domain.PropertyID, test func(domain.Value) bool) Predicate {
	return func(p domain.Product) bool {
		v, ok := p.Lookup(propertyID)
		if !ok {
			return false
		}
		return test(v)
	}
}

// compilePredicate builds the predicate for one operator. Per-request setup
// (thresholds, candidate sets, lowercased needles) happens here so the scan
// does no repeated work.
func compilePredicate(propertyID domain.PropertyID, operatorID domain.OperatorID, input string, selections []string) Predicate {
	switch operatorID {
	case domain.OperatorEquals:
		return equalsPredicate(propertyID, input, selections)
	case domain.OperatorGreaterThan:
		return comparePredicate(propertyID, input, func(stored, threshold float64) bool { return stored > threshold })
	case domain.OperatorLessThan:
		return comparePredicate(propertyID, input, func(stored, threshold float64) bool { return stored < threshold })
	case domain.OperatorAny:
		return func(p domain.Product) bool {
			_, ok := p.Lookup(propertyID)
			return ok
		}
	case domain.OperatorNone:
		return func(p domain.Product) bool {
			_, ok := p.Lookup(propertyID)
			return !ok
		}
	case domain.OperatorIn:
		return inPredicate(propertyID, input, selections)
	case domain.OperatorContains:
		needle := strings.ToLower(input)
		return attributePredicate(propertyID, func(v domain.Value) bool {
			return strings.Contains(strings.ToLower(v.String()), needle)
		})
	default:
		return matchNone
	}
}

// equalsPredicate compares free-text input exactly against the stringified
// value. Without input, every selection must be one of the value's items.
func equalsPredicate(propertyID domain.PropertyID, input string, selections []string) Predicate {
	if input != "" {
		return attributePredicate(propertyID, func(v domain.Value) bool {
			return v.String() == input
		})
	}
	if len(selections) == 0 {
		return matchNone
	}
	required := append([]string(nil), selections...)
	return attributePredicate(propertyID, func(v domain.Value) bool {
		items := make(map[string]struct{})
		for _, item := range v.Items() {
			items[item] = struct{}{}
		}
		for _, want := range required {
			if _, ok := items[want]; !ok {
				return false
			}
		}
		return true
	})
}

func comparePredicate(propertyID domain.PropertyID, input string, cmp func(stored, threshold float64) bool) Predicate {
	threshold, ok := toNumber(input)
	if !ok {
		return matchNone
	}
	return attributePredicate(propertyID, func(v domain.Value) bool {
		stored, ok := valueNumber(v)
		if !ok {
			return false
		}
		return cmp(stored, threshold)
	})
}

// inPredicate matches when the stringified value, or any of its items, is one
// of the candidates. Selections win over free-text input, which is split on
// the list separator.
func inPredicate(propertyID domain.PropertyID, input string, selections []string) Predicate {
	candidates := make(map[string]struct{})
	switch {
	case len(selections) > 0:
		for _, s := range selections {
			candidates[s] = struct{}{}
		}
	case input != "":
		for _, s := range strings.Split(input, domain.ListSeparator) {
			candidates[s] = struct{}{}
		}
	default:
		return matchNone
	}

	return attributePredicate(propertyID, func(v domain.Value) bool {
		if _, ok := candidates[v.String()]; ok {
			return true
		}
		if v.Kind() != domain.ValueKindList {
			return false
		}
		for _, item := range v.Items() {
			if _, ok := candidates[item]; ok {
				return true
			}
		}
		return false
	})
}
