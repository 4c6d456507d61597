package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpattn/productfilter/internal/domain"
)

// ErrInvalidCatalog wraps every catalog validation failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

// ValidateProperties ensures property definitions are unique, typed, and that
// enumerated properties declare their domain.
func ValidateProperties(properties []domain.Property) error {
	var problems []string
	seenIDs := make(map[domain.PropertyID]struct{}, len(properties))

	for _, p := range properties {
		if _, dup := seenIDs[p.ID]; dup {
			problems = append(problems, fmt.Sprintf("property %d is declared more than once", p.ID))
		}
		seenIDs[p.ID] = struct{}{}

		if strings.TrimSpace(p.Name) == "" {
			problems = append(problems, fmt.Sprintf("property %d has no name", p.ID))
		}
		if !p.Type.IsValid() {
			problems = append(problems, fmt.Sprintf("property %d has unsupported type %q", p.ID, p.Type))
			continue
		}
		if p.Type == domain.PropertyTypeEnumerated && len(p.Values) == 0 {
			problems = append(problems, fmt.Sprintf("enumerated property %d declares no values", p.ID))
		}
		if p.Type != domain.PropertyTypeEnumerated && len(p.Values) > 0 {
			problems = append(problems, fmt.Sprintf("property %d of type %s cannot declare values", p.ID, p.Type))
		}
	}

	return joinProblems(problems)
}

// ValidateOperators ensures every operator is one of the supported ids and
// appears once.
func ValidateOperators(operators []domain.Operator) error {
	var problems []string
	seen := make(map[domain.OperatorID]struct{}, len(operators))

	for _, op := range operators {
		if !op.ID.IsKnown() {
			problems = append(problems, fmt.Sprintf("operator %q is not supported", op.ID))
		}
		if _, dup := seen[op.ID]; dup {
			problems = append(problems, fmt.Sprintf("operator %q is declared more than once", op.ID))
		}
		seen[op.ID] = struct{}{}
	}

	return joinProblems(problems)
}

// ValidateProducts checks that product ids are unique and every value
// references a known property.
func ValidateProducts(properties []domain.Property, products []domain.Product) error {
	var problems []string
	known := make(map[domain.PropertyID]struct{}, len(properties))
	for _, p := range properties {
		known[p.ID] = struct{}{}
	}
	seen := make(map[domain.ProductID]struct{}, len(products))

	for _, product := range products {
		if _, dup := seen[product.ID]; dup {
			problems = append(problems, fmt.Sprintf("product %d is declared more than once", product.ID))
		}
		seen[product.ID] = struct{}{}

		for _, pv := range product.PropertyValues {
			if _, ok := known[pv.PropertyID]; !ok {
				problems = append(problems, fmt.Sprintf("product %d references unknown property %d", product.ID, pv.PropertyID))
			}
		}
	}

	return joinProblems(problems)
}

// CheckValues reports values whose shape does not fit their property:
// non-numeric values of number properties and enumerated items outside the
// declared domain. Such values stay in the catalog; numeric comparisons
// skip them.
func CheckValues(properties []domain.Property, products []domain.Product) []string {
	var warnings []string
	byID := make(map[domain.PropertyID]domain.Property, len(properties))
	for _, p := range properties {
		byID[p.ID] = p
	}

	for _, product := range products {
		for _, pv := range product.PropertyValues {
			property, ok := byID[pv.PropertyID]
			if !ok {
				continue
			}
			switch property.Type {
			case domain.PropertyTypeNumber:
				if pv.Value.Kind() != domain.ValueKindNumber {
					warnings = append(warnings, fmt.Sprintf("product %d: %s is not a number, got %q", product.ID, property.Name, pv.Value.String()))
				}
			case domain.PropertyTypeEnumerated:
				for _, item := range pv.Value.Items() {
					if !property.HasValue(item) {
						warnings = append(warnings, fmt.Sprintf("product %d: %q is not a value of %s", product.ID, item, property.Name))
					}
				}
			}
		}
	}
	return warnings
}

// ValidateCatalog runs every catalog check and reports all problems at once.
func ValidateCatalog(properties []domain.Property, operators []domain.Operator, products []domain.Product) error {
	var errs []error
	if err := ValidateProperties(properties); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateOperators(operators); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateProducts(properties, products); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
}
