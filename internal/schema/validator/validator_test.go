package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/rpattn/productfilter/internal/domain"
)

func validProperties() []domain.Property {
	return []domain.Property{
		domain.NewProperty(0, "Product Name", domain.PropertyTypeString),
		domain.NewProperty(2, "weight (oz)", domain.PropertyTypeNumber),
		domain.NewProperty(3, "category", domain.PropertyTypeEnumerated, "tools", "electronics"),
	}
}

func TestValidateProperties_AcceptsCatalogProperties(t *testing.T) {
	if err := ValidateProperties(validProperties()); err != nil {
		t.Fatalf("expected validation to pass, got error: %v", err)
	}
}

func TestValidateProperties_RejectsDuplicateIDs(t *testing.T) {
	props := append(validProperties(), domain.NewProperty(0, "again", domain.PropertyTypeString))

	err := ValidateProperties(props)
	if !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog for duplicate ids, got %v", err)
	}
}

func TestValidateProperties_RejectsUnknownType(t *testing.T) {
	props := []domain.Property{{ID: 1, Name: "wireless", Type: "boolean"}}

	if err := ValidateProperties(props); err == nil {
		t.Fatalf("expected error for unsupported property type")
	}
}

func TestValidateProperties_EnumeratedNeedsValues(t *testing.T) {
	props := []domain.Property{{ID: 1, Name: "category", Type: domain.PropertyTypeEnumerated}}

	if err := ValidateProperties(props); err == nil {
		t.Fatalf("expected error when enumerated property has no values")
	}
}

func TestValidateProperties_OnlyEnumeratedDeclaresValues(t *testing.T) {
	props := []domain.Property{{ID: 1, Name: "color", Type: domain.PropertyTypeString, Values: []string{"red"}}}

	if err := ValidateProperties(props); err == nil {
		t.Fatalf("expected error when string property declares values")
	}
}

func TestValidateOperators(t *testing.T) {
	if err := ValidateOperators(domain.DefaultOperators()); err != nil {
		t.Fatalf("expected default operators to validate, got %v", err)
	}

	bad := []domain.Operator{{ID: "starts_with", Text: "Starts with"}}
	if err := ValidateOperators(bad); err == nil {
		t.Fatalf("expected unknown operator to be rejected")
	}

	dup := []domain.Operator{{ID: domain.OperatorAny}, {ID: domain.OperatorAny}}
	if err := ValidateOperators(dup); err == nil {
		t.Fatalf("expected duplicate operator to be rejected")
	}
}

func TestValidateProducts(t *testing.T) {
	props := validProperties()

	good := []domain.Product{
		domain.NewProduct(1,
			domain.PropertyValue{PropertyID: 0, Value: domain.TextValue("Hammer")},
			domain.PropertyValue{PropertyID: 2, Value: domain.NumberValue(19)},
			domain.PropertyValue{PropertyID: 3, Value: domain.ListValue("tools", "electronics")},
		),
		domain.NewProduct(2),
	}
	if err := ValidateProducts(props, good); err != nil {
		t.Fatalf("expected products to validate, got %v", err)
	}

	cases := map[string][]domain.Product{
		"unknown property": {domain.NewProduct(1, domain.PropertyValue{PropertyID: 9, Value: domain.TextValue("x")})},
		"duplicate id":     {domain.NewProduct(1), domain.NewProduct(1)},
	}
	for name, products := range cases {
		if err := ValidateProducts(props, products); !errors.Is(err, ErrInvalidCatalog) {
			t.Errorf("%s: expected ErrInvalidCatalog, got %v", name, err)
		}
	}
}

func TestValidateProducts_AcceptsMalformedValues(t *testing.T) {
	products := []domain.Product{
		domain.NewProduct(1, domain.PropertyValue{PropertyID: 2, Value: domain.TextValue("heavy")}),
		domain.NewProduct(2, domain.PropertyValue{PropertyID: 3, Value: domain.TextValue("garden")}),
	}
	if err := ValidateProducts(validProperties(), products); err != nil {
		t.Fatalf("expected malformed values to be accepted, got %v", err)
	}
}

func TestCheckValues(t *testing.T) {
	props := validProperties()

	products := []domain.Product{
		domain.NewProduct(1,
			domain.PropertyValue{PropertyID: 2, Value: domain.NumberValue(19)},
			domain.PropertyValue{PropertyID: 3, Value: domain.ListValue("tools", "electronics")},
		),
		domain.NewProduct(2,
			domain.PropertyValue{PropertyID: 2, Value: domain.TextValue("heavy")},
			domain.PropertyValue{PropertyID: 3, Value: domain.ListValue("tools", "garden")},
			domain.PropertyValue{PropertyID: 9, Value: domain.TextValue("x")},
		),
	}

	warnings := CheckValues(props, products)
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	if !strings.Contains(warnings[0], `"heavy"`) || !strings.Contains(warnings[1], `"garden"`) {
		t.Errorf("unexpected warnings %v", warnings)
	}
	if got := CheckValues(props, products[:1]); len(got) != 0 {
		t.Errorf("expected no warnings for well-formed values, got %v", got)
	}
}

func TestValidateCatalog_ReportsAllProblems(t *testing.T) {
	props := []domain.Property{{ID: 1, Name: "", Type: domain.PropertyTypeString}}
	ops := []domain.Operator{{ID: "starts_with"}}

	err := ValidateCatalog(props, ops, nil)
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	if !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected joined error to wrap ErrInvalidCatalog, got %v", err)
	}
}
