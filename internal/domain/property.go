package domain

// PropertyID identifies a property within a catalog. Zero is a valid id.
type PropertyID int

// PropertyType represents the type of a catalog property
type PropertyType string

const (
	PropertyTypeString     PropertyType = "string"
	PropertyTypeNumber     PropertyType = "number"
	PropertyTypeEnumerated PropertyType = "enumerated"
)

// IsValid reports whether t is one of the known property types.
func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyTypeString, PropertyTypeNumber, PropertyTypeEnumerated:
		return true
	default:
		return false
	}
}

// LegalOperators returns the operators that may be applied to a property of
// this type, in display order. Unknown types have no legal operators.
func (t PropertyType) LegalOperators() []OperatorID {
	switch t {
	case PropertyTypeEnumerated:
		return []OperatorID{OperatorEquals, OperatorAny, OperatorNone, OperatorIn}
	case PropertyTypeNumber:
		return []OperatorID{OperatorEquals, OperatorGreaterThan, OperatorLessThan, OperatorAny, OperatorNone, OperatorIn}
	case PropertyTypeString:
		return []OperatorID{OperatorEquals, OperatorAny, OperatorNone, OperatorIn, OperatorContains}
	default:
		return nil
	}
}

// Allows reports whether op is legal for a property of this type.
func (t PropertyType) Allows(op OperatorID) bool {
	for _, legal := range t.LegalOperators() {
		if legal == op {
			return true
		}
	}
	return false
}

// Property is a typed attribute definition that products may carry a value for.
type Property struct {
	ID   PropertyID   `json:"id"`
	Name string       `json:"name"`
	Type PropertyType `json:"type"`
	// Values is the ordered domain of legal values. Only enumerated
	// properties carry one.
	Values []string `json:"values,omitempty"`
}

// NewProperty creates a property, copying the enumerated domain so the
// caller's slice can be reused.
func NewProperty(id PropertyID, name string, propertyType PropertyType, values ...string) Property {
	p := Property{ID: id, Name: name, Type: propertyType}
	if propertyType == PropertyTypeEnumerated {
		p.Values = copyStrings(values)
	}
	return p
}

// IsEnumerated reports whether the property draws its values from a fixed set.
func (p Property) IsEnumerated() bool {
	return p.Type == PropertyTypeEnumerated
}

// HasValue reports whether value belongs to the enumerated domain.
func (p Property) HasValue(value string) bool {
	for _, candidate := range p.Values {
		if candidate == value {
			return true
		}
	}
	return false
}

func copyProperties(properties []Property) []Property {
	if properties == nil {
		return nil
	}
	out := make([]Property, len(properties))
	for i, p := range properties {
		p.Values = copyStrings(p.Values)
		out[i] = p
	}
	return out
}

func copyStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
