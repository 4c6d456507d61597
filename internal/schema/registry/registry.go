// Package registry exposes the read-only property and operator catalog and
// the property type to operator legality table.
package registry

import (
	"github.com/rpattn/productfilter/internal/domain"
)

// InputKind describes which value input a selection needs.
type InputKind string

const (
	// InputNone means no value is needed: the selection is incomplete or the
	// operator is a presence test.
	InputNone InputKind = "none"
	// InputText is a free-text box feeding FilterRequest.InputValue.
	InputText InputKind = "text"
	// InputMultiSelect is a list of the enumerated domain feeding
	// FilterRequest.MultiValue.
	InputMultiSelect InputKind = "multi_select"
)

// Registry holds the immutable properties and operators of one catalog.
// It is safe for concurrent use.
type Registry struct {
	properties   []domain.Property
	propertyByID map[domain.PropertyID]int
	operators    []domain.Operator
	operatorText map[domain.OperatorID]string
}

// New builds a registry from properties and operators. When the same id
// appears twice the first declaration wins.
func New(properties []domain.Property, operators []domain.Operator) *Registry {
	r := &Registry{
		properties:   make([]domain.Property, 0, len(properties)),
		propertyByID: make(map[domain.PropertyID]int, len(properties)),
		operators:    make([]domain.Operator, 0, len(operators)),
		operatorText: make(map[domain.OperatorID]string, len(operators)),
	}
	for _, p := range properties {
		if _, exists := r.propertyByID[p.ID]; exists {
			continue
		}
		r.propertyByID[p.ID] = len(r.properties)
		r.properties = append(r.properties, domain.NewProperty(p.ID, p.Name, p.Type, p.Values...))
	}
	for _, op := range operators {
		if _, exists := r.operatorText[op.ID]; exists {
			continue
		}
		r.operatorText[op.ID] = op.Text
		r.operators = append(r.operators, op)
	}
	return r
}

// NewFromCatalog builds a registry from a catalog snapshot.
func NewFromCatalog(catalog domain.Catalog) *Registry {
	return New(catalog.Properties(), catalog.Operators())
}

// GetProperty returns the property with the given id.
func (r *Registry) GetProperty(id domain.PropertyID) (domain.Property, bool) {
	idx, ok := r.propertyByID[id]
	if !ok {
		return domain.Property{}, false
	}
	p := r.properties[idx]
	return domain.NewProperty(p.ID, p.Name, p.Type, p.Values...), true
}

// Properties returns every property in declaration order.
func (r *Registry) Properties() []domain.Property {
	out := make([]domain.Property, len(r.properties))
	for i, p := range r.properties {
		out[i] = domain.NewProperty(p.ID, p.Name, p.Type, p.Values...)
	}
	return out
}

// Operators returns every known operator in declaration order.
func (r *Registry) Operators() []domain.Operator {
	out := make([]domain.Operator, len(r.operators))
	copy(out, r.operators)
	return out
}

// LegalOperators returns the operators legal for propertyType. The empty
// type stands for "no property selected" and yields the union of all known
// operators, so an operator selector can be populated before a property is
// chosen.
func (r *Registry) LegalOperators(propertyType domain.PropertyType) []domain.OperatorID {
	if propertyType == "" {
		ids := make([]domain.OperatorID, len(r.operators))
		for i, op := range r.operators {
			ids[i] = op.ID
		}
		return ids
	}
	return propertyType.LegalOperators()
}

// OperatorText returns the display text of an operator, or its id when the
// catalog has none.
func (r *Registry) OperatorText(id domain.OperatorID) string {
	if text, ok := r.operatorText[id]; ok && text != "" {
		return text
	}
	return string(id)
}

// OperatorsFor lists the operators an operator selector should offer for the
// selected property. A nil or unknown property yields every known operator.
func (r *Registry) OperatorsFor(propertyID *domain.PropertyID) []domain.Operator {
	var propertyType domain.PropertyType
	if propertyID != nil {
		if p, ok := r.GetProperty(*propertyID); ok {
			propertyType = p.Type
		}
	}
	ids := r.LegalOperators(propertyType)
	out := make([]domain.Operator, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Operator{ID: id, Text: r.OperatorText(id)})
	}
	return out
}

// IsAvailable reports whether operatorID is offered for the selected
// property.
func (r *Registry) IsAvailable(propertyID *domain.PropertyID, operatorID domain.OperatorID) bool {
	for _, op := range r.OperatorsFor(propertyID) {
		if op.ID == operatorID {
			return true
		}
	}
	return false
}

// InputKind returns the value input needed for the current selection.
func (r *Registry) InputKind(propertyID *domain.PropertyID, operatorID *domain.OperatorID) InputKind {
	if propertyID == nil || operatorID == nil {
		return InputNone
	}
	if !r.IsAvailable(propertyID, *operatorID) || !operatorID.RequiresInput() {
		return InputNone
	}
	if p, ok := r.GetProperty(*propertyID); ok && p.IsEnumerated() {
		return InputMultiSelect
	}
	return InputText
}
