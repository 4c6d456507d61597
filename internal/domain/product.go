package domain

// ProductID identifies a product within a catalog.
type ProductID int

// PropertyValue is the value a product carries for one property.
type PropertyValue struct {
	PropertyID PropertyID `json:"property_id"`
	Value      Value      `json:"value"`
}

// Product is a catalog record. Products need not carry a value for every
// property; a missing value is meaningful to the any/none operators.
type Product struct {
	ID             ProductID       `json:"id"`
	PropertyValues []PropertyValue `json:"property_values"`
}

// NewProduct creates a product with a copy of the provided values
func NewProduct(id ProductID, values ...PropertyValue) Product {
	return Product{
		ID:             id,
		PropertyValues: copyPropertyValues(values),
	}
}

// Lookup returns the first value carried for propertyID.
func (p Product) Lookup(propertyID PropertyID) (Value, bool) {
	for _, pv := range p.PropertyValues {
		if pv.PropertyID == propertyID {
			return pv.Value, true
		}
	}
	return Value{}, false
}

// WithValue returns a new product with the value for propertyID replaced or
// appended.
func (p Product) WithValue(propertyID PropertyID, value Value) Product {
	values := copyPropertyValues(p.PropertyValues)
	for i := range values {
		if values[i].PropertyID == propertyID {
			values[i].Value = value
			return Product{ID: p.ID, PropertyValues: values}
		}
	}
	values = append(values, PropertyValue{PropertyID: propertyID, Value: value})
	return Product{ID: p.ID, PropertyValues: values}
}

// WithoutValue returns a new product that carries no value for propertyID.
func (p Product) WithoutValue(propertyID PropertyID) Product {
	values := make([]PropertyValue, 0, len(p.PropertyValues))
	for _, pv := range p.PropertyValues {
		if pv.PropertyID != propertyID {
			values = append(values, pv)
		}
	}
	return Product{ID: p.ID, PropertyValues: values}
}

func copyPropertyValues(values []PropertyValue) []PropertyValue {
	if values == nil {
		return nil
	}
	out := make([]PropertyValue, len(values))
	copy(out, values)
	return out
}

func copyProducts(products []Product) []Product {
	if products == nil {
		return nil
	}
	out := make([]Product, len(products))
	copy(out, products)
	return out
}
