package domain

import (
	"time"

	"github.com/google/uuid"
)

// Catalog is an immutable snapshot of the properties, operators and products
// handed over by a catalog provider. It is built once and shared read-only.
type Catalog struct {
	ID         uuid.UUID
	Source     string
	LoadedAt   time.Time
	properties []Property
	operators  []Operator
	products   []Product
}

// NewCatalog creates a catalog snapshot. Inputs are copied so later changes
// by the provider cannot leak into the snapshot. An empty operator list is
// replaced by DefaultOperators.
func NewCatalog(source string, properties []Property, operators []Operator, products []Product) Catalog {
	if len(operators) == 0 {
		operators = DefaultOperators()
	}
	return Catalog{
		ID:         uuid.New(),
		Source:     source,
		LoadedAt:   time.Now(),
		properties: copyProperties(properties),
		operators:  copyOperators(operators),
		products:   copyProducts(products),
	}
}

// Properties returns the catalog properties in declaration order.
func (c Catalog) Properties() []Property {
	return copyProperties(c.properties)
}

// Operators returns the catalog operators in declaration order.
func (c Catalog) Operators() []Operator {
	return copyOperators(c.operators)
}

// Products returns the catalog products in declaration order.
func (c Catalog) Products() []Product {
	return copyProducts(c.products)
}

// Product returns the product with the given id.
func (c Catalog) Product(id ProductID) (Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
