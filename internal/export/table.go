// Package export projects products into a property-ordered table and writes
// it as CSV or XLSX.
package export

import (
	"github.com/rpattn/productfilter/internal/domain"
)

// Column is one property of the products table.
type Column struct {
	PropertyID domain.PropertyID   `json:"property_id"`
	Name       string              `json:"name"`
	Type       domain.PropertyType `json:"type"`
}

// Row is one product rendered in column order. Missing values are empty
// strings.
type Row struct {
	ProductID domain.ProductID `json:"product_id"`
	Cells     []string         `json:"cells"`
}

// Table is the products table: one column per property in catalog order and
// one row per product in input order.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// BuildTable projects products onto the given properties.
func BuildTable(properties []domain.Property, products []domain.Product) Table {
	table := Table{
		Columns: make([]Column, len(properties)),
		Rows:    make([]Row, len(products)),
	}
	for i, p := range properties {
		table.Columns[i] = Column{PropertyID: p.ID, Name: p.Name, Type: p.Type}
	}
	for i, product := range products {
		cells := make([]string, len(properties))
		for j, p := range properties {
			if v, ok := product.Lookup(p.ID); ok {
				cells[j] = v.String()
			}
		}
		table.Rows[i] = Row{ProductID: product.ID, Cells: cells}
	}
	return table
}

// Header returns the column names.
func (t Table) Header() []string {
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	return header
}
