package ingestion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/rpattn/productfilter/internal/domain"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Options tunes how a products table is turned into a catalog.
type Options struct {
	// Enumerated names columns that should become enumerated properties when
	// property types are inferred. The distinct decoded cell values become
	// the property's domain.
	Enumerated []string
}

// Result is a catalog read from a spreadsheet.
type Result struct {
	Properties []domain.Property
	Operators  []domain.Operator
	Products   []domain.Product
	// Inferred is true when property types were derived from the cell values
	// instead of a properties sheet.
	Inferred bool
}

// Parse reads a catalog from a .csv or .xlsx payload.
func Parse(fileName string, payload []byte, opts Options) (Result, error) {
	book, err := parseWorkbook(fileName, payload)
	if err != nil {
		return Result{}, err
	}

	idColumn := book.products.column("id")

	var result Result
	var columns []columnBinding
	if book.properties != nil {
		result.Properties, err = propertiesFromTable(*book.properties)
		if err != nil {
			return Result{}, err
		}
		if idColumn >= 0 && hasPropertyNamed(result.Properties, book.products.headers[idColumn]) {
			idColumn = -1
		}
		columns, err = bindColumns(book.products, idColumn, result.Properties)
		if err != nil {
			return Result{}, err
		}
	} else {
		result.Properties, columns = inferProperties(book.products, idColumn, opts)
		result.Inferred = true
	}

	if book.operators != nil {
		result.Operators, err = operatorsFromTable(*book.operators)
		if err != nil {
			return Result{}, err
		}
	}

	result.Products, err = productsFromTable(book.products, idColumn, columns)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// columnBinding ties a products-table column to the property it carries.
type columnBinding struct {
	index    int
	property domain.Property
}

func hasPropertyNamed(properties []domain.Property, name string) bool {
	for _, p := range properties {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func bindColumns(table tableData, idColumn int, properties []domain.Property) ([]columnBinding, error) {
	byName := make(map[string]domain.Property, len(properties))
	for _, p := range properties {
		byName[strings.ToLower(p.Name)] = p
	}

	columns := make([]columnBinding, 0, len(table.headers))
	for idx, header := range table.headers {
		if idx == idColumn {
			continue
		}
		p, ok := byName[strings.ToLower(header)]
		if !ok {
			return nil, fmt.Errorf("column %q does not match any property", header)
		}
		columns = append(columns, columnBinding{index: idx, property: p})
	}
	return columns, nil
}

func inferProperties(table tableData, idColumn int, opts Options) ([]domain.Property, []columnBinding) {
	enumerated := make(map[string]struct{}, len(opts.Enumerated))
	for _, name := range opts.Enumerated {
		enumerated[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	properties := make([]domain.Property, 0, len(table.headers))
	columns := make([]columnBinding, 0, len(table.headers))
	for idx, header := range table.headers {
		if idx == idColumn {
			continue
		}
		id := domain.PropertyID(len(properties))

		var property domain.Property
		if _, ok := enumerated[strings.ToLower(header)]; ok {
			property = domain.NewProperty(id, header, domain.PropertyTypeEnumerated, distinctItems(idx, table.rows)...)
		} else {
			property = domain.NewProperty(id, header, profileColumn(idx, table.rows))
		}
		properties = append(properties, property)
		columns = append(columns, columnBinding{index: idx, property: property})
	}
	return properties, columns
}

// profileColumn reports number when every non-empty cell is numeric.
func profileColumn(col int, rows [][]string) domain.PropertyType {
	hasValue := false
	for _, row := range rows {
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		hasValue = true
		if !looksLikeNumber(value) {
			return domain.PropertyTypeString
		}
	}
	if !hasValue {
		return domain.PropertyTypeString
	}
	return domain.PropertyTypeNumber
}

func looksLikeNumber(value string) bool {
	_, err := cast.ToFloat64E(value)
	return err == nil
}

// distinctItems collects the decoded list entries of a column in first-seen
// order.
func distinctItems(col int, rows [][]string) []string {
	seen := make(map[string]struct{})
	var items []string
	for _, row := range rows {
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		for _, item := range domain.DecodeList(cell).Items() {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			items = append(items, item)
		}
	}
	return items
}

func productsFromTable(table tableData, idColumn int, columns []columnBinding) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(table.rows))
	for rowIdx, row := range table.rows {
		id := domain.ProductID(rowIdx + 1)
		if idColumn >= 0 {
			parsed, err := cast.ToIntE(strings.TrimSpace(row[idColumn]))
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid product id %q", rowIdx+1, row[idColumn])
			}
			id = domain.ProductID(parsed)
		}

		values := make([]domain.PropertyValue, 0, len(columns))
		for _, column := range columns {
			cell := strings.TrimSpace(row[column.index])
			if cell == "" {
				continue
			}
			value, err := column.property.Type.DecodeValue(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", rowIdx+1, column.property.Name, err)
			}
			values = append(values, domain.PropertyValue{PropertyID: column.property.ID, Value: value})
		}
		products = append(products, domain.NewProduct(id, values...))
	}
	return products, nil
}

// propertiesFromTable reads a properties sheet with id, name, type and
// values columns. Enumerated values are ", "-joined in a single cell.
func propertiesFromTable(table tableData) ([]domain.Property, error) {
	idCol, nameCol, typeCol, valuesCol := table.column("id"), table.column("name"), table.column("type"), table.column("values")
	if idCol < 0 || nameCol < 0 || typeCol < 0 {
		return nil, errors.New("properties sheet needs id, name and type columns")
	}

	properties := make([]domain.Property, 0, len(table.rows))
	for rowIdx, row := range table.rows {
		id, err := cast.ToIntE(strings.TrimSpace(row[idCol]))
		if err != nil {
			return nil, fmt.Errorf("properties row %d: invalid id %q", rowIdx+1, row[idCol])
		}
		propertyType := domain.PropertyType(strings.ToLower(strings.TrimSpace(row[typeCol])))

		var values []string
		if valuesCol >= 0 && strings.TrimSpace(row[valuesCol]) != "" {
			values = domain.DecodeList(strings.TrimSpace(row[valuesCol])).Items()
		}
		properties = append(properties, domain.Property{
			ID:     domain.PropertyID(id),
			Name:   strings.TrimSpace(row[nameCol]),
			Type:   propertyType,
			Values: values,
		})
	}
	return properties, nil
}

// operatorsFromTable reads an operators sheet with id and text columns.
func operatorsFromTable(table tableData) ([]domain.Operator, error) {
	idCol, textCol := table.column("id"), table.column("text")
	if idCol < 0 || textCol < 0 {
		return nil, errors.New("operators sheet needs id and text columns")
	}

	operators := make([]domain.Operator, 0, len(table.rows))
	for _, row := range table.rows {
		operators = append(operators, domain.Operator{
			ID:   domain.OperatorID(strings.TrimSpace(row[idCol])),
			Text: strings.TrimSpace(row[textCol]),
		})
	}
	return operators, nil
}
