package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/rpattn/productfilter/internal/domain"
	"github.com/rpattn/productfilter/internal/ingestion"
)

// ErrUnsupportedFormat is returned for catalog files with an unknown
// extension.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

type catalogDocument struct {
	Properties []propertyDocument `json:"properties" yaml:"properties"`
	Operators  []operatorDocument `json:"operators" yaml:"operators"`
	Products   []productDocument  `json:"products" yaml:"products"`
}

type propertyDocument struct {
	ID     int      `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Type   string   `json:"type" yaml:"type"`
	Values []string `json:"values" yaml:"values"`
}

type operatorDocument struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

type productDocument struct {
	ID             int             `json:"id" yaml:"id"`
	PropertyValues []valueDocument `json:"property_values" yaml:"property_values"`
}

type valueDocument struct {
	PropertyID int `json:"property_id" yaml:"property_id"`
	Value      any `json:"value" yaml:"value"`
}

// staticRepository serves lists decoded once from a file.
type staticRepository struct {
	properties []domain.Property
	operators  []domain.Operator
	products   []domain.Product
}

func (r *staticRepository) ListProperties(ctx context.Context) ([]domain.Property, error) {
	return append([]domain.Property(nil), r.properties...), ctx.Err()
}

func (r *staticRepository) ListOperators(ctx context.Context) ([]domain.Operator, error) {
	return append([]domain.Operator(nil), r.operators...), ctx.Err()
}

func (r *staticRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return append([]domain.Product(nil), r.products...), ctx.Err()
}

// NewFileRepository reads a .json, .yaml or .yml catalog document.
func NewFileRepository(path string) (CatalogRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return DecodeCatalog(f, filepath.Ext(path))
}

// DecodeCatalog decodes a catalog document. format is a file extension such
// as ".json" or ".yaml".
func DecodeCatalog(r io.Reader, format string) (CatalogRepository, error) {
	var doc catalogDocument
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode json catalog: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return doc.toRepository()
}

func (doc catalogDocument) toRepository() (CatalogRepository, error) {
	repo := &staticRepository{
		properties: make([]domain.Property, 0, len(doc.Properties)),
		operators:  make([]domain.Operator, 0, len(doc.Operators)),
		products:   make([]domain.Product, 0, len(doc.Products)),
	}

	types := make(map[domain.PropertyID]domain.PropertyType, len(doc.Properties))
	for _, p := range doc.Properties {
		property := domain.Property{
			ID:     domain.PropertyID(p.ID),
			Name:   p.Name,
			Type:   domain.PropertyType(strings.ToLower(p.Type)),
			Values: p.Values,
		}
		if _, seen := types[property.ID]; !seen {
			types[property.ID] = property.Type
		}
		repo.properties = append(repo.properties, property)
	}

	for _, op := range doc.Operators {
		repo.operators = append(repo.operators, domain.Operator{ID: domain.OperatorID(op.ID), Text: op.Text})
	}

	for _, p := range doc.Products {
		values := make([]domain.PropertyValue, 0, len(p.PropertyValues))
		for _, pv := range p.PropertyValues {
			propertyID := domain.PropertyID(pv.PropertyID)
			propertyType, ok := types[propertyID]
			if !ok {
				propertyType = domain.PropertyTypeString
			}
			value, err := propertyType.DecodeValue(pv.Value)
			if err != nil {
				return nil, fmt.Errorf("product %d, property %d: %w", p.ID, pv.PropertyID, err)
			}
			values = append(values, domain.PropertyValue{PropertyID: propertyID, Value: value})
		}
		repo.products = append(repo.products, domain.NewProduct(domain.ProductID(p.ID), values...))
	}

	return repo, nil
}

// NewSpreadsheetRepository reads a catalog from a .csv or .xlsx file.
func NewSpreadsheetRepository(path string, opts ingestion.Options) (CatalogRepository, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	result, err := ingestion.Parse(filepath.Base(path), payload, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse spreadsheet: %w", err)
	}
	return &staticRepository{
		properties: result.Properties,
		operators:  result.Operators,
		products:   result.Products,
	}, nil
}
