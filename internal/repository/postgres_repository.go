package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rpattn/productfilter/internal/db"
	"github.com/rpattn/productfilter/internal/domain"
)

// PostgresRepository is a catalog stored in the tables created by the
// db migrations.
type PostgresRepository interface {
	CatalogRepository
	CatalogWriter
	ProductReader
}

// postgresRepository implements PostgresRepository
type postgresRepository struct {
	conn *db.Connection
}

// NewPostgresRepository creates a new postgres catalog repository
func NewPostgresRepository(conn *db.Connection) PostgresRepository {
	return &postgresRepository{conn: conn}
}

const (
	listPropertiesQuery = `SELECT id, name, property_type, enum_values FROM catalog_properties ORDER BY position`
	listOperatorsQuery  = `SELECT id, display_text FROM catalog_operators ORDER BY position`
	listProductsQuery   = `
SELECT p.id, v.property_id, v.value
FROM catalog_products p
LEFT JOIN catalog_product_values v ON v.product_id = p.id
ORDER BY p.position, v.position`
	productsByIDsQuery = `
SELECT p.id, v.property_id, v.value
FROM catalog_products p
LEFT JOIN catalog_product_values v ON v.product_id = p.id
WHERE p.id = ANY($1)
ORDER BY p.position, v.position`
)

// ListProperties retrieves every property in declaration order
func (r *postgresRepository) ListProperties(ctx context.Context) ([]domain.Property, error) {
	rows, err := r.conn.Pool.Query(ctx, listPropertiesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		var (
			id           int
			name         string
			propertyType string
			values       []string
		)
		if err := rows.Scan(&id, &name, &propertyType, &values); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		if len(values) == 0 {
			values = nil
		}
		properties = append(properties, domain.Property{
			ID:     domain.PropertyID(id),
			Name:   name,
			Type:   domain.PropertyType(propertyType),
			Values: values,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate properties: %w", err)
	}
	return properties, nil
}

// ListOperators retrieves every operator in declaration order
func (r *postgresRepository) ListOperators(ctx context.Context) ([]domain.Operator, error) {
	rows, err := r.conn.Pool.Query(ctx, listOperatorsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	defer rows.Close()

	var operators []domain.Operator
	for rows.Next() {
		var op domain.Operator
		var id string
		if err := rows.Scan(&id, &op.Text); err != nil {
			return nil, fmt.Errorf("failed to scan operator: %w", err)
		}
		op.ID = domain.OperatorID(id)
		operators = append(operators, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operators: %w", err)
	}
	return operators, nil
}

// ListProducts retrieves every product with its values in declaration order
func (r *postgresRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return r.queryProducts(ctx, listProductsQuery)
}

// GetByIDs retrieves the products with the given ids in catalog order
func (r *postgresRepository) GetByIDs(ctx context.Context, ids []domain.ProductID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	raw := make([]int32, len(ids))
	for i, id := range ids {
		raw[i] = int32(id)
	}
	return r.queryProducts(ctx, productsByIDsQuery, raw)
}

func (r *postgresRepository) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	properties, err := r.ListProperties(ctx)
	if err != nil {
		return nil, err
	}
	types := make(map[domain.PropertyID]domain.PropertyType, len(properties))
	for _, p := range properties {
		types[p.ID] = p.Type
	}

	rows, err := r.conn.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	index := make(map[domain.ProductID]int)
	for rows.Next() {
		var (
			productID  int
			propertyID *int
			rawValue   []byte
		)
		if err := rows.Scan(&productID, &propertyID, &rawValue); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		id := domain.ProductID(productID)
		pos, ok := index[id]
		if !ok {
			pos = len(products)
			index[id] = pos
			products = append(products, domain.NewProduct(id))
		}
		if propertyID == nil {
			continue
		}

		value, err := decodeStoredValue(types[domain.PropertyID(*propertyID)], rawValue)
		if err != nil {
			return nil, fmt.Errorf("product %d, property %d: %w", productID, *propertyID, err)
		}
		products[pos].PropertyValues = append(products[pos].PropertyValues, domain.PropertyValue{
			PropertyID: domain.PropertyID(*propertyID),
			Value:      value,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

func decodeStoredValue(propertyType domain.PropertyType, raw []byte) (domain.Value, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.Value{}, fmt.Errorf("failed to decode stored value: %w", err)
	}
	if propertyType == "" {
		propertyType = domain.PropertyTypeString
	}
	return propertyType.DecodeValue(decoded)
}

// ReplaceCatalog swaps the stored catalog for the given snapshot in a single
// transaction
func (r *postgresRepository) ReplaceCatalog(ctx context.Context, catalog domain.Catalog) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM catalog_product_values`)
		batch.Queue(`DELETE FROM catalog_products`)
		batch.Queue(`DELETE FROM catalog_operators`)
		batch.Queue(`DELETE FROM catalog_properties`)

		for pos, p := range catalog.Properties() {
			values := p.Values
			if values == nil {
				values = []string{}
			}
			batch.Queue(
				`INSERT INTO catalog_properties (id, name, property_type, enum_values, position) VALUES ($1, $2, $3, $4, $5)`,
				int32(p.ID), p.Name, string(p.Type), values, pos,
			)
		}
		for pos, op := range catalog.Operators() {
			batch.Queue(
				`INSERT INTO catalog_operators (id, display_text, position) VALUES ($1, $2, $3)`,
				string(op.ID), op.Text, pos,
			)
		}
		for pos, p := range catalog.Products() {
			batch.Queue(`INSERT INTO catalog_products (id, position) VALUES ($1, $2)`, int32(p.ID), pos)
			for valuePos, pv := range p.PropertyValues {
				raw, err := json.Marshal(pv.Value)
				if err != nil {
					return fmt.Errorf("failed to encode value of product %d: %w", p.ID, err)
				}
				batch.Queue(
					`INSERT INTO catalog_product_values (product_id, property_id, value, position) VALUES ($1, $2, $3, $4)`,
					int32(p.ID), int32(pv.PropertyID), raw, valuePos,
				)
			}
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to replace catalog: %w", err)
		}
		return nil
	})
}
