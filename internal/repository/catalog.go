package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rpattn/productfilter/internal/domain"
	"github.com/rpattn/productfilter/internal/schema/validator"
)

// LoadCatalog reads every list from repo once and freezes it into a
// validated snapshot.
func LoadCatalog(ctx context.Context, repo CatalogRepository, source string) (domain.Catalog, error) {
	properties, err := repo.ListProperties(ctx)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to list properties: %w", err)
	}
	operators, err := repo.ListOperators(ctx)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to list operators: %w", err)
	}
	products, err := repo.ListProducts(ctx)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to list products: %w", err)
	}

	catalog := domain.NewCatalog(source, properties, operators, products)
	if err := validator.ValidateCatalog(catalog.Properties(), catalog.Operators(), catalog.Products()); err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog from %s: %w", source, err)
	}
	for _, warning := range validator.CheckValues(catalog.Properties(), catalog.Products()) {
		logrus.WithField("source", source).Warn(warning)
	}

	logrus.WithFields(logrus.Fields{
		"catalog_id": catalog.ID,
		"source":     source,
		"properties": len(properties),
		"operators":  len(catalog.Operators()),
		"products":   len(products),
	}).Info("catalog loaded")

	return catalog, nil
}

// snapshotRepository serves a frozen catalog.
type snapshotRepository struct {
	catalog domain.Catalog
	byID    map[domain.ProductID]domain.Product
}

// NewSnapshotRepository serves reads from an in-memory catalog snapshot.
func NewSnapshotRepository(catalog domain.Catalog) SnapshotRepository {
	products := catalog.Products()
	byID := make(map[domain.ProductID]domain.Product, len(products))
	for _, p := range products {
		if _, exists := byID[p.ID]; !exists {
			byID[p.ID] = p
		}
	}
	return &snapshotRepository{catalog: catalog, byID: byID}
}

// ListProperties returns the snapshot properties
func (r *snapshotRepository) ListProperties(ctx context.Context) ([]domain.Property, error) {
	return r.catalog.Properties(), ctx.Err()
}

// ListOperators returns the snapshot operators
func (r *snapshotRepository) ListOperators(ctx context.Context) ([]domain.Operator, error) {
	return r.catalog.Operators(), ctx.Err()
}

// ListProducts returns the snapshot products
func (r *snapshotRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return r.catalog.Products(), ctx.Err()
}

// GetByIDs returns the products with the given ids in request order.
func (r *snapshotRepository) GetByIDs(ctx context.Context, ids []domain.ProductID) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}
