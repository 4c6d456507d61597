package repository

import (
	"context"

	"github.com/rpattn/productfilter/internal/domain"
)

// CatalogRepository defines the read side of a catalog provider. Results are
// returned in declaration order.
type CatalogRepository interface {
	ListProperties(ctx context.Context) ([]domain.Property, error)
	ListOperators(ctx context.Context) ([]domain.Operator, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// CatalogWriter replaces the stored catalog in one step.
type CatalogWriter interface {
	ReplaceCatalog(ctx context.Context, catalog domain.Catalog) error
}

// ProductReader loads products by id. Products that do not exist are left out
// of the result.
type ProductReader interface {
	GetByIDs(ctx context.Context, ids []domain.ProductID) ([]domain.Product, error)
}

// SnapshotRepository serves both catalog lists and product lookups from one
// source.
type SnapshotRepository interface {
	CatalogRepository
	ProductReader
}
