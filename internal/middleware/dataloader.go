package middleware

import (
	"context"
	"net/http"

	"github.com/graph-gophers/dataloader"

	"github.com/rpattn/productfilter/internal/domain"
	"github.com/rpattn/productfilter/internal/productloader"
	"github.com/rpattn/productfilter/internal/repository"
)

type ctxKey string

const productLoaderKey ctxKey = "productLoader"

// DataLoaderMiddleware gives every read request its own product loader so
// repeated lookups within the request share one cache and one batch. Other
// methods pass through without a loader.
func DataLoaderMiddleware(repo repository.ProductReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			loader := productloader.NewProductLoader(repo)
			ctx := context.WithValue(r.Context(), productLoaderKey, loader.Loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProductLoaderFromContext retrieves the dataloader from context
func ProductLoaderFromContext(ctx context.Context) *dataloader.Loader {
	if l, ok := ctx.Value(productLoaderKey).(*dataloader.Loader); ok {
		return l
	}
	return nil
}

// LoadProducts resolves ids in request order through the request's loader,
// or through a one-off loader over fallback when the request has none.
// Unknown ids are skipped.
func LoadProducts(ctx context.Context, fallback repository.ProductReader, ids []domain.ProductID) ([]domain.Product, error) {
	loader := ProductLoaderFromContext(ctx)
	if loader == nil {
		loader = productloader.NewProductLoader(fallback).Loader
	}
	return productloader.LoadMany(ctx, loader, ids)
}
