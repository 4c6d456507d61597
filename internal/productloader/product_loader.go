package productloader

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/rpattn/productfilter/internal/domain"
	"github.com/rpattn/productfilter/internal/repository"
)

type ProductLoader struct {
	Loader *dataloader.Loader
}

// Key returns the dataloader key for a product id.
func Key(id domain.ProductID) dataloader.Key {
	return dataloader.StringKey(strconv.Itoa(int(id)))
}

func NewProductLoader(repo repository.ProductReader) *ProductLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		// Convert keys to product ids
		ids := make([]domain.ProductID, len(keys))
		for i, k := range keys {
			id, err := strconv.Atoi(k.String())
			if err != nil {
				results := make([]*dataloader.Result, len(keys))
				for j := range results {
					results[j] = &dataloader.Result{Error: fmt.Errorf("invalid product id %q: %w", k.String(), err)}
				}
				return results
			}
			ids[i] = domain.ProductID(id)
		}

		products, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		productMap := make(map[domain.ProductID]domain.Product, len(products))
		for _, p := range products {
			productMap[p.ID] = p
		}

		// Build results in the same order as keys
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if p, ok := productMap[id]; ok {
				results[i] = &dataloader.Result{Data: p}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}

		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &ProductLoader{Loader: loader}
}

// LoadMany resolves ids through loader. Unknown ids are skipped; the
// remaining products keep the requested order.
func LoadMany(ctx context.Context, loader *dataloader.Loader, ids []domain.ProductID) ([]domain.Product, error) {
	keys := make(dataloader.Keys, len(ids))
	for i, id := range ids {
		keys[i] = Key(id)
	}

	values, errs := loader.LoadMany(ctx, keys)()
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
	}

	products := make([]domain.Product, 0, len(values))
	for _, v := range values {
		if p, ok := v.(domain.Product); ok {
			products = append(products, p)
		}
	}
	return products, nil
}
