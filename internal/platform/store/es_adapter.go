package store

import (
	"context"
	"errors"

	"github.com/SamMeown/ETL/internal/platform/store/es"
)

// newESAdapter is called by openers.go to wrap an existing *es.Client
// and return the store.Search seam
func newESAdapter(c *es.Client) Search {
	return &searchAdapter{inner: c}
}

// searchAdapter adapts *es.Client to the store.Search interface
type searchAdapter struct {
	inner *es.Client
}

var _ Search = (*searchAdapter)(nil)

func (a *searchAdapter) Bulk(ctx context.Context, body []byte) (BulkResult, error) {
	if a == nil || a.inner == nil {
		return BulkResult{}, errors.New("store: nil search adapter")
	}
	r, err := a.inner.Bulk(ctx, body)
	if err != nil {
		return BulkResult{}, err
	}
	return BulkResult{StatusCode: r.StatusCode, Errors: r.Errors}, nil
}

func (a *searchAdapter) CreateIndex(ctx context.Context, name string, body []byte) (bool, error) {
	if a == nil || a.inner == nil {
		return false, errors.New("store: nil search adapter")
	}
	return a.inner.CreateIndex(ctx, name, body)
}

func (a *searchAdapter) IndexExists(ctx context.Context, name string) (bool, error) {
	if a == nil || a.inner == nil {
		return false, errors.New("store: nil search adapter")
	}
	return a.inner.IndexExists(ctx, name)
}

func (a *searchAdapter) Close() error { return a.inner.Close() }

// Ping verifies connectivity with the search backend
func (a *searchAdapter) Ping(ctx context.Context) error {
	if a == nil || a.inner == nil {
		return errors.New("store: nil search adapter")
	}
	return a.inner.Ping(ctx)
}
