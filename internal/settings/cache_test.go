package settings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	calls int
	value *Settings
	err   error
}

func (r *countingRepo) Get(_ context.Context) (*Settings, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.value, nil
}

func TestCache(t *testing.T) {
	repo := &countingRepo{value: &Settings{
		ShopName:     "Floravia",
		DeliveryCost: decimal.NewFromInt(500),
	}}
	cache := NewCache(repo)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	second, err := cache.Get(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, repo.calls)

	// Invalidation forces a refetch.
	repo.value = &Settings{ShopName: "Floravia", DeliveryCost: decimal.NewFromInt(600)}
	cache.Invalidate()

	third, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
	assert.True(t, third.DeliveryCost.Equal(decimal.NewFromInt(600)))
}

func TestCache_ErrorNotCached(t *testing.T) {
	repo := &countingRepo{err: assert.AnError}
	cache := NewCache(repo)

	_, err := cache.Get(context.Background())
	require.Error(t, err)

	repo.err = nil
	repo.value = &Settings{ShopName: "Floravia"}
	got, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Floravia", got.ShopName)
}
