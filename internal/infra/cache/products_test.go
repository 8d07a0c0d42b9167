package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
)

type memCache struct {
	entries map[string]string
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]string{}}
}

func (m *memCache) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *memCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memCache) Key(parts ...string) string {
	return "test:" + strings.Join(parts, ":")
}

type countingProducts struct {
	products map[entity.ID]entity.Product
	getCalls int
}

func (c *countingProducts) ListProducts(ctx context.Context) ([]entity.Product, error) {
	out := make([]entity.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	return out, nil
}

func (c *countingProducts) GetProduct(ctx context.Context, id entity.ID) (*entity.Product, error) {
	c.getCalls++
	p, ok := c.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &p, nil
}

func TestGetProductReadThrough(t *testing.T) {
	inner := &countingProducts{products: map[entity.ID]entity.Product{
		1: {ProductID: 1, Name: "jacket", Price: 20},
	}}
	cached := Products(inner, newMemCache(), time.Minute, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	first, err := cached.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "jacket", first.Name)
	assert.Equal(t, 1, inner.getCalls)

	second, err := cached.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ProductID, second.ProductID)
	assert.Equal(t, 1, inner.getCalls) // served from cache
}

func TestGetProductSurvivesCacheFailure(t *testing.T) {
	inner := &countingProducts{products: map[entity.ID]entity.Product{
		1: {ProductID: 1, Name: "jacket"},
	}}
	broken := newMemCache()
	broken.getErr = errors.New("redis down")
	cached := Products(inner, broken, time.Minute, slog.New(slog.DiscardHandler))

	p, err := cached.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, entity.ID(1), p.ProductID)
}

func TestGetProductOverwritesUndecodableEntry(t *testing.T) {
	inner := &countingProducts{products: map[entity.ID]entity.Product{
		1: {ProductID: 1, Name: "jacket"},
	}}
	mem := newMemCache()
	mem.entries["test:product:1"] = "not json"
	cached := Products(inner, mem, time.Minute, slog.New(slog.DiscardHandler))

	p, err := cached.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "jacket", p.Name)
	assert.Equal(t, 1, inner.getCalls)
	assert.Contains(t, mem.entries["test:product:1"], "jacket")
}

func TestListProductsBypassesCache(t *testing.T) {
	inner := &countingProducts{products: map[entity.ID]entity.Product{
		1: {ProductID: 1},
	}}
	cached := Products(inner, newMemCache(), time.Minute, slog.New(slog.DiscardHandler))

	list, err := cached.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 0, inner.getCalls)
}
