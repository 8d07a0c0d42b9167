package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/core/ports"
)

var _ ports.ProductClient = (*cachedProducts)(nil)

// cachedProducts is a read-through decorator over the product port.
// Resolving a cart means one product lookup per entry, so snapshots are
// held briefly to spare the backend; the short TTL bounds staleness after
// a checkout or exchange flips a product to SOLD.
type cachedProducts struct {
	inner  ports.ProductClient
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// Products wraps the product port with a read-through snapshot cache.
func Products(inner ports.ProductClient, c Cache, ttl time.Duration, logger *slog.Logger) ports.ProductClient {
	return &cachedProducts{inner: inner, cache: c, ttl: ttl, logger: logger}
}

// ListProducts always hits the backend: listings change as other users buy
// and barter, and the producer of listings is the authority on ownership.
func (p *cachedProducts) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return p.inner.ListProducts(ctx)
}

func (p *cachedProducts) GetProduct(ctx context.Context, id entity.ID) (*entity.Product, error) {
	key := p.cache.Key("product", strconv.FormatInt(id.Int64(), 10))

	if raw, ok, err := p.cache.Get(ctx, key); err == nil && ok {
		var product entity.Product
		if err := json.Unmarshal([]byte(raw), &product); err == nil {
			return &product, nil
		}
		// Undecodable entry: fall through to the backend and overwrite.
	} else if err != nil {
		p.logger.WarnContext(ctx, "product cache read failed", "key", key, "error", err)
	}

	product, err := p.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(product); err == nil {
		if err := p.cache.Set(ctx, key, string(raw), p.ttl); err != nil {
			p.logger.WarnContext(ctx, "product cache write failed", "key", key, "error", err)
		}
	}
	return product, nil
}
