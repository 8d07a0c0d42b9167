package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/core/ports"
)

var _ ports.ExchangeClient = (*ExchangeResource)(nil)

// ExchangeResource is the exchange port over the REST envelope.
type ExchangeResource struct {
	c *Client
}

func NewExchangeResource(c *Client) *ExchangeResource {
	return &ExchangeResource{c: c}
}

func (r *ExchangeResource) ListUserExchanges(ctx context.Context, userID entity.ID) ([]entity.Exchange, error) {
	var out []entity.Exchange
	path := fmt.Sprintf("/api/exchanges/user/%d", userID)
	if err := r.c.do(ctx, "exchange.list", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ExchangeResource) Propose(ctx context.Context, p entity.ExchangeProposal) (*entity.Exchange, error) {
	var out entity.Exchange
	if err := r.c.do(ctx, "exchange.propose", http.MethodPost, "/api/exchanges", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ExchangeResource) Accept(ctx context.Context, id entity.ID) (*entity.Exchange, error) {
	var out entity.Exchange
	path := fmt.Sprintf("/api/exchanges/%d/accept", id)
	if err := r.c.do(ctx, "exchange.accept", http.MethodPut, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ExchangeResource) Reject(ctx context.Context, id entity.ID) (*entity.Exchange, error) {
	var out entity.Exchange
	path := fmt.Sprintf("/api/exchanges/%d/reject", id)
	if err := r.c.do(ctx, "exchange.reject", http.MethodPut, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ExchangeResource) Cancel(ctx context.Context, id entity.ID) error {
	path := fmt.Sprintf("/api/exchanges/%d", id)
	return r.c.do(ctx, "exchange.cancel", http.MethodDelete, path, nil, nil)
}
