package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/core/ports"
)

var _ ports.CartClient = (*CartResource)(nil)

// CartResource is the cart port over the REST envelope.
type CartResource struct {
	c *Client
}

func NewCartResource(c *Client) *CartResource {
	return &CartResource{c: c}
}

func (r *CartResource) GetCart(ctx context.Context, userID entity.ID) (*entity.CartSummary, error) {
	var out entity.CartSummary
	path := fmt.Sprintf("/api/carts/user/%d", userID)
	if err := r.c.do(ctx, "cart.get", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CartResource) AddProduct(ctx context.Context, userID, productID entity.ID) error {
	path := fmt.Sprintf("/api/carts/user/%d/products/%d", userID, productID)
	return r.c.do(ctx, "cart.add_product", http.MethodPost, path, nil, nil)
}

func (r *CartResource) RemoveProduct(ctx context.Context, userID, productID entity.ID) error {
	path := fmt.Sprintf("/api/carts/user/%d/products/%d", userID, productID)
	return r.c.do(ctx, "cart.remove_product", http.MethodDelete, path, nil, nil)
}

func (r *CartResource) Clear(ctx context.Context, userID entity.ID) error {
	path := fmt.Sprintf("/api/carts/user/%d/clear", userID)
	return r.c.do(ctx, "cart.clear", http.MethodDelete, path, nil, nil)
}

func (r *CartResource) Checkout(ctx context.Context, userID, addressID entity.ID, idempotencyKey string) (*entity.Invoice, error) {
	var out entity.Invoice
	path := fmt.Sprintf("/api/carts/user/%d/checkout", userID)
	body := struct {
		AddressID entity.ID `json:"addressId"`
	}{AddressID: addressID}

	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{headerIdempotencyKey: idempotencyKey}
	}
	if err := r.c.doWith(ctx, "cart.checkout", http.MethodPost, path, headers, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
