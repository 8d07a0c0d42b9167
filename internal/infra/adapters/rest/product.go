package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/core/ports"
)

var _ ports.ProductClient = (*ProductResource)(nil)

// ProductResource is the product port over the REST envelope.
type ProductResource struct {
	c *Client
}

func NewProductResource(c *Client) *ProductResource {
	return &ProductResource{c: c}
}

func (r *ProductResource) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	if err := r.c.do(ctx, "product.list", http.MethodGet, "/api/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductResource) GetProduct(ctx context.Context, id entity.ID) (*entity.Product, error) {
	var out entity.Product
	path := fmt.Sprintf("/api/products/%d", id)
	if err := r.c.do(ctx, "product.get", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
