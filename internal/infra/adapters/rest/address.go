package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/core/ports"
)

var _ ports.AddressClient = (*AddressResource)(nil)

// AddressResource is the address port over the REST envelope.
type AddressResource struct {
	c *Client
}

func NewAddressResource(c *Client) *AddressResource {
	return &AddressResource{c: c}
}

func (r *AddressResource) ListAddresses(ctx context.Context, userID entity.ID) ([]entity.Address, error) {
	var out []entity.Address
	path := fmt.Sprintf("/api/users/%d/addresses", userID)
	if err := r.c.do(ctx, "address.list", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AddressResource) CreateAddress(ctx context.Context, userID entity.ID, form entity.AddressForm) (*entity.Address, error) {
	var out entity.Address
	path := fmt.Sprintf("/api/users/%d/addresses", userID)
	if err := r.c.do(ctx, "address.create", http.MethodPost, path, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AddressResource) UpdateAddress(ctx context.Context, id entity.ID, form entity.AddressForm) (*entity.Address, error) {
	var out entity.Address
	path := fmt.Sprintf("/api/addresses/%d", id)
	if err := r.c.do(ctx, "address.update", http.MethodPut, path, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AddressResource) DeleteAddress(ctx context.Context, id entity.ID) error {
	path := fmt.Sprintf("/api/addresses/%d", id)
	return r.c.do(ctx, "address.delete", http.MethodDelete, path, nil, nil)
}
