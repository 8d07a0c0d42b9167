package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/core/ports"
)

var _ ports.InvoiceClient = (*InvoiceResource)(nil)

// InvoiceResource is the invoice port over the REST envelope.
type InvoiceResource struct {
	c *Client
}

func NewInvoiceResource(c *Client) *InvoiceResource {
	return &InvoiceResource{c: c}
}

func (r *InvoiceResource) ListUserInvoices(ctx context.Context, userID entity.ID) ([]entity.Invoice, error) {
	var out []entity.Invoice
	path := fmt.Sprintf("/api/users/%d/invoices", userID)
	if err := r.c.do(ctx, "invoice.list", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
