// Package ports declares the collaborator interfaces the orchestrators
// depend on. The backend owns every entity; these ports expose only the
// data operations of the client-observable contract.
package ports

import (
	"context"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
)

// CartClient covers the cart resource.
type CartClient interface {
	GetCart(ctx context.Context, userID entity.ID) (*entity.CartSummary, error)
	AddProduct(ctx context.Context, userID, productID entity.ID) error
	RemoveProduct(ctx context.Context, userID, productID entity.ID) error
	Clear(ctx context.Context, userID entity.ID) error
	// Checkout converts the cart plus a delivery address into an invoice.
	// The idempotency key guards against double submission on retry.
	Checkout(ctx context.Context, userID, addressID entity.ID, idempotencyKey string) (*entity.Invoice, error)
}

// ProductClient covers the product resource.
type ProductClient interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, id entity.ID) (*entity.Product, error)
}

// AddressClient covers the address resource.
type AddressClient interface {
	ListAddresses(ctx context.Context, userID entity.ID) ([]entity.Address, error)
	CreateAddress(ctx context.Context, userID entity.ID, form entity.AddressForm) (*entity.Address, error)
	UpdateAddress(ctx context.Context, id entity.ID, form entity.AddressForm) (*entity.Address, error)
	DeleteAddress(ctx context.Context, id entity.ID) error
}

// ExchangeClient covers the exchange resource.
type ExchangeClient interface {
	ListUserExchanges(ctx context.Context, userID entity.ID) ([]entity.Exchange, error)
	Propose(ctx context.Context, p entity.ExchangeProposal) (*entity.Exchange, error)
	Accept(ctx context.Context, id entity.ID) (*entity.Exchange, error)
	Reject(ctx context.Context, id entity.ID) (*entity.Exchange, error)
	// Cancel removes the exchange outright; the backend keeps no
	// CANCELLED state.
	Cancel(ctx context.Context, id entity.ID) error
}

// InvoiceClient covers the invoice resource.
type InvoiceClient interface {
	ListUserInvoices(ctx context.Context, userID entity.ID) ([]entity.Invoice, error)
}
