package httpx

import (
	"github.com/swapwear/marketplace/internal/core/domain/entity"
)

type CheckoutRequest struct {
	AddressID  entity.ID           `json:"addressId,omitempty"`
	NewAddress *entity.AddressForm `json:"newAddress,omitempty"`
}

type ProposeExchangeRequest struct {
	OwnerID            entity.ID `json:"ownerId"`
	RequesterID        entity.ID `json:"requesterId"`
	OwnerProductID     entity.ID `json:"ownerProductId"`
	RequesterProductID entity.ID `json:"requesterProductId"`
}

type CartViewResponse struct {
	Products           []entity.Product `json:"products"`
	TotalPrice         float64          `json:"totalPrice"`
	CheckoutOpen       bool             `json:"checkoutOpen"`
	Addresses          []entity.Address `json:"addresses,omitempty"`
	NewAddressRequired bool             `json:"newAddressRequired"`
	CheckoutError      string           `json:"checkoutError,omitempty"`
}

// ExchangeResponse decorates an exchange with the viewer's role, the
// product sides, and the actions the viewer may take on it. The exchange
// fields are spelled out rather than embedded: embedding entity.Exchange
// would promote its tolerant UnmarshalJSON onto the DTO and swallow the
// decoration fields on decode.
type ExchangeResponse struct {
	ExchangeID     entity.ID             `json:"exchangeId"`
	OwnerID        entity.ID             `json:"ownerId"`
	RequesterID    entity.ID             `json:"requesterId"`
	Products       []entity.Product      `json:"products"`
	Status         entity.ExchangeStatus `json:"status"`
	ExchangeDate   string                `json:"exchangeDate,omitempty"`
	CompletionDate string                `json:"completionDate,omitempty"`

	Role      entity.ExchangeRole `json:"role"`
	Receive   []entity.Product    `json:"receive"`
	Give      []entity.Product    `json:"give"`
	CanAccept bool                `json:"canAccept"`
	CanReject bool                `json:"canReject"`
	CanCancel bool                `json:"canCancel"`
}

// CheckoutStatusResponse is the latest recorded transition of one checkout
// pipeline run, looked up by its idempotency key.
type CheckoutStatusResponse struct {
	CheckoutID    string `json:"checkoutId"`
	Status        string `json:"status"`
	CurrentStep   string `json:"currentStep,omitempty"`
	ErrorMessages string `json:"errorMessages"`
	TraceID       string `json:"traceId,omitempty"`
	UpdatedAt     string `json:"updatedAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
