package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapwear/marketplace/internal/address"
	"github.com/swapwear/marketplace/internal/cart"
	"github.com/swapwear/marketplace/internal/coordinator/checkoutlog"
	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/exchange"
	"github.com/swapwear/marketplace/internal/infra/httpx/middlewares"
)

type stubProducts struct {
	products map[entity.ID]entity.Product
}

func (s *stubProducts) ListProducts(ctx context.Context) ([]entity.Product, error) {
	out := make([]entity.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubProducts) GetProduct(ctx context.Context, id entity.ID) (*entity.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type stubCarts struct{ summary entity.CartSummary }

func (s *stubCarts) GetCart(ctx context.Context, userID entity.ID) (*entity.CartSummary, error) {
	out := s.summary
	out.UserID = userID
	return &out, nil
}
func (s *stubCarts) AddProduct(ctx context.Context, userID, productID entity.ID) error    { return nil }
func (s *stubCarts) RemoveProduct(ctx context.Context, userID, productID entity.ID) error { return nil }
func (s *stubCarts) Clear(ctx context.Context, userID entity.ID) error                    { return nil }
func (s *stubCarts) Checkout(ctx context.Context, userID, addressID entity.ID, idempotencyKey string) (*entity.Invoice, error) {
	return &entity.Invoice{InvoiceID: 100, UserID: userID, AddressID: addressID}, nil
}

type stubAddresses struct{ list []entity.Address }

func (s *stubAddresses) ListAddresses(ctx context.Context, userID entity.ID) ([]entity.Address, error) {
	return s.list, nil
}
func (s *stubAddresses) CreateAddress(ctx context.Context, userID entity.ID, form entity.AddressForm) (*entity.Address, error) {
	return &entity.Address{AddressID: 9, UserID: userID}, nil
}
func (s *stubAddresses) UpdateAddress(ctx context.Context, id entity.ID, form entity.AddressForm) (*entity.Address, error) {
	return &entity.Address{AddressID: id}, nil
}
func (s *stubAddresses) DeleteAddress(ctx context.Context, id entity.ID) error { return nil }

type stubExchanges struct{ list []entity.Exchange }

func (s *stubExchanges) ListUserExchanges(ctx context.Context, userID entity.ID) ([]entity.Exchange, error) {
	return s.list, nil
}
func (s *stubExchanges) Propose(ctx context.Context, p entity.ExchangeProposal) (*entity.Exchange, error) {
	return &entity.Exchange{ExchangeID: 1, OwnerID: p.OwnerID, RequesterID: p.RequesterID, Status: entity.ExchangePending}, nil
}
func (s *stubExchanges) Accept(ctx context.Context, id entity.ID) (*entity.Exchange, error) {
	return nil, nil
}
func (s *stubExchanges) Reject(ctx context.Context, id entity.ID) (*entity.Exchange, error) {
	return nil, nil
}
func (s *stubExchanges) Cancel(ctx context.Context, id entity.ID) error { return nil }

type stubInvoices struct{}

func (s *stubInvoices) ListUserInvoices(ctx context.Context, userID entity.ID) ([]entity.Invoice, error) {
	return nil, nil
}

type stubCheckoutLog struct {
	entry *checkoutlog.Entry
}

func (s *stubCheckoutLog) GetLatest(ctx context.Context, checkoutID string) (*checkoutlog.Entry, error) {
	if s.entry == nil || s.entry.CheckoutID != checkoutID {
		return nil, errors.New("not found")
	}
	return s.entry, nil
}

func newTestRouter(exchanges *stubExchanges) http.Handler {
	return newTestRouterWithLog(exchanges, nil)
}

func newTestRouterWithLog(exchanges *stubExchanges, log checkoutlog.Reader) http.Handler {
	logger := slog.New(slog.DiscardHandler)
	products := &stubProducts{products: map[entity.ID]entity.Product{
		1: {ProductID: 1, Name: "jacket", Price: 20, UserID: 9},
	}}
	carts := &stubCarts{summary: entity.CartSummary{CartID: 5, ProductIDs: []entity.ID{1}}}
	addresses := &stubAddresses{}
	invoices := &stubInvoices{}

	handler := NewHandler(
		products,
		address.New(addresses, logger),
		log,
		func() *cart.Orchestrator {
			return cart.New(carts, products, addresses, invoices, nil, logger)
		},
		func() *exchange.Orchestrator {
			return exchange.New(exchanges, logger)
		},
		logger,
	)
	return NewRouter(handler)
}

func TestGetCartRequiresIdentityHeader(t *testing.T) {
	router := newTestRouter(&stubExchanges{})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthenticated", body.Error)
}

func TestGetCartWithIdentity(t *testing.T) {
	router := newTestRouter(&stubExchanges{})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(middlewares.HeaderXUserID, "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var view CartViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Products, 1)
	assert.Equal(t, 20.0, view.TotalPrice)
}

func TestGarbageIdentityHeaderIsAnonymous(t *testing.T) {
	router := newTestRouter(&stubExchanges{})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(middlewares.HeaderXUserID, "not-a-number")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListExchangesFiltersByTab(t *testing.T) {
	router := newTestRouter(&stubExchanges{list: []entity.Exchange{
		{ExchangeID: 1, OwnerID: 7, RequesterID: 3, Status: entity.ExchangePending},
		{ExchangeID: 2, OwnerID: 7, RequesterID: 3, Status: entity.ExchangeRejected},
	}})

	req := httptest.NewRequest(http.MethodGet, "/exchanges?tab=pending", nil)
	req.Header.Set(middlewares.HeaderXUserID, "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var list []ExchangeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, entity.RoleOwner, list[0].Role)
	assert.True(t, list[0].CanAccept)
	assert.False(t, list[0].CanCancel)
}

func TestProposeExchangeValidationMapsToBadRequest(t *testing.T) {
	router := newTestRouter(&stubExchanges{})

	body := `{"ownerId":7,"requesterId":7,"ownerProductId":10,"requesterProductId":20}`
	req := httptest.NewRequest(http.MethodPost, "/exchanges", strings.NewReader(body))
	req.Header.Set(middlewares.HeaderXUserID, "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteForeignAddressMapsToForbidden(t *testing.T) {
	router := newTestRouter(&stubExchanges{})

	// The stub lists no addresses, so the target cannot belong to the user.
	req := httptest.NewRequest(http.MethodDelete, "/addresses/1", nil)
	req.Header.Set(middlewares.HeaderXUserID, "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExchangeResponseDecodeKeepsDecoration(t *testing.T) {
	t.Parallel()

	// The DTO must round-trip through JSON without its decoration fields
	// being swallowed by the exchange's tolerant decoder.
	original := ExchangeResponse{
		ExchangeID:  1,
		OwnerID:     7,
		RequesterID: 3,
		Status:      entity.ExchangePending,
		Role:        entity.RoleOwner,
		CanAccept:   true,
		CanReject:   true,
	}
	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ExchangeResponse
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, entity.RoleOwner, decoded.Role)
	assert.True(t, decoded.CanAccept)
	assert.Equal(t, entity.ID(7), decoded.OwnerID)
}

func TestCheckoutStatusLookup(t *testing.T) {
	log := &stubCheckoutLog{entry: &checkoutlog.Entry{
		CheckoutID:    "key-1",
		Status:        checkoutlog.StatusFailed,
		CurrentStep:   "submit_checkout",
		ErrorMessages: `["boom"]`,
		UpdatedAt:     time.Now().UTC(),
	}}
	router := newTestRouterWithLog(&stubExchanges{}, log)

	req := httptest.NewRequest(http.MethodGet, "/cart/checkout/key-1", nil)
	req.Header.Set(middlewares.HeaderXUserID, "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status CheckoutStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "FAILED", status.Status)
	assert.Equal(t, "submit_checkout", status.CurrentStep)

	req = httptest.NewRequest(http.MethodGet, "/cart/checkout/unknown", nil)
	req.Header.Set(middlewares.HeaderXUserID, "7")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductsEndpointIsPublic(t *testing.T) {
	router := newTestRouter(&stubExchanges{})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var list []entity.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
}
