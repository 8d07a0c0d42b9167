package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/core/domain/fault"
)

func TestCartResourceGetCart(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/carts/user/7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cartId":5,"userId":7,"productIds":[1,2],"totalPrice":35.0}`))
	}))
	defer srv.Close()

	cart := NewCartResource(NewClient(srv.URL))
	summary, err := cart.GetCart(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, entity.ID(5), summary.CartID)
	assert.Equal(t, []entity.ID{1, 2}, summary.ProductIDs)
	assert.Equal(t, 35.0, summary.TotalPrice)
}

func TestCartResourceCheckoutSendsIdempotencyKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/carts/user/7/checkout", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("X-Idempotency-Key"))

		var body struct {
			AddressID entity.ID `json:"addressId"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, entity.ID(9), body.AddressID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"invoiceId":100,"userId":7,"addressId":9,"totalAmount":35.0,"productIds":[1,2]}`))
	}))
	defer srv.Close()

	cart := NewCartResource(NewClient(srv.URL))
	invoice, err := cart.Checkout(context.Background(), 7, 9, "key-123")
	require.NoError(t, err)
	assert.Equal(t, entity.ID(100), invoice.InvoiceID)
	assert.Equal(t, 35.0, invoice.TotalAmount)
}

func TestClientJoinsHostOnlyBaseURL(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	// The adapters own the /api prefix; a trailing slash on the base URL
	// must not double it.
	products := NewProductResource(NewClient(srv.URL + "/"))
	_, err := products.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/products", gotPath)
}

func TestClientClassifiesErrorStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   fault.Kind
	}{
		{name: "unauthorized", status: 401, body: `{"error":"unauthorized"}`, want: fault.Unauthenticated},
		{name: "forbidden", status: 403, body: `{"message":"not yours"}`, want: fault.AuthorizationDenied},
		{name: "not found", status: 404, body: `{}`, want: fault.RemoteClient},
		{name: "server error with garbage body", status: 500, body: `<html>`, want: fault.RemoteServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			cart := NewCartResource(NewClient(srv.URL))
			_, err := cart.GetCart(context.Background(), 7)
			require.Error(t, err)
			assert.Equal(t, tt.want, fault.KindOf(err))
		})
	}
}

func TestClientErrorMessageFromEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"cart_conflict","message":"product already reserved"}`))
	}))
	defer srv.Close()

	cart := NewCartResource(NewClient(srv.URL))
	_, err := cart.GetCart(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product already reserved")
}

func TestClientMalformedSuccessBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	cart := NewCartResource(NewClient(srv.URL))
	_, err := cart.GetCart(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, fault.MalformedResponse, fault.KindOf(err))
}

func TestClientTransportFailureIsRemoteServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	cart := NewCartResource(NewClient(srv.URL))
	_, err := cart.GetCart(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, fault.RemoteServer, fault.KindOf(err))
}

func TestExchangeResourceListDecodesLegacyAliases(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/exchanges/user/3", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"exchangeId":1,"owner":{"userId":7},"requester":3,"status":"PENDING"},
			{"exchangeId":2,"ownerId":7,"requesterId":3,"status":"ACCEPTED"}
		]`))
	}))
	defer srv.Close()

	exchanges := NewExchangeResource(NewClient(srv.URL))
	list, err := exchanges.ListUserExchanges(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, entity.ID(7), list[0].OwnerID)
	assert.Equal(t, entity.ID(3), list[0].RequesterID)
	assert.Equal(t, entity.ExchangeAccepted, list[1].Status)
}
