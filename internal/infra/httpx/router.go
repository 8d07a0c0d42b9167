// Package httpx is the HTTP surface of the marketplace client: a thin
// translation layer between routes and the orchestrators.
package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/swapwear/marketplace/internal/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachSession)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/products", handler.ListProducts)
	r.Get("/products/{id}", handler.GetProduct)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", handler.GetCart)
		r.Delete("/", handler.ClearCart)
		r.Post("/products/{productId}/toggle", handler.ToggleCartProduct)
		r.Post("/checkout/open", handler.OpenCheckout)
		r.Post("/checkout/close", handler.CloseCheckout)
		r.Post("/checkout", handler.Checkout)
		r.Get("/checkout/{checkoutId}", handler.CheckoutStatus)
	})

	r.Get("/invoices", handler.ListInvoices)

	r.Route("/exchanges", func(r chi.Router) {
		r.Get("/", handler.ListExchanges)
		r.Post("/", handler.ProposeExchange)
		r.Post("/{id}/accept", handler.AcceptExchange)
		r.Post("/{id}/reject", handler.RejectExchange)
		r.Delete("/{id}", handler.CancelExchange)
	})

	r.Route("/addresses", func(r chi.Router) {
		r.Get("/", handler.ListAddresses)
		r.Post("/", handler.CreateAddress)
		r.Put("/{id}", handler.UpdateAddress)
		r.Delete("/{id}", handler.DeleteAddress)
	})

	return r
}
