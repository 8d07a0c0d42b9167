package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swapwear/marketplace/internal/address"
	"github.com/swapwear/marketplace/internal/cart"
	"github.com/swapwear/marketplace/internal/coordinator/checkoutlog"
	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/core/domain/fault"
	"github.com/swapwear/marketplace/internal/core/ports"
	"github.com/swapwear/marketplace/internal/exchange"
	"github.com/swapwear/marketplace/internal/infra/httpx/middlewares"
	"github.com/swapwear/marketplace/internal/session"
)

// Handler exposes the cart, exchange, address, product and invoice
// workflows over HTTP. Orchestrators hold per-user view state, so the
// handler keeps one of each per authenticated user.
type Handler struct {
	products    ports.ProductClient
	addrMgr     *address.Manager
	checkoutLog checkoutlog.Reader // nil-safe: status lookups 404 if nil
	logger      *slog.Logger

	newCart     func() *cart.Orchestrator
	newExchange func() *exchange.Orchestrator

	// Registry entries live for the process lifetime; the maps are bounded
	// by the number of distinct authenticated users, not by request volume.
	mu        sync.Mutex
	carts     map[entity.ID]*cart.Orchestrator
	exchanges map[entity.ID]*exchange.Orchestrator
}

// NewHandler wires the handler. The factory functions build fresh
// orchestrators on first use per user. checkoutLog may be nil, in which
// case checkout status lookups report not found.
func NewHandler(
	products ports.ProductClient,
	addrMgr *address.Manager,
	checkoutLog checkoutlog.Reader,
	newCart func() *cart.Orchestrator,
	newExchange func() *exchange.Orchestrator,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		products:    products,
		addrMgr:     addrMgr,
		checkoutLog: checkoutLog,
		logger:      logger,
		newCart:     newCart,
		newExchange: newExchange,
		carts:       make(map[entity.ID]*cart.Orchestrator),
		exchanges:   make(map[entity.ID]*exchange.Orchestrator),
	}
}

func (h *Handler) cartFor(sess session.Session) *cart.Orchestrator {
	h.mu.Lock()
	defer h.mu.Unlock()
	o, ok := h.carts[sess.CurrentUserID()]
	if !ok {
		o = h.newCart()
		h.carts[sess.CurrentUserID()] = o
	}
	return o
}

func (h *Handler) exchangeFor(sess session.Session) *exchange.Orchestrator {
	h.mu.Lock()
	defer h.mu.Unlock()
	o, ok := h.exchanges[sess.CurrentUserID()]
	if !ok {
		o = h.newExchange()
		h.exchanges[sess.CurrentUserID()] = o
	}
	return o
}

// --- products ---

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.ListProducts(r.Context())
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if !id.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_product_id", "")
		return
	}
	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// --- cart ---

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	view, err := h.cartFor(sess).LoadCart(r.Context(), sess)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartView(view))
}

func (h *Handler) ToggleCartProduct(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	view, err := h.cartFor(sess).ToggleCartMembership(r.Context(), sess, pathID(r, "productId"))
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartView(view))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	view, err := h.cartFor(sess).ClearCart(r.Context(), sess)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartView(view))
}

func (h *Handler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	view, err := h.cartFor(sess).OpenCheckout(r.Context(), sess)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartView(view))
}

func (h *Handler) CloseCheckout(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, mapCartView(h.cartFor(sess).CloseCheckout()))
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	invoice, err := h.cartFor(sess).Checkout(r.Context(), sess, cart.AddressSelection{
		ExistingID: req.AddressID,
		New:        req.NewAddress,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

// CheckoutStatus reports the most recent recorded transition of a checkout
// run. Half-done runs after a crash surface here with their failing step.
func (h *Handler) CheckoutStatus(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	if !sess.IsAuthenticated() {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	key := chi.URLParam(r, "checkoutId")
	if h.checkoutLog == nil || key == "" {
		writeError(w, http.StatusNotFound, "checkout_not_found", "")
		return
	}

	entry, err := h.checkoutLog.GetLatest(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "checkout_not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, CheckoutStatusResponse{
		CheckoutID:    entry.CheckoutID,
		Status:        string(entry.Status),
		CurrentStep:   entry.CurrentStep,
		ErrorMessages: entry.ErrorMessages,
		TraceID:       entry.TraceID,
		UpdatedAt:     entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	invoices, err := h.cartFor(sess).Invoices(r.Context(), sess)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// --- exchanges ---

func (h *Handler) ListExchanges(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	list, err := h.exchangeFor(sess).LoadExchanges(r.Context(), sess)
	if err != nil {
		writeFault(w, err)
		return
	}
	tab := exchange.Tab(r.URL.Query().Get("tab"))
	if tab == "" {
		tab = exchange.TabAll
	}
	writeJSON(w, http.StatusOK, mapExchanges(exchange.FilterByTab(list, tab), sess))
}

func (h *Handler) ProposeExchange(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())

	var req ProposeExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	created, err := h.exchangeFor(sess).Propose(r.Context(), sess, entity.ExchangeProposal{
		OwnerID:            req.OwnerID,
		RequesterID:        req.RequesterID,
		OwnerProductID:     req.OwnerProductID,
		RequesterProductID: req.RequesterProductID,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapExchange(*created, sess))
}

func (h *Handler) AcceptExchange(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	list, err := h.exchangeFor(sess).Accept(r.Context(), sess, pathID(r, "id"))
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapExchanges(list, sess))
}

func (h *Handler) RejectExchange(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	list, err := h.exchangeFor(sess).Reject(r.Context(), sess, pathID(r, "id"))
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapExchanges(list, sess))
}

func (h *Handler) CancelExchange(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	list, err := h.exchangeFor(sess).Cancel(r.Context(), sess, pathID(r, "id"))
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapExchanges(list, sess))
}

// --- addresses ---

func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	list, err := h.addrMgr.List(r.Context(), sess)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())

	var form entity.AddressForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	created, err := h.addrMgr.Create(r.Context(), sess, form)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())

	var form entity.AddressForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	updated, err := h.addrMgr.Update(r.Context(), sess, pathID(r, "id"), form)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionFrom(r.Context())
	if err := h.addrMgr.Delete(r.Context(), sess, pathID(r, "id")); err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping ---

func mapCartView(v cart.View) CartViewResponse {
	return CartViewResponse{
		Products:           v.Products,
		TotalPrice:         v.TotalPrice,
		CheckoutOpen:       v.CheckoutOpen,
		Addresses:          v.Addresses,
		NewAddressRequired: v.NewAddressRequired,
		CheckoutError:      v.CheckoutError,
	}
}

func mapExchange(x entity.Exchange, sess session.Session) ExchangeResponse {
	receive, give := x.Sides(sess.CurrentUserID())
	return ExchangeResponse{
		ExchangeID:     x.ExchangeID,
		OwnerID:        x.OwnerID,
		RequesterID:    x.RequesterID,
		Products:       x.Products,
		Status:         x.Status,
		ExchangeDate:   x.ExchangeDate,
		CompletionDate: x.CompletionDate,
		Role:           x.RoleFor(sess.CurrentUserID()),
		Receive:        receive,
		Give:           give,
		CanAccept:      exchange.CanAccept(x, sess),
		CanReject:      exchange.CanReject(x, sess),
		CanCancel:      exchange.CanCancel(x, sess),
	}
}

func mapExchanges(list []entity.Exchange, sess session.Session) []ExchangeResponse {
	out := make([]ExchangeResponse, len(list))
	for i, x := range list {
		out[i] = mapExchange(x, sess)
	}
	return out
}

func pathID(r *http.Request, name string) entity.ID {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return entity.ID(n)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

// writeFault maps the domain failure taxonomy onto HTTP statuses. Remote
// failures surface as bad gateway regardless of the upstream status class;
// the upstream detail stays in the message.
func writeFault(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch fault.KindOf(err) {
	case fault.Unauthenticated:
		status = http.StatusUnauthorized
	case fault.AuthorizationDenied:
		status = http.StatusForbidden
	case fault.Validation:
		status = http.StatusBadRequest
	case fault.DataIntegrity:
		status = http.StatusConflict
	case fault.ContractViolation, fault.MalformedResponse,
		fault.RemoteClient, fault.RemoteServer:
		status = http.StatusBadGateway
	}
	writeError(w, status, fault.KindOf(err).String(), err.Error())
}
