// Package cart owns the cart-to-invoice checkout workflow: cart loading,
// membership toggling, address resolution, checkout submission, and the
// post-checkout cart clearing.
//
// The orchestrator never patches local state optimistically. Every
// mutation is followed by a full reload from the backend, so the view can
// not drift from server-computed totals.
package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/swapwear/marketplace/internal/coordinator"
	"github.com/swapwear/marketplace/internal/coordinator/checkoutlog"
	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/core/domain/fault"
	"github.com/swapwear/marketplace/internal/core/ports"
	"github.com/swapwear/marketplace/internal/session"
)

// reloadDelay is how long the post-checkout reload waits for the backend
// to converge before re-reading cart state. A tolerance for eventual
// consistency, not a synchronisation guarantee.
const defaultReloadDelay = time.Second

// View is the caller-owned snapshot the presentation layer renders.
type View struct {
	Summary    *entity.CartSummary
	Products   []entity.Product
	TotalPrice float64

	// Checkout dialog state.
	CheckoutOpen       bool
	Addresses          []entity.Address
	NewAddressRequired bool
	CheckoutError      string
}

// AddressSelection is the tagged choice between an existing saved address
// and a freshly entered one. Exactly one side should be set.
type AddressSelection struct {
	ExistingID entity.ID
	New        *entity.AddressForm
}

// Orchestrator drives the checkout workflow for one user's cart.
type Orchestrator struct {
	carts     ports.CartClient
	products  ports.ProductClient
	addresses ports.AddressClient
	invoices  ports.InvoiceClient

	validate *validator.Validate
	logger   *slog.Logger
	logRepo  checkoutlog.Repository // nil-safe

	reloadDelay time.Duration

	mu   sync.Mutex
	view View
}

// Option adjusts orchestrator behaviour.
type Option func(*Orchestrator)

// WithReloadDelay overrides the post-checkout reload delay.
func WithReloadDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.reloadDelay = d }
}

// New wires a cart orchestrator. logRepo may be nil, in which case checkout
// transitions are not persisted to the audit log.
func New(
	carts ports.CartClient,
	products ports.ProductClient,
	addresses ports.AddressClient,
	invoices ports.InvoiceClient,
	logRepo checkoutlog.Repository,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		carts:       carts,
		products:    products,
		addresses:   addresses,
		invoices:    invoices,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
		logRepo:     logRepo,
		reloadDelay: defaultReloadDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// View returns a copy of the current snapshot.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() View {
	v := o.view
	v.Products = append([]entity.Product(nil), o.view.Products...)
	v.Addresses = append([]entity.Address(nil), o.view.Addresses...)
	return v
}

// LoadCart fetches the cart summary and resolves each product identity to
// a full snapshot. Identities that fail resolution — missing, non-numeric,
// or resolving to a record without its own identity — are dropped rather
// than failing the whole load, so one bad reference cannot blank the cart.
func (o *Orchestrator) LoadCart(ctx context.Context, sess session.Session) (View, error) {
	const op = "cart.load"
	if !sess.IsAuthenticated() {
		return o.View(), fault.New(fault.Unauthenticated, op, "no session")
	}

	summary, err := o.carts.GetCart(ctx, sess.CurrentUserID())
	if err != nil {
		return o.View(), err
	}

	products := make([]entity.Product, 0, len(summary.ProductIDs))
	var total float64
	for _, id := range summary.ProductIDs {
		if !id.Valid() {
			o.logger.WarnContext(ctx, "dropping cart entry without a usable identity", "user_id", sess.CurrentUserID())
			continue
		}
		product, err := o.products.GetProduct(ctx, id)
		if err != nil {
			o.logger.WarnContext(ctx, "dropping unresolvable cart entry",
				"product_id", id, "error", err)
			continue
		}
		if product == nil || !product.ProductID.Valid() {
			o.logger.WarnContext(ctx, "dropping cart entry resolving to a record without identity", "product_id", id)
			continue
		}
		products = append(products, *product)
		total += product.Price
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.view.Summary = summary
	o.view.Products = products
	o.view.TotalPrice = total
	return o.snapshotLocked(), nil
}

// ToggleCartMembership adds the product if absent from the last loaded
// cart, removes it if present, then reloads the cart from the source of
// truth instead of patching local state.
func (o *Orchestrator) ToggleCartMembership(ctx context.Context, sess session.Session, productID entity.ID) (View, error) {
	const op = "cart.toggle"
	if !sess.IsAuthenticated() {
		return o.View(), fault.New(fault.Unauthenticated, op, "no session")
	}
	if !productID.Valid() {
		return o.View(), fault.New(fault.Validation, op, "product identity required")
	}

	o.mu.Lock()
	present := o.view.Summary != nil && o.view.Summary.Contains(productID)
	o.mu.Unlock()

	var err error
	if present {
		err = o.carts.RemoveProduct(ctx, sess.CurrentUserID(), productID)
	} else {
		err = o.carts.AddProduct(ctx, sess.CurrentUserID(), productID)
	}
	if err != nil {
		return o.View(), err
	}
	return o.LoadCart(ctx, sess)
}

// ClearCart empties the cart. Clearing an already-empty cart succeeds.
func (o *Orchestrator) ClearCart(ctx context.Context, sess session.Session) (View, error) {
	const op = "cart.clear"
	if !sess.IsAuthenticated() {
		return o.View(), fault.New(fault.Unauthenticated, op, "no session")
	}
	if err := o.carts.Clear(ctx, sess.CurrentUserID()); err != nil {
		return o.View(), err
	}
	return o.LoadCart(ctx, sess)
}

// OpenCheckout validates the current cart view fail-fast and, on success,
// loads the user's saved addresses. When no address exists the new-address
// path is forced.
func (o *Orchestrator) OpenCheckout(ctx context.Context, sess session.Session) (View, error) {
	const op = "cart.open_checkout"
	if !sess.IsAuthenticated() {
		return o.View(), fault.New(fault.Unauthenticated, op, "no session")
	}
	if err := o.validateWorkingSet(op); err != nil {
		return o.View(), err
	}

	addrs, err := o.addresses.ListAddresses(ctx, sess.CurrentUserID())
	if err != nil {
		// Degrade to the new-address path; the user can still check out.
		o.logger.WarnContext(ctx, "loading saved addresses failed", "error", err)
		addrs = nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.view.CheckoutOpen = true
	o.view.CheckoutError = ""
	o.view.Addresses = addrs
	o.view.NewAddressRequired = len(addrs) == 0
	return o.snapshotLocked(), nil
}

// CloseCheckout dismisses the checkout dialog without submitting.
func (o *Orchestrator) CloseCheckout() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.view.CheckoutOpen = false
	o.view.CheckoutError = ""
	return o.snapshotLocked()
}

// Checkout converts the cart into an invoice against the selected address.
//
// The run is a two-phase, non-compensating saga: when a new address is
// supplied it is created first, and only then is the checkout submitted
// with the resolved identity. An interruption in between leaves the
// address without an invoice, which is accepted. After a successful
// submission the cart is cleared best-effort and a delayed reload is
// scheduled so the backend has time to converge before the view re-reads
// cart state.
func (o *Orchestrator) Checkout(ctx context.Context, sess session.Session, sel AddressSelection) (*entity.Invoice, error) {
	const op = "cart.checkout"
	if !sess.IsAuthenticated() {
		return nil, fault.New(fault.Unauthenticated, op, "no session")
	}

	// Defend against state drift since OpenCheckout; no network before
	// the working set is known to be sound.
	if err := o.validateWorkingSet(op); err != nil {
		o.recordCheckoutError(err)
		return nil, err
	}

	addressID := sel.ExistingID
	if sel.New != nil {
		if err := o.validate.Struct(sel.New); err != nil {
			verr := fault.New(fault.Validation, op, "all address fields are required")
			o.recordCheckoutError(verr)
			return nil, verr
		}
	} else if !addressID.Valid() {
		verr := fault.New(fault.Validation, op, "no delivery address selected")
		o.recordCheckoutError(verr)
		return nil, verr
	}

	idempotencyKey := uuid.NewString()
	userID := sess.CurrentUserID()

	var invoice *entity.Invoice
	var steps []coordinator.Step

	if sel.New != nil {
		form := *sel.New
		steps = append(steps, coordinator.Step{
			Name: "create_address",
			Run: func(ctx context.Context) error {
				created, err := o.addresses.CreateAddress(ctx, userID, form)
				if err != nil {
					return err
				}
				// The contract guarantees a numeric identity on the
				// created resource; anything else is fatal here.
				if created == nil || !created.AddressID.Valid() {
					return fault.New(fault.ContractViolation, op, "created address has no numeric identity")
				}
				addressID = created.AddressID
				return nil
			},
		})
	}

	steps = append(steps,
		coordinator.Step{
			Name: "submit_checkout",
			Run: func(ctx context.Context) error {
				inv, err := o.carts.Checkout(ctx, userID, addressID, idempotencyKey)
				if err != nil {
					return err
				}
				invoice = inv
				return nil
			},
		},
		coordinator.Step{
			Name:       "clear_cart",
			BestEffort: true, // the purchase already succeeded
			Run: func(ctx context.Context) error {
				return o.carts.Clear(ctx, userID)
			},
		},
	)

	pipeline := coordinator.New(idempotencyKey, steps, o.logRepo, o.logger)
	if err := pipeline.Run(ctx); err != nil {
		// Keep the dialog open for retry; nothing done so far is undone.
		o.recordCheckoutError(err)
		return nil, err
	}

	o.mu.Lock()
	o.view.CheckoutOpen = false
	o.view.CheckoutError = ""
	o.view.Addresses = nil
	o.view.NewAddressRequired = false
	o.mu.Unlock()

	o.logger.InfoContext(ctx, "checkout completed",
		"user_id", userID, "address_id", addressID, "idempotency_key", idempotencyKey)

	o.scheduleReload(ctx, sess)
	return invoice, nil
}

// Invoices lists the user's past invoices.
func (o *Orchestrator) Invoices(ctx context.Context, sess session.Session) ([]entity.Invoice, error) {
	const op = "cart.invoices"
	if !sess.IsAuthenticated() {
		return nil, fault.New(fault.Unauthenticated, op, "no session")
	}
	return o.invoices.ListUserInvoices(ctx, sess.CurrentUserID())
}

// validateWorkingSet refuses checkout while the cart view is empty or any
// product in it lacks a usable identity. An invoice needs at least one
// resolvable product behind it.
func (o *Orchestrator) validateWorkingSet(op string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.view.Products) == 0 {
		return fault.New(fault.Validation, op, "cart is empty")
	}
	for _, p := range o.view.Products {
		if !p.ProductID.Valid() {
			return fault.New(fault.DataIntegrity, op, "cart contains a product without a usable identity")
		}
	}
	return nil
}

func (o *Orchestrator) recordCheckoutError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.view.CheckoutError = err.Error()
}

// scheduleReload re-reads the cart after a bounded delay, detached from
// the request context so sending the response does not cancel it.
func (o *Orchestrator) scheduleReload(ctx context.Context, sess session.Session) {
	detached := context.WithoutCancel(ctx)
	time.AfterFunc(o.reloadDelay, func() {
		if _, err := o.LoadCart(detached, sess); err != nil {
			o.logger.Warn("post-checkout cart reload failed", "user_id", sess.CurrentUserID(), "error", err)
		}
	})
}
