// Package exchange orchestrates bilateral product exchanges: proposing,
// accepting, rejecting, and cancelling, plus the tab-based presentation
// of the user's exchange history.
package exchange

import (
	"context"
	"log/slog"
	"sync"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/core/domain/fault"
	"github.com/swapwear/marketplace/internal/core/ports"
	"github.com/swapwear/marketplace/internal/session"
)

// Tab selects a slice of the exchange list by status.
type Tab string

const (
	TabAll      Tab = "all"
	TabPending  Tab = "pending"
	TabAccepted Tab = "accepted"
	TabRejected Tab = "rejected"
)

// Orchestrator drives exchange workflows for one user.
type Orchestrator struct {
	exchanges ports.ExchangeClient
	logger    *slog.Logger

	mu   sync.Mutex
	view []entity.Exchange
}

// New wires an exchange orchestrator.
func New(exchanges ports.ExchangeClient, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{exchanges: exchanges, logger: logger}
}

// View returns a copy of the last loaded exchange list.
func (o *Orchestrator) View() []entity.Exchange {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]entity.Exchange(nil), o.view...)
}

// LoadExchanges fetches the user's exchanges and drops records that lack a
// status or a usable identity. A single malformed record must not hide the
// rest of the history.
func (o *Orchestrator) LoadExchanges(ctx context.Context, sess session.Session) ([]entity.Exchange, error) {
	const op = "exchange.load"
	if !sess.IsAuthenticated() {
		return nil, fault.New(fault.Unauthenticated, op, "no session")
	}

	list, err := o.exchanges.ListUserExchanges(ctx, sess.CurrentUserID())
	if err != nil {
		return o.View(), err
	}

	kept := make([]entity.Exchange, 0, len(list))
	for _, x := range list {
		if !x.ExchangeID.Valid() || x.Status == "" {
			o.logger.WarnContext(ctx, "dropping malformed exchange record",
				"exchange_id", x.ExchangeID, "status", x.Status)
			continue
		}
		kept = append(kept, x)
	}

	o.mu.Lock()
	o.view = kept
	o.mu.Unlock()
	return append([]entity.Exchange(nil), kept...), nil
}

// FilterByTab partitions exchanges for presentation. The accepted tab also
// shows completed exchanges; the two statuses are one lifecycle stage from
// the user's point of view.
func FilterByTab(list []entity.Exchange, tab Tab) []entity.Exchange {
	if tab == TabAll {
		return append([]entity.Exchange(nil), list...)
	}
	out := make([]entity.Exchange, 0, len(list))
	for _, x := range list {
		switch tab {
		case TabPending:
			if x.Status == entity.ExchangePending {
				out = append(out, x)
			}
		case TabAccepted:
			if x.Status == entity.ExchangeAccepted || x.Status == entity.ExchangeCompleted {
				out = append(out, x)
			}
		case TabRejected:
			if x.Status == entity.ExchangeRejected {
				out = append(out, x)
			}
		}
	}
	return out
}

// Propose submits a new exchange. The session user must be the requester,
// the two users must differ, and so must the two products.
func (o *Orchestrator) Propose(ctx context.Context, sess session.Session, proposal entity.ExchangeProposal) (*entity.Exchange, error) {
	const op = "exchange.propose"
	if !sess.IsAuthenticated() {
		return nil, fault.New(fault.Unauthenticated, op, "no session")
	}
	if !proposal.OwnerID.Valid() || !proposal.RequesterID.Valid() ||
		!proposal.OwnerProductID.Valid() || !proposal.RequesterProductID.Valid() {
		return nil, fault.New(fault.Validation, op, "owner, requester and both products are required")
	}
	if proposal.OwnerID == proposal.RequesterID {
		return nil, fault.New(fault.Validation, op, "cannot propose an exchange with yourself")
	}
	if proposal.OwnerProductID == proposal.RequesterProductID {
		return nil, fault.New(fault.Validation, op, "the two products must differ")
	}
	if proposal.RequesterID != sess.CurrentUserID() {
		return nil, fault.New(fault.AuthorizationDenied, op, "only the session user may propose on their own behalf")
	}

	created, err := o.exchanges.Propose(ctx, proposal)
	if err != nil {
		return nil, err
	}
	if _, err := o.LoadExchanges(ctx, sess); err != nil {
		o.logger.WarnContext(ctx, "exchange reload after propose failed", "error", err)
	}
	return created, nil
}

// Accept moves a pending exchange to accepted. Only the owner of a pending
// exchange may accept it.
func (o *Orchestrator) Accept(ctx context.Context, sess session.Session, exchangeID entity.ID) ([]entity.Exchange, error) {
	const op = "exchange.accept"
	x, err := o.gate(ctx, sess, op, exchangeID, entity.RoleOwner)
	if err != nil {
		return o.View(), err
	}
	if _, err := o.exchanges.Accept(ctx, x.ExchangeID); err != nil {
		return o.View(), err
	}
	return o.LoadExchanges(ctx, sess)
}

// Reject moves a pending exchange to rejected. Only the owner of a pending
// exchange may reject it.
func (o *Orchestrator) Reject(ctx context.Context, sess session.Session, exchangeID entity.ID) ([]entity.Exchange, error) {
	const op = "exchange.reject"
	x, err := o.gate(ctx, sess, op, exchangeID, entity.RoleOwner)
	if err != nil {
		return o.View(), err
	}
	if _, err := o.exchanges.Reject(ctx, x.ExchangeID); err != nil {
		return o.View(), err
	}
	return o.LoadExchanges(ctx, sess)
}

// Cancel withdraws a pending exchange. Only the requester may cancel, and
// cancellation deletes the record rather than parking it in a terminal
// status.
func (o *Orchestrator) Cancel(ctx context.Context, sess session.Session, exchangeID entity.ID) ([]entity.Exchange, error) {
	const op = "exchange.cancel"
	x, err := o.gate(ctx, sess, op, exchangeID, entity.RoleRequester)
	if err != nil {
		return o.View(), err
	}
	if err := o.exchanges.Cancel(ctx, x.ExchangeID); err != nil {
		return o.View(), err
	}
	return o.LoadExchanges(ctx, sess)
}

// CanAccept reports whether the session user may accept the exchange.
func CanAccept(x entity.Exchange, sess session.Session) bool {
	return x.Status == entity.ExchangePending && x.RoleFor(sess.CurrentUserID()) == entity.RoleOwner
}

// CanReject reports whether the session user may reject the exchange.
func CanReject(x entity.Exchange, sess session.Session) bool {
	return CanAccept(x, sess)
}

// CanCancel reports whether the session user may cancel the exchange.
func CanCancel(x entity.Exchange, sess session.Session) bool {
	return x.Status == entity.ExchangePending && x.RoleFor(sess.CurrentUserID()) == entity.RoleRequester
}

// gate resolves the exchange from the current view (reloading once on a
// miss) and enforces the pending-status and role preconditions shared by
// all transitions.
func (o *Orchestrator) gate(ctx context.Context, sess session.Session, op string, exchangeID entity.ID, role entity.ExchangeRole) (*entity.Exchange, error) {
	if !sess.IsAuthenticated() {
		return nil, fault.New(fault.Unauthenticated, op, "no session")
	}
	if !exchangeID.Valid() {
		return nil, fault.New(fault.Validation, op, "exchange identity required")
	}

	x := o.find(exchangeID)
	if x == nil {
		if _, err := o.LoadExchanges(ctx, sess); err != nil {
			return nil, err
		}
		x = o.find(exchangeID)
	}
	if x == nil {
		return nil, fault.New(fault.Validation, op, "exchange not found")
	}
	if x.Status != entity.ExchangePending {
		return nil, fault.New(fault.Validation, op, "exchange is no longer pending")
	}
	if x.RoleFor(sess.CurrentUserID()) != role {
		return nil, fault.New(fault.AuthorizationDenied, op, "session user does not hold the required role")
	}
	return x, nil
}

func (o *Orchestrator) find(exchangeID entity.ID) *entity.Exchange {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.view {
		if o.view[i].ExchangeID == exchangeID {
			x := o.view[i]
			return &x
		}
	}
	return nil
}
