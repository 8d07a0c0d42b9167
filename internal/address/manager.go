// Package address manages a user's saved delivery addresses.
package address

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/core/domain/fault"
	"github.com/swapwear/marketplace/internal/core/ports"
	"github.com/swapwear/marketplace/internal/session"
)

// Manager performs address CRUD with form validation and the last-address
// guard.
type Manager struct {
	addresses ports.AddressClient
	validate  *validator.Validate
	logger    *slog.Logger
}

// New wires an address manager.
func New(addresses ports.AddressClient, logger *slog.Logger) *Manager {
	return &Manager{
		addresses: addresses,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

// List returns the user's saved addresses.
func (m *Manager) List(ctx context.Context, sess session.Session) ([]entity.Address, error) {
	const op = "address.list"
	if !sess.IsAuthenticated() {
		return nil, fault.New(fault.Unauthenticated, op, "no session")
	}
	return m.addresses.ListAddresses(ctx, sess.CurrentUserID())
}

// Create validates the form and saves a new address for the session user.
func (m *Manager) Create(ctx context.Context, sess session.Session, form entity.AddressForm) (*entity.Address, error) {
	const op = "address.create"
	if !sess.IsAuthenticated() {
		return nil, fault.New(fault.Unauthenticated, op, "no session")
	}
	if err := m.validate.Struct(form); err != nil {
		return nil, fault.New(fault.Validation, op, "all address fields are required")
	}
	created, err := m.addresses.CreateAddress(ctx, sess.CurrentUserID(), form)
	if err != nil {
		return nil, err
	}
	if created == nil || !created.AddressID.Valid() {
		return nil, fault.New(fault.ContractViolation, op, "created address has no numeric identity")
	}
	return created, nil
}

// Update validates the form and replaces the address identified by id. The
// address must belong to the session user.
func (m *Manager) Update(ctx context.Context, sess session.Session, id entity.ID, form entity.AddressForm) (*entity.Address, error) {
	const op = "address.update"
	if !sess.IsAuthenticated() {
		return nil, fault.New(fault.Unauthenticated, op, "no session")
	}
	if !id.Valid() {
		return nil, fault.New(fault.Validation, op, "address identity required")
	}
	if err := m.validate.Struct(form); err != nil {
		return nil, fault.New(fault.Validation, op, "all address fields are required")
	}
	if err := m.authorize(ctx, sess, op, id); err != nil {
		return nil, err
	}
	return m.addresses.UpdateAddress(ctx, id, form)
}

// Delete removes the address identified by id, unless it is the user's
// last one. Every account keeps at least one deliverable address.
func (m *Manager) Delete(ctx context.Context, sess session.Session, id entity.ID) error {
	const op = "address.delete"
	if !sess.IsAuthenticated() {
		return fault.New(fault.Unauthenticated, op, "no session")
	}
	if !id.Valid() {
		return fault.New(fault.Validation, op, "address identity required")
	}

	list, err := m.addresses.ListAddresses(ctx, sess.CurrentUserID())
	if err != nil {
		return err
	}
	if !containsAddress(list, id) {
		return fault.New(fault.AuthorizationDenied, op, "address does not belong to the session user")
	}
	if len(list) <= 1 {
		return fault.New(fault.Validation, op, "cannot delete the last remaining address")
	}
	return m.addresses.DeleteAddress(ctx, id)
}

func (m *Manager) authorize(ctx context.Context, sess session.Session, op string, id entity.ID) error {
	list, err := m.addresses.ListAddresses(ctx, sess.CurrentUserID())
	if err != nil {
		return err
	}
	if !containsAddress(list, id) {
		return fault.New(fault.AuthorizationDenied, op, "address does not belong to the session user")
	}
	return nil
}

func containsAddress(list []entity.Address, id entity.ID) bool {
	for _, a := range list {
		if a.AddressID == id {
			return true
		}
	}
	return false
}
