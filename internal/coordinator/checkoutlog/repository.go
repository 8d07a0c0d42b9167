package checkoutlog

import "context"

// Repository is the port for persisting checkout log entries. The
// coordinator depends on this abstraction rather than on SQLite directly,
// so tests can substitute an in-memory implementation.
type Repository interface {
	// Save appends one row. The log is append-only; rows are never
	// updated or upserted.
	Save(ctx context.Context, entry *Entry) error
}

// Reader is the status-lookup side of the log, used to inspect the most
// recent transition of a run, including half-done runs after a crash.
type Reader interface {
	GetLatest(ctx context.Context, checkoutID string) (*Entry, error)
}
