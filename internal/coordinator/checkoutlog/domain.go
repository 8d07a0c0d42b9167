// Package checkoutlog defines the durable audit trail of checkout
// pipeline transitions.
//
// The checkout saga is two-phase and non-atomic: an interruption between
// address creation and checkout submission leaves an orphaned address with
// no invoice. The log exists so such half-done runs can be found and
// inspected afterwards, correlated with the distributed trace that carried
// them.
package checkoutlog

import "time"

// Status is the lifecycle state of a checkout pipeline execution.
type Status string

const (
	StatusStarted        Status = "STARTED"
	StatusStepDone       Status = "STEP_DONE"
	StatusStepSoftFailed Status = "STEP_SOFT_FAILED"
	StatusCompleted      Status = "COMPLETED"
	StatusFailed         Status = "FAILED"
)

// Entry is a single row in the checkout_logs table: a point-in-time
// snapshot of one pipeline execution.
type Entry struct {
	// CheckoutID identifies the pipeline run. It is the idempotency key of
	// the checkout attempt, so rows can be joined with the backend's
	// invoice records.
	CheckoutID string

	// Status is the lifecycle state at the time this row was written.
	Status Status

	// CurrentStep names the step that just executed or failed.
	CurrentStep string

	// ErrorMessages is a JSON array of failure details, one per failed
	// step or compensation-free soft failure.
	ErrorMessages string

	// TraceID is the W3C trace ID of the span active when the row was
	// written; empty when no span was active.
	TraceID string

	// SpanID pinpoints the exact span within the trace.
	SpanID string

	// UpdatedAt is the wall-clock time of this transition.
	UpdatedAt time.Time
}
