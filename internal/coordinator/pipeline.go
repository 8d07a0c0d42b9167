// Package coordinator runs multi-step remote operations as sequential,
// non-compensating pipelines. Checkout is the canonical case: address
// creation and checkout submission are strictly ordered, and an
// interruption between them leaves the address without a matching invoice.
// That inconsistency is accepted; the pipeline records every transition so
// it stays discoverable, but it never rolls anything back.
package coordinator

import (
	"context"
	"log/slog"

	"github.com/swapwear/marketplace/internal/coordinator/checkoutlog"
)

// Step is a single unit of work in a pipeline. A best-effort step may fail
// without stopping the pipeline; its failure is logged and recorded only.
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	BestEffort bool
}

// Pipeline executes steps in order, recording each transition.
type Pipeline struct {
	id      string
	steps   []Step
	logRepo checkoutlog.Repository // nil-safe: recording skipped if nil
	logger  *slog.Logger
}

// New builds a pipeline. The id correlates log rows with business data;
// for checkout it is the per-attempt idempotency key.
func New(id string, steps []Step, repo checkoutlog.Repository, logger *slog.Logger) *Pipeline {
	return &Pipeline{id: id, steps: steps, logRepo: repo, logger: logger}
}

// Run executes the steps sequentially. The first hard failure stops the
// pipeline and is returned to the caller; nothing already done is undone.
func (p *Pipeline) Run(ctx context.Context) error {
	p.record(ctx, checkoutlog.StatusStarted, "", nil)

	for _, step := range p.steps {
		if err := step.Run(ctx); err != nil {
			if step.BestEffort {
				p.logger.WarnContext(ctx, "best-effort step failed",
					"pipeline_id", p.id, "step", step.Name, "error", err)
				p.record(ctx, checkoutlog.StatusStepSoftFailed, step.Name, []string{err.Error()})
				continue
			}
			p.logger.ErrorContext(ctx, "pipeline step failed",
				"pipeline_id", p.id, "step", step.Name, "error", err)
			p.record(ctx, checkoutlog.StatusFailed, step.Name, []string{err.Error()})
			return err
		}
		p.record(ctx, checkoutlog.StatusStepDone, step.Name, nil)
	}

	p.record(ctx, checkoutlog.StatusCompleted, "", nil)
	return nil
}

func (p *Pipeline) record(ctx context.Context, status checkoutlog.Status, step string, errs []string) {
	if p.logRepo == nil {
		return
	}
	entry := checkoutlog.NewEntry(ctx, p.id, status, step, errs)
	if err := p.logRepo.Save(ctx, entry); err != nil {
		p.logger.WarnContext(ctx, "checkout log write failed",
			"pipeline_id", p.id, "status", string(status), "error", err)
	}
}
