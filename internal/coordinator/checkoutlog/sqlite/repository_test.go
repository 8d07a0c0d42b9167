package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapwear/marketplace/internal/coordinator/checkoutlog"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "checkout_logs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveAndGetLatest(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	first := &checkoutlog.Entry{
		CheckoutID:    "key-1",
		Status:        checkoutlog.StatusStarted,
		ErrorMessages: "[]",
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, first))

	second := &checkoutlog.Entry{
		CheckoutID:    "key-1",
		Status:        checkoutlog.StatusFailed,
		CurrentStep:   "submit_checkout",
		ErrorMessages: `["boom"]`,
		TraceID:       "0123456789abcdef0123456789abcdef",
		SpanID:        "0123456789abcdef",
		UpdatedAt:     time.Now().UTC().Add(time.Millisecond),
	}
	require.NoError(t, repo.Save(ctx, second))

	latest, err := repo.GetLatest(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, checkoutlog.StatusFailed, latest.Status)
	assert.Equal(t, "submit_checkout", latest.CurrentStep)
	assert.Equal(t, `["boom"]`, latest.ErrorMessages)
	assert.Equal(t, second.TraceID, latest.TraceID)
	assert.WithinDuration(t, second.UpdatedAt, latest.UpdatedAt, time.Second)
}

func TestGetLatestUnknownCheckout(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.GetLatest(context.Background(), "missing")
	assert.Error(t, err)
}

func TestEntriesAreAppendOnlyPerRun(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, status := range []checkoutlog.Status{
		checkoutlog.StatusStarted,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusCompleted,
	} {
		require.NoError(t, repo.Save(ctx, &checkoutlog.Entry{
			CheckoutID:    "key-2",
			Status:        status,
			ErrorMessages: "[]",
			UpdatedAt:     base.Add(time.Duration(i) * time.Millisecond),
		}))
	}

	latest, err := repo.GetLatest(ctx, "key-2")
	require.NoError(t, err)
	assert.Equal(t, checkoutlog.StatusCompleted, latest.Status)
}
