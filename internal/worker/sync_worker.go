package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/sheets"
)

// ExpenseLister is the read side the worker mirrors from.
type ExpenseLister interface {
	List(ctx context.Context, q core.ListQuery) ([]core.Expense, error)
}

// SyncWorker mirrors the full expense table to an exporter whenever an
// expense changes. Every sync is a complete re-export, so creates, updates
// and deletes are handled the same way and replays are harmless.
type SyncWorker struct {
	lister   ExpenseLister
	exporter sheets.Exporter
	logger   *applog.Logger

	// serializes exports so two clears never interleave with their writes
	mu       sync.Mutex
	lastSync time.Time
	syncs    int64
}

func NewSyncWorker(lister ExpenseLister, exporter sheets.Exporter, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SyncWorker{
		lister:   lister,
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleEvent processes a single expense event from AMQP. A returned error
// makes the consumer requeue the event.
func (w *SyncWorker) HandleEvent(ctx context.Context, event *amqp.ExpenseEvent) error {
	w.logger.InfoContext(ctx, "Processing expense event",
		applog.FieldEventType, event.Type,
		applog.FieldExpenseID, event.ID)

	if err := w.Sync(ctx); err != nil {
		return fmt.Errorf("sync after %s event for expense %d: %w", event.Type, event.ID, err)
	}
	return nil
}

// StartupSync exports once before consuming, covering events missed while
// the worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Running startup sync")
	if err := w.Sync(ctx); err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	return nil
}

// Sync exports every expense in date order.
func (w *SyncWorker) Sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	expenses, err := w.lister.List(ctx, core.ListQuery{SortBy: core.SortByDate, Order: core.Ascending})
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}

	if err := w.exporter.Export(ctx, expenses); err != nil {
		w.logger.ErrorContext(ctx, "Failed to export expenses",
			applog.FieldOperation, applog.OpExport,
			applog.FieldCount, len(expenses),
			applog.FieldError, err)
		return fmt.Errorf("export expenses: %w", err)
	}

	w.lastSync = time.Now()
	w.syncs++
	w.logger.InfoContext(ctx, "Expenses synced",
		applog.FieldCount, len(expenses),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Stats reports how many syncs succeeded and when the last one finished.
func (w *SyncWorker) Stats() (syncs int64, lastSync time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.syncs, w.lastSync
}
