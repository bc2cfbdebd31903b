package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// EventPublisher announces expense mutations to other processes.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, t amqp.EventType, id int64) error
}

// Option configures an ExpenseService.
type Option func(*ExpenseService)

// WithPublisher enables event publishing after successful mutations.
func WithPublisher(p EventPublisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

// WithClock overrides the clock used to resolve the current year.
func WithClock(now func() time.Time) Option {
	return func(s *ExpenseService) { s.now = now }
}

// WithLogger sets the logger used for mutation and publishing logs.
func WithLogger(l *applog.Logger) Option {
	return func(s *ExpenseService) { s.logger = l }
}

// ExpenseService orchestrates expense operations across storage and AMQP
type ExpenseService struct {
	repo      storage.Repository
	publisher EventPublisher
	now       func() time.Time
	logger    *applog.Logger
}

func NewExpenseService(repo storage.Repository, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.New(applog.Config{Handler: slog.Default().Handler(), Component: applog.ComponentExpense})
	}
	return s
}

// Create validates and persists a new expense. Any id on e is ignored.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = 0
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.repo.Save(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.logMutation(ctx, applog.OpCreate, saved)
	s.publish(ctx, amqp.EventCreated, saved.ID)
	return saved, nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.repo.FindByID(ctx, id)
}

// Update replaces every field of the expense with id. A missing id yields
// storage.ErrNotFound and nothing is written.
func (s *ExpenseService) Update(ctx context.Context, id int64, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}

	saved, err := s.repo.Save(ctx, e.WithID(existing.ID))
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	s.logMutation(ctx, applog.OpUpdate, saved)
	s.publish(ctx, amqp.EventUpdated, saved.ID)
	return saved, nil
}

// Delete removes the expense with id. A missing id yields storage.ErrNotFound.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.logMutation(ctx, applog.OpDelete, existing)
	s.publish(ctx, amqp.EventDeleted, existing.ID)
	return nil
}

// List fetches every expense sorted by the query key and applies the
// query's filters and final ordering in memory.
func (s *ExpenseService) List(ctx context.Context, q core.ListQuery) ([]core.Expense, error) {
	all, err := s.repo.FindAll(ctx, q.SortBy, q.Order)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return core.Apply(all, q), nil
}

func (s *ExpenseService) SummaryByCategory(ctx context.Context) (core.CategorySummary, error) {
	rows, err := s.repo.SumByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary by category: %w", err)
	}
	return core.NewCategorySummary(rows), nil
}

// MonthlySummary totals expenses per month of year. A zero year selects the
// current year of the service clock.
func (s *ExpenseService) MonthlySummary(ctx context.Context, year int) (core.MonthlySummary, error) {
	if year == 0 {
		year = s.CurrentYear()
	}
	rows, err := s.repo.SumByMonth(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("monthly summary (year=%d): %w", year, err)
	}
	return core.NewMonthlySummary(rows), nil
}

// CurrentYear returns the year according to the service clock.
func (s *ExpenseService) CurrentYear() int {
	return s.now().Year()
}

// Ping reports whether storage is reachable.
func (s *ExpenseService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *ExpenseService) logMutation(ctx context.Context, op string, e core.Expense) {
	applog.NewStructuredLogger(s.logger).
		LogExpenseMutation(ctx, op, e.ID, e.Amount.Cents(), e.Category.String(), e.Date.String())
}

// publish is best effort: failures are logged and never fail the request.
func (s *ExpenseService) publish(ctx context.Context, t amqp.EventType, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, t, id); err != nil {
		s.logger.WithComponent(applog.ComponentAMQP).ErrorContext(ctx, "Failed to publish expense event",
			applog.FieldEventType, t,
			applog.FieldExpenseID, id,
			applog.FieldError, err)
	}
}

// Close closes storage and, when it supports it, the publisher
func (s *ExpenseService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close expense service: %w", err)
	}
	return nil
}
