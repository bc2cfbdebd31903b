package storage

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"expensetracker/internal/core"
)

// MemoryRepository keeps expenses in process memory. Used for local development and tests.
type MemoryRepository struct {
	mu     sync.Mutex
	items  []core.Expense
	nextID int64
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

// Save assigns the next id when e.ID is zero, otherwise replaces or inserts by id.
func (s *MemoryRepository) Save(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == 0 {
		e.ID = s.nextID
		s.nextID++
		s.items = append(s.items, e)
		return e, nil
	}

	if i := s.indexOf(e.ID); i >= 0 {
		s.items[i] = e
		return e, nil
	}
	s.items = append(s.items, e)
	if e.ID >= s.nextID {
		s.nextID = e.ID + 1
	}
	return e, nil
}

func (s *MemoryRepository) FindByID(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return core.Expense{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

func (s *MemoryRepository) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
	return nil
}

func (s *MemoryRepository) FindAll(_ context.Context, key core.SortKey, order core.SortOrder) ([]core.Expense, error) {
	out := s.snapshot()
	slices.SortFunc(out, func(a, b core.Expense) int {
		var c int
		if key == core.SortByAmount {
			c = a.Amount.Cmp(b.Amount)
		} else {
			c = a.Date.Compare(b.Date)
		}
		if order == core.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *MemoryRepository) FindByCategory(ctx context.Context, c core.Category) ([]core.Expense, error) {
	return core.Apply(s.byDate(), core.ListQuery{Category: &c}), nil
}

func (s *MemoryRepository) FindByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	return core.Apply(s.byDate(), core.ListQuery{StartDate: &start, EndDate: &end}), nil
}

func (s *MemoryRepository) SumByCategory(_ context.Context) ([]core.CategoryTotal, error) {
	totals := map[core.Category]core.Money{}
	for _, e := range s.snapshot() {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	out := make([]core.CategoryTotal, 0, len(totals))
	for c, t := range totals {
		out = append(out, core.CategoryTotal{Category: c, Total: t})
	}
	return out, nil
}

func (s *MemoryRepository) SumByMonth(_ context.Context, year int) ([]core.MonthTotal, error) {
	totals := map[time.Month]core.Money{}
	for _, e := range s.snapshot() {
		if e.Date.Year() != year {
			continue
		}
		totals[e.Date.Month()] = totals[e.Date.Month()].Add(e.Amount)
	}
	out := make([]core.MonthTotal, 0, len(totals))
	for m, t := range totals {
		out = append(out, core.MonthTotal{Month: m, Total: t})
	}
	slices.SortFunc(out, func(a, b core.MonthTotal) int { return cmp.Compare(a.Month, b.Month) })
	return out, nil
}

func (s *MemoryRepository) Ping(context.Context) error { return nil }

func (s *MemoryRepository) Close() error { return nil }

// Len reports the number of stored expenses.
func (s *MemoryRepository) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryRepository) indexOf(id int64) int {
	return slices.IndexFunc(s.items, func(e core.Expense) bool { return e.ID == id })
}

func (s *MemoryRepository) snapshot() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...)
}

func (s *MemoryRepository) byDate() []core.Expense {
	out, _ := s.FindAll(context.Background(), core.SortByDate, core.Ascending)
	return out
}
