// Package memory provides an Exporter that keeps the last export in memory.
package memory

import (
	"context"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/sheets"
)

var _ sheets.Exporter = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	rows    [][]any
	exports int
}

func New() *Store {
	return &Store{}
}

// Export replaces the stored rows with the laid-out expenses.
func (s *Store) Export(ctx context.Context, expenses []core.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := sheets.Rows(expenses)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
	s.exports++
	return nil
}

// Rows returns a copy of the last exported rows, header included.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	copy(out, s.rows)
	return out
}

// Exports returns how many exports succeeded.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
