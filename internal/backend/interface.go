package backend

import (
	"context"

	"expensetracker/internal/amqp"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

// BackendType names a storage implementation
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// IsValid reports whether the backend type is supported
func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	}
	return false
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the wired service and the resources behind it
type BackendResult struct {
	Repository storage.Repository
	Service    *services.ExpenseService
	// Publisher is nil when events are disabled or the broker was unreachable.
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config, opts ...services.Option) (*BackendResult, error)
}
