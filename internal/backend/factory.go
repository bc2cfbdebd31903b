package backend

import (
	"context"
	"fmt"

	"expensetracker/internal/amqp"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend opens the configured repository, connects the optional event
// publisher and wires both into an ExpenseService. opts are applied after the
// factory's own options.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config, opts ...services.Option) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := f.openRepository(config)
	if err != nil {
		return nil, err
	}

	var publisher *amqp.Client
	if config.AMQPURL != "" {
		publisher, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events",
				applog.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svcOpts := []services.Option{services.WithLogger(f.logger.WithComponent(applog.ComponentExpense))}
	if publisher != nil {
		svcOpts = append(svcOpts, services.WithPublisher(publisher))
	}
	svc := services.NewExpenseService(repo, append(svcOpts, opts...)...)

	f.logger.InfoContext(ctx, "Initialized backend",
		applog.FieldBackend, string(config.Type),
		"events_enabled", publisher != nil)

	return &BackendResult{
		Repository: repo,
		Service:    svc,
		Publisher:  publisher,
		Cleanup:    svc.Close,
	}, nil
}

func (f *DefaultFactory) openRepository(config Config) (storage.Repository, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Opened SQLite repository", "db_path", config.SQLiteDBPath)
		return repo, nil
	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		f.logger.Info("Opened Postgres repository")
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Using in-memory repository, data is lost on exit")
		return storage.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
