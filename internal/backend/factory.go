package backend

import (
	"context"
	"fmt"

	"vslim/internal/amqp"
	"vslim/internal/ledger"
	"vslim/internal/ledger/memory"
	"vslim/internal/log"
	"vslim/internal/services"
	"vslim/internal/storage"
)

// DefaultFactory opens the drivers shipped with the service.
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// Open builds the driver for cfg.Driver and wraps it in an ExpenseService.
// An unreachable broker is not fatal: the ledger then runs without events.
func (f *DefaultFactory) Open(ctx context.Context, cfg Config) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var store ledger.Store
	switch cfg.Driver {
	case DriverSQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLitePath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite ledger: %w", err)
		}
		store = repo
	case DriverMemory:
		store = memory.New()
	}
	f.logger.InfoContext(ctx, "Ledger driver ready", "driver", cfg.Driver, "db_path", cfg.SQLitePath)

	// Assigned only on success so a failed dial never becomes a typed-nil
	// publisher.
	var publisher services.EventPublisher
	if cfg.Events.Enabled() {
		client, err := amqp.NewClient(cfg.Events.URL, cfg.Events.Exchange, cfg.Events.Queue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Broker unreachable, ledger events disabled", log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Publishing ledger events",
				"exchange", cfg.Events.Exchange,
				"queue", cfg.Events.Queue)
			publisher = client
		}
	}

	return &Ledger{
		Store:      services.NewExpenseService(store, publisher, f.logger),
		Driver:     cfg.Driver,
		Publishing: publisher != nil,
	}, nil
}
