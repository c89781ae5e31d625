package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vslim/internal/core"
	"vslim/internal/ledger"
	"vslim/internal/log"
)

// EventPublisher ships committed ledger events to the journal queue.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev ledger.Event) error
	Close() error
}

// ExpenseService orchestrates ledger writes and event publishing. It
// satisfies ledger.Store so the executor and HTTP layer share one path.
type ExpenseService struct {
	storage   ledger.Store
	publisher EventPublisher
	logger    *log.Logger
	now       func() time.Time
}

var _ ledger.Store = (*ExpenseService)(nil)

// NewExpenseService wraps storage. publisher may be nil, in which case
// events are not published.
func NewExpenseService(storage ledger.Store, publisher EventPublisher, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExpenseService{
		storage:   storage,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentExpense),
		now:       time.Now,
	}
}

// Ping checks the underlying storage when it supports health checks.
func (s *ExpenseService) Ping(ctx context.Context) error {
	if p, ok := s.storage.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (core.Expense, error) {
	return s.storage.Get(ctx, id)
}

func (s *ExpenseService) Find(ctx context.Context, c core.Criteria) ([]core.Expense, error) {
	return s.storage.Find(ctx, c)
}

func (s *ExpenseService) Statistics(ctx context.Context, c core.Criteria) (map[string]core.CategoryStat, error) {
	return s.storage.Statistics(ctx, c)
}

// Create saves the expenses and publishes one created event per record.
func (s *ExpenseService) Create(ctx context.Context, expenses []core.Expense) (core.AddResult, error) {
	res, err := s.storage.Create(ctx, expenses)
	if err != nil {
		return core.AddResult{}, fmt.Errorf("save expenses: %w", err)
	}

	for i, id := range res.InsertedIDs {
		e := expenses[i]
		e.ID = id
		s.publish(ctx, ledger.OpCreated, e)
	}
	return res, nil
}

// Update replaces the expenses and publishes an updated event for every
// record whose content changed.
func (s *ExpenseService) Update(ctx context.Context, expenses []core.Expense) (core.UpdateResult, error) {
	changed := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		cur, err := s.storage.Get(ctx, e.ID)
		if err != nil || core.SameContent(cur, e) {
			continue
		}
		changed = append(changed, e)
	}

	res, err := s.storage.Update(ctx, expenses)
	if err != nil {
		return core.UpdateResult{}, fmt.Errorf("update expenses: %w", err)
	}

	for _, e := range changed {
		s.publish(ctx, ledger.OpUpdated, e)
	}
	return res, nil
}

// Delete removes the expenses and publishes one deleted event per id
// that existed.
func (s *ExpenseService) Delete(ctx context.Context, ids []string) (core.DeleteResult, error) {
	existing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := s.storage.Get(ctx, id); err == nil {
			existing = append(existing, id)
		}
	}

	res, err := s.storage.Delete(ctx, ids)
	if err != nil {
		return core.DeleteResult{}, fmt.Errorf("delete expenses: %w", err)
	}

	for _, id := range existing {
		s.publish(ctx, ledger.OpDeleted, core.Expense{ID: id})
	}
	return res, nil
}

// publish never fails the write: the record is already committed locally.
func (s *ExpenseService) publish(ctx context.Context, op ledger.Op, e core.Expense) {
	if s.publisher == nil {
		return
	}
	ev := ledger.Event{Op: op, Expense: e, OccurredAt: s.now().UTC()}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldOperation, log.OpPublish,
			"op", op,
			log.FieldExpenseID, e.ID,
			log.FieldError, err)
	}
}

// Close closes both storage and publisher
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}
	return nil
}
