// Package worker drains ledger events from the broker into the journal.
package worker

import (
	"context"
	"fmt"

	"vslim/internal/amqp"
	"vslim/internal/ledger"
	"vslim/internal/log"
	"vslim/internal/metrics"
)

// EventSource delivers ledger event messages until ctx ends.
type EventSource interface {
	ConsumeLedgerEvents(ctx context.Context, handler func(context.Context, *amqp.LedgerEventMessage) error) error
}

// JournalWorker appends every consumed ledger event to the journal.
type JournalWorker struct {
	journal ledger.JournalWriter
	metrics *metrics.Metrics
	logger  *log.Logger
}

func NewJournalWorker(journal ledger.JournalWriter, m *metrics.Metrics, logger *log.Logger) *JournalWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &JournalWorker{
		journal: journal,
		metrics: m,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes from src until ctx is cancelled.
func (w *JournalWorker) Run(ctx context.Context, src EventSource) error {
	w.logger.InfoContext(ctx, "Journal worker started")
	err := src.ConsumeLedgerEvents(ctx, w.HandleLedgerEvent)
	w.logger.InfoContext(ctx, "Journal worker stopped", log.FieldError, err)
	return err
}

// HandleLedgerEvent writes one event. A returned error requeues the message.
func (w *JournalWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	ev := msg.Event
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = msg.Timestamp
	}

	ref, err := w.journal.Append(ctx, ev)
	w.metrics.CountJournalEvent(string(ev.Op), err)
	if err != nil {
		return fmt.Errorf("journal %s event for %s: %w", ev.Op, ev.Expense.ID, err)
	}

	w.logger.DebugContext(ctx, "Ledger event journaled",
		"op", ev.Op,
		log.FieldExpenseID, ev.Expense.ID,
		"ref", ref)
	return nil
}
