// Package ledger defines the storage ports for expense records and the
// events emitted when they change.
package ledger

import (
	"context"
	"time"

	"vslim/internal/core"
)

// Ports for the ledger storage.
type (
	Reader interface {
		// Get returns core.ErrExpenseNotFound when id is unknown.
		Get(ctx context.Context, id string) (core.Expense, error)
		Find(ctx context.Context, c core.Criteria) ([]core.Expense, error)
		// Statistics aggregates the records matching c per category.
		Statistics(ctx context.Context, c core.Criteria) (map[string]core.CategoryStat, error)
	}

	Writer interface {
		Create(ctx context.Context, expenses []core.Expense) (core.AddResult, error)
		// Update replaces records by ID. Unknown IDs are skipped.
		Update(ctx context.Context, expenses []core.Expense) (core.UpdateResult, error)
		Delete(ctx context.Context, ids []string) (core.DeleteResult, error)
	}

	Store interface {
		Reader
		Writer
		Close() error
	}

	// JournalWriter appends ledger events to an external journal.
	JournalWriter interface {
		Append(ctx context.Context, ev Event) (rowRef string, err error)
	}
)

// Op names a ledger mutation.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Event records one committed ledger mutation. Deleted events only carry
// the expense ID.
type Event struct {
	Op         Op           `json:"op"`
	Expense    core.Expense `json:"expense"`
	OccurredAt time.Time    `json:"occurred_at"`
}
