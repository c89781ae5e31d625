package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vslim/internal/amqp"
	"vslim/internal/core"
	"vslim/internal/ledger"
)

type fakeJournal struct {
	events []ledger.Event
	err    error
}

func (f *fakeJournal) Append(_ context.Context, ev ledger.Event) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.events = append(f.events, ev)
	return "Journal!A2:I2", nil
}

type fakeSource struct {
	msgs []*amqp.LedgerEventMessage
	errs []error
}

func (s *fakeSource) ConsumeLedgerEvents(ctx context.Context, handler func(context.Context, *amqp.LedgerEventMessage) error) error {
	for _, m := range s.msgs {
		s.errs = append(s.errs, handler(ctx, m))
	}
	return nil
}

func TestHandleLedgerEvent(t *testing.T) {
	j := &fakeJournal{}
	w := NewJournalWorker(j, nil, nil)
	stamp := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)

	err := w.HandleLedgerEvent(context.Background(), &amqp.LedgerEventMessage{
		Event:     ledger.Event{Op: ledger.OpDeleted, Expense: core.Expense{ID: "e1"}},
		Timestamp: stamp,
	})
	require.NoError(t, err)
	require.Len(t, j.events, 1)
	assert.Equal(t, stamp, j.events[0].OccurredAt, "missing event time falls back to the message time")
}

func TestHandleLedgerEventError(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewJournalWorker(&fakeJournal{err: boom}, nil, nil)

	err := w.HandleLedgerEvent(context.Background(), &amqp.LedgerEventMessage{
		Event: ledger.Event{Op: ledger.OpCreated, Expense: core.Expense{ID: "e1"}},
	})
	assert.ErrorIs(t, err, boom)
}

func TestRun(t *testing.T) {
	j := &fakeJournal{}
	src := &fakeSource{msgs: []*amqp.LedgerEventMessage{
		amqp.NewLedgerEventMessage(ledger.Event{Op: ledger.OpCreated, Expense: core.Expense{ID: "e1"}}),
		amqp.NewLedgerEventMessage(ledger.Event{Op: ledger.OpUpdated, Expense: core.Expense{ID: "e1"}}),
	}}

	require.NoError(t, NewJournalWorker(j, nil, nil).Run(context.Background(), src))
	assert.Len(t, j.events, 2)
	assert.Equal(t, []error{nil, nil}, src.errs)
}
