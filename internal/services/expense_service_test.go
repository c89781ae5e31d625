package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vslim/internal/core"
	"vslim/internal/ledger"
	"vslim/internal/ledger/memory"
)

type fakePublisher struct {
	events []ledger.Event
	err    error
	closed bool
}

func (p *fakePublisher) PublishLedgerEvent(_ context.Context, ev ledger.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func ops(events []ledger.Event) []ledger.Op {
	out := make([]ledger.Op, len(events))
	for i, ev := range events {
		out[i] = ev.Op
	}
	return out
}

func TestExpenseServicePublishesCommittedWrites(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(memory.New(), pub, nil)
	ctx := context.Background()

	added, err := svc.Create(ctx, []core.Expense{
		{UserID: "u1", Description: "phở", Amount: 50000, PaidAt: testToday},
	})
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, added.InsertedIDs[0], pub.events[0].Expense.ID)
	assert.False(t, pub.events[0].OccurredAt.IsZero())

	e, err := svc.Get(ctx, added.InsertedIDs[0])
	require.NoError(t, err)

	_, err = svc.Update(ctx, []core.Expense{e})
	require.NoError(t, err)
	assert.Len(t, pub.events, 1, "unchanged records publish nothing")

	e.Amount = 60000
	_, err = svc.Update(ctx, []core.Expense{e})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, []string{e.ID, "missing"})
	require.NoError(t, err)

	assert.Equal(t, []ledger.Op{ledger.OpCreated, ledger.OpUpdated, ledger.OpDeleted}, ops(pub.events))
	assert.Equal(t, e.ID, pub.events[2].Expense.ID)
}

func TestExpenseServicePublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewExpenseService(memory.New(), pub, nil)

	res, err := svc.Create(context.Background(), []core.Expense{
		{UserID: "u1", Description: "phở", Amount: 50000, PaidAt: testToday},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.InsertedCount)
}

func TestExpenseServiceWithoutPublisher(t *testing.T) {
	svc := NewExpenseService(memory.New(), nil, nil)

	_, err := svc.Create(context.Background(), []core.Expense{
		{UserID: "u1", Description: "phở", Amount: 50000, PaidAt: testToday},
	})
	require.NoError(t, err)
	assert.NoError(t, svc.Close())
}

func TestExpenseServiceCreateValidation(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(memory.New(), pub, nil)

	_, err := svc.Create(context.Background(), []core.Expense{{UserID: "u1", PaidAt: testToday}})
	assert.ErrorIs(t, err, core.ErrEmptyDescription)
	assert.Empty(t, pub.events)
}

func TestExpenseServiceClose(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(memory.New(), pub, nil)

	require.NoError(t, svc.Close())
	assert.True(t, pub.closed)
}

type pingingStore struct {
	*memory.Store
	err error
}

func (p pingingStore) Ping(context.Context) error { return p.err }

func TestExpenseServicePing(t *testing.T) {
	assert.NoError(t, NewExpenseService(memory.New(), nil, nil).Ping(context.Background()))

	down := errors.New("database is closed")
	svc := NewExpenseService(pingingStore{Store: memory.New(), err: down}, nil, nil)
	assert.ErrorIs(t, svc.Ping(context.Background()), down)
}
