// Package memory is a process-local ledger store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vslim/internal/core"
)

type Store struct {
	mu    sync.RWMutex
	items map[string]core.Expense
	now   func() time.Time
}

func New() *Store {
	return &Store{items: make(map[string]core.Expense), now: time.Now}
}

func (s *Store) Create(_ context.Context, expenses []core.Expense) (core.AddResult, error) {
	for _, e := range expenses {
		if err := e.Validate(); err != nil {
			return core.AddResult{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	res := core.AddResult{InsertedIDs: make([]string, 0, len(expenses))}
	for _, e := range expenses {
		e.ID = uuid.NewString()
		if e.Type == "" {
			e.Type = core.EntryExpense
		}
		e.CreatedAt, e.ModifiedAt = now, now
		s.items[e.ID] = e
		res.InsertedIDs = append(res.InsertedIDs, e.ID)
	}
	res.InsertedCount = len(res.InsertedIDs)
	return res, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	if !ok {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	return e, nil
}

func (s *Store) Find(_ context.Context, c core.Criteria) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Expense
	for _, e := range s.items {
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaidAt.Equal(out[j].PaidAt) {
			return out[i].PaidAt.Before(out[j].PaidAt)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Update(_ context.Context, expenses []core.Expense) (core.UpdateResult, error) {
	for _, e := range expenses {
		if err := e.Validate(); err != nil {
			return core.UpdateResult{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var res core.UpdateResult
	now := s.now().UTC()
	for _, e := range expenses {
		cur, ok := s.items[e.ID]
		if !ok {
			continue
		}
		res.MatchedCount++
		if core.SameContent(e, cur) {
			continue
		}
		e.CreatedAt, e.ModifiedAt = cur.CreatedAt, now
		s.items[e.ID] = e
		res.ModifiedCount++
	}
	return res, nil
}

func (s *Store) Delete(_ context.Context, ids []string) (core.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res core.DeleteResult
	for _, id := range ids {
		if _, ok := s.items[id]; ok {
			delete(s.items, id)
			res.DeletedCount++
		}
	}
	return res, nil
}

func (s *Store) Statistics(ctx context.Context, c core.Criteria) (map[string]core.CategoryStat, error) {
	found, err := s.Find(ctx, c)
	if err != nil {
		return nil, err
	}
	stats := make(map[string]core.CategoryStat)
	for _, e := range found {
		st := stats[e.Category]
		st.TotalAmount += e.Amount
		st.Count++
		stats[e.Category] = st
	}
	return stats, nil
}

func (s *Store) Close() error { return nil }
