package http

import (
	"fmt"
	"net/http"

	"vslim/internal/core"
	applog "vslim/internal/log"
)

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id := sanitizeText(r.PathValue("id"), maxFieldRunes)
	if id == "" {
		s.respond(w, r, BadRequestError("expense id is required"))
		return
	}

	e, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	s.respond(w, r, NewJSONResponse().Body(e))
}

func (s *Server) handleFindExpenses(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r.URL.Query())
	if err != nil {
		s.fail(w, r, applog.OpSearch, err)
		return
	}

	found, err := s.store.Find(r.Context(), c)
	if err != nil {
		s.fail(w, r, applog.OpSearch, err)
		return
	}
	if found == nil {
		found = []core.Expense{}
	}
	s.respond(w, r, NewJSONResponse().Body(map[string]any{"result": found}))
}

// handleCreateExpenses accepts one record or an array. Missing type,
// category and paid_at fall back to expense, none and today.
func (s *Server) handleCreateExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := decodeExpenses(w, r, true)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}

	today := s.today()
	for i := range expenses {
		e := &expenses[i]
		sanitizeExpense(e)
		e.ID = ""
		if e.Type == "" {
			e.Type = core.EntryExpense
		}
		if e.Category == "" {
			e.Category = core.DefaultCategory
		}
		if e.PaidAt.IsZero() {
			e.PaidAt = today
		}
		if err := e.Validate(); err != nil {
			s.fail(w, r, applog.OpCreate, fmt.Errorf("record %d: %w", i, err))
			return
		}
	}

	res, err := s.store.Create(r.Context(), expenses)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expenses created",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldCount, res.InsertedCount)
	s.respond(w, r, NewJSONResponse().Status(http.StatusCreated).Body(res))
}

// handleUpdateExpenses replaces full records by _id.
func (s *Server) handleUpdateExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := decodeExpenses(w, r, false)
	if err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}

	for i := range expenses {
		e := &expenses[i]
		sanitizeExpense(e)
		if e.ID == "" {
			s.fail(w, r, applog.OpUpdate, fmt.Errorf("%w: record %d has no _id", errValidation, i))
			return
		}
		if e.Type == "" {
			e.Type = core.EntryExpense
		}
		if err := e.Validate(); err != nil {
			s.fail(w, r, applog.OpUpdate, fmt.Errorf("record %d: %w", i, err))
			return
		}
	}

	res, err := s.store.Update(r.Context(), expenses)
	if err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}
	s.respond(w, r, NewJSONResponse().Body(res))
}

func (s *Server) handleDeleteExpenses(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, applog.OpDelete, err)
		return
	}
	ids := req.ids()
	if len(ids) == 0 {
		s.respond(w, r, BadRequestError("ids are required"))
		return
	}

	res, err := s.store.Delete(r.Context(), ids)
	if err != nil {
		s.fail(w, r, applog.OpDelete, err)
		return
	}
	s.respond(w, r, NewJSONResponse().Body(res))
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r.URL.Query())
	if err != nil {
		s.fail(w, r, applog.OpStat, err)
		return
	}

	stats, err := s.store.Statistics(r.Context(), c)
	if err != nil {
		s.fail(w, r, applog.OpStat, err)
		return
	}
	if stats == nil {
		stats = map[string]core.CategoryStat{}
	}
	s.respond(w, r, NewJSONResponse().Body(stats))
}
