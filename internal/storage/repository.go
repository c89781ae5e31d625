// Package storage is the SQLite ledger store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vslim/internal/core"
	"vslim/internal/log"
)

const timestampLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	logger = logger.WithComponent(log.ComponentStorage)
	version, err := Migrate(dbPath)
	if err != nil {
		return nil, err
	}
	logger.Info("Ledger schema ready", "db_path", dbPath, "schema_version", version)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY under concurrent turns
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database answers.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const columns = "id, user_id, type, description, amount, category, paid_at, created_at, modified_at"

func (r *SQLiteRepository) Create(ctx context.Context, expenses []core.Expense) (core.AddResult, error) {
	for _, e := range expenses {
		if err := e.Validate(); err != nil {
			return core.AddResult{}, err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.AddResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO expenses ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return core.AddResult{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := r.now().UTC().Format(timestampLayout)
	res := core.AddResult{InsertedIDs: make([]string, 0, len(expenses))}
	for _, e := range expenses {
		id := uuid.NewString()
		typ := e.Type
		if typ == "" {
			typ = core.EntryExpense
		}
		if _, err := stmt.ExecContext(ctx, id, e.UserID, string(typ), e.Description, int64(e.Amount),
			e.Category, e.PaidAt.String(), now, now); err != nil {
			return core.AddResult{}, fmt.Errorf("insert expense: %w", err)
		}
		res.InsertedIDs = append(res.InsertedIDs, id)
	}
	if err := tx.Commit(); err != nil {
		return core.AddResult{}, fmt.Errorf("commit insert: %w", err)
	}
	res.InsertedCount = len(res.InsertedIDs)

	r.logger.InfoContext(ctx, "Expenses saved to SQLite", log.FieldOperation, log.OpCreate, log.FieldCount, res.InsertedCount)
	return res, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+columns+" FROM expenses WHERE id = ?", id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	return e, nil
}

// where renders the SQL-filterable part of c. Description and location
// matching is case-insensitive over Unicode, which SQLite's lower() is not,
// so those are applied in Go by the caller.
func where(c core.Criteria) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if c.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, c.UserID)
	}
	if c.Amount != nil {
		clauses = append(clauses, "amount = ?")
		args = append(args, int64(*c.Amount))
	}
	if c.From != nil {
		clauses = append(clauses, "paid_at >= ?")
		args = append(args, c.From.String())
	}
	if c.To != nil {
		clauses = append(clauses, "paid_at <= ?")
		args = append(args, c.To.String())
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *SQLiteRepository) Find(ctx context.Context, c core.Criteria) ([]core.Expense, error) {
	cond, args := where(c)
	rows, err := r.db.QueryContext(ctx, "SELECT "+columns+" FROM expenses"+cond+" ORDER BY paid_at, created_at, id", args...)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, expenses []core.Expense) (core.UpdateResult, error) {
	for _, e := range expenses {
		if err := e.Validate(); err != nil {
			return core.UpdateResult{}, err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.UpdateResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := r.now().UTC().Format(timestampLayout)
	var res core.UpdateResult
	for _, e := range expenses {
		cur, err := scanExpense(tx.QueryRowContext(ctx, "SELECT "+columns+" FROM expenses WHERE id = ?", e.ID))
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return core.UpdateResult{}, fmt.Errorf("load expense %s: %w", e.ID, err)
		}
		res.MatchedCount++
		if core.SameContent(e, cur) {
			continue
		}
		typ := e.Type
		if typ == "" {
			typ = core.EntryExpense
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE expenses SET user_id = ?, type = ?, description = ?, amount = ?, category = ?, paid_at = ?, modified_at = ?
			 WHERE id = ?`,
			e.UserID, string(typ), e.Description, int64(e.Amount), e.Category, e.PaidAt.String(), now, e.ID); err != nil {
			return core.UpdateResult{}, fmt.Errorf("update expense %s: %w", e.ID, err)
		}
		res.ModifiedCount++
	}
	if err := tx.Commit(); err != nil {
		return core.UpdateResult{}, fmt.Errorf("commit update: %w", err)
	}

	r.logger.InfoContext(ctx, "Expenses updated in SQLite", log.FieldOperation, log.OpUpdate,
		"matched", res.MatchedCount, "modified", res.ModifiedCount)
	return res, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, ids []string) (core.DeleteResult, error) {
	if len(ids) == 0 {
		return core.DeleteResult{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return core.DeleteResult{}, fmt.Errorf("delete expenses: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return core.DeleteResult{}, fmt.Errorf("delete expenses: %w", err)
	}

	r.logger.InfoContext(ctx, "Expenses deleted from SQLite", log.FieldOperation, log.OpDelete, log.FieldCount, n)
	return core.DeleteResult{DeletedCount: int(n)}, nil
}

func (r *SQLiteRepository) Statistics(ctx context.Context, c core.Criteria) (map[string]core.CategoryStat, error) {
	stats := make(map[string]core.CategoryStat)

	if c.Description != "" || c.Location != "" {
		found, err := r.Find(ctx, c)
		if err != nil {
			return nil, err
		}
		for _, e := range found {
			st := stats[e.Category]
			st.TotalAmount += e.Amount
			st.Count++
			stats[e.Category] = st
		}
		return stats, nil
	}

	cond, args := where(c)
	rows, err := r.db.QueryContext(ctx,
		"SELECT category, COALESCE(SUM(amount), 0), COUNT(*) FROM expenses"+cond+" GROUP BY category", args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category string
			total    int64
			count    int
		)
		if err := rows.Scan(&category, &total, &count); err != nil {
			return nil, fmt.Errorf("scan statistics: %w", err)
		}
		stats[category] = core.CategoryStat{TotalAmount: core.Money(total), Count: count}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statistics: %w", err)
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e                           core.Expense
		typ, paidAt, created, moded string
		amount                      int64
	)
	if err := s.Scan(&e.ID, &e.UserID, &typ, &e.Description, &amount, &e.Category, &paidAt, &created, &moded); err != nil {
		return core.Expense{}, err
	}
	e.Type = core.EntryType(typ)
	e.Amount = core.Money(amount)

	var err error
	if e.PaidAt, err = core.ParseISODate(paidAt); err != nil {
		return core.Expense{}, fmt.Errorf("paid_at of %s: %w", e.ID, err)
	}
	if e.CreatedAt, err = time.Parse(timestampLayout, created); err != nil {
		return core.Expense{}, fmt.Errorf("created_at of %s: %w", e.ID, err)
	}
	if e.ModifiedAt, err = time.Parse(timestampLayout, moded); err != nil {
		return core.Expense{}, fmt.Errorf("modified_at of %s: %w", e.ID, err)
	}
	return e, nil
}
