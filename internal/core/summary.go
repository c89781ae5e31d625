package core

import "strings"

type (
	// Criteria narrows a ledger query. Zero fields do not filter.
	Criteria struct {
		UserID      string
		Description string
		Location    string
		Amount      *Money
		From        *Date
		To          *Date
	}

	// CategoryStat aggregates one category over a date range.
	CategoryStat struct {
		TotalAmount Money `json:"totalAmount"`
		Count       int   `json:"count"`
	}

	AddResult struct {
		InsertedCount int      `json:"insertedCount"`
		InsertedIDs   []string `json:"insertedIds"`
	}

	UpdateResult struct {
		MatchedCount  int `json:"matchedCount"`
		ModifiedCount int `json:"modifiedCount"`
	}

	DeleteResult struct {
		DeletedCount int `json:"deletedCount"`
	}
)

// HasDateRange reports whether both range bounds are set.
func (c Criteria) HasDateRange() bool {
	return c.From != nil && c.To != nil
}

// Matches evaluates the criteria against one record in memory.
func (c Criteria) Matches(e Expense) bool {
	if c.UserID != "" && e.UserID != c.UserID {
		return false
	}
	desc := strings.ToLower(e.Description)
	if c.Description != "" && !strings.Contains(desc, strings.ToLower(c.Description)) {
		return false
	}
	if c.Location != "" && !strings.Contains(desc, strings.ToLower(c.Location)) {
		return false
	}
	if c.Amount != nil && e.Amount != *c.Amount {
		return false
	}
	if c.From != nil && e.PaidAt.Before(*c.From) {
		return false
	}
	if c.To != nil && e.PaidAt.After(*c.To) {
		return false
	}
	return true
}

// MergeStats adds src into dst per category.
func MergeStats(dst, src map[string]CategoryStat) map[string]CategoryStat {
	if dst == nil {
		dst = make(map[string]CategoryStat, len(src))
	}
	for k, v := range src {
		cur := dst[k]
		cur.TotalAmount += v.TotalAmount
		cur.Count += v.Count
		dst[k] = cur
	}
	return dst
}
