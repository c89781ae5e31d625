package http

import (
	"regexp"
	"strings"
	"unicode"

	"vslim/internal/core"
)

const (
	maxUtteranceRunes = 500
	maxFieldRunes     = 200
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// sanitizeText strips HTML tags and control characters, collapses
// whitespace and caps the result at limit runes. It does not HTML-escape:
// the output is data, never markup.
func sanitizeText(s string, limit int) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	if runes := []rune(s); len(runes) > limit {
		s = strings.TrimSpace(string(runes[:limit]))
	}
	return s
}

func sanitizeUtterance(s string) string {
	return sanitizeText(s, maxUtteranceRunes)
}

// sanitizeExpense cleans the free-text fields of a record supplied over
// the API. Descriptions keep the longer cap so that validation, not
// truncation, rejects oversized ones.
func sanitizeExpense(e *core.Expense) {
	e.ID = sanitizeText(e.ID, maxFieldRunes)
	e.UserID = sanitizeText(e.UserID, maxFieldRunes)
	e.Description = sanitizeText(e.Description, maxUtteranceRunes)
	e.Category = sanitizeText(e.Category, maxFieldRunes)
}
