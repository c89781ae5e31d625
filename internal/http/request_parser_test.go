package http

import (
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vslim/internal/core"
)

func TestSanitizeUtterance(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "ăn phở 50k", "ăn phở 50k"},
		{"tags", "<script>alert(1)</script>ăn phở", "alert(1) ăn phở"},
		{"control characters", "ăn\x00 phở\x07", "ăn phở"},
		{"whitespace", " \tăn\n\n phở  ", "ăn phở"},
		{"no escaping", `cà phê & "bánh"`, `cà phê & "bánh"`},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeUtterance(tt.input))
		})
	}
}

func TestSanitizeUtteranceCapsLength(t *testing.T) {
	got := sanitizeUtterance(strings.Repeat("ă", 800))
	assert.Equal(t, maxUtteranceRunes, utf8.RuneCountInString(got))
}

func TestParseCriteria(t *testing.T) {
	from := core.NewDate(2025, 6, 1)
	to := core.NewDate(2025, 6, 30)
	fifty := core.Money(50000)

	tests := []struct {
		name  string
		query url.Values
		want  core.Criteria
	}{
		{"empty", url.Values{}, core.Criteria{}},
		{
			name:  "all fields",
			query: url.Values{"user_id": {"u1"}, "description": {" phở "}, "amount": {"50000"}, "from": {"2025-06-01"}, "to": {"2025-06-30"}},
			want:  core.Criteria{UserID: "u1", Description: "phở", Amount: &fifty, From: &from, To: &to},
		},
		{"spoken amount", url.Values{"amount": {"50k"}}, core.Criteria{Amount: &fifty}},
		{"location", url.Values{"location": {"Hà Nội"}}, core.Criteria{Location: "Hà Nội"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCriteria(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCriteriaErrors(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		wantErr error
	}{
		{"amount", url.Values{"amount": {"nhiều"}}, core.ErrInvalidAmount},
		{"from", url.Values{"from": {"01/06/2025"}}, core.ErrInvalidDate},
		{"to", url.Values{"to": {"mai"}}, core.ErrInvalidDate},
		{"inverted", url.Values{"from": {"2025-06-30"}, "to": {"2025-06-01"}}, core.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCriteria(tt.query)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDeleteRequestIDs(t *testing.T) {
	req := deleteRequest{IDs: []string{"a", " b ", ""}, DeletedIDs: []string{"b", "c"}}
	assert.Equal(t, []string{"a", "b", "c"}, req.ids())
	assert.Empty(t, deleteRequest{}.ids())
}
