package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	IntentNone          Intent = "none"
	IntentAddExpense    Intent = "add_expense"
	IntentUpdateExpense Intent = "update_expense"
	IntentDeleteExpense Intent = "delete_expense"
	IntentSearchExpense Intent = "search_expense"
	IntentStatExpense   Intent = "stat_expense"
)

const (
	EntryExpense EntryType = "expense"
	EntryIncome  EntryType = "income"
)

// DefaultCategory is assigned when the classifier cannot resolve a description.
const DefaultCategory = "none"

type (
	// Intent is the action a user asks for.
	Intent string

	EntryType string

	// Entity is one mention extracted from an utterance.
	Entity struct {
		Key    string `json:"key"`
		Text   string `json:"text"`
		Intent Intent `json:"intent"`
	}

	// Utterance is what the extraction service returns for one raw message.
	Utterance struct {
		Intents    []Intent `json:"intents"`
		Entities   []Entity `json:"entities"`
		Confidence float64  `json:"confidence"`
	}

	// Expense is one ledger record.
	Expense struct {
		ID          string    `json:"_id"`
		UserID      string    `json:"user_id"`
		Type        EntryType `json:"type"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		PaidAt      Date      `json:"paid_at"`
		CreatedAt   time.Time `json:"created_at"`
		ModifiedAt  time.Time `json:"modified_at"`
	}
)

var (
	ErrInvalidIntent    = errors.New("invalid intent")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyUser        = errors.New("empty user id")
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrUnknownSlot      = errors.New("unknown slot")
)

var intents = []Intent{
	IntentNone,
	IntentAddExpense,
	IntentUpdateExpense,
	IntentDeleteExpense,
	IntentSearchExpense,
	IntentStatExpense,
}

// Intents returns every known intent, none first.
func Intents() []Intent {
	out := make([]Intent, len(intents))
	copy(out, intents)
	return out
}

func (i Intent) IsValid() bool {
	for _, known := range intents {
		if i == known {
			return true
		}
	}
	return false
}

// IsAction reports whether the intent maps to a ledger operation.
func (i Intent) IsAction() bool {
	return i != IntentNone && i.IsValid()
}

func (i Intent) String() string { return string(i) }

func (t EntryType) IsValid() bool {
	return t == EntryExpense || t == EntryIncome
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUser
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.PaidAt.Validate(); err != nil {
		return err
	}
	if e.Type != "" && !e.Type.IsValid() {
		return errors.New("invalid entry type")
	}
	return nil
}

// SameContent reports whether a and b hold the same user-visible data,
// ignoring bookkeeping timestamps.
func SameContent(a, b Expense) bool {
	return a.ID == b.ID &&
		a.UserID == b.UserID &&
		a.Type == b.Type &&
		a.Description == b.Description &&
		a.Amount == b.Amount &&
		a.Category == b.Category &&
		a.PaidAt.Equal(b.PaidAt)
}
