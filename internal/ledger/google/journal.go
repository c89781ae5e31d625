// Package google appends ledger events to a Google Sheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"vslim/internal/ledger"
	"vslim/internal/log"
)

const defaultSheetName = "Journal"

var _ ledger.JournalWriter = (*Journal)(nil)

// Config selects the target spreadsheet and service account credentials.
// CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Journal writes one row per ledger event:
// occurred_at, op, id, user_id, type, paid_at, description, amount, category.
type Journal struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

// New builds a journal authenticated with the configured service account.
// Extra options are appended after the credentials.
func New(ctx context.Context, cfg Config, logger *log.Logger, opts ...option.ClientOption) (*Journal, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if len(opts) == 0 {
		creds, err := credentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []option.ClientOption{
			option.WithCredentialsJSON(creds),
			option.WithScopes(gsheet.SpreadsheetsScope),
		}
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg, logger), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, cfg Config, logger *log.Logger) *Journal {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = defaultSheetName
	}
	return &Journal{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheet:         sheet,
		logger:        logger.WithComponent(log.ComponentJournal),
	}
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Row renders ev as a sheet row.
func Row(ev ledger.Event) []any {
	e := ev.Expense
	return []any{
		ev.OccurredAt.UTC().Format(time.RFC3339),
		string(ev.Op),
		e.ID,
		e.UserID,
		string(e.Type),
		e.PaidAt.String(),
		e.Description,
		int64(e.Amount),
		e.Category,
	}
}

func (j *Journal) Append(ctx context.Context, ev ledger.Event) (string, error) {
	rng := fmt.Sprintf("%s!A:I", j.sheet)
	vr := &gsheet.ValueRange{Values: [][]any{Row(ev)}}

	resp, err := j.svc.Spreadsheets.Values.Append(j.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", j.sheet, err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	j.logger.InfoContext(ctx, "Ledger event journaled", "op", ev.Op, log.FieldExpenseID, ev.Expense.ID, "range", ref)
	return ref, nil
}
