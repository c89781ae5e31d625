package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"vslim/internal/core"
	"vslim/internal/resolve"
)

const maxBodyBytes = 1 << 20

// readBody reads at most maxBodyBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", errValidation, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: read body: %v", errValidation, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", errValidation)
	}
	return body, nil
}

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", errValidation, err)
	}
	return nil
}

// decodeExpenses accepts either a JSON array of records or a single record.
func decodeExpenses(w http.ResponseWriter, r *http.Request, allowSingle bool) ([]core.Expense, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}

	if body[0] != '[' {
		if !allowSingle {
			return nil, fmt.Errorf("%w: request body must be an array", errValidation)
		}
		var one core.Expense
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, fmt.Errorf("%w: malformed JSON: %v", errValidation, err)
		}
		return []core.Expense{one}, nil
	}

	var many []core.Expense
	if err := json.Unmarshal(body, &many); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", errValidation, err)
	}
	if len(many) == 0 {
		return nil, fmt.Errorf("%w: no records", errValidation)
	}
	return many, nil
}

// ParseCriteria builds ledger criteria from user_id, description, amount,
// from and to query parameters. Amounts accept spoken forms ("50k") and
// dates must be yyyy-mm-dd.
func ParseCriteria(query url.Values) (core.Criteria, error) {
	c := core.Criteria{
		UserID:      sanitizeText(query.Get("user_id"), maxFieldRunes),
		Description: sanitizeText(query.Get("description"), maxFieldRunes),
		Location:    sanitizeText(query.Get("location"), maxFieldRunes),
	}

	if raw := strings.TrimSpace(query.Get("amount")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			var ok bool
			if n, ok = resolve.Amount(raw); !ok {
				return core.Criteria{}, fmt.Errorf("%w: amount %q", core.ErrInvalidAmount, raw)
			}
		}
		m := core.Money(n)
		c.Amount = &m
	}

	for _, p := range []struct {
		name string
		dst  **core.Date
	}{{"from", &c.From}, {"to", &c.To}} {
		raw := strings.TrimSpace(query.Get(p.name))
		if raw == "" {
			continue
		}
		d, err := core.ParseISODate(raw)
		if err != nil {
			return core.Criteria{}, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dst = &d
	}

	if c.From != nil && c.To != nil && c.From.After(*c.To) {
		return core.Criteria{}, fmt.Errorf("%w: from is after to", core.ErrInvalidDate)
	}
	return c, nil
}

// textRequest is the body of the resolver test endpoints.
type textRequest struct {
	Text string `json:"text"`
}

// chatRequest is the body of POST /v1/chat.
type chatRequest struct {
	Utterance string `json:"utterance"`
}

// deleteRequest accepts ids or the legacy deleted_ids field.
type deleteRequest struct {
	IDs        []string `json:"ids"`
	DeletedIDs []string `json:"deleted_ids"`
}

func (d deleteRequest) ids() []string {
	seen := make(map[string]struct{}, len(d.IDs)+len(d.DeletedIDs))
	var out []string
	for _, id := range append(append([]string(nil), d.IDs...), d.DeletedIDs...) {
		id = sanitizeText(id, maxFieldRunes)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
