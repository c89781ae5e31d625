package core

import (
	"fmt"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

// Date is a calendar day stored at UTC midnight.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day. Out-of-range parts
// are normalized the way time.Date does.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// SafeDate is NewDate that rejects days or months time.Date would roll over.
func SafeDate(year, month, day int) (Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}
	d := NewDate(year, month, day)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return Date{}, false
	}
	return d, true
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseISODate parses yyyy-mm-dd.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(isoLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: zero", ErrInvalidDate)
	}
	return nil
}

func (d Date) Day() int   { return d.Time.Day() }
func (d Date) Month() int { return int(d.Time.Month()) }
func (d Date) Year() int  { return d.Time.Year() }

// Weekday returns 1 for Monday through 7 for Sunday.
func (d Date) Weekday() int {
	wd := int(d.Time.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonths moves by whole months and clamps the day to the target
// month's length, so Jan 31 + 1 month is the last day of February.
func (d Date) AddMonths(n int) Date {
	first := NewDate(d.Year(), d.Month()+n, 1)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// String returns the ISO form, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(isoLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// accept full timestamps too
	if len(s) > len(isoLayout) {
		s = s[:len(isoLayout)]
	}
	parsed, err := ParseISODate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween lists every day from start to end inclusive.
func DaysBetween(start, end Date) []Date {
	var days []Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
