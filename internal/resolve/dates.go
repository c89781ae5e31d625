package resolve

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"vslim/internal/core"
)

// Span is an inclusive range of calendar days.
type Span struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

// Days lists every day in the span.
func (s Span) Days() []core.Date {
	return core.DaysBetween(s.Start, s.End)
}

// Today is the current local calendar day.
func Today() core.Date {
	return core.DateOf(time.Now())
}

// Range resolves a date or date-range expression relative to today.
func Range(text string) (Span, bool) {
	return RangeAt(text, Today())
}

// Date resolves a single-day expression relative to today.
func Date(text string) (core.Date, bool) {
	return DateAt(text, Today())
}

// abbreviations expand shorthand in both single dates and ranges. The
// tới and rồi rewrites stay date-only since window phrases key on them.
var abbreviations = []rewriteRule{
	{"hnay", "hôm nay"},
	{"hqua", "hôm qua"},
	{"hkia", "hôm kia"},
	{"nmai", "ngày mai"},
	{"thg", "tháng"},
	{"ngoái", "trước"},
	{"trc", "trước"},
	{"mùng", ""},
	{"mồng", ""},
}

var dateRewrites = append(append([]rewriteRule{}, abbreviations...),
	rewriteRule{"tới", "sau"},
	rewriteRule{"vừa rồi", "vừa qua"},
	rewriteRule{"rồi", "trước"},
)

var rangeRewrites = append(append([]rewriteRule{}, abbreviations...),
	rewriteRule{"h", "nay"},
	rewriteRule{"giờ", "nay"},
	rewriteRule{"khoảng", ""},
	rewriteRule{"trong", ""},
	rewriteRule{"hãy", ""},
	rewriteRule{"cả", ""},
)

type dateMatcher func(text string, today core.Date) (core.Date, bool)

// dateMatchers are tried in order; the first hit wins.
var dateMatchers = []dateMatcher{
	matchISODate,
	matchDayWord,
	matchWeekday,
	matchRelativeMonthYear,
	matchDayOffset,
	matchNumericDate,
}

// DateAt is Date with an explicit "today".
func DateAt(text string, today core.Date) (core.Date, bool) {
	text = normalizeDateText(text)
	if text == "" {
		return core.Date{}, false
	}
	for _, match := range dateMatchers {
		if d, ok := match(text, today); ok {
			return d, true
		}
	}
	return core.Date{}, false
}

func normalizeDateText(text string) string {
	return rewriteWords(NormalizeNumberWords(strings.TrimSpace(text)), dateRewrites)
}

var isoDateRe = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)

func matchISODate(text string, _ core.Date) (core.Date, bool) {
	m := isoDateRe.FindStringSubmatch(text)
	if m == nil {
		return core.Date{}, false
	}
	return core.SafeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
}

var dayWords = map[string]int{
	"nay":          0,
	"hôm nay":      0,
	"mai":          1,
	"ngày mai":     1,
	"mốt":          2,
	"ngày kia":     2,
	"ngày mốt":     2,
	"hôm qua":      -1,
	"ngày hôm qua": -1,
	"hôm kia":      -2,
	"ngày hôm kia": -2,
}

func matchDayWord(text string, today core.Date) (core.Date, bool) {
	offset, ok := dayWords[text]
	if !ok {
		return core.Date{}, false
	}
	return today.AddDays(offset), true
}

var weekdayPrefixes = []struct {
	prefix  string
	weekday int
}{
	{"thứ 2", 1}, {"thứ hai", 1}, {"t2", 1},
	{"thứ 3", 2}, {"thứ ba", 2}, {"t3", 2},
	{"thứ 4", 3}, {"thứ tư", 3}, {"t4", 3},
	{"thứ 5", 4}, {"thứ năm", 4}, {"t5", 4},
	{"thứ 6", 5}, {"thứ sáu", 5}, {"t6", 5},
	{"thứ 7", 6}, {"thứ bảy", 6}, {"t7", 6},
	{"chủ nhật", 7}, {"cn", 7}, {"cnhat", 7},
}

// matchWeekday resolves "thứ 6", "cn tuần sau", "t2 tuần trước" and
// "thứ 5 vừa qua" against the current ISO week.
func matchWeekday(text string, today core.Date) (core.Date, bool) {
	for _, w := range weekdayPrefixes {
		if !strings.HasPrefix(text, w.prefix) {
			continue
		}
		delta := w.weekday - today.Weekday()
		switch {
		case strings.Contains(text, "tuần sau"):
			delta += 7
		case strings.Contains(text, "tuần trước"), strings.Contains(text, "tuần qua"):
			delta -= 7
		case strings.Contains(text, "vừa qua"):
			if delta >= 0 {
				delta -= 7
			}
		}
		return today.AddDays(delta), true
	}
	return core.Date{}, false
}

var (
	dayMonthNextYearRe = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2}) năm sau|(\d{1,2}) tháng (\d{1,2}) năm sau`)
	dayMonthLastYearRe = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2}) năm trước|(\d{1,2}) tháng (\d{1,2}) năm trước`)
	dayNextMonthRe     = regexp.MustCompile(`(ngày\s*)?(\d{1,2})([./-](\d{1,2}))?\s*tháng sau`)
	dayLastMonthRe     = regexp.MustCompile(`(ngày\s*)?(\d{1,2})([./-](\d{1,2}))? tháng trước`)
	dayNextYearRe      = regexp.MustCompile(`(ngày\s*)?(\d{1,2}) năm sau`)
	dayLastYearRe      = regexp.MustCompile(`(ngày\s*)?(\d{1,2}) năm trước`)
	dayOffsetRe        = regexp.MustCompile(`(\d+)\s+ngày\s+(sau|trước)`)
	fullDateRe         = regexp.MustCompile(`(ngày\s*)?(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})$|(ngày\s*)?(\d{1,2}) tháng (\d{1,2})[./-](\d{2,4})$`)
	looseFullDateRe    = regexp.MustCompile(`(ngày\s*)?(\d{1,2})[./-](\d{1,2})(\s*năm\s*)?(\d{2,4})|(ngày\s*)?(\d{1,2}) tháng (\d{1,2})(\s*năm\s*)?(\d{2,4})`)
	dayMonthRe         = regexp.MustCompile(`(ngày\s*)?(\d{1,2})[./-](\d{1,2})$`)
	dayMonthWordRe     = regexp.MustCompile(`(ngày\s*)?(\d{1,2}) tháng (\d{1,2})$`)
	bareDayRe          = regexp.MustCompile(`^(ngày\s*)?(\d{1,2})$`)
)

// matchRelativeMonthYear handles a day (and month) anchored to the next or
// previous month or year: "1/5 năm sau", "ngày 14 tháng sau", "10 năm trước".
func matchRelativeMonthYear(text string, today core.Date) (core.Date, bool) {
	if g := submatches(dayMonthNextYearRe, text, 2); g != nil {
		return core.SafeDate(today.Year()+1, atoi(g[1]), atoi(g[0]))
	}
	if g := submatches(dayMonthLastYearRe, text, 2); g != nil {
		return core.SafeDate(today.Year()-1, atoi(g[1]), atoi(g[0]))
	}
	if m := dayNextMonthRe.FindStringSubmatch(text); m != nil {
		next := today.AddMonths(1)
		return core.SafeDate(next.Year(), next.Month(), atoi(m[2]))
	}
	if m := dayLastMonthRe.FindStringSubmatch(text); m != nil {
		prev := today.AddMonths(-1)
		return core.SafeDate(prev.Year(), prev.Month(), atoi(m[2]))
	}
	if m := dayNextYearRe.FindStringSubmatch(text); m != nil {
		next := today.AddYears(1)
		return core.SafeDate(next.Year(), next.Month(), atoi(m[2]))
	}
	if m := dayLastYearRe.FindStringSubmatch(text); m != nil {
		prev := today.AddYears(-1)
		return core.SafeDate(prev.Year(), prev.Month(), atoi(m[2]))
	}
	return core.Date{}, false
}

func matchDayOffset(text string, today core.Date) (core.Date, bool) {
	m := dayOffsetRe.FindStringSubmatch(text)
	if m == nil {
		return core.Date{}, false
	}
	n := atoi(m[1])
	if m[2] == "trước" {
		n = -n
	}
	return today.AddDays(n), true
}

// matchNumericDate handles dd/mm/yyyy, dd tháng mm năm yyyy, dd/mm and a
// bare day of the current month.
func matchNumericDate(text string, today core.Date) (core.Date, bool) {
	// day, month, year
	if g := submatches(fullDateRe, text, 4); g != nil {
		return core.SafeDate(pivotYear(atoi(g[3])), atoi(g[2]), atoi(g[1]))
	}
	if g := submatches(looseFullDateRe, text, 5); g != nil {
		return core.SafeDate(pivotYear(atoi(g[4])), atoi(g[2]), atoi(g[1]))
	}
	if m := dayMonthRe.FindStringSubmatch(text); m != nil {
		return core.SafeDate(today.Year(), atoi(m[3]), atoi(m[2]))
	}
	if m := dayMonthWordRe.FindStringSubmatch(text); m != nil {
		return core.SafeDate(today.Year(), atoi(m[3]), atoi(m[2]))
	}
	if m := bareDayRe.FindStringSubmatch(text); m != nil {
		return core.SafeDate(today.Year(), today.Month(), atoi(m[2]))
	}
	return core.Date{}, false
}

// pivotYear expands two-digit years: 00-49 to 20xx, 50-99 to 19xx.
func pivotYear(y int) int {
	if y >= 100 {
		return y
	}
	if y < 50 {
		return 2000 + y
	}
	return 1900 + y
}

// RangeAt is Range with an explicit "today".
func RangeAt(text string, today core.Date) (Span, bool) {
	text = normalizeRangeText(text)
	if text == "" {
		return Span{}, false
	}
	if s, ok := matchCountWindow(text, today); ok {
		return s, true
	}
	switch s, res := matchFromTo(text, today); res {
	case rangeMatched:
		return s, true
	case rangeRejected:
		return Span{}, false
	}
	if d, ok := DateAt(text, today); ok {
		return Span{Start: d, End: d}, true
	}
	return Span{}, false
}

func normalizeRangeText(text string) string {
	return rewriteWords(NormalizeNumberWords(strings.TrimSpace(text)), rangeRewrites)
}

var countWindowRe = regexp.MustCompile(`^(\d*)\s*(ngày|tuần|tháng|năm)\s+(tới|nay|qua|vừa qua|gần đây|vừa rồi|gần nhất)$`)

// matchCountWindow resolves "2 tuần tới", "3 ngày gần đây", "tháng qua".
// Future windows start today. Past windows end yesterday, except day
// counts with nay/gần đây/gần nhất which include today.
func matchCountWindow(text string, today core.Date) (Span, bool) {
	m := countWindowRe.FindStringSubmatch(text)
	if m == nil {
		return Span{}, false
	}
	n := 1
	if m[1] != "" {
		n = atoi(m[1])
	}
	unit, direction := m[2], m[3]
	if direction == "tới" {
		return Span{Start: today, End: shift(today, unit, n)}, true
	}
	if unit == "ngày" && (direction == "nay" || direction == "gần đây" || direction == "gần nhất") {
		return Span{Start: today.AddDays(-(n - 1)), End: today}, true
	}
	return Span{Start: shift(today, unit, -n), End: today.AddDays(-1)}, true
}

func shift(d core.Date, unit string, n int) core.Date {
	switch unit {
	case "tuần":
		return d.AddDays(7 * n)
	case "tháng":
		return d.AddMonths(n)
	case "năm":
		return d.AddYears(n)
	}
	return d.AddDays(n)
}

type rangeResult int

const (
	rangeNoMatch rangeResult = iota
	rangeMatched
	rangeRejected
)

var fromToRe = regexp.MustCompile(`^(từ)?\s*(.*?)\s*(tới|đến)\s*(.*)$`)

// matchFromTo resolves "[từ] X tới|đến Y". An empty side is today. A bare
// day number on the left borrows the right side's month and year; two bare
// numbers both fall in the current month. A reversed range is wrapped back
// a year or a month, and rejected when one side was filled in with today.
func matchFromTo(text string, today core.Date) (Span, rangeResult) {
	m := fromToRe.FindStringSubmatch(text)
	if m == nil {
		return Span{}, rangeNoMatch
	}
	left, right := strings.TrimSpace(m[2]), strings.TrimSpace(m[4])

	side := func(s string) (core.Date, bool) {
		if s == "" {
			return today, true
		}
		return DateAt(s, today)
	}
	end, endOK := side(right)
	start, startOK := side(left)

	if isDigits(left) && endOK {
		if start, startOK = core.SafeDate(end.Year(), end.Month(), atoi(left)); !startOK {
			return Span{}, rangeRejected
		}
	}
	if isDigits(left) && isDigits(right) {
		var ok1, ok2 bool
		start, ok1 = core.SafeDate(today.Year(), today.Month(), atoi(left))
		end, ok2 = core.SafeDate(today.Year(), today.Month(), atoi(right))
		if !ok1 || !ok2 {
			return Span{}, rangeRejected
		}
		startOK, endOK = true, true
	}

	defaulted := false
	switch {
	case !startOK && !endOK:
		return Span{}, rangeNoMatch
	case !endOK:
		end, defaulted = today, true
	case !startOK:
		start, defaulted = today, true
	}

	if start.After(end) {
		if defaulted {
			return Span{}, rangeRejected
		}
		switch {
		case start.Month() > end.Month():
			start = start.AddYears(-1)
		case start.Month() == end.Month() && start.Day() > end.Day():
			start = start.AddMonths(-1)
		}
	}
	return Span{Start: start, End: end}, rangeMatched
}

// submatches returns the first n capture groups of whichever branch of a
// two-branch pattern matched.
func submatches(re *regexp.Regexp, text string, n int) []string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	groups := m[1:]
	half := len(groups) / 2
	first, second := groups[:half], groups[half:]
	branch := first
	if !anySet(first) {
		branch = second
	}
	if len(branch) < n {
		return nil
	}
	return branch[:n]
}

func anySet(groups []string) bool {
	for _, g := range groups {
		if g != "" {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
