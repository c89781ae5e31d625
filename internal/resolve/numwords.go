// Package resolve turns colloquial Vietnamese date and money expressions
// into typed values. Every entry point is pure and fail-soft: unparseable
// input yields ok=false, never an error.
package resolve

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// digitWords maps single number words to their value. Money parsing uses
// the full table; "năm" and "mốt" are ambiguous in dates and are left out
// of the date phrase table below.
var digitWords = map[string]int64{
	"không": 0,
	"linh":  0,
	"lẻ":    0,
	"một":   1,
	"mốt":   1,
	"hai":   2,
	"ba":    3,
	"bốn":   4,
	"tư":    4,
	"năm":   5,
	"lăm":   5,
	"nhăm":  5,
	"sáu":   6,
	"bảy":   7,
	"bãy":   7,
	"tám":   8,
	"chín":  9,
	"mười":  10,
}

type numberPhrase struct {
	words []string
	value int
}

// numberPhrases is ordered longest first so compounds win over their parts.
var numberPhrases = buildNumberPhrases()

func buildNumberPhrases() []numberPhrase {
	units := map[string]int{
		"một":  1,
		"hai":  2,
		"ba":   3,
		"bốn":  4,
		"tư":   4,
		"lăm":  5,
		"sáu":  6,
		"bảy":  7,
		"tám":  8,
		"chín": 9,
	}
	set := map[string]int{"mười": 10}
	for w, v := range units {
		set[w] = v
	}
	// 11-19
	for w, v := range units {
		if w == "tư" {
			continue
		}
		set["mười "+w] = 10 + v
	}
	set["mười nhăm"] = 15
	// 20-39, with the clipped forms "hai mốt", "ba lăm"
	for tensWord, tens := range map[string]int{"hai": 20, "ba": 30} {
		set[tensWord+" mươi"] = tens
		for w, v := range units {
			ones := w
			if w == "một" {
				ones = "mốt"
			}
			set[tensWord+" mươi "+ones] = tens + v
			set[tensWord+" "+ones] = tens + v
		}
		set[tensWord+" mươi nhăm"] = tens + 5
		set[tensWord+" nhăm"] = tens + 5
	}

	out := make([]numberPhrase, 0, len(set))
	for text, v := range set {
		out = append(out, numberPhrase{words: strings.Fields(text), value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].words) != len(out[j].words) {
			return len(out[i].words) > len(out[j].words)
		}
		return strings.Join(out[i].words, " ") < strings.Join(out[j].words, " ")
	})
	return out
}

var splitDigitsRe = regexp.MustCompile(`(\d)\s+(\d)`)

// NormalizeNumberWords rewrites Vietnamese number words into digits,
// longest phrase first, then glues digit runs split by spaces ("2 5" -> "25").
func NormalizeNumberWords(text string) string {
	tokens := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		matched := false
		for _, p := range numberPhrases {
			if hasWordsAt(tokens, i, p.words) {
				out = append(out, strconv.Itoa(p.value))
				i += len(p.words)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, tokens[i])
			i++
		}
	}
	s := strings.Join(out, " ")
	for {
		next := splitDigitsRe.ReplaceAllString(s, "$1$2")
		if next == s {
			return s
		}
		s = next
	}
}

func hasWordsAt(tokens []string, i int, words []string) bool {
	if i+len(words) > len(tokens) {
		return false
	}
	for k, w := range words {
		if tokens[i+k] != w {
			return false
		}
	}
	return true
}

// rewriteRule replaces a whole-word phrase. An empty to deletes it.
type rewriteRule struct {
	from string
	to   string
}

// rewriteWords applies rules in order on word boundaries and returns the
// text re-joined with single spaces.
func rewriteWords(text string, rules []rewriteRule) string {
	tokens := strings.Fields(text)
	for _, r := range rules {
		from := strings.Fields(r.from)
		to := strings.Fields(r.to)
		out := make([]string, 0, len(tokens))
		for i := 0; i < len(tokens); {
			if hasWordsAt(tokens, i, from) {
				out = append(out, to...)
				i += len(from)
				continue
			}
			out = append(out, tokens[i])
			i++
		}
		tokens = out
	}
	return strings.Join(tokens, " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
