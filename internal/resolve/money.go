package resolve

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var smallUnits = map[string]int64{
	"trăm": 100,
	"chục": 10,
	"mươi": 10,
}

var suffixMultipliers = map[string]int64{
	"k":     1_000,
	"ka":    1_000,
	"cá":    1_000,
	"ca":    1_000,
	"nghìn": 1_000,
	"ngàn":  1_000,
	"ngan":  1_000,
	"ng":    1_000,
	"tr":    1_000_000,
	"triệu": 1_000_000,
	"trieu": 1_000_000,
	"m":     1_000_000,
	"củ":    1_000_000,
	"tỷ":    1_000_000_000,
	"tỉ":    1_000_000_000,
	"ty":    1_000_000_000,
	"tỏi":   1_000_000_000,
	"b":     1_000_000_000,
}

// largeUnitOrder is the split order for the word parser: largest magnitude
// first, each split at its rightmost occurrence.
var largeUnitOrder = []struct {
	word string
	mult int64
}{
	{"tỷ", 1_000_000_000},
	{"tỉ", 1_000_000_000},
	{"b", 1_000_000_000},
	{"tỏi", 1_000_000_000},
	{"triệu", 1_000_000},
	{"tr", 1_000_000},
	{"m", 1_000_000},
	{"củ", 1_000_000},
	{"nghìn", 1_000},
	{"ngàn", 1_000},
	{"k", 1_000},
	{"ka", 1_000},
	{"cá", 1_000},
	{"ca", 1_000},
}

var currencyWords = map[string]bool{
	"đ":    true,
	"đồng": true,
	"vnd":  true,
	"vnđ":  true,
	"₫":    true,
}

// asciiToVietnamese restores diacritics on number and unit words typed
// without them.
var asciiToVietnamese = map[string]string{
	"ruoi":  "rưỡi",
	"le":    "lẻ",
	"mot":   "một",
	"moi":   "mười",
	"muoi":  "mười",
	"lam":   "lăm",
	"nam":   "năm",
	"bon":   "bốn",
	"tu":    "tư",
	"ty":    "tỷ",
	"ti":    "tỉ",
	"trieu": "triệu",
	"nghin": "nghìn",
	"ngan":  "ngàn",
	"toi":   "tỏi",
	"cu":    "củ",
	"sau":   "sáu",
	"bay":   "bảy",
	"tam":   "tám",
	"chin":  "chín",
	"chuc":  "chục",
	"tram":  "trăm",
	"ca":    "cá",
}

const bareSmallIntLimit = 999

var (
	attachedCurrencyRe = regexp.MustCompile(`(\d)(vnđ|vnd|đồng|đ)`)
	halfUnitRe         = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(tỷ|tỉ|triệu|tr|nghìn|ngàn|k|ka|cá|ca|tỏi|củ)\s*rưỡi\b`)
	unitTailRe         = regexp.MustCompile(`(?P<num>\d+(?:[.,]\d+)?)\s*(?P<unit>tỷ|tỉ|triệu|tr|nghìn|ngàn|k|ka|cá|ca|tỏi|m|b)\s*(?P<tail>\d+)\b|(?P<num2>\d+(?:[.,]\d+)?)(?P<unit2>tỷ|tỉ|triệu|tr|nghìn|ngàn|k|ka|cá|ca|tỏi|m|b)(?P<tail2>\d+)`)
	unitSuffixRe       = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(k|ka|cá|ca|nghìn|ngan|ngàn|ng|tr|triệu|trieu|tỷ|tỉ|ty|tỏi|củ|b|m)(?:\b|\s|$)`)
	bareNumberRe       = regexp.MustCompile(`^\s*([+-]?\d+(?:[.,]\d{1,2})?)\s*$`)
	groupedNumberRe    = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
)

// Amount resolves a money expression to whole đồng.
//
//	Amount("300k")           -> 300000
//	Amount("2 triệu 500")    -> 2500000
//	Amount("50")             -> 50000 (bare small integers are thousands)
//	Amount("một triệu rưỡi") -> 1500000
func Amount(text string) (int64, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}
	s := normalizeMoneyText(text)

	total, s := extractHalfUnits(s)

	v, s := extractUnitTails(s)
	total = addAmount(total, v)

	v, s = extractUnitSuffixes(s)
	total = addAmount(total, v)

	if groupedNumberRe.MatchString(strings.TrimSpace(s)) {
		s = strings.ReplaceAll(s, ".", "")
	}
	if m := bareNumberRe.FindStringSubmatch(s); m != nil {
		f := toFloat(m[1])
		if f == math.Trunc(f) && math.Abs(f) <= bareSmallIntLimit {
			f *= 1000
		}
		return resolved(jsRound(float64(total) + f))
	}

	words, hasLarge := parseWordAmount(s)
	if words > 0 {
		if !hasLarge && words <= bareSmallIntLimit {
			words *= 1000
		}
		return resolved(addAmount(total, words))
	}
	if total > 0 {
		return resolved(total)
	}
	return 0, false
}

func normalizeMoneyText(text string) string {
	s := strings.ToLower(text)
	s = strings.ReplaceAll(s, "₫", " đ ")
	s = attachedCurrencyRe.ReplaceAllString(s, "$1 $2")
	tokens := strings.Fields(s)
	out := tokens[:0]
	for _, t := range tokens {
		if vi, ok := asciiToVietnamese[t]; ok {
			t = vi
		}
		if currencyWords[t] {
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, " ")
}

// extractHalfUnits handles "<n> <unit> rưỡi": the numeric form anywhere,
// then the first worded form ("một triệu rưỡi").
func extractHalfUnits(s string) (int64, string) {
	var total int64
	s = replaceMatches(halfUnitRe, s, func(g []string) {
		mult := unitMultiplier(g[2])
		total = addAmount(total, jsRound(toFloat(g[1])*float64(mult)+0.5*float64(mult)))
	})

	tokens := strings.Fields(s)
	for i := 0; i < len(tokens)-1; i++ {
		if tokens[i+1] != "rưỡi" || !isHalfUnitToken(tokens[i]) {
			continue
		}
		mult := unitMultiplier(tokens[i])
		j := i - 1
		for j >= 0 && isNumberToken(tokens[j]) {
			j--
		}
		numTokens := tokens[j+1 : i]
		var base int64
		switch {
		case len(numTokens) == 0:
			base = 1
		case len(numTokens) == 1 && isDigits(numTokens[0]):
			base, _ = strconv.ParseInt(numTokens[0], 10, 64)
		default:
			base = parseSmallSegment(numTokens)
		}
		total = addAmount(total, jsRound(float64(base)*float64(mult)+0.5*float64(mult)))
		residual := append(append([]string{}, tokens[:j+1]...), tokens[i+2:]...)
		return total, strings.Join(residual, " ")
	}
	return total, strings.TrimSpace(s)
}

func isHalfUnitToken(t string) bool {
	switch t {
	case "tỷ", "tỉ", "triệu", "tr", "nghìn", "ngàn", "k", "ka", "cá", "ca", "tỏi", "củ":
		return true
	}
	return false
}

func isNumberToken(t string) bool {
	if isDigits(t) {
		return true
	}
	if _, ok := digitWords[t]; ok {
		return true
	}
	_, ok := smallUnits[t]
	return ok
}

// extractUnitTails handles "2tr500" and "2 triệu 5". A multi-digit tail
// counts in thousandths of the unit, a single digit in tenths.
func extractUnitTails(s string) (int64, string) {
	var total int64
	names := unitTailRe.SubexpNames()
	residual := replaceMatches(unitTailRe, s, func(g []string) {
		var num, unit, tail string
		for i, name := range names {
			if i == 0 || g[i] == "" {
				continue
			}
			switch name {
			case "num", "num2":
				num = g[i]
			case "unit", "unit2":
				unit = g[i]
			case "tail", "tail2":
				tail = g[i]
			}
		}
		mult := unitMultiplier(unit)
		t, _ := strconv.ParseInt(tail, 10, 64)
		tailMult := float64(mult) / 10
		if len(strconv.FormatInt(t, 10)) > 1 {
			tailMult = float64(mult) / 1000
		}
		total = addAmount(total, jsRound(toFloat(num)*float64(mult)+tailMult*float64(t)))
	})
	return total, residual
}

func extractUnitSuffixes(s string) (int64, string) {
	var total int64
	residual := replaceMatches(unitSuffixRe, s, func(g []string) {
		total = addAmount(total, jsRound(toFloat(g[1])*float64(unitMultiplier(g[2]))))
	})
	return total, residual
}

// replaceMatches calls fn with every match followed by its capture groups,
// cuts the matches out and returns the trimmed residual.
func replaceMatches(re *regexp.Regexp, s string, fn func(groups []string)) string {
	var b strings.Builder
	last := 0
	for _, idx := range re.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(s[last:idx[0]])
		groups := make([]string, 0, len(idx)/2)
		for k := 2; k < len(idx); k += 2 {
			if idx[k] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, s[idx[k]:idx[k+1]])
		}
		fn(append([]string{s[idx[0]:idx[1]]}, groups...))
		last = idx[1]
	}
	b.WriteString(s[last:])
	return strings.TrimSpace(b.String())
}

func unitMultiplier(unit string) int64 {
	if m, ok := suffixMultipliers[unit]; ok {
		return m
	}
	return 1
}

// parseWordAmount parses fully worded amounts such as "sáu mươi lăm ngàn".
func parseWordAmount(s string) (int64, bool) {
	words := strings.Fields(s)
	if len(words) == 0 {
		return 0, false
	}
	hasLarge := false
	for _, w := range words {
		if isLargeUnitWord(w) {
			hasLarge = true
			break
		}
	}

	type segment struct {
		words []string
		mult  int64
	}
	var segs []segment
	rest := words
	for _, u := range largeUnitOrder {
		idx := lastIndex(rest, u.word)
		if idx < 0 {
			continue
		}
		segs = append(segs, segment{words: rest[:idx], mult: u.mult})
		rest = rest[idx+1:]
	}
	if len(rest) > 0 {
		segs = append(segs, segment{words: rest, mult: 1})
	}

	var total int64
	skipLast := false
	// "hai triệu năm": a lone trailing digit is tenths of the unit before it
	if n := len(segs); n >= 2 && segs[n-1].mult == 1 && len(segs[n-1].words) == 1 && segs[n-2].mult >= 1000 {
		if d, ok := singleDigit(segs[n-1].words[0]); ok {
			total += jsRound(float64(segs[n-2].mult) / 10 * float64(d))
			skipLast = true
		}
	}
	for i, seg := range segs {
		if skipLast && i == len(segs)-1 {
			continue
		}
		total = addAmount(total, jsRound(float64(parseSmallSegment(seg.words))*float64(seg.mult)))
	}
	return total, hasLarge
}

func isLargeUnitWord(w string) bool {
	switch w {
	case "tỷ", "tỉ", "triệu", "tr", "nghìn", "ngàn", "k", "ka", "cá", "ca", "tỏi", "m", "b", "củ":
		return true
	}
	return false
}

func singleDigit(tok string) (int64, bool) {
	if v, ok := digitWords[tok]; ok && v <= 9 {
		return v, true
	}
	if isDigits(tok) {
		v, err := strconv.ParseInt(tok, 10, 64)
		if err == nil && v <= 9 {
			return v, true
		}
	}
	return 0, false
}

// parseSmallSegment evaluates a sub-thousand worded number: digit words,
// trăm/chục/mươi multipliers, rưỡi/nửa as half the last unit, and the
// clipped tens form "hai tư" = 24.
func parseSmallSegment(words []string) int64 {
	var value, current int64
	lastUnit := int64(1)
	for i := 0; i < len(words); i++ {
		w := words[i]
		if i+1 < len(words) {
			first, ok1 := digitWords[w]
			second, ok2 := digitWords[words[i+1]]
			if ok1 && ok2 && first >= 1 && first <= 9 && second <= 9 {
				current += first*10 + second
				i++
				continue
			}
		}
		if v, ok := digitWords[w]; ok {
			current += v
			continue
		}
		if isDigits(w) {
			v, _ := strconv.ParseInt(w, 10, 64)
			current += v
			continue
		}
		if unit, ok := smallUnits[w]; ok {
			if current == 0 {
				current = 1
			}
			current *= unit
			value += current
			lastUnit = unit
			current = 0
			continue
		}
		if w == "rưỡi" || w == "nửa" {
			value += jsRound(0.5 * float64(lastUnit))
		}
	}
	return value + current
}

func lastIndex(words []string, w string) int {
	for i := len(words) - 1; i >= 0; i-- {
		if words[i] == w {
			return i
		}
	}
	return -1
}

func toFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	return f
}

// jsRound rounds half up, matching how amounts were always rounded.
// Values outside the int64 range saturate.
func jsRound(f float64) int64 {
	switch r := math.Floor(f + 0.5); {
	case r >= maxAmount:
		return math.MaxInt64
	case r <= -maxAmount:
		return math.MinInt64
	default:
		return int64(r)
	}
}

// maxAmount is 2^63, the first float64 past the int64 range.
const maxAmount = float64(math.MaxInt64)

func saturated(v int64) bool {
	return v == math.MaxInt64 || v == math.MinInt64
}

// addAmount adds saturating at the int64 bounds.
func addAmount(a, b int64) int64 {
	if saturated(a) {
		return a
	}
	if saturated(b) {
		return b
	}
	sum := a + b
	switch {
	case b > 0 && sum < a:
		return math.MaxInt64
	case b < 0 && sum > a:
		return math.MinInt64
	}
	return sum
}

// resolved rejects amounts that overflowed while being summed.
func resolved(v int64) (int64, bool) {
	if saturated(v) {
		return 0, false
	}
	return v, true
}
