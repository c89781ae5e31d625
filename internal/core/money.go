package core

import (
	"strconv"
	"strings"
)

// Money is an amount in whole đồng.
type Money int64

func (m Money) Validate() error {
	if m < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// String formats with dot thousand separators, e.g. 25.000đ.
func (m Money) String() string {
	n := int64(m)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "đ"
}
