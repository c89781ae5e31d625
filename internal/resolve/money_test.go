package resolve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"300k", 300_000},
		{"300ka", 300_000},
		{"300 cá", 300_000},
		{"2 triệu 500", 2_500_000},
		{"2tr500", 2_500_000},
		{"2tr5", 2_500_000},
		{"2 triệu 300k", 2_300_000},
		{"50", 50_000},
		{"25000", 25_000},
		{"25.000", 25_000},
		{"25.000đ", 25_000},
		{"25k vnđ", 25_000},
		{"20", 20_000},
		{"1.5tr", 1_500_000},
		{"1,5tr", 1_500_000},
		{"2375k", 2_375_000},
		{"2 tỷ", 2_000_000_000},
		{"2 củ", 2_000_000},
		{"một triệu rưỡi", 1_500_000},
		{"1 triệu rưỡi", 1_500_000},
		{"1tr rưỡi", 1_500_000},
		{"hai triệu năm", 2_500_000},
		{"hai chục", 20_000},
		{"5 chục", 50_000},
		{"hai trăm", 200_000},
		{"chín trăm", 900_000},
		{"ba trăm nghìn", 300_000},
		{"sáu mươi lăm ngàn", 65_000},
		{"muoi lam ngan", 15_000},
		{"sau tram", 600_000},
		{"hai tư nghìn", 24_000},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := Amount(tc.in)
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAmountUnparseable(t *testing.T) {
	for _, in := range []string{
		"", "  ", "bánh mì", "đồng",
		"99999999999999999999",
		"99999999999999999999k",
		"9999999999 tỷ",
	} {
		_, ok := Amount(in)
		assert.False(t, ok, in)
	}
}

func TestAddAmountSaturates(t *testing.T) {
	assert.Equal(t, int64(3), addAmount(1, 2))
	assert.Equal(t, int64(math.MaxInt64), addAmount(math.MaxInt64-1, 2))
	assert.Equal(t, int64(math.MinInt64), addAmount(math.MinInt64+1, -2))
	assert.Equal(t, int64(math.MaxInt64), addAmount(math.MaxInt64, -5))
	assert.Equal(t, int64(math.MaxInt64), jsRound(1e20))
}

func TestParseSmallSegment(t *testing.T) {
	assert.Equal(t, int64(24), parseSmallSegment([]string{"hai", "tư"}))
	assert.Equal(t, int64(150), parseSmallSegment([]string{"trăm", "rưỡi"}))
	assert.Equal(t, int64(105), parseSmallSegment([]string{"một", "trăm", "lẻ", "năm"}))
}
