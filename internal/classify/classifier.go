// Package classify assigns a ledger category to expense descriptions.
package classify

import (
	"context"
	"strings"

	"vslim/internal/core"
)

// Ledger categories.
const (
	CategoryFood          = "Ăn uống"
	CategoryTransport     = "Di chuyển"
	CategoryHealth        = "Sức khỏe"
	CategoryBills         = "Hóa đơn"
	CategoryHousehold     = "Đồ gia dụng"
	CategoryShopping      = "Mua sắm"
	CategoryEntertainment = "Giải trí"
)

// Categories lists the ledger categories, the default excluded.
var Categories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryHealth,
	CategoryBills,
	CategoryHousehold,
	CategoryShopping,
	CategoryEntertainment,
}

// Classifier labels each description with a category. The result always has
// the same length as descriptions; unresolved entries are core.DefaultCategory.
type Classifier interface {
	Classify(ctx context.Context, descriptions []string) ([]string, error)
}

// Normalize maps a free-form label onto a known category, ignoring case and
// surrounding space.
func Normalize(label string) string {
	label = strings.TrimSpace(label)
	for _, c := range Categories {
		if strings.EqualFold(c, label) {
			return c
		}
	}
	return core.DefaultCategory
}

func fillDefault(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = core.DefaultCategory
	}
	return out
}
