package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vslim/internal/core"
)

func TestMapKey(t *testing.T) {
	cases := []struct {
		key    string
		intent core.Intent
		want   string
	}{
		{"price", core.IntentAddExpense, "price"},
		{"amount", core.IntentAddExpense, "price"},
		{"target_price", core.IntentAddExpense, "price"},
		{"condition_date", core.IntentAddExpense, "date"},
		{"target_description", core.IntentSearchExpense, "description"},
		{"condition_location", core.IntentDeleteExpense, "location"},
		{"date", core.IntentStatExpense, "date"},
		{"condition_price", core.IntentUpdateExpense, "condition_price"},
		{"target_date", core.IntentUpdateExpense, "target_date"},
		{"description", core.IntentUpdateExpense, "target_description"},
		{"amount", core.IntentUpdateExpense, "target_price"},
		{"category", core.IntentUpdateExpense, "category"},
		{"_id", core.IntentUpdateExpense, "_id"},
		{"target_price", core.IntentNone, "target_price"},
		{"weird", core.Intent("unknown"), "weird"},
	}
	for _, tc := range cases {
		t.Run(string(tc.intent)+"/"+tc.key, func(t *testing.T) {
			assert.Equal(t, tc.want, MapKey(tc.key, tc.intent))
		})
	}
}

func TestMapSlot(t *testing.T) {
	slot, ok := MapSlot("condition_description", core.IntentUpdateExpense)
	assert.True(t, ok)
	assert.Equal(t, core.SlotConditionDescription, slot)

	_, ok = MapSlot("merchant", core.IntentAddExpense)
	assert.False(t, ok)
}
