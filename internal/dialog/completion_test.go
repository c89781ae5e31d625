package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vslim/internal/core"
)

func frameWith(intent core.Intent, slots ...core.Slot) core.Frame {
	f := core.NewFrame(intent)
	for _, s := range slots {
		f.Set(s, core.TextValue("x"))
	}
	return f
}

// every subset of a small slot universe, so the rules are checked exhaustively
func subsets(universe []core.Slot) [][]core.Slot {
	var out [][]core.Slot
	for mask := 0; mask < 1<<len(universe); mask++ {
		var s []core.Slot
		for i, slot := range universe {
			if mask&(1<<i) != 0 {
				s = append(s, slot)
			}
		}
		out = append(out, s)
	}
	return out
}

func TestIsEnoughAdd(t *testing.T) {
	universe := []core.Slot{core.SlotPrice, core.SlotTargetPrice, core.SlotDescription, core.SlotDate, core.SlotLocation}
	for _, slots := range subsets(universe) {
		f := frameWith(core.IntentAddExpense, slots...)
		want := f.HasAny(core.SlotPrice, core.SlotTargetPrice) && f.Has(core.SlotDescription)
		assert.Equal(t, want, IsEnough(f), "%v", slots)
	}
}

func TestIsEnoughUpdate(t *testing.T) {
	universe := []core.Slot{
		core.SlotConditionDescription,
		core.SlotConditionDate,
		core.SlotTargetPrice,
		core.SlotCategory,
		core.SlotDescription,
		core.SlotID,
	}
	for _, slots := range subsets(universe) {
		f := frameWith(core.IntentUpdateExpense, slots...)
		hasCondition := f.HasAny(core.SlotConditionDescription, core.SlotConditionDate, core.SlotDescription)
		hasTarget := f.HasAny(core.SlotTargetPrice, core.SlotCategory, core.SlotDescription)
		assert.Equal(t, hasCondition && hasTarget, IsEnough(f), "%v", slots)
	}
}

func TestIsEnoughQueries(t *testing.T) {
	for _, intent := range []core.Intent{core.IntentDeleteExpense, core.IntentSearchExpense, core.IntentStatExpense} {
		assert.False(t, IsEnough(core.NewFrame(intent)), intent)
		assert.True(t, IsEnough(frameWith(intent, core.SlotLocation)), intent)
		assert.True(t, IsEnough(frameWith(intent, core.SlotConditionPrice)), intent)
		assert.False(t, IsEnough(frameWith(intent, core.SlotTargetPrice)), intent)
	}
}

func TestIsEnoughNone(t *testing.T) {
	assert.False(t, IsEnough(frameWith(core.IntentNone, core.SlotDescription, core.SlotPrice)))
}

func TestPartitionKeepsOrder(t *testing.T) {
	a := frameWith(core.IntentAddExpense, core.SlotDescription, core.SlotPrice)
	b := frameWith(core.IntentAddExpense, core.SlotDescription)
	c := frameWith(core.IntentSearchExpense, core.SlotDate)
	doable, incomplete := Partition([]core.Frame{a, b, c})
	assert.Equal(t, []core.Frame{a, c}, doable)
	assert.Equal(t, []core.Frame{b}, incomplete)
}
