package dialog

import "vslim/internal/core"

var (
	priceSlots = []core.Slot{core.SlotTargetPrice, core.SlotPrice}

	conditionSlots = []core.Slot{
		core.SlotDescription,
		core.SlotPrice,
		core.SlotDate,
		core.SlotLocation,
		core.SlotConditionDescription,
		core.SlotConditionPrice,
		core.SlotConditionDate,
		core.SlotConditionLocation,
	}

	// description counts as both condition and target for update
	targetSlots = []core.Slot{
		core.SlotTargetPrice,
		core.SlotTargetDate,
		core.SlotTargetDescription,
		core.SlotTargetLocation,
		core.SlotDescription,
		core.SlotCategory,
	}

	statPeriodSlots = []core.Slot{core.SlotDate, core.SlotConditionDate}
)

// IsEnough reports whether f carries enough slots to execute.
func IsEnough(f core.Frame) bool {
	switch f.Intent {
	case core.IntentAddExpense:
		return f.HasAny(priceSlots...) && f.Has(core.SlotDescription)
	case core.IntentDeleteExpense, core.IntentSearchExpense, core.IntentStatExpense:
		return f.HasAny(conditionSlots...)
	case core.IntentUpdateExpense:
		return f.HasAny(conditionSlots...) && f.HasAny(targetSlots...)
	}
	return false
}

// Partition splits frames into doable and incomplete, keeping order.
func Partition(frames []core.Frame) (doable, incomplete []core.Frame) {
	for _, f := range frames {
		if IsEnough(f) {
			doable = append(doable, f)
		} else {
			incomplete = append(incomplete, f)
		}
	}
	return doable, incomplete
}
