package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vslim/internal/core"
)

func entity(key, text string, intent core.Intent) core.Entity {
	return core.Entity{Key: key, Text: text, Intent: intent}
}

func TestMergeNewAddFrame(t *testing.T) {
	res := Merge(nil, core.Utterance{
		Intents: []core.Intent{core.IntentAddExpense},
		Entities: []core.Entity{
			entity("description", "bánh mì", core.IntentAddExpense),
			entity("amount", "25000", core.IntentAddExpense),
		},
		Confidence: 0.9,
	})

	require.Len(t, res.Doable, 1)
	assert.Empty(t, res.Incomplete)
	f := res.Doable[0]
	assert.Equal(t, core.IntentAddExpense, f.Intent)
	assert.Equal(t, "bánh mì", f.Text(core.SlotDescription))
	assert.Equal(t, "25000", f.Text(core.SlotPrice))
}

func TestMergeFillsPendingFrame(t *testing.T) {
	pending := core.NewFrame(core.IntentAddExpense).WithTTL(0)
	pending.Set(core.SlotDescription, core.TextValue("cà phê"))

	res := Merge([]core.Frame{pending}, core.Utterance{
		Entities: []core.Entity{entity("price", "20k", core.IntentAddExpense)},
	})

	require.Len(t, res.Doable, 1)
	assert.Equal(t, "20k", res.Doable[0].Text(core.SlotPrice))
	assert.False(t, pending.Has(core.SlotPrice), "pending frames must not be mutated")
}

func TestMergeSharedCursorAcrossFrames(t *testing.T) {
	pho := core.NewFrame(core.IntentAddExpense)
	pho.Set(core.SlotDescription, core.TextValue("phở"))
	bun := core.NewFrame(core.IntentAddExpense)
	bun.Set(core.SlotDescription, core.TextValue("bún"))

	res := Merge([]core.Frame{pho, bun}, core.Utterance{
		Entities: []core.Entity{
			entity("price", "30k", core.IntentAddExpense),
			entity("price", "40k", core.IntentAddExpense),
		},
	})

	require.Len(t, res.Doable, 2)
	assert.Equal(t, "30k", res.Doable[0].Text(core.SlotPrice))
	assert.Equal(t, "40k", res.Doable[1].Text(core.SlotPrice))
}

func TestMergeCursorNeverRewinds(t *testing.T) {
	upd := core.NewFrame(core.IntentUpdateExpense)
	upd.Set(core.SlotConditionDescription, core.TextValue("trà sữa"))
	add := core.NewFrame(core.IntentAddExpense)
	add.Set(core.SlotDescription, core.TextValue("bún"))

	res := Merge([]core.Frame{upd, add}, core.Utterance{
		Entities: []core.Entity{
			entity("price", "40k", core.IntentAddExpense),
			entity("target_price", "50k", core.IntentUpdateExpense),
		},
	})

	// the update entity comes after the cursor passed the update frame, so
	// it starts a frame of its own instead of completing the pending one
	require.Len(t, res.Doable, 1)
	assert.Equal(t, "bún", res.Doable[0].Text(core.SlotDescription))
	assert.Equal(t, "40k", res.Doable[0].Text(core.SlotPrice))

	require.Len(t, res.Incomplete, 2)
	assert.Equal(t, "trà sữa", res.Incomplete[0].Text(core.SlotConditionDescription))
	assert.False(t, res.Incomplete[0].Has(core.SlotTargetPrice))
	assert.Equal(t, "50k", res.Incomplete[1].Text(core.SlotTargetPrice))
}

func TestMergeStopsAttachingOnceEnough(t *testing.T) {
	pending := core.NewFrame(core.IntentAddExpense)
	pending.Set(core.SlotDescription, core.TextValue("phở"))

	res := Merge([]core.Frame{pending}, core.Utterance{
		Entities: []core.Entity{
			entity("price", "30k", core.IntentAddExpense),
			entity("description", "nước cam", core.IntentAddExpense),
		},
	})

	require.Len(t, res.Doable, 1)
	assert.Equal(t, "phở", res.Doable[0].Text(core.SlotDescription))
	require.Len(t, res.Incomplete, 1)
	assert.Equal(t, "nước cam", res.Incomplete[0].Text(core.SlotDescription))
}

func TestMergeRepeatedSlotStartsNewFrame(t *testing.T) {
	res := Merge(nil, core.Utterance{
		Entities: []core.Entity{
			entity("description", "phở", core.IntentAddExpense),
			entity("price", "30k", core.IntentAddExpense),
			entity("date", "hôm qua", core.IntentAddExpense),
			entity("description", "bún", core.IntentAddExpense),
			entity("price", "20k", core.IntentAddExpense),
		},
	})

	require.Len(t, res.Doable, 2)
	assert.Equal(t, "bún", res.Doable[1].Text(core.SlotDescription))
	// date is shared with the sibling frame
	assert.Equal(t, "hôm qua", res.Doable[1].Text(core.SlotDate))
}

func TestMergeIntentWithoutEntities(t *testing.T) {
	res := Merge(nil, core.Utterance{
		Intents: []core.Intent{core.IntentAddExpense, core.IntentStatExpense, core.IntentNone},
		Entities: []core.Entity{
			entity("description", "phở", core.IntentAddExpense),
			entity("price", "30k", core.IntentAddExpense),
		},
	})

	require.Len(t, res.Doable, 1)
	require.Len(t, res.Incomplete, 1)
	assert.Equal(t, core.IntentStatExpense, res.Incomplete[0].Intent)
	assert.Empty(t, res.Incomplete[0].SetSlots())
}

func TestMergeSkipsNoneEntities(t *testing.T) {
	res := Merge(nil, core.Utterance{
		Entities: []core.Entity{entity("description", "xin chào", core.IntentNone)},
	})
	assert.Empty(t, res.Doable)
	assert.Empty(t, res.Incomplete)
}

func TestMergeUnknownKeyStillOpensFrame(t *testing.T) {
	res := Merge(nil, core.Utterance{
		Entities: []core.Entity{entity("merchant", "highlands", core.IntentSearchExpense)},
	})
	require.Len(t, res.Incomplete, 1)
	assert.Equal(t, core.IntentSearchExpense, res.Incomplete[0].Intent)
}

func TestMergeRepeatedUnknownKeyStartsNewFrame(t *testing.T) {
	res := Merge(nil, core.Utterance{
		Entities: []core.Entity{
			entity("description", "cà phê", core.IntentAddExpense),
			entity("merchant", "highlands", core.IntentAddExpense),
			entity("price", "45k", core.IntentAddExpense),
			entity("merchant", "circle k", core.IntentAddExpense),
		},
	})

	require.Len(t, res.Doable, 1)
	assert.Equal(t, "cà phê", res.Doable[0].Text(core.SlotDescription))
	assert.Equal(t, "45k", res.Doable[0].Text(core.SlotPrice))
	require.Len(t, res.Incomplete, 1)
	assert.Equal(t, core.IntentAddExpense, res.Incomplete[0].Intent)
	assert.Empty(t, res.Incomplete[0].SetSlots())
}
