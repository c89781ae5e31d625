package dialog

import "vslim/internal/core"

// Result is the outcome of merging one utterance.
type Result struct {
	Doable     []core.Frame
	Incomplete []core.Frame
}

// Merge folds the entities of parsed into the pending frames and the new
// frames they create. pending is left untouched.
//
// Entities are handed to pending frames through one cursor shared by all
// frames: a frame keeps taking entities while it is not yet enough and the
// entity under the cursor has its intent. The cursor never rewinds, so an
// entity is never offered to an earlier frame once the cursor moved past it.
// What remains becomes new frames, consecutive same-intent entities sharing
// a frame until a slot repeats.
func Merge(pending []core.Frame, parsed core.Utterance) Result {
	frames := make([]core.Frame, 0, len(pending))
	for _, f := range pending {
		frames = append(frames, f.Clone())
	}
	entities := parsed.Entities

	idx := 0
	for i := range frames {
		for !IsEnough(frames[i]) && idx < len(entities) && entities[idx].Intent == frames[i].Intent {
			assign(&frames[i], entities[idx])
			idx++
		}
	}

	var created []core.Frame
	// unknown holds, per created frame, the mapped keys that name no slot.
	// They are dropped from the frame but still end it when repeated.
	var unknown []map[string]bool
	for _, e := range entities[idx:] {
		if !e.Intent.IsAction() {
			continue
		}
		name := MapKey(e.Key, e.Intent)
		slot, known := core.ParseSlot(name)
		if n := len(created); n > 0 && created[n-1].Intent == e.Intent {
			if known && !created[n-1].Has(slot) {
				assign(&created[n-1], e)
				continue
			}
			if !known && !unknown[n-1][name] {
				unknown[n-1][name] = true
				continue
			}
		}
		f := core.NewFrame(e.Intent)
		assign(&f, e)
		created = append(created, f)
		seen := map[string]bool{}
		if !known {
			seen[name] = true
		}
		unknown = append(unknown, seen)
	}

	var res Result
	res.Doable, res.Incomplete = Partition(append(frames, created...))

	for _, intent := range parsed.Intents {
		if intent.IsAction() && !hasEntityFor(entities, intent) {
			res.Incomplete = append(res.Incomplete, core.NewFrame(intent))
		}
	}

	PropagateShared(res.Doable, core.SlotDate)
	PropagateShared(res.Doable, core.SlotLocation)
	return res
}

func assign(f *core.Frame, e core.Entity) {
	if slot, ok := MapSlot(e.Key, f.Intent); ok {
		f.Set(slot, core.TextValue(e.Text))
	}
}

func hasEntityFor(entities []core.Entity, intent core.Intent) bool {
	for _, e := range entities {
		if e.Intent == intent {
			return true
		}
	}
	return false
}
