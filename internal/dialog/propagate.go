package dialog

import "vslim/internal/core"

// PropagateShared fills slot across each run of consecutive same-intent
// frames, in place. The first explicit value back-fills the frames before
// it; every gap after an explicit value takes that value until the next
// explicit one. Explicit values are never overwritten.
func PropagateShared(frames []core.Frame, slot core.Slot) {
	for start := 0; start < len(frames); {
		end := start + 1
		for end < len(frames) && frames[end].Intent == frames[start].Intent {
			end++
		}
		fillBlock(frames[start:end], slot)
		start = end
	}
}

func fillBlock(block []core.Frame, slot core.Slot) {
	var explicit []int
	for i := range block {
		if block[i].Has(slot) {
			explicit = append(explicit, i)
		}
	}
	for k, at := range explicit {
		prev, next := -1, len(block)
		if k > 0 {
			prev = explicit[k-1]
		}
		if k+1 < len(explicit) {
			next = explicit[k+1]
		}
		v, _ := block[at].Get(slot)
		for m := prev + 1; m < next; m++ {
			if !block[m].Has(slot) {
				block[m].Set(slot, v)
			}
		}
	}
}
