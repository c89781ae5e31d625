// Package dialog holds the slot-filling rules that turn extracted entities
// into frames: key mapping, completeness, shared-value propagation, the
// per-turn merge and the follow-up prompt for frames still missing data.
//
// Everything here is pure. Session persistence and TTL bookkeeping belong
// to the caller.
package dialog

import (
	"strings"

	"vslim/internal/core"
)

const (
	prefixTarget    = "target_"
	prefixCondition = "condition_"
)

// keyAliases normalizes bare keys the extraction service may emit.
var keyAliases = map[string]string{
	"amount": "price",
}

// prefixable lists the bare keys that have condition_/target_ variants.
var prefixable = map[string]bool{
	"description": true,
	"price":       true,
	"date":        true,
	"location":    true,
}

// MapKey maps a raw entity key to a slot name for intent. Add, delete,
// search and stat drop any prefix. Update keeps condition_ and turns
// everything else into target_. Unknown intents keep the raw key.
func MapKey(key string, intent core.Intent) string {
	base, prefix := key, ""
	switch {
	case strings.HasPrefix(key, prefixTarget):
		base, prefix = strings.TrimPrefix(key, prefixTarget), prefixTarget
	case strings.HasPrefix(key, prefixCondition):
		base, prefix = strings.TrimPrefix(key, prefixCondition), prefixCondition
	}
	if alias, ok := keyAliases[base]; ok {
		base = alias
	}

	switch intent {
	case core.IntentAddExpense, core.IntentDeleteExpense, core.IntentSearchExpense, core.IntentStatExpense:
		return base
	case core.IntentUpdateExpense:
		if !prefixable[base] {
			return base
		}
		if prefix == prefixCondition {
			return prefixCondition + base
		}
		return prefixTarget + base
	}
	return key
}

// MapSlot is MapKey resolved to a canonical slot. ok is false when the
// mapped name is not a known slot.
func MapSlot(key string, intent core.Intent) (core.Slot, bool) {
	return core.ParseSlot(MapKey(key, intent))
}
