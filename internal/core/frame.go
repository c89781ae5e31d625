package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Slot is a canonical frame field.
type Slot int

const (
	SlotDescription Slot = iota
	SlotPrice
	SlotDate
	SlotLocation
	SlotCategory
	SlotConditionDescription
	SlotConditionPrice
	SlotConditionDate
	SlotConditionLocation
	SlotTargetDescription
	SlotTargetPrice
	SlotTargetDate
	SlotTargetLocation
	SlotID
	slotCount
)

var slotNames = [slotCount]string{
	"description",
	"price",
	"date",
	"location",
	"category",
	"condition_description",
	"condition_price",
	"condition_date",
	"condition_location",
	"target_description",
	"target_price",
	"target_date",
	"target_location",
	"_id",
}

func (s Slot) String() string {
	if s < 0 || s >= slotCount {
		return "slot(" + strconv.Itoa(int(s)) + ")"
	}
	return slotNames[s]
}

// ParseSlot resolves a canonical slot name.
func ParseSlot(name string) (Slot, bool) {
	for i, n := range slotNames {
		if n == name {
			return Slot(i), true
		}
	}
	return 0, false
}

type ValueKind uint8

const (
	KindUnset ValueKind = iota
	KindText
	KindNumber
	KindDate
)

// Value is what a slot holds: raw text from extraction, a resolved
// amount, or a resolved calendar day.
type Value struct {
	kind   ValueKind
	text   string
	number int64
	date   Date
}

func TextValue(s string) Value  { return Value{kind: KindText, text: s} }
func NumberValue(n int64) Value { return Value{kind: KindNumber, number: n} }
func DateValue(d Date) Value    { return Value{kind: KindDate, date: d} }
func (v Value) Kind() ValueKind { return v.kind }

// IsSet reports whether the value counts as present. Empty text does not.
func (v Value) IsSet() bool {
	switch v.kind {
	case KindText:
		return v.text != ""
	case KindNumber, KindDate:
		return true
	}
	return false
}

func (v Value) Number() (int64, bool) {
	return v.number, v.kind == KindNumber
}

func (v Value) Date() (Date, bool) {
	return v.date, v.kind == KindDate
}

// String renders any kind as text.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatInt(v.number, 10)
	case KindDate:
		return v.date.String()
	}
	return ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return []byte(strconv.FormatInt(v.number, 10)), nil
	case KindDate:
		return v.date.MarshalJSON()
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*v = Value{}
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("slot value %s: %w", b, err)
		}
		*v = NumberValue(int64(f))
	}
	return nil
}

// Frame is one user intent with the slots collected for it so far.
// TTL is only carried while the frame is pending.
type Frame struct {
	Intent Intent
	TTL    *int
	slots  [slotCount]Value
}

func NewFrame(intent Intent) Frame {
	return Frame{Intent: intent}
}

func (f Frame) Get(s Slot) (Value, bool) {
	if s < 0 || s >= slotCount {
		return Value{}, false
	}
	v := f.slots[s]
	return v, v.IsSet()
}

func (f Frame) Has(s Slot) bool {
	_, ok := f.Get(s)
	return ok
}

// Text returns the slot rendered as text, "" when unset.
func (f Frame) Text(s Slot) string {
	v, _ := f.Get(s)
	return v.String()
}

func (f *Frame) Set(s Slot, v Value) {
	if s < 0 || s >= slotCount {
		return
	}
	f.slots[s] = v
}

func (f *Frame) Unset(s Slot) {
	f.Set(s, Value{})
}

// HasAny reports whether at least one of the slots is set.
func (f Frame) HasAny(slots ...Slot) bool {
	for _, s := range slots {
		if f.Has(s) {
			return true
		}
	}
	return false
}

// SetSlots lists the set slots in canonical order.
func (f Frame) SetSlots() []Slot {
	var out []Slot
	for i := range f.slots {
		if f.slots[i].IsSet() {
			out = append(out, Slot(i))
		}
	}
	return out
}

// WithTTL returns a copy carrying ttl.
func (f Frame) WithTTL(ttl int) Frame {
	f.TTL = &ttl
	return f
}

// Clone deep-copies the frame.
func (f Frame) Clone() Frame {
	if f.TTL != nil {
		ttl := *f.TTL
		f.TTL = &ttl
	}
	return f
}

func (f Frame) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(f.slots)+2)
	m["intent"] = f.Intent
	for _, s := range f.SetSlots() {
		m[s.String()] = f.slots[s]
	}
	if f.TTL != nil {
		m["ttl"] = *f.TTL
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads the flat form. Keys that are not canonical slots
// are dropped.
func (f *Frame) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := Frame{}
	for k, msg := range raw {
		switch k {
		case "intent":
			if err := json.Unmarshal(msg, &out.Intent); err != nil {
				return fmt.Errorf("frame intent: %w", err)
			}
		case "ttl":
			if string(msg) == "null" {
				continue
			}
			var ttl int
			if err := json.Unmarshal(msg, &ttl); err != nil {
				return fmt.Errorf("frame ttl: %w", err)
			}
			out.TTL = &ttl
		default:
			s, ok := ParseSlot(k)
			if !ok {
				continue
			}
			var v Value
			if err := v.UnmarshalJSON(msg); err != nil {
				return fmt.Errorf("frame slot %s: %w", k, err)
			}
			out.slots[s] = v
		}
	}
	*f = out
	return nil
}
