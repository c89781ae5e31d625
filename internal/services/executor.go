package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vslim/internal/classify"
	"vslim/internal/core"
	"vslim/internal/ledger"
	"vslim/internal/log"
	"vslim/internal/metrics"
	"vslim/internal/resolve"
)

// ExecutionResults holds one entry per action intent. An entry stays nil
// unless that intent had doable frames in the turn.
type ExecutionResults struct {
	AddExpense    *core.AddResult              `json:"add_expense"`
	DeleteExpense *core.DeleteResult           `json:"delete_expense"`
	UpdateExpense *core.UpdateResult           `json:"update_expense"`
	SearchExpense []core.Expense               `json:"search_expense"`
	StatExpense   map[string]core.CategoryStat `json:"stat_expense"`
}

// FrameExecutor turns doable frames into ledger operations.
type FrameExecutor struct {
	store      ledger.Store
	classifier classify.Classifier
	metrics    *metrics.Metrics
	logger     *log.Logger
	today      func() core.Date
}

func NewFrameExecutor(store ledger.Store, classifier classify.Classifier, m *metrics.Metrics, logger *log.Logger) *FrameExecutor {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &FrameExecutor{
		store:      store,
		classifier: classifier,
		metrics:    m,
		logger:     logger.WithComponent(log.ComponentExecutor),
		today:      resolve.Today,
	}
}

// spreadSlots are checked in order; the first one set drives spreading.
var spreadSlots = []core.Slot{core.SlotConditionDate, core.SlotTargetDate, core.SlotDate}

// Execute runs the frames for userID, grouped by intent in the order add,
// delete, update, search, stat. The first failing group aborts the rest;
// groups already committed stay committed.
func (x *FrameExecutor) Execute(ctx context.Context, userID string, frames []core.Frame) (ExecutionResults, error) {
	var results ExecutionResults
	groups := make(map[core.Intent][]core.Frame)
	for _, f := range x.Spread(frames) {
		groups[f.Intent] = append(groups[f.Intent], f)
	}

	steps := []struct {
		intent core.Intent
		run    func(context.Context, string, []core.Frame, *ExecutionResults) error
	}{
		{core.IntentAddExpense, x.add},
		{core.IntentDeleteExpense, x.delete},
		{core.IntentUpdateExpense, x.update},
		{core.IntentSearchExpense, x.search},
		{core.IntentStatExpense, x.stat},
	}
	for _, step := range steps {
		group := groups[step.intent]
		if len(group) == 0 {
			continue
		}
		err := step.run(ctx, userID, group, &results)
		x.metrics.CountExecution(string(step.intent), err)
		if err != nil {
			return results, fmt.Errorf("%s: %w", step.intent, err)
		}
	}
	return results, nil
}

// Spread emits one frame per calendar day of the first date-like slot.
// Search and stat frames keep their range as a query criterion.
func (x *FrameExecutor) Spread(frames []core.Frame) []core.Frame {
	today := x.today()
	out := make([]core.Frame, 0, len(frames))
	for _, f := range frames {
		if f.Intent == core.IntentSearchExpense || f.Intent == core.IntentStatExpense {
			out = append(out, f)
			continue
		}
		slot, ok := firstSet(f, spreadSlots)
		if !ok {
			out = append(out, f)
			continue
		}

		span := x.span(f, slot, today)
		for _, day := range span.Days() {
			c := f.Clone()
			c.Set(slot, core.DateValue(day))
			out = append(out, c)
		}
	}
	return out
}

func (x *FrameExecutor) span(f core.Frame, slot core.Slot, today core.Date) resolve.Span {
	v, _ := f.Get(slot)
	if d, ok := v.Date(); ok {
		return resolve.Span{Start: d, End: d}
	}
	span, ok := resolve.RangeAt(v.String(), today)
	if !ok {
		x.metrics.CountResolverFailure("date")
		return resolve.Span{Start: today, End: today}
	}
	return span
}

func (x *FrameExecutor) add(ctx context.Context, userID string, frames []core.Frame, results *ExecutionResults) error {
	descriptions := make([]string, len(frames))
	for i, f := range frames {
		descriptions[i] = f.Text(core.SlotDescription)
	}
	categories, err := x.classifier.Classify(ctx, descriptions)
	if err != nil {
		return fmt.Errorf("classify descriptions: %w", err)
	}

	records := make([]core.Expense, len(frames))
	for i, f := range frames {
		category := core.DefaultCategory
		if i < len(categories) && categories[i] != "" {
			category = categories[i]
		}
		f.Set(core.SlotCategory, core.TextValue(category))
		records[i] = x.record(userID, f)
	}

	x.logger.DebugContext(ctx, "Adding expenses", log.FieldCount, len(records))
	res, err := x.store.Create(ctx, records)
	if err != nil {
		return err
	}
	results.AddExpense = &res
	return nil
}

func (x *FrameExecutor) delete(ctx context.Context, userID string, frames []core.Frame, results *ExecutionResults) error {
	var ids []string
	for _, f := range frames {
		if id := f.Text(core.SlotID); id != "" {
			ids = append(ids, id)
			continue
		}
		found, err := x.store.Find(ctx, x.criteria(userID, f))
		if err != nil {
			return fmt.Errorf("find expenses: %w", err)
		}
		for _, e := range found {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	x.logger.DebugContext(ctx, "Deleting expenses", log.FieldCount, len(ids))
	res, err := x.store.Delete(ctx, ids)
	if err != nil {
		return err
	}
	results.DeleteExpense = &res
	return nil
}

func (x *FrameExecutor) update(ctx context.Context, userID string, frames []core.Frame, results *ExecutionResults) error {
	var updates []core.Expense
	for _, f := range frames {
		matches, err := x.matches(ctx, userID, f)
		if err != nil {
			return err
		}
		for _, e := range matches {
			updates = append(updates, x.applyTargets(f, e))
		}
	}
	if len(updates) == 0 {
		return nil
	}

	x.logger.DebugContext(ctx, "Updating expenses", log.FieldCount, len(updates))
	res, err := x.store.Update(ctx, updates)
	if err != nil {
		return err
	}
	results.UpdateExpense = &res
	return nil
}

// matches finds the records an update frame applies to: the one named by
// _id, or every record matching its conditions.
func (x *FrameExecutor) matches(ctx context.Context, userID string, f core.Frame) ([]core.Expense, error) {
	id := f.Text(core.SlotID)
	if id == "" {
		found, err := x.store.Find(ctx, x.criteria(userID, f))
		if err != nil {
			return nil, fmt.Errorf("find expenses: %w", err)
		}
		return found, nil
	}

	e, err := x.store.Get(ctx, id)
	if errors.Is(err, core.ErrExpenseNotFound) {
		x.logger.WarnContext(ctx, "Update target not found", log.FieldExpenseID, id)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense %s: %w", id, err)
	}
	return []core.Expense{e}, nil
}

func (x *FrameExecutor) search(ctx context.Context, userID string, frames []core.Frame, results *ExecutionResults) error {
	all := make([]core.Expense, 0)
	for _, f := range frames {
		found, err := x.store.Find(ctx, x.criteria(userID, f))
		if err != nil {
			return err
		}
		all = append(all, found...)
	}
	results.SearchExpense = all
	return nil
}

func (x *FrameExecutor) stat(ctx context.Context, userID string, frames []core.Frame, results *ExecutionResults) error {
	all := make(map[string]core.CategoryStat)
	for _, f := range frames {
		c, ok := x.statCriteria(userID, f)
		if !ok {
			continue
		}
		stats, err := x.store.Statistics(ctx, c)
		if err != nil {
			return err
		}
		all = core.MergeStats(all, stats)
	}
	results.StatExpense = all
	return nil
}

// record builds the ledger entry for an add frame.
func (x *FrameExecutor) record(userID string, f core.Frame) core.Expense {
	e := core.Expense{
		UserID:      userID,
		Type:        core.EntryExpense,
		Description: f.Text(core.SlotDescription),
		Category:    f.Text(core.SlotCategory),
		PaidAt:      x.today(),
	}
	if slot, ok := firstSet(f, []core.Slot{core.SlotPrice, core.SlotTargetPrice}); ok {
		e.Amount, _ = x.amount(f, slot)
	}
	if d, ok := x.day(f, core.SlotDate); ok {
		e.PaidAt = d
	}
	if loc := f.Text(core.SlotLocation); loc != "" {
		e.Description = withLocation(e.Description, loc)
	}
	return e
}

// applyTargets writes the target slots of an update frame onto e.
func (x *FrameExecutor) applyTargets(f core.Frame, e core.Expense) core.Expense {
	if desc := f.Text(core.SlotTargetDescription); desc != "" {
		e.Description = desc
	}
	if amount, ok := x.amount(f, core.SlotTargetPrice); ok {
		e.Amount = amount
	}
	if d, ok := x.day(f, core.SlotTargetDate); ok {
		e.PaidAt = d
	}
	if loc := f.Text(core.SlotTargetLocation); loc != "" {
		e.Description = withLocation(e.Description, loc)
	}
	if category := f.Text(core.SlotCategory); category != "" {
		e.Category = category
	}
	return e
}

// criteria translates the condition slots of a frame. Prefixed slots win
// over bare ones.
func (x *FrameExecutor) criteria(userID string, f core.Frame) core.Criteria {
	c := core.Criteria{
		UserID:      userID,
		Description: firstText(f, core.SlotConditionDescription, core.SlotDescription),
		Location:    firstText(f, core.SlotConditionLocation, core.SlotLocation),
	}
	if slot, ok := firstSet(f, []core.Slot{core.SlotConditionPrice, core.SlotPrice}); ok {
		if amount, ok := x.amount(f, slot); ok {
			c.Amount = &amount
		}
	}
	if slot, ok := firstSet(f, []core.Slot{core.SlotConditionDate, core.SlotDate}); ok {
		x.setRange(&c, f, slot)
	}
	return c
}

// statCriteria only narrows by date. ok is false when no date resolves.
func (x *FrameExecutor) statCriteria(userID string, f core.Frame) (core.Criteria, bool) {
	c := core.Criteria{UserID: userID}
	slot, ok := firstSet(f, []core.Slot{core.SlotConditionDate, core.SlotDate})
	if !ok {
		return c, false
	}
	x.setRange(&c, f, slot)
	return c, c.HasDateRange()
}

func (x *FrameExecutor) setRange(c *core.Criteria, f core.Frame, slot core.Slot) {
	v, _ := f.Get(slot)
	if d, ok := v.Date(); ok {
		c.From, c.To = &d, &d
		return
	}
	span, ok := resolve.RangeAt(v.String(), x.today())
	if !ok {
		x.metrics.CountResolverFailure("date")
		return
	}
	c.From, c.To = &span.Start, &span.End
}

// amount resolves a price slot. Unresolvable text yields 0, false.
func (x *FrameExecutor) amount(f core.Frame, slot core.Slot) (core.Money, bool) {
	v, ok := f.Get(slot)
	if !ok {
		return 0, false
	}
	if n, ok := v.Number(); ok {
		return core.Money(n), true
	}
	n, ok := resolve.Amount(v.String())
	if !ok {
		x.metrics.CountResolverFailure("amount")
		return 0, false
	}
	return core.Money(n), true
}

// day resolves a date slot to one calendar day, taking the start of a
// range expression.
func (x *FrameExecutor) day(f core.Frame, slot core.Slot) (core.Date, bool) {
	v, ok := f.Get(slot)
	if !ok {
		return core.Date{}, false
	}
	if d, ok := v.Date(); ok {
		return d, true
	}
	today := x.today()
	if d, ok := resolve.DateAt(v.String(), today); ok {
		return d, true
	}
	if span, ok := resolve.RangeAt(v.String(), today); ok {
		return span.Start, true
	}
	x.metrics.CountResolverFailure("date")
	return core.Date{}, false
}

func withLocation(description, location string) string {
	return strings.TrimSpace(description + " ở " + location)
}

func firstSet(f core.Frame, slots []core.Slot) (core.Slot, bool) {
	for _, s := range slots {
		if f.Has(s) {
			return s, true
		}
	}
	return 0, false
}

func firstText(f core.Frame, slots ...core.Slot) string {
	if s, ok := firstSet(f, slots); ok {
		return f.Text(s)
	}
	return ""
}
