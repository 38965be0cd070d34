package analytics

import (
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

// Predicate decides whether a record stays in the filtered set.
type Predicate func(domain.Record) bool

// Filter applies the period window and every active field filter of state.
// Without a period window the result is empty: the dashboard rests on its
// placeholder until a period is chosen. Input order is preserved.
func Filter(records []domain.Record, state *domain.FilterState, dateField string) []domain.Record {
	if state == nil || !state.HasPeriod() {
		return []domain.Record{}
	}
	return FilterWith(records, Predicates(state, dateField)...)
}

// Predicates builds the conjunctive predicate list for state: the period
// window first, then one equality predicate per active field filter.
func Predicates(state *domain.FilterState, dateField string) []Predicate {
	preds := []Predicate{InPeriod(state.Period, dateField)}
	for field, value := range state.ActiveFilters() {
		preds = append(preds, FieldEquals(field, value))
	}
	return preds
}

// FilterWith keeps the records that satisfy every predicate.
func FilterWith(records []domain.Record, preds ...Predicate) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if matchesAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

// InPeriod keeps records whose dateField falls inside w. Records with an
// unreadable timestamp never match.
func InPeriod(w *domain.PeriodWindow, dateField string) Predicate {
	return func(r domain.Record) bool {
		t, ok := r.Time(dateField)
		return ok && w.Contains(t)
	}
}

// FieldEquals compares the string form of field with value.
func FieldEquals(field, value string) Predicate {
	return func(r domain.Record) bool {
		return r.Text(field) == value
	}
}

func matchesAll(r domain.Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}
