package analytics

import (
	"slices"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

// CountBy counts records per value of field. When labels is non-empty the
// result follows labels exactly, zero counts included; otherwise every
// observed value is listed in ascending order.
func CountBy(records []domain.Record, field string, labels []string) []domain.CategoryCount {
	counts := make(map[string]int)
	for _, r := range records {
		if v := r.Text(field); v != "" {
			counts[v]++
		}
	}

	if len(labels) == 0 {
		labels = make([]string, 0, len(counts))
		for v := range counts {
			labels = append(labels, v)
		}
		slices.Sort(labels)
	}

	out := make([]domain.CategoryCount, 0, len(labels))
	for _, label := range labels {
		out = append(out, domain.CategoryCount{Label: label, Count: counts[label]})
	}
	return out
}

// Values extracts the raw values of field, skipping records where it is absent.
func Values(records []domain.Record, field string) []any {
	out := make([]any, 0, len(records))
	for _, r := range records {
		if r.Has(field) {
			out = append(out, r[field])
		}
	}
	return out
}

// Numbers extracts the parseable values of field and reports how many
// present values were rejected.
func Numbers(records []domain.Record, field string) ([]float64, int) {
	out := make([]float64, 0, len(records))
	rejected := 0
	for _, r := range records {
		if !r.Has(field) {
			continue
		}
		if v, ok := r.Number(field); ok {
			out = append(out, v)
		} else {
			rejected++
		}
	}
	return out, rejected
}

// DataRange returns the earliest and latest readable timestamps of dateField.
func DataRange(records []domain.Record, dateField string) *domain.DateRange {
	var rng *domain.DateRange
	for _, r := range records {
		t, ok := r.Time(dateField)
		if !ok {
			continue
		}
		if rng == nil {
			rng = &domain.DateRange{First: t, Last: t}
			continue
		}
		if t.Before(rng.First) {
			rng.First = t
		}
		if t.After(rng.Last) {
			rng.Last = t
		}
	}
	return rng
}
