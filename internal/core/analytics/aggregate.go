package analytics

import (
	"slices"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

type groupAccumulator struct {
	sum   float64
	count int
}

// Aggregate averages valueField per distinct groupField key. Records whose
// value does not parse are left out of both the sum and the count of their
// group; a group with no parseable value is omitted. Records without a group
// key are skipped. Rows are ordered by group key ascending.
func Aggregate(records []domain.Record, groupField, valueField string) []domain.AggregateRow {
	groups := make(map[string]*groupAccumulator)

	for _, r := range records {
		key := r.Text(groupField)
		if key == "" {
			continue
		}
		v, ok := r.Number(valueField)
		if !ok {
			continue
		}
		acc, exists := groups[key]
		if !exists {
			acc = &groupAccumulator{}
			groups[key] = acc
		}
		acc.sum += v
		acc.count++
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	rows := make([]domain.AggregateRow, 0, len(keys))
	for _, key := range keys {
		acc := groups[key]
		rows = append(rows, domain.AggregateRow{
			Group:   key,
			Average: acc.sum / float64(acc.count),
			Count:   acc.count,
		})
	}
	return rows
}

// GroupNames returns the group keys of rows, in row order.
func GroupNames(rows []domain.AggregateRow) []string {
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Group
	}
	return names
}
