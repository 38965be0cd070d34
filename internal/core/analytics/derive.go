package analytics

import (
	"fmt"
	"maps"
	"strings"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

// DeriveInput is everything one recompute pass reads.
type DeriveInput struct {
	Records       []domain.Record
	State         *domain.FilterState
	Roles         domain.FieldRoles
	PriorityField string
	RatingField   string
}

// Derive runs the pipeline, the aggregator and the statistics over a state
// snapshot and returns a complete view. Missing field roles produce an empty
// placeholder view together with an error wrapping domain.ErrFieldRoleMissing;
// a missing period window produces a placeholder view and no error.
func Derive(in DeriveInput) (*domain.DerivedView, error) {
	view := &domain.DerivedView{
		Roles:       in.Roles,
		Filters:     map[string]string{},
		LastClicked: map[string]string{},
		Records:     []domain.Record{},
		Aggregates:  []domain.AggregateRow{},
		Groups:      []string{},
	}
	if in.State != nil {
		view.Period = in.State.Period
		view.Filters = maps.Clone(in.State.ActiveFilters())
		if in.State.LastClicked != nil {
			view.LastClicked = maps.Clone(in.State.LastClicked)
		}
	}

	if err := in.Roles.Validate(); err != nil {
		view.Placeholder = true
		return view, fmt.Errorf("derive: missing %s: %w", strings.Join(in.Roles.Missing(), ", "), err)
	}

	view.DataRange = DataRange(in.Records, in.Roles.DateField)

	if in.State == nil || !in.State.HasPeriod() {
		view.Placeholder = true
		return view, nil
	}

	filtered := Filter(in.Records, in.State, in.Roles.DateField)
	view.Records = filtered
	view.Aggregates = Aggregate(filtered, in.Roles.GroupField, in.Roles.ValueField)
	view.Groups = GroupNames(view.Aggregates)

	numbers, rejected := Numbers(filtered, in.Roles.ValueField)
	view.Statistics = domain.PanelStatistics{
		Value:    SummarizeNumbers(numbers),
		Excluded: rejected,
	}
	if in.PriorityField != "" {
		view.Statistics.Priority = Summarize(Values(filtered, in.PriorityField))
	}
	if in.RatingField != "" {
		view.Statistics.Satisfaction = Summarize(Values(filtered, in.RatingField))
	}

	return view, nil
}
