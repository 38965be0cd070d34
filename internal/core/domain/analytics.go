package domain

import (
	"errors"
	"time"
)

// ErrFieldRoleMissing is returned when a required field role is not configured.
var ErrFieldRoleMissing = errors.New("required field role is not configured")

// FieldRoles names which record fields play which semantic role.
type FieldRoles struct {
	GroupField string `json:"groupField"`
	ValueField string `json:"valueField"`
	DateField  string `json:"dateField"`
}

// DefaultFieldRoles groups tickets by agent and measures resolution hours.
func DefaultFieldRoles() FieldRoles {
	return FieldRoles{
		GroupField: FieldAgent,
		ValueField: FieldResolutionHours,
		DateField:  FieldRequestedAt,
	}
}

// Missing returns the names of unset roles.
func (r FieldRoles) Missing() []string {
	var missing []string
	if r.GroupField == "" {
		missing = append(missing, "groupField")
	}
	if r.ValueField == "" {
		missing = append(missing, "valueField")
	}
	if r.DateField == "" {
		missing = append(missing, "dateField")
	}
	return missing
}

// Validate fails with ErrFieldRoleMissing when any role is unset.
func (r FieldRoles) Validate() error {
	if len(r.Missing()) > 0 {
		return ErrFieldRoleMissing
	}
	return nil
}

// AggregateRow is the per-group average of the value field.
type AggregateRow struct {
	Group   string  `json:"group"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// StatisticsSummary describes a sequence of values. The numeric members are
// only meaningful when Numeric is true.
type StatisticsSummary struct {
	Count       int            `json:"count"`
	Frequencies map[string]int `json:"frequencies"`
	Modes       []string       `json:"modes"`
	Distinct    int            `json:"distinct"`
	Numeric     bool           `json:"numeric"`
	Sum         float64        `json:"sum,omitempty"`
	Mean        float64        `json:"mean,omitempty"`
	Median      float64        `json:"median,omitempty"`
	Min         float64        `json:"min,omitempty"`
	Max         float64        `json:"max,omitempty"`
	StdDev      float64        `json:"stdDev,omitempty"`
}

// CategoryCount is one slice of a categorical breakdown.
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DateRange is the span of timestamps present in the loaded data.
type DateRange struct {
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}

// PanelStatistics is the content of the statistics panel.
type PanelStatistics struct {
	Value        *StatisticsSummary `json:"value,omitempty"`
	Priority     *StatisticsSummary `json:"priority,omitempty"`
	Satisfaction *StatisticsSummary `json:"satisfaction,omitempty"`
	Excluded     int                `json:"excluded"`
}

// DerivedView is the immutable result of one recompute. Renderers only ever
// receive complete views.
type DerivedView struct {
	Sequence    uint64            `json:"sequence"`
	Placeholder bool              `json:"placeholder"`
	Roles       FieldRoles        `json:"roles"`
	Period      *PeriodWindow     `json:"period,omitempty"`
	Filters     map[string]string `json:"filters"`
	LastClicked map[string]string `json:"lastClicked"`
	Records     []Record          `json:"records"`
	Aggregates  []AggregateRow    `json:"aggregates"`
	Groups      []string          `json:"groups"`
	Statistics  PanelStatistics   `json:"statistics"`
	DataRange   *DateRange        `json:"dataRange,omitempty"`
	ComputedAt  time.Time         `json:"computedAt"`
}

// Selected returns the last-clicked value of field, if any.
func (v *DerivedView) Selected(field string) (string, bool) {
	value, ok := v.LastClicked[field]
	return value, ok
}

// RefreshTicket tells the caller which recompute was scheduled and which
// panels it will refresh. An empty Sections list means every panel.
type RefreshTicket struct {
	Sequence   uint64     `json:"sequence"`
	Transition Transition `json:"transition"`
	Sections   []Section  `json:"sections"`
	Highlight  Section    `json:"highlight,omitempty"`
}

// Highlight is the selection state pushed to a panel that owns a filter field.
type Highlight struct {
	Section  Section `json:"section"`
	Field    string  `json:"field"`
	Value    string  `json:"value,omitempty"`
	Active   bool    `json:"active"`
	Sequence uint64  `json:"sequence"`
}
