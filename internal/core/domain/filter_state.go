package domain

import "maps"

// FilterAll is the sentinel value a filter control uses for "no restriction".
const FilterAll = "all"

// Transition describes what a click did to a field.
type Transition string

const (
	TransitionSelected Transition = "SELECTED"
	TransitionReplaced Transition = "REPLACED"
	TransitionCleared  Transition = "CLEARED"
	TransitionNone     Transition = "NONE"
)

// FilterState holds the period window and the single-select field filters
// of one dashboard session. It is not safe for concurrent use; the owning
// controller serialises access.
type FilterState struct {
	Period      *PeriodWindow     `json:"period,omitempty"`
	Filters     map[string]string `json:"filters"`
	LastClicked map[string]string `json:"lastClicked"`
}

// NewFilterState returns the initial state: no period, no filters.
func NewFilterState() *FilterState {
	return &FilterState{
		Filters:     make(map[string]string),
		LastClicked: make(map[string]string),
	}
}

// HasPeriod reports whether the mandatory period window is set.
func (s *FilterState) HasPeriod() bool {
	return s.Period != nil
}

// SetPeriod replaces the period window. Field filters are kept.
func (s *FilterState) SetPeriod(w *PeriodWindow) {
	s.Period = w
}

// ClearPeriod removes the period window together with every field filter,
// returning the session to its initial state.
func (s *FilterState) ClearPeriod() {
	s.Period = nil
	s.ClearFields()
}

// Toggle applies a click on (field, value):
//
//	Unset            -> Selected(value)
//	Selected(value)  -> Unset
//	Selected(other)  -> Selected(value)
func (s *FilterState) Toggle(field, value string) Transition {
	current, ok := s.Filters[field]
	switch {
	case ok && current == value:
		s.ClearField(field)
		return TransitionCleared
	case ok:
		s.set(field, value)
		return TransitionReplaced
	default:
		s.set(field, value)
		return TransitionSelected
	}
}

// Apply sets a field filter without toggle semantics. Applying the current
// value again is a no-op. An empty or "all" value clears the field.
func (s *FilterState) Apply(field, value string) Transition {
	if !IsActiveFilterValue(value) {
		if _, ok := s.Filters[field]; !ok {
			return TransitionNone
		}
		s.ClearField(field)
		return TransitionCleared
	}
	current, ok := s.Filters[field]
	switch {
	case ok && current == value:
		return TransitionNone
	case ok:
		s.set(field, value)
		return TransitionReplaced
	default:
		s.set(field, value)
		return TransitionSelected
	}
}

// ClearField removes the filter and last-clicked entries of one field.
func (s *FilterState) ClearField(field string) {
	delete(s.Filters, field)
	delete(s.LastClicked, field)
}

// ClearFields removes every field filter. The period window is untouched.
func (s *FilterState) ClearFields() {
	clear(s.Filters)
	clear(s.LastClicked)
}

// Selection returns the selected value of a field, if any.
func (s *FilterState) Selection(field string) (string, bool) {
	v, ok := s.Filters[field]
	return v, ok
}

// ActiveFilters returns the filters that restrict the record set.
func (s *FilterState) ActiveFilters() map[string]string {
	active := make(map[string]string, len(s.Filters))
	for field, value := range s.Filters {
		if IsActiveFilterValue(value) {
			active[field] = value
		}
	}
	return active
}

// Clone returns a deep copy safe to hand to a deferred recompute.
func (s *FilterState) Clone() *FilterState {
	c := &FilterState{
		Filters:     maps.Clone(s.Filters),
		LastClicked: maps.Clone(s.LastClicked),
	}
	if c.Filters == nil {
		c.Filters = make(map[string]string)
	}
	if c.LastClicked == nil {
		c.LastClicked = make(map[string]string)
	}
	if s.Period != nil {
		p := *s.Period
		c.Period = &p
	}
	return c
}

func (s *FilterState) set(field, value string) {
	s.Filters[field] = value
	s.LastClicked[field] = value
}

// IsActiveFilterValue reports whether a filter value restricts records.
func IsActiveFilterValue(value string) bool {
	return value != "" && value != FilterAll
}
