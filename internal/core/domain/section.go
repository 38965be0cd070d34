package domain

// Section identifies one visual panel of the dashboard.
type Section string

const (
	SectionStatistics   Section = "statistics"
	SectionTimeline     Section = "timeline"
	SectionPerformance  Section = "performance"
	SectionPriority     Section = "priority"
	SectionSatisfaction Section = "satisfaction"
	SectionTable        Section = "table"
)

// AllSections lists every panel in render order.
var AllSections = []Section{
	SectionStatistics,
	SectionTimeline,
	SectionPerformance,
	SectionPriority,
	SectionSatisfaction,
	SectionTable,
}

// IsValid reports whether s names a known panel.
func (s Section) IsValid() bool {
	for _, known := range AllSections {
		if s == known {
			return true
		}
	}
	return false
}

// SectionRule declares which panel owns a filter field and which panels
// must refresh when that field's filter changes. The owner is refreshed
// with highlight state instead of new data.
type SectionRule struct {
	Field    string    `json:"field"`
	Owner    Section   `json:"owner"`
	Affected []Section `json:"affected"`
}

// SectionRules maps filter fields to their rule.
type SectionRules map[string]SectionRule

// DefaultSectionRules returns the static configuration of the ticket dashboard.
func DefaultSectionRules() SectionRules {
	return NewSectionRules(FieldAgent, FieldPriority, FieldRating)
}

// NewSectionRules builds the rule table for the given group, priority and
// rating fields. Empty fields get no rule.
func NewSectionRules(groupField, priorityField, ratingField string) SectionRules {
	rules := SectionRules{}
	add := func(field string, owner Section) {
		if field == "" {
			return
		}
		affected := make([]Section, 0, len(AllSections)-1)
		for _, s := range AllSections {
			if s != owner {
				affected = append(affected, s)
			}
		}
		rules[field] = SectionRule{Field: field, Owner: owner, Affected: affected}
	}
	add(priorityField, SectionPriority)
	add(ratingField, SectionSatisfaction)
	add(groupField, SectionPerformance)
	return rules
}

// Affected returns the panels to refresh after field changes. Fields
// without a rule affect every panel.
func (r SectionRules) Affected(field string) []Section {
	rule, ok := r[field]
	if !ok {
		return append([]Section(nil), AllSections...)
	}
	return append([]Section(nil), rule.Affected...)
}

// Owner returns the panel that owns field, if one is declared.
func (r SectionRules) Owner(field string) (Section, bool) {
	rule, ok := r[field]
	if !ok || rule.Owner == "" {
		return "", false
	}
	return rule.Owner, true
}
