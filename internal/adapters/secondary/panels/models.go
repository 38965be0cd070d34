// Package panels turns derived dashboard views into render-ready view
// models, one per section, and pushes them to connected clients.
package panels

import (
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

// Band classifies an agent's average resolution time.
type Band string

const (
	BandGood   Band = "good"
	BandMedium Band = "medium"
	BandBad    Band = "bad"
)

// Bands holds the upper bounds, exclusive, of the good and medium bands.
type Bands struct {
	Good   float64 `json:"good"`
	Medium float64 `json:"medium"`
}

// DefaultBands returns the thresholds used by the service-desk dashboard.
func DefaultBands() Bands {
	return Bands{Good: 10, Medium: 20}
}

// Classify places an average into its band.
func (b Bands) Classify(average float64) Band {
	switch {
	case average < b.Good:
		return BandGood
	case average < b.Medium:
		return BandMedium
	default:
		return BandBad
	}
}

// PlaceholderModel is sent instead of a section model while no period is chosen.
type PlaceholderModel struct {
	Placeholder bool              `json:"placeholder"`
	Message     string            `json:"message"`
	DataRange   *domain.DateRange `json:"dataRange,omitempty"`
}

// TimelineModel is a stacked bar series per ticket: hours until work
// started, then the remaining hours until resolution. Missing values are null.
type TimelineModel struct {
	Categories []string   `json:"categories"`
	Start      []*float64 `json:"start"`
	Resolution []*float64 `json:"resolution"`
}

// PerformanceBar is one agent's average resolution time.
type PerformanceBar struct {
	Group    string  `json:"group"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
	Band     Band    `json:"band"`
	Selected bool    `json:"selected"`
}

// PerformanceModel is the per-agent bar chart.
type PerformanceModel struct {
	Field    string           `json:"field"`
	Bars     []PerformanceBar `json:"bars"`
	Selected string           `json:"selected,omitempty"`
}

// Slice is one category of a pie chart.
type Slice struct {
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// BreakdownModel is a categorical pie chart over one field.
type BreakdownModel struct {
	Field    string  `json:"field"`
	Slices   []Slice `json:"slices"`
	Total    int     `json:"total"`
	Selected string  `json:"selected,omitempty"`
}

// TableModel is the raw data table.
type TableModel struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

// StatisticsModel is the statistics panel.
type StatisticsModel struct {
	Records      int                       `json:"records"`
	ValueField   string                    `json:"valueField"`
	Value        *domain.StatisticsSummary `json:"value,omitempty"`
	Priority     *domain.StatisticsSummary `json:"priority,omitempty"`
	Satisfaction *domain.StatisticsSummary `json:"satisfaction,omitempty"`
	Excluded     int                       `json:"excluded"`
	Period       *domain.PeriodWindow      `json:"period,omitempty"`
	DataRange    *domain.DateRange         `json:"dataRange,omitempty"`
}
