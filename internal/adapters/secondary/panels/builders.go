package panels

import (
	"github.com/lorrc/service-desk-dashboard/internal/core/analytics"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

// PlaceholderMessage is shown while the dashboard waits for a period.
const PlaceholderMessage = "Select a period to load the dashboard"

// DefaultPriorityLabels and DefaultRatingLabels are the category orders of
// the priority and satisfaction charts.
var (
	DefaultPriorityLabels = []string{"Alta", "Média", "Baixa"}
	DefaultRatingLabels   = []string{"Ótimo", "Bom", "Regular", "Ruim"}
)

// DefaultTableColumns lists the dataset fields shown in the table.
var DefaultTableColumns = []string{
	domain.FieldTicketCode,
	domain.FieldCustomer,
	domain.FieldDescription,
	domain.FieldAgent,
	domain.FieldPriority,
	domain.FieldRating,
	domain.FieldRequestedAt,
	domain.FieldStartHours,
	domain.FieldResolutionHours,
}

// BuildPlaceholder describes the resting state of a section.
func BuildPlaceholder(view *domain.DerivedView) PlaceholderModel {
	return PlaceholderModel{
		Placeholder: true,
		Message:     PlaceholderMessage,
		DataRange:   view.DataRange,
	}
}

// BuildTimeline lists the filtered tickets in record order.
func BuildTimeline(view *domain.DerivedView, startField, resolutionField string) TimelineModel {
	m := TimelineModel{
		Categories: make([]string, 0, len(view.Records)),
		Start:      make([]*float64, 0, len(view.Records)),
		Resolution: make([]*float64, 0, len(view.Records)),
	}
	for _, r := range view.Records {
		m.Categories = append(m.Categories, r.Text(domain.FieldTicketCode))

		start, hasStart := r.Number(startField)
		resolution, hasResolution := r.Number(resolutionField)

		if hasStart {
			m.Start = append(m.Start, &start)
		} else {
			m.Start = append(m.Start, nil)
		}
		if hasResolution {
			rest := resolution
			if hasStart {
				rest -= start
			}
			m.Resolution = append(m.Resolution, &rest)
		} else {
			m.Resolution = append(m.Resolution, nil)
		}
	}
	return m
}

// BuildPerformance turns the aggregates into banded bars.
func BuildPerformance(view *domain.DerivedView, bands Bands) PerformanceModel {
	field := view.Roles.GroupField
	selected, _ := view.Selected(field)

	bars := make([]PerformanceBar, 0, len(view.Aggregates))
	for _, row := range view.Aggregates {
		bars = append(bars, PerformanceBar{
			Group:    row.Group,
			Average:  row.Average,
			Count:    row.Count,
			Band:     bands.Classify(row.Average),
			Selected: selected != "" && row.Group == selected,
		})
	}
	return PerformanceModel{Field: field, Bars: bars, Selected: selected}
}

// BuildBreakdown counts the filtered records per label of field.
func BuildBreakdown(view *domain.DerivedView, field string, labels []string) BreakdownModel {
	selected, _ := view.Selected(field)

	counts := analytics.CountBy(view.Records, field, labels)
	slices := make([]Slice, 0, len(counts))
	total := 0
	for _, c := range counts {
		slices = append(slices, Slice{
			Label:    c.Label,
			Count:    c.Count,
			Selected: selected != "" && c.Label == selected,
		})
		total += c.Count
	}
	return BreakdownModel{Field: field, Slices: slices, Total: total, Selected: selected}
}

// BuildTable renders every filtered record as strings in column order.
func BuildTable(view *domain.DerivedView, columns []string) TableModel {
	rows := make([][]string, 0, len(view.Records))
	for _, r := range view.Records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = r.Text(col)
		}
		rows = append(rows, row)
	}
	return TableModel{Columns: columns, Rows: rows, Total: len(rows)}
}

// BuildStatistics copies the statistics of view into the panel model.
func BuildStatistics(view *domain.DerivedView) StatisticsModel {
	return StatisticsModel{
		Records:      len(view.Records),
		ValueField:   view.Roles.ValueField,
		Value:        view.Statistics.Value,
		Priority:     view.Statistics.Priority,
		Satisfaction: view.Statistics.Satisfaction,
		Excluded:     view.Statistics.Excluded,
		Period:       view.Period,
		DataRange:    view.DataRange,
	}
}
