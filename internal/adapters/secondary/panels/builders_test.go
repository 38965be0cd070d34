package panels_test

import (
	"testing"
	"time"

	"github.com/lorrc/service-desk-dashboard/internal/adapters/secondary/panels"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() *domain.DerivedView {
	return &domain.DerivedView{
		Sequence: 4,
		Roles:    domain.DefaultFieldRoles(),
		Records: []domain.Record{
			{"codigo_atendimento": "AT-1", "atendente": "Ana", "prioridade": "Alta", "nota": "Bom", "tempo_inicio_hrs": 2.0, "tempo_resolucao_hrs": 6.0, "data_solicitacao": time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
			{"codigo_atendimento": "AT-2", "atendente": "Bruno", "prioridade": "Alta", "nota": "Ruim", "tempo_inicio_hrs": "x", "tempo_resolucao_hrs": 25.0},
			{"codigo_atendimento": "AT-3", "atendente": "Carla", "prioridade": "Baixa", "nota": "Bom", "tempo_inicio_hrs": 1.0},
		},
		Aggregates: []domain.AggregateRow{
			{Group: "Ana", Average: 6, Count: 1},
			{Group: "Bruno", Average: 25, Count: 1},
			{Group: "Carla", Average: 15, Count: 2},
		},
		LastClicked: map[string]string{domain.FieldAgent: "Bruno", domain.FieldPriority: "Alta"},
	}
}

func TestBands_Classify(t *testing.T) {
	bands := panels.DefaultBands()

	tests := []struct {
		average float64
		want    panels.Band
	}{
		{0, panels.BandGood},
		{9.99, panels.BandGood},
		{10, panels.BandMedium},
		{19.5, panels.BandMedium},
		{20, panels.BandBad},
		{200, panels.BandBad},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bands.Classify(tt.average), "average %v", tt.average)
	}
}

func TestBuildTimeline(t *testing.T) {
	m := panels.BuildTimeline(sampleView(), domain.FieldStartHours, domain.FieldResolutionHours)

	assert.Equal(t, []string{"AT-1", "AT-2", "AT-3"}, m.Categories)
	require.Len(t, m.Start, 3)
	require.Len(t, m.Resolution, 3)

	require.NotNil(t, m.Start[0])
	assert.Equal(t, 2.0, *m.Start[0])
	require.NotNil(t, m.Resolution[0])
	assert.Equal(t, 4.0, *m.Resolution[0])

	// unparseable start: the whole resolution time stacks on nothing
	assert.Nil(t, m.Start[1])
	require.NotNil(t, m.Resolution[1])
	assert.Equal(t, 25.0, *m.Resolution[1])

	assert.Nil(t, m.Resolution[2])
}

func TestBuildPerformance(t *testing.T) {
	m := panels.BuildPerformance(sampleView(), panels.DefaultBands())

	assert.Equal(t, domain.FieldAgent, m.Field)
	assert.Equal(t, "Bruno", m.Selected)
	assert.Equal(t, []panels.PerformanceBar{
		{Group: "Ana", Average: 6, Count: 1, Band: panels.BandGood},
		{Group: "Bruno", Average: 25, Count: 1, Band: panels.BandBad, Selected: true},
		{Group: "Carla", Average: 15, Count: 2, Band: panels.BandMedium},
	}, m.Bars)
}

func TestBuildBreakdown(t *testing.T) {
	view := sampleView()

	priority := panels.BuildBreakdown(view, domain.FieldPriority, panels.DefaultPriorityLabels)
	assert.Equal(t, []panels.Slice{
		{Label: "Alta", Count: 2, Selected: true},
		{Label: "Média", Count: 0},
		{Label: "Baixa", Count: 1},
	}, priority.Slices)
	assert.Equal(t, 3, priority.Total)
	assert.Equal(t, "Alta", priority.Selected)

	rating := panels.BuildBreakdown(view, domain.FieldRating, panels.DefaultRatingLabels)
	assert.Empty(t, rating.Selected)
	for _, s := range rating.Slices {
		assert.False(t, s.Selected)
	}
}

func TestBuildTable(t *testing.T) {
	m := panels.BuildTable(sampleView(), []string{domain.FieldTicketCode, domain.FieldRequestedAt, domain.FieldResolutionHours})

	assert.Equal(t, 3, m.Total)
	assert.Equal(t, []string{"AT-1", "2024-03-01 08:00:00", "6"}, m.Rows[0])
	assert.Equal(t, []string{"AT-3", "", ""}, m.Rows[2])
}

func TestBuildStatistics(t *testing.T) {
	view := sampleView()
	view.Statistics = domain.PanelStatistics{
		Value:    &domain.StatisticsSummary{Count: 2, Numeric: true, Mean: 15.5},
		Excluded: 1,
	}

	m := panels.BuildStatistics(view)

	assert.Equal(t, 3, m.Records)
	assert.Equal(t, domain.FieldResolutionHours, m.ValueField)
	assert.Equal(t, 15.5, m.Value.Mean)
	assert.Equal(t, 1, m.Excluded)
}
