package analytics_test

import (
	"testing"

	"github.com/lorrc/service-desk-dashboard/internal/core/analytics"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	records := []domain.Record{
		{"agent": "A", "value": "10"},
		{"agent": "A", "value": "20"},
		{"agent": "B", "value": "abc"},
		{"agent": "B", "value": "5"},
	}

	rows := analytics.Aggregate(records, "agent", "value")

	assert.Equal(t, []domain.AggregateRow{
		{Group: "A", Average: 15, Count: 2},
		{Group: "B", Average: 5, Count: 1},
	}, rows)
	assert.Equal(t, []string{"A", "B"}, analytics.GroupNames(rows))
}

func TestAggregate_OrderIndependentOfInput(t *testing.T) {
	records := []domain.Record{
		{"agent": "Carla", "value": 3.0},
		{"agent": "Ana", "value": 1.0},
		{"agent": "Bruno", "value": 2.0},
		{"agent": "Ana", "value": 5.0},
	}

	rows := analytics.Aggregate(records, "agent", "value")

	assert.Equal(t, []string{"Ana", "Bruno", "Carla"}, analytics.GroupNames(rows))
	assert.Equal(t, 3.0, rows[0].Average)
}

func TestAggregate_GroupWithoutParseableValuesIsOmitted(t *testing.T) {
	records := []domain.Record{
		{"agent": "A", "value": 1},
		{"agent": "Z", "value": "n/a"},
		{"agent": "Z", "value": nil},
		{"value": 4},
	}

	rows := analytics.Aggregate(records, "agent", "value")

	assert.Equal(t, []domain.AggregateRow{{Group: "A", Average: 1, Count: 1}}, rows)
}

func TestAggregate_Empty(t *testing.T) {
	rows := analytics.Aggregate(nil, "agent", "value")
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
