package analytics_test

import (
	"testing"

	"github.com/lorrc/service-desk-dashboard/internal/core/analytics"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestCountBy(t *testing.T) {
	records := fixtureRecords()

	t.Run("follows configured labels", func(t *testing.T) {
		got := analytics.CountBy(records, domain.FieldPriority, []string{"Alta", "Média", "Baixa", "Urgente"})
		assert.Equal(t, []domain.CategoryCount{
			{Label: "Alta", Count: 4},
			{Label: "Média", Count: 1},
			{Label: "Baixa", Count: 1},
			{Label: "Urgente", Count: 0},
		}, got)
	})

	t.Run("falls back to observed values", func(t *testing.T) {
		got := analytics.CountBy(records, domain.FieldRating, nil)
		assert.Equal(t, []domain.CategoryCount{
			{Label: "Bom", Count: 3},
			{Label: "Ruim", Count: 1},
			{Label: "Ótimo", Count: 2},
		}, got)
	})
}

func TestNumbers(t *testing.T) {
	records := []domain.Record{{"v": 1}, {"v": "x"}, {"v": nil}, {}, {"v": "2.5"}}

	got, rejected := analytics.Numbers(records, "v")

	assert.Equal(t, []float64{1, 2.5}, got)
	assert.Equal(t, 1, rejected)
}

func TestDataRange_Empty(t *testing.T) {
	assert.Nil(t, analytics.DataRange([]domain.Record{{"d": "nope"}}, "d"))
}
