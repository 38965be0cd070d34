package domain_test

import (
	"testing"
	"time"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterState_Toggle(t *testing.T) {
	t.Run("unset to selected", func(t *testing.T) {
		s := domain.NewFilterState()

		tr := s.Toggle(domain.FieldPriority, "Alta")

		assert.Equal(t, domain.TransitionSelected, tr)
		assert.Equal(t, "Alta", s.Filters[domain.FieldPriority])
		assert.Equal(t, "Alta", s.LastClicked[domain.FieldPriority])
	})

	t.Run("same value toggles off", func(t *testing.T) {
		s := domain.NewFilterState()
		s.Toggle(domain.FieldPriority, "Alta")

		tr := s.Toggle(domain.FieldPriority, "Alta")

		assert.Equal(t, domain.TransitionCleared, tr)
		_, ok := s.Selection(domain.FieldPriority)
		assert.False(t, ok)
		assert.NotContains(t, s.LastClicked, domain.FieldPriority)
	})

	t.Run("different value replaces", func(t *testing.T) {
		s := domain.NewFilterState()
		s.Toggle(domain.FieldPriority, "Alta")

		tr := s.Toggle(domain.FieldPriority, "Baixa")

		assert.Equal(t, domain.TransitionReplaced, tr)
		assert.Equal(t, map[string]string{domain.FieldPriority: "Baixa"}, s.Filters)
		assert.Equal(t, map[string]string{domain.FieldPriority: "Baixa"}, s.LastClicked)
	})
}

func TestFilterState_Apply(t *testing.T) {
	s := domain.NewFilterState()

	assert.Equal(t, domain.TransitionSelected, s.Apply(domain.FieldRating, "Ótimo"))
	assert.Equal(t, domain.TransitionNone, s.Apply(domain.FieldRating, "Ótimo"))
	assert.Equal(t, "Ótimo", s.Filters[domain.FieldRating])

	assert.Equal(t, domain.TransitionCleared, s.Apply(domain.FieldRating, domain.FilterAll))
	assert.Empty(t, s.Filters)
	assert.Equal(t, domain.TransitionNone, s.Apply(domain.FieldRating, ""))
}

func TestFilterState_ClearFieldsKeepsPeriod(t *testing.T) {
	s := domain.NewFilterState()
	w, err := domain.NewPeriodWindow(day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	s.SetPeriod(w)
	s.Toggle(domain.FieldPriority, "Alta")
	s.Toggle(domain.FieldAgent, "Ana")

	s.ClearFields()

	assert.True(t, s.HasPeriod())
	assert.Empty(t, s.Filters)
	assert.Empty(t, s.LastClicked)
}

func TestFilterState_ClearPeriodResetsEverything(t *testing.T) {
	s := domain.NewFilterState()
	w, err := domain.NewPeriodWindow(day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	s.SetPeriod(w)
	s.Toggle(domain.FieldAgent, "Ana")

	s.ClearPeriod()

	assert.False(t, s.HasPeriod())
	assert.Empty(t, s.Filters)
	assert.Empty(t, s.LastClicked)
}

func TestFilterState_CloneIsIndependent(t *testing.T) {
	s := domain.NewFilterState()
	w, err := domain.NewPeriodWindow(day(2024, 1, 1), day(2024, 1, 2))
	require.NoError(t, err)
	s.SetPeriod(w)
	s.Toggle(domain.FieldAgent, "Ana")

	c := s.Clone()
	s.Toggle(domain.FieldAgent, "Bruno")
	s.Period.End = day(2025, 1, 1)

	assert.Equal(t, "Ana", c.Filters[domain.FieldAgent])
	assert.Equal(t, day(2024, 1, 2), c.Period.End)
}

func TestFilterState_ActiveFilters(t *testing.T) {
	s := domain.NewFilterState()
	s.Filters[domain.FieldPriority] = domain.FilterAll
	s.Filters[domain.FieldAgent] = "Ana"
	s.Filters[domain.FieldRating] = ""

	assert.Equal(t, map[string]string{domain.FieldAgent: "Ana"}, s.ActiveFilters())
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
