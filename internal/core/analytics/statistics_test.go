package analytics_test

import (
	"testing"

	"github.com/lorrc/service-desk-dashboard/internal/core/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_Numeric(t *testing.T) {
	s := analytics.Summarize([]any{2, 4, 4, 4, 5, 5, 7, 9})
	require.NotNil(t, s)

	assert.True(t, s.Numeric)
	assert.Equal(t, 8, s.Count)
	assert.InDelta(t, 40.0, s.Sum, 1e-9)
	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	assert.InDelta(t, 4.5, s.Median, 1e-9)
	assert.Equal(t, []string{"4"}, s.Modes)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	// population form: sqrt(32 / 8)
	assert.InDelta(t, 2.0, s.StdDev, 1e-9)
	assert.Equal(t, 5, s.Distinct)
	assert.Equal(t, 3, s.Frequencies["4"])
}

func TestSummarize_OddLengthMedian(t *testing.T) {
	s := analytics.Summarize([]any{9.0, "1", 5})
	require.NotNil(t, s)

	assert.True(t, s.Numeric)
	assert.Equal(t, 5.0, s.Median)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, []string{"9", "1", "5"}, s.Modes)
}

func TestSummarize_TiedModes(t *testing.T) {
	s := analytics.Summarize([]any{"Alta", "Baixa", "Média", "Baixa", "Alta"})
	require.NotNil(t, s)

	assert.False(t, s.Numeric)
	assert.Equal(t, []string{"Alta", "Baixa"}, s.Modes)
	assert.Equal(t, 3, s.Distinct)
	assert.Zero(t, s.Mean)
	assert.Zero(t, s.StdDev)
}

func TestSummarize_MixedIsNotNumeric(t *testing.T) {
	s := analytics.Summarize([]any{1, 2, "abc"})
	require.NotNil(t, s)

	assert.False(t, s.Numeric)
	assert.Equal(t, 3, s.Count)
	assert.Zero(t, s.Sum)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Nil(t, analytics.Summarize(nil))
	assert.Nil(t, analytics.SummarizeNumbers([]float64{}))
}

func TestSummarize_DoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	s := analytics.SummarizeNumbers(in)
	require.NotNil(t, s)

	assert.Equal(t, []float64{3, 1, 2}, in)
	assert.Equal(t, 2.0, s.Median)
}
