// Package analytics holds the pure computations behind the dashboard:
// record filtering, per-group aggregation and descriptive statistics.
// Nothing in this package keeps state between calls.
package analytics

import (
	"math"
	"slices"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

// Summarize describes a sequence of raw values. Frequencies, modes and the
// distinct count are always computed; the numeric members are filled only
// when every value parses as a finite number. An empty input yields nil.
func Summarize(values []any) *domain.StatisticsSummary {
	if len(values) == 0 {
		return nil
	}

	summary := &domain.StatisticsSummary{
		Count:       len(values),
		Frequencies: make(map[string]int, len(values)),
	}

	order := make([]string, 0, len(values))
	numbers := make([]float64, 0, len(values))
	numeric := true

	for _, v := range values {
		key := domain.TextOf(v)
		if _, seen := summary.Frequencies[key]; !seen {
			order = append(order, key)
		}
		summary.Frequencies[key]++

		if numeric {
			if f, ok := domain.NumberOf(v); ok {
				numbers = append(numbers, f)
			} else {
				numeric = false
			}
		}
	}

	summary.Distinct = len(summary.Frequencies)
	summary.Modes = modes(order, summary.Frequencies)

	if numeric {
		describe(summary, numbers)
	}
	return summary
}

// SummarizeNumbers is Summarize for an already-parsed numeric sequence.
func SummarizeNumbers(values []float64) *domain.StatisticsSummary {
	raw := make([]any, len(values))
	for i, v := range values {
		raw[i] = v
	}
	return Summarize(raw)
}

// modes returns every key tied at the highest frequency, in first-seen order.
func modes(order []string, freq map[string]int) []string {
	highest := 0
	for _, n := range freq {
		highest = max(highest, n)
	}
	out := make([]string, 0, 1)
	for _, key := range order {
		if freq[key] == highest {
			out = append(out, key)
		}
	}
	return out
}

// describe fills the numeric members. The standard deviation is the
// population form: the square root of the mean squared deviation.
func describe(summary *domain.StatisticsSummary, numbers []float64) {
	sorted := slices.Clone(numbers)
	slices.Sort(sorted)
	n := len(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var squared float64
	for _, v := range sorted {
		d := v - mean
		squared += d * d
	}

	summary.Numeric = true
	summary.Sum = sum
	summary.Mean = mean
	summary.Median = median(sorted)
	summary.Min = sorted[0]
	summary.Max = sorted[n-1]
	summary.StdDev = math.Sqrt(squared / float64(n))
}

// median expects an ascending, non-empty slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
