package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeMedian(t *testing.T) {
	med, lo, hi := Summarize([]float64{5, 1, 3, 2, 4}, 42)
	assert.Equal(t, 3.0, med)
	assert.GreaterOrEqual(t, lo, 1.0)
	assert.LessOrEqual(t, hi, 5.0)
	assert.LessOrEqual(t, lo, hi)
}

func TestSummarizeEvenLength(t *testing.T) {
	med, _, _ := Summarize([]float64{1, 2, 3, 4}, 42)
	assert.Equal(t, 2.5, med)
}

func TestSummarizeConstantSeries(t *testing.T) {
	med, lo, hi := Summarize([]float64{7, 7, 7, 7}, 9)
	assert.Equal(t, 7.0, med)
	assert.Equal(t, 7.0, lo)
	assert.Equal(t, 7.0, hi)
}

func TestSummarizeDeterministic(t *testing.T) {
	values := []float64{12, 19, 14, 31, 25, 17}
	m1, l1, h1 := Summarize(values, 1234)
	m2, l2, h2 := Summarize(values, 1234)
	assert.Equal(t, m1, m2)
	assert.Equal(t, l1, l2)
	assert.Equal(t, h1, h2)
}

func TestSummarizeEmpty(t *testing.T) {
	med, lo, hi := Summarize(nil, 1)
	assert.Zero(t, med)
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestPercentileSorted(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 2.5, percentileSorted(sorted, 50))
	assert.Equal(t, 1.0, percentileSorted(sorted, 0))
	assert.Equal(t, 4.0, percentileSorted(sorted, 100))
}

func TestSummarizeResultsGrouping(t *testing.T) {
	results := []Result{
		{Scenario: "a", Engine: "batched", Topology: "all-pairs", Seed: 1, WallMS: 10, MaxRSSKB: 100, CPUSeconds: 0.5},
		{Scenario: "a", Engine: "batched", Topology: "all-pairs", Seed: 1, WallMS: 20, MaxRSSKB: 200, CPUSeconds: 0.7},
		{Scenario: "b", Engine: "actor", Topology: "k=2", Seed: 2, WallMS: 30, MaxRSSKB: 300, CPUSeconds: 0.9},
	}

	summaries := SummarizeResults(results)
	// Two groups times three metrics each.
	require.Len(t, summaries, 6)

	first := summaries[0]
	assert.Equal(t, "a", first.Scenario)
	assert.Equal(t, "walltime_ms", first.Metric)
	assert.Equal(t, 2, first.Trials)
	assert.Equal(t, 15.0, first.Median)
}
