package bench

import (
	"fmt"
	"io"
	"sort"

	"github.com/talgya/minisim/internal/rng"
)

// bootstrapResamples matches the original analysis pipeline.
const bootstrapResamples = 10000

// Summary is the median and bootstrap 95% confidence interval of one
// metric within one scenario/engine/topology group.
type Summary struct {
	Scenario string
	Engine   string
	Topology string
	Metric   string
	Trials   int
	Median   float64
	CILower  float64
	CIUpper  float64
}

// Summarize computes the median and a percentile-bootstrap confidence
// interval over the values. Resampling indices come from the
// deterministic LCG seeded with seed, so reports are reproducible.
func Summarize(values []float64, seed int64) (median, ciLower, ciUpper float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	median = medianSorted(sorted)

	n := len(values)
	medians := make([]float64, bootstrapResamples)
	resample := make([]float64, n)
	s := rng.New(seed)
	for b := 0; b < bootstrapResamples; b++ {
		for i := 0; i < n; i++ {
			var u float64
			u, s = s.Uniform()
			idx := int(u * float64(n))
			if idx > n-1 {
				idx = n - 1
			}
			resample[i] = values[idx]
		}
		sort.Float64s(resample)
		medians[b] = medianSorted(resample)
	}
	sort.Float64s(medians)
	ciLower = percentileSorted(medians, 2.5)
	ciUpper = percentileSorted(medians, 97.5)
	return median, ciLower, ciUpper
}

// SummarizeResults groups trials by (scenario, engine, topology) and
// summarizes the wall-time, memory, and CPU metrics of each group.
func SummarizeResults(results []Result) []Summary {
	type key struct{ scenario, engine, topology string }
	groups := make(map[key][]Result)
	var order []key
	for _, r := range results {
		k := key{r.Scenario, r.Engine, r.Topology}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	var out []Summary
	for _, k := range order {
		rs := groups[k]
		metrics := []struct {
			name   string
			values func(Result) float64
		}{
			{"walltime_ms", func(r Result) float64 { return float64(r.WallMS) }},
			{"max_memory_kb", func(r Result) float64 { return float64(r.MaxRSSKB) }},
			{"cpu_seconds", func(r Result) float64 { return r.CPUSeconds }},
		}
		for _, m := range metrics {
			values := make([]float64, len(rs))
			for i, r := range rs {
				values[i] = m.values(r)
			}
			med, lo, hi := Summarize(values, rs[0].Seed)
			out = append(out, Summary{
				Scenario: k.scenario,
				Engine:   k.engine,
				Topology: k.topology,
				Metric:   m.name,
				Trials:   len(rs),
				Median:   med,
				CILower:  lo,
				CIUpper:  hi,
			})
		}
	}
	return out
}

// WriteReport renders summaries as an aligned text table.
func WriteReport(w io.Writer, summaries []Summary) {
	fmt.Fprintf(w, "%-20s %-8s %-10s %-14s %7s %12s %12s %12s\n",
		"scenario", "engine", "topology", "metric", "trials", "median", "ci_lower", "ci_upper")
	for _, s := range summaries {
		fmt.Fprintf(w, "%-20s %-8s %-10s %-14s %7d %12.2f %12.2f %12.2f\n",
			s.Scenario, s.Engine, s.Topology, s.Metric, s.Trials, s.Median, s.CILower, s.CIUpper)
	}
}

// medianSorted returns the median of an ascending slice, averaging the
// two middle elements for even lengths.
func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentileSorted interpolates linearly between closest ranks, the same
// convention the original analysis used.
func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(rank)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
