package sim

// contribution is one dialogue outcome addressed by its position in the
// tick's pair list. Merging contributions in pair-list order keeps the
// floating-point additions in a single total order no matter how chunks
// or workers are scheduled.
type contribution struct {
	pairIdx int
	i, j    int
	mi, mj  [3]float64
}

// accumulator collects per-agent preference sums and partner counts for
// one tick.
type accumulator struct {
	sums   [][3]float64
	counts []int
}

func newAccumulator(n int) *accumulator {
	return &accumulator{
		sums:   make([][3]float64, n),
		counts: make([]int, n),
	}
}

func (ac *accumulator) add(agent int, m [3]float64) {
	s := &ac.sums[agent]
	s[0] += m[0]
	s[1] += m[1]
	s[2] += m[2]
	ac.counts[agent]++
}

// merge folds contributions into the accumulator in pair-list order.
func (ac *accumulator) merge(contribs []contribution) {
	for _, c := range contribs {
		ac.add(c.i, c.mi)
		ac.add(c.j, c.mj)
	}
}

// apply produces the next population: preferences averaged over the
// actual partner count for agents that talked this tick, carry-forward
// for the rest. Rho and Pi are preserved.
func (ac *accumulator) apply(agents []Agent) []Agent {
	next := make([]Agent, len(agents))
	for a := range agents {
		next[a] = agents[a]
		if c := ac.counts[a]; c > 0 {
			next[a].Prefs = [3]float64{
				ac.sums[a][0] / float64(c),
				ac.sums[a][1] / float64(c),
				ac.sums[a][2] / float64(c),
			}
		}
	}
	return next
}
