package sim

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// actorRunner is the actor-style orchestration: one goroutine per agent
// plus a coordinator. Each tick the coordinator broadcasts an immutable
// population snapshot and per-agent work lists, barriers on all worker
// reports, merges partial accumulators sorted by pair index (the same
// addition order the batched scheduler uses), and pushes the reduced
// preferences back to every worker.
type actorRunner struct {
	opts   Options
	agents []Agent // coordinator's authoritative copy

	ticks   []chan actorTick
	updates []chan [3]float64
	reports chan actorReport

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// actorAssignment is one pair (owner, J) with its position in the tick's
// pair list. Pairs are owned by their lower index.
type actorAssignment struct {
	j   int
	idx int
}

type actorTick struct {
	snapshot []Agent
	work     []actorAssignment
	final    bool
}

type actorReport struct {
	worker   int
	contribs []contribution
	state    Agent
	err      error
}

func newActorRunner(opts Options, agents []Agent) *actorRunner {
	n := len(agents)
	r := &actorRunner{
		opts:    opts,
		agents:  agents,
		ticks:   make([]chan actorTick, n),
		updates: make([]chan [3]float64, n),
		reports: make(chan actorReport, n),
		stop:    make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		r.ticks[i] = make(chan actorTick, 1)
		r.updates[i] = make(chan [3]float64, 1)
		r.wg.Add(1)
		go r.worker(i, agents[i])
	}
	return r
}

// worker cycles Idle -> Computing -> Reported -> Updating. It owns its
// agent's state; dialogue reads come from the tick's snapshot only.
func (r *actorRunner) worker(id int, self Agent) {
	defer r.wg.Done()
	for {
		select {
		case <-r.stop:
			return
		case t := <-r.ticks[id]:
			if t.final {
				select {
				case r.reports <- actorReport{worker: id, state: self}:
				case <-r.stop:
				}
				return
			}

			contribs := make([]contribution, 0, len(t.work))
			var err error
			for _, w := range t.work {
				mi, mj := talk(t.snapshot[id], t.snapshot[w.j])
				if err = checkPrefs(mi); err == nil {
					err = checkPrefs(mj)
				}
				if err != nil {
					err = fmt.Errorf("pair (%d,%d): %w", id, w.j, err)
					break
				}
				contribs = append(contribs, contribution{pairIdx: w.idx, i: id, j: w.j, mi: mi, mj: mj})
			}

			select {
			case r.reports <- actorReport{worker: id, contribs: contribs, err: err}:
			case <-r.stop:
				return
			}
			if err != nil {
				// The coordinator halts the run; wait for the stop signal.
				continue
			}

			select {
			case <-r.stop:
				return
			case p := <-r.updates[id]:
				self.Prefs = p
			}
		}
	}
}

func (r *actorRunner) step(ctx context.Context, tick int) ([]Agent, error) {
	n := len(r.agents)
	pairs := r.opts.Topology.pairs(n, r.opts.Seed, tick)

	// Snapshot is shared read-only by all workers for this tick.
	snapshot := make([]Agent, n)
	copy(snapshot, r.agents)

	work := make([][]actorAssignment, n)
	for idx, p := range pairs {
		work[p.I] = append(work[p.I], actorAssignment{j: p.J, idx: idx})
	}
	for i := 0; i < n; i++ {
		r.ticks[i] <- actorTick{snapshot: snapshot, work: work[i]}
	}

	// Barrier: every worker reports before anything is reduced.
	contribs := make([]contribution, 0, len(pairs))
	var failure error
	for received := 0; received < n; received++ {
		select {
		case <-ctx.Done():
			r.halt()
			return nil, ctx.Err()
		case rep := <-r.reports:
			if rep.err != nil && failure == nil {
				failure = rep.err
			}
			contribs = append(contribs, rep.contribs...)
		}
	}
	if failure != nil {
		r.halt()
		return nil, fmt.Errorf("%w: %w", ErrWorkerFailure, failure)
	}
	if len(contribs) != len(pairs) {
		r.halt()
		return nil, invariantf("tick %d merged %d contributions for %d pairs", tick, len(contribs), len(pairs))
	}

	sort.Slice(contribs, func(a, b int) bool { return contribs[a].pairIdx < contribs[b].pairIdx })
	ac := newAccumulator(n)
	ac.merge(contribs)
	r.agents = ac.apply(r.agents)

	for i := 0; i < n; i++ {
		r.updates[i] <- r.agents[i].Prefs
	}
	return r.agents, nil
}

// shutdown collects the final per-agent states from the workers and
// cross-checks them against the coordinator's copy.
func (r *actorRunner) shutdown() ([]Agent, error) {
	n := len(r.agents)
	for i := 0; i < n; i++ {
		r.ticks[i] <- actorTick{final: true}
	}
	final := make([]Agent, n)
	for received := 0; received < n; received++ {
		rep := <-r.reports
		final[rep.worker] = rep.state
	}
	r.halt()
	r.wg.Wait()

	for i := range final {
		if final[i] != r.agents[i] {
			return nil, invariantf("worker %d state diverged from coordinator", i)
		}
	}
	return final, nil
}

func (r *actorRunner) halt() {
	r.stopOnce.Do(func() { close(r.stop) })
}
