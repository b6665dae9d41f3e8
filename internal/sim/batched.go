package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// batchedRunner drives ticks over a worker pool. The pair list is split
// into contiguous chunks; each worker computes dialogue outcomes for its
// chunk against a read-only snapshot of the population and never touches
// the shared RNG.
type batchedRunner struct {
	opts   Options
	agents []Agent
}

func newBatchedRunner(opts Options, agents []Agent) *batchedRunner {
	return &batchedRunner{opts: opts, agents: agents}
}

func (r *batchedRunner) step(ctx context.Context, tick int) ([]Agent, error) {
	pairs := r.opts.Topology.pairs(len(r.agents), r.opts.Seed, tick)
	ac, err := runTickBatched(ctx, r.agents, pairs, r.opts.Chunk)
	if err != nil {
		return nil, err
	}
	r.agents = ac.apply(r.agents)
	return r.agents, nil
}

func (r *batchedRunner) shutdown() ([]Agent, error) { return r.agents, nil }

func (r *batchedRunner) halt() {}

// runTickBatched computes one tick's accumulator. Per-chunk outputs land
// in a results slice indexed by chunk, so the merge below visits
// contributions in pair-list order regardless of completion order; the
// reduction is therefore identical for every chunk size.
func runTickBatched(ctx context.Context, agents []Agent, pairs []Pair, chunk int) (*accumulator, error) {
	nChunks := (len(pairs) + chunk - 1) / chunk
	results := make([][]contribution, nChunks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(2 * runtime.GOMAXPROCS(0))
	for c := 0; c < nChunks; c++ {
		start := c * chunk
		end := min(start+chunk, len(pairs))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := make([]contribution, 0, end-start)
			for idx := start; idx < end; idx++ {
				p := pairs[idx]
				mi, mj := talk(agents[p.I], agents[p.J])
				if err := checkPrefs(mi); err != nil {
					return fmt.Errorf("%w: pair (%d,%d): %w", ErrWorkerFailure, p.I, p.J, err)
				}
				if err := checkPrefs(mj); err != nil {
					return fmt.Errorf("%w: pair (%d,%d): %w", ErrWorkerFailure, p.I, p.J, err)
				}
				out = append(out, contribution{pairIdx: idx, i: p.I, j: p.J, mi: mi, mj: mj})
			}
			results[c] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ac := newAccumulator(len(agents))
	for _, chunkOut := range results {
		ac.merge(chunkOut)
	}
	return ac, nil
}
