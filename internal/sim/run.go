package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/talgya/minisim/internal/rng"
)

// Engine selects which scheduler drives the ticks. Both produce identical
// results for identical inputs.
type Engine uint8

const (
	EngineBatched Engine = iota
	EngineActor
)

// ParseEngine accepts "batched" (the default) or "actor".
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "batched":
		return EngineBatched, nil
	case "actor":
		return EngineActor, nil
	}
	return 0, fmt.Errorf("%w: unknown engine %q", ErrInvalidArgument, s)
}

func (e Engine) String() string {
	if e == EngineActor {
		return "actor"
	}
	return "batched"
}

// Options are the inputs of one simulation run.
type Options struct {
	Agents   int
	Ticks    int
	Seed     int64
	Chunk    int
	Topology Topology
	Engine   Engine
}

func (o Options) validate() error {
	if o.Agents < 1 {
		return fmt.Errorf("%w: agents=%d must be positive", ErrInvalidArgument, o.Agents)
	}
	if o.Ticks < 0 {
		return fmt.Errorf("%w: ticks=%d", ErrNegativeTicks, o.Ticks)
	}
	if o.Chunk < 1 {
		return fmt.Errorf("%w: chunk=%d", ErrNonPositiveChunk, o.Chunk)
	}
	return o.Topology.validate(o.Agents)
}

// Stats is the end-of-run summary.
type Stats struct {
	TotalAgents        int          `json:"total_agents"`
	VoteResults        map[int]int  `json:"vote_results"`
	AveragePreferences [3]float64   `json:"average_preferences"`
	AgentPreferences   [][3]float64 `json:"agent_preferences"`
}

// tickRunner is the scheduler seam: step advances one tick and returns
// the new population, shutdown yields the final states, halt tears the
// scheduler down unconditionally.
type tickRunner interface {
	step(ctx context.Context, tick int) ([]Agent, error)
	shutdown() ([]Agent, error)
	halt()
}

// Run executes a full simulation and returns its statistics. The RNG
// stream is consumed only here, in a fixed order: three seeding draws per
// agent, one initial-vote draw per agent (its histogram is returned only
// when Ticks is 0), then one vote draw per agent after every tick; the
// last histogram drawn is the one returned. Schedulers never touch it,
// which is what keeps the two engines interchangeable.
func Run(ctx context.Context, opts Options) (Stats, error) {
	if err := opts.validate(); err != nil {
		return Stats{}, err
	}

	slog.Debug("run starting",
		"agents", opts.Agents,
		"ticks", opts.Ticks,
		"seed", opts.Seed,
		"chunk", opts.Chunk,
		"topology", opts.Topology.String(),
		"engine", opts.Engine.String(),
	)

	s := rng.New(opts.Seed)
	agents, s := seedAgents(opts.Agents, s)
	hist, s := castVotes(agents, s)

	var runner tickRunner
	if opts.Engine == EngineActor {
		runner = newActorRunner(opts, agents)
	} else {
		runner = newBatchedRunner(opts, agents)
	}
	defer runner.halt()

	for tick := 0; tick < opts.Ticks; tick++ {
		next, err := runner.step(ctx, tick)
		if err != nil {
			return Stats{}, err
		}
		agents = next
		hist, s = castVotes(agents, s)
	}

	final, err := runner.shutdown()
	if err != nil {
		return Stats{}, err
	}
	return summarize(final, hist), nil
}

// Sweep runs n = minN..maxN with otherwise fixed options and writes the
// wall-clock milliseconds of each run to w, one integer per line.
func Sweep(ctx context.Context, w io.Writer, minN, maxN int, opts Options) error {
	if minN < 2 || maxN < minN {
		return fmt.Errorf("%w: min=%d max=%d requires 2 <= min <= max", ErrInvalidRange, minN, maxN)
	}
	for n := minN; n <= maxN; n++ {
		o := opts
		o.Agents = n
		start := time.Now()
		if _, err := Run(ctx, o); err != nil {
			return fmt.Errorf("sweep n=%d: %w", n, err)
		}
		fmt.Fprintln(w, time.Since(start).Milliseconds())
	}
	return nil
}

// castVotes draws one uniform per agent in index order and tallies the
// inverse-CDF vote over each agent's current preferences.
func castVotes(agents []Agent, s rng.State) (map[int]int, rng.State) {
	hist := map[int]int{0: 0, 1: 0, 2: 0}
	for _, a := range agents {
		var u float64
		u, s = s.Uniform()
		switch {
		case u <= a.Prefs[0]:
			hist[0]++
		case u <= a.Prefs[0]+a.Prefs[1]:
			hist[1]++
		default:
			hist[2]++
		}
	}
	return hist, s
}

// summarize rounds per-agent preferences to three decimals and averages
// the rounded values, matching the reference reporting pipeline.
func summarize(agents []Agent, hist map[int]int) Stats {
	prefs := make([][3]float64, len(agents))
	var sums [3]float64
	for i, a := range agents {
		for c := 0; c < 3; c++ {
			prefs[i][c] = roundTo(a.Prefs[c], 3)
			sums[c] += prefs[i][c]
		}
	}
	var avg [3]float64
	if n := float64(len(agents)); n > 0 {
		for c := 0; c < 3; c++ {
			avg[c] = roundTo(sums[c]/n, 3)
		}
	}
	return Stats{
		TotalAgents:        len(agents),
		VoteResults:        hist,
		AveragePreferences: avg,
		AgentPreferences:   prefs,
	}
}
