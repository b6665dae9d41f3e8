// Package bench executes multi-trial benchmark suites over the simulation
// core and aggregates the measurements.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/minisim/internal/config"
	"github.com/talgya/minisim/internal/probe"
	"github.com/talgya/minisim/internal/sim"
)

// Result is one measured trial.
type Result struct {
	RunID      string  `json:"run_id" db:"run_id"`
	Suite      string  `json:"suite" db:"suite"`
	Scenario   string  `json:"scenario" db:"scenario"`
	Trial      int     `json:"trial" db:"trial"`
	Engine     string  `json:"engine" db:"engine"`
	Topology   string  `json:"topology" db:"topology"`
	Agents     int     `json:"agents" db:"agents"`
	Ticks      int     `json:"ticks" db:"ticks"`
	Seed       int64   `json:"seed" db:"seed"`
	Chunk      int     `json:"chunk" db:"chunk"`
	WallMS     int64   `json:"walltime_ms" db:"walltime_ms"`
	MaxRSSKB   uint64  `json:"max_memory_kb" db:"max_memory_kb"`
	MaxHeapKB  uint64  `json:"max_heap_kb" db:"max_heap_kb"`
	CPUSeconds float64 `json:"cpu_seconds" db:"cpu_seconds"`
	TotalVotes int     `json:"total_votes" db:"total_votes"`
}

// Driver runs suites. Store and Log are optional sinks; every trial that
// completes is recorded before the next one starts.
type Driver struct {
	Store *Store
	Log   *TrialLog
}

// RunSuite executes every scenario in the suite for its configured number
// of trials and returns all trial results in execution order.
func (d *Driver) RunSuite(ctx context.Context, suite *config.Suite) ([]Result, error) {
	var results []Result
	for _, sc := range suite.Scenarios {
		opts, err := scenarioOptions(sc)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}

		slog.Info("scenario starting",
			"suite", suite.Name,
			"scenario", sc.Name,
			"agents", sc.Agents,
			"ticks", sc.Ticks,
			"engine", opts.Engine.String(),
			"topology", opts.Topology.String(),
			"trials", sc.Trials,
		)

		for trial := 0; trial < sc.Trials; trial++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := d.runTrial(ctx, suite.Name, sc, opts, trial)
			if err != nil {
				return nil, fmt.Errorf("scenario %s trial %d: %w", sc.Name, trial, err)
			}
			results = append(results, res)
		}
	}
	return results, nil
}

func (d *Driver) runTrial(ctx context.Context, suiteName string, sc config.Scenario, opts sim.Options, trial int) (Result, error) {
	mon := probe.Start(100 * time.Millisecond)
	stats, err := sim.Run(ctx, opts)
	peak := mon.Stop()
	if err != nil {
		return Result{}, err
	}

	totalVotes := 0
	for _, c := range stats.VoteResults {
		totalVotes += c
	}

	res := Result{
		RunID:      uuid.NewString(),
		Suite:      suiteName,
		Scenario:   sc.Name,
		Trial:      trial,
		Engine:     opts.Engine.String(),
		Topology:   opts.Topology.String(),
		Agents:     sc.Agents,
		Ticks:      sc.Ticks,
		Seed:       sc.Seed,
		Chunk:      sc.Chunk,
		WallMS:     peak.WallTime.Milliseconds(),
		MaxRSSKB:   peak.MaxResidentKB,
		MaxHeapKB:  peak.MaxHeapAllocKB,
		CPUSeconds: peak.CPUSeconds,
		TotalVotes: totalVotes,
	}

	slog.Info("trial finished",
		"scenario", sc.Name,
		"trial", trial,
		"wall_ms", res.WallMS,
		"max_rss", humanize.IBytes(res.MaxRSSKB*1024),
		"max_heap", humanize.IBytes(res.MaxHeapKB*1024),
	)

	if d.Log != nil {
		if err := d.Log.Write(res); err != nil {
			return Result{}, fmt.Errorf("write trial log: %w", err)
		}
	}
	if d.Store != nil {
		if err := d.Store.Insert(res); err != nil {
			return Result{}, fmt.Errorf("store trial: %w", err)
		}
	}
	return res, nil
}

func scenarioOptions(sc config.Scenario) (sim.Options, error) {
	topo, err := sim.ParseTopology(sc.Topology)
	if err != nil {
		return sim.Options{}, err
	}
	engine, err := sim.ParseEngine(sc.Engine)
	if err != nil {
		return sim.Options{}, err
	}
	return sim.Options{
		Agents:   sc.Agents,
		Ticks:    sc.Ticks,
		Seed:     sc.Seed,
		Chunk:    sc.Chunk,
		Topology: topo,
		Engine:   engine,
	}, nil
}
