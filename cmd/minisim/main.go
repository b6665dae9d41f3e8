// Command minisim runs the opinion-dynamics benchmark workload: single
// runs, population sweeps, and multi-trial benchmark suites.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/minisim/internal/bench"
	"github.com/talgya/minisim/internal/config"
	"github.com/talgya/minisim/internal/sim"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, sim.ErrInvalidArgument) {
			slog.Error("invalid arguments", "error", err)
		} else {
			slog.Error("run failed", "error", err)
		}
		os.Exit(1)
	}
}

type simFlags struct {
	agents   int
	ticks    int
	seed     int64
	chunk    int
	topology string
	engine   string
}

func (f *simFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.agents, "agents", "a", 0, "number of agents (>0)")
	cmd.Flags().IntVarP(&f.ticks, "iterations", "i", 0, "simulation ticks (>=0)")
	cmd.Flags().Int64VarP(&f.seed, "seed", "s", 42, "RNG seed")
	cmd.Flags().IntVarP(&f.chunk, "chunk-size", "c", 256, "pair batch size (>0)")
	cmd.Flags().StringVarP(&f.topology, "topology", "t", "all-pairs", "all-pairs or k=<int>")
	cmd.Flags().StringVarP(&f.engine, "engine", "e", "batched", "batched or actor")
}

func (f *simFlags) options() (sim.Options, error) {
	topo, err := sim.ParseTopology(f.topology)
	if err != nil {
		return sim.Options{}, err
	}
	engine, err := sim.ParseEngine(f.engine)
	if err != nil {
		return sim.Options{}, err
	}
	return sim.Options{
		Agents:   f.agents,
		Ticks:    f.ticks,
		Seed:     f.seed,
		Chunk:    f.chunk,
		Topology: topo,
		Engine:   engine,
	}, nil
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "minisim",
		Short:         "Deterministic multi-agent opinion-dynamics benchmark",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			switch logLevel {
			case "debug":
				level = slog.LevelDebug
			case "warn":
				level = slog.LevelWarn
			case "error":
				level = slog.LevelError
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, or error")

	root.AddCommand(newRunCmd(), newSweepCmd(), newBenchCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var flags simFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and print its statistics as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			stats, err := sim.Run(signalContext(), opts)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(stats)
		},
	}
	flags.register(cmd)
	return cmd
}

func newSweepCmd() *cobra.Command {
	var flags simFlags
	var from, to int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run every population from --from to --to, printing wall ms per run",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			return sim.Sweep(signalContext(), os.Stdout, from, to, opts)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&from, "from", 2, "sweep lower bound (>=2)")
	cmd.Flags().IntVar(&to, "to", 0, "sweep upper bound (>= --from)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newBenchCmd() *cobra.Command {
	var cfgPath, dbPath, logPath string
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Execute a YAML benchmark suite with multi-trial statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			driver := &bench.Driver{}
			if dbPath != "" {
				store, err := bench.OpenStore(dbPath)
				if err != nil {
					return fmt.Errorf("open result store: %w", err)
				}
				defer store.Close()
				driver.Store = store
			}
			if logPath != "" {
				log, err := bench.OpenTrialLog(logPath)
				if err != nil {
					return fmt.Errorf("open trial log: %w", err)
				}
				defer log.Close()
				driver.Log = log
			}

			results, err := driver.RunSuite(signalContext(), suite)
			if err != nil {
				return err
			}
			summaries := bench.SummarizeResults(results)
			bench.WriteReport(os.Stdout, summaries)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "bench.yaml", "benchmark suite YAML file")
	cmd.Flags().StringVar(&dbPath, "db", "", "optional SQLite path for trial results")
	cmd.Flags().StringVar(&logPath, "out", "", "optional zstd JSONL trial log path")
	return cmd
}

// signalContext cancels on SIGINT/SIGTERM so an aborted caller tears down
// the whole run.
func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}
