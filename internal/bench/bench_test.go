package bench

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/minisim/internal/config"
)

func smokeSuite() *config.Suite {
	return &config.Suite{
		Name:   "smoke",
		Trials: 2,
		Scenarios: []config.Scenario{
			{Name: "tiny-batched", Agents: 6, Ticks: 1, Seed: 42, Chunk: 16, Topology: "all-pairs", Engine: "batched", Trials: 2},
			{Name: "tiny-actor", Agents: 6, Ticks: 1, Seed: 42, Chunk: 16, Topology: "all-pairs", Engine: "actor", Trials: 1},
		},
	}
}

func TestDriverRunSuite(t *testing.T) {
	d := &Driver{}
	results, err := d.RunSuite(context.Background(), smokeSuite())
	require.NoError(t, err)
	require.Len(t, results, 3)

	ids := make(map[string]struct{})
	for _, r := range results {
		assert.Equal(t, 6, r.TotalVotes)
		assert.GreaterOrEqual(t, r.WallMS, int64(0))
		require.NotEmpty(t, r.RunID)
		_, dup := ids[r.RunID]
		require.False(t, dup, "run id %s reused", r.RunID)
		ids[r.RunID] = struct{}{}
	}
	assert.Equal(t, "tiny-batched", results[0].Scenario)
	assert.Equal(t, "tiny-actor", results[2].Scenario)
}

func TestDriverRecordsToSinks(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenStore(filepath.Join(dir, "trials.db"))
	require.NoError(t, err)
	defer store.Close()
	log, err := OpenTrialLog(filepath.Join(dir, "trials.jsonl.zst"))
	require.NoError(t, err)

	d := &Driver{Store: store, Log: log}
	results, err := d.RunSuite(context.Background(), smokeSuite())
	require.NoError(t, err)
	require.NoError(t, log.Close())

	n, err := store.Count("smoke")
	require.NoError(t, err)
	assert.Equal(t, len(results), n)
}

func TestDriverRejectsBadScenario(t *testing.T) {
	suite := &config.Suite{
		Name: "bad",
		Scenarios: []config.Scenario{
			{Name: "broken", Agents: 10, Ticks: 1, Seed: 1, Chunk: 8, Topology: "k=10", Engine: "batched", Trials: 1},
		},
	}
	_, err := (&Driver{}).RunSuite(context.Background(), suite)
	assert.Error(t, err)
}
