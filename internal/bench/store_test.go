package bench

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreInsertAndCount(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "trials.db"))
	require.NoError(t, err)
	defer store.Close()

	res := Result{
		RunID:      "run-1",
		Suite:      "smoke",
		Scenario:   "tiny",
		Trial:      0,
		Engine:     "batched",
		Topology:   "all-pairs",
		Agents:     10,
		Ticks:      2,
		Seed:       42,
		Chunk:      256,
		WallMS:     12,
		MaxRSSKB:   2048,
		MaxHeapKB:  1024,
		CPUSeconds: 0.25,
		TotalVotes: 10,
	}
	require.NoError(t, store.Insert(res))

	res.RunID = "run-2"
	res.Trial = 1
	require.NoError(t, store.Insert(res))

	n, err := store.Count("smoke")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.Count("other")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreRejectsDuplicateRunID(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "trials.db"))
	require.NoError(t, err)
	defer store.Close()

	res := Result{RunID: "dup", Suite: "s", Scenario: "sc", Engine: "batched", Topology: "all-pairs"}
	require.NoError(t, store.Insert(res))
	assert.Error(t, store.Insert(res))
}
