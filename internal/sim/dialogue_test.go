package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/minisim/internal/rng"
)

func TestChoiceProbs(t *testing.T) {
	// Full resistance meeting full persuasion lands on the alternative.
	assert.Equal(t, [3]float64{0, 0, 1}, choiceProbs(1, 1))
	// No resistance against full persuasion changes the vote.
	assert.Equal(t, [3]float64{0, 1, 0}, choiceProbs(0, 1))
	// The degenerate zero triple falls back to uniform.
	assert.Equal(t, [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, choiceProbs(0, 0))
}

func TestTransitionMatrixRowStochastic(t *testing.T) {
	agents, _ := seedAgents(6, rng.New(7))
	for a := 0; a < len(agents); a++ {
		for b := a + 1; b < len(agents); b++ {
			m := transitionMatrix(agents[a], agents[b])
			for row := 0; row < 9; row++ {
				sum := 0.0
				for col := 0; col < 9; col++ {
					require.GreaterOrEqual(t, m[row][col], 0.0)
					sum += m[row][col]
				}
				require.InDelta(t, 1.0, sum, 1e-9, "pair (%d,%d) row %d", a, b, row)
			}
		}
	}
}

func TestTransitionMatrixAgreementRowsStayIdentity(t *testing.T) {
	agents, _ := seedAgents(2, rng.New(3))
	m := transitionMatrix(agents[0], agents[1])

	// Only the (1,2) and (2,1) disagreement rows carry rules.
	modified := map[int]bool{locate(1, 2): true, locate(2, 1): true}
	for row := 0; row < 9; row++ {
		if modified[row] {
			continue
		}
		for col := 0; col < 9; col++ {
			want := 0.0
			if row == col {
				want = 1.0
			}
			require.Equal(t, want, m[row][col], "row %d col %d", row, col)
		}
	}
}

func TestTalkAgreementIsFixedPoint(t *testing.T) {
	alice := Agent{Rho: 0.4, Pi: 0.8, Prefs: [3]float64{1, 0, 0}}
	bob := Agent{Rho: 0.9, Pi: 0.2, Prefs: [3]float64{1, 0, 0}}
	mi, mj := talk(alice, bob)
	assert.Equal(t, [3]float64{1, 0, 0}, mi)
	assert.Equal(t, [3]float64{1, 0, 0}, mj)
}

func TestTalkFullConflictMovesToAlternative(t *testing.T) {
	// Both maximally resistant and persuasive: the joint mass lands on the
	// third option for both sides.
	alice := Agent{Rho: 1, Pi: 1, Prefs: [3]float64{1, 0, 0}}
	bob := Agent{Rho: 1, Pi: 1, Prefs: [3]float64{0, 1, 0}}
	mi, mj := talk(alice, bob)
	assert.Equal(t, [3]float64{0, 0, 1}, mi)
	assert.Equal(t, [3]float64{0, 0, 1}, mj)
}

func TestTalkNoResistanceSwapsVotes(t *testing.T) {
	alice := Agent{Rho: 0, Pi: 1, Prefs: [3]float64{1, 0, 0}}
	bob := Agent{Rho: 0, Pi: 1, Prefs: [3]float64{0, 1, 0}}
	mi, mj := talk(alice, bob)
	assert.Equal(t, [3]float64{0, 1, 0}, mi)
	assert.Equal(t, [3]float64{1, 0, 0}, mj)
}

func TestTalkOutputsAreDistributions(t *testing.T) {
	agents, _ := seedAgents(8, rng.New(99))
	for a := 0; a < len(agents); a++ {
		for b := a + 1; b < len(agents); b++ {
			mi, mj := talk(agents[a], agents[b])
			require.NoError(t, checkPrefs(mi), "pair (%d,%d)", a, b)
			require.NoError(t, checkPrefs(mj), "pair (%d,%d)", a, b)
			require.InDelta(t, 1.0, mi[0]+mi[1]+mi[2], 1e-9)
			require.InDelta(t, 1.0, mj[0]+mj[1]+mj[2], 1e-9)
		}
	}
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.1234, roundTo(0.12341, 4))
	assert.Equal(t, 0.1235, roundTo(0.12348, 4))
	assert.Equal(t, 0.123, roundTo(0.1231, 3))
	assert.Equal(t, 1.0, roundTo(0.99996, 4))
}

func TestCheckPrefs(t *testing.T) {
	assert.NoError(t, checkPrefs([3]float64{0.2, 0.3, 0.5}))
	assert.ErrorIs(t, checkPrefs([3]float64{-0.1, 0.6, 0.5}), ErrInternalInvariant)
	assert.ErrorIs(t, checkPrefs([3]float64{0.5, 0.3, 0.1}), ErrInternalInvariant)
}

func TestSeedAgentsDrawOrder(t *testing.T) {
	s := rng.New(42)
	agents, end := seedAgents(3, s)
	require.Len(t, agents, 3)

	// Replaying the stream by hand must give the same values in the same
	// rho, pi, preference order.
	replay := rng.New(42)
	for i := 0; i < 3; i++ {
		var rho, pi, u float64
		rho, replay = replay.Uniform()
		pi, replay = replay.Uniform()
		u, replay = replay.Uniform()
		require.Equal(t, rho, agents[i].Rho)
		require.Equal(t, pi, agents[i].Pi)
		require.Equal(t, [3]float64{u, 1 - u, 0}, agents[i].Prefs)
		require.True(t, math.Abs(agents[i].Prefs[0]+agents[i].Prefs[1]+agents[i].Prefs[2]-1) < 1e-12)
	}
	require.Equal(t, replay, end)
}
