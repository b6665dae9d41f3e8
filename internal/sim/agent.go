// Package sim implements the deterministic opinion-dynamics simulation:
// agent population, dialogue kernel, interaction topologies, and the two
// schedulers (batched worker pool and actor-per-agent) that drive it.
package sim

import (
	"github.com/talgya/minisim/internal/rng"
)

// Agent is one simulation participant. Rho (resistance) and Pi
// (persuasion) are fixed at construction; Prefs is the distribution over
// the three alternatives and is replaced wholesale at every tick boundary.
type Agent struct {
	Rho   float64
	Pi    float64
	Prefs [3]float64
}

// NewAgent builds an agent whose initial preference mass sits entirely on
// the first two alternatives: [u, 1-u, 0].
func NewAgent(rho, pi, u float64) Agent {
	return Agent{Rho: rho, Pi: pi, Prefs: [3]float64{u, 1 - u, 0}}
}

// seedAgents consumes exactly three uniforms per agent in agent-index
// order: rho, pi, then the first-option preference.
func seedAgents(n int, s rng.State) ([]Agent, rng.State) {
	agents := make([]Agent, n)
	for i := range agents {
		var rho, pi, u float64
		rho, s = s.Uniform()
		pi, s = s.Uniform()
		u, s = s.Uniform()
		agents[i] = NewAgent(rho, pi, u)
	}
	return agents, s
}
