// Package config loads benchmark suite definitions from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Suite is a named collection of benchmark scenarios.
type Suite struct {
	Name      string     `yaml:"name"`
	Trials    int        `yaml:"trials"` // default per scenario, minimum 1
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is one benchmarked simulation configuration.
type Scenario struct {
	Name     string `yaml:"name"`
	Agents   int    `yaml:"agents"`
	Ticks    int    `yaml:"ticks"`
	Seed     int64  `yaml:"seed"`
	Chunk    int    `yaml:"chunk"`
	Topology string `yaml:"topology"` // "all-pairs" or "k=<int>"
	Engine   string `yaml:"engine"`   // "batched" or "actor"
	Trials   int    `yaml:"trials"`   // overrides the suite default
}

// Load reads and validates a suite file. Scenario-level trial counts fall
// back to the suite default.
func Load(path string) (*Suite, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}
	var s Suite
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("suite %s: %w", path, err)
	}
	return &s, nil
}

func (s *Suite) validate() error {
	if len(s.Scenarios) == 0 {
		return fmt.Errorf("no scenarios defined")
	}
	if s.Trials < 1 {
		s.Trials = 1
	}
	for i := range s.Scenarios {
		sc := &s.Scenarios[i]
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("scenario-%d", i)
		}
		if sc.Agents < 1 {
			return fmt.Errorf("scenario %s: agents=%d must be positive", sc.Name, sc.Agents)
		}
		if sc.Ticks < 0 {
			return fmt.Errorf("scenario %s: ticks=%d must be non-negative", sc.Name, sc.Ticks)
		}
		if sc.Chunk < 1 {
			sc.Chunk = 256
		}
		if sc.Trials < 1 {
			sc.Trials = s.Trials
		}
	}
	return nil
}
