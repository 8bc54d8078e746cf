package qlearning

import (
	"fmt"

	"github.com/control-rl/qlearn/agent"
	"github.com/control-rl/qlearn/environment"
)

// Config implements a configuration for a QLearning agent
type Config struct {
	Epsilon      float64 // Exploration fraction of the behaviour policy
	LearningRate float64
}

// CreateAgent creates a new QLearning agent based on the configuration
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return New(env, c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with this Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*QLearning)
	return ok
}

// Validate returns an error describing whether or not the
// configuration is valid
func (c Config) Validate() error {
	if c.Epsilon < 0.0 || c.Epsilon > 1.0 {
		return fmt.Errorf("invalid configuration: epsilon %v ∉ [0, 1]",
			c.Epsilon)
	}
	if c.LearningRate < 0.0 || c.LearningRate > 1.0 {
		return fmt.Errorf("invalid configuration: learning rate %v ∉ "+
			"[0, 1]", c.LearningRate)
	}
	return nil
}

// Type returns the type of agent which this Config describes
func (c Config) Type() agent.Type {
	return agent.QLearning
}
