package deepq

import (
	"fmt"

	"github.com/control-rl/qlearn/agent"
	env "github.com/control-rl/qlearn/environment"
	"github.com/control-rl/qlearn/expreplay"
	"github.com/control-rl/qlearn/initwfn"
	"github.com/control-rl/qlearn/network"
	"github.com/control-rl/qlearn/solver"
)

// Config implements a configuration for a DeepQ agent
type Config struct {
	PolicyLayers []int                 // Hidden layer sizes in neural net
	Biases       []bool                // Whether each layer has a bias
	Activations  []*network.Activation // Activation of each layer
	Solver       *solver.Solver        // Solver for learning weights

	// Initialization algorithm for weights
	InitWFn *initwfn.InitWFn

	Epsilon float64 // Behaviour policy epsilon

	// Experience replay parameters
	ExpReplay expreplay.Config

	// Target network updates
	Tau                  float64 // Polyak averaging constant
	TargetUpdateInterval int     // Steps between target network updates
}

// BatchSize returns the batch size of the agent constructed using this
// Config
func (c Config) BatchSize() int {
	return c.ExpReplay.SampleSize
}

// Type returns the type of the configuration
func (c Config) Type() agent.Type {
	return agent.DeepQ
}

// Validate checks a Config to ensure it is a valid configuration of a
// DeepQ agent
func (c Config) Validate() error {
	if len(c.PolicyLayers) != len(c.Biases) {
		return fmt.Errorf("invalid configuration: invalid number of "+
			"biases\n\twant(%v)\n\thave(%v)", len(c.PolicyLayers),
			len(c.Biases))
	}

	if len(c.PolicyLayers) != len(c.Activations) {
		return fmt.Errorf("invalid configuration: invalid number of "+
			"activations\n\twant(%v)\n\thave(%v)", len(c.PolicyLayers),
			len(c.Activations))
	}

	if c.Solver == nil {
		return fmt.Errorf("invalid configuration: no solver")
	}

	if c.InitWFn == nil {
		return fmt.Errorf("invalid configuration: no weight " +
			"initialization algorithm")
	}

	if c.Tau <= 0.0 || c.Tau > 1.0 {
		return fmt.Errorf("invalid configuration: tau %v ∉ (0, 1]", c.Tau)
	}

	if c.TargetUpdateInterval < 1 {
		return fmt.Errorf("invalid configuration: target networks must "+
			"be updated at positive timestep intervals \n\twant(>0)"+
			" \n\thave(%v)", c.TargetUpdateInterval)
	}

	return nil
}

// ValidAgent returns whether the argument agent is valid for the
// configuration. That is, whether Agent a can be constructed with
// Config c.
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*DeepQ)
	return ok
}

// CreateAgent creates a new DeepQ agent based on the configuration
func (c Config) CreateAgent(e env.Environment,
	seed uint64) (agent.Agent, error) {
	return New(e, c, int64(seed))
}
