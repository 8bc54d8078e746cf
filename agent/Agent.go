// Package agent implements functionality for agents acting in
// environments. Agents are composed of a Learner, which learns from
// environmental interaction, and a Policy, which selects actions in
// environmental states.
package agent

import (
	"github.com/control-rl/qlearn/environment"
	"github.com/control-rl/qlearn/network"
	"github.com/control-rl/qlearn/timestep"
	"gonum.org/v1/gonum/mat"
)

// Agent determines the implementation details of an agent or algorithm
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how weights are
// updated from environmental interaction
type Learner interface {
	// Step performs a single update to the Learner's weights based on
	// the observations it has cached so far
	Step() error

	// Observe caches the most recent action taken by the agent and the
	// timestep that resulted from taking that action
	Observe(action mat.Vector, nextObs timestep.TimeStep) error

	// ObserveFirst caches the first timestep in an episode
	ObserveFirst(timestep.TimeStep) error

	// TdError returns the temporal difference error for a transition
	TdError(t timestep.Transition) float64

	// EndEpisode performs any cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. Agents usually have a
// behaviour policy and a target policy. For a given agent, the
// behaviour and target policies usually share weights so that
// learning in one policy results in learning in the other.
type Policy interface {
	// SelectAction selects an action at the argument timestep
	SelectAction(t timestep.TimeStep) *mat.VecDense

	// Eval sets the policy to evaluation mode, where the policy
	// selects actions greedily
	Eval()

	// Train sets the policy to training mode, where the policy
	// explores
	Train()

	// IsEval returns whether the policy is in evaluation mode
	IsEval() bool
}

// NNPolicy is a policy implemented by a neural network.
//
// NNPolicies do not hold virtual machines of their own. An external VM
// must run the policy's computational graph before an action is
// selected with SelectAction.
type NNPolicy interface {
	network.NeuralNet

	// Network returns the neural network which implements the policy
	Network() network.NeuralNet

	// ClonePolicy clones the policy to a new computational graph
	ClonePolicy() (NNPolicy, error)

	// ClonePolicyWithBatch clones the policy with a new input batch
	// size
	ClonePolicyWithBatch(batch int) (NNPolicy, error)

	// SelectAction selects an action based on the action values
	// generated by the last run of the policy's computational graph,
	// returning the action and its predicted value
	SelectAction() (*mat.VecDense, float64)
}

// EGreedyNNPolicy is an epsilon greedy policy implemented by a neural
// network
type EGreedyNNPolicy interface {
	NNPolicy

	// SetEpsilon sets the exploration fraction of the policy
	SetEpsilon(float64)

	// Epsilon returns the exploration fraction of the policy
	Epsilon() float64
}

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the Config describes in the
	// argument environment
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// ValidAgent returns whether the argument agent is valid for this
	// Config, i.e. whether the Config can describe the agent
	ValidAgent(Agent) bool

	// Validate returns an error describing whether or not the
	// configuration is valid
	Validate() error

	// Type returns the type of agent which the Config describes
	Type() Type
}

// Type describes the type of agent that a Config describes
type Type string

// Available agent types
const (
	QLearning Type = "QLearning"
	DeepQ     Type = "DeepQ"
)
