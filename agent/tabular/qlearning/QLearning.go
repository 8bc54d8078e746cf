// Package qlearning implements the Q-Learning algorithm with an
// epsilon greedy behaviour policy over an action value table.
//
// Q-Learning is restricted to environments with discrete state and
// action spaces. Observations must be 1-dimensional vectors holding an
// encoded state index, and the environment's observation and action
// specs must have discrete cardinality so that the size of the action
// value table can be computed.
package qlearning

import (
	"fmt"

	"github.com/control-rl/qlearn/agent"
	"github.com/control-rl/qlearn/agent/tabular/policy"
	"github.com/control-rl/qlearn/environment"
	"github.com/control-rl/qlearn/timestep"
	"github.com/control-rl/qlearn/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// QLearning implements the Q-Learning algorithm. The agent acts with
// an epsilon greedy behaviour policy and learns the action values of
// the greedy target policy. The behaviour and target policies share a
// single action value table, which the QLearner mutates in place.
type QLearning struct {
	*QLearner
	behaviour *policy.EGreedy
	target    *policy.Greedy
	eval      bool
}

// New creates a new QLearning agent acting in the argument environment
func New(env environment.Environment, c Config,
	seed uint64) (agent.Agent, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("qlearning: %v", err)
	}

	behaviour, err := policy.NewEGreedy(env, c.Epsilon, seed)
	if err != nil {
		return nil, fmt.Errorf("qlearning: cannot create behaviour "+
			"policy: %v", err)
	}
	target := policy.NewGreedyFrom(behaviour, seed)

	discount := env.DiscountSpec().UpperBound.AtVec(0)
	learner, err := NewQLearner(behaviour.Table(), c.LearningRate,
		discount)
	if err != nil {
		return nil, fmt.Errorf("qlearning: cannot create learner: %v", err)
	}

	return &QLearning{
		QLearner:  learner,
		behaviour: behaviour,
		target:    target,
	}, nil
}

// SelectAction selects an action at the argument timestep. In training
// mode, actions are selected from the epsilon greedy behaviour policy.
// In evaluation mode, actions are selected from the greedy target
// policy.
func (q *QLearning) SelectAction(t timestep.TimeStep) *mat.VecDense {
	if q.eval {
		return q.target.SelectAction(t)
	}
	return q.behaviour.SelectAction(t)
}

// Eval sets the agent to evaluation mode
func (q *QLearning) Eval() {
	q.eval = true
}

// Train sets the agent to training mode
func (q *QLearning) Train() {
	q.eval = false
}

// IsEval returns whether the agent is in evaluation mode
func (q *QLearning) IsEval() bool {
	return q.eval
}

// Table returns the action value table of the agent
func (q *QLearning) Table() *mat.Dense {
	return q.behaviour.Table()
}

// String formats the agent's action value table for printing
func (q *QLearning) String() string {
	return matutils.Format(q.Table())
}
