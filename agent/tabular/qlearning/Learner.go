package qlearning

import (
	"fmt"
	"os"

	"github.com/control-rl/qlearn/timestep"
	"github.com/control-rl/qlearn/utils/floatutils"
	"gonum.org/v1/gonum/mat"
)

// QLearner implements the Q-Learning update rule on an action value
// table:
//
//	table[s, a] ← (1 - α) * table[s, a] + α * (r + γ * max(table[s']))
//
// where α is the learning rate, γ is the discount factor, and (s, a,
// r, s') is the most recently observed transition. The learner
// bootstraps off the maximum action value in the next state regardless
// of which action the behaviour policy takes there, making Q-Learning
// an off-policy algorithm.
type QLearner struct {
	table        *mat.Dense
	learningRate float64
	discount     float64

	step     timestep.TimeStep
	action   int
	nextStep timestep.TimeStep
}

// NewQLearner creates a new QLearner which updates the argument action
// value table
func NewQLearner(table *mat.Dense, learningRate,
	discount float64) (*QLearner, error) {
	if learningRate < 0.0 || learningRate > 1.0 {
		return nil, fmt.Errorf("newQLearner: learning rate %v ∉ [0, 1]",
			learningRate)
	}

	return &QLearner{
		table:        table,
		learningRate: learningRate,
		discount:     discount,
	}, nil
}

// ObserveFirst observes and records the first episodic timestep
func (q *QLearner) ObserveFirst(t timestep.TimeStep) error {
	if !t.First() {
		fmt.Fprintf(os.Stderr, "Warning: ObserveFirst() should only be"+
			" called on the first timestep (current timestep = %v)\n", t)
	}

	q.step = t
	q.nextStep = t
	return nil
}

// Observe observes and records any timestep other than the first. The
// action taken at the previous timestep is also recorded.
func (q *QLearner) Observe(action mat.Vector,
	nextStep timestep.TimeStep) error {
	if action.Len() != 1 {
		return fmt.Errorf("observe: actions should be 1-dimensional, "+
			"got %v-dimensional", action.Len())
	}

	q.step = q.nextStep
	q.action = int(action.AtVec(0))
	q.nextStep = nextStep
	return nil
}

// Step updates the action value table based on the most recently
// observed transition
func (q *QLearner) Step() error {
	state := int(q.step.Observation.AtVec(0))
	nextState := int(q.nextStep.Observation.AtVec(0))

	old := q.table.At(state, q.action)
	next := floatutils.Max(q.table.RawRowView(nextState)...)
	target := q.nextStep.Reward + q.discount*next

	q.table.Set(state, q.action,
		(1-q.learningRate)*old+q.learningRate*target)
	return nil
}

// TdError returns the temporal difference error of the argument
// transition
func (q *QLearner) TdError(t timestep.Transition) float64 {
	state := int(t.State.AtVec(0))
	action := int(t.Action.AtVec(0))
	nextState := int(t.NextState.AtVec(0))

	next := floatutils.Max(q.table.RawRowView(nextState)...)
	return t.Reward + t.Discount*next - q.table.At(state, action)
}

// EndEpisode performs cleanup at the end of an episode
func (q *QLearner) EndEpisode() {}
