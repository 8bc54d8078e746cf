// Package policy implements policies over action value tables for
// environments with discrete states and actions
package policy

import (
	"fmt"

	"github.com/control-rl/qlearn/environment"
	"github.com/control-rl/qlearn/timestep"
	"github.com/control-rl/qlearn/utils/floatutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// EGreedy implements an epsilon greedy policy over an action value
// table. With probability epsilon the policy selects an action
// uniformly at random, and otherwise it selects an action of maximal
// value in the current state. Ties between maximal actions are broken
// by selecting the first maximal action.
//
// The action value table is a matrix with one row per environmental
// state and one column per action, so that the value at (state,
// action) is the estimated return of taking action in state. States
// are identified by the encoded state index held in observation
// vectors.
//
// In evaluation mode, the policy always selects an action of maximal
// value.
type EGreedy struct {
	table   *mat.Dense
	epsilon float64
	eval    bool
	rng     *rand.Rand
}

// NewEGreedy creates a new EGreedy policy for the argument environment
// with a zero-initialized action value table
func NewEGreedy(env environment.Environment, epsilon float64,
	seed uint64) (*EGreedy, error) {
	if epsilon < 0.0 || epsilon > 1.0 {
		return nil, fmt.Errorf("newEGreedy: epsilon %v ∉ [0, 1]", epsilon)
	}

	obsSpec := env.ObservationSpec()
	actionSpec := env.ActionSpec()
	if obsSpec.Cardinality != environment.Discrete ||
		actionSpec.Cardinality != environment.Discrete {
		return nil, fmt.Errorf("newEGreedy: tabular policies require " +
			"discrete states and actions")
	}

	states := int(obsSpec.UpperBound.AtVec(0)) + 1
	actions := int(actionSpec.UpperBound.AtVec(0)) + 1
	table := mat.NewDense(states, actions, nil)

	return &EGreedy{
		table:   table,
		epsilon: epsilon,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// SelectAction selects an action from the policy at the argument
// timestep
func (e *EGreedy) SelectAction(t timestep.TimeStep) *mat.VecDense {
	actionValues := e.ActionValues(t.Observation)

	if !e.eval && e.rng.Float64() < e.epsilon {
		action := e.rng.Intn(len(actionValues))
		return mat.NewVecDense(1, []float64{float64(action)})
	}

	action := floatutils.ArgMax(actionValues)
	return mat.NewVecDense(1, []float64{float64(action)})
}

// ActionValues returns the action values for the state identified by
// the argument observation vector
func (e *EGreedy) ActionValues(obs mat.Vector) []float64 {
	state := int(obs.AtVec(0))
	rows, _ := e.table.Dims()
	if state < 0 || state >= rows {
		panic(fmt.Sprintf("actionValues: state index %v ∉ [0, %v)",
			state, rows))
	}
	return e.table.RawRowView(state)
}

// Table returns the action value table of the policy. Learners update
// the policy by mutating the returned table.
func (e *EGreedy) Table() *mat.Dense {
	return e.table
}

// SetEpsilon sets the exploration fraction of the policy
func (e *EGreedy) SetEpsilon(epsilon float64) {
	e.epsilon = epsilon
}

// Epsilon returns the exploration fraction of the policy
func (e *EGreedy) Epsilon() float64 {
	return e.epsilon
}

// Eval sets the policy to evaluation mode
func (e *EGreedy) Eval() {
	e.eval = true
}

// Train sets the policy to training mode
func (e *EGreedy) Train() {
	e.eval = false
}

// IsEval returns whether the policy is in evaluation mode
func (e *EGreedy) IsEval() bool {
	return e.eval
}
