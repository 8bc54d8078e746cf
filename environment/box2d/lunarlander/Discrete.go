package lunarlander

import (
	"fmt"

	"github.com/control-rl/qlearn/environment"
	ts "github.com/control-rl/qlearn/timestep"
	"gonum.org/v1/gonum/mat"
)

// Discrete implements the lunar lander environment with discrete
// actions. The environment is described in the documentation of the
// Continuous struct. The only difference is that actions are
// 1-dimensional and discrete, taking on values in {0, 1, 2, 3}:
//
//	Action	Meaning
//	  0		No operation
//	  1		Fire left orientation engine at full power
//	  2		Fire main engine at full power
//	  3		Fire right orientation engine at full power
//
// Discrete implements the environment.Environment interface.
type Discrete struct {
	*lunarLander
}

// NewDiscrete returns a new lunar lander environment with discrete
// actions
func NewDiscrete(task environment.Task, discount float64,
	seed uint64) (environment.Environment, ts.TimeStep, error) {
	l, step, err := newLunarLander(task, discount, seed)
	if err != nil {
		return nil, ts.TimeStep{}, err
	}
	return &Discrete{l}, step, nil
}

// ActionSpec returns the action specification of the environment
func (d *Discrete) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(1, []float64{float64(MaxDiscreteAction)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// Step takes one environmental step given a 1-dimensional discrete
// action in {0, 1, 2, 3}
func (d *Discrete) Step(action *mat.VecDense) (ts.TimeStep, bool) {
	switch a := int(action.AtVec(0)); a {
	case 0:
		// No operation
		return d.lunarLander.Step(mat.NewVecDense(2, []float64{0.0, 0.0}))

	case 1:
		// Fire left engine
		return d.lunarLander.Step(mat.NewVecDense(2, []float64{0.0, -1.0}))

	case 2:
		// Fire main engine
		return d.lunarLander.Step(mat.NewVecDense(2, []float64{1.0, 0.0}))

	case 3:
		// Fire right engine
		return d.lunarLander.Step(mat.NewVecDense(2, []float64{0.0, 1.0}))

	default:
		panic(fmt.Sprintf("step: illegal action selection, expected "+
			"action ϵ [0, 1, 2, 3], received action = %v", a))
	}
}
