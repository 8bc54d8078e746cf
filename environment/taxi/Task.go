package taxi

import (
	"fmt"

	"github.com/control-rl/qlearn/environment"
	ts "github.com/control-rl/qlearn/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// PickupDropoff implements the task of picking a passenger up at one
// depot and dropping the passenger off at another. Each timestep
// results in a reward of -1, except that an illegal pickup or dropoff
// results in a reward of -10, and dropping the passenger off at the
// destination depot results in a reward of +20 and ends the episode.
// Episodes also end after a timestep limit is reached.
type PickupDropoff struct {
	environment.Starter
	stepLimit environment.Ender
	goalEnder environment.Ender
}

// NewPickupDropoff creates and returns a new PickupDropoff task. The
// s argument determines the distribution of starting states and
// cutoff is the maximum number of timesteps per episode.
func NewPickupDropoff(s environment.Starter, cutoff int) *PickupDropoff {
	goal := func(obs *mat.VecDense) bool {
		return Delivered(Decode(int(obs.AtVec(0))))
	}

	return &PickupDropoff{
		Starter:   s,
		stepLimit: environment.NewStepLimit(cutoff),
		goalEnder: environment.NewFunctionEnder(goal,
			ts.TerminalStateReached),
	}
}

// GetReward returns the reward for taking action a in state, resulting
// in nextState. State arguments are 1-dimensional encoded state
// indices as produced by the environment.
func (p *PickupDropoff) GetReward(state, a, nextState mat.Vector) float64 {
	_, reward := transition(Decode(int(state.AtVec(0))), int(a.AtVec(0)))
	return reward
}

// AtGoal returns whether the argument state is the goal state, i.e.
// whether the passenger has been delivered to the destination depot
func (p *PickupDropoff) AtGoal(state mat.Matrix) bool {
	r, c := state.Dims()
	if r != 1 || c != 1 {
		panic(fmt.Sprintf("atGoal: expected a single encoded state "+
			"index, got shape (%v, %v)", r, c))
	}
	return Delivered(Decode(int(state.At(0, 0))))
}

// End checks if the argument timestep is the last in the episode, and
// adjusts the timestep accordingly if so
func (p *PickupDropoff) End(t *ts.TimeStep) bool {
	if p.goalEnder.End(t) {
		return true
	}
	return p.stepLimit.End(t)
}

// Min returns the minimum attainable reward
func (p *PickupDropoff) Min() float64 {
	return IllegalActionPenalty
}

// Max returns the maximum attainable reward
func (p *PickupDropoff) Max() float64 {
	return DropoffReward
}

// RewardSpec returns the reward specification of the task
func (p *PickupDropoff) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{p.Min()})
	upperBound := mat.NewVecDense(1, []float64{p.Max()})

	return environment.NewSpec(shape, environment.Reward, lowerBound,
		upperBound, environment.Continuous)
}

// ExploringStarter generates starting states for the taxi environment.
// The taxi's row and column are drawn uniformly over the grid and the
// passenger and destination depots are drawn uniformly over distinct
// depot pairs. The passenger never starts at the destination depot.
type ExploringStarter struct {
	row, col, depot distuv.Categorical
}

// NewExploringStarter creates and returns a new ExploringStarter with
// the argument random seed
func NewExploringStarter(seed uint64) *ExploringStarter {
	src := rand.NewSource(seed)

	rowWeights := make([]float64, Rows)
	for i := range rowWeights {
		rowWeights[i] = 1.0
	}
	colWeights := make([]float64, Cols)
	for i := range colWeights {
		colWeights[i] = 1.0
	}
	depotWeights := make([]float64, NumDepots)
	for i := range depotWeights {
		depotWeights[i] = 1.0
	}

	return &ExploringStarter{
		row:   distuv.NewCategorical(rowWeights, src),
		col:   distuv.NewCategorical(colWeights, src),
		depot: distuv.NewCategorical(depotWeights, src),
	}
}

// Start returns a starting state vector of (row, col, passenger,
// destination)
func (e *ExploringStarter) Start() *mat.VecDense {
	passenger := e.depot.Rand()
	destination := e.depot.Rand()
	for destination == passenger {
		destination = e.depot.Rand()
	}

	return mat.NewVecDense(4, []float64{
		e.row.Rand(),
		e.col.Rand(),
		passenger,
		destination,
	})
}
