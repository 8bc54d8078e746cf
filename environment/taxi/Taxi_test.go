package taxi

import (
	"testing"

	ts "github.com/control-rl/qlearn/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// newFixedEnv creates a Taxi environment whose starting state is fixed
// to the argument State
func newFixedEnv(t *testing.T, s State) *Taxi {
	t.Helper()

	starter := fixedStarter{s}
	task := NewPickupDropoff(starter, 200)
	env, firstStep, err := New(task, 1.0)
	require.NoError(t, err)
	require.True(t, firstStep.First())

	return env.(*Taxi)
}

type fixedStarter struct {
	state State
}

func (f fixedStarter) Start() *mat.VecDense {
	return mat.NewVecDense(4, []float64{
		float64(f.state.Row),
		float64(f.state.Col),
		float64(f.state.Passenger),
		float64(f.state.Destination),
	})
}

func action(a int) *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(a)})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for index := 0; index < NumStates; index++ {
		assert.Equal(t, index, Encode(Decode(index)))
	}
}

func TestEncodeMatchesMixedRadix(t *testing.T) {
	s := State{Row: 2, Col: 3, Passenger: 1, Destination: 2}
	assert.Equal(t, ((2*5+3)*5+1)*4+2, Encode(s))
}

func TestMovementStaysOnGrid(t *testing.T) {
	env := newFixedEnv(t, State{Row: 0, Col: 0, Passenger: 1,
		Destination: 2})

	step, done := env.Step(action(ActionNorth))
	assert.False(t, done)
	assert.Equal(t, StepReward, step.Reward)
	assert.Equal(t, State{Row: 0, Col: 0, Passenger: 1, Destination: 2},
		Decode(int(step.Observation.AtVec(0))))

	step, _ = env.Step(action(ActionSouth))
	assert.Equal(t, 1, Decode(int(step.Observation.AtVec(0))).Row)
}

func TestWallsBlockMovement(t *testing.T) {
	// A wall separates (0, 1) and (0, 2)
	env := newFixedEnv(t, State{Row: 0, Col: 1, Passenger: 1,
		Destination: 2})
	step, _ := env.Step(action(ActionEast))
	assert.Equal(t, 1, Decode(int(step.Observation.AtVec(0))).Col)

	env = newFixedEnv(t, State{Row: 0, Col: 2, Passenger: 1,
		Destination: 2})
	step, _ = env.Step(action(ActionWest))
	assert.Equal(t, 2, Decode(int(step.Observation.AtVec(0))).Col)

	// No wall separates (2, 1) and (2, 2)
	env = newFixedEnv(t, State{Row: 2, Col: 1, Passenger: 1,
		Destination: 2})
	step, _ = env.Step(action(ActionEast))
	assert.Equal(t, 2, Decode(int(step.Observation.AtVec(0))).Col)
}

func TestIllegalPickupPenalized(t *testing.T) {
	// Passenger at G (0, 4), taxi at (2, 2)
	env := newFixedEnv(t, State{Row: 2, Col: 2, Passenger: 1,
		Destination: 2})

	step, done := env.Step(action(ActionPickup))
	assert.False(t, done)
	assert.Equal(t, IllegalActionPenalty, step.Reward)
	assert.Equal(t, 1, Decode(int(step.Observation.AtVec(0))).Passenger)
}

func TestLegalPickup(t *testing.T) {
	// Passenger at R (0, 0), taxi at (0, 0)
	env := newFixedEnv(t, State{Row: 0, Col: 0, Passenger: 0,
		Destination: 3})

	step, done := env.Step(action(ActionPickup))
	assert.False(t, done)
	assert.Equal(t, StepReward, step.Reward)
	assert.Equal(t, InTaxi, Decode(int(step.Observation.AtVec(0))).Passenger)
}

func TestIllegalDropoffPenalized(t *testing.T) {
	// Passenger in taxi, taxi at (2, 2) which is not a depot
	env := newFixedEnv(t, State{Row: 2, Col: 2, Passenger: InTaxi,
		Destination: 3})

	step, done := env.Step(action(ActionDropoff))
	assert.False(t, done)
	assert.Equal(t, IllegalActionPenalty, step.Reward)
	assert.Equal(t, InTaxi, Decode(int(step.Observation.AtVec(0))).Passenger)
}

func TestDropoffAtWrongDepot(t *testing.T) {
	// Passenger in taxi, taxi at Y (4, 0), destination B
	env := newFixedEnv(t, State{Row: 4, Col: 0, Passenger: InTaxi,
		Destination: 3})

	step, done := env.Step(action(ActionDropoff))
	assert.False(t, done)
	assert.Equal(t, StepReward, step.Reward)
	assert.Equal(t, 2, Decode(int(step.Observation.AtVec(0))).Passenger)
}

func TestSuccessfulDropoffEndsEpisode(t *testing.T) {
	// Passenger in taxi, taxi at B (4, 3), destination B
	env := newFixedEnv(t, State{Row: 4, Col: 3, Passenger: InTaxi,
		Destination: 3})

	step, done := env.Step(action(ActionDropoff))
	assert.True(t, done)
	assert.True(t, step.Last())
	assert.Equal(t, ts.TerminalStateReached, step.EndType)
	assert.Equal(t, DropoffReward, step.Reward)
	assert.True(t, env.AtGoal(step.Observation))
}

func TestEpisodeTimeout(t *testing.T) {
	env := newFixedEnv(t, State{Row: 2, Col: 2, Passenger: 0,
		Destination: 1})

	var step ts.TimeStep
	var done bool
	for i := 0; i < 200; i++ {
		step, done = env.Step(action(ActionSouth))
	}
	assert.True(t, done)
	assert.True(t, step.TimedOut())
	assert.Equal(t, 200, step.Number)
}

func TestExploringStarterNeverStartsDelivered(t *testing.T) {
	starter := NewExploringStarter(42)

	for i := 0; i < 1000; i++ {
		start := starter.Start()
		s := State{
			Row:         int(start.AtVec(0)),
			Col:         int(start.AtVec(1)),
			Passenger:   int(start.AtVec(2)),
			Destination: int(start.AtVec(3)),
		}

		require.GreaterOrEqual(t, s.Row, 0)
		require.Less(t, s.Row, Rows)
		require.GreaterOrEqual(t, s.Col, 0)
		require.Less(t, s.Col, Cols)
		require.NotEqual(t, s.Passenger, s.Destination)
		require.False(t, Delivered(s))
	}
}

func TestResetDrawsNewStartingState(t *testing.T) {
	task := NewPickupDropoff(NewExploringStarter(13), 200)
	env, firstStep, err := New(task, 0.9)
	require.NoError(t, err)

	assert.True(t, firstStep.First())
	assert.Equal(t, 0, firstStep.Number)

	step := env.Reset()
	assert.True(t, step.First())
	index := int(step.Observation.AtVec(0))
	assert.GreaterOrEqual(t, index, 0)
	assert.Less(t, index, NumStates)
}
