package lunarlander

import (
	"testing"

	"github.com/control-rl/qlearn/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// newTestStarter returns a starter with no initial random force so
// that episodes evolve predictably
func newTestStarter() environment.Starter {
	return environment.NewUniformStarter([]r1.Interval{
		{Min: InitialX, Max: InitialX},
		{Min: InitialY, Max: InitialY},
		{Min: 0, Max: 0},
	}, 12)
}

// TestNewDiscreteReturnsDiscreteEnv checks that the discrete-action
// constructor returns a discrete-action environment with a
// 1-dimensional discrete action spec.
func TestNewDiscreteReturnsDiscreteEnv(t *testing.T) {
	task := NewLand(newTestStarter(), 500)
	env, step, err := NewDiscrete(task, 0.99, 12)
	require.NoError(t, err)

	_, ok := env.(*Discrete)
	assert.True(t, ok)

	spec := env.ActionSpec()
	assert.Equal(t, environment.Discrete, spec.Cardinality)
	assert.Equal(t, 1, spec.Shape.Len())
	assert.Equal(t, float64(MinDiscreteAction), spec.LowerBound.AtVec(0))
	assert.Equal(t, float64(MaxDiscreteAction), spec.UpperBound.AtVec(0))

	assert.True(t, step.First())
	assert.Equal(t, StateObservations, step.Observation.Len())
}

// TestObservationSpecShape checks that observation vectors match the
// advertised observation spec.
func TestObservationSpecShape(t *testing.T) {
	task := NewLand(newTestStarter(), 500)
	env, step, err := NewContinuous(task, 0.99, 12)
	require.NoError(t, err)

	spec := env.ObservationSpec()
	assert.Equal(t, StateObservations, spec.Shape.Len())
	assert.Equal(t, spec.Shape.Len(), step.Observation.Len())

	for i := 0; i < step.Observation.Len(); i++ {
		assert.LessOrEqual(t, spec.LowerBound.AtVec(i),
			step.Observation.AtVec(i))
		assert.GreaterOrEqual(t, spec.UpperBound.AtVec(i),
			step.Observation.AtVec(i))
	}
}

// TestDiscreteStep checks that stepping with each legal discrete
// action produces in-bounds observations with increasing step numbers.
func TestDiscreteStep(t *testing.T) {
	task := NewLand(newTestStarter(), 500)
	env, _, err := NewDiscrete(task, 0.99, 12)
	require.NoError(t, err)

	spec := env.ObservationSpec()
	for a := MinDiscreteAction; a <= MaxDiscreteAction; a++ {
		prev := env.CurrentTimeStep()

		action := mat.NewVecDense(1, []float64{float64(a)})
		step, last := env.Step(action)

		assert.Equal(t, prev.Number+1, step.Number)
		require.Equal(t, spec.Shape.Len(), step.Observation.Len())

		if last {
			env.Reset()
		}
	}
}

// TestStepLimitEndsEpisode checks that episodes are cut off at the
// step limit when the lander stays in the air.
func TestStepLimitEndsEpisode(t *testing.T) {
	cutoff := 25
	task := NewLand(newTestStarter(), cutoff)
	env, _, err := NewDiscrete(task, 0.99, 12)
	require.NoError(t, err)

	// Fire the main engine so the lander never touches the moon
	action := mat.NewVecDense(1, []float64{2})

	var step = env.CurrentTimeStep()
	var last bool
	for i := 0; i < cutoff && !last; i++ {
		step, last = env.Step(action)
	}

	assert.True(t, last)
	assert.True(t, step.Last())
}

// TestSpawnBoundaryContactDoesNotEndGame checks that construction
// succeeds from the standard starting height. The lander spawns
// overlapping the viewport's top boundary edge, and that contact must
// not count as a crash or as leg ground contact.
func TestSpawnBoundaryContactDoesNotEndGame(t *testing.T) {
	task := NewLand(environment.NewUniformStarter([]r1.Interval{
		{Min: InitialX, Max: InitialX},
		{Min: InitialY, Max: InitialY},
		{Min: 0, Max: 0},
	}, 12), 500)

	env, step, err := NewDiscrete(task, 0.99, 12)
	require.NoError(t, err)

	lander := env.(*Discrete).lunarLander
	assert.False(t, lander.IsGameOver())
	assert.False(t, step.Last())
	assert.True(t, step.First())

	leg1, leg2 := lander.GroundContact()
	assert.False(t, leg1)
	assert.False(t, leg2)
}

// TestLandFirstRewardHasNoShapingBaseline checks that the first reward
// of an episode carries no shaping difference: with no previous state
// to compare against and the engines off, the reward is zero.
func TestLandFirstRewardHasNoShapingBaseline(t *testing.T) {
	task := NewLand(newTestStarter(), 500)
	env, _, err := NewDiscrete(task, 0.99, 12)
	require.NoError(t, err)
	_ = env

	land := task.(*Land)
	land.reset()

	obs := mat.NewVecDense(StateObservations,
		[]float64{0.5, 0.5, 0, 0, 0.1, 0, 0, 0})
	assert.Zero(t, land.GetReward(nil, nil, obs))

	// A repeated observation has a zero shaping difference
	assert.Zero(t, land.GetReward(nil, nil, obs))
}

// TestResetClearsEpisodeState checks that Reset returns a fresh first
// timestep.
func TestResetClearsEpisodeState(t *testing.T) {
	task := NewLand(newTestStarter(), 500)
	env, _, err := NewDiscrete(task, 0.99, 12)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		env.Step(mat.NewVecDense(1, []float64{2}))
	}

	step := env.Reset()
	assert.True(t, step.First())
	assert.Equal(t, 0, step.Number)
	assert.Equal(t, StateObservations, step.Observation.Len())
}
