package qlearning

import (
	"testing"

	ts "github.com/control-rl/qlearn/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func obs(state int) *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(state)})
}

func TestStepConvergesToFixedPoint(t *testing.T) {
	// A single state with a single self-looping action and constant
	// reward r has the unique fixed point r / (1 - γ)
	const reward, discount, learningRate = 1.0, 0.9, 0.5

	table := mat.NewDense(1, 1, nil)
	learner, err := NewQLearner(table, learningRate, discount)
	require.NoError(t, err)

	first := ts.New(ts.First, 0, discount, obs(0), 0)
	require.NoError(t, learner.ObserveFirst(first))

	action := obs(0)
	for i := 1; i <= 500; i++ {
		next := ts.New(ts.Mid, reward, discount, obs(0), i)
		require.NoError(t, learner.Observe(action, next))
		require.NoError(t, learner.Step())
	}

	assert.InDelta(t, reward/(1-discount), table.At(0, 0), 1e-3)
}

func TestFullLearningRateReplacesValue(t *testing.T) {
	table := mat.NewDense(2, 2, []float64{
		3.0, -1.0,
		0.5, 2.0,
	})
	learner, err := NewQLearner(table, 1.0, 0.9)
	require.NoError(t, err)

	first := ts.New(ts.First, 0, 0.9, obs(0), 0)
	require.NoError(t, learner.ObserveFirst(first))

	next := ts.New(ts.Mid, 5.0, 0.9, obs(1), 1)
	require.NoError(t, learner.Observe(obs(1), next))
	require.NoError(t, learner.Step())

	// With α = 1 the old value is discarded entirely
	assert.Equal(t, 5.0+0.9*2.0, table.At(0, 1))
}

func TestZeroLearningRateLeavesTableUnchanged(t *testing.T) {
	values := []float64{3.0, -1.0, 0.5, 2.0}
	table := mat.NewDense(2, 2, values)
	learner, err := NewQLearner(table, 0.0, 0.9)
	require.NoError(t, err)

	first := ts.New(ts.First, 0, 0.9, obs(0), 0)
	require.NoError(t, learner.ObserveFirst(first))

	next := ts.New(ts.Mid, 5.0, 0.9, obs(1), 1)
	require.NoError(t, learner.Observe(obs(0), next))
	require.NoError(t, learner.Step())

	expected := mat.NewDense(2, 2, []float64{3.0, -1.0, 0.5, 2.0})
	assert.True(t, mat.Equal(expected, table))
}

func TestStepBootstrapsOffMaximalNextValue(t *testing.T) {
	table := mat.NewDense(2, 2, []float64{
		0.0, 0.0,
		1.0, 4.0,
	})
	learner, err := NewQLearner(table, 0.5, 0.5)
	require.NoError(t, err)

	first := ts.New(ts.First, 0, 0.5, obs(0), 0)
	require.NoError(t, learner.ObserveFirst(first))

	next := ts.New(ts.Mid, 2.0, 0.5, obs(1), 1)
	require.NoError(t, learner.Observe(obs(0), next))
	require.NoError(t, learner.Step())

	// target = 2 + 0.5 * max(1, 4) = 4; new = 0.5 * 0 + 0.5 * 4
	assert.Equal(t, 2.0, table.At(0, 0))
}

func TestTdError(t *testing.T) {
	table := mat.NewDense(2, 2, []float64{
		1.0, 0.0,
		2.0, 3.0,
	})
	learner, err := NewQLearner(table, 0.1, 1.0)
	require.NoError(t, err)

	transition := ts.Transition{
		State:     obs(0),
		Action:    obs(0),
		Reward:    1.0,
		Discount:  1.0,
		NextState: obs(1),
	}

	// δ = r + γ * max(2, 3) - table[0, 0]
	assert.Equal(t, 1.0+3.0-1.0, learner.TdError(transition))
}

func TestNewQLearnerInvalidLearningRate(t *testing.T) {
	table := mat.NewDense(1, 1, nil)

	_, err := NewQLearner(table, -0.5, 0.9)
	assert.Error(t, err)

	_, err = NewQLearner(table, 1.5, 0.9)
	assert.Error(t, err)
}
