package policy

import (
	"testing"

	"github.com/control-rl/qlearn/environment/taxi"
	ts "github.com/control-rl/qlearn/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// newTestPolicy creates an EGreedy policy in a taxi environment along
// with the environment's first timestep
func newTestPolicy(t *testing.T, epsilon float64) (*EGreedy,
	ts.TimeStep) {
	t.Helper()

	task := taxi.NewPickupDropoff(taxi.NewExploringStarter(37), 200)
	env, firstStep, err := taxi.New(task, 0.9)
	require.NoError(t, err)

	p, err := NewEGreedy(env, epsilon, 37)
	require.NoError(t, err)
	return p, firstStep
}

func TestNewEGreedyTableSize(t *testing.T) {
	p, _ := newTestPolicy(t, 0.1)

	rows, cols := p.Table().Dims()
	assert.Equal(t, taxi.NumStates, rows)
	assert.Equal(t, taxi.NumActions, cols)
	assert.Zero(t, mat.Norm(p.Table(), 1))
}

func TestNewEGreedyInvalidEpsilon(t *testing.T) {
	task := taxi.NewPickupDropoff(taxi.NewExploringStarter(37), 200)
	env, _, err := taxi.New(task, 0.9)
	require.NoError(t, err)

	_, err = NewEGreedy(env, -0.1, 37)
	assert.Error(t, err)

	_, err = NewEGreedy(env, 1.1, 37)
	assert.Error(t, err)
}

func TestGreedySelectionIsArgMax(t *testing.T) {
	p, step := newTestPolicy(t, 0.0)
	state := int(step.Observation.AtVec(0))

	p.Table().SetRow(state, []float64{5, 3, 5, 1, 0, 0})
	action := p.SelectAction(step)
	assert.Equal(t, 0.0, action.AtVec(0))

	p.Table().SetRow(state, []float64{1, 7, 7, 0, 0, 0})
	action = p.SelectAction(step)
	assert.Equal(t, 1.0, action.AtVec(0))
}

func TestFullExplorationIsUniform(t *testing.T) {
	p, step := newTestPolicy(t, 1.0)
	state := int(step.Observation.AtVec(0))

	// A strongly preferred action should not bias selection
	p.Table().SetRow(state, []float64{100, 0, 0, 0, 0, 0})

	const trials = 10000
	counts := make([]int, taxi.NumActions)
	for i := 0; i < trials; i++ {
		counts[int(p.SelectAction(step).AtVec(0))]++
	}

	expected := 1.0 / float64(taxi.NumActions)
	for a, count := range counts {
		freq := float64(count) / float64(trials)
		assert.InDeltaf(t, expected, freq, 0.05, "action %v selected "+
			"with frequency %v", a, freq)
	}
}

func TestEvalModeSelectsGreedily(t *testing.T) {
	p, step := newTestPolicy(t, 1.0)
	state := int(step.Observation.AtVec(0))
	p.Table().SetRow(state, []float64{0, 0, 0, 1, 0, 0})

	require.False(t, p.IsEval())
	p.Eval()
	require.True(t, p.IsEval())

	for i := 0; i < 100; i++ {
		assert.Equal(t, 3.0, p.SelectAction(step).AtVec(0))
	}

	p.Train()
	assert.False(t, p.IsEval())
}

func TestGreedySharesTable(t *testing.T) {
	p, step := newTestPolicy(t, 0.5)
	g := NewGreedyFrom(p, 37)
	state := int(step.Observation.AtVec(0))

	p.Table().SetRow(state, []float64{0, 0, 4, 0, 0, 0})
	assert.Equal(t, 2.0, g.SelectAction(step).AtVec(0))

	g.SetEpsilon(0.9)
	assert.Equal(t, 0.0, g.Epsilon())
}
