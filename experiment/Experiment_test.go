package experiment

import (
	"testing"

	"github.com/control-rl/qlearn/agent/tabular/qlearning"
	"github.com/control-rl/qlearn/environment"
	"github.com/control-rl/qlearn/experiment/tracker"
	ts "github.com/control-rl/qlearn/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// chainEnv is a deterministic two-state, two-action environment with a
// known transition and reward table:
//
//	state 0, action 0 -> state 0, reward 0
//	state 0, action 1 -> state 1, reward 1
//	state 1, action 0 -> state 0, reward 0
//	state 1, action 1 -> state 1, reward 2
//
// Episodes are cut off after a fixed number of steps. The optimal
// action values are analytically computable: with discount γ, the
// optimal policy stays in state 1 forever, so V(1) = 2/(1-γ).
type chainEnv struct {
	state    int
	discount float64
	cutoff   int
	current  ts.TimeStep
}

func newChainEnv(discount float64, cutoff int) *chainEnv {
	c := &chainEnv{discount: discount, cutoff: cutoff}
	c.Reset()
	return c
}

func (c *chainEnv) obs() *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(c.state)})
}

func (c *chainEnv) Reset() ts.TimeStep {
	c.state = 0
	c.current = ts.New(ts.First, 0, c.discount, c.obs(), 0)
	return c.current
}

func (c *chainEnv) Step(a *mat.VecDense) (ts.TimeStep, bool) {
	action := int(a.AtVec(0))

	var reward float64
	switch {
	case c.state == 0 && action == 1:
		c.state = 1
		reward = 1
	case c.state == 1 && action == 0:
		c.state = 0
		reward = 0
	case c.state == 1 && action == 1:
		reward = 2
	}

	t := ts.New(ts.Mid, reward, c.discount, c.obs(), c.current.Number+1)
	c.End(&t)
	c.current = t
	return t, t.Last()
}

func (c *chainEnv) End(t *ts.TimeStep) bool {
	if t.Number >= c.cutoff {
		t.StepType = ts.Last
		t.SetEnd(ts.Timeout)
		return true
	}
	return false
}

func (c *chainEnv) CurrentTimeStep() ts.TimeStep { return c.current }

func (c *chainEnv) Start() *mat.VecDense { return c.obs() }

func (c *chainEnv) GetReward(state, action, nextState mat.Vector) float64 {
	return c.current.Reward
}

func (c *chainEnv) AtGoal(state mat.Matrix) bool { return false }

func (c *chainEnv) Min() float64 { return 0 }
func (c *chainEnv) Max() float64 { return 2 }

func (c *chainEnv) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	return environment.NewSpec(shape, environment.Reward,
		mat.NewVecDense(1, []float64{0}), mat.NewVecDense(1, []float64{2}),
		environment.Continuous)
}

func (c *chainEnv) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{c.discount})
	return environment.NewSpec(shape, environment.Discount, bound, bound,
		environment.Continuous)
}

func (c *chainEnv) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	return environment.NewSpec(shape, environment.Observation,
		mat.NewVecDense(1, []float64{0}), mat.NewVecDense(1, []float64{1}),
		environment.Discrete)
}

func (c *chainEnv) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	return environment.NewSpec(shape, environment.Action,
		mat.NewVecDense(1, []float64{0}), mat.NewVecDense(1, []float64{1}),
		environment.Discrete)
}

// TestOnlineConvergesOnDeterministicChain checks that training a
// tabular Q-learning agent online on the deterministic chain
// environment converges the value table to the analytically optimal
// values.
func TestOnlineConvergesOnDeterministicChain(t *testing.T) {
	discount := 0.9
	env := newChainEnv(discount, 25)

	conf := qlearning.Config{Epsilon: 0.5, LearningRate: 0.1}
	a, err := conf.CreateAgent(env, 42)
	require.NoError(t, err)

	exp := NewOnline(env, a, 50000)
	require.NoError(t, exp.Run())

	// V(1) = 2/(1-γ); backing up from there gives the remaining
	// optimal action values
	v1 := 2.0 / (1.0 - discount)
	q01 := 1.0 + discount*v1
	q10 := discount * q01
	q00 := discount * q01

	table := a.(*qlearning.QLearning).Table()
	assert.InDelta(t, q00, table.At(0, 0), 1e-3)
	assert.InDelta(t, q01, table.At(0, 1), 1e-3)
	assert.InDelta(t, q10, table.At(1, 0), 1e-3)
	assert.InDelta(t, v1, table.At(1, 1), 1e-3)
}

// TestEvaluationAveragesEpisodeLength checks that the evaluation
// experiment runs the configured number of greedy episodes and
// averages their lengths.
func TestEvaluationAveragesEpisodeLength(t *testing.T) {
	cutoff := 10
	env := newChainEnv(0.9, cutoff)

	conf := qlearning.Config{Epsilon: 0.25, LearningRate: 0.1}
	a, err := conf.CreateAgent(env, 42)
	require.NoError(t, err)

	exp := NewEvaluation(env, a, 3)
	require.NoError(t, exp.Run())

	// Each episode is cut off at the step limit
	assert.True(t, a.IsEval())
	assert.Equal(t, float64(cutoff), exp.AverageEpisodeLength())
}

// TestEvaluationLeavesTableUnchanged checks that no value table
// updates are performed during evaluation.
func TestEvaluationLeavesTableUnchanged(t *testing.T) {
	env := newChainEnv(0.9, 10)

	conf := qlearning.Config{Epsilon: 0.5, LearningRate: 0.1}
	a, err := conf.CreateAgent(env, 42)
	require.NoError(t, err)

	table := a.(*qlearning.QLearning).Table()
	before := mat.DenseCopyOf(table)

	exp := NewEvaluation(env, a, 2)
	require.NoError(t, exp.Run())

	assert.True(t, mat.Equal(before, table))
}

// TestOnlineTracksEpisodeData checks that registered trackers see
// every timestep of the experiment.
func TestOnlineTracksEpisodeData(t *testing.T) {
	cutoff := 5
	env := newChainEnv(0.9, cutoff)

	conf := qlearning.Config{Epsilon: 0.5, LearningRate: 0.1}
	a, err := conf.CreateAgent(env, 42)
	require.NoError(t, err)

	penalty := tracker.NewPenalty(t.TempDir()+"/penalties.bin", -10.0)
	exp := NewOnline(env, a, 3*uint(cutoff), penalty)
	require.NoError(t, exp.Run())

	// The chain environment never emits the sentinel penalty
	counts := penalty.(*tracker.Penalty).EpisodePenalties()
	require.Len(t, counts, 3)
	for _, count := range counts {
		assert.Zero(t, count)
	}
}
