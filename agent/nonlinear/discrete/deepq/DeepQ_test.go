package deepq

import (
	"testing"

	"github.com/control-rl/qlearn/agent"
	"github.com/control-rl/qlearn/environment"
	"github.com/control-rl/qlearn/environment/taxi"
	"github.com/control-rl/qlearn/expreplay"
	"github.com/control-rl/qlearn/initwfn"
	"github.com/control-rl/qlearn/network"
	"github.com/control-rl/qlearn/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, targetUpdateInterval int) Config {
	adam, err := solver.NewDefaultAdam(0.001, 4)
	require.NoError(t, err)

	init, err := initwfn.NewGlorotU(1.0)
	require.NoError(t, err)

	return Config{
		PolicyLayers: []int{8},
		Biases:       []bool{true},
		Activations:  []*network.Activation{network.ReLU()},
		Solver:       adam,
		InitWFn:      init,
		Epsilon:      0.25,
		ExpReplay: expreplay.Config{
			RemoveMethod:      expreplay.Fifo,
			SampleMethod:      expreplay.Uniform,
			RemoveSize:        1,
			SampleSize:        4,
			MaxReplayCapacity: 64,
			MinReplayCapacity: 4,
		},
		Tau:                  1.0,
		TargetUpdateInterval: targetUpdateInterval,
	}
}

func newTestEnv(t *testing.T) environment.Environment {
	starter := taxi.NewExploringStarter(12)
	task := taxi.NewPickupDropoff(starter, 200)

	env, _, err := taxi.New(task, 0.99)
	require.NoError(t, err)
	return env
}

// weights deep-copies the values of a policy's learnable weights
func weights(p agent.EGreedyNNPolicy) [][]float64 {
	var out [][]float64
	for _, learnable := range p.Learnables() {
		data := learnable.Value().Data().([]float64)
		out = append(out, append([]float64(nil), data...))
	}
	return out
}

func TestConfigCreatesValidAgent(t *testing.T) {
	conf := newTestConfig(t, 1)
	env := newTestEnv(t)

	a, err := conf.CreateAgent(env, 42)
	require.NoError(t, err)

	assert.True(t, conf.ValidAgent(a))
	assert.Equal(t, agent.DeepQ, conf.Type())
	assert.Equal(t, conf.ExpReplay.SampleSize, conf.BatchSize())
}

func TestConfigValidateRejectsMismatchedLayers(t *testing.T) {
	conf := newTestConfig(t, 1)
	conf.Biases = []bool{true, false}

	assert.Error(t, conf.Validate())
}

// TestStepSkipsUpdateUntilMinCapacity checks that no weight update is
// performed while the replay buffer holds fewer transitions than its
// minimum capacity.
func TestStepSkipsUpdateUntilMinCapacity(t *testing.T) {
	conf := newTestConfig(t, 1)
	env := newTestEnv(t)

	a, err := conf.CreateAgent(env, 42)
	require.NoError(t, err)
	d := a.(*DeepQ)

	before := weights(d.behaviourPolicy)
	require.NoError(t, d.Step())
	assert.Equal(t, before, weights(d.behaviourPolicy))
}

// TestTrainingChangesWeights runs the full observe/step cycle on the
// taxi environment and checks that gradient steps change the policy
// weights and that the target network is synced to the training
// network.
func TestTrainingChangesWeights(t *testing.T) {
	conf := newTestConfig(t, 1)
	env := newTestEnv(t)

	a, err := conf.CreateAgent(env, 42)
	require.NoError(t, err)
	d := a.(*DeepQ)

	initial := weights(d.behaviourPolicy)

	step := env.Reset()
	require.NoError(t, d.ObserveFirst(step))

	for i := 0; i < 40; i++ {
		action := d.SelectAction(step)

		var last bool
		step, last = env.Step(action)

		require.NoError(t, d.Observe(action, step))
		require.NoError(t, d.Step())

		if last {
			step = env.Reset()
			require.NoError(t, d.ObserveFirst(step))
		}
	}

	assert.Greater(t, d.gradientSteps, 0)
	assert.NotEqual(t, initial, weights(d.behaviourPolicy))

	// Tau = 1 with a target update interval of 1 hard-syncs the target
	// network to the training network after every gradient step
	assert.Equal(t, weights(d.trainNet), weights(d.targetNet))
}
