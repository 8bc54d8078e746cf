package expreplay

import (
	"testing"

	"github.com/control-rl/qlearn/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// newTransition creates a transition whose state, action, next state,
// and next action vectors are filled with the argument value
func newTransition(value float64) timestep.Transition {
	fill := func(n int) *mat.VecDense {
		data := make([]float64, n)
		for i := range data {
			data[i] = value
		}
		return mat.NewVecDense(n, data)
	}

	return timestep.Transition{
		State:      fill(2),
		Action:     fill(1),
		Reward:     value,
		Discount:   0.99,
		NextState:  fill(2),
		NextAction: fill(1),
	}
}

func TestSampleEmptyBuffer(t *testing.T) {
	buffer, err := New(NewFifoSelector(1), NewUniformSelector(1, 14), 2,
		4, 2, 1)
	require.NoError(t, err)

	_, _, _, _, _, _, err = buffer.Sample()
	require.Error(t, err)
	assert.True(t, IsEmptyBuffer(err))
}

func TestSampleBelowMinCapacity(t *testing.T) {
	buffer, err := New(NewFifoSelector(1), NewUniformSelector(1, 14), 2,
		4, 2, 1)
	require.NoError(t, err)

	require.NoError(t, buffer.Add(newTransition(1.0)))

	_, _, _, _, _, _, err = buffer.Sample()
	require.Error(t, err)
	assert.True(t, IsInsufficientSamples(err))
	assert.False(t, IsEmptyBuffer(err))
}

func TestSampleReturnsStoredTransition(t *testing.T) {
	buffer, err := New(NewFifoSelector(1), NewUniformSelector(1, 14), 1,
		4, 2, 1)
	require.NoError(t, err)

	require.NoError(t, buffer.Add(newTransition(3.0)))

	state, action, reward, discount, nextState, nextAction,
		err := buffer.Sample()
	require.NoError(t, err)

	assert.Equal(t, []float64{3.0, 3.0}, state)
	assert.Equal(t, []float64{3.0}, action)
	assert.Equal(t, []float64{3.0}, reward)
	assert.Equal(t, []float64{0.99}, discount)
	assert.Equal(t, []float64{3.0, 3.0}, nextState)
	assert.Equal(t, []float64{3.0}, nextAction)
}

func TestFifoRemovalEvictsOldest(t *testing.T) {
	// Sampler is also FiFo so that samples come back oldest first
	buffer, err := New(NewFifoSelector(1), NewFifoSelector(1), 1, 2, 2, 1)
	require.NoError(t, err)

	require.NoError(t, buffer.Add(newTransition(1.0)))
	require.NoError(t, buffer.Add(newTransition(2.0)))
	assert.Equal(t, 2, buffer.Capacity())

	// Capacity is 2, so adding a third transition evicts the first
	require.NoError(t, buffer.Add(newTransition(3.0)))
	assert.Equal(t, 2, buffer.Capacity())

	state, _, _, _, _, _, err := buffer.Sample()
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 2.0}, state)
}

func TestBatchSizedSamples(t *testing.T) {
	buffer, err := New(NewFifoSelector(1), NewUniformSelector(4, 14), 1,
		8, 2, 1)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		require.NoError(t, buffer.Add(newTransition(float64(i))))
	}
	assert.Equal(t, 4, buffer.BatchSize())

	state, action, reward, discount, _, _, err := buffer.Sample()
	require.NoError(t, err)
	assert.Len(t, state, 4*2)
	assert.Len(t, action, 4)
	assert.Len(t, reward, 4)
	assert.Len(t, discount, 4)
}

func TestAddRejectsWrongSizes(t *testing.T) {
	buffer, err := New(NewFifoSelector(1), NewUniformSelector(1, 14), 1,
		4, 3, 1)
	require.NoError(t, err)

	// Buffer expects 3-dimensional states
	assert.Error(t, buffer.Add(newTransition(1.0)))
}

func TestNilNextActionStoredAsZeros(t *testing.T) {
	buffer, err := New(NewFifoSelector(1), NewUniformSelector(1, 14), 1,
		4, 2, 1)
	require.NoError(t, err)

	transition := newTransition(5.0)
	transition.NextAction = nil
	require.NoError(t, buffer.Add(transition))

	_, _, _, _, _, nextAction, err := buffer.Sample()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0}, nextAction)
}

func TestOnlineBuffer(t *testing.T) {
	// minCapacity == maxCapacity == 1 yields an online buffer
	buffer, err := New(NewFifoSelector(1), NewUniformSelector(1, 14), 1,
		1, 2, 1)
	require.NoError(t, err)

	_, _, _, _, _, _, err = buffer.Sample()
	assert.True(t, IsEmptyBuffer(err))

	require.NoError(t, buffer.Add(newTransition(1.0)))
	require.NoError(t, buffer.Add(newTransition(2.0)))

	state, _, reward, _, _, _, err := buffer.Sample()
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 2.0}, state)
	assert.Equal(t, []float64{2.0}, reward)
}

func TestConfigCreate(t *testing.T) {
	config := Config{
		RemoveMethod:      Fifo,
		SampleMethod:      Uniform,
		RemoveSize:        1,
		SampleSize:        2,
		MaxReplayCapacity: 16,
		MinReplayCapacity: 2,
	}

	buffer, err := config.Create(4, 1, 14)
	require.NoError(t, err)
	assert.Equal(t, 16, buffer.MaxCapacity())
	assert.Equal(t, 2, buffer.MinCapacity())
	assert.Equal(t, 2, buffer.BatchSize())

	config.SampleMethod = SelectorType("NoSuchSelector")
	_, err = config.Create(4, 1, 14)
	assert.Error(t, err)
}
