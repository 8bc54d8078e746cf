package tracker

import (
	"testing"

	ts "github.com/control-rl/qlearn/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func step(number int, reward float64, last bool) ts.TimeStep {
	stepType := ts.Mid
	if number == 0 {
		stepType = ts.First
	}

	obs := mat.NewVecDense(1, []float64{0})
	t := ts.New(stepType, reward, 1.0, obs, number)
	if last {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
	}
	return t
}

// trackEpisode sends a full episode with the argument rewards to the
// Tracker. The first timestep carries no reward.
func trackEpisode(tr Tracker, rewards []float64) {
	tr.Track(step(0, 0, false))
	for i, r := range rewards {
		tr.Track(step(i+1, r, i == len(rewards)-1))
	}
}

func TestReturnAccumulatesEpisodicReturn(t *testing.T) {
	file := t.TempDir() + "/returns.bin"
	tr := NewReturn(file)

	trackEpisode(tr, []float64{-1, -1, 20})
	trackEpisode(tr, []float64{-1, -10, -1})

	tr.Save()
	data := LoadData(file)

	require.Len(t, data, 2)
	assert.Equal(t, 18.0, data[0])
	assert.Equal(t, -12.0, data[1])
}

func TestReturnPanicsOnNonSequentialTimesteps(t *testing.T) {
	tr := NewReturn(t.TempDir() + "/returns.bin")

	tr.Track(step(0, 0, false))
	assert.Panics(t, func() { tr.Track(step(5, -1, false)) })
}

func TestEpisodeLengthRecordsFinishedEpisodesOnly(t *testing.T) {
	file := t.TempDir() + "/lengths.bin"
	tr := NewEpisodeLength(file)

	trackEpisode(tr, []float64{-1, -1, -1, -1})
	trackEpisode(tr, []float64{-1, -1})

	// Unfinished episode should not be recorded
	tr.Track(step(0, 0, false))
	tr.Track(step(1, -1, false))

	tr.Save()
	data := LoadData(file)

	require.Len(t, data, 2)
	assert.Equal(t, 4.0, data[0])
	assert.Equal(t, 2.0, data[1])
}

func TestPenaltyCountsSentinelRewards(t *testing.T) {
	file := t.TempDir() + "/penalties.bin"
	tr := NewPenalty(file, -10.0)

	trackEpisode(tr, []float64{-1, -10, -1, -10, 20})
	trackEpisode(tr, []float64{-1, -1, 20})

	tr.Save()
	data := LoadData(file)

	require.Len(t, data, 2)
	assert.Equal(t, 2.0, data[0])
	assert.Equal(t, 0.0, data[1])
}

func TestPenaltyIgnoresFirstTimestep(t *testing.T) {
	tr := NewPenalty(t.TempDir()+"/penalties.bin", 0.0)

	// The first timestep's reward equals the sentinel but precedes any
	// action, so it must not be counted
	tr.Track(step(0, 0, false))
	tr.Track(step(1, -1, true))

	counts := tr.(*Penalty).EpisodePenalties()
	require.Len(t, counts, 1)
	assert.Zero(t, counts[0])
}
