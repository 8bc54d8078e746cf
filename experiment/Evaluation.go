package experiment

import (
	"fmt"

	"github.com/control-rl/qlearn/agent"
	env "github.com/control-rl/qlearn/environment"
	"github.com/control-rl/qlearn/experiment/tracker"
	ts "github.com/control-rl/qlearn/timestep"
	"github.com/control-rl/qlearn/utils/progressbar"
)

// Evaluation is an Experiment that evaluates a (possibly trained)
// agent. The agent is placed in evaluation mode so that it selects
// actions greedily, and no weight updates are performed. The
// experiment runs a configured number of episodes and aggregates the
// total number of environmental steps taken across episodes for
// reporting as per-episode averages. Further statistics, such as
// per-episode penalty counts, can be gathered through Trackers.
type Evaluation struct {
	env.Environment
	agent.Agent
	episodes        uint
	currentEpisodes uint
	totalSteps      uint
	trackers        []tracker.Tracker
}

// NewEvaluation creates and returns a new evaluation experiment on a
// given environment with a given agent. The episodes parameter
// determines how many evaluation episodes are run, and the t parameter
// is a slice of tracker.Tracker which determine what data is saved.
func NewEvaluation(e env.Environment, a agent.Agent, episodes uint,
	t ...tracker.Tracker) *Evaluation {
	a.Eval()
	return &Evaluation{e, a, episodes, 0, 0, t}
}

// Register registers a tracker.Tracker with the Experiment so that
// data generated during the experiment can be tracked and saved
func (e *Evaluation) Register(t tracker.Tracker) {
	e.trackers = append(e.trackers, t)
}

// RunEpisode runs a single evaluation episode, returning whether the
// configured number of episodes has been run
func (e *Evaluation) RunEpisode() (bool, error) {
	step := e.Environment.Reset()
	e.track(step)

	for !step.Last() {
		action := e.Agent.SelectAction(step)
		step, _ = e.Environment.Step(action)

		e.track(step)
		e.totalSteps++
	}
	e.currentEpisodes++

	return e.currentEpisodes >= e.episodes, nil
}

// Run runs all evaluation episodes, displaying a progress bar over
// episodes
func (e *Evaluation) Run() error {
	ended := e.episodes == 0
	bar := progressbar.New(65, int(e.episodes))

	for !ended {
		var err error
		ended, err = e.RunEpisode()
		if err != nil {
			return err
		}

		bar.Increment()
		bar.Display()
	}
	fmt.Println()
	return nil
}

// AverageEpisodeLength returns the average number of environmental
// steps per completed evaluation episode
func (e *Evaluation) AverageEpisodeLength() float64 {
	if e.currentEpisodes == 0 {
		return 0
	}
	return float64(e.totalSteps) / float64(e.currentEpisodes)
}

// Save saves all the data cached by the Trackers to disk
func (e *Evaluation) Save() {
	for _, t := range e.trackers {
		t.Save()
	}
}

// track tracks the current timestep by caching its data in each
// Tracker
func (e *Evaluation) track(t ts.TimeStep) {
	for _, tr := range e.trackers {
		tr.Track(t)
	}
}
