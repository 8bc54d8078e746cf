// Package experiment implements functionality for running an
// experiment
package experiment

import (
	"fmt"

	"github.com/control-rl/qlearn/agent"
	"github.com/control-rl/qlearn/environment/envconfig"
	"github.com/control-rl/qlearn/experiment/tracker"
)

// Experiment outlines structs that can run experiments. Experiments
// track environment TimeSteps, caching data from each TimeStep in RAM
// to be later saved to disk. The Save() function takes all cached data
// and saves it to disk, usually after the experiment has been run. The
// Run() method runs all episodes until the experiment's budget is
// exhausted. The RunEpisode() method runs a single episode.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments
// send each TimeStep to Trackers using the Tracker's Track() method.
// The Tracker then determines which data from the TimeStep it caches
// and saves. New Trackers can be registered with an Experiment through
// the constructor or through an Experiment's Register() method.
type Experiment interface {
	Run() error
	RunEpisode() (bool, error) // Returns whether the experiment is done

	// Save all tracked data to disk
	Save()

	// Register adds a new tracker.Tracker to the (possibly already
	// running) experiment. Useful if data should be tracked only after
	// a specified event.
	Register(t tracker.Tracker)
}

// Type describes the type of experiment that a Config describes
type Type string

// Available experiment types
const (
	OnlineExp     Type = "OnlineExperiment"
	EvaluationExp Type = "EvaluationExperiment"
)

// Config represents a configuration of an experiment
type Config struct {
	Type
	MaxSteps  uint // Online: total environmental steps
	Episodes  uint // Evaluation: number of evaluation episodes
	EnvConf   envconfig.Config
	AgentConf agent.Config
}

// CreateExp creates the experiment described by the Config with the
// argument trackers registered
func (c Config) CreateExp(seed uint64,
	t ...tracker.Tracker) (Experiment, error) {
	env, _, err := c.EnvConf.Create(seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create "+
			"environment: %v", err)
	}

	a, err := c.AgentConf.CreateAgent(env, seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %v", err)
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(env, a, c.MaxSteps, t...), nil

	case EvaluationExp:
		return NewEvaluation(env, a, c.Episodes, t...), nil
	}

	return nil, fmt.Errorf("createExp: no such experiment type %v", c.Type)
}
