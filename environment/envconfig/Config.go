// Package envconfig provides configuration structs for configuring
// environments with default parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	env "github.com/control-rl/qlearn/environment"
	"github.com/control-rl/qlearn/environment/box2d/lunarlander"
	"github.com/control-rl/qlearn/environment/taxi"
	ts "github.com/control-rl/qlearn/timestep"
	"gonum.org/v1/gonum/spatial/r1"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Taxi        EnvName = "Taxi"
	LunarLander EnvName = "LunarLander"
)

// TaskName stores the tasks that can be configured with this package.
// Note that not all tasks can be used with all environments. The tasks
// that can be used with each environment are as follows:
//
//	Environment			Task
//	Taxi				PickupDropoff
//	LunarLander			Land
type TaskName string

// Tasks available for configuration
const (
	PickupDropoff TaskName = "PickupDropoff"
	Land          TaskName = "Land"
)

// Config implements a specific configuration of a specific environment
// and specific task. Not all environments can have all tasks.
type Config struct {
	Environment       EnvName
	Task              TaskName
	ContinuousActions bool
	EpisodeCutoff     uint
	Discount          float64
}

// NewConfig returns a new environment Config
func NewConfig(envName EnvName, taskName TaskName, continuousActions bool,
	episodeCutoff uint, discount float64) Config {
	return Config{
		Environment:       envName,
		Task:              taskName,
		ContinuousActions: continuousActions,
		EpisodeCutoff:     episodeCutoff,
		Discount:          discount,
	}
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	switch c.Environment {
	case Taxi:
		return CreateTaxi(c.ContinuousActions, c.Task,
			int(c.EpisodeCutoff), seed, c.Discount)

	case LunarLander:
		return CreateLunarLander(c.ContinuousActions, c.Task,
			int(c.EpisodeCutoff), seed, c.Discount)
	}

	return nil, ts.TimeStep{}, fmt.Errorf("create: cannot create "+
		"environment %v, no such environment", c.Environment)
}

// CreateTaxi is a factory for creating the Taxi environment with
// default task parameters
func CreateTaxi(continuousActions bool, taskName TaskName, cutoff int,
	seed uint64, discount float64) (env.Environment, ts.TimeStep, error) {
	if continuousActions {
		return nil, ts.TimeStep{}, fmt.Errorf("createTaxi: Taxi " +
			"environment has no continuous-action version")
	}

	var task env.Task
	switch taskName {
	case PickupDropoff:
		s := taxi.NewExploringStarter(seed)
		task = taxi.NewPickupDropoff(s, cutoff)

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createTaxi: Taxi "+
			"environment has no task %v", taskName)
	}

	return taxi.New(task, discount)
}

// CreateLunarLander is a factory for creating the LunarLander
// environment with default physical parameters and default task
// parameters
func CreateLunarLander(continuousActions bool, taskName TaskName,
	cutoff int, seed uint64, discount float64) (env.Environment,
	ts.TimeStep, error) {
	s := env.NewUniformStarter([]r1.Interval{
		{Min: lunarlander.InitialX, Max: lunarlander.InitialX},
		{Min: lunarlander.InitialY, Max: lunarlander.InitialY},
		{Min: lunarlander.InitialRandom, Max: lunarlander.InitialRandom},
	}, seed)

	var task env.Task
	switch taskName {
	case Land:
		task = lunarlander.NewLand(s, cutoff)

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createLunarLander: "+
			"LunarLander environment has no task %v", taskName)
	}

	if continuousActions {
		return lunarlander.NewContinuous(task, discount, seed)
	}
	return lunarlander.NewDiscrete(task, discount, seed)
}
