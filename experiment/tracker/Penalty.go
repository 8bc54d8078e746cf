package tracker

import (
	"encoding/gob"
	"log"
	"os"

	ts "github.com/control-rl/qlearn/timestep"
)

// Penalty tracks and saves the number of penalty rewards received on
// each episode of an experiment. A reward is counted as a penalty if
// it equals the sentinel penalty value of the environment, for example
// taxi.IllegalActionPenalty. The counts are purely for reporting and
// have no effect on learning.
//
// Note: an episode must finish for this Tracker to save its data.
// If the last episode in an experiment does not finish, that episode's
// penalty count will not be saved.
type Penalty struct {
	sentinel         float64
	currentPenalties float64
	episodePenalties []float64
	filename         string
}

// NewPenalty returns a new Penalty Tracker which counts rewards equal
// to sentinel and saves its data at the specified location filename
func NewPenalty(filename string, sentinel float64) Tracker {
	var t Penalty
	t.sentinel = sentinel
	t.filename = filename
	return &t
}

// Track counts the timestep's reward if it equals the sentinel penalty
// value. When the last timestep in an episode is tracked, the episode's
// penalty count is cached and counting restarts for the next episode.
func (p *Penalty) Track(t ts.TimeStep) {
	if !t.First() && t.Reward == p.sentinel {
		p.currentPenalties++
	}

	if t.Last() {
		p.episodePenalties = append(p.episodePenalties, p.currentPenalties)
		p.currentPenalties = 0
	}
}

// EpisodePenalties returns the penalty counts of all completed
// episodes tracked so far
func (p *Penalty) EpisodePenalties() []float64 {
	return p.episodePenalties
}

// Save saves the data tracked by the Penalty Tracker to disk
func (p *Penalty) Save() {
	// Open the file to save to
	file, err := os.Create(p.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	// Encode and save the file
	en := gob.NewEncoder(file)
	if err = en.Encode(p.episodePenalties); err != nil {
		log.Fatalf("could not encode penalty data: %v", err)
	}
}
