package policy

import (
	"github.com/control-rl/qlearn/environment"
	"golang.org/x/exp/rand"
)

// Greedy implements a greedy policy over an action value table. A
// Greedy policy is an EGreedy policy that never explores.
type Greedy struct {
	*EGreedy
}

// NewGreedy creates a new Greedy policy for the argument environment
// with a zero-initialized action value table
func NewGreedy(env environment.Environment, seed uint64) (*Greedy, error) {
	egreedy, err := NewEGreedy(env, 0.0, seed)
	if err != nil {
		return nil, err
	}
	return &Greedy{egreedy}, nil
}

// NewGreedyFrom returns a new Greedy policy which shares the action
// value table of the argument EGreedy policy. Updates to either
// policy's table are reflected in the other.
func NewGreedyFrom(e *EGreedy, seed uint64) *Greedy {
	shared := &EGreedy{
		table: e.table,
		rng:   rand.New(rand.NewSource(seed)),
	}
	return &Greedy{shared}
}

// SetEpsilon is a no-op on a Greedy policy
func (g *Greedy) SetEpsilon(_ float64) {}
