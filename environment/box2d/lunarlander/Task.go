package lunarlander

import (
	"math"

	"github.com/control-rl/qlearn/environment"
	ts "github.com/control-rl/qlearn/timestep"
	"gonum.org/v1/gonum/mat"
)

// lunarLanderTask is a Task which requires access to the lunar lander
// environment to compute rewards and episode ends. The environment
// registers itself with the task on construction, and the task's
// per-episode state is cleared whenever the environment is reset.
type lunarLanderTask interface {
	environment.Task
	registerEnv(*lunarLander)
	reset()
}

// Land implements the task of landing the lunar lander on the landing
// pad. Rewards are dense: each step's reward is the change in a
// shaping potential which increases as the lander approaches the pad,
// slows down, becomes upright, and makes leg contact with the moon.
// Firing the main engine costs 0.3 reward per step and firing a side
// engine costs 0.03 reward per step. Crashing the lander or leaving
// the viewport along the x axis results in a reward of -100 and ends
// the episode. Landing and coming to rest results in a reward of +100
// and ends the episode.
type Land struct {
	environment.Starter
	stepLimit environment.Ender

	// prevShaping is the shaping potential of the last state seen, or
	// nil on the first step of an episode when no baseline exists yet
	prevShaping *float64

	env *lunarLander
}

// NewLand returns a new Land task. Episodes are cut off after cutoff
// timesteps.
func NewLand(s environment.Starter, cutoff int) environment.Task {
	stepLimit := environment.NewStepLimit(cutoff)

	return &Land{Starter: s, stepLimit: stepLimit}
}

func (l *Land) registerEnv(env *lunarLander) {
	l.env = env
}

func (l *Land) reset() {
	l.prevShaping = nil
}

// AtGoal returns whether both of the lander's legs have contact with
// the moon
func (l *Land) AtGoal(state mat.Matrix) bool {
	leg1Contact, leg2Contact := l.env.GroundContact()
	return leg1Contact && leg2Contact
}

// GetReward returns the reward for a transition to nextState
func (l *Land) GetReward(state, action, nextState mat.Vector) float64 {
	s := nextState.(*mat.VecDense).RawVector().Data

	reward := 0.0
	shaping := (-100 * math.Sqrt(s[0]*s[0]+s[1]*s[1])) +
		(-100 * math.Sqrt(s[2]*s[2]+s[3]*s[3])) +
		(-100 * math.Abs(s[4])) +
		(10 * s[6]) +
		(10 * s[7])

	if l.prevShaping != nil {
		reward = shaping - *l.prevShaping
	}
	l.prevShaping = &shaping

	// Less fuel spent is better
	reward -= (l.env.MPower() * 0.30)
	reward -= (l.env.SPower() * 0.03)

	if l.env.IsGameOver() || math.Abs(nextState.AtVec(0)) >= 1.0 {
		reward = -100
	} else if !l.env.IsAwake() {
		reward = 100
	}
	return reward
}

// End checks whether the argument TimeStep is the last in the episode.
// If so, the TimeStep is adjusted in place to reflect the episode end.
// Episodes end when the lander crashes, leaves the viewport along the
// x axis, comes to rest on the moon, or when the step limit is
// reached.
func (l *Land) End(t *ts.TimeStep) bool {
	if l.env.IsGameOver() || !l.env.IsAwake() ||
		math.Abs(t.Observation.AtVec(0)) >= 1.0 {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
		return true
	}

	return l.stepLimit.End(t)
}

// Min returns the minimum attainable reward on a single timestep
func (l *Land) Min() float64 {
	return -100.0
}

// Max returns the maximum attainable reward on a single timestep
func (l *Land) Max() float64 {
	return 100.0
}

// RewardSpec returns the reward specification of the task
func (l *Land) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{l.Min()})
	upperBound := mat.NewVecDense(1, []float64{l.Max()})

	return environment.NewSpec(shape, environment.Reward, lowerBound,
		upperBound, environment.Continuous)
}
