// Package taxi implements the classic taxi pickup-and-dropoff
// environment on a 5x5 grid.
//
// A taxi drives on a 5x5 grid containing four depots, labelled R, G,
// Y, and B. A passenger waits at one of the depots and must be driven
// to a destination depot. The taxi must drive to the passenger, pick
// the passenger up, drive to the destination depot, and drop the
// passenger off. Some grid cells are separated by walls which the taxi
// cannot drive through.
//
// The environment state consists of the taxi's row and column, the
// passenger's location (one of the four depots or inside the taxi),
// and the destination depot. With a 5x5 grid, 5 passenger locations,
// and 4 destinations there are 500 distinct states. Observations are
// 1-dimensional vectors holding the encoded state index in [0, 499].
//
// Actions are 1-dimensional and discrete in (0, 1, ..., 5):
//
//	Action	Meaning
//	  0		Move south
//	  1		Move north
//	  2		Move east
//	  3		Move west
//	  4		Pick the passenger up
//	  5		Drop the passenger off
//
// Movement actions that would drive the taxi off the grid or through
// a wall leave the taxi in place. Actions outside the legal set result
// in a panic.
package taxi

import (
	"fmt"
	"os"
	"strings"

	"github.com/control-rl/qlearn/environment"
	ts "github.com/control-rl/qlearn/timestep"
	"gonum.org/v1/gonum/mat"
)

const (
	Rows int = 5
	Cols int = 5

	// Passenger locations: the four depots plus inside the taxi
	NumDepots          int = 4
	PassengerLocations int = NumDepots + 1
	InTaxi             int = NumDepots

	NumStates  int = Rows * Cols * PassengerLocations * NumDepots
	NumActions int = 6

	MinDiscreteAction int = 0
	MaxDiscreteAction int = NumActions - 1

	ActionSouth   int = 0
	ActionNorth   int = 1
	ActionEast    int = 2
	ActionWest    int = 3
	ActionPickup  int = 4
	ActionDropoff int = 5

	// Rewards
	StepReward    float64 = -1.0
	DropoffReward float64 = 20.0

	// IllegalActionPenalty is the reward for an illegal pickup or
	// dropoff. Trackers use this sentinel value to count illegal
	// actions.
	IllegalActionPenalty float64 = -10.0
)

// depots holds the (row, col) coordinates of the R, G, Y, and B depots
// in that order
var depots = [NumDepots][2]int{
	{0, 0}, // R
	{0, 4}, // G
	{4, 0}, // Y
	{4, 3}, // B
}

var depotNames = [NumDepots]string{"R", "G", "Y", "B"}

// walls holds the (row, col) cells whose eastern edge is a wall. The
// taxi can drive neither east from such a cell nor west into it from
// the adjacent cell.
var walls = map[[2]int]bool{
	{0, 1}: true,
	{1, 1}: true,
	{3, 0}: true,
	{4, 0}: true,
	{3, 2}: true,
	{4, 2}: true,
}

// State describes a single environment state
type State struct {
	Row, Col    int
	Passenger   int // Depot index or InTaxi
	Destination int // Depot index
}

// Encode encodes a State into its state index in [0, NumStates)
func Encode(s State) int {
	return ((s.Row*Cols+s.Col)*PassengerLocations+s.Passenger)*NumDepots +
		s.Destination
}

// Decode decodes a state index into a State
func Decode(index int) State {
	if index < 0 || index >= NumStates {
		panic(fmt.Sprintf("decode: state index %v ∉ [0, %v)", index,
			NumStates))
	}

	var s State
	s.Destination = index % NumDepots
	index /= NumDepots
	s.Passenger = index % PassengerLocations
	index /= PassengerLocations
	s.Col = index % Cols
	s.Row = index / Cols
	return s
}

// Delivered returns whether the passenger has been dropped off at the
// destination depot. Starting states never place the passenger at the
// destination, so a delivered passenger uniquely identifies a
// successfully completed episode.
func Delivered(s State) bool {
	return s.Passenger != InTaxi && s.Passenger == s.Destination
}

// transition computes the next state and reward for taking action a in
// state s
func transition(s State, a int) (State, float64) {
	next := s
	reward := StepReward

	switch a {
	case ActionSouth:
		if s.Row < Rows-1 {
			next.Row++
		}

	case ActionNorth:
		if s.Row > 0 {
			next.Row--
		}

	case ActionEast:
		if s.Col < Cols-1 && !walls[[2]int{s.Row, s.Col}] {
			next.Col++
		}

	case ActionWest:
		if s.Col > 0 && !walls[[2]int{s.Row, s.Col - 1}] {
			next.Col--
		}

	case ActionPickup:
		atPassenger := s.Passenger != InTaxi &&
			s.Row == depots[s.Passenger][0] && s.Col == depots[s.Passenger][1]
		if atPassenger {
			next.Passenger = InTaxi
		} else {
			reward = IllegalActionPenalty
		}

	case ActionDropoff:
		if s.Passenger != InTaxi {
			reward = IllegalActionPenalty
			break
		}

		if s.Row == depots[s.Destination][0] &&
			s.Col == depots[s.Destination][1] {
			next.Passenger = s.Destination
			reward = DropoffReward
			break
		}

		// Dropping the passenger off at the wrong depot places the
		// passenger at that depot rather than penalizing the taxi
		reward = IllegalActionPenalty
		for i, depot := range depots {
			if s.Row == depot[0] && s.Col == depot[1] {
				next.Passenger = i
				reward = StepReward
				break
			}
		}

	default:
		panic(fmt.Sprintf("transition: illegal action %v ∉ [0, %v]", a,
			MaxDiscreteAction))
	}

	return next, reward
}

// Taxi implements the taxi environment. Taxi implements the
// environment.Environment interface.
type Taxi struct {
	environment.Task
	state       State
	discount    float64
	currentStep ts.TimeStep
}

// New creates a new Taxi environment with the argument task, returning
// the environment and its first TimeStep
func New(t environment.Task, discount float64) (environment.Environment,
	ts.TimeStep, error) {
	taxi := &Taxi{Task: t, discount: discount}

	if _, ok := t.(*PickupDropoff); !ok {
		return nil, ts.TimeStep{}, fmt.Errorf("new: taxi environment "+
			"requires a taxi task, got %T", t)
	}

	firstStep := taxi.Reset()
	return taxi, firstStep, nil
}

// Reset resets the environment and returns a starting state drawn from
// the environment Starter
func (t *Taxi) Reset() ts.TimeStep {
	start := t.Start()
	t.state = stateFromVec(start)

	startStep := ts.New(ts.First, 0, t.discount, t.observation(), 0)
	t.currentStep = startStep
	return startStep
}

// Step takes one environmental step given action a and returns the
// next timestep and a bool indicating whether or not the episode has
// ended. Legal actions are in the set {0, ..., 5}. Actions outside
// this range cause a panic.
func (t *Taxi) Step(a *mat.VecDense) (ts.TimeStep, bool) {
	if a.Len() != 1 {
		panic("step: actions should be 1-dimensional")
	}

	action := int(a.AtVec(0))
	if action < MinDiscreteAction || action > MaxDiscreteAction {
		panic(fmt.Sprintf("step: illegal action %v ∉ [%v, %v]", action,
			MinDiscreteAction, MaxDiscreteAction))
	}

	t.state, _ = transition(t.state, action)

	reward := t.GetReward(t.currentStep.Observation, a, t.observation())
	step := ts.New(ts.Mid, reward, t.discount, t.observation(),
		t.currentStep.Number+1)
	t.End(&step)

	t.currentStep = step
	return step, step.Last()
}

// CurrentTimeStep returns the current timestep of the environment
func (t *Taxi) CurrentTimeStep() ts.TimeStep {
	return t.currentStep
}

// DiscountSpec returns the discounting specification of the
// environment
func (t *Taxi) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{t.discount})

	return environment.NewSpec(shape, environment.Discount, bound, bound,
		environment.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment. Observations are 1-dimensional encoded state indices.
func (t *Taxi) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{0.0})
	upperBound := mat.NewVecDense(1, []float64{float64(NumStates - 1)})

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Discrete)
}

// ActionSpec returns the action specification of the environment
func (t *Taxi) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(1, []float64{float64(MaxDiscreteAction)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// Render renders a text-based version of the environment
func (t *Taxi) Render() {
	var grid strings.Builder

	fmt.Fprintln(&grid, "+---------+")
	for row := 0; row < Rows; row++ {
		fmt.Fprint(&grid, "|")
		for col := 0; col < Cols; col++ {
			fmt.Fprint(&grid, t.cell(row, col))

			if col == Cols-1 {
				fmt.Fprint(&grid, "|")
			} else if walls[[2]int{row, col}] {
				fmt.Fprint(&grid, "|")
			} else {
				fmt.Fprint(&grid, ":")
			}
		}
		fmt.Fprintln(&grid)
	}
	fmt.Fprintln(&grid, "+---------+")

	// Clear screen and draw
	os.Stdout.WriteString("\x1b[3;J\x1b[H\x1b[2J")
	fmt.Printf("%v%v\n", grid.String(), t.status())
}

// cell returns the single-character representation of a grid cell
func (t *Taxi) cell(row, col int) string {
	if t.state.Row == row && t.state.Col == col {
		if t.state.Passenger == InTaxi {
			return "@"
		}
		return "T"
	}

	for i, depot := range depots {
		if depot[0] == row && depot[1] == col {
			return depotNames[i]
		}
	}
	return " "
}

// status summarizes the passenger and destination for rendering
func (t *Taxi) status() string {
	passenger := "in taxi"
	if t.state.Passenger != InTaxi {
		passenger = "at " + depotNames[t.state.Passenger]
	}
	return fmt.Sprintf("Passenger: %v  |  Destination: %v", passenger,
		depotNames[t.state.Destination])
}

// String returns a string representation of the environment
func (t *Taxi) String() string {
	str := "Taxi  |  Position: (%v, %v)  |  %v"
	return fmt.Sprintf(str, t.state.Row, t.state.Col, t.status())
}

// stateFromVec converts a 4-dimensional starting state vector of
// (row, col, passenger, destination) to a State
func stateFromVec(v *mat.VecDense) State {
	if v.Len() != 4 {
		panic(fmt.Sprintf("starting states should be 4-dimensional, "+
			"got %v-dimensional", v.Len()))
	}

	return State{
		Row:         int(v.AtVec(0)),
		Col:         int(v.AtVec(1)),
		Passenger:   int(v.AtVec(2)),
		Destination: int(v.AtVec(3)),
	}
}

// observation returns the current state as a 1-dimensional observation
// vector holding the encoded state index
func (t *Taxi) observation() *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(Encode(t.state))})
}
