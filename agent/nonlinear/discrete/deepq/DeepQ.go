// Package deepq implements the deep Q-learning algorithm. The
// algorithm is conceptually similar to DQN, learning action values
// with a neural network, a target network, and an experience replay
// buffer, but uses the mean squared TD error as its loss.
package deepq

import (
	"fmt"
	"os"

	"github.com/control-rl/qlearn/agent"
	"github.com/control-rl/qlearn/environment"
	"github.com/control-rl/qlearn/expreplay"
	ts "github.com/control-rl/qlearn/timestep"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/control-rl/qlearn/agent/nonlinear/discrete/policy"
)

// DeepQ implements the deep Q-learning algorithm
type DeepQ struct {
	// Action selection policies
	behaviourPolicy   agent.EGreedyNNPolicy // Behaviour egreedy policy
	behaviourPolicyVM G.VM
	targetPolicy      agent.EGreedyNNPolicy // Target greedy policy
	targetPolicyVM    G.VM

	// Policy for learning weights that takes in batches of inputs
	trainNet   agent.EGreedyNNPolicy // Policy whose weights are adapted
	trainNetVM G.VM
	solver     G.Solver // Adapts the weights of trainNet

	// Network that provides the update target for a batch of inputs.
	// Note that this is a target network, providing the update target.
	// It is not the network for the target policy.
	targetNet   agent.EGreedyNNPolicy
	targetNetVM G.VM

	// Variables to track target network updates
	tau                  float64 // Polyak averaging constant
	targetUpdateInterval int     // Steps between target updates
	gradientSteps        int

	selectedActions *G.Node // Actions taken at the previous states
	numActions      int

	replay expreplay.ExperienceReplayer

	// nextStateActionValues is the input node in the graph of trainNet
	// that is given the action values of the next states, computed by
	// targetNet
	nextStateActionValues *G.Node
	rewards               *G.Node
	discounts             *G.Node

	// Keep track of previous states and actions to add to the replay
	// buffer
	prevStep   ts.TimeStep
	prevAction int
	nextStep   ts.TimeStep

	batchSize int
	eval      bool
}

// New creates and returns a new DeepQ agent
func New(e environment.Environment, config Config,
	seed int64) (*DeepQ, error) {
	// Ensure environment has discrete actions
	if e.ActionSpec().Cardinality != environment.Discrete {
		return nil, fmt.Errorf("deepq: cannot use non-discrete actions")
	}

	// Ensure actions are one-dimensional
	if e.ActionSpec().LowerBound.Len() > 1 {
		return nil, fmt.Errorf("deepq: actions must be 1-dimensional")
	}

	// Ensure actions are enumerated from 0
	if e.ActionSpec().LowerBound.AtVec(0) != 0.0 {
		return nil, fmt.Errorf("deepq: actions must be enumerated " +
			"starting from 0")
	}

	// Ensure the configuration is valid
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Extract configuration variables
	batchSize := config.BatchSize()
	numActions := int(e.ActionSpec().UpperBound.AtVec(0)) + 1
	hiddenSizes := config.PolicyLayers
	biases := config.Biases
	activations := config.Activations
	init := config.InitWFn.InitWFn()
	epsilon := config.Epsilon

	// Behaviour network for selecting actions. Only a single action is
	// selected at a time.
	g := G.NewGraph()
	behaviourPolicy, err := policy.NewMultiHeadEGreedyMLP(
		epsilon,
		e,
		1,
		g,
		hiddenSizes,
		biases,
		init,
		activations,
		seed,
	)
	if err != nil {
		return nil, err
	}
	behaviourPolicyVM := G.NewTapeMachine(g)

	// Create the target policy for selecting actions
	targetPolicyClone, err := behaviourPolicy.ClonePolicy()
	if err != nil {
		return nil, fmt.Errorf("new: could not create target policy: %v",
			err)
	}
	targetPolicy := targetPolicyClone.(agent.EGreedyNNPolicy)
	targetPolicy.SetEpsilon(0.0)
	targetPolicyVM := G.NewTapeMachine(targetPolicy.Graph())

	// Create the target network which provides the update target
	targetNetClone, err := behaviourPolicy.ClonePolicyWithBatch(batchSize)
	if err != nil {
		return nil, fmt.Errorf("new: could not create target network: %v",
			err)
	}
	targetNet := targetNetClone.(agent.EGreedyNNPolicy)
	targetNet.SetEpsilon(0.0) // Q-learning's target policy is greedy
	targetNetVM := G.NewTapeMachine(targetNet.Graph())

	// Create a training network which learns the weights
	trainNetClone, err := behaviourPolicy.ClonePolicyWithBatch(batchSize)
	if err != nil {
		return nil, fmt.Errorf("new: could not create learning "+
			"network: %v", err)
	}
	trainNet := trainNetClone.(agent.EGreedyNNPolicy)
	gTrain := trainNet.Graph()

	// Create nodes to compute the update target: r + γ max[Q(s', a')]
	nextStateActionValues := G.NewMatrix(gTrain, tensor.Float64,
		G.WithShape(batchSize, numActions),
		G.WithName("targetActionVals"))
	rewards := G.NewVector(gTrain, tensor.Float64,
		G.WithShape(batchSize), G.WithName("reward"))
	discounts := G.NewVector(gTrain, tensor.Float64,
		G.WithShape(batchSize), G.WithName("discount"))

	// Compute the update target
	updateTarget := G.Must(G.Max(nextStateActionValues, 1))
	updateTarget = G.Must(G.HadamardProd(updateTarget, discounts))
	updateTarget = G.Must(G.Add(updateTarget, rewards))

	// Actions selected in the previous states. This is needed to
	// compute the loss using the correct action value, since the
	// network outputs one action value per environmental action.
	selectedActions := G.NewMatrix(
		gTrain,
		tensor.Float64,
		G.WithName("actionSelected"),
		G.WithShape(batchSize, numActions),
	)
	selectedActionsValue := G.Must(G.HadamardProd(trainNet.Prediction(),
		selectedActions))
	selectedActionsValue = G.Must(G.Sum(selectedActionsValue, 1))

	// Compute the mean squared TD error
	losses := G.Must(G.Sub(updateTarget, selectedActionsValue))
	losses = G.Must(G.Square(losses))
	cost := G.Must(G.Mean(losses))

	// Compute the gradient with respect to the mean squared TD error
	_, err = G.Grad(cost, trainNet.Learnables()...)
	if err != nil {
		return nil, fmt.Errorf("new: could not compute gradient: %v", err)
	}

	// Compile the trainNet graph into a VM
	trainNetVM := G.NewTapeMachine(
		gTrain,
		G.BindDualValues(trainNet.Learnables()...),
	)

	// Create the experience replay buffer. The replay buffer stores
	// selected actions as one-hot vectors.
	numFeatures := e.ObservationSpec().Shape.Len()
	replay, err := config.ExpReplay.Create(numFeatures, numActions, seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create experience "+
			"replay buffer: %v", err)
	}

	return &DeepQ{
		behaviourPolicy:       behaviourPolicy,
		behaviourPolicyVM:     behaviourPolicyVM,
		targetPolicy:          targetPolicy,
		targetPolicyVM:        targetPolicyVM,
		trainNet:              trainNet,
		trainNetVM:            trainNetVM,
		solver:                config.Solver,
		targetNet:             targetNet,
		targetNetVM:           targetNetVM,
		tau:                   config.Tau,
		targetUpdateInterval:  config.TargetUpdateInterval,
		gradientSteps:         0,
		selectedActions:       selectedActions,
		numActions:            numActions,
		replay:                replay,
		nextStateActionValues: nextStateActionValues,
		rewards:               rewards,
		discounts:             discounts,
		prevStep:              ts.TimeStep{},
		prevAction:            0,
		nextStep:              ts.TimeStep{},
		batchSize:             batchSize,
		eval:                  false,
	}, nil
}

// ObserveFirst observes and records the first episodic timestep
func (d *DeepQ) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		fmt.Fprintf(os.Stderr, "Warning: ObserveFirst() should only be"+
			" called on the first timestep (current timestep = %d)\n",
			t.Number)
	}
	d.prevStep = ts.TimeStep{}
	d.nextStep = t
	return nil
}

// Observe observes and records any timestep other than the first. The
// action taken at the previous timestep is also recorded.
func (d *DeepQ) Observe(action mat.Vector, nextStep ts.TimeStep) error {
	if action.Len() != 1 {
		return fmt.Errorf("observe: value-based methods do not support "+
			"multi-dimensional actions (action dim = %d)", action.Len())
	}

	// Add to replay buffer
	if !d.nextStep.First() {
		prevAction := mat.NewVecDense(d.numActions, nil)
		prevAction.SetVec(d.prevAction, 1.0)

		nextAction := mat.NewVecDense(d.numActions, nil)
		nextAction.SetVec(int(action.AtVec(0)), 1.0)

		transition := ts.NewTransition(d.prevStep, prevAction,
			d.nextStep, nextAction)
		if err := d.replay.Add(transition); err != nil {
			return fmt.Errorf("observe: could not add to replay "+
				"buffer: %v", err)
		}
	}

	// Update internal variables
	d.prevStep = d.nextStep
	d.nextStep = nextStep
	d.prevAction = int(action.AtVec(0))
	return nil
}

// Step updates the weights of the agent's policies
func (d *DeepQ) Step() error {
	// Don't update if the replay buffer has insufficient samples
	S, A, R, discount, NextS, _, err := d.replay.Sample()
	if expreplay.IsEmptyBuffer(err) ||
		expreplay.IsInsufficientSamples(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("step: could not sample from replay "+
			"buffer: %v", err)
	}

	// Previous action one-hot vectors
	prevActions := tensor.New(
		tensor.WithShape(d.batchSize, d.numActions),
		tensor.WithBacking(A),
	)
	if err := G.Let(d.selectedActions, prevActions); err != nil {
		return fmt.Errorf("step: could not set selected actions: %v", err)
	}

	// Predict the action values in states S
	if err := d.trainNet.SetInput(S); err != nil {
		return fmt.Errorf("step: could not set trainNet input: %v", err)
	}

	// Predict the action values in the next states NextS
	if err := d.targetNet.SetInput(NextS); err != nil {
		return fmt.Errorf("step: could not set target net input: %v", err)
	}

	// Compute the next state-action values
	if err := d.targetNetVM.RunAll(); err != nil {
		return fmt.Errorf("step: could not run target net: %v", err)
	}

	// Set the action values for the actions in the next states
	if err := G.Let(d.nextStateActionValues,
		d.targetNet.Output()); err != nil {
		return fmt.Errorf("step: could not set next state-action "+
			"values: %v", err)
	}

	// Set the rewards
	rewardTensor := tensor.New(tensor.WithBacking(R),
		tensor.WithShape(d.batchSize))
	if err := G.Let(d.rewards, rewardTensor); err != nil {
		return fmt.Errorf("step: could not set reward: %v", err)
	}

	// Set the discounts
	discountTensor := tensor.New(tensor.WithBacking(discount),
		tensor.WithShape(d.batchSize))
	if err := G.Let(d.discounts, discountTensor); err != nil {
		return fmt.Errorf("step: could not set discount: %v", err)
	}

	d.targetNetVM.Reset()

	// Run the learning step
	if err := d.trainNetVM.RunAll(); err != nil {
		return fmt.Errorf("step: could not run learning step: %v", err)
	}
	if err := d.solver.Step(d.trainNet.Model()); err != nil {
		return fmt.Errorf("step: could not step solver: %v", err)
	}
	d.trainNetVM.Reset()
	d.gradientSteps++

	// Update the target network by setting its weights to the newly
	// learned weights
	if d.gradientSteps%d.targetUpdateInterval == 0 {
		if d.tau == 1.0 {
			err = d.targetNet.Set(d.trainNet)
		} else {
			err = d.targetNet.Polyak(d.trainNet, d.tau)
		}
		if err != nil {
			return fmt.Errorf("step: could not update target "+
				"network: %v", err)
		}
	}

	if err := d.targetPolicy.Set(d.trainNet); err != nil {
		return fmt.Errorf("step: could not update target policy: %v", err)
	}
	if err := d.behaviourPolicy.Set(d.trainNet); err != nil {
		return fmt.Errorf("step: could not update behaviour "+
			"policy: %v", err)
	}
	return nil
}

// SelectAction runs the necessary VMs and then returns an action
// selected by the behaviour policy, or by the greedy target policy if
// in evaluation mode.
func (d *DeepQ) SelectAction(t ts.TimeStep) *mat.VecDense {
	var p agent.NNPolicy
	var vm G.VM

	if d.eval {
		p = d.targetPolicy
		vm = d.targetPolicyVM
	} else {
		p = d.behaviourPolicy
		vm = d.behaviourPolicyVM
	}

	obs := t.Observation.RawVector().Data
	if err := p.SetInput(obs); err != nil {
		panic(fmt.Sprintf("selectaction: %v", err))
	}

	// Run the policy's computational graph
	if err := vm.RunAll(); err != nil {
		panic(fmt.Sprintf("selectaction: could not run policy: %v", err))
	}

	// Get the policy to select an action using the data generated by
	// running the computational graph
	action, _ := p.SelectAction()

	vm.Reset()
	return action
}

// TdError calculates the TD error generated by the learner on some
// transition
func (d *DeepQ) TdError(t ts.Transition) float64 {
	d.behaviourPolicy.SetInput(t.State.RawVector().Data)
	d.behaviourPolicyVM.RunAll()
	_, actionValue := d.behaviourPolicy.SelectAction()
	d.behaviourPolicyVM.Reset()

	d.targetPolicy.SetInput(t.NextState.RawVector().Data)
	d.targetPolicyVM.RunAll()
	_, nextActionValue := d.targetPolicy.SelectAction()
	d.targetPolicyVM.Reset()

	return t.Reward + t.Discount*nextActionValue - actionValue
}

// Eval sets the agent into evaluation mode
func (d *DeepQ) Eval() {
	d.eval = true
}

// Train sets the agent into training mode
func (d *DeepQ) Train() {
	d.eval = false
}

// IsEval returns whether the agent is in evaluation mode
func (d *DeepQ) IsEval() bool {
	return d.eval
}

// EndEpisode performs cleanup at the end of an episode
func (d *DeepQ) EndEpisode() {}
