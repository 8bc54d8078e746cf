package main

import (
	"fmt"
	"log"

	"github.com/control-rl/qlearn/agent/nonlinear/discrete/deepq"
	"github.com/control-rl/qlearn/agent/tabular/qlearning"
	"github.com/control-rl/qlearn/environment/envconfig"
	"github.com/control-rl/qlearn/environment/taxi"
	"github.com/control-rl/qlearn/experiment"
	"github.com/control-rl/qlearn/experiment/tracker"
	"github.com/control-rl/qlearn/expreplay"
	"github.com/control-rl/qlearn/initwfn"
	"github.com/control-rl/qlearn/network"
	"github.com/control-rl/qlearn/solver"
	"gonum.org/v1/gonum/stat"
)

func main() {
	trainTaxi()
	trainLunarLander()
}

// trainTaxi trains a tabular Q-learning agent on the taxi environment,
// then evaluates the greedy policy and reports the average number of
// steps and illegal-action penalties per evaluation episode.
func trainTaxi() {
	var seed uint64 = 192382

	envConf := envconfig.NewConfig(envconfig.Taxi, envconfig.PickupDropoff,
		false, 200, 0.99)
	env, _, err := envConf.Create(seed)
	if err != nil {
		log.Fatalf("could not create taxi environment: %v", err)
	}

	agentConf := qlearning.Config{Epsilon: 0.1, LearningRate: 0.1}
	a, err := agentConf.CreateAgent(env, seed)
	if err != nil {
		log.Fatalf("could not create Q-learning agent: %v", err)
	}

	// Train
	returns := tracker.NewReturn("./taxi_returns.bin")
	train := experiment.NewOnline(env, a, 500_000, returns)
	if err := train.Run(); err != nil {
		log.Fatalf("taxi training failed: %v", err)
	}
	train.Save()

	data := tracker.LoadData("./taxi_returns.bin")
	last := 10
	if len(data) < last {
		last = len(data)
	}
	fmt.Println("Taxi: last training returns:", data[len(data)-last:])

	// Evaluate the greedy policy
	penalties := tracker.NewPenalty("./taxi_penalties.bin",
		taxi.IllegalActionPenalty)
	eval := experiment.NewEvaluation(env, a, 100, penalties)
	if err := eval.Run(); err != nil {
		log.Fatalf("taxi evaluation failed: %v", err)
	}
	eval.Save()

	counts := penalties.(*tracker.Penalty).EpisodePenalties()
	fmt.Printf("Taxi: average steps per evaluation episode: %.2f\n",
		eval.AverageEpisodeLength())
	fmt.Printf("Taxi: average penalties per evaluation episode: %.2f\n",
		stat.Mean(counts, nil))
}

// trainLunarLander trains a DeepQ agent on the discrete-action lunar
// lander environment and reports the final training returns.
func trainLunarLander() {
	var seed uint64 = 192382

	adam, err := solver.NewDefaultAdam(1e-3, 32)
	if err != nil {
		log.Fatalf("could not create solver: %v", err)
	}

	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		log.Fatalf("could not create weight initializer: %v", err)
	}

	conf := experiment.Config{
		Type:     experiment.OnlineExp,
		MaxSteps: 50_000,
		EnvConf: envconfig.NewConfig(envconfig.LunarLander, envconfig.Land,
			false, 500, 0.99),
		AgentConf: deepq.Config{
			PolicyLayers: []int{64, 64},
			Biases:       []bool{true, true},
			Activations: []*network.Activation{
				network.ReLU(),
				network.ReLU(),
			},
			Solver:  adam,
			InitWFn: init,
			Epsilon: 0.1,
			ExpReplay: expreplay.Config{
				RemoveMethod:      expreplay.Fifo,
				SampleMethod:      expreplay.Uniform,
				RemoveSize:        1,
				SampleSize:        32,
				MaxReplayCapacity: 10_000,
				MinReplayCapacity: 100,
			},
			Tau:                  1.0,
			TargetUpdateInterval: 100,
		},
	}

	returns := tracker.NewReturn("./lunarlander_returns.bin")
	exp, err := conf.CreateExp(seed, returns)
	if err != nil {
		log.Fatalf("could not create lunar lander experiment: %v", err)
	}

	if err := exp.Run(); err != nil {
		log.Fatalf("lunar lander training failed: %v", err)
	}
	exp.Save()

	data := tracker.LoadData("./lunarlander_returns.bin")
	last := 10
	if len(data) < last {
		last = len(data)
	}
	fmt.Println("LunarLander: last training returns:",
		data[len(data)-last:])
}
