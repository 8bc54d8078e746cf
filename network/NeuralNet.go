// Package network implements neural networks as computational graphs
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet implements a neural network on a Gorgonia computational
// graph
type NeuralNet interface {
	// Graph returns the computational graph that the network is
	// defined on
	Graph() *G.ExprGraph

	// Clone clones the network to a new computational graph
	Clone() (NeuralNet, error)

	// CloneWithBatch clones the network with a new input batch size
	CloneWithBatch(int) (NeuralNet, error)

	// BatchSize returns the number of inputs the network expects in a
	// single forward pass
	BatchSize() int

	// Features returns the number of features in a single input vector
	Features() int

	// Outputs returns the number of values the network predicts for
	// each input vector
	Outputs() int

	// SetInput sets the value of the input node before running the
	// forward pass
	SetInput([]float64) error

	// Set sets the weights of the network to equal those of another
	// network
	Set(NeuralNet) error

	// Polyak sets the weights of the network to a Polyak average
	// between its existing weights and those of another network
	Polyak(NeuralNet, float64) error

	// Learnables returns the learnable nodes of the network
	Learnables() G.Nodes

	// Model returns the learnable nodes with their gradients
	Model() []G.ValueGrad

	// Output returns the value of the network's prediction node after
	// the graph has been run
	Output() G.Value

	// Prediction returns the node of the computational graph that
	// stores the network's output
	Prediction() *G.Node
}

// Layer implements a single layer of a NeuralNet
type Layer interface {
	fwd(*G.Node) (*G.Node, error)

	// CloneTo clones the layer to a new computational graph
	CloneTo(g *G.ExprGraph) Layer

	Weights() *G.Node
	Bias() *G.Node
	Activation() *Activation
}
