// Copyright 2025 BayesNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for the variational neural-network
// building blocks.
package nn

import (
	"github.com/bayesnet-ml/bayesnet/internal/nn"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Parameter is a named trainable tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// ForwardMode selects how stochastic layers resolve their weights.
type ForwardMode = nn.ForwardMode

// Forward modes.
const (
	ModeMC   ForwardMode = nn.ModeMC
	ModeMean ForwardMode = nn.ModeMean
)

// StochasticLayer is a layer with a weight distribution.
type StochasticLayer[B tensor.Backend] = nn.StochasticLayer[B]

// Activation selects a layer's nonlinearity.
type Activation = nn.Activation

// Activations.
const (
	ActivationNone    Activation = nn.ActivationNone
	ActivationReLU    Activation = nn.ActivationReLU
	ActivationSoftmax Activation = nn.ActivationSoftmax
)

// BayesianLinear is a fully connected layer with a mean-field Gaussian
// posterior over its weights.
type BayesianLinear[B tensor.Backend] = nn.BayesianLinear[B]

// NewBayesianLinear builds a Bayesian linear layer.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	layer, err := nn.NewBayesianLinear(backend, 784, 100, 0.03, 0.01, nn.ActivationReLU, 1)
func NewBayesianLinear[B tensor.Backend](
	backend B,
	inFeatures, outFeatures int,
	priorSigma, initSigma float64,
	activation Activation,
	seed uint64,
) (*BayesianLinear[B], error) {
	return nn.NewBayesianLinear(backend, inFeatures, outFeatures, priorSigma, initSigma, activation, seed)
}

// RhoForSigma inverts the softplus scale parameterization.
func RhoForSigma(sigma float64) float32 {
	return nn.RhoForSigma(sigma)
}
