// Copyright 2025 BayesNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the public optimizer API.
package optim

import (
	"github.com/bayesnet-ml/bayesnet/internal/optim"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Optimizer applies one update step from an autodiff gradient map.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD = optim.SGD

// NewSGD creates an SGD optimizer over the given parameter tensors.
func NewSGD(params []*tensor.RawTensor, lr, momentum float64) (*SGD, error) {
	return optim.NewSGD(params, lr, momentum)
}

// Adam is the Adam optimizer.
type Adam = optim.Adam

// NewAdam creates an Adam optimizer with the default betas and epsilon.
func NewAdam(params []*tensor.RawTensor, lr float64) (*Adam, error) {
	return optim.NewAdam(params, lr)
}

// NewAdamWithBetas creates an Adam optimizer with explicit hyperparameters.
func NewAdamWithBetas(params []*tensor.RawTensor, lr, beta1, beta2, eps float64) (*Adam, error) {
	return optim.NewAdamWithBetas(params, lr, beta1, beta2, eps)
}
