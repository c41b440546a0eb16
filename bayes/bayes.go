// Copyright 2025 BayesNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bayes provides the public API for the variational Bayesian
// classifier and its PAC-Bayes certification bounds.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	hidden, _ := nn.NewBayesianLinear(backend, 784, 100, 0.03, 0.01, nn.ActivationReLU, 1)
//	output, _ := nn.NewBayesianLinear(backend, 100, 10, 0.03, 0.01, nn.ActivationSoftmax, 2)
//	model, _ := bayes.NewClassifier(
//	    []nn.StochasticLayer[*autodiff.Backend[*cpu.Backend]]{hidden, output},
//	    10,
//	    bayes.Config{ProbThreshold: 1e-4, NormalizeSurrogate: true},
//	)
package bayes

import (
	"github.com/bayesnet-ml/bayesnet/internal/bayes"
	"github.com/bayesnet-ml/bayesnet/internal/nn"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Config controls the training objective.
type Config = bayes.Config

// Classifier is a feed-forward network of stochastic layers.
type Classifier[B tensor.Backend] = bayes.Classifier[B]

// BatchLoader yields (input, label) batches for evaluation.
type BatchLoader[B tensor.Backend] = bayes.BatchLoader[B]

// NewClassifier builds a classifier over the given layers.
func NewClassifier[B tensor.Backend](layers []nn.StochasticLayer[B], numClasses int, cfg Config) (*Classifier[B], error) {
	return bayes.NewClassifier(layers, numClasses, cfg)
}

// Surrogate computes the per-example bounded cross-entropy losses.
func Surrogate[B tensor.Backend](
	probs *tensor.Tensor[float32, B],
	labels *tensor.Tensor[int32, B],
	numClasses int,
	threshold float64,
	normalize bool,
) (*tensor.Tensor[float32, B], error) {
	return bayes.Surrogate(probs, labels, numClasses, threshold, normalize)
}

// CountCorrect compares argmax predictions against labels.
func CountCorrect[B tensor.Backend](
	probs *tensor.Tensor[float32, B],
	labels *tensor.Tensor[int32, B],
) (correct, total int, err error) {
	return bayes.CountCorrect(probs, labels)
}

// EvaluateOnLoader measures error rate and mean surrogate over one pass.
func EvaluateOnLoader[B tensor.Backend](c *Classifier[B], loader BatchLoader[B]) (errRate, avgSurrogate float64, err error) {
	return bayes.EvaluateOnLoader(c, loader)
}

// QuadBound is the quadratic PAC-Bayes risk bound.
func QuadBound(risk, kl float64, n int, delta float64) (float64, error) {
	return bayes.QuadBound(risk, kl, n, delta)
}

// PinskerBound is the Pinsker relaxation of the PAC-Bayes-kl bound.
func PinskerBound(risk, kl float64, n int, delta float64) (float64, error) {
	return bayes.PinskerBound(risk, kl, n, delta)
}

// InvertedKLBound returns the tighter of QuadBound and PinskerBound.
func InvertedKLBound(risk, kl float64, n int, delta float64) (float64, error) {
	return bayes.InvertedKLBound(risk, kl, n, delta)
}
