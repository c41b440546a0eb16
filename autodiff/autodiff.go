// Copyright 2025 BayesNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation by
// wrapping any compute backend with a recording gradient tape.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
//	backend.GetTape().Start()
//
//	loss := model.Forward(x).Mean()
//	grads, err := autodiff.Backward(loss)
package autodiff

import (
	"github.com/bayesnet-ml/bayesnet/internal/autodiff"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Backend is the autodiff-enabled backend decorator.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// GradientTape records operations for differentiation.
type GradientTape = autodiff.GradientTape

// New wraps a backend with a fresh, non-recording tape.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.NewBackend(backend)
}

// Backward differentiates a scalar tensor with respect to everything on
// its backend's tape and returns the gradient map.
func Backward[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B]) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return autodiff.Backward(t)
}
