// Copyright 2025 BayesNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu exposes the pure-Go CPU backend.
package cpu

import (
	internalcpu "github.com/bayesnet-ml/bayesnet/internal/backend/cpu"
	"github.com/bayesnet-ml/bayesnet/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend, probing SIMD capability once.
func New() *Backend {
	return internalcpu.New()
}
