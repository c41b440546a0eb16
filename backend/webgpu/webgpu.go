// Copyright 2025 BayesNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu exposes the GPU backend built on WebGPU compute shaders.
package webgpu

import (
	internalwebgpu "github.com/bayesnet-ml/bayesnet/internal/backend/webgpu"
	"github.com/bayesnet-ml/bayesnet/tensor"
)

// Backend is the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New initializes the WebGPU backend. Callers should fall back to the
// CPU backend when an error is returned.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
