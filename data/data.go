// Copyright 2025 BayesNet ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides the public API for dataset loading and batching.
package data

import (
	"github.com/bayesnet-ml/bayesnet/internal/data"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Dataset is an in-memory feature matrix with labels.
type Dataset = data.Dataset

// Loader serves batches from a Dataset.
type Loader[B tensor.Backend] = data.Loader[B]

// NewLoader creates a batch loader over in-memory examples.
func NewLoader[B tensor.Backend](
	backend B,
	features []float32,
	labels []int32,
	numFeatures, batchSize int,
	shuffle bool,
	seed uint64,
) (*Loader[B], error) {
	return data.NewLoader(backend, features, labels, numFeatures, batchSize, shuffle, seed)
}

// LoadIDX reads an MNIST-style IDX dataset from a directory.
func LoadIDX(dataDir string, train bool) (*Dataset, error) {
	return data.LoadIDX(dataDir, train)
}

// LoadCSV reads a Kaggle-style label,pixel... CSV dataset.
func LoadCSV(path string, numClasses, maxExamples int) (*Dataset, error) {
	return data.LoadCSV(path, numClasses, maxExamples)
}
