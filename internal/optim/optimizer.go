// Package optim provides gradient-descent optimizers over raw parameter
// tensors. Parameters are updated in place so that gradient maps keyed by
// raw tensor pointer stay valid across steps.
package optim

import (
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Optimizer applies one update step from a gradient map as produced by
// the autodiff tape. Parameters with no entry in the map are left alone.
type Optimizer interface {
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor) error
	LearningRate() float64
}

// gradFor pulls the float32 gradient slice for a parameter out of the
// map, or nil when the parameter did not participate in the loss.
func gradFor(grads map[*tensor.RawTensor]*tensor.RawTensor, param *tensor.RawTensor) ([]float32, error) {
	g, ok := grads[param]
	if !ok {
		return nil, nil
	}
	if g.DType() != tensor.Float32 {
		return nil, fmt.Errorf("optim: gradient dtype %s, want float32", g.DType())
	}
	if g.NumElements() != param.NumElements() {
		return nil, fmt.Errorf("optim: gradient has %d elements for parameter of %d",
			g.NumElements(), param.NumElements())
	}
	return g.AsFloat32(), nil
}
