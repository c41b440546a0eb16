// Package nn provides the variational neural-network building blocks:
// trainable parameters, the stochastic layer contract, and the mean-field
// Gaussian linear layer.
package nn

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Parameter is a named trainable tensor. Its raw tensor pointer stays
// stable for the lifetime of the model: optimizers update the data in
// place, so gradient maps keyed by raw tensor keep resolving.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

func (p *Parameter[B]) Name() string { return p.name }

func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] { return p.tensor }

// Raw returns the underlying raw tensor, the key used in gradient maps.
func (p *Parameter[B]) Raw() *tensor.RawTensor { return p.tensor.Raw() }
