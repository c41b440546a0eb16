// Package ops defines the recorded operations used for reverse-mode
// automatic differentiation. Each operation captures the raw tensors that
// participated in a forward computation and knows how to propagate an
// output gradient back to its inputs.
package ops

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Operation is a single node on the gradient tape.
//
// Backward receives the gradient of the loss with respect to the
// operation's output and returns one gradient per input, in input order.
// The backend passed in is the plain compute backend, not the recording
// one, so backward passes are never themselves taped.
type Operation interface {
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor
	Inputs() []*tensor.RawTensor
	Output() *tensor.RawTensor
}
