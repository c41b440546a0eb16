package autodiff

import (
	"errors"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// BackwardCapable is satisfied by backends that carry a gradient tape.
type BackwardCapable interface {
	GetTape() *GradientTape
	Inner() tensor.Backend
}

// Backward differentiates t with respect to everything on the tape of its
// backend. It returns the gradient map keyed by raw tensor; callers look
// up parameter gradients through it.
func Backward[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B]) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	capable, ok := any(t.Backend()).(BackwardCapable)
	if !ok {
		return nil, errors.New("autodiff: backend does not record a gradient tape")
	}
	tape := capable.GetTape()
	if tape.NumOperations() == 0 {
		return nil, errors.New("autodiff: gradient tape is empty")
	}
	return tape.Backward(t.Raw(), capable.Inner()), nil
}
