package ops

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// ReLUOp records y = max(x, 0); the gradient is masked where x <= 0.
type ReLUOp struct {
	input, out *tensor.RawTensor
}

func NewReLUOp(input, out *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{input: input, out: out}
}

func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	mask := unaryMap(op.input, func(v float64) float64 {
		if v > 0 {
			return 1
		}
		return 0
	})
	return []*tensor.RawTensor{backend.Mul(outputGrad, mask)}
}

func (op *ReLUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *ReLUOp) Output() *tensor.RawTensor   { return op.out }
