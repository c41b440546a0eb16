package ops

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// SoftplusOp records y = log(1 + exp(x)); dy/dx = sigmoid(x).
type SoftplusOp struct {
	input, out *tensor.RawTensor
}

func NewSoftplusOp(input, out *tensor.RawTensor) *SoftplusOp {
	return &SoftplusOp{input: input, out: out}
}

func (op *SoftplusOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, unaryMap(op.input, sigmoid))}
}

func (op *SoftplusOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *SoftplusOp) Output() *tensor.RawTensor   { return op.out }
