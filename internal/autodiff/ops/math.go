package ops

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// ExpOp records y = exp(x). The derivative is the output itself.
type ExpOp struct {
	input, out *tensor.RawTensor
}

func NewExpOp(input, out *tensor.RawTensor) *ExpOp {
	return &ExpOp{input: input, out: out}
}

func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.out)}
}

func (op *ExpOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *ExpOp) Output() *tensor.RawTensor   { return op.out }

// LogOp records y = log(x).
type LogOp struct {
	input, out *tensor.RawTensor
}

func NewLogOp(input, out *tensor.RawTensor) *LogOp {
	return &LogOp{input: input, out: out}
}

func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.input)}
}

func (op *LogOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *LogOp) Output() *tensor.RawTensor   { return op.out }

// SqrtOp records y = sqrt(x); dy/dx = 1 / (2*sqrt(x)).
type SqrtOp struct {
	input, out *tensor.RawTensor
}

func NewSqrtOp(input, out *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{input: input, out: out}
}

func (op *SqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, backend.MulScalar(op.out, 2.0))}
}

func (op *SqrtOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *SqrtOp) Output() *tensor.RawTensor   { return op.out }
