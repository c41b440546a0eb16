package ops

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// scalarOp is the shared base for the four tensor-scalar operations. Only
// the gradient transfer function differs between them.
type scalarOp struct {
	input, out *tensor.RawTensor
}

func (op *scalarOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *scalarOp) Output() *tensor.RawTensor   { return op.out }

// AddScalarOp records y = x + s; the gradient passes through unchanged.
type AddScalarOp struct{ scalarOp }

func NewAddScalarOp(input, out *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{scalarOp{input: input, out: out}}
}

func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}

// SubScalarOp records y = x - s; the gradient passes through unchanged.
type SubScalarOp struct{ scalarOp }

func NewSubScalarOp(input, out *tensor.RawTensor) *SubScalarOp {
	return &SubScalarOp{scalarOp{input: input, out: out}}
}

func (op *SubScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}

// MulScalarOp records y = x * s.
type MulScalarOp struct {
	scalarOp
	scalar float64
}

func NewMulScalarOp(input, out *tensor.RawTensor, scalar float64) *MulScalarOp {
	return &MulScalarOp{scalarOp: scalarOp{input: input, out: out}, scalar: scalar}
}

func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}

// DivScalarOp records y = x / s.
type DivScalarOp struct {
	scalarOp
	scalar float64
}

func NewDivScalarOp(input, out *tensor.RawTensor, scalar float64) *DivScalarOp {
	return &DivScalarOp{scalarOp: scalarOp{input: input, out: out}, scalar: scalar}
}

func (op *DivScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.DivScalar(outputGrad, op.scalar)}
}
