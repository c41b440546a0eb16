package ops

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// AddOp records c = a + b with broadcasting.
type AddOp struct {
	a, b, out *tensor.RawTensor
}

func NewAddOp(a, b, out *tensor.RawTensor) *AddOp {
	return &AddOp{a: a, b: b, out: out}
}

func (op *AddOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceToShape(outputGrad, op.a.Shape()),
		reduceToShape(outputGrad, op.b.Shape()),
	}
}

func (op *AddOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *AddOp) Output() *tensor.RawTensor   { return op.out }

// SubOp records c = a - b with broadcasting.
type SubOp struct {
	a, b, out *tensor.RawTensor
}

func NewSubOp(a, b, out *tensor.RawTensor) *SubOp {
	return &SubOp{a: a, b: b, out: out}
}

func (op *SubOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceToShape(outputGrad, op.a.Shape()),
		reduceToShape(backend.MulScalar(outputGrad, -1.0), op.b.Shape()),
	}
}

func (op *SubOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *SubOp) Output() *tensor.RawTensor   { return op.out }
