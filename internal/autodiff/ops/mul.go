package ops

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// MulOp records c = a * b (element-wise, with broadcasting).
type MulOp struct {
	a, b, out *tensor.RawTensor
}

func NewMulOp(a, b, out *tensor.RawTensor) *MulOp {
	return &MulOp{a: a, b: b, out: out}
}

func (op *MulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceToShape(backend.Mul(outputGrad, op.b), op.a.Shape()),
		reduceToShape(backend.Mul(outputGrad, op.a), op.b.Shape()),
	}
}

func (op *MulOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *MulOp) Output() *tensor.RawTensor   { return op.out }

// DivOp records c = a / b (element-wise, with broadcasting).
type DivOp struct {
	a, b, out *tensor.RawTensor
}

func NewDivOp(a, b, out *tensor.RawTensor) *DivOp {
	return &DivOp{a: a, b: b, out: out}
}

func (op *DivOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	// d/da (a/b) = 1/b; d/db (a/b) = -a/b^2 = -out/b.
	gradA := backend.Div(outputGrad, op.b)
	gradB := backend.MulScalar(backend.Div(backend.Mul(outputGrad, op.out), op.b), -1.0)
	return []*tensor.RawTensor{
		reduceToShape(gradA, op.a.Shape()),
		reduceToShape(gradB, op.b.Shape()),
	}
}

func (op *DivOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *DivOp) Output() *tensor.RawTensor   { return op.out }
