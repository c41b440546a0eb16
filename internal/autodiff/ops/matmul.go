package ops

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// MatMulOp records c = a @ b for 2D operands.
type MatMulOp struct {
	a, b, out *tensor.RawTensor
}

func NewMatMulOp(a, b, out *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{a: a, b: b, out: out}
}

func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	// dL/dA = dL/dC @ B^T; dL/dB = A^T @ dL/dC.
	gradA := backend.MatMul(outputGrad, backend.Transpose(op.b))
	gradB := backend.MatMul(backend.Transpose(op.a), outputGrad)
	return []*tensor.RawTensor{gradA, gradB}
}

func (op *MatMulOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *MatMulOp) Output() *tensor.RawTensor   { return op.out }
