package ops

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// ReshapeOp records y = reshape(x); the gradient is reshaped back.
type ReshapeOp struct {
	input, out *tensor.RawTensor
}

func NewReshapeOp(input, out *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{input: input, out: out}
}

func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape().Clone())}
}

func (op *ReshapeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *ReshapeOp) Output() *tensor.RawTensor   { return op.out }

// TransposeOp records y = transpose(x, axes); the gradient is transposed
// by the inverse permutation.
type TransposeOp struct {
	input, out *tensor.RawTensor
	axes       []int
}

func NewTransposeOp(input, out *tensor.RawTensor, axes []int) *TransposeOp {
	return &TransposeOp{input: input, out: out, axes: axes}
}

func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, ax := range op.axes {
		inverse[ax] = i
	}
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverse...)}
}

func (op *TransposeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *TransposeOp) Output() *tensor.RawTensor   { return op.out }
