package ops

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// SumOp records y = sum(x) over all elements; every input element
// receives the scalar output gradient.
type SumOp struct {
	input, out *tensor.RawTensor
}

func NewSumOp(input, out *tensor.RawTensor) *SumOp {
	return &SumOp{input: input, out: out}
}

func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{fullLike(op.input, scalarValue(outputGrad))}
}

func (op *SumOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *SumOp) Output() *tensor.RawTensor   { return op.out }

// MeanOp records y = mean(x); the gradient is the output gradient divided
// by the element count.
type MeanOp struct {
	input, out *tensor.RawTensor
}

func NewMeanOp(input, out *tensor.RawTensor) *MeanOp {
	return &MeanOp{input: input, out: out}
}

func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	n := float64(op.input.NumElements())
	return []*tensor.RawTensor{fullLike(op.input, scalarValue(outputGrad)/n)}
}

func (op *MeanOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *MeanOp) Output() *tensor.RawTensor   { return op.out }

func scalarValue(t *tensor.RawTensor) float64 {
	switch t.DType() {
	case tensor.Float64:
		return t.AsFloat64()[0]
	default:
		return float64(t.AsFloat32()[0])
	}
}
