package ops

import (
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// SoftmaxOp records y = softmax(x) along the last dimension.
//
// For each row, dL/dx_i = (dL/dy_i - sum_j dL/dy_j * y_j) * y_i. The
// backward pass only needs the output, not the input.
type SoftmaxOp struct {
	input, out *tensor.RawTensor
}

func NewSoftmaxOp(input, out *tensor.RawTensor) *SoftmaxOp {
	return &SoftmaxOp{input: input, out: out}
}

func (op *SoftmaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.out.Shape()
	width := shape[len(shape)-1]

	result, err := tensor.NewRaw(shape.Clone(), op.out.DType(), op.out.Device())
	if err != nil {
		panic(fmt.Sprintf("softmax backward: %v", err))
	}

	switch op.out.DType() {
	case tensor.Float32:
		softmaxBackwardRows(result.AsFloat32(), outputGrad.AsFloat32(), op.out.AsFloat32(), width)
	case tensor.Float64:
		softmaxBackwardRows(result.AsFloat64(), outputGrad.AsFloat64(), op.out.AsFloat64(), width)
	default:
		panic(fmt.Sprintf("softmax backward: unsupported dtype %s", op.out.DType()))
	}
	return []*tensor.RawTensor{result}
}

func softmaxBackwardRows[T ~float32 | ~float64](dst, grad, out []T, width int) {
	for start := 0; start < len(out); start += width {
		var dot float64
		for i := start; i < start+width; i++ {
			dot += float64(grad[i]) * float64(out[i])
		}
		for i := start; i < start+width; i++ {
			dst[i] = T((float64(grad[i]) - dot) * float64(out[i]))
		}
	}
}

func (op *SoftmaxOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *SoftmaxOp) Output() *tensor.RawTensor   { return op.out }
