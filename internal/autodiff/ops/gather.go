package ops

import (
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// GatherOp records y = gather(x, dim, index). The backward pass scatters
// the output gradient back to the positions the forward pass read from,
// accumulating where the same source element was selected more than once.
type GatherOp struct {
	input, index, out *tensor.RawTensor
	dim               int
}

func NewGatherOp(input *tensor.RawTensor, dim int, index, out *tensor.RawTensor) *GatherOp {
	return &GatherOp{input: input, index: index, out: out, dim: dim}
}

func (op *GatherOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	result, err := tensor.NewRaw(op.input.Shape().Clone(), op.input.DType(), op.input.Device())
	if err != nil {
		panic(fmt.Sprintf("gather backward: %v", err))
	}

	inShape := op.input.Shape()
	idxShape := op.index.Shape()
	inStrides := inShape.ComputeStrides()
	outStrides := idxShape.ComputeStrides()
	indices := op.index.AsInt32()
	ndim := len(inShape)
	coords := make([]int, ndim)

	sourceIndex := func(i int) int {
		rem := i
		for d := 0; d < ndim; d++ {
			coords[d] = rem / outStrides[d]
			rem %= outStrides[d]
		}
		srcIdx := 0
		for d := 0; d < ndim; d++ {
			if d == op.dim {
				srcIdx += int(indices[i]) * inStrides[d]
			} else {
				srcIdx += coords[d] * inStrides[d]
			}
		}
		return srcIdx
	}

	switch op.input.DType() {
	case tensor.Float32:
		grad, dst := outputGrad.AsFloat32(), result.AsFloat32()
		for i, v := range grad {
			dst[sourceIndex(i)] += v
		}
	case tensor.Float64:
		grad, dst := outputGrad.AsFloat64(), result.AsFloat64()
		for i, v := range grad {
			dst[sourceIndex(i)] += v
		}
	default:
		panic(fmt.Sprintf("gather backward: unsupported dtype %s", op.input.DType()))
	}
	return []*tensor.RawTensor{result}
}

// Inputs reports only the gathered tensor; the integer index carries no
// gradient.
func (op *GatherOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *GatherOp) Output() *tensor.RawTensor   { return op.out }
