package cpu

import (
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Gather selects elements along dim using an int32 index tensor.
//
// The index shape must match the input shape in every dimension except dim;
// the output takes the index shape. For a [batch, classes] probability
// matrix and a [batch, 1] label column, Gather(probs, 1, labels) yields the
// per-example true-class probabilities as [batch, 1].
func (c *Backend) Gather(x *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	idxShape := index.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("gather: invalid dim %d for shape %v", dim, shape))
	}
	if len(idxShape) != ndim {
		panic(fmt.Sprintf("gather: index rank %d does not match input rank %d", len(idxShape), ndim))
	}
	for d := 0; d < ndim; d++ {
		if d != dim && idxShape[d] != shape[d] {
			panic(fmt.Sprintf("gather: index shape %v incompatible with input shape %v at dim %d", idxShape, shape, d))
		}
	}
	if index.DType() != tensor.Int32 {
		panic(fmt.Sprintf("gather: index dtype must be int32, got %s", index.DType()))
	}

	result, err := tensor.NewRaw(idxShape.Clone(), x.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("gather: %v", err))
	}

	indices := index.AsInt32()
	inStrides := shape.ComputeStrides()
	outStrides := idxShape.ComputeStrides()
	coords := make([]int, ndim)

	gatherElem := func(i int) int {
		rem := i
		for d := 0; d < ndim; d++ {
			coords[d] = rem / outStrides[d]
			rem %= outStrides[d]
		}
		pos := int(indices[i])
		if pos < 0 || pos >= shape[dim] {
			panic(fmt.Sprintf("gather: index %d out of range for dim %d (size %d)", pos, dim, shape[dim]))
		}
		srcIdx := 0
		for d := 0; d < ndim; d++ {
			if d == dim {
				srcIdx += pos * inStrides[d]
			} else {
				srcIdx += coords[d] * inStrides[d]
			}
		}
		return srcIdx
	}

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i := range dst {
			dst[i] = src[gatherElem(i)]
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i := range dst {
			dst[i] = src[gatherElem(i)]
		}
	default:
		panic(fmt.Sprintf("gather: unsupported dtype %s", x.DType()))
	}
	return result
}
