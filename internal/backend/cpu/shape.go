package cpu

import (
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Reshape returns a tensor with the same elements and a new shape.
func (c *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.Shape(), t.NumElements(), newShape, newShape.NumElements()))
	}

	result, err := tensor.NewRaw(newShape, t.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	copy(result.Data(), t.Data())
	return result
}

// Transpose permutes dimensions, copying data into the new layout.
// With no axes given, the dimension order is reversed.
func (c *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %d dimensions", len(axes), ndim))
	}

	outShape := make(tensor.Shape, ndim)
	seen := make([]bool, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid axes %v for shape %v", axes, shape))
		}
		seen[ax] = true
		outShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(outShape, t.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	inStrides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	n := t.NumElements()

	// Map each output element back to its source position.
	elemSize := t.DType().Size()
	srcData, dstData := t.Data(), result.Data()
	coords := make([]int, ndim)
	for i := 0; i < n; i++ {
		rem := i
		for d := 0; d < ndim; d++ {
			coords[d] = rem / outStrides[d]
			rem %= outStrides[d]
		}
		srcIdx := 0
		for d := 0; d < ndim; d++ {
			srcIdx += coords[d] * inStrides[axes[d]]
		}
		copy(dstData[i*elemSize:(i+1)*elemSize], srcData[srcIdx*elemSize:(srcIdx+1)*elemSize])
	}
	return result
}
