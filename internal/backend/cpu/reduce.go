package cpu

import (
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Sum reduces all elements to a scalar tensor (shape {1}).
func (c *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return c.reduceAll("sum", x, false)
}

// Mean reduces all elements to their scalar mean (shape {1}).
func (c *Backend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	return c.reduceAll("mean", x, true)
}

func (c *Backend) reduceAll(name string, x *tensor.RawTensor, mean bool) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{1}, x.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		var sum float64
		for _, v := range x.AsFloat32() {
			sum += float64(v)
		}
		if mean {
			sum /= float64(x.NumElements())
		}
		result.AsFloat32()[0] = float32(sum)
	case tensor.Float64:
		var sum float64
		for _, v := range x.AsFloat64() {
			sum += v
		}
		if mean {
			sum /= float64(x.NumElements())
		}
		result.AsFloat64()[0] = sum
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return result
}

// Argmax returns the index of the maximum value along dim as an int32
// tensor with that dimension removed. Only the last dimension is supported.
func (c *Backend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim = len(shape) + dim
	}
	if dim != len(shape)-1 {
		panic(fmt.Sprintf("argmax: only the last dimension is supported, got dim=%d for shape %v", dim, shape))
	}

	outShape := shape[:len(shape)-1].Clone()
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}
	result, err := tensor.NewRaw(outShape, tensor.Int32, c.device)
	if err != nil {
		panic(fmt.Sprintf("argmax: %v", err))
	}

	width := shape[len(shape)-1]
	dst := result.AsInt32()
	switch x.DType() {
	case tensor.Float32:
		argmaxRows(dst, x.AsFloat32(), width)
	case tensor.Float64:
		argmaxRows(dst, x.AsFloat64(), width)
	default:
		panic(fmt.Sprintf("argmax: unsupported dtype %s", x.DType()))
	}
	return result
}

func argmaxRows[T float](dst []int32, src []T, width int) {
	for r := range dst {
		row := src[r*width : (r+1)*width]
		best := 0
		for i, v := range row[1:] {
			if v > row[best] {
				best = i + 1
			}
		}
		dst[r] = int32(best)
	}
}
