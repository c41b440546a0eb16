package ops

import (
	"fmt"
	"math"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// OnesLike returns a tensor of the same shape and dtype filled with 1.
// The tape uses it to seed the backward pass.
func OnesLike(t *tensor.RawTensor) *tensor.RawTensor {
	return fullLike(t, 1)
}

func fullLike(t *tensor.RawTensor, value float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(t.Shape().Clone(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("autodiff: %v", err))
	}
	switch t.DType() {
	case tensor.Float32:
		dst := result.AsFloat32()
		v := float32(value)
		for i := range dst {
			dst[i] = v
		}
	case tensor.Float64:
		dst := result.AsFloat64()
		for i := range dst {
			dst[i] = value
		}
	default:
		panic(fmt.Sprintf("autodiff: unsupported dtype %s", t.DType()))
	}
	return result
}

// unaryMap applies fn element-wise, producing a fresh tensor. Used for
// backward-pass masks and derivatives that have no forward-op equivalent.
func unaryMap(x *tensor.RawTensor, fn func(float64) float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape().Clone(), x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("autodiff: %v", err))
	}
	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(fn(float64(v)))
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = fn(v)
		}
	default:
		panic(fmt.Sprintf("autodiff: unsupported dtype %s", x.DType()))
	}
	return result
}

func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}

// reduceToShape sums grad over broadcast dimensions so the result matches
// the shape of the original (possibly broadcast) operand. A gradient of a
// broadcast input is the sum of gradients over every position the input
// value was replicated to.
func reduceToShape(grad *tensor.RawTensor, target tensor.Shape) *tensor.RawTensor {
	if grad.Shape().Equal(target) {
		return grad
	}

	result, err := tensor.NewRaw(target.Clone(), grad.DType(), grad.Device())
	if err != nil {
		panic(fmt.Sprintf("autodiff: %v", err))
	}

	gShape := grad.Shape()
	gStrides := gShape.ComputeStrides()
	tStrides := target.ComputeStrides()
	offset := len(gShape) - len(target)
	if offset < 0 {
		panic(fmt.Sprintf("autodiff: gradient shape %v narrower than input shape %v", gShape, target))
	}

	coords := make([]int, len(gShape))
	targetIndex := func(i int) int {
		rem := i
		for d := range coords {
			coords[d] = rem / gStrides[d]
			rem %= gStrides[d]
		}
		idx := 0
		for d, size := range target {
			idx += (coords[d+offset] % size) * tStrides[d]
		}
		return idx
	}

	switch grad.DType() {
	case tensor.Float32:
		src, dst := grad.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[targetIndex(i)] += v
		}
	case tensor.Float64:
		src, dst := grad.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[targetIndex(i)] += v
		}
	default:
		panic(fmt.Sprintf("autodiff: unsupported dtype %s", grad.DType()))
	}
	return result
}
