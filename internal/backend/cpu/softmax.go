package cpu

import (
	"fmt"
	"math"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Softmax normalizes along the given dimension using the max-subtraction
// trick for overflow stability. Only the last dimension is supported, which
// is all a row-stochastic classifier output needs.
func (c *Backend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim = len(shape) + dim
	}
	if dim != len(shape)-1 {
		panic(fmt.Sprintf("softmax: only the last dimension is supported, got dim=%d for shape %v", dim, shape))
	}

	result, err := tensor.NewRaw(shape, x.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("softmax: %v", err))
	}

	width := shape[len(shape)-1]
	switch x.DType() {
	case tensor.Float32:
		softmaxRows(result.AsFloat32(), x.AsFloat32(), width)
	case tensor.Float64:
		softmaxRows(result.AsFloat64(), x.AsFloat64(), width)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", x.DType()))
	}
	return result
}

func softmaxRows[T float](dst, src []T, width int) {
	for start := 0; start < len(src); start += width {
		row := src[start : start+width]
		out := dst[start : start+width]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}

		var sum float64
		for i, v := range row {
			e := math.Exp(float64(v - maxVal))
			out[i] = T(e)
			sum += e
		}
		for i := range out {
			out[i] = T(float64(out[i]) / sum)
		}
	}
}
