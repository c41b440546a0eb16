package cpu

import (
	"fmt"
	"math"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Exp computes element-wise exponential.
func (c *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("exp", x, math.Exp)
}

// Log computes element-wise natural logarithm.
// Panics on non-positive values: the caller is expected to clamp first.
func (c *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("log", x, func(v float64) float64 {
		if v <= 0 {
			panic(fmt.Sprintf("log: non-positive value %g", v))
		}
		return math.Log(v)
	})
}

// Sqrt computes element-wise square root.
func (c *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("sqrt", x, func(v float64) float64 {
		if v < 0 {
			panic(fmt.Sprintf("sqrt: negative value %g", v))
		}
		return math.Sqrt(v)
	})
}

// Softplus computes log(1 + exp(x)) in the overflow-stable form
// max(x, 0) + log1p(exp(-|x|)).
func (c *Backend) Softplus(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("softplus", x, softplus)
}

func softplus(v float64) float64 {
	if v > 0 {
		return v + math.Log1p(math.Exp(-v))
	}
	return math.Log1p(math.Exp(v))
}

// ReLU computes max(x, 0) element-wise.
func (c *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("relu", x, func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	})
}

// Clamp limits every element to [lo, hi].
func (c *Backend) Clamp(x *tensor.RawTensor, lo, hi float64) *tensor.RawTensor {
	if lo > hi {
		panic(fmt.Sprintf("clamp: lo %g > hi %g", lo, hi))
	}
	return c.unaryOp("clamp", x, func(v float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	})
}

func (c *Backend) unaryOp(name string, x *tensor.RawTensor, fn func(float64) float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
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
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return result
}
