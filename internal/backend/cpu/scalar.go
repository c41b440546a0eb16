package cpu

import (
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// AddScalar adds a scalar to every element.
func (c *Backend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("addscalar", x, scalar)
}

// SubScalar subtracts a scalar from every element.
func (c *Backend) SubScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("subscalar", x, scalar)
}

// MulScalar multiplies every element by a scalar.
func (c *Backend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("mulscalar", x, scalar)
}

// DivScalar divides every element by a scalar.
func (c *Backend) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("divscalar", x, scalar)
}

func (c *Backend) scalarOp(name string, x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		applyScalar(name, result.AsFloat32(), x.AsFloat32(), toFloat32(name, scalar))
	case tensor.Float64:
		applyScalar(name, result.AsFloat64(), x.AsFloat64(), toFloat64(name, scalar))
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return result
}

func applyScalar[T float](name string, dst, src []T, s T) {
	switch name {
	case "addscalar":
		for i, v := range src {
			dst[i] = v + s
		}
	case "subscalar":
		for i, v := range src {
			dst[i] = v - s
		}
	case "mulscalar":
		for i, v := range src {
			dst[i] = v * s
		}
	case "divscalar":
		if s == 0 {
			panic("divscalar: division by zero")
		}
		for i, v := range src {
			dst[i] = v / s
		}
	default:
		panic("unknown scalar op: " + name)
	}
}

func toFloat32(name string, scalar any) float32 {
	switch s := scalar.(type) {
	case float32:
		return s
	case float64:
		return float32(s)
	case int:
		return float32(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", name, scalar))
	}
}

func toFloat64(name string, scalar any) float64 {
	switch s := scalar.(type) {
	case float32:
		return float64(s)
	case float64:
		return s
	case int:
		return float64(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", name, scalar))
	}
}
