// Package cpu implements the pure-Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// float constrains the element types arithmetic ops operate on.
type float interface {
	~float32 | ~float64
}

// Backend implements tensor operations on CPU.
type Backend struct {
	device tensor.Device
	name   string

	// matmul blocking is only worth it when the FMA units can keep up
	blockedMatMul bool
}

// New creates a new CPU backend. SIMD capability is probed once via cpuid
// and selects the matmul strategy.
func New() *Backend {
	name := "CPU"
	blocked := false
	if cpuid.CPU.Supports(cpuid.AVX2, cpuid.FMA3) {
		name = "CPU (AVX2)"
		blocked = true
	}
	return &Backend{
		device:        tensor.CPU,
		name:          name,
		blockedMatMul: blocked,
	}
}

// Name returns the backend name, including the detected SIMD level.
func (c *Backend) Name() string {
	return c.name
}

// Device returns the compute device.
func (c *Backend) Device() tensor.Device {
	return c.device
}

// Add performs element-wise addition with broadcasting.
func (c *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("add", a, b)
}

// Sub performs element-wise subtraction with broadcasting.
func (c *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("sub", a, b)
}

// Mul performs element-wise multiplication with broadcasting.
func (c *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("mul", a, b)
}

// Div performs element-wise division with broadcasting.
func (c *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("div", a, b)
}

func (c *Backend) binaryOp(name string, a, b *tensor.RawTensor) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", name, a.DType(), b.DType()))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		applyBinary(name, result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape)
	case tensor.Float64:
		applyBinary(name, result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}
	return result
}

// applyBinary evaluates dst = a <op> b, broadcasting a and b to outShape.
func applyBinary[T float](name string, dst, a, b []T, aShape, bShape, outShape tensor.Shape) {
	op := binaryFunc[T](name)

	// Fast path: identical shapes, plain loop.
	if aShape.Equal(bShape) {
		for i := range dst {
			dst[i] = op(a[i], b[i])
		}
		return
	}

	outStrides := outShape.ComputeStrides()
	aIdx := broadcastIndexer(aShape, outShape)
	bIdx := broadcastIndexer(bShape, outShape)
	coords := make([]int, len(outShape))

	for i := range dst {
		rem := i
		for d := range outShape {
			coords[d] = rem / outStrides[d]
			rem %= outStrides[d]
		}
		dst[i] = op(a[aIdx(coords)], b[bIdx(coords)])
	}
}

func binaryFunc[T float](name string) func(T, T) T {
	switch name {
	case "add":
		return func(x, y T) T { return x + y }
	case "sub":
		return func(x, y T) T { return x - y }
	case "mul":
		return func(x, y T) T { return x * y }
	case "div":
		return func(x, y T) T { return x / y }
	default:
		panic("unknown binary op: " + name)
	}
}

// broadcastIndexer maps output coordinates to a flat index in a tensor of
// shape `shape` broadcast against outShape (shapes align from the right;
// size-1 dimensions are pinned to index 0).
func broadcastIndexer(shape, outShape tensor.Shape) func(coords []int) int {
	strides := shape.ComputeStrides()
	offset := len(outShape) - len(shape)
	return func(coords []int) int {
		idx := 0
		for d := range shape {
			if shape[d] == 1 {
				continue
			}
			idx += coords[d+offset] * strides[d]
		}
		return idx
	}
}
