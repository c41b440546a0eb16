package autodiff

import (
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/autodiff/ops"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// AutodiffBackend wraps a compute backend and records every differentiable
// operation on its gradient tape. It satisfies tensor.Backend, so tensors
// built on it are used exactly like tensors on the plain backend.
type AutodiffBackend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// NewBackend wraps inner with a fresh, non-recording tape.
func NewBackend[B tensor.Backend](inner B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{inner: inner, tape: NewGradientTape()}
}

// GetTape exposes the tape for Start/Stop control and Backward.
func (a *AutodiffBackend[B]) GetTape() *GradientTape { return a.tape }

// Inner returns the wrapped backend. Backward passes run on it directly.
func (a *AutodiffBackend[B]) Inner() tensor.Backend { return a.inner }

func (a *AutodiffBackend[B]) Name() string {
	return a.inner.Name() + " +autodiff"
}

func (a *AutodiffBackend[B]) Device() tensor.Device { return a.inner.Device() }

func (a *AutodiffBackend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Add(x, y)
	a.tape.Record(ops.NewAddOp(x, y, out))
	return out
}

func (a *AutodiffBackend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Sub(x, y)
	a.tape.Record(ops.NewSubOp(x, y, out))
	return out
}

func (a *AutodiffBackend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Mul(x, y)
	a.tape.Record(ops.NewMulOp(x, y, out))
	return out
}

func (a *AutodiffBackend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Div(x, y)
	a.tape.Record(ops.NewDivOp(x, y, out))
	return out
}

func (a *AutodiffBackend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.MatMul(x, y)
	a.tape.Record(ops.NewMatMulOp(x, y, out))
	return out
}

func (a *AutodiffBackend[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	out := a.inner.Reshape(t, newShape)
	a.tape.Record(ops.NewReshapeOp(t, out))
	return out
}

func (a *AutodiffBackend[B]) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	out := a.inner.Transpose(t, axes...)
	// Resolve the default reversal here so the backward pass always has an
	// explicit permutation to invert.
	if len(axes) == 0 {
		ndim := len(t.Shape())
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	a.tape.Record(ops.NewTransposeOp(t, out, axes))
	return out
}

func (a *AutodiffBackend[B]) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	out := a.inner.AddScalar(x, scalar)
	a.tape.Record(ops.NewAddScalarOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) SubScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	out := a.inner.SubScalar(x, scalar)
	a.tape.Record(ops.NewSubScalarOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	out := a.inner.MulScalar(x, scalar)
	a.tape.Record(ops.NewMulScalarOp(x, out, scalarToFloat64(scalar)))
	return out
}

func (a *AutodiffBackend[B]) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	out := a.inner.DivScalar(x, scalar)
	a.tape.Record(ops.NewDivScalarOp(x, out, scalarToFloat64(scalar)))
	return out
}

func (a *AutodiffBackend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Exp(x)
	a.tape.Record(ops.NewExpOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) Log(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Log(x)
	a.tape.Record(ops.NewLogOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Sqrt(x)
	a.tape.Record(ops.NewSqrtOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) Softplus(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Softplus(x)
	a.tape.Record(ops.NewSoftplusOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.ReLU(x)
	a.tape.Record(ops.NewReLUOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) Clamp(x *tensor.RawTensor, lo, hi float64) *tensor.RawTensor {
	out := a.inner.Clamp(x, lo, hi)
	a.tape.Record(ops.NewClampOp(x, out, lo, hi))
	return out
}

func (a *AutodiffBackend[B]) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	out := a.inner.Softmax(x, dim)
	a.tape.Record(ops.NewSoftmaxOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) Gather(x *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Gather(x, dim, index)
	if dim < 0 {
		dim = len(x.Shape()) + dim
	}
	a.tape.Record(ops.NewGatherOp(x, dim, index, out))
	return out
}

func (a *AutodiffBackend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Sum(x)
	a.tape.Record(ops.NewSumOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Mean(x)
	a.tape.Record(ops.NewMeanOp(x, out))
	return out
}

// Argmax is not differentiable; it passes straight through.
func (a *AutodiffBackend[B]) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return a.inner.Argmax(x, dim)
}

func scalarToFloat64(scalar any) float64 {
	switch v := scalar.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int:
		return float64(v)
	default:
		panic(fmt.Sprintf("autodiff: unsupported scalar type %T", scalar))
	}
}
