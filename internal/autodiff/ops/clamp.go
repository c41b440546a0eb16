package ops

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// ClampOp records y = clamp(x, lo, hi). The gradient passes through where
// x lies inside [lo, hi] and is zero where the clamp saturated. Values
// exactly on a bound keep their gradient, matching the usual subgradient
// convention.
type ClampOp struct {
	input, out *tensor.RawTensor
	lo, hi     float64
}

func NewClampOp(input, out *tensor.RawTensor, lo, hi float64) *ClampOp {
	return &ClampOp{input: input, out: out, lo: lo, hi: hi}
}

func (op *ClampOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	mask := unaryMap(op.input, func(v float64) float64 {
		if v >= op.lo && v <= op.hi {
			return 1
		}
		return 0
	})
	return []*tensor.RawTensor{backend.Mul(outputGrad, mask)}
}

func (op *ClampOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }
func (op *ClampOp) Output() *tensor.RawTensor   { return op.out }
