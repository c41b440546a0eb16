package cpu

import (
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// matmulBlock is the k-blocking size used on wide cores. Chosen to keep a
// block of B rows resident in L1.
const matmulBlock = 64

// MatMul performs 2D matrix multiplication: [m, k] @ [k, n] -> [m, n].
func (c *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: incompatible dimensions: [%d, %d] @ [%d, %d]",
			aShape[0], aShape[1], bShape[0], bShape[1]))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	result, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		matmul(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n, c.blockedMatMul)
	case tensor.Float64:
		matmul(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n, c.blockedMatMul)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}
	return result
}

// matmul computes dst = a @ b with an ikj loop order (unit-stride inner loop
// over rows of b, which the compiler can vectorize). When blocked is set the
// k loop is tiled.
func matmul[T float](dst, a, b []T, m, k, n int, blocked bool) {
	if !blocked {
		for i := 0; i < m; i++ {
			for kk := 0; kk < k; kk++ {
				aik := a[i*k+kk]
				if aik == 0 {
					continue
				}
				bRow := b[kk*n : kk*n+n]
				dRow := dst[i*n : i*n+n]
				for j := range bRow {
					dRow[j] += aik * bRow[j]
				}
			}
		}
		return
	}

	for k0 := 0; k0 < k; k0 += matmulBlock {
		kEnd := k0 + matmulBlock
		if kEnd > k {
			kEnd = k
		}
		for i := 0; i < m; i++ {
			dRow := dst[i*n : i*n+n]
			for kk := k0; kk < kEnd; kk++ {
				aik := a[i*k+kk]
				if aik == 0 {
					continue
				}
				bRow := b[kk*n : kk*n+n]
				for j := range bRow {
					dRow[j] += aik * bRow[j]
				}
			}
		}
	}
}
