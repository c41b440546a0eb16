package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

func raw32(t *testing.T, values []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), values)
	return r
}

func rawIdx(t *testing.T, values []int32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Int32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsInt32(), values)
	return r
}

func TestBinaryOps(t *testing.T) {
	b := New()
	a := raw32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	c := raw32(t, []float32{5, 6, 7, 8}, tensor.Shape{2, 2})

	assert.Equal(t, []float32{6, 8, 10, 12}, b.Add(a, c).AsFloat32())
	assert.Equal(t, []float32{-4, -4, -4, -4}, b.Sub(a, c).AsFloat32())
	assert.Equal(t, []float32{5, 12, 21, 32}, b.Mul(a, c).AsFloat32())
	assert.InDeltaSlice(t, []float32{0.2, 1.0 / 3, 3.0 / 7, 0.5},
		toFloat64Slice(b.Div(a, c).AsFloat32()), 1e-6)
}

func TestAddBroadcastBias(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	bias := raw32(t, []float32{10, 20, 30}, tensor.Shape{1, 3})

	got := b.Add(x, bias)
	assert.True(t, got.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, got.AsFloat32())
}

func TestBinaryOpShapeMismatchPanics(t *testing.T) {
	b := New()
	a := raw32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	c := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	assert.Panics(t, func() { b.Add(a, c) })
}

func TestMatMul(t *testing.T) {
	b := New()
	a := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	c := raw32(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	got := b.MatMul(a, c)
	assert.True(t, got.Shape().Equal(tensor.Shape{2, 2}))
	assert.Equal(t, []float32{58, 64, 139, 154}, got.AsFloat32())
}

func TestMatMulInnerDimMismatchPanics(t *testing.T) {
	b := New()
	a := raw32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	c := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
	assert.Panics(t, func() { b.MatMul(a, c) })
}

func TestScalarOps(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2, 3}, tensor.Shape{3})

	assert.Equal(t, []float32{3, 4, 5}, b.AddScalar(x, float32(2)).AsFloat32())
	assert.Equal(t, []float32{0, 1, 2}, b.SubScalar(x, float32(1)).AsFloat32())
	assert.Equal(t, []float32{2, 4, 6}, b.MulScalar(x, 2.0).AsFloat32())
	assert.Equal(t, []float32{0.5, 1, 1.5}, b.DivScalar(x, 2.0).AsFloat32())
	assert.Panics(t, func() { b.DivScalar(x, 0.0) })
}

func TestUnaryOps(t *testing.T) {
	b := New()
	x := raw32(t, []float32{0, 1, -1}, tensor.Shape{3})

	exp := b.Exp(x).AsFloat32()
	assert.InDelta(t, 1.0, exp[0], 1e-6)
	assert.InDelta(t, math.E, exp[1], 1e-5)

	assert.Equal(t, []float32{0, 1, 0}, b.ReLU(x).AsFloat32())

	sp := b.Softplus(x).AsFloat32()
	assert.InDelta(t, math.Log(2), sp[0], 1e-6)
	// softplus(x) + softplus(-x) = |x| + 2*softplus(-|x|) symmetry check
	assert.InDelta(t, float64(sp[1]-sp[2]), 1.0, 1e-6)

	pos := raw32(t, []float32{1, math.E, 4}, tensor.Shape{3})
	lg := b.Log(pos).AsFloat32()
	assert.InDelta(t, 0.0, lg[0], 1e-6)
	assert.InDelta(t, 1.0, lg[1], 1e-6)
	assert.InDelta(t, 2.0, b.Sqrt(pos).AsFloat32()[2], 1e-6)

	assert.Panics(t, func() { b.Log(x) })
	assert.Panics(t, func() { b.Sqrt(x) })
}

func TestClamp(t *testing.T) {
	b := New()
	x := raw32(t, []float32{-1, 0.5, 2}, tensor.Shape{3})
	got := b.Clamp(x, 0, 1).AsFloat32()
	assert.Equal(t, []float32{0, 0.5, 1}, got)
	assert.Panics(t, func() { b.Clamp(x, 1, 0) })
}

func TestSoftmax(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2, 3, 1000, 1001, 1002}, tensor.Shape{2, 3})

	got := b.Softmax(x, -1)
	rows := got.AsFloat32()

	// Rows sum to one and large logits do not overflow.
	sum0 := float64(rows[0] + rows[1] + rows[2])
	sum1 := float64(rows[3] + rows[4] + rows[5])
	assert.InDelta(t, 1.0, sum0, 1e-6)
	assert.InDelta(t, 1.0, sum1, 1e-6)

	// Identical logit gaps give identical distributions.
	assert.True(t, floats.EqualApprox(
		toFloat64Slice(rows[:3]), toFloat64Slice(rows[3:]), 1e-6))

	assert.Panics(t, func() { b.Softmax(x, 0) })
}

func TestGather(t *testing.T) {
	b := New()
	probs := raw32(t, []float32{
		0.1, 0.7, 0.2,
		0.5, 0.3, 0.2,
	}, tensor.Shape{2, 3})
	labels := rawIdx(t, []int32{1, 0}, tensor.Shape{2, 1})

	got := b.Gather(probs, 1, labels)
	assert.True(t, got.Shape().Equal(tensor.Shape{2, 1}))
	assert.InDeltaSlice(t, []float64{0.7, 0.5}, toFloat64Slice(got.AsFloat32()), 1e-6)

	outOfRange := rawIdx(t, []int32{3, 0}, tensor.Shape{2, 1})
	assert.Panics(t, func() { b.Gather(probs, 1, outOfRange) })
}

func TestReductions(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	sum := b.Sum(x)
	assert.True(t, sum.Shape().Equal(tensor.Shape{1}))
	assert.InDelta(t, 10.0, float64(sum.AsFloat32()[0]), 1e-6)
	assert.InDelta(t, 2.5, float64(b.Mean(x).AsFloat32()[0]), 1e-6)
}

func TestArgmax(t *testing.T) {
	b := New()
	x := raw32(t, []float32{
		0.1, 0.7, 0.2,
		0.5, 0.3, 0.2,
	}, tensor.Shape{2, 3})

	got := b.Argmax(x, -1)
	assert.True(t, got.Shape().Equal(tensor.Shape{2}))
	assert.Equal(t, []int32{1, 0}, got.AsInt32())

	assert.Panics(t, func() { b.Argmax(x, 0) })
}

func TestReshapeAndTranspose(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	r := b.Reshape(x, tensor.Shape{3, 2})
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, r.AsFloat32())
	assert.Panics(t, func() { b.Reshape(x, tensor.Shape{4, 2}) })

	tr := b.Transpose(x)
	assert.True(t, tr.Shape().Equal(tensor.Shape{3, 2}))
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, tr.AsFloat32())

	// Transposing twice restores the original.
	back := b.Transpose(tr)
	assert.Equal(t, x.AsFloat32(), back.AsFloat32())
}

func toFloat64Slice(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
