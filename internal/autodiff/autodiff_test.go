package autodiff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayesnet-ml/bayesnet/internal/backend/cpu"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

type testBackend = *AutodiffBackend[*cpu.Backend]

func newTestBackend() testBackend {
	return NewBackend(cpu.New())
}

func fromSlice(t *testing.T, b testBackend, values []float32, shape tensor.Shape) *tensor.Tensor[float32, testBackend] {
	t.Helper()
	x, err := tensor.FromSlice(values, shape, b)
	require.NoError(t, err)
	return x
}

func grad32(t *testing.T, grads map[*tensor.RawTensor]*tensor.RawTensor, key *tensor.RawTensor) []float32 {
	t.Helper()
	g, ok := grads[key]
	require.True(t, ok, "no gradient recorded for tensor")
	return g.AsFloat32()
}

func TestTapeRecordsOnlyWhileRecording(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{1, 2}, tensor.Shape{2})

	x.Add(x)
	assert.Equal(t, 0, b.GetTape().NumOperations())

	b.GetTape().Start()
	x.Add(x)
	assert.Equal(t, 1, b.GetTape().NumOperations())

	b.GetTape().Stop()
	x.Add(x)
	assert.Equal(t, 1, b.GetTape().NumOperations())

	b.GetTape().Clear()
	assert.Equal(t, 0, b.GetTape().NumOperations())
}

func TestBackwardWithoutTapeErrors(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{1}, tensor.Shape{1})
	_, err := Backward(x)
	assert.Error(t, err)
}

func TestSquareGradient(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{1, 2, 3}, tensor.Shape{3})

	b.GetTape().Start()
	loss := x.Mul(x).Sum()
	b.GetTape().Stop()

	grads, err := Backward(loss)
	require.NoError(t, err)

	// d/dx sum(x^2) = 2x
	assert.InDeltaSlice(t, []float32{2, 4, 6}, grad32(t, grads, x.Raw()), 1e-6)
}

func TestMeanGradient(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{1, 2, 3, 4}, tensor.Shape{4})

	b.GetTape().Start()
	loss := x.Mean()
	b.GetTape().Stop()

	grads, err := Backward(loss)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.25, 0.25, 0.25, 0.25}, grad32(t, grads, x.Raw()), 1e-6)
}

func TestMatMulGradients(t *testing.T) {
	b := newTestBackend()
	a := fromSlice(t, b, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	w := fromSlice(t, b, []float32{5, 6, 7, 8}, tensor.Shape{2, 2})

	b.GetTape().Start()
	loss := a.MatMul(w).Sum()
	b.GetTape().Stop()

	grads, err := Backward(loss)
	require.NoError(t, err)

	// dL/dA = ones @ W^T; dL/dW = A^T @ ones.
	assert.InDeltaSlice(t, []float32{11, 15, 11, 15}, grad32(t, grads, a.Raw()), 1e-5)
	assert.InDeltaSlice(t, []float32{4, 4, 6, 6}, grad32(t, grads, w.Raw()), 1e-5)
}

func TestBroadcastAddReducesGradient(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	bias := fromSlice(t, b, []float32{10, 20, 30}, tensor.Shape{1, 3})

	b.GetTape().Start()
	loss := x.Add(bias).Sum()
	b.GetTape().Stop()

	grads, err := Backward(loss)
	require.NoError(t, err)

	// The bias was replicated over 2 rows, so its gradient sums over them.
	assert.InDeltaSlice(t, []float32{2, 2, 2}, grad32(t, grads, bias.Raw()), 1e-6)
	assert.InDeltaSlice(t, []float32{1, 1, 1, 1, 1, 1}, grad32(t, grads, x.Raw()), 1e-6)
}

func TestLogGradient(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{0.5, 2}, tensor.Shape{2})

	b.GetTape().Start()
	loss := x.Log().Sum()
	b.GetTape().Stop()

	grads, err := Backward(loss)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{2, 0.5}, grad32(t, grads, x.Raw()), 1e-6)
}

func TestSoftplusGradientIsSigmoid(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{-2, 0, 2}, tensor.Shape{3})

	b.GetTape().Start()
	loss := x.Softplus().Sum()
	b.GetTape().Stop()

	grads, err := Backward(loss)
	require.NoError(t, err)

	g := grad32(t, grads, x.Raw())
	for i, v := range []float64{-2, 0, 2} {
		want := 1 / (1 + math.Exp(-v))
		assert.InDelta(t, want, float64(g[i]), 1e-6)
	}
}

func TestReLUGradientMask(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{-1, 0, 2}, tensor.Shape{3})

	b.GetTape().Start()
	loss := x.ReLU().Sum()
	b.GetTape().Stop()

	grads, err := Backward(loss)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0, 0, 1}, grad32(t, grads, x.Raw()), 1e-6)
}

func TestClampGradientMask(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{-0.5, 0.5, 1.5}, tensor.Shape{3})

	b.GetTape().Start()
	loss := x.Clamp(0, 1).Sum()
	b.GetTape().Stop()

	grads, err := Backward(loss)
	require.NoError(t, err)

	// Saturated elements get zero gradient.
	assert.InDeltaSlice(t, []float32{0, 1, 0}, grad32(t, grads, x.Raw()), 1e-6)
}

func TestSoftmaxGatherLogChain(t *testing.T) {
	b := newTestBackend()
	logits := fromSlice(t, b, []float32{1, 2, 3}, tensor.Shape{1, 3})
	labels, err := tensor.FromSlice([]int32{2}, tensor.Shape{1, 1}, b)
	require.NoError(t, err)

	b.GetTape().Start()
	probs := logits.Softmax(-1)
	loss := probs.Gather(1, labels).Log().Neg().Mean()
	b.GetTape().Stop()

	grads, gerr := Backward(loss)
	require.NoError(t, gerr)

	// Cross-entropy through softmax gives p - onehot.
	g := grad32(t, grads, logits.Raw())
	p := probs.Data()
	want := []float64{float64(p[0]), float64(p[1]), float64(p[2]) - 1}
	for i := range want {
		assert.InDelta(t, want[i], float64(g[i]), 1e-5)
	}
}

func TestGatherScatterAccumulates(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{1, 2, 3}, tensor.Shape{1, 3})
	// The same source column selected twice must receive both gradients.
	idx, err := tensor.FromSlice([]int32{1, 1}, tensor.Shape{1, 2}, b)
	require.NoError(t, err)

	b.GetTape().Start()
	loss := x.Gather(1, idx).Sum()
	b.GetTape().Stop()

	grads, gerr := Backward(loss)
	require.NoError(t, gerr)
	assert.InDeltaSlice(t, []float32{0, 2, 0}, grad32(t, grads, x.Raw()), 1e-6)
}

func TestGradientAccumulationOverReuse(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{3}, tensor.Shape{1})

	b.GetTape().Start()
	// x used twice: loss = x*x, dL/dx = 2x via accumulation of both paths.
	loss := x.Mul(x).Sum()
	b.GetTape().Stop()

	grads, err := Backward(loss)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, float64(grad32(t, grads, x.Raw())[0]), 1e-6)
}

func TestReshapeTransposeGradients(t *testing.T) {
	b := newTestBackend()
	x := fromSlice(t, b, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	scale := fromSlice(t, b, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})

	b.GetTape().Start()
	loss := x.T().Mul(scale).Sum()
	b.GetTape().Stop()

	grads, err := Backward(loss)
	require.NoError(t, err)

	// Gradient of x is scale transposed back into x's layout.
	assert.InDeltaSlice(t, []float32{1, 3, 5, 2, 4, 6}, grad32(t, grads, x.Raw()), 1e-6)
}
