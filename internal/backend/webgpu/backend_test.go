package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayesnet-ml/bayesnet/internal/backend/cpu"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// newGPU skips the test when no WebGPU adapter is available, so the suite
// stays green on CI machines without a GPU.
func newGPU(t *testing.T) *Backend {
	t.Helper()
	if !IsAvailable() {
		t.Skip("no WebGPU adapter available")
	}
	b, err := New()
	require.NoError(t, err)
	t.Cleanup(b.Release)
	return b
}

func gpuRaw(t *testing.T, values []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.WebGPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), values)
	return r
}

func TestGPUMatchesHostElementwise(t *testing.T) {
	gpu := newGPU(t)
	host := cpu.New()

	a := gpuRaw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := gpuRaw(t, []float32{6, 5, 4, 3, 2, 1}, tensor.Shape{2, 3})

	assert.InDeltaSlice(t, host.Add(a, b).AsFloat32(), gpu.Add(a, b).AsFloat32(), 1e-5)
	assert.InDeltaSlice(t, host.Mul(a, b).AsFloat32(), gpu.Mul(a, b).AsFloat32(), 1e-5)
	assert.InDeltaSlice(t, host.Softplus(a).AsFloat32(), gpu.Softplus(a).AsFloat32(), 1e-4)
}

func TestGPUMatMulMatchesHost(t *testing.T) {
	gpu := newGPU(t)
	host := cpu.New()

	a := gpuRaw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := gpuRaw(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	got := gpu.MatMul(a, b)
	assert.True(t, got.Shape().Equal(tensor.Shape{2, 2}))
	assert.InDeltaSlice(t, host.MatMul(a, b).AsFloat32(), got.AsFloat32(), 1e-4)
}

func TestGPUSoftmaxRowsSumToOne(t *testing.T) {
	gpu := newGPU(t)

	x := gpuRaw(t, []float32{1, 2, 3, 100, 101, 102}, tensor.Shape{2, 3})
	rows := gpu.Softmax(x, -1).AsFloat32()

	assert.InDelta(t, 1.0, float64(rows[0]+rows[1]+rows[2]), 1e-5)
	assert.InDelta(t, 1.0, float64(rows[3]+rows[4]+rows[5]), 1e-5)
}

func TestBroadcastFallsBackToHost(t *testing.T) {
	gpu := newGPU(t)

	x := gpuRaw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	bias := gpuRaw(t, []float32{10, 20, 30}, tensor.Shape{1, 3})

	// Mismatched shapes are not shader-eligible; the host path broadcasts.
	got := gpu.Add(x, bias)
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, got.AsFloat32())
}
