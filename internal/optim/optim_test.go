package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

func param(t *testing.T, values []float32) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(tensor.Shape{len(values)}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), values)
	return r
}

func gradMap(t *testing.T, p *tensor.RawTensor, values []float32) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	return map[*tensor.RawTensor]*tensor.RawTensor{p: param(t, values)}
}

func TestSGDValidation(t *testing.T) {
	_, err := NewSGD(nil, 0, 0)
	assert.Error(t, err, "zero learning rate")
	_, err = NewSGD(nil, -0.1, 0)
	assert.Error(t, err, "negative learning rate")
	_, err = NewSGD(nil, 0.1, 1)
	assert.Error(t, err, "momentum at one")
	_, err = NewSGD(nil, 0.1, -0.5)
	assert.Error(t, err, "negative momentum")
}

func TestAdamValidation(t *testing.T) {
	_, err := NewAdam(nil, 0)
	assert.Error(t, err, "zero learning rate")
	_, err = NewAdamWithBetas(nil, 0.1, 1, 0.999, 1e-8)
	assert.Error(t, err, "beta1 at one")
	_, err = NewAdamWithBetas(nil, 0.1, 0.9, -0.1, 1e-8)
	assert.Error(t, err, "negative beta2")
	_, err = NewAdamWithBetas(nil, 0.1, 0.9, 0.999, 0)
	assert.Error(t, err, "zero epsilon")
}

func TestSGDStep(t *testing.T) {
	p := param(t, []float32{1, 2, 3})
	opt, err := NewSGD([]*tensor.RawTensor{p}, 0.1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.1, opt.LearningRate())

	require.NoError(t, opt.Step(gradMap(t, p, []float32{1, -1, 0})))
	assert.InDeltaSlice(t, []float32{0.9, 2.1, 3}, p.AsFloat32(), 1e-6)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	p := param(t, []float32{0})
	opt, err := NewSGD([]*tensor.RawTensor{p}, 0.1, 0.9)
	require.NoError(t, err)

	// Constant gradient of 1: v = 1, then v = 0.9 + 1 = 1.9.
	require.NoError(t, opt.Step(gradMap(t, p, []float32{1})))
	assert.InDelta(t, -0.1, float64(p.AsFloat32()[0]), 1e-6)

	require.NoError(t, opt.Step(gradMap(t, p, []float32{1})))
	assert.InDelta(t, -0.1-0.19, float64(p.AsFloat32()[0]), 1e-6)
}

func TestAdamFirstStepFollowsGradientSign(t *testing.T) {
	p := param(t, []float32{1, 1, 1})
	opt, err := NewAdam([]*tensor.RawTensor{p}, 0.01)
	require.NoError(t, err)

	// Bias correction cancels on step one, so the update is close to
	// lr * sign(gradient) regardless of magnitude.
	require.NoError(t, opt.Step(gradMap(t, p, []float32{5, -0.001, 0})))
	got := p.AsFloat32()
	assert.InDelta(t, 0.99, float64(got[0]), 1e-4)
	assert.InDelta(t, 1.01, float64(got[1]), 1e-4)
	assert.InDelta(t, 1.0, float64(got[2]), 1e-6)
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	// Minimize (x - 3)^2 with gradient 2(x - 3).
	p := param(t, []float32{0})
	opt, err := NewAdam([]*tensor.RawTensor{p}, 0.1)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		x := p.AsFloat32()[0]
		require.NoError(t, opt.Step(gradMap(t, p, []float32{2 * (x - 3)})))
	}
	assert.InDelta(t, 3.0, float64(p.AsFloat32()[0]), 0.05)
}

func TestParamsWithoutGradientsStayFixed(t *testing.T) {
	active := param(t, []float32{1})
	frozen := param(t, []float32{7})
	opt, err := NewSGD([]*tensor.RawTensor{active, frozen}, 0.5, 0)
	require.NoError(t, err)

	require.NoError(t, opt.Step(gradMap(t, active, []float32{1})))
	assert.InDelta(t, 0.5, float64(active.AsFloat32()[0]), 1e-6)
	assert.Equal(t, float32(7), frozen.AsFloat32()[0])
}

func TestStepRejectsMismatchedGradient(t *testing.T) {
	p := param(t, []float32{1, 2})
	opt, err := NewSGD([]*tensor.RawTensor{p}, 0.1, 0)
	require.NoError(t, err)

	short := param(t, []float32{1})
	err = opt.Step(map[*tensor.RawTensor]*tensor.RawTensor{p: short})
	assert.Error(t, err, "element count mismatch")

	wrongType, rerr := tensor.NewRaw(tensor.Shape{2}, tensor.Int32, tensor.CPU)
	require.NoError(t, rerr)
	err = opt.Step(map[*tensor.RawTensor]*tensor.RawTensor{p: wrongType})
	assert.Error(t, err, "dtype mismatch")
}
