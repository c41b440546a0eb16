package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayesnet-ml/bayesnet/internal/backend/cpu"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

func newLayer(t *testing.T, in, out int, act Activation, seed uint64) *BayesianLinear[*cpu.Backend] {
	t.Helper()
	l, err := NewBayesianLinear(cpu.New(), in, out, 0.03, 0.01, act, seed)
	require.NoError(t, err)
	return l
}

func TestNewBayesianLinearValidation(t *testing.T) {
	b := cpu.New()
	_, err := NewBayesianLinear(b, 0, 5, 0.03, 0.01, ActivationNone, 1)
	assert.Error(t, err)
	_, err = NewBayesianLinear(b, 5, 5, -1, 0.01, ActivationNone, 1)
	assert.Error(t, err)
	_, err = NewBayesianLinear(b, 5, 5, 0.03, 0, ActivationNone, 1)
	assert.Error(t, err)
}

func TestRhoForSigmaInvertsSoftplus(t *testing.T) {
	for _, sigma := range []float64{0.001, 0.01, 0.1, 1.0} {
		rho := float64(RhoForSigma(sigma))
		got := math.Log1p(math.Exp(rho))
		assert.InDelta(t, sigma, got, 1e-6)
	}
	assert.Panics(t, func() { RhoForSigma(0) })
}

func TestParametersAndShapes(t *testing.T) {
	l := newLayer(t, 4, 3, ActivationNone, 1)

	params := l.Parameters()
	require.Len(t, params, 4)
	names := []string{params[0].Name(), params[1].Name(), params[2].Name(), params[3].Name()}
	assert.Equal(t, []string{"w_mu", "w_rho", "b_mu", "b_rho"}, names)

	assert.True(t, params[0].Tensor().Shape().Equal(tensor.Shape{4, 3}))
	assert.True(t, params[2].Tensor().Shape().Equal(tensor.Shape{1, 3}))
}

func TestForwardShapes(t *testing.T) {
	l := newLayer(t, 4, 3, ActivationSoftmax, 1)
	x, err := tensor.FromSlice(make([]float32, 8), tensor.Shape{2, 4}, cpu.New())
	require.NoError(t, err)

	out := l.Forward(x, ModeMC)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 3}))

	// Softmax output rows sum to one.
	data := out.Data()
	assert.InDelta(t, 1.0, float64(data[0]+data[1]+data[2]), 1e-5)
}

func TestForwardMeanIsDeterministic(t *testing.T) {
	l := newLayer(t, 4, 3, ActivationNone, 1)
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 4}, cpu.New())
	require.NoError(t, err)

	a := l.Forward(x, ModeMean).Data()
	b := l.Forward(x, ModeMean).Data()
	assert.Equal(t, a, b)
}

func TestForwardMCResamples(t *testing.T) {
	l := newLayer(t, 10, 5, ActivationNone, 1)
	x, err := tensor.FromSlice(make([]float32, 10), tensor.Shape{1, 10}, cpu.New())
	require.NoError(t, err)

	// Zero input isolates the bias sample; two draws should differ.
	a := append([]float32(nil), l.Forward(x, ModeMC).Data()...)
	b := l.Forward(x, ModeMC).Data()
	assert.NotEqual(t, a, b)
}

func TestSeededLayersMatch(t *testing.T) {
	l1 := newLayer(t, 4, 3, ActivationNone, 7)
	l2 := newLayer(t, 4, 3, ActivationNone, 7)
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 4}, cpu.New())
	require.NoError(t, err)

	assert.Equal(t, l1.Forward(x, ModeMC).Data(), l2.Forward(x, ModeMC).Data())
}

func TestKLAtInitialization(t *testing.T) {
	const initSigma = 0.01
	const priorSigma = 0.03
	l, err := NewBayesianLinear(cpu.New(), 6, 4, priorSigma, initSigma, ActivationNone, 3)
	require.NoError(t, err)

	// At init mu equals the prior mean, so only the variance terms remain:
	// per element 0.5 * (log(s0^2/sigma^2) + sigma^2/s0^2 - 1).
	n := 6*4 + 4
	perElem := 0.5 * (math.Log(priorSigma*priorSigma/(initSigma*initSigma)) +
		initSigma*initSigma/(priorSigma*priorSigma) - 1)
	want := float64(n) * perElem

	got := float64(l.KL().Item())
	assert.InDelta(t, want, got, math.Abs(want)*1e-3)
	assert.Greater(t, got, 0.0)
}

func TestOracleKLAtInitializationIsZero(t *testing.T) {
	l := newLayer(t, 6, 4, ActivationNone, 3)

	// With mu = mu0 and uniform sigma, the optimal prior variance equals
	// sigma^2 everywhere and the divergence collapses to zero.
	got := float64(l.KLOraclePriorVariance().Item())
	assert.InDelta(t, 0.0, got, 1e-4)
}

func TestKLGrowsWhenPosteriorMoves(t *testing.T) {
	l := newLayer(t, 6, 4, ActivationNone, 3)
	before := float64(l.KL().Item())

	// Shift the posterior means away from the prior center.
	wMu := l.Parameters()[0].Tensor().Data()
	for i := range wMu {
		wMu[i] += 0.5
	}
	after := float64(l.KL().Item())
	assert.Greater(t, after, before)
}
