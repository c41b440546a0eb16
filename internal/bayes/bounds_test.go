package bayes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundArgumentValidation(t *testing.T) {
	bounds := map[string]func(risk, kl float64, n int, delta float64) (float64, error){
		"quad":     QuadBound,
		"pinsker":  PinskerBound,
		"inverted": InvertedKLBound,
	}
	for name, bound := range bounds {
		t.Run(name, func(t *testing.T) {
			_, err := bound(0.1, 10, 0, 0.05)
			assert.Error(t, err, "n = 0")
			_, err = bound(0.1, 10, -5, 0.05)
			assert.Error(t, err, "negative n")
			_, err = bound(0.1, 10, 1000, 0)
			assert.Error(t, err, "delta = 0")
			_, err = bound(0.1, 10, 1000, 1)
			assert.Error(t, err, "delta = 1")
			_, err = bound(-0.1, 10, 1000, 0.05)
			assert.Error(t, err, "negative risk")
			_, err = bound(0.1, -1, 1000, 0.05)
			assert.Error(t, err, "negative kl")
			_, err = bound(math.NaN(), 10, 1000, 0.05)
			assert.Error(t, err, "NaN risk")
			_, err = bound(0.1, math.NaN(), 1000, 0.05)
			assert.Error(t, err, "NaN kl")
		})
	}
}

func TestQuadBoundValue(t *testing.T) {
	// Hand-computed: c = (kl + log(2*sqrt(n)/delta)) / (2n).
	risk, kl, n, delta := 0.1, 50.0, 10000, 0.05
	c := (kl + math.Log(2*math.Sqrt(float64(n))/delta)) / (2 * float64(n))
	want := math.Pow(math.Sqrt(risk+c)+math.Sqrt(c), 2)

	got, err := QuadBound(risk, kl, n, delta)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
	assert.Greater(t, got, risk)
}

func TestPinskerBoundValue(t *testing.T) {
	risk, kl, n, delta := 0.3, 50.0, 10000, 0.05
	b := (kl + math.Log(2*math.Sqrt(float64(n))/delta)) / float64(n)
	want := risk + math.Sqrt(b/2)

	got, err := PinskerBound(risk, kl, n, delta)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestInvertedKLTakesTheTighter(t *testing.T) {
	cases := []struct{ risk float64 }{{0.0}, {0.01}, {0.1}, {0.3}, {0.5}, {0.9}}
	for _, tc := range cases {
		quad, err := QuadBound(tc.risk, 100, 50000, 0.025)
		require.NoError(t, err)
		pinsker, err := PinskerBound(tc.risk, 100, 50000, 0.025)
		require.NoError(t, err)
		inv, err := InvertedKLBound(tc.risk, 100, 50000, 0.025)
		require.NoError(t, err)

		assert.InDelta(t, math.Min(quad, pinsker), inv, 1e-12)
	}
}

func TestQuadTighterAtLowRisk(t *testing.T) {
	quad, err := QuadBound(0.001, 100, 50000, 0.025)
	require.NoError(t, err)
	pinsker, err := PinskerBound(0.001, 100, 50000, 0.025)
	require.NoError(t, err)
	assert.Less(t, quad, pinsker)
}

func TestBoundsMonotonicity(t *testing.T) {
	base, err := InvertedKLBound(0.1, 50, 10000, 0.05)
	require.NoError(t, err)

	moreKL, err := InvertedKLBound(0.1, 500, 10000, 0.05)
	require.NoError(t, err)
	assert.Greater(t, moreKL, base, "larger KL loosens the bound")

	moreData, err := InvertedKLBound(0.1, 50, 100000, 0.05)
	require.NoError(t, err)
	assert.Less(t, moreData, base, "more data tightens the bound")

	moreRisk, err := InvertedKLBound(0.3, 50, 10000, 0.05)
	require.NoError(t, err)
	assert.Greater(t, moreRisk, base, "higher risk raises the bound")

	looserDelta, err := InvertedKLBound(0.1, 50, 10000, 0.1)
	require.NoError(t, err)
	tighterDelta, err := InvertedKLBound(0.1, 50, 10000, 0.01)
	require.NoError(t, err)
	assert.Less(t, looserDelta, tighterDelta, "bound is non-increasing in delta")
}
