package nn

import (
	"math"
)

// xavierStd returns the Glorot-normal standard deviation for a layer with
// the given fan-in and fan-out.
func xavierStd(fanIn, fanOut int) float64 {
	return math.Sqrt(2.0 / float64(fanIn+fanOut))
}

// RhoForSigma inverts the softplus, returning the rho whose softplus is
// sigma. Posterior scale parameters are stored as rho so they stay
// unconstrained during optimization.
func RhoForSigma(sigma float64) float32 {
	if sigma <= 0 {
		panic("RhoForSigma: sigma must be positive")
	}
	// log(exp(sigma) - 1), stable for small sigma via expm1.
	return float32(math.Log(math.Expm1(sigma)))
}
