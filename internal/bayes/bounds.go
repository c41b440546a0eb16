package bayes

import (
	"fmt"
	"math"
)

// PAC-Bayes generalization bounds. Each takes an empirical risk estimate
// in [0, 1], a KL divergence between posterior and prior, the number of
// examples the risk was measured on, and a confidence parameter delta.
// The returned value upper-bounds the true risk with probability 1-delta.

func checkBoundArgs(risk, kl float64, n int, delta float64) error {
	if n <= 0 {
		return fmt.Errorf("bayes: sample count %d, want > 0", n)
	}
	if delta <= 0 || delta >= 1 {
		return fmt.Errorf("bayes: confidence delta %g outside (0, 1)", delta)
	}
	if risk < 0 || math.IsNaN(risk) {
		return fmt.Errorf("bayes: invalid risk %g", risk)
	}
	if kl < 0 || math.IsNaN(kl) {
		return fmt.Errorf("bayes: invalid KL divergence %g", kl)
	}
	return nil
}

// complexity is the shared penalty term (kl + log(2*sqrt(n)/delta)) / n.
func complexity(kl float64, n int, delta float64) float64 {
	return (kl + math.Log(2*math.Sqrt(float64(n))/delta)) / float64(n)
}

// QuadBound is the quadratic relaxation of the PAC-Bayes-kl bound:
//
//	(sqrt(risk + c) + sqrt(c))^2  with  c = complexity / 2.
//
// Tighter than Pinsker when the empirical risk is small.
func QuadBound(risk, kl float64, n int, delta float64) (float64, error) {
	if err := checkBoundArgs(risk, kl, n, delta); err != nil {
		return 0, err
	}
	c := complexity(kl, n, delta) / 2
	root := math.Sqrt(risk+c) + math.Sqrt(c)
	return root * root, nil
}

// PinskerBound applies Pinsker's inequality to the PAC-Bayes-kl bound:
//
//	risk + sqrt(complexity / 2).
//
// Tighter than the quadratic form once the empirical risk is large.
func PinskerBound(risk, kl float64, n int, delta float64) (float64, error) {
	if err := checkBoundArgs(risk, kl, n, delta); err != nil {
		return 0, err
	}
	return risk + math.Sqrt(complexity(kl, n, delta)/2), nil
}

// InvertedKLBound returns the tighter of the two relaxations. Both hold
// simultaneously from the same underlying inequality, so taking the
// minimum costs no confidence.
func InvertedKLBound(risk, kl float64, n int, delta float64) (float64, error) {
	quad, err := QuadBound(risk, kl, n, delta)
	if err != nil {
		return 0, err
	}
	pinsker, err := PinskerBound(risk, kl, n, delta)
	if err != nil {
		return 0, err
	}
	return math.Min(quad, pinsker), nil
}
