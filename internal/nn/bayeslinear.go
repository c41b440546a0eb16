package nn

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Activation selects the nonlinearity applied after the affine transform.
type Activation int

const (
	ActivationNone Activation = iota
	ActivationReLU
	ActivationSoftmax
)

// BayesianLinear is a fully connected layer with a mean-field Gaussian
// posterior over its weights and biases. Scales are parameterized as
// sigma = softplus(rho). The prior is an isotropic Gaussian centered on
// the frozen initial means with a fixed standard deviation.
//
// The weight matrix is stored [in, out], so the forward pass is a plain
// x @ W + b without a transpose.
type BayesianLinear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int

	wMu, wRho *Parameter[B]
	bMu, bRho *Parameter[B]

	// Prior means, frozen at construction. Never on the tape.
	wPriorMu, bPriorMu *tensor.Tensor[float32, B]

	priorSigma float64
	activation Activation

	normal  distuv.Normal
	backend B
}

// NewBayesianLinear builds a layer on the given backend. Posterior means
// are drawn Glorot-normal from the layer's own seeded source; posterior
// scales start at initSigma via the softplus inverse. The frozen copies
// of the initial means become the prior center.
func NewBayesianLinear[B tensor.Backend](
	backend B,
	inFeatures, outFeatures int,
	priorSigma, initSigma float64,
	activation Activation,
	seed uint64,
) (*BayesianLinear[B], error) {
	if inFeatures <= 0 || outFeatures <= 0 {
		return nil, fmt.Errorf("nn: invalid layer size %dx%d", inFeatures, outFeatures)
	}
	if priorSigma <= 0 {
		return nil, fmt.Errorf("nn: prior sigma must be positive, got %g", priorSigma)
	}
	if initSigma <= 0 {
		return nil, fmt.Errorf("nn: initial sigma must be positive, got %g", initSigma)
	}

	l := &BayesianLinear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		priorSigma:  priorSigma,
		activation:  activation,
		normal:      distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)},
		backend:     backend,
	}

	wShape := tensor.Shape{inFeatures, outFeatures}
	bShape := tensor.Shape{1, outFeatures}

	wMu := tensor.Zeros[float32](wShape, backend)
	std := xavierStd(inFeatures, outFeatures)
	for i, data := 0, wMu.Data(); i < len(data); i++ {
		data[i] = float32(l.normal.Rand() * std)
	}
	bMu := tensor.Zeros[float32](bShape, backend)

	rho := RhoForSigma(initSigma)
	wRho := tensor.Full[float32](wShape, rho, backend)
	bRho := tensor.Full[float32](bShape, rho, backend)

	l.wMu = NewParameter("w_mu", wMu)
	l.wRho = NewParameter("w_rho", wRho)
	l.bMu = NewParameter("b_mu", bMu)
	l.bRho = NewParameter("b_rho", bRho)
	l.wPriorMu = wMu.Clone()
	l.bPriorMu = bMu.Clone()
	return l, nil
}

func (l *BayesianLinear[B]) InFeatures() int  { return l.inFeatures }
func (l *BayesianLinear[B]) OutFeatures() int { return l.outFeatures }

func (l *BayesianLinear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.wMu, l.wRho, l.bMu, l.bRho}
}

// Forward applies the layer. In ModeMC it draws one weight sample via
// w = mu + softplus(rho) * eps with eps ~ N(0, 1); the noise is a
// constant, so gradients flow to mu and rho only. In ModeMean the
// posterior means are used as-is.
func (l *BayesianLinear[B]) Forward(x *tensor.Tensor[float32, B], mode ForwardMode) *tensor.Tensor[float32, B] {
	var w, b *tensor.Tensor[float32, B]
	switch mode {
	case ModeMean:
		w = l.wMu.Tensor()
		b = l.bMu.Tensor()
	default:
		w = l.sampleWeights(l.wMu, l.wRho)
		b = l.sampleWeights(l.bMu, l.bRho)
	}

	y := x.MatMul(w).Add(b)
	switch l.activation {
	case ActivationReLU:
		return y.ReLU()
	case ActivationSoftmax:
		return y.Softmax(-1)
	default:
		return y
	}
}

func (l *BayesianLinear[B]) sampleWeights(mu, rho *Parameter[B]) *tensor.Tensor[float32, B] {
	eps := tensor.Zeros[float32](mu.Tensor().Shape().Clone(), l.backend)
	for i, data := 0, eps.Data(); i < len(data); i++ {
		data[i] = float32(l.normal.Rand())
	}
	sigma := rho.Tensor().Softplus()
	return mu.Tensor().Add(sigma.Mul(eps))
}

// KL returns KL(q || p) for the fixed isotropic prior N(mu0, priorSigma^2),
// summed over weights and biases:
//
//	0.5 * sum[ log(s0^2/sigma^2) + (sigma^2 + (mu-mu0)^2)/s0^2 - 1 ]
func (l *BayesianLinear[B]) KL() *tensor.Tensor[float32, B] {
	wKL := l.klFixed(l.wMu, l.wRho, l.wPriorMu)
	bKL := l.klFixed(l.bMu, l.bRho, l.bPriorMu)
	return wKL.Add(bKL)
}

func (l *BayesianLinear[B]) klFixed(mu, rho *Parameter[B], priorMu *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	s02 := l.priorSigma * l.priorSigma
	sigma := rho.Tensor().Softplus()
	sigma2 := sigma.Mul(sigma)
	d := mu.Tensor().Sub(priorMu)

	logRatio := sigma2.Log().Neg().AddScalar(float32(math.Log(s02)))
	quad := sigma2.Add(d.Mul(d)).DivScalar(float32(s02))
	return logRatio.Add(quad).AddScalar(-1).Sum().MulScalar(0.5)
}

// KLOraclePriorVariance returns the divergence with the prior variance set
// to its per-tensor optimum s^2 = mean(sigma^2 + (mu-mu0)^2), which
// collapses the closed form to 0.5 * (n*log(s^2) - sum(log(sigma^2))).
func (l *BayesianLinear[B]) KLOraclePriorVariance() *tensor.Tensor[float32, B] {
	wKL := l.klOracle(l.wMu, l.wRho, l.wPriorMu)
	bKL := l.klOracle(l.bMu, l.bRho, l.bPriorMu)
	return wKL.Add(bKL)
}

func (l *BayesianLinear[B]) klOracle(mu, rho *Parameter[B], priorMu *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	sigma := rho.Tensor().Softplus()
	sigma2 := sigma.Mul(sigma)
	d := mu.Tensor().Sub(priorMu)

	n := float32(mu.Tensor().NumElements())
	s2 := sigma2.Add(d.Mul(d)).Mean()
	return s2.Log().MulScalar(n).Sub(sigma2.Log().Sum()).MulScalar(0.5)
}
