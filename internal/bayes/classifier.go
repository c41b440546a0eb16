// Package bayes implements the variational Bayesian classifier: a stack of
// stochastic layers trained against a clamped cross-entropy surrogate plus
// a KL complexity term, with PAC-Bayes bounds certifying the result.
package bayes

import (
	"errors"
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/nn"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Config controls the training objective.
type Config struct {
	// ProbThreshold is the lower clamp applied to predicted true-class
	// probabilities before the log, keeping the surrogate bounded.
	// Must lie in (0, 1).
	ProbThreshold float64

	// NormalizeSurrogate divides the surrogate by log(numClasses), mapping
	// it to [0, 1] when ProbThreshold = 1/numClasses.
	NormalizeSurrogate bool

	// OraclePriorVariance switches the KL term to the closed-form optimum
	// over the prior variance instead of a fixed prior scale.
	OraclePriorVariance bool
}

// Classifier is a feed-forward network of stochastic layers. The final
// layer is expected to produce row-stochastic class probabilities (use
// ActivationSoftmax on it).
type Classifier[B tensor.Backend] struct {
	layers     []nn.StochasticLayer[B]
	numClasses int
	cfg        Config
}

func NewClassifier[B tensor.Backend](layers []nn.StochasticLayer[B], numClasses int, cfg Config) (*Classifier[B], error) {
	if len(layers) == 0 {
		return nil, errors.New("bayes: classifier needs at least one layer")
	}
	if numClasses < 1 {
		return nil, fmt.Errorf("bayes: invalid class count %d", numClasses)
	}
	if cfg.ProbThreshold <= 0 || cfg.ProbThreshold >= 1 {
		return nil, fmt.Errorf("bayes: probability threshold %g outside (0, 1)", cfg.ProbThreshold)
	}
	if numClasses == 1 && cfg.NormalizeSurrogate {
		return nil, errors.New("bayes: cannot normalize surrogate with a single class, log(1) = 0")
	}
	return &Classifier[B]{layers: layers, numClasses: numClasses, cfg: cfg}, nil
}

func (c *Classifier[B]) NumClasses() int { return c.numClasses }
func (c *Classifier[B]) Config() Config  { return c.cfg }

func (c *Classifier[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, l := range c.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}

// Forward runs one pass through the network. In ModeMC every stochastic
// layer draws fresh weights, so repeated calls differ.
func (c *Classifier[B]) Forward(x *tensor.Tensor[float32, B], mode nn.ForwardMode) *tensor.Tensor[float32, B] {
	out := x
	for _, l := range c.layers {
		out = l.Forward(out, mode)
	}
	return out
}

// KL returns the network divergence: the sum over layers, using the
// oracle-prior-variance form when configured.
func (c *Classifier[B]) KL() *tensor.Tensor[float32, B] {
	var total *tensor.Tensor[float32, B]
	for _, l := range c.layers {
		var kl *tensor.Tensor[float32, B]
		if c.cfg.OraclePriorVariance {
			kl = l.KLOraclePriorVariance()
		} else {
			kl = l.KL()
		}
		if total == nil {
			total = kl
		} else {
			total = total.Add(kl)
		}
	}
	return total
}

// ForwardTrain estimates the training objective with numSamples Monte
// Carlo passes. It returns the mean KL and mean surrogate as
// differentiable scalar tensors.
//
// The KL does not depend on the sampled weights, but it is recomputed
// inside the sampling loop anyway so that every term of the averaged
// objective lives on the same stretch of tape.
func (c *Classifier[B]) ForwardTrain(
	x *tensor.Tensor[float32, B],
	y *tensor.Tensor[int32, B],
	numSamples int,
) (kl, surrogate *tensor.Tensor[float32, B], err error) {
	if numSamples < 1 {
		return nil, nil, fmt.Errorf("bayes: sample count %d, want >= 1", numSamples)
	}
	xShape := x.Shape()
	if len(xShape) != 2 {
		return nil, nil, fmt.Errorf("bayes: input shape %v, want [batch, features]", xShape)
	}
	if y.NumElements() != xShape[0] {
		return nil, nil, fmt.Errorf("bayes: %d labels for batch of %d", y.NumElements(), xShape[0])
	}

	var klSum, surSum *tensor.Tensor[float32, B]
	for i := 0; i < numSamples; i++ {
		probs := c.Forward(x, nn.ModeMC)
		losses, serr := Surrogate(probs, y, c.numClasses, c.cfg.ProbThreshold, c.cfg.NormalizeSurrogate)
		if serr != nil {
			return nil, nil, serr
		}
		sampleSur := losses.Mean()
		sampleKL := c.KL()

		if klSum == nil {
			klSum, surSum = sampleKL, sampleSur
		} else {
			klSum = klSum.Add(sampleKL)
			surSum = surSum.Add(sampleSur)
		}
	}

	inv := float32(numSamples)
	return klSum.DivScalar(inv), surSum.DivScalar(inv), nil
}
