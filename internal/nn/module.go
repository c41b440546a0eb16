package nn

import (
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// ForwardMode selects how a stochastic layer resolves its weights.
type ForwardMode int

const (
	// ModeMC draws a fresh weight sample via the reparameterization
	// trick. Used during training and Monte Carlo evaluation.
	ModeMC ForwardMode = iota
	// ModeMean uses the posterior means directly, giving a
	// deterministic forward pass.
	ModeMean
)

func (m ForwardMode) String() string {
	switch m {
	case ModeMC:
		return "mc"
	case ModeMean:
		return "mean"
	default:
		return "unknown"
	}
}

// StochasticLayer is a layer with a weight distribution rather than fixed
// weights. Forward re-samples on every ModeMC call, so repeated calls on
// the same input give different outputs.
type StochasticLayer[B tensor.Backend] interface {
	Forward(x *tensor.Tensor[float32, B], mode ForwardMode) *tensor.Tensor[float32, B]

	// KL returns the divergence between this layer's posterior and its
	// fixed isotropic Gaussian prior, as a differentiable scalar tensor.
	KL() *tensor.Tensor[float32, B]

	// KLOraclePriorVariance returns the divergence against a prior whose
	// variance is set to its per-layer optimal (data-dependent) value.
	KLOraclePriorVariance() *tensor.Tensor[float32, B]

	Parameters() []*Parameter[B]
}
