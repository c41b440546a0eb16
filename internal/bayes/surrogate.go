package bayes

import (
	"errors"
	"fmt"
	"math"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Surrogate computes the per-example bounded cross-entropy losses
// -log(clamp(p_true, threshold, 1)) as a [batch, 1] tensor. The result is
// left un-reduced so callers can average, inspect, or reweight it.
//
// With normalize set, losses are divided by log(numClasses), which maps
// the maximum attainable loss to 1 when threshold = 1/numClasses.
func Surrogate[B tensor.Backend](
	probs *tensor.Tensor[float32, B],
	labels *tensor.Tensor[int32, B],
	numClasses int,
	threshold float64,
	normalize bool,
) (*tensor.Tensor[float32, B], error) {
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("bayes: probability threshold %g outside (0, 1)", threshold)
	}
	if numClasses == 1 && normalize {
		return nil, errors.New("bayes: cannot normalize surrogate with a single class, log(1) = 0")
	}
	shape := probs.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("bayes: probability shape %v, want [batch, classes]", shape)
	}
	if shape[1] != numClasses {
		return nil, fmt.Errorf("bayes: probability matrix has %d columns, want %d classes", shape[1], numClasses)
	}
	if labels.NumElements() != shape[0] {
		return nil, fmt.Errorf("bayes: %d labels for batch of %d", labels.NumElements(), shape[0])
	}

	column := labels.Reshape(shape[0], 1)
	gathered := probs.Gather(1, column)
	losses := gathered.Clamp(threshold, 1).Log().Neg()
	if normalize {
		losses = losses.DivScalar(float32(math.Log(float64(numClasses))))
	}
	return losses, nil
}
