package bayes

import (
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// CountCorrect compares argmax predictions against integer labels and
// returns how many matched, along with the batch size.
func CountCorrect[B tensor.Backend](
	probs *tensor.Tensor[float32, B],
	labels *tensor.Tensor[int32, B],
) (correct, total int, err error) {
	shape := probs.Shape()
	if len(shape) != 2 {
		return 0, 0, fmt.Errorf("bayes: probability shape %v, want [batch, classes]", shape)
	}
	if labels.NumElements() != shape[0] {
		return 0, 0, fmt.Errorf("bayes: %d labels for batch of %d", labels.NumElements(), shape[0])
	}

	predicted := probs.Argmax(-1).Data()
	want := labels.Data()
	for i, p := range predicted {
		if p == want[i] {
			correct++
		}
	}
	return correct, len(predicted), nil
}
