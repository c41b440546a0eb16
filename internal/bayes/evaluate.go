package bayes

import (
	"errors"

	"github.com/bayesnet-ml/bayesnet/internal/autodiff"
	"github.com/bayesnet-ml/bayesnet/internal/nn"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// BatchLoader yields (input, label) batches. Next reports ok = false when
// the pass is exhausted; Reset rewinds for another pass.
type BatchLoader[B tensor.Backend] interface {
	Reset()
	Next() (x *tensor.Tensor[float32, B], y *tensor.Tensor[int32, B], ok bool)
}

type tapeCarrier interface {
	GetTape() *autodiff.GradientTape
}

// EvaluateOnLoader measures the classifier over one full pass of the
// loader with a single Monte Carlo sample per batch. It returns the 0-1
// error rate and the mean surrogate loss per example.
//
// If the backend carries a recording gradient tape, recording is paused
// for the duration and restored on every exit path, so evaluation never
// pollutes an in-progress training step.
func EvaluateOnLoader[B tensor.Backend](c *Classifier[B], loader BatchLoader[B]) (errRate, avgSurrogate float64, err error) {
	loader.Reset()

	var paused *autodiff.GradientTape
	defer func() {
		if paused != nil {
			paused.Start()
		}
	}()

	var corrects, totals int
	var surrogateSum float64
	for {
		x, y, ok := loader.Next()
		if !ok {
			break
		}
		if paused == nil {
			if tc, isTaped := any(x.Backend()).(tapeCarrier); isTaped && tc.GetTape().IsRecording() {
				paused = tc.GetTape()
				paused.Stop()
			}
		}

		probs := c.Forward(x, nn.ModeMC)
		losses, serr := Surrogate(probs, y, c.numClasses, c.cfg.ProbThreshold, c.cfg.NormalizeSurrogate)
		if serr != nil {
			return 0, 0, serr
		}
		for _, v := range losses.Data() {
			surrogateSum += float64(v)
		}

		batchCorrect, batchTotal, cerr := CountCorrect(probs, y)
		if cerr != nil {
			return 0, 0, cerr
		}
		corrects += batchCorrect
		totals += batchTotal
	}

	if totals == 0 {
		return 0, 0, errors.New("bayes: loader produced no examples")
	}
	return 1 - float64(corrects)/float64(totals), surrogateSum / float64(totals), nil
}
