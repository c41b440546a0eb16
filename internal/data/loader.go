// Package data provides dataset readers and an in-memory batch loader
// for classification training.
package data

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Loader serves fixed-size batches from an in-memory dataset. The final
// batch of a pass may be smaller. With shuffling enabled, each Reset
// re-permutes the example order.
type Loader[B tensor.Backend] struct {
	backend     B
	features    []float32
	labels      []int32
	numFeatures int
	batchSize   int

	shuffle bool
	rng     *rand.Rand
	order   []int
	pos     int
}

func NewLoader[B tensor.Backend](
	backend B,
	features []float32,
	labels []int32,
	numFeatures, batchSize int,
	shuffle bool,
	seed uint64,
) (*Loader[B], error) {
	if numFeatures <= 0 {
		return nil, fmt.Errorf("data: invalid feature count %d", numFeatures)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("data: invalid batch size %d", batchSize)
	}
	if len(features)%numFeatures != 0 {
		return nil, fmt.Errorf("data: %d feature values not divisible by %d features per example",
			len(features), numFeatures)
	}
	n := len(features) / numFeatures
	if n != len(labels) {
		return nil, fmt.Errorf("data: %d examples but %d labels", n, len(labels))
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	l := &Loader[B]{
		backend:     backend,
		features:    features,
		labels:      labels,
		numFeatures: numFeatures,
		batchSize:   batchSize,
		shuffle:     shuffle,
		order:       order,
	}
	if shuffle {
		l.rng = rand.New(rand.NewSource(seed))
	}
	l.Reset()
	return l, nil
}

// Len returns the number of examples in the dataset.
func (l *Loader[B]) Len() int { return len(l.order) }

// NumFeatures returns the per-example feature count.
func (l *Loader[B]) NumFeatures() int { return l.numFeatures }

// Reset rewinds to the start of a pass, reshuffling if enabled.
func (l *Loader[B]) Reset() {
	l.pos = 0
	if l.shuffle {
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
}

// Next returns the next batch, or ok = false when the pass is done.
func (l *Loader[B]) Next() (x *tensor.Tensor[float32, B], y *tensor.Tensor[int32, B], ok bool) {
	if l.pos >= len(l.order) {
		return nil, nil, false
	}
	end := l.pos + l.batchSize
	if end > len(l.order) {
		end = len(l.order)
	}
	batch := l.order[l.pos:end]
	l.pos = end

	xData := make([]float32, len(batch)*l.numFeatures)
	yData := make([]int32, len(batch))
	for i, idx := range batch {
		copy(xData[i*l.numFeatures:], l.features[idx*l.numFeatures:(idx+1)*l.numFeatures])
		yData[i] = l.labels[idx]
	}

	x, err := tensor.FromSlice(xData, tensor.Shape{len(batch), l.numFeatures}, l.backend)
	if err != nil {
		panic(fmt.Sprintf("data: %v", err))
	}
	y, err = tensor.FromSlice(yData, tensor.Shape{len(batch)}, l.backend)
	if err != nil {
		panic(fmt.Sprintf("data: %v", err))
	}
	return x, y, true
}
