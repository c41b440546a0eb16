package optim

import (
	"fmt"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// SGD is stochastic gradient descent with optional momentum.
type SGD struct {
	params   []*tensor.RawTensor
	lr       float64
	momentum float64
	velocity map[*tensor.RawTensor][]float32
}

func NewSGD(params []*tensor.RawTensor, lr, momentum float64) (*SGD, error) {
	if lr <= 0 {
		return nil, fmt.Errorf("optim: learning rate %g, want > 0", lr)
	}
	if momentum < 0 || momentum >= 1 {
		return nil, fmt.Errorf("optim: momentum %g outside [0, 1)", momentum)
	}
	return &SGD{
		params:   params,
		lr:       lr,
		momentum: momentum,
		velocity: make(map[*tensor.RawTensor][]float32),
	}, nil
}

func (s *SGD) LearningRate() float64 { return s.lr }

func (s *SGD) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) error {
	for _, p := range s.params {
		g, err := gradFor(grads, p)
		if err != nil {
			return err
		}
		if g == nil {
			continue
		}

		data := p.AsFloat32()
		if s.momentum == 0 {
			for i := range data {
				data[i] -= float32(s.lr) * g[i]
			}
			continue
		}

		v, ok := s.velocity[p]
		if !ok {
			v = make([]float32, len(data))
			s.velocity[p] = v
		}
		m := float32(s.momentum)
		for i := range data {
			v[i] = m*v[i] + g[i]
			data[i] -= float32(s.lr) * v[i]
		}
	}
	return nil
}
