package optim

import (
	"fmt"
	"math"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Adam implements the Adam optimizer with bias-corrected first and second
// moment estimates.
type Adam struct {
	params       []*tensor.RawTensor
	lr           float64
	beta1, beta2 float64
	eps          float64
	step         int
	m, v         map[*tensor.RawTensor][]float32
}

func NewAdam(params []*tensor.RawTensor, lr float64) (*Adam, error) {
	return NewAdamWithBetas(params, lr, 0.9, 0.999, 1e-8)
}

func NewAdamWithBetas(params []*tensor.RawTensor, lr, beta1, beta2, eps float64) (*Adam, error) {
	if lr <= 0 {
		return nil, fmt.Errorf("optim: learning rate %g, want > 0", lr)
	}
	if beta1 < 0 || beta1 >= 1 || beta2 < 0 || beta2 >= 1 {
		return nil, fmt.Errorf("optim: betas (%g, %g) outside [0, 1)", beta1, beta2)
	}
	if eps <= 0 {
		return nil, fmt.Errorf("optim: epsilon %g, want > 0", eps)
	}
	return &Adam{
		params: params,
		lr:     lr,
		beta1:  beta1,
		beta2:  beta2,
		eps:    eps,
		m:      make(map[*tensor.RawTensor][]float32),
		v:      make(map[*tensor.RawTensor][]float32),
	}, nil
}

func (a *Adam) LearningRate() float64 { return a.lr }

func (a *Adam) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) error {
	a.step++
	c1 := 1 - math.Pow(a.beta1, float64(a.step))
	c2 := 1 - math.Pow(a.beta2, float64(a.step))

	for _, p := range a.params {
		g, err := gradFor(grads, p)
		if err != nil {
			return err
		}
		if g == nil {
			continue
		}

		data := p.AsFloat32()
		m, ok := a.m[p]
		if !ok {
			m = make([]float32, len(data))
			a.m[p] = m
			a.v[p] = make([]float32, len(data))
		}
		v := a.v[p]

		b1, b2 := float32(a.beta1), float32(a.beta2)
		for i := range data {
			m[i] = b1*m[i] + (1-b1)*g[i]
			v[i] = b2*v[i] + (1-b2)*g[i]*g[i]
			mHat := float64(m[i]) / c1
			vHat := float64(v[i]) / c2
			data[i] -= float32(a.lr * mHat / (math.Sqrt(vHat) + a.eps))
		}
	}
	return nil
}
