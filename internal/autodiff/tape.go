// Package autodiff provides reverse-mode automatic differentiation as a
// decorator around any compute backend. Forward operations executed while
// the tape is recording are captured as nodes; Backward replays them in
// reverse to accumulate gradients.
package autodiff

import (
	"github.com/bayesnet-ml/bayesnet/internal/autodiff/ops"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// GradientTape records operations for later differentiation. It is not
// safe for concurrent use; a training loop owns its tape.
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

func NewGradientTape() *GradientTape {
	return &GradientTape{operations: make([]ops.Operation, 0, 64)}
}

func (t *GradientTape) Start()            { t.recording = true }
func (t *GradientTape) Stop()             { t.recording = false }
func (t *GradientTape) IsRecording() bool { return t.recording }

// Record appends an operation. No-op unless the tape is recording.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear drops all recorded operations, keeping the recording state.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

func (t *GradientTape) NumOperations() int {
	return len(t.operations)
}

// Backward computes gradients of target with respect to every tensor that
// participated in its computation. The seed gradient is a tensor of ones
// matching the target, so target is normally a scalar loss. The backend
// must be the undecorated one; the tape never records backward work.
func (t *GradientTape) Backward(target *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	grads[target] = ops.OnesLike(target)

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			// Not on any path to the target.
			continue
		}
		inputGrads := op.Backward(outGrad, backend)
		for j, input := range op.Inputs() {
			if g := inputGrads[j]; g != nil {
				if existing, ok := grads[input]; ok {
					grads[input] = backend.Add(existing, g)
				} else {
					grads[input] = g
				}
			}
		}
	}
	return grads
}
