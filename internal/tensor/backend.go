package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - internal/backend/cpu: pure Go
//   - internal/backend/webgpu: GPU offload for dense float32 kernels
//   - internal/autodiff: decorator adding gradient tracking to any backend
//
// The op set is closed over what variational training of a Bayesian
// classifier requires; there are deliberately no convolution, attention, or
// embedding ops here.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations (2D only).
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Scalar operations (element-wise with scalar).
	AddScalar(x *RawTensor, scalar any) *RawTensor
	SubScalar(x *RawTensor, scalar any) *RawTensor
	MulScalar(x *RawTensor, scalar any) *RawTensor
	DivScalar(x *RawTensor, scalar any) *RawTensor

	// Math operations (element-wise).
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Softplus(x *RawTensor) *RawTensor               // log(1 + exp(x)), stable form
	ReLU(x *RawTensor) *RawTensor
	Clamp(x *RawTensor, lo, hi float64) *RawTensor

	// Activation over a dimension.
	Softmax(x *RawTensor, dim int) *RawTensor

	// Indexing.
	Gather(x *RawTensor, dim int, index *RawTensor) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor  // total sum, scalar result
	Mean(x *RawTensor) *RawTensor // total mean, scalar result
	Argmax(x *RawTensor, dim int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
