package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/bayesnet-ml/bayesnet/internal/backend/cpu"
	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// Backend runs float32 tensor operations on the GPU through WebGPU
// compute shaders. Operations with no shader (shape manipulation,
// reductions, gathers, scalar ops) and non-float32 inputs fall through to
// an embedded CPU backend, so the full op set is always available.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	adapterInfo *wgpu.AdapterInfoGo

	host *cpu.Backend
}

// New initializes the WebGPU backend, returning an error when no adapter
// or native library is available. Callers are expected to fall back to
// the CPU backend on error.
func New() (backend *Backend, err error) {
	// The bindings panic when wgpu_native cannot be loaded.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return nil, fmt.Errorf("webgpu: failed to create instance: %w", instanceErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}
	adapterInfo, _ := adapter.GetInfo()

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Backend{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		adapterInfo: adapterInfo,
		host:        cpu.New(),
	}, nil
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// Release frees all GPU resources. The backend must not be used after.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil
	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func (b *Backend) Name() string {
	if b.adapterInfo != nil {
		return fmt.Sprintf("WebGPU (%s %s)", b.adapterInfo.Device, b.adapterInfo.Vendor)
	}
	return "WebGPU"
}

func (b *Backend) Device() tensor.Device { return tensor.WebGPU }

// gpuEligibleBinary reports whether a two-operand op can run as a shader:
// float32 only, identical shapes (broadcasting stays on the host).
func gpuEligibleBinary(a, other *tensor.RawTensor) bool {
	return a.DType() == tensor.Float32 &&
		other.DType() == tensor.Float32 &&
		a.Shape().Equal(other.Shape())
}

func (b *Backend) binaryOp(a, other *tensor.RawTensor, name, code string, hostOp func(a, b *tensor.RawTensor) *tensor.RawTensor) *tensor.RawTensor {
	if !gpuEligibleBinary(a, other) {
		return hostOp(a, other)
	}
	result, err := b.runBinaryOp(a, other, name, code)
	if err != nil {
		panic("webgpu: " + name + ": " + err.Error())
	}
	return result
}

func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(a, other, "add", addShader, b.host.Add)
}

func (b *Backend) Sub(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(a, other, "sub", subShader, b.host.Sub)
}

func (b *Backend) Mul(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(a, other, "mul", mulShader, b.host.Mul)
}

func (b *Backend) Div(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(a, other, "div", divShader, b.host.Div)
}

func (b *Backend) MatMul(a, other *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != tensor.Float32 || other.DType() != tensor.Float32 ||
		len(a.Shape()) != 2 || len(other.Shape()) != 2 ||
		a.Shape()[1] != other.Shape()[0] {
		return b.host.MatMul(a, other)
	}
	result, err := b.runMatMul(a, other)
	if err != nil {
		panic("webgpu: matmul: " + err.Error())
	}
	return result
}

func (b *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	swap2D := len(axes) == 0 || (len(axes) == 2 && axes[0] == 1 && axes[1] == 0)
	if t.DType() != tensor.Float32 || len(t.Shape()) != 2 || !swap2D {
		return b.host.Transpose(t, axes...)
	}
	result, err := b.runTranspose(t)
	if err != nil {
		panic("webgpu: transpose: " + err.Error())
	}
	return result
}

func (b *Backend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	if dim < 0 {
		dim = len(x.Shape()) + dim
	}
	if x.DType() != tensor.Float32 || len(x.Shape()) != 2 || dim != 1 {
		return b.host.Softmax(x, dim)
	}
	result, err := b.runSoftmax(x)
	if err != nil {
		panic("webgpu: softmax: " + err.Error())
	}
	return result
}

func (b *Backend) unaryOp(x *tensor.RawTensor, name, code string, hostOp func(*tensor.RawTensor) *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		return hostOp(x)
	}
	result, err := b.runUnaryOp(x, name, code)
	if err != nil {
		panic("webgpu: " + name + ": " + err.Error())
	}
	return result
}

func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryOp(x, "exp", expShader, b.host.Exp)
}

func (b *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryOp(x, "log", logShader, b.host.Log)
}

func (b *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryOp(x, "sqrt", sqrtShader, b.host.Sqrt)
}

func (b *Backend) Softplus(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryOp(x, "softplus", softplusShader, b.host.Softplus)
}

func (b *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryOp(x, "relu", reluShader, b.host.ReLU)
}

// Host-delegated operations. These are either pure data movement or
// cheap reductions where a GPU round trip costs more than it saves.

func (b *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	return b.host.Reshape(t, newShape)
}

func (b *Backend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.host.AddScalar(x, scalar)
}

func (b *Backend) SubScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.host.SubScalar(x, scalar)
}

func (b *Backend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.host.MulScalar(x, scalar)
}

func (b *Backend) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.host.DivScalar(x, scalar)
}

func (b *Backend) Clamp(x *tensor.RawTensor, lo, hi float64) *tensor.RawTensor {
	return b.host.Clamp(x, lo, hi)
}

func (b *Backend) Gather(x *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	return b.host.Gather(x, dim, index)
}

func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return b.host.Sum(x)
}

func (b *Backend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	return b.host.Mean(x)
}

func (b *Backend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.host.Argmax(x, dim)
}
