package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/bayesnet-ml/bayesnet/internal/tensor"
)

// compileShader compiles WGSL into a ShaderModule, caching by name.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()
	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or builds one with
// an auto layout.
func (b *Backend) getOrCreatePipeline(name, code string) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	pipeline := b.device.CreateComputePipelineSimple(nil, b.compileShader(name, code), "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()
	return pipeline
}

// createStorageBuffer uploads data into a storage buffer via
// MappedAtCreation.
func (b *Backend) createStorageBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mapped := unsafe.Slice((*byte)(buffer.GetMappedRange(0, size)), size) //nolint:gosec // zero-copy view of the mapped range
	copy(mapped, data)
	buffer.Unmap()
	return buffer
}

// createResultBuffer allocates an uninitialized storage buffer the result
// can be written to and copied out of.
func (b *Backend) createResultBuffer(size uint64) *wgpu.Buffer {
	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
}

// createParamsBuffer packs up to four u32 values into a 16-byte-aligned
// uniform buffer. Uniform struct fields require 16-byte alignment.
func (b *Backend) createParamsBuffer(values ...uint32) *wgpu.Buffer {
	data := make([]byte, 16)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], v)
	}
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             16,
		MappedAtCreation: wgpu.True,
	})
	mapped := unsafe.Slice((*byte)(buffer.GetMappedRange(0, 16)), 16) //nolint:gosec // zero-copy view of the mapped range
	copy(mapped, data)
	buffer.Unmap()
	return buffer
}

// readBuffer copies a GPU buffer back to host memory through a staging
// buffer; storage buffers cannot be mapped directly.
func (b *Backend) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}
	mapped := unsafe.Slice((*byte)(staging.GetMappedRange(0, size)), size) //nolint:gosec // zero-copy view of the mapped range
	result := make([]byte, size)
	copy(result, mapped)
	staging.Unmap()
	return result, nil
}

// dispatch runs one compute pass over the bind group and submits it.
func (b *Backend) dispatch(pipeline *wgpu.ComputePipeline, bindGroup *wgpu.BindGroup, x, y uint32) {
	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(x, y, 1)
	pass.End()
	b.queue.Submit(encoder.Finish(nil))
}

// runBinaryOp executes an element-wise two-operand shader over equal-shape
// float32 tensors.
func (b *Backend) runBinaryOp(a, other *tensor.RawTensor, shaderName, shaderCode string) (*tensor.RawTensor, error) {
	numElements := a.NumElements()
	pipeline := b.getOrCreatePipeline(shaderName, shaderCode)

	bufferA := b.createStorageBuffer(a.Data())
	defer bufferA.Release()
	bufferOther := b.createStorageBuffer(other.Data())
	defer bufferOther.Release()

	resultSize := uint64(a.ByteSize()) //nolint:gosec // G115: ByteSize is non-negative
	bufferResult := b.createResultBuffer(resultSize)
	defer bufferResult.Release()
	bufferParams := b.createParamsBuffer(uint32(numElements)) //nolint:gosec // G115: element count is non-negative
	defer bufferParams.Release()

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferA, 0, resultSize),
		wgpu.BufferBindingEntry(1, bufferOther, 0, resultSize),
		wgpu.BufferBindingEntry(2, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	workgroups := uint32((numElements + workgroupSize - 1) / workgroupSize) //nolint:gosec // G115: non-negative
	b.dispatch(pipeline, bindGroup, workgroups, 1)

	return b.resultTensor(bufferResult, resultSize, a.Shape())
}

// runUnaryOp executes an element-wise single-operand shader over a
// float32 tensor.
func (b *Backend) runUnaryOp(input *tensor.RawTensor, shaderName, shaderCode string) (*tensor.RawTensor, error) {
	numElements := input.NumElements()
	pipeline := b.getOrCreatePipeline(shaderName, shaderCode)

	bufferInput := b.createStorageBuffer(input.Data())
	defer bufferInput.Release()

	resultSize := uint64(input.ByteSize()) //nolint:gosec // G115: ByteSize is non-negative
	bufferResult := b.createResultBuffer(resultSize)
	defer bufferResult.Release()
	bufferParams := b.createParamsBuffer(uint32(numElements)) //nolint:gosec // G115: element count is non-negative
	defer bufferParams.Release()

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferInput, 0, resultSize),
		wgpu.BufferBindingEntry(1, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(2, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	workgroups := uint32((numElements + workgroupSize - 1) / workgroupSize) //nolint:gosec // G115: non-negative
	b.dispatch(pipeline, bindGroup, workgroups, 1)

	return b.resultTensor(bufferResult, resultSize, input.Shape())
}

// runMatMul executes C = A @ B for 2D float32 matrices with one thread
// per output element in 16x16 workgroups.
func (b *Backend) runMatMul(a, other *tensor.RawTensor) (*tensor.RawTensor, error) {
	m := uint32(a.Shape()[0])     //nolint:gosec // G115: dims are non-negative
	k := uint32(a.Shape()[1])     //nolint:gosec // G115: dims are non-negative
	n := uint32(other.Shape()[1]) //nolint:gosec // G115: dims are non-negative

	pipeline := b.getOrCreatePipeline("matmul", matmulShader)

	bufferA := b.createStorageBuffer(a.Data())
	defer bufferA.Release()
	bufferOther := b.createStorageBuffer(other.Data())
	defer bufferOther.Release()

	resultSize := uint64(m) * uint64(n) * 4
	bufferResult := b.createResultBuffer(resultSize)
	defer bufferResult.Release()
	bufferParams := b.createParamsBuffer(m, k, n)
	defer bufferParams.Release()

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferA, 0, uint64(a.ByteSize())),         //nolint:gosec // G115
		wgpu.BufferBindingEntry(1, bufferOther, 0, uint64(other.ByteSize())), //nolint:gosec // G115
		wgpu.BufferBindingEntry(2, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, (n+15)/16, (m+15)/16)

	return b.resultTensor(bufferResult, resultSize, tensor.Shape{int(m), int(n)})
}

// runTranspose executes a 2D float32 transpose.
func (b *Backend) runTranspose(input *tensor.RawTensor) (*tensor.RawTensor, error) {
	rows := uint32(input.Shape()[0]) //nolint:gosec // G115: dims are non-negative
	cols := uint32(input.Shape()[1]) //nolint:gosec // G115: dims are non-negative

	pipeline := b.getOrCreatePipeline("transpose", transposeShader)

	bufferInput := b.createStorageBuffer(input.Data())
	defer bufferInput.Release()

	resultSize := uint64(input.ByteSize()) //nolint:gosec // G115: ByteSize is non-negative
	bufferResult := b.createResultBuffer(resultSize)
	defer bufferResult.Release()
	bufferParams := b.createParamsBuffer(rows, cols)
	defer bufferParams.Release()

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferInput, 0, resultSize),
		wgpu.BufferBindingEntry(1, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(2, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, (cols+15)/16, (rows+15)/16)

	return b.resultTensor(bufferResult, resultSize, tensor.Shape{int(cols), int(rows)})
}

// runSoftmax normalizes each row of a [batch, classes] float32 matrix,
// one thread per row.
func (b *Backend) runSoftmax(input *tensor.RawTensor) (*tensor.RawTensor, error) {
	batchSize := uint32(input.Shape()[0])  //nolint:gosec // G115: dims are non-negative
	numClasses := uint32(input.Shape()[1]) //nolint:gosec // G115: dims are non-negative

	pipeline := b.getOrCreatePipeline("softmax", softmaxShader)

	bufferInput := b.createStorageBuffer(input.Data())
	defer bufferInput.Release()

	resultSize := uint64(input.ByteSize()) //nolint:gosec // G115: ByteSize is non-negative
	bufferResult := b.createResultBuffer(resultSize)
	defer bufferResult.Release()
	bufferParams := b.createParamsBuffer(batchSize, numClasses)
	defer bufferParams.Release()

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferInput, 0, resultSize),
		wgpu.BufferBindingEntry(1, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(2, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, (batchSize+workgroupSize-1)/workgroupSize, 1)

	return b.resultTensor(bufferResult, resultSize, input.Shape())
}

// resultTensor reads a result buffer back and wraps it in a RawTensor.
func (b *Backend) resultTensor(buffer *wgpu.Buffer, size uint64, shape tensor.Shape) (*tensor.RawTensor, error) {
	data, err := b.readBuffer(buffer, size)
	if err != nil {
		return nil, err
	}
	result, err := tensor.NewRaw(shape.Clone(), tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	copy(result.Data(), data)
	return result, nil
}
