package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
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

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (b *Backend) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	// Auto layout (nil layout), entry point "main"
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()

	return pipeline
}

// createBuffer creates a GPU buffer and uploads initial data.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// createUniformBuffer creates a uniform buffer with proper alignment.
// Uniform buffers require 16-byte alignment for struct fields.
func (b *Backend) createUniformBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	alignedSize := (size + 15) &^ 15 // Round up to 16-byte boundary

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             alignedSize,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, alignedSize)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), alignedSize)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// readBuffer reads data back from a GPU buffer to CPU memory.
// Uses a staging buffer since storage buffers can't be mapped directly.
func (b *Backend) readBuffer(srcBuffer *wgpu.Buffer, size uint64) ([]byte, error) {
	stagingBuffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer stagingBuffer.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(srcBuffer, 0, stagingBuffer, 0, size)
	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	err := stagingBuffer.MapAsync(b.device, wgpu.MapModeRead, 0, size)
	if err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}

	mappedPtr := stagingBuffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)

	stagingBuffer.Unmap()

	return result, nil
}

// kernelParams is the uniform block shared by all four spatial shaders,
// packed as five vec4 slots (80 bytes).
type kernelParams struct {
	dim         uint32
	channels    uint32
	nvox        uint32
	extrapolate uint32
	sizes       [4]int32 // target spatial sizes
	strides     [4]int32 // target spatial strides, w = channel stride
	orders      [4]uint32
	bounds      [4]uint32
}

func (p *kernelParams) encode() []byte {
	buf := make([]byte, 80)
	binary.LittleEndian.PutUint32(buf[0:4], p.dim)
	binary.LittleEndian.PutUint32(buf[4:8], p.channels)
	binary.LittleEndian.PutUint32(buf[8:12], p.nvox)
	binary.LittleEndian.PutUint32(buf[12:16], p.extrapolate)
	for i := 0; i < 4; i++ {
		//nolint:gosec // G115: two's-complement round trip for i32 fields
		binary.LittleEndian.PutUint32(buf[16+i*4:], uint32(p.sizes[i]))
		//nolint:gosec // G115: two's-complement round trip for i32 fields
		binary.LittleEndian.PutUint32(buf[32+i*4:], uint32(p.strides[i]))
		binary.LittleEndian.PutUint32(buf[48+i*4:], p.orders[i])
		binary.LittleEndian.PutUint32(buf[64+i*4:], p.bounds[i])
	}
	return buf
}

// splitWorkgroups folds a 1-D workgroup count into two dispatch dimensions.
// Large outputs exceed the 65535 per-dimension limit; shaders linearize the
// pair back with the num_workgroups builtin.
func splitWorkgroups(workgroups uint32) (x, y uint32) {
	x, y = workgroups, 1
	if x > maxWorkgroupsPerDim {
		y = (workgroups + maxWorkgroupsPerDim - 1) / maxWorkgroupsPerDim
		x = (workgroups + y - 1) / y
	}
	return x, y
}

// runKernel executes one spatial shader: inputs are uploaded as read-only
// storage buffers, the result buffer is zero-initialized by buffer creation,
// and one workgroup thread handles one grid position.
func (b *Backend) runKernel(shaderName, shaderCode string, inputs [][]byte, resultSize uint64, params *kernelParams) ([]byte, error) {
	shader := b.compileShader(shaderName, shaderCode)
	pipeline := b.getOrCreatePipeline(shaderName, shader)

	entries := make([]wgpu.BindGroupEntry, 0, len(inputs)+2)
	binding := uint32(0)

	inputBuffers := make([]*wgpu.Buffer, 0, len(inputs))
	for _, data := range inputs {
		buf := b.createBuffer(data, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
		inputBuffers = append(inputBuffers, buf)
		entries = append(entries, wgpu.BufferBindingEntry(binding, buf, 0, uint64(len(data))))
		binding++
	}
	defer func() {
		for _, buf := range inputBuffers {
			buf.Release()
		}
	}()

	bufferResult := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  resultSize,
	})
	defer bufferResult.Release()
	entries = append(entries, wgpu.BufferBindingEntry(binding, bufferResult, 0, resultSize))
	binding++

	bufferParams := b.createUniformBuffer(params.encode())
	defer bufferParams.Release()
	entries = append(entries, wgpu.BufferBindingEntry(binding, bufferParams, 0, 80))

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, entries)
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)

	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)

	workgroupsX, workgroupsY := splitWorkgroups((params.nvox + workgroupSize - 1) / workgroupSize)
	computePass.DispatchWorkgroups(workgroupsX, workgroupsY, 1)
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	return b.readBuffer(bufferResult, resultSize)
}
