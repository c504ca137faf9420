// Package cpu implements the sequential multi-core backend: the four spatial
// kernels driven over the output range by an optional worker fan-out.
//
// Pull and Grad need no synchronization because workers own disjoint output
// positions. Push and Count accumulate into shared source cells, so each
// worker scatters into a private buffer and the buffers are reduced after the
// join.
package cpu

import (
	"fmt"

	"github.com/born-ml/spatial/internal/parallel"
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// CPUBackend implements spatial.Backend on the host.
type CPUBackend struct {
	par parallel.Config
}

// New creates a CPU backend with worker fan-out sized to the machine.
func New() *CPUBackend {
	return &CPUBackend{par: parallel.DefaultConfig()}
}

// NewSequential creates a CPU backend that runs strictly single-threaded.
// Useful as a reference for accumulation-order comparisons.
func NewSequential() *CPUBackend {
	return &CPUBackend{par: parallel.Sequential()}
}

// SetParallelism overrides the worker configuration.
func (c *CPUBackend) SetParallelism(cfg parallel.Config) {
	c.par = cfg
}

// Name returns the backend name.
func (c *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (c *CPUBackend) Device() tensor.Device {
	return tensor.CPU
}

// checkDevice rejects buffers bound to another execution context.
func (c *CPUBackend) checkDevice(bufs ...*tensor.RawTensor) error {
	for _, b := range bufs {
		if b.Device() != tensor.CPU {
			return fmt.Errorf("%w: %s buffer handed to the CPU backend",
				spatial.ErrDeviceMismatch, b.Device())
		}
	}
	return nil
}

// positionOffset maps a linear output position to a buffer offset through the
// buffer's strides, decomposing the position over dims in row-major order.
// This is the only place the kernels assume anything about layout, and it
// assumes exactly what the strides say.
func positionOffset(v int, dims, strides []int) int {
	off := 0
	for d := len(dims) - 1; d >= 0; d-- {
		off += (v % dims[d]) * strides[d]
		v /= dims[d]
	}
	return off
}
