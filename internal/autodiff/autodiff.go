// Package autodiff implements automatic differentiation for the resampling
// kernels using the decorator pattern.
//
// AutodiffBackend wraps any Backend implementation (CPU, WebGPU) and records
// Pull, Push and Count invocations on a GradientTape. The backward pass
// derives input gradients from the kernel adjoints: Pull's source gradient
// is Push, Push's value gradient is Pull, and coordinate gradients come from
// Grad contracted with the flowing gradient.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	out, _ := backend.Pull(src, grid, opt)
//	grads, _ := backend.Tape().Backward(seed, backend.Inner())
//	srcGrad := grads[src]
package autodiff

import (
	"github.com/born-ml/spatial/internal/autodiff/ops"
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds gradient recording.
// It implements spatial.Backend itself, so recorded and unrecorded engines
// are interchangeable at call sites.
type AutodiffBackend[B spatial.Backend] struct {
	inner B
	tape  *GradientTape
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B spatial.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control: starting and stopping
// recording, clearing between iterations, running the backward pass.
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// Pull samples source at grid positions and records the operation.
func (b *AutodiffBackend[B]) Pull(src, grid *tensor.RawTensor, opt spatial.Options) (*tensor.RawTensor, error) {
	out, err := b.inner.Pull(src, grid, opt)
	if err != nil {
		return nil, err
	}
	b.tape.Record(ops.NewPullOp(src, grid, out, opt))
	return out, nil
}

// Push scatter-accumulates outGrad into a source-shaped buffer and records
// the operation.
func (b *AutodiffBackend[B]) Push(outGrad, grid *tensor.RawTensor, srcSpatial tensor.Shape, opt spatial.Options) (*tensor.RawTensor, error) {
	out, err := b.inner.Push(outGrad, grid, srcSpatial, opt)
	if err != nil {
		return nil, err
	}
	b.tape.Record(ops.NewPushOp(outGrad, grid, out, opt))
	return out, nil
}

// Count accumulates interpolation weights and records the operation.
// Count carries no data gradient; recording it keeps the tape a faithful
// trace of the forward pass.
func (b *AutodiffBackend[B]) Count(grid *tensor.RawTensor, srcSpatial tensor.Shape, opt spatial.Options) (*tensor.RawTensor, error) {
	out, err := b.inner.Count(grid, srcSpatial, opt)
	if err != nil {
		return nil, err
	}
	b.tape.Record(ops.NewCountOp(grid, out, opt))
	return out, nil
}

// Grad computes coordinate derivatives. It is itself a derivative, so it is
// not recorded: second derivatives are out of scope.
func (b *AutodiffBackend[B]) Grad(src, grid *tensor.RawTensor, opt spatial.Options) (*tensor.RawTensor, error) {
	return b.inner.Grad(src, grid, opt)
}
