package autodiff

import (
	"fmt"

	"github.com/born-ml/spatial/internal/autodiff/ops"
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// GradientTape records operations during the forward pass and computes
// gradients during the backward pass using reverse-mode automatic
// differentiation.
//
// Usage:
//
//	tape := NewGradientTape()
//	tape.StartRecording()
//	// ... perform operations ...
//	gradients, err := tape.Backward(outputGrad, backend)
type GradientTape struct {
	operations []ops.Operation // Recorded operations (in execution order)
	recording  bool            // Whether tape is currently recording
}

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 16),
		recording:  false,
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record adds an operation to the tape.
// Only records if the tape is currently recording.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear resets the tape, removing all recorded operations.
// Recording state is preserved.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Backward computes gradients for all inputs by walking the tape in reverse.
//
// outputGrad seeds the gradient of the last recorded operation's output.
// Gradients accumulate when the same buffer feeds multiple operations.
// Returns a map from input buffer to its accumulated gradient.
func (t *GradientTape) Backward(outputGrad *tensor.RawTensor, backend spatial.Backend) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	if len(t.operations) == 0 {
		return grads, nil
	}

	// The gradient helpers address backing arrays flat, so the caller's seed
	// must be contiguous and shaped like the output it seeds.
	last := t.operations[len(t.operations)-1].Output()
	if !outputGrad.IsContiguous() {
		return nil, fmt.Errorf("%w: gradient seed must be contiguous", spatial.ErrConfiguration)
	}
	if !outputGrad.Shape().Equal(last.Shape()) {
		return nil, fmt.Errorf("%w: gradient seed shape %v, last recorded output %v",
			spatial.ErrConfiguration, outputGrad.Shape(), last.Shape())
	}

	// Stop recording during backward so gradient kernels don't land on the tape.
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()

	lastOp := t.operations[len(t.operations)-1]
	grads[lastOp.Output()] = outputGrad

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		opGrad, hasGrad := grads[op.Output()]
		if !hasGrad {
			continue
		}
		inputGrads, err := op.Backward(opGrad, backend)
		if err != nil {
			return nil, err
		}
		if err := accumulate(op.Inputs(), inputGrads, grads); err != nil {
			return nil, err
		}
	}

	return grads, nil
}

// accumulate folds per-operation input gradients into the running map,
// summing when a buffer already carries one.
func accumulate(inputs, inputGrads []*tensor.RawTensor, grads map[*tensor.RawTensor]*tensor.RawTensor) error {
	for j, input := range inputs {
		if j >= len(inputGrads) || inputGrads[j] == nil {
			continue
		}
		existing, ok := grads[input]
		if !ok {
			grads[input] = inputGrads[j]
			continue
		}
		// Sum into a copy: the existing entry may alias the caller's seed.
		sum := existing.Clone()
		if err := addInto(sum, inputGrads[j]); err != nil {
			return err
		}
		grads[input] = sum
	}
	return nil
}

// addInto accumulates src into dst element-wise. Both sides are gradients of
// the same buffer, so shapes and dtypes already agree.
func addInto(dst, src *tensor.RawTensor) error {
	switch dst.DType() {
	case tensor.Float32:
		d, s := dst.AsFloat32(), src.AsFloat32()
		for i := range d {
			d[i] += s[i]
		}
	case tensor.Float64:
		d, s := dst.AsFloat64(), src.AsFloat64()
		for i := range d {
			d[i] += s[i]
		}
	default:
		return fmt.Errorf("%w: gradient dtype %s", spatial.ErrConfiguration, dst.DType())
	}
	return nil
}
