package spatial

import "errors"

// Error taxonomy. All three are detected eagerly, before any kernel launch;
// a failed call mutates no output. Floating-point overflow and NaN
// propagation from pathological inputs are deliberately not trapped.
var (
	// ErrConfiguration covers unsupported interpolation orders, unknown
	// boundary modes and mismatched buffer ranks or dtypes.
	ErrConfiguration = errors.New("spatial: invalid configuration")

	// ErrDeviceMismatch covers buffers living on incompatible execution
	// contexts, e.g. a CPU buffer handed to the WebGPU backend.
	ErrDeviceMismatch = errors.New("spatial: device mismatch")

	// ErrNumericEdgeCase covers configurations that would silently produce
	// NaN, e.g. a DCT1 boundary on an axis of size 1.
	ErrNumericEdgeCase = errors.New("spatial: numeric edge case")
)
