package ops

import (
	"fmt"

	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// contractChannels reduces a coordinate-gradient field [C, O1..OE, D] against
// per-channel weights [C, O1..OE] into a grid-shaped gradient [O1..OE, D]:
//
//	out[v, d] = Σ_c weights[c, v] * field[c, v, d]
//
// Both sides are addressed flat; the field is always a freshly allocated
// kernel output, but the weights can be a recorded forward input.
func contractChannels(weights, field *tensor.RawTensor, gridShape tensor.Shape) (*tensor.RawTensor, error) {
	if !weights.IsContiguous() {
		return nil, fmt.Errorf("%w: channel contraction needs a contiguous buffer", spatial.ErrConfiguration)
	}
	out, err := tensor.NewRaw(gridShape, weights.DType(), weights.Device())
	if err != nil {
		return nil, err
	}

	dim := gridShape[len(gridShape)-1]
	channels := weights.Shape()[0]
	nvox := weights.NumElements() / channels

	switch weights.DType() {
	case tensor.Float32:
		contract(weights.AsFloat32(), field.AsFloat32(), out.AsFloat32(), channels, nvox, dim)
	case tensor.Float64:
		contract(weights.AsFloat64(), field.AsFloat64(), out.AsFloat64(), channels, nvox, dim)
	default:
		return nil, spatial.ErrConfiguration
	}
	return out, nil
}

func contract[T tensor.DType](w, f, out []T, channels, nvox, dim int) {
	for c := 0; c < channels; c++ {
		for v := 0; v < nvox; v++ {
			wv := w[c*nvox+v]
			for d := 0; d < dim; d++ {
				out[v*dim+d] += wv * f[(c*nvox+v)*dim+d]
			}
		}
	}
}
