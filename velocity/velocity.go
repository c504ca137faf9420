// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package velocity integrates stationary velocity fields into dense
// displacement fields by scaling and squaring.
//
// Velocity and displacement fields are channel-first [D, S1..SD], one
// channel per spatial axis.
//
// Example:
//
//	disp, err := velocity.Exponentiate(cpu.New(), vel, velocity.DefaultSteps)
package velocity

import (
	internalvelocity "github.com/born-ml/spatial/internal/velocity"
	"github.com/born-ml/spatial/spatial"
	"github.com/born-ml/spatial/tensor"
)

// DefaultSteps is the squaring step count used when the caller has no
// opinion: the field is first scaled by 1/2^8.
const DefaultSteps = internalvelocity.DefaultSteps

// Exponentiate integrates a stationary velocity field [D, S1..SD] into a
// displacement field of the same shape. The result is a diffeomorphic
// deformation for any smooth input field.
func Exponentiate(b spatial.Backend, vel *tensor.RawTensor, steps int) (*tensor.RawTensor, error) {
	return internalvelocity.Exponentiate(b, vel, steps)
}

// Compose chains two displacement fields: the result moves a point by v
// first, then by u from the landing position.
func Compose(b spatial.Backend, u, v *tensor.RawTensor) (*tensor.RawTensor, error) {
	return internalvelocity.Compose(b, u, v)
}
