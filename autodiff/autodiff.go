// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff adds reverse-mode gradient tracking to any spatial
// backend using the decorator pattern.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	warped, err := backend.Pull(src, grid, opt)
//	// ... compute a loss gradient seed ...
//	grads, err := backend.Tape().Backward(seed, backend.Inner())
//	srcGrad, gridGrad := grads[src], grads[grid]
package autodiff

import (
	internalautodiff "github.com/born-ml/spatial/internal/autodiff"
	"github.com/born-ml/spatial/spatial"
)

// Backend wraps a spatial backend and records Pull, Push and Count calls on
// a gradient tape. It implements spatial.Backend itself.
type Backend[B spatial.Backend] = internalautodiff.AutodiffBackend[B]

// GradientTape records operations during the forward pass and replays them
// in reverse to accumulate input gradients.
type GradientTape = internalautodiff.GradientTape

// New creates an autodiff decorator around the given backend.
func New[B spatial.Backend](backend B) *Backend[B] {
	return internalautodiff.New(backend)
}
