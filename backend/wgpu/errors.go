// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import "errors"

var (
	// ErrNoHAL is returned by NewFromProvider when the provider does not
	// expose hal.Device and hal.Queue.
	ErrNoHAL = errors.New("wgpu: provider does not expose HAL device and queue")

	// ErrDestroyed is returned by operations on a destroyed Device.
	ErrDestroyed = errors.New("wgpu: device destroyed")

	// ErrOutOfRange is returned when a write exceeds the buffer size.
	ErrOutOfRange = errors.New("wgpu: write out of buffer range")

	// ErrInvalidConfig is returned for backend configurations that cannot
	// be used.
	ErrInvalidConfig = errors.New("wgpu: invalid config")
)
