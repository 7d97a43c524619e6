// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements [gpucore.Device] over the gogpu/wgpu HAL.
//
// Vertex buffers become hal buffers with vertex usage. Programs are compiled
// per stage, either straight from WGSL or through naga into SPIR-V, and
// render pipelines are created lazily for every combination of program,
// render state and vertex layout a frame asks for.
//
// WebGPU rasterizes point lists at one pixel, so the [Encoder] draws each
// point as an instanced six-vertex quad:
//
//	for each DrawCommand:
//	    pipeline  <- (program, render state, buffer layouts)
//	    group(0)  <- per-draw uniforms (model-view, projection, eye, viewport)
//	    Draw(6, command.Count, 0, command.First)
//
// # Sharing a device
//
// Hosts that already own a device pass it through [NewFromProvider]. The
// provider must expose HalDevice() and HalQueue(), the same contract gg's GPU
// accelerator uses.
//
// # Picking
//
// The device embeds a [gpucore.PickRegistry]. [Device.Pick] maps a pixel
// read back from the pick pass to the registered object.
package wgpu
