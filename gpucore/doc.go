// Package gpucore provides the GPU abstractions shared by the point
// collection, the shader cache and the rendering backends.
//
// This package defines the [Device] interface, which abstracts over the
// backend that owns the actual GPU objects. The collection and the shader
// cache only ever see opaque IDs ([BufferID], [ProgramID]); a backend such as
// backend/wgpu translates them into hal.Buffer and hal.RenderPipeline
// handles.
//
//	         +--------------+     +--------------+
//	         |    points    |     | shadercache  |
//	         +------+-------+     +------+-------+
//	                |                    |
//	                +---------+----------+
//	                          |
//	                 +--------v--------+
//	                 | gpucore.Device  |
//	                 +--------+--------+
//	                          |
//	                 +--------v--------+
//	                 |  backend/wgpu   |
//	                 |  (hal.Device)   |
//	                 +-----------------+
//
// # Resource Management
//
// Buffers and programs are created via Create* methods and must be
// explicitly destroyed. Destroying an unknown or already destroyed ID is a
// no-op, so callers may release resources without tracking backend state.
//
// # Render States
//
// A [RenderState] is a comparable value describing depth and blending
// configuration. Backends use it as part of their pipeline cache key, so two
// draws with equal render states share one pipeline.
//
// # Picking
//
// [PickRegistry] hands out pick IDs whose RGBA encoding is written into the
// pick pass. Backends embed a registry to implement [Device.CreatePickID].
package gpucore
