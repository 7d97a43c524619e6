// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/points/gpucore"
)

// Device implements gpucore.Device on a hal.Device and hal.Queue.
//
// The HAL device is borrowed: Destroy releases every buffer, shader module
// and pipeline created through Device, but never the HAL device itself.
type Device struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue
	cfg    Config

	nextID   uint64
	buffers  map[gpucore.BufferID]*buffer
	programs map[gpucore.ProgramID]*program

	// Shared by every pipeline: one uniform buffer at group 0, binding 0.
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout

	picks     gpucore.PickRegistry
	destroyed bool
}

type buffer struct {
	raw   hal.Buffer
	size  uint64
	usage gpucore.BufferUsage
}

type program struct {
	label     string
	vertex    hal.ShaderModule
	fragment  hal.ShaderModule
	locations map[string]uint32
	pipelines map[pipelineKey]hal.RenderPipeline
}

type pipelineKey struct {
	state  gpucore.RenderState
	layout string
}

// Stats reports the live resources of a Device.
type Stats struct {
	Buffers   int
	Programs  int
	Pipelines int
	PickIDs   int
}

var _ gpucore.Device = (*Device)(nil)

// New wraps a HAL device and queue. The caller keeps ownership of both.
func New(device hal.Device, queue hal.Queue, cfg Config) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNoHAL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Device{
		device:   device,
		queue:    queue,
		cfg:      cfg,
		buffers:  make(map[gpucore.BufferID]*buffer),
		programs: make(map[gpucore.ProgramID]*program),
	}, nil
}

// NewFromProvider uses the device of a host that already owns one, such as
// a gogpu window. The provider must also implement HalDevice() any and
// HalQueue() any. A zero cfg.ColorFormat takes the provider's surface
// format.
func NewFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHAL, hp.HalQueue())
	}
	if cfg.ColorFormat == 0 {
		cfg.ColorFormat = Format(provider.SurfaceFormat())
	}

	d, err := New(device, queue, cfg)
	if err != nil {
		return nil, err
	}
	slogger().Debug("wgpu: using provider device", "color_format", cfg.ColorFormat)
	return d, nil
}

// Config returns the configuration the device was created with.
func (d *Device) Config() Config { return d.cfg }

// MaximumPointSize implements gpucore.Device.
func (d *Device) MaximumPointSize() float32 { return d.cfg.MaximumPointSize }

// MaxVerticesPerDraw implements gpucore.Device.
func (d *Device) MaxVerticesPerDraw() int { return d.cfg.MaxVerticesPerDraw }

// CreateBuffer implements gpucore.Device. The size is rounded up to the
// four byte copy alignment.
func (d *Device) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create buffer: size %d", size)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return gpucore.InvalidID, ErrDestroyed
	}

	aligned := (uint64(size) + 3) &^ 3
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "points_vertex_" + usage.String(),
		Size:  aligned,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create buffer: %w", err)
	}

	d.nextID++
	id := gpucore.BufferID(d.nextID)
	d.buffers[id] = &buffer{raw: raw, size: aligned, usage: usage}
	return id, nil
}

// WriteBuffer implements gpucore.Device.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDestroyed
	}

	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("wgpu: write buffer %d: %w", id, gpucore.ErrUnknownResource)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("%w: %d bytes at %d, size %d", ErrOutOfRange, len(data), offset, b.size)
	}
	if len(data) == 0 {
		return nil
	}
	d.queue.WriteBuffer(b.raw, offset, data)
	return nil
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.buffers[id]
	if !ok {
		return
	}
	delete(d.buffers, id)
	d.device.DestroyBuffer(b.raw)
}

// CreateProgram implements gpucore.Device. Each stage becomes its own shader
// module; pipelines are created on first draw.
func (d *Device) CreateProgram(desc *gpucore.ProgramDesc) (gpucore.ProgramID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create program: nil descriptor")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return gpucore.InvalidID, ErrDestroyed
	}

	label := desc.Label
	if label == "" {
		label = "points_program"
	}

	vertex, err := d.createModule(label+"_vs", desc.VertexSource)
	if err != nil {
		return gpucore.InvalidID, err
	}
	fragment, err := d.createModule(label+"_fs", desc.FragmentSource)
	if err != nil {
		d.device.DestroyShaderModule(vertex)
		return gpucore.InvalidID, err
	}

	locations := make(map[string]uint32, len(desc.AttributeLocations))
	for name, loc := range desc.AttributeLocations {
		locations[name] = loc
	}

	d.nextID++
	id := gpucore.ProgramID(d.nextID)
	d.programs[id] = &program{
		label:     label,
		vertex:    vertex,
		fragment:  fragment,
		locations: locations,
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
	slogger().Debug("wgpu: created program", "label", label, "format", d.cfg.ShaderFormat)
	return id, nil
}

// DestroyProgram implements gpucore.Device. Pipelines created for the
// program are destroyed with it.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.programs[id]
	if !ok {
		return
	}
	delete(d.programs, id)
	d.destroyProgram(p)
}

// CreatePickID implements gpucore.Device.
func (d *Device) CreatePickID(object any) gpucore.PickID { return d.picks.Create(object) }

// ReleasePickID implements gpucore.Device.
func (d *Device) ReleasePickID(key uint32) { d.picks.Release(key) }

// Pick returns the object whose pick color is the given pixel of the pick
// pass. The cleared background (all zero) picks nothing.
func (d *Device) Pick(r, g, b, a uint8) (any, bool) {
	key := gpucore.PickKey(r, g, b, a)
	if key == 0 {
		return nil, false
	}
	return d.picks.Object(key)
}

// Stats returns the live resource counts.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Stats{
		Buffers:  len(d.buffers),
		Programs: len(d.programs),
		PickIDs:  d.picks.Len(),
	}
	for _, p := range d.programs {
		s.Pipelines += len(p.pipelines)
	}
	return s
}

// Destroy releases every resource created through d. It is safe to call
// more than once; later calls to Create* fail with ErrDestroyed.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.destroyed = true

	for id, p := range d.programs {
		d.destroyProgram(p)
		delete(d.programs, id)
	}
	for id, b := range d.buffers {
		d.device.DestroyBuffer(b.raw)
		delete(d.buffers, id)
	}
	if d.pipeLayout != nil {
		d.device.DestroyPipelineLayout(d.pipeLayout)
		d.pipeLayout = nil
	}
	if d.uniformLayout != nil {
		d.device.DestroyBindGroupLayout(d.uniformLayout)
		d.uniformLayout = nil
	}
}

// IsDestroyed reports whether Destroy has been called.
func (d *Device) IsDestroyed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed
}

func (d *Device) destroyProgram(p *program) {
	for key, pipeline := range p.pipelines {
		d.device.DestroyRenderPipeline(pipeline)
		delete(p.pipelines, key)
	}
	d.device.DestroyShaderModule(p.fragment)
	d.device.DestroyShaderModule(p.vertex)
}

// createModule creates a shader module for one stage.
func (d *Device) createModule(label, source string) (hal.ShaderModule, error) {
	if source == "" {
		return nil, fmt.Errorf("wgpu: %s: empty shader source", label)
	}

	src := hal.ShaderSource{WGSL: source}
	if d.cfg.ShaderFormat == ShaderFormatSPIRV {
		words, err := compileSPIRV(source)
		if err != nil {
			return nil, fmt.Errorf("wgpu: compile %s: %w", label, err)
		}
		src = hal.ShaderSource{SPIRV: words}
	}

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: src,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module %s: %w", label, err)
	}
	return module, nil
}

// compileSPIRV translates WGSL to little-endian SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// ensureLayouts creates the shared uniform and pipeline layouts.
func (d *Device) ensureLayouts() error {
	if d.pipeLayout != nil {
		return nil
	}

	if d.uniformLayout == nil {
		uniformLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label: "points_uniform_layout",
			Entries: []gputypes.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
					Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("wgpu: create uniform layout: %w", err)
		}
		d.uniformLayout = uniformLayout
	}

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "points_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{d.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	d.pipeLayout = pipeLayout
	return nil
}

// pipeline returns the pipeline drawing p with state from the given vertex
// buffers, creating it on first use. d.mu must be held.
func (d *Device) pipeline(p *program, state gpucore.RenderState, layouts []gpucore.VertexBufferLayout) (hal.RenderPipeline, error) {
	key := pipelineKey{state: state, layout: layoutSignature(layouts)}
	if pipeline, ok := p.pipelines[key]; ok {
		return pipeline, nil
	}
	if err := d.ensureLayouts(); err != nil {
		return nil, err
	}

	target := gputypes.ColorTargetState{
		Format:    gputypes.TextureFormat(d.cfg.ColorFormat),
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	if state.Blending {
		blend := state.Blend
		target.Blend = &blend
	}

	desc := &hal.RenderPipelineDescriptor{
		Label:  p.label + "_pipeline",
		Layout: d.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vertex,
			EntryPoint: "vs_main",
			Buffers:    vertexLayouts(p, layouts),
		},
		Fragment: &hal.FragmentState{
			Module:     p.fragment,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{target},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: d.cfg.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
	if d.cfg.DepthFormat != 0 {
		desc.DepthStencil = depthStencilState(gputypes.TextureFormat(d.cfg.DepthFormat), state)
	}

	pipeline, err := d.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create pipeline %s: %w", p.label, err)
	}
	p.pipelines[key] = pipeline
	slogger().Debug("wgpu: created pipeline",
		"program", p.label, "blending", state.Blending, "depth_write", state.DepthWrite)
	return pipeline, nil
}

// depthStencilState maps a render state to depth testing. The stencil
// buffer is left untouched.
func depthStencilState(format gputypes.TextureFormat, state gpucore.RenderState) *hal.DepthStencilState {
	compare := gputypes.CompareFunctionAlways
	if state.DepthTest {
		compare = state.DepthCompare
	}
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return &hal.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: state.DepthTest && state.DepthWrite,
		DepthCompare:      compare,
		StencilFront:      keep,
		StencilBack:       keep,
		StencilReadMask:   0x00,
		StencilWriteMask:  0x00,
	}
}

// vertexLayouts converts collection buffer layouts to per-instance HAL
// layouts. Attribute locations bound by the program take precedence.
func vertexLayouts(p *program, layouts []gpucore.VertexBufferLayout) []gputypes.VertexBufferLayout {
	out := make([]gputypes.VertexBufferLayout, 0, len(layouts))
	for _, l := range layouts {
		attrs := make([]gputypes.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			loc := a.Location
			if bound, ok := p.locations[a.Name]; ok {
				loc = bound
			}
			attrs = append(attrs, gputypes.VertexAttribute{
				Format:         gputypes.VertexFormatFloat32x4,
				Offset:         a.Offset,
				ShaderLocation: loc,
			})
		}
		out = append(out, gputypes.VertexBufferLayout{
			ArrayStride: l.ArrayStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes:  attrs,
		})
	}
	return out
}
