// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/points"
	"github.com/gogpu/points/gpucore"
	"github.com/gogpu/points/internal/encode"
)

const (
	// quadVertices is the vertex count of one point sprite.
	quadVertices = 6

	// uniformSize is the byte size of the PointUniforms block: two 4x4
	// matrices and four vec4s.
	uniformSize = 2*64 + 4*16

	// submitTimeout bounds the wait for a submitted frame.
	submitTimeout = 5 * time.Second
)

// ViewUniforms are the per-frame camera values shared by every draw.
type ViewUniforms struct {
	// View maps world to eye coordinates.
	View mgl64.Mat4

	// Projection maps eye to clip coordinates.
	Projection mgl64.Mat4

	// Eye is the camera position in world coordinates.
	Eye mgl64.Vec3

	// Viewport is x, y, width and height in pixels.
	Viewport [4]float32

	// PixelRatio scales point sizes to device pixels. Zero means 1.
	PixelRatio float32

	// SplitPosition is the horizontal split of a split-screen view, in
	// [0, 1]. Points with a split direction hide on the other side.
	SplitPosition float32

	// MinimumDisableDepthTestDistance applies to points whose own distance
	// is zero. +Inf disables depth testing for them entirely.
	MinimumDisableDepthTestDistance float64
}

// RenderTarget names the attachments Submit renders into.
type RenderTarget struct {
	// Color is the color attachment. With multisampling it is the MSAA view
	// and Resolve receives the resolved image.
	Color   hal.TextureView
	Resolve hal.TextureView

	// Depth is the depth-stencil attachment. It must be set when the
	// device config has a depth format.
	Depth hal.TextureView

	// Clear clears the color attachment when non-nil.
	Clear *gputypes.Color
}

// Encoder records point draw commands into render passes.
//
// Uniform buffers and bind groups of a frame stay alive until the next
// frame is encoded, so the previous submission must have completed by then.
// Submit waits for completion itself.
type Encoder struct {
	device *Device
	frame  []drawResources
	draws  int
}

type drawResources struct {
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup
}

// uniformKey identifies draws that can share one uniform buffer.
type uniformKey struct {
	model   mgl64.Mat4
	maxSize float32
}

// NewEncoder returns an encoder drawing with d's resources.
func NewEncoder(d *Device) *Encoder {
	return &Encoder{device: d}
}

// Draws returns the number of draw calls recorded by the last Encode.
func (e *Encoder) Draws() int { return e.draws }

// Encode records cmds into rp. Opaque commands are drawn before translucent
// ones; the order within a pass is kept. Commands with no points are
// skipped.
func (e *Encoder) Encode(rp hal.RenderPassEncoder, cmds []*points.DrawCommand, view ViewUniforms) error {
	d := e.device
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDestroyed
	}

	e.release()
	e.draws = 0

	sorted := make([]*points.DrawCommand, 0, len(cmds))
	for _, cmd := range cmds {
		if cmd != nil && cmd.Count > 0 && cmd.Program != nil {
			sorted = append(sorted, cmd)
		}
	}
	slices.SortStableFunc(sorted, func(a, b *points.DrawCommand) int {
		return cmp.Compare(a.Pass, b.Pass)
	})

	groups := make(map[uniformKey]hal.BindGroup)
	for _, cmd := range sorted {
		p, ok := d.programs[cmd.Program.ID()]
		if !ok {
			return fmt.Errorf("wgpu: draw program %d: %w", cmd.Program.ID(), gpucore.ErrUnknownResource)
		}
		pipeline, err := d.pipeline(p, cmd.RenderState, cmd.VertexBuffers)
		if err != nil {
			return err
		}

		key := uniformKey{model: cmd.ModelMatrix, maxSize: cmd.Uniforms.MaximumTotalPointSize}
		group, ok := groups[key]
		if !ok {
			group, err = e.createUniforms(packUniforms(cmd, view))
			if err != nil {
				return err
			}
			groups[key] = group
		}

		rp.SetPipeline(pipeline)
		rp.SetBindGroup(0, group, nil)
		for slot, l := range cmd.VertexBuffers {
			b, ok := d.buffers[l.Buffer]
			if !ok {
				return fmt.Errorf("wgpu: draw buffer %d: %w", l.Buffer, gpucore.ErrUnknownResource)
			}
			rp.SetVertexBuffer(uint32(slot), b.raw, 0)
		}
		rp.Draw(quadVertices, uint32(cmd.Count), 0, uint32(cmd.First))
		e.draws++
	}
	return nil
}

// Submit encodes cmds into a single render pass over target, submits it and
// waits for the GPU.
func (e *Encoder) Submit(target RenderTarget, cmds []*points.DrawCommand, view ViewUniforms) error {
	d := e.device
	if target.Color == nil {
		return fmt.Errorf("wgpu: submit: missing color attachment")
	}
	if d.cfg.DepthFormat != 0 && target.Depth == nil {
		return fmt.Errorf("wgpu: submit: missing %s attachment", d.cfg.DepthFormat)
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "points_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("points_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	color := hal.RenderPassColorAttachment{
		View:          target.Color,
		ResolveTarget: target.Resolve,
		LoadOp:        gputypes.LoadOpLoad,
		StoreOp:       gputypes.StoreOpStore,
	}
	if target.Clear != nil {
		color.LoadOp = gputypes.LoadOpClear
		color.ClearValue = *target.Clear
	}
	rpDesc := &hal.RenderPassDescriptor{
		Label:            "points_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{color},
	}
	if target.Depth != nil {
		rpDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              target.Depth,
			DepthLoadOp:       gputypes.LoadOpLoad,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpLoad,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		}
		if target.Clear != nil {
			rpDesc.DepthStencilAttachment.DepthLoadOp = gputypes.LoadOpClear
			rpDesc.DepthStencilAttachment.StencilLoadOp = gputypes.LoadOpClear
		}
	}

	rp := encoder.BeginRenderPass(rpDesc)
	encodeErr := e.Encode(rp, cmds, view)
	rp.End()
	if encodeErr != nil {
		encoder.DiscardEncoding()
		return encodeErr
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	fenceOK, err := d.device.Wait(fence, 1, submitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wgpu: wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

// Destroy releases the resources of the last encoded frame.
func (e *Encoder) Destroy() {
	d := e.device
	d.mu.Lock()
	defer d.mu.Unlock()
	e.release()
}

// release destroys the previous frame's uniforms. e.device.mu must be held.
func (e *Encoder) release() {
	d := e.device
	for _, r := range e.frame {
		d.device.DestroyBindGroup(r.bindGroup)
		d.device.DestroyBuffer(r.uniformBuf)
	}
	e.frame = e.frame[:0]
}

// createUniforms uploads one uniform block and binds it. d.mu must be held.
func (e *Encoder) createUniforms(data []byte) (hal.BindGroup, error) {
	d := e.device
	if err := d.ensureLayouts(); err != nil {
		return nil, err
	}

	uniformBuf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "points_uniforms",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	d.queue.WriteBuffer(uniformBuf, 0, data)

	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "points_uniform_bind",
		Layout: d.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
		},
	})
	if err != nil {
		d.device.DestroyBuffer(uniformBuf)
		return nil, fmt.Errorf("wgpu: create uniform bind group: %w", err)
	}

	e.frame = append(e.frame, drawResources{uniformBuf: uniformBuf, bindGroup: bindGroup})
	return bindGroup, nil
}

// packUniforms lays out PointUniforms for one draw.
//
// Positions are stored relative to the collection's model frame, so the eye
// is moved into that frame and split like the positions. The model-view
// matrix loses its translation because the shader subtracts the eye first.
func packUniforms(cmd *points.DrawCommand, view ViewUniforms) []byte {
	modelView := view.View.Mul4(cmd.ModelMatrix)
	modelView[12], modelView[13], modelView[14] = 0, 0, 0

	eye := cmd.ModelMatrix.Inv().Mul4x1(view.Eye.Vec4(1)).Vec3()
	split := encode.EncodeCartesian(eye)

	pixelRatio := view.PixelRatio
	if pixelRatio == 0 {
		pixelRatio = 1
	}
	minDisable := float32(-1)
	if d := view.MinimumDisableDepthTestDistance; !math.IsInf(d, 1) {
		minDisable = float32(d * d)
	}

	f := make([]float32, 0, uniformSize/4)
	for _, v := range modelView {
		f = append(f, float32(v))
	}
	for _, v := range view.Projection {
		f = append(f, float32(v))
	}
	f = append(f, split.High[0], split.High[1], split.High[2], 0)
	f = append(f, split.Low[0], split.Low[1], split.Low[2], 0)
	f = append(f, view.Viewport[:]...)
	f = append(f, cmd.Uniforms.MaximumTotalPointSize, minDisable, view.SplitPosition, pixelRatio)

	out := make([]byte, uniformSize)
	for i, v := range f {
		binary.LittleEndian.PutUint32(out[i*4:], math32.Float32bits(v))
	}
	return out
}

// layoutSignature identifies the vertex input state of a set of buffers.
// Buffer IDs are not part of it: rebuilt buffers keep their pipeline.
func layoutSignature(layouts []gpucore.VertexBufferLayout) string {
	var sb strings.Builder
	for _, l := range layouts {
		sb.WriteString(strconv.FormatUint(l.ArrayStride, 10))
		sb.WriteByte('[')
		for _, a := range l.Attributes {
			sb.WriteString(a.Name)
			sb.WriteByte('@')
			sb.WriteString(strconv.FormatUint(uint64(a.Location), 10))
			sb.WriteByte('+')
			sb.WriteString(strconv.FormatUint(a.Offset, 10))
			sb.WriteByte(';')
		}
		sb.WriteByte(']')
	}
	return sb.String()
}
