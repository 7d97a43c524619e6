package points

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/points/gpucore"
)

// bulkUpdateFraction is the share of changed points above which whole
// buffers are rewritten instead of uploading each point.
const bulkUpdateFraction = 0.1

// Update uploads changes, compiles programs as needed and appends this
// frame's draw commands to fs.CommandList.
//
// GPU failures are returned as-is; the collection then draws nothing useful
// until the cause is fixed. Nothing is retried.
func (c *Collection) Update(fs *FrameState) error {
	if c.destroyed {
		Logger().Warn("points: update on destroyed collection", "id", c.id)
		return ErrDestroyed
	}
	if fs == nil {
		return fmt.Errorf("%w: nil frame state", ErrInvalidArgument)
	}
	if !c.blendOption.valid() {
		return fmt.Errorf("%w: blend option %d", ErrInvalidArgument, uint8(c.blendOption))
	}

	c.compact()
	if !c.show {
		return nil
	}

	c.maxTotalPointSize = c.device.MaximumPointSize()
	c.updateMode(fs)

	if err := c.updateBuffers(fs.Passes.Pick); err != nil {
		return err
	}
	if c.vaf == nil {
		return nil
	}

	c.updateBoundingVolume(fs)

	blendChanged := !c.blendApplied || c.appliedBlend != c.blendOption
	if blendChanged {
		c.updateRenderStates()
	}
	if err := c.updateShaders(fs, blendChanged); err != nil {
		return err
	}
	c.appliedBlend = c.blendOption
	c.blendApplied = true

	if fs.Passes.Render || fs.Passes.Pick {
		return c.emitCommands(fs)
	}
	return nil
}

// updateMode recomputes mode-projected positions. A change of mode, or of
// the model matrix outside 3D, forces a rebuild with fresh bounds; morphing
// recomputes every point; steady 2D and Columbus view only recompute queued
// points and grow the existing bounds.
func (c *Collection) updateMode(fs *FrameState) {
	mode := fs.Mode

	if c.createVertexArray || c.mode != mode || (mode != Scene3D && c.activeModelMatrix != c.modelMatrix) {
		c.mode = mode
		c.activeModelMatrix = c.modelMatrix
		c.createVertexArray = true
		if mode == Scene3D || mode == Scene2D || mode == SceneColumbusView {
			c.recomputeActualPositions(c.points, fs, true)
		}
		return
	}

	switch mode {
	case SceneMorphing:
		c.recomputeActualPositions(c.points, fs, true)
	case Scene2D, SceneColumbusView:
		queued := c.toUpdate[:len(c.toUpdate):len(c.toUpdate)]
		c.recomputeActualPositions(queued, fs, false)
	}
}

func (c *Collection) recomputeActualPositions(pts []*Point, fs *FrameState, recomputeBounds bool) {
	var positions []mgl64.Vec3
	if recomputeBounds {
		positions = make([]mgl64.Vec3, 0, len(pts))
	}

	for _, p := range pts {
		if p == nil || p.owner == nil {
			continue
		}
		actual, ok := computeActualPosition(p.position, fs, c.activeModelMatrix)
		if !ok {
			continue
		}
		p.setActualPosition(actual)
		if recomputeBounds {
			positions = append(positions, actual)
		} else if fs.Mode == Scene3D {
			c.baseVolume = c.baseVolume.Expand(actual)
		} else {
			c.baseVolume2D = c.baseVolume2D.Expand(actual)
		}
	}

	if !recomputeBounds {
		return
	}
	sphere := BoundingSphereFromPoints(positions)
	if fs.Mode == Scene3D {
		c.baseVolume = sphere
		c.boundingVolumeDirty = true
	} else {
		c.baseVolume2D = sphere
	}
}

// computeActualPosition returns where a point is drawn in the frame's mode.
// It reports false for positions the projection cannot resolve.
func computeActualPosition(position mgl64.Vec3, fs *FrameState, model mgl64.Mat4) (mgl64.Vec3, bool) {
	if fs.Mode == Scene3D {
		return position, true
	}

	world := model.Mul4x1(position.Vec4(1)).Vec3()
	projection := fs.mapProjection()
	carto, ok := projection.Ellipsoid().CartesianToCartographic(world)
	if !ok {
		return mgl64.Vec3{}, false
	}
	projected := projection.Project(carto)

	switch fs.Mode {
	case SceneColumbusView:
		return mgl64.Vec3{projected[2], projected[0], projected[1]}, true
	case Scene2D:
		return mgl64.Vec3{0, projected[0], projected[1]}, true
	default:
		t := fs.MorphTime
		return mgl64.Vec3{
			lerp(projected[2], world[0], t),
			lerp(projected[0], world[1], t),
			lerp(projected[1], world[2], t),
		}, true
	}
}

// computeNewBuffersUsage classifies every property group by whether it
// changed since the last rebuild. It reports whether any group flipped.
func (c *Collection) computeNewBuffersUsage() bool {
	changed := false
	for k := range c.buffersUsage {
		usage := gpucore.BufferUsageStatic
		if c.propertiesChanged[k] != 0 {
			usage = gpucore.BufferUsageStream
		}
		if c.buffersUsage[k] != usage {
			changed = true
		}
		c.buffersUsage[k] = usage
	}
	return changed
}

// updateBuffers rebuilds or incrementally updates the vertex buffers.
//
// A usage flip detected while nothing else forces a rebuild is applied on
// the following update, so a frame with a few edits still takes the
// incremental path.
func (c *Collection) updateBuffers(picking bool) error {
	n := len(c.points)
	queued := len(c.toUpdate)

	if !picking && c.computeNewBuffersUsage() && !c.createVertexArray {
		c.usageRebuildPending = true
		if c.vaf == nil {
			c.createVertexArray = true
		}
	} else if c.usageRebuildPending && !picking {
		c.createVertexArray = true
	}

	var err error
	switch {
	case c.createVertexArray:
		err = c.rebuild()
	case queued > 0 && c.vaf != nil:
		err = c.updateIncremental(queued, n)
	}

	c.clearUpdateQueue()
	return err
}

// rebuild recreates every vertex buffer from scratch.
func (c *Collection) rebuild() error {
	c.createVertexArray = false
	c.usageRebuildPending = false
	c.propertiesChanged = [numProperties]int{}
	c.maxPixelSize = 0
	c.destroyVertexArray()
	c.stats.Rebuilds++

	n := len(c.points)
	if n == 0 {
		return nil
	}

	vaf := newVertexArrayFacade(c.device, n, slotUsages(&c.buffersUsage))
	for _, p := range c.points {
		p.dirty = false
		if err := c.writePoint(vaf, p); err != nil {
			return err
		}
	}
	if err := vaf.commit(); err != nil {
		vaf.destroy()
		return fmt.Errorf("points: rebuild vertex array: %w", err)
	}
	c.vaf = vaf

	Logger().Debug("points: rebuilt vertex array",
		"points", n,
		"buffers", len(vaf.buffers),
		"chunks", len(vaf.chunks))
	return nil
}

// updateIncremental rewrites the dirty groups of queued points.
func (c *Collection) updateIncremental(queued, n int) error {
	writers := c.dirtyWriters()
	vaf := c.vaf

	if float64(queued)/float64(n) > bulkUpdateFraction {
		for _, p := range c.toUpdate {
			p.dirty = false
			for _, w := range writers {
				if err := w(c, vaf, p); err != nil {
					return err
				}
			}
		}
		c.stats.BulkUpdates++
		if err := vaf.commit(); err != nil {
			return fmt.Errorf("points: commit vertex array: %w", err)
		}
		return nil
	}

	c.stats.ScatterUpdates++
	for _, p := range c.toUpdate {
		p.dirty = false
		for _, w := range writers {
			if err := w(c, vaf, p); err != nil {
				return err
			}
		}
		if err := vaf.subCommit(p.index, 1); err != nil {
			return fmt.Errorf("points: sub-commit vertex array: %w", err)
		}
	}
	vaf.endSubCommits()
	return nil
}

// updateBoundingVolume picks the bounds for the frame's mode and inflates
// them by the largest point's on-screen size.
func (c *Collection) updateBoundingVolume(fs *FrameState) {
	if c.boundingVolumeDirty {
		c.boundingVolumeDirty = false
		c.baseVolumeWC = c.baseVolume.Transform(c.modelMatrix)
	}

	bv := c.baseVolume2D
	if fs.Mode == Scene3D {
		bv = c.baseVolumeWC
	}

	if fs.Camera != nil {
		pixelSize := fs.Camera.PixelSize(bv, fs.DrawingBufferWidth, fs.DrawingBufferHeight)
		bv.Radius += pixelSize * c.maxPixelSize
	}
	c.boundingVolume = bv
}

// drawModelMatrix is the model matrix commands carry: the collection's in
// 3D, identity otherwise since positions are already projected.
func (c *Collection) drawModelMatrix(mode SceneMode) mgl64.Mat4 {
	if mode == Scene3D {
		return c.modelMatrix
	}
	return mgl64.Ident4()
}

func (c *Collection) updateRenderStates() {
	c.rsOpaque, c.rsTranslucent = nil, nil
	if c.blendOption == BlendOpaque || c.blendOption == BlendOpaqueAndTranslucent {
		rs := gpucore.OpaqueRenderState()
		c.rsOpaque = &rs
	}
	if c.blendOption == BlendTranslucent || c.blendOption == BlendOpaqueAndTranslucent {
		rs := gpucore.TranslucentRenderState()
		c.rsTranslucent = &rs
	}
}

// emitCommands appends one command per chunk, or two when both passes are
// used.
func (c *Collection) emitCommands(fs *FrameState) error {
	chunks := c.vaf.chunks
	opaque := c.blendOption == BlendOpaque
	both := c.blendOption == BlendOpaqueAndTranslucent

	total := len(chunks)
	if both {
		total *= 2
	}
	for len(c.commands) < total {
		c.commands = append(c.commands, &DrawCommand{})
	}
	c.commands = c.commands[:total]

	layouts := c.vaf.layouts()
	model := c.drawModelMatrix(fs.Mode)

	for j := 0; j < total; j++ {
		opaqueCommand := opaque || (both && j%2 == 0)
		index := j
		if both {
			index = j / 2
		}

		program, rs := c.spTranslucent, c.rsTranslucent
		pass := PassTranslucent
		if opaqueCommand {
			program, rs = c.sp, c.rsOpaque
			pass = PassOpaque
		}
		if fs.Passes.Pick {
			var err error
			if program, err = c.pickProgram(opaqueCommand); err != nil {
				return err
			}
		}

		cmd := c.commands[j]
		*cmd = DrawCommand{
			PrimitiveType:           gputypes.PrimitiveTopologyPointList,
			Pass:                    pass,
			Program:                 program,
			RenderState:             *rs,
			VertexBuffers:           layouts,
			First:                   chunks[index].first,
			Count:                   chunks[index].count,
			BoundingVolume:          c.boundingVolume,
			ModelMatrix:             model,
			Uniforms:                DrawUniforms{MaximumTotalPointSize: c.maxTotalPointSize},
			PickID:                  PickColorVarying,
			DebugShowBoundingVolume: c.debugShowBoundingVolume,
			Owner:                   c,
		}
		fs.CommandList = append(fs.CommandList, cmd)
	}
	return nil
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
