package points

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/points/gpucore"
	"github.com/gogpu/points/shadercache"
)

// collectionIDs hands out owner IDs so that points can be checked for
// membership without comparing pointers alone.
var collectionIDs atomic.Uint64

// features are the optional shader features, compiled in as defines.
type features struct {
	scaleByDistance          bool
	translucencyByDistance   bool
	distanceDisplayCondition bool
	disableDepthDistance     bool
}

// Stats counts the work Update has done over the collection's lifetime.
type Stats struct {
	// Rebuilds is the number of full vertex buffer rebuilds.
	Rebuilds uint64
	// BulkUpdates is the number of incremental updates that rewrote whole
	// buffers.
	BulkUpdates uint64
	// ScatterUpdates is the number of incremental updates that uploaded
	// changed points one by one.
	ScatterUpdates uint64
	// Recompiles is the number of times the point programs were rebuilt.
	Recompiles uint64
}

// Collection is a batch of point sprites drawn together.
//
// A Collection is not safe for concurrent use. Points and their collection
// must be mutated from the goroutine that calls Update.
type Collection struct {
	id          uint64
	device      gpucore.Device
	shaders     *shadercache.Cache
	ownsShaders bool

	show                    bool
	modelMatrix             mgl64.Mat4
	blendOption             BlendOption
	debugShowBoundingVolume bool

	points            []*Point
	pointsRemoved     bool
	createVertexArray bool

	// toUpdate holds points changed since the last upload; each point
	// appears once, gated by Point.dirty.
	toUpdate []*Point

	propertiesChanged   [numProperties]int
	buffersUsage        [numProperties]gpucore.BufferUsage
	usageRebuildPending bool

	mode              SceneMode
	activeModelMatrix mgl64.Mat4

	baseVolume          BoundingSphere
	baseVolumeWC        BoundingSphere
	baseVolume2D        BoundingSphere
	boundingVolume      BoundingSphere
	boundingVolumeDirty bool
	maxPixelSize        float64
	maxTotalPointSize   float32

	// shader latches only ever turn on; compiled is what the current
	// programs were built with.
	shader   features
	compiled features

	blendApplied  bool
	appliedBlend  BlendOption
	rsOpaque      *gpucore.RenderState
	rsTranslucent *gpucore.RenderState

	sp                   *shadercache.Program
	spTranslucent        *shadercache.Program
	spOptions            shadercache.ProgramOptions
	spTranslucentOptions shadercache.ProgramOptions

	vaf      *vertexArrayFacade
	commands []*DrawCommand

	stats     Stats
	destroyed bool
}

// New creates an empty collection drawing on device. Programs are shared
// through shaders; a nil cache gives the collection a private one that is
// destroyed with it.
func New(device gpucore.Device, shaders *shadercache.Cache, opts ...Option) *Collection {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collection{
		id:                      collectionIDs.Add(1),
		device:                  device,
		shaders:                 shaders,
		show:                    o.show,
		modelMatrix:             o.modelMatrix,
		blendOption:             o.blendOption,
		debugShowBoundingVolume: o.debugShowBoundingVolume,
		mode:                    Scene3D,
		activeModelMatrix:       mgl64.Ident4(),
	}
	if c.shaders == nil {
		c.shaders = shadercache.New(device)
		c.ownsShaders = true
	}
	return c
}

// Add creates a point from opts and appends it. The GPU is not touched until
// the next Update.
func (c *Collection) Add(opts PointOptions) (*Point, error) {
	if c.destroyed {
		return nil, ErrDestroyed
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	p := newPoint(c, &opts)
	p.index = len(c.points)
	c.points = append(c.points, p)
	c.createVertexArray = true
	return p, nil
}

// Remove removes p and invalidates it. It returns false if p is not a live
// member of this collection.
func (c *Collection) Remove(p *Point) bool {
	if !c.Contains(p) {
		return false
	}
	c.points[p.index] = nil
	c.pointsRemoved = true
	c.createVertexArray = true
	p.destroy()
	return true
}

// RemoveAll removes and invalidates every point.
func (c *Collection) RemoveAll() {
	for _, p := range c.points {
		if p != nil {
			p.destroy()
		}
	}
	c.points = nil
	c.clearUpdateQueue()
	c.pointsRemoved = false
	c.createVertexArray = true
}

// Contains reports whether p is a live member of this collection.
func (c *Collection) Contains(p *Point) bool {
	return p != nil && p.owner == c && p.ownerID == c.id
}

// Get returns the point at index. Indices run from 0 to Len()-1 in insertion
// order, with removed points compacted out.
func (c *Collection) Get(index int) (*Point, error) {
	if c.destroyed {
		return nil, ErrDestroyed
	}
	c.compact()
	if index < 0 || index >= len(c.points) {
		return nil, fmt.Errorf("%w: index %d out of range [0, %d)", ErrInvalidArgument, index, len(c.points))
	}
	return c.points[index], nil
}

// Len returns the number of live points.
func (c *Collection) Len() int {
	c.compact()
	return len(c.points)
}

// Show reports whether the collection is drawn.
func (c *Collection) Show() bool { return c.show }

// SetShow sets whether the collection is drawn. Hidden collections skip
// Update entirely.
func (c *Collection) SetShow(show bool) { c.show = show }

// ModelMatrix returns the local-to-world transform.
func (c *Collection) ModelMatrix() mgl64.Mat4 { return c.modelMatrix }

// SetModelMatrix sets the local-to-world transform.
func (c *Collection) SetModelMatrix(m mgl64.Mat4) {
	c.modelMatrix = m
	c.boundingVolumeDirty = true
}

// BlendOption returns the blend option.
func (c *Collection) BlendOption() BlendOption { return c.blendOption }

// SetBlendOption changes the blend option; programs are rebuilt on the next
// Update.
func (c *Collection) SetBlendOption(b BlendOption) error {
	if !b.valid() {
		return fmt.Errorf("%w: blend option %d", ErrInvalidArgument, uint8(b))
	}
	c.blendOption = b
	return nil
}

// DebugShowBoundingVolume reports whether commands request a bounding
// volume overlay.
func (c *Collection) DebugShowBoundingVolume() bool { return c.debugShowBoundingVolume }

// SetDebugShowBoundingVolume toggles the bounding volume overlay.
func (c *Collection) SetDebugShowBoundingVolume(show bool) { c.debugShowBoundingVolume = show }

// BoundingVolume returns the bounding sphere computed by the last Update,
// including the screen-space inflation.
func (c *Collection) BoundingVolume() BoundingSphere { return c.boundingVolume }

// BufferUsage returns the current usage classification of a property group.
func (c *Collection) BufferUsage(prop Property) gpucore.BufferUsage {
	if prop >= numProperties {
		return gpucore.BufferUsageStatic
	}
	return c.buffersUsage[prop]
}

// Stats returns update counters.
func (c *Collection) Stats() Stats { return c.stats }

// IsDestroyed reports whether Destroy has been called.
func (c *Collection) IsDestroyed() bool { return c.destroyed }

// Destroy releases the collection's programs and buffers and invalidates
// every point. Safe to call multiple times.
func (c *Collection) Destroy() {
	if c.destroyed {
		return
	}

	c.releasePrograms()
	if c.ownsShaders {
		c.shaders.Destroy()
	}
	c.destroyVertexArray()
	for _, p := range c.points {
		if p != nil {
			p.destroy()
		}
	}
	c.points = nil
	c.toUpdate = nil
	c.commands = nil
	c.destroyed = true
}

// markPropertyChanged queues p for upload and counts the change.
func (c *Collection) markPropertyChanged(p *Point, prop Property) {
	if !p.dirty {
		c.toUpdate = append(c.toUpdate, p)
	}
	c.propertiesChanged[prop]++
}

// compact drops removed points and renumbers the rest in order.
func (c *Collection) compact() {
	if !c.pointsRemoved {
		return
	}
	c.pointsRemoved = false

	live := make([]*Point, 0, len(c.points))
	for _, p := range c.points {
		if p != nil {
			p.index = len(live)
			live = append(live, p)
		}
	}
	c.points = live
}

// clearUpdateQueue empties the queue. When its storage has grown well past
// the number of points, the storage is released.
func (c *Collection) clearUpdateQueue() {
	for _, p := range c.toUpdate {
		p.dirty = false
	}
	if float64(cap(c.toUpdate)) > float64(len(c.points))*1.5 {
		c.toUpdate = make([]*Point, 0, len(c.points))
		return
	}
	clear(c.toUpdate)
	c.toUpdate = c.toUpdate[:0]
}

func (c *Collection) destroyVertexArray() {
	if c.vaf != nil {
		c.vaf.destroy()
		c.vaf = nil
	}
}

func (c *Collection) releasePrograms() {
	for _, sp := range []**shadercache.Program{&c.sp, &c.spTranslucent} {
		if *sp == nil {
			continue
		}
		if err := c.shaders.Release(*sp); err != nil {
			Logger().Warn("points: release program", "error", err)
		}
		*sp = nil
	}
}
