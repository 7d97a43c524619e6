package points

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/points/gpucore"
	"github.com/gogpu/points/internal/encode"
	"github.com/gogpu/points/shadercache"
)

func addPoints(t *testing.T, c *Collection, n int) []*Point {
	t.Helper()
	pts := make([]*Point, n)
	for i := range pts {
		o := DefaultPointOptions()
		o.Position = mgl64.Vec3{float64(i), 0, 0}
		p, err := c.Add(o)
		require.NoError(t, err)
		pts[i] = p
	}
	return pts
}

func TestFirstUpdateBuildsSingleBatch(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)
	addPoints(t, c, 1000)

	fs := renderFrame()
	require.NoError(t, c.Update(fs))

	assert.Equal(t, uint64(1), c.Stats().Rebuilds)
	assert.Equal(t, uint64(1), c.Stats().Recompiles)
	assert.Equal(t, 1, dev.compiles)
	assert.Equal(t, 1, dev.bufferCreates, "all groups start static and share one buffer")

	require.Len(t, fs.CommandList, 1)
	cmd := fs.CommandList[0]
	assert.Equal(t, gputypes.PrimitiveTopologyPointList, cmd.PrimitiveType)
	assert.Equal(t, PassOpaque, cmd.Pass)
	assert.Equal(t, 0, cmd.First)
	assert.Equal(t, 1000, cmd.Count)
	assert.Equal(t, float32(64), cmd.Uniforms.MaximumTotalPointSize)
	assert.Equal(t, PickColorVarying, cmd.PickID)
	assert.Equal(t, gpucore.OpaqueRenderState(), cmd.RenderState)
	assert.Same(t, c, cmd.Owner)
	require.NotNil(t, cmd.Program)
	assert.False(t, cmd.Program.IsDestroyed())
	require.Len(t, cmd.VertexBuffers, 1)
	assert.Len(t, cmd.VertexBuffers[0].Attributes, numSlots)
	assert.Equal(t, uint64(numSlots*4*4), cmd.VertexBuffers[0].ArrayStride)
}

func TestUpdateWithoutChangesDoesNoWork(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)
	addPoints(t, c, 10)
	require.NoError(t, c.Update(renderFrame()))
	dev.resetWrites()

	fs := renderFrame()
	require.NoError(t, c.Update(fs))

	assert.Empty(t, dev.writes)
	assert.Equal(t, uint64(1), c.Stats().Rebuilds)
	assert.Equal(t, 1, dev.compiles)
	assert.Len(t, fs.CommandList, 1)
}

func TestFewChangesUploadPointsIndividually(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)
	pts := addPoints(t, c, 1000)
	require.NoError(t, c.Update(renderFrame()))
	dev.resetWrites()

	red := gputypes.Color{R: 1, A: 1}
	for _, i := range []int{3, 100, 250, 600, 999} {
		require.NoError(t, pts[i].SetColor(red))
	}
	require.NoError(t, c.Update(renderFrame()))

	s := c.Stats()
	assert.Equal(t, uint64(1), s.Rebuilds)
	assert.Equal(t, uint64(1), s.ScatterUpdates)
	assert.Equal(t, uint64(0), s.BulkUpdates)
	assert.Equal(t, uint64(1), s.Recompiles)
	require.Len(t, dev.writes, 5)
	for _, w := range dev.writes {
		assert.Equal(t, numSlots*4*4, w.size)
	}
	assert.Equal(t, uint64(250*numSlots*4*4), dev.writes[2].offset)

	got := dev.slot(c, slotCompressedAttribute0, 250)
	assert.Equal(t, encode.PackRGB(1, 0, 0), got[0])

	// Color is now classified as changing; the next update moves it into
	// its own stream buffer.
	assert.Equal(t, gpucore.BufferUsageStream, c.BufferUsage(PropColor))
	dev.resetWrites()
	require.NoError(t, c.Update(renderFrame()))
	assert.Equal(t, uint64(2), c.Stats().Rebuilds)

	layouts := c.vaf.layouts()
	require.Len(t, layouts, 2)
	assert.Equal(t, gpucore.BufferUsageStatic, layouts[0].Usage)
	assert.Equal(t, gpucore.BufferUsageStream, layouts[1].Usage)
	require.Len(t, layouts[1].Attributes, 1)
	assert.Equal(t, "compressedAttribute0", layouts[1].Attributes[0].Name)
	assert.Equal(t, uint32(slotCompressedAttribute0), layouts[1].Attributes[0].Location)
	assert.Equal(t, encode.PackRGB(1, 0, 0), dev.slot(c, slotCompressedAttribute0, 999)[0])
}

func TestManyChangesRewriteWholeBuffers(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)
	pts := addPoints(t, c, 100)
	require.NoError(t, c.Update(renderFrame()))

	// Settle the usage classification first.
	for _, p := range pts[:5] {
		require.NoError(t, p.SetPixelSize(4))
	}
	require.NoError(t, c.Update(renderFrame()))
	require.NoError(t, c.Update(renderFrame()))
	require.Equal(t, uint64(2), c.Stats().Rebuilds)
	dev.resetWrites()

	for _, p := range pts[:50] {
		require.NoError(t, p.SetPixelSize(6))
	}
	require.NoError(t, c.Update(renderFrame()))

	assert.Equal(t, uint64(2), c.Stats().Rebuilds)
	assert.Equal(t, uint64(1), c.Stats().BulkUpdates)
	require.Len(t, dev.writes, 1, "one interleaved buffer holds every slot")
	assert.Equal(t, float32(6), dev.slot(c, slotPositionHighAndSize, 49)[3])
	assert.Equal(t, float32(10), dev.slot(c, slotPositionHighAndSize, 50)[3])
}

func TestScaleByDistanceLatchesShaderFeature(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)
	pts := addPoints(t, c, 10)
	require.NoError(t, c.Update(renderFrame()))
	first := c.sp

	// A curve that never changes the size does not need the feature.
	require.NoError(t, pts[1].SetScaleByDistance(&NearFarScalar{Near: 1, NearValue: 1, Far: 10, FarValue: 1}))
	require.NoError(t, c.Update(renderFrame()))
	assert.Equal(t, uint64(1), c.Stats().Recompiles)

	require.NoError(t, pts[0].SetScaleByDistance(&NearFarScalar{Near: 1, NearValue: 1, Far: 1e4, FarValue: 0.5}))
	fs := renderFrame()
	require.NoError(t, c.Update(fs))

	assert.Equal(t, uint64(2), c.Stats().Recompiles)
	assert.Equal(t, 2, dev.compiles)
	assert.True(t, first.IsDestroyed(), "the replaced program had no other users")
	require.Len(t, fs.CommandList, 1)
	assert.Contains(t, fs.CommandList[0].Program.VertexSource(), "// #define EYE_DISTANCE_SCALING")

	// Removing the only scaled point keeps the feature compiled in.
	require.True(t, c.Remove(pts[0]))
	require.NoError(t, c.Update(renderFrame()))
	assert.Equal(t, uint64(2), c.Stats().Recompiles)
	assert.Contains(t, c.sp.VertexSource(), "EYE_DISTANCE_SCALING")
}

func TestShaderFeatureDefines(t *testing.T) {
	tests := []struct {
		name   string
		set    func(p *Point) error
		define string
	}{
		{"translucency", func(p *Point) error {
			return p.SetTranslucencyByDistance(&NearFarScalar{Near: 1, NearValue: 1, Far: 100, FarValue: 0})
		}, "EYE_DISTANCE_TRANSLUCENCY"},
		{"display condition", func(p *Point) error {
			return p.SetDistanceDisplayCondition(&DistanceDisplayCondition{Near: 0, Far: 100})
		}, "DISTANCE_DISPLAY_CONDITION"},
		{"disable depth", func(p *Point) error {
			return p.SetDisableDepthTestDistance(50)
		}, "DISABLE_DEPTH_DISTANCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice()
			c := New(dev, nil)
			pts := addPoints(t, c, 3)
			require.NoError(t, c.Update(renderFrame()))
			assert.NotContains(t, c.sp.VertexSource(), "#define "+tt.define)

			require.NoError(t, tt.set(pts[2]))
			require.NoError(t, c.Update(renderFrame()))
			assert.Contains(t, c.sp.VertexSource(), "// #define "+tt.define)
		})
	}
}

func TestMinimumDisableDepthDistanceCompilesFeature(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)
	addPoints(t, c, 3)
	require.NoError(t, c.Update(renderFrame()))

	fs := renderFrame()
	fs.MinimumDisableDepthTestDistance = 100
	require.NoError(t, c.Update(fs))
	assert.Contains(t, c.sp.VertexSource(), "DISABLE_DEPTH_DISTANCE")

	// The feature stays after the frame setting is cleared.
	require.NoError(t, c.Update(renderFrame()))
	assert.Equal(t, uint64(2), c.Stats().Recompiles)
}

func TestGetCompactsInInsertionOrder(t *testing.T) {
	c := New(newFakeDevice(), nil)
	pts := addPoints(t, c, 5)

	require.True(t, c.Remove(pts[1]))
	require.True(t, c.Remove(pts[3]))
	assert.False(t, c.Remove(pts[3]), "second removal is a no-op")

	require.Equal(t, 3, c.Len())
	for i, want := range []*Point{pts[0], pts[2], pts[4]} {
		got, err := c.Get(i)
		require.NoError(t, err)
		assert.Same(t, want, got)
		assert.Equal(t, i, got.Index())
	}

	assert.True(t, c.Contains(pts[2]))
	assert.False(t, c.Contains(pts[1]))
	assert.False(t, c.Contains(nil))

	_, err := c.Get(3)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.Get(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRemovedPointRejectsSetters(t *testing.T) {
	c := New(newFakeDevice(), nil)
	pts := addPoints(t, c, 2)
	require.True(t, c.Remove(pts[0]))

	p := pts[0]
	assert.True(t, p.IsDestroyed())
	assert.ErrorIs(t, p.SetShow(false), ErrDestroyed)
	assert.ErrorIs(t, p.SetPosition(mgl64.Vec3{1, 2, 3}), ErrDestroyed)
	assert.ErrorIs(t, p.SetColor(gputypes.Color{A: 1}), ErrDestroyed)
	assert.ErrorIs(t, p.SetPixelSize(3), ErrDestroyed)
	assert.ErrorIs(t, p.SetID("x"), ErrDestroyed)
	_, err := p.PickID()
	assert.ErrorIs(t, err, ErrDestroyed)

	other := New(newFakeDevice(), nil)
	assert.False(t, other.Contains(pts[1]))
	assert.False(t, other.Remove(pts[1]))
}

func TestRemoveAll(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)
	pts := addPoints(t, c, 4)
	require.NoError(t, c.Update(renderFrame()))
	require.Equal(t, 4, dev.picks.Len())

	c.RemoveAll()
	assert.Equal(t, 0, c.Len())
	assert.Zero(t, dev.picks.Len())
	for _, p := range pts {
		assert.True(t, p.IsDestroyed())
	}

	fs := renderFrame()
	require.NoError(t, c.Update(fs))
	assert.Empty(t, fs.CommandList)
	assert.Empty(t, dev.buffers)
}

func TestVertexPacking(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)

	o := DefaultPointOptions()
	o.Position = mgl64.Vec3{100000.5, -3, 7}
	o.PixelSize = 12
	o.Color = gputypes.Color{R: 1, G: 0.5, B: 0, A: 1}
	o.OutlineColor = gputypes.Color{R: 0, G: 0, B: 1, A: 0.5}
	o.OutlineWidth = 2
	o.DistanceDisplayCondition = &DistanceDisplayCondition{Near: 10, Far: 20}
	o.DisableDepthTestDistance = math.Inf(1)
	o.SplitDirection = SplitRight
	o.TranslucencyByDistance = &NearFarScalar{Near: 5, NearValue: 0.5, Far: 50, FarValue: 0.25}
	p, err := c.Add(o)
	require.NoError(t, err)
	require.NoError(t, c.Update(renderFrame()))

	e := encode.EncodeCartesian(o.Position)
	a := dev.slot(c, slotPositionHighAndSize, 0)
	b := dev.slot(c, slotPositionLowAndOutline, 0)
	assert.Equal(t, [4]float32{e.High[0], e.High[1], e.High[2], 12}, a)
	assert.Equal(t, [4]float32{e.Low[0], e.Low[1], e.Low[2], 2}, b)

	pick, err := p.PickID()
	require.NoError(t, err)
	pc := pick.Color
	attr0 := dev.slot(c, slotCompressedAttribute0, 0)
	assert.Equal(t, encode.PackRGB(1, 0.5, 0), attr0[0])
	assert.Equal(t, encode.PackRGB(0, 0, 1), attr0[1])
	assert.Equal(t, encode.PackRGB(float32(pc.R), float32(pc.G), float32(pc.B)), attr0[2])
	assert.Equal(t, encode.PackAlphas(1, 0.5, float32(pc.A)), attr0[3])

	attr1 := dev.slot(c, slotCompressedAttribute1, 0)
	show, near := encode.UnpackShowNear(attr1[0])
	assert.True(t, show)
	assert.Equal(t, float32(127), near)
	assert.Equal(t, [3]float32{0.25, 5, 50}, [3]float32{attr1[1], attr1[2], attr1[3]})

	assert.Equal(t, [4]float32{0, 1, 1, 1}, dev.slot(c, slotScaleByDistance, 0))
	assert.Equal(t, [4]float32{100, 400, -1, 1}, dev.slot(c, slotDistanceDisplayConditionAndDisableDepth, 0))
}

func TestHiddenPointsPackShowBit(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)
	pts := addPoints(t, c, 3)
	require.NoError(t, pts[0].SetShow(false))
	require.NoError(t, pts[1].SetColor(gputypes.Color{R: 1}))
	require.NoError(t, pts[2].SetClusterShow(false))
	require.NoError(t, c.Update(renderFrame()))

	for i := range pts {
		show, _ := encode.UnpackShowNear(dev.slot(c, slotCompressedAttribute1, i)[0])
		assert.False(t, show, "point %d", i)
	}
	assert.Equal(t, float32(math.MaxFloat32), dev.slot(c, slotDistanceDisplayConditionAndDisableDepth, 0)[1])
}

func TestBoundingVolume(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil, WithModelMatrix(mgl64.Translate3D(100, 0, 0)))
	for _, x := range []float64{0, 10} {
		o := DefaultPointOptions()
		o.Position = mgl64.Vec3{x, 0, 0}
		_, err := c.Add(o)
		require.NoError(t, err)
	}

	fs := renderFrame()
	fs.Camera = fixedCamera(0.5)
	require.NoError(t, c.Update(fs))

	bv := c.BoundingVolume()
	assert.InDelta(t, 105, bv.Center[0], 1e-9)
	assert.InDelta(t, 5+0.5*10, bv.Radius, 1e-9)

	require.Len(t, fs.CommandList, 1)
	assert.Equal(t, bv, fs.CommandList[0].BoundingVolume)
	assert.Equal(t, mgl64.Translate3D(100, 0, 0), fs.CommandList[0].ModelMatrix)
}

func TestScene2DProjectsPositions(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)
	for _, pos := range []mgl64.Vec3{{6378137, 0, 0}, {0, 6378137, 0}} {
		o := DefaultPointOptions()
		o.Position = pos
		_, err := c.Add(o)
		require.NoError(t, err)
	}

	fs := renderFrame()
	fs.Mode = Scene2D
	require.NoError(t, c.Update(fs))

	quarter := math.Pi / 2 * 6378137
	got := encode.Cartesian3{}
	a := dev.slot(c, slotPositionHighAndSize, 1)
	b := dev.slot(c, slotPositionLowAndOutline, 1)
	copy(got.High[:], a[:3])
	copy(got.Low[:], b[:3])
	pos := got.Decode()
	assert.InDelta(t, 0, pos[0], 1e-3)
	assert.InDelta(t, quarter, pos[1], 1e-1)
	assert.InDelta(t, 0, pos[2], 1e-3)

	bv := c.BoundingVolume()
	assert.InDelta(t, quarter/2, bv.Center[1], 1)
	assert.InDelta(t, quarter/2, bv.Radius, 1)
	require.Len(t, fs.CommandList, 1)
	assert.Equal(t, mgl64.Ident4(), fs.CommandList[0].ModelMatrix)

	// Back to 3D forces a rebuild with the original positions.
	require.NoError(t, c.Update(renderFrame()))
	assert.Equal(t, uint64(2), c.Stats().Rebuilds)
	a = dev.slot(c, slotPositionHighAndSize, 1)
	b = dev.slot(c, slotPositionLowAndOutline, 1)
	assert.InDelta(t, 6378137, float64(a[1])+float64(b[1]), 1e-6)
}

func TestPickPassUsesDerivedProgram(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)
	addPoints(t, c, 5)
	require.NoError(t, c.Update(renderFrame()))

	fs := pickFrame()
	require.NoError(t, c.Update(fs))
	require.Len(t, fs.CommandList, 1)
	pick := fs.CommandList[0].Program
	assert.NotSame(t, c.sp, pick)
	assert.Contains(t, pick.FragmentSource(), "// #define PICK")
	assert.NotContains(t, c.sp.FragmentSource(), "#define PICK")
	assert.Equal(t, 2, dev.compiles)

	fs = pickFrame()
	require.NoError(t, c.Update(fs))
	assert.Same(t, pick, fs.CommandList[0].Program)
	assert.Equal(t, 2, dev.compiles)

	// Recompiling the base takes the pick variant with it.
	pts := addPoints(t, c, 1)
	require.NoError(t, pts[0].SetScaleByDistance(&NearFarScalar{Near: 0, NearValue: 2, Far: 10, FarValue: 1}))
	require.NoError(t, c.Update(renderFrame()))
	assert.True(t, pick.IsDestroyed())
}

func TestOpaqueAndTranslucentChunks(t *testing.T) {
	dev := newFakeDevice()
	dev.maxPerDraw = 400
	c := New(dev, nil, WithBlendOption(BlendOpaqueAndTranslucent))
	addPoints(t, c, 1000)

	fs := renderFrame()
	require.NoError(t, c.Update(fs))
	assert.Equal(t, 2, dev.compiles)
	require.Len(t, fs.CommandList, 6)

	wantChunks := [][2]int{{0, 400}, {400, 400}, {800, 200}}
	for j, cmd := range fs.CommandList {
		chunk := wantChunks[j/2]
		assert.Equal(t, chunk[0], cmd.First, "command %d", j)
		assert.Equal(t, chunk[1], cmd.Count, "command %d", j)
		if j%2 == 0 {
			assert.Equal(t, PassOpaque, cmd.Pass)
			assert.Same(t, c.sp, cmd.Program)
			assert.True(t, strings.Contains(cmd.Program.FragmentSource(), "// #define OPAQUE"))
		} else {
			assert.Equal(t, PassTranslucent, cmd.Pass)
			assert.Same(t, c.spTranslucent, cmd.Program)
			assert.False(t, cmd.RenderState.DepthWrite)
			assert.True(t, cmd.RenderState.Blending)
		}
	}
}

func TestTranslucentOnly(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil, WithBlendOption(BlendTranslucent))
	addPoints(t, c, 3)

	fs := renderFrame()
	require.NoError(t, c.Update(fs))
	require.Len(t, fs.CommandList, 1)
	assert.Equal(t, PassTranslucent, fs.CommandList[0].Pass)
	assert.Equal(t, gpucore.TranslucentRenderState(), fs.CommandList[0].RenderState)
	assert.Nil(t, c.sp)
	assert.NotContains(t, fs.CommandList[0].Program.FragmentSource(), "#define")
}

func TestBlendChangeReleasesUnusedProgram(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil, WithBlendOption(BlendOpaqueAndTranslucent))
	addPoints(t, c, 3)
	require.NoError(t, c.Update(renderFrame()))
	translucent := c.spTranslucent

	require.NoError(t, c.SetBlendOption(BlendOpaque))
	fs := renderFrame()
	require.NoError(t, c.Update(fs))

	assert.Len(t, fs.CommandList, 1)
	assert.Nil(t, c.spTranslucent)
	assert.Equal(t, 3, dev.compiles)
	assert.Equal(t, 1, dev.programDestroys)
	assert.Equal(t, 1, c.shaders.Stats().Pending)
	assert.False(t, translucent.IsDestroyed(), "release is deferred to Flush")

	assert.Equal(t, 1, c.shaders.Flush())
	assert.True(t, translucent.IsDestroyed())
	assert.Equal(t, 2, dev.programDestroys)
}

func TestCollectionsShareCache(t *testing.T) {
	dev := newFakeDevice()
	shaders := shadercache.New(dev)
	a := New(dev, shaders)
	b := New(dev, shaders)
	addPoints(t, a, 2)
	addPoints(t, b, 7)

	fs := renderFrame()
	require.NoError(t, a.Update(fs))
	require.NoError(t, b.Update(fs))

	require.Len(t, fs.CommandList, 2)
	assert.Same(t, fs.CommandList[0].Program, fs.CommandList[1].Program)
	assert.Equal(t, 1, dev.compiles)

	a.Destroy()
	assert.False(t, b.sp.IsDestroyed())
	assert.False(t, shaders.IsDestroyed())
	shaders.Flush()
	assert.False(t, b.sp.IsDestroyed())
}

func TestHiddenCollectionSkipsUpdate(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil, WithShow(false))
	addPoints(t, c, 3)

	fs := renderFrame()
	require.NoError(t, c.Update(fs))
	assert.Empty(t, fs.CommandList)
	assert.Zero(t, dev.bufferCreates)
	assert.Zero(t, dev.compiles)

	c.SetShow(true)
	require.NoError(t, c.Update(fs))
	assert.Len(t, fs.CommandList, 1)
}

func TestNoPassesEmitsNothing(t *testing.T) {
	c := New(newFakeDevice(), nil)
	addPoints(t, c, 3)

	fs := renderFrame()
	fs.Passes = Passes{}
	require.NoError(t, c.Update(fs))
	assert.Empty(t, fs.CommandList)
	assert.NotNil(t, c.sp)
}

func TestDestroy(t *testing.T) {
	dev := newFakeDevice()
	c := New(dev, nil)
	pts := addPoints(t, c, 3)
	require.NoError(t, c.Update(renderFrame()))

	c.Destroy()
	c.Destroy()

	assert.True(t, c.IsDestroyed())
	assert.Empty(t, dev.buffers)
	assert.Empty(t, dev.programs)
	assert.Zero(t, dev.picks.Len())
	assert.True(t, pts[0].IsDestroyed())

	assert.ErrorIs(t, c.Update(renderFrame()), ErrDestroyed)
	_, err := c.Add(DefaultPointOptions())
	assert.ErrorIs(t, err, ErrDestroyed)
	_, err = c.Get(0)
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestBufferFailureIsNotRetried(t *testing.T) {
	errOOM := errors.New("out of memory")
	dev := newFakeDevice()
	dev.failBuffer = errOOM
	c := New(dev, nil)
	addPoints(t, c, 3)

	fs := renderFrame()
	err := c.Update(fs)
	require.Error(t, err)
	assert.ErrorIs(t, err, errOOM)
	assert.Empty(t, fs.CommandList)

	require.NoError(t, c.Update(fs))
	assert.Empty(t, fs.CommandList)
	assert.Zero(t, dev.bufferCreates)
}

func TestAddValidatesOptions(t *testing.T) {
	c := New(newFakeDevice(), nil)

	tests := []struct {
		name   string
		modify func(o *PointOptions)
	}{
		{"negative pixel size", func(o *PointOptions) { o.PixelSize = -1 }},
		{"NaN outline", func(o *PointOptions) { o.OutlineWidth = math.NaN() }},
		{"negative depth distance", func(o *PointOptions) { o.DisableDepthTestDistance = -5 }},
		{"infinite position", func(o *PointOptions) { o.Position = mgl64.Vec3{math.Inf(1), 0, 0} }},
		{"bad split", func(o *PointOptions) { o.SplitDirection = 7 }},
		{"inverted scale", func(o *PointOptions) { o.ScaleByDistance = &NearFarScalar{Near: 10, Far: 1} }},
		{"inverted display", func(o *PointOptions) {
			o.DistanceDisplayCondition = &DistanceDisplayCondition{Near: 5, Far: 5}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultPointOptions()
			tt.modify(&o)
			_, err := c.Add(o)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
	assert.Zero(t, c.Len())
}

func TestSettersAreNoOpsForEqualValues(t *testing.T) {
	c := New(newFakeDevice(), nil)
	pts := addPoints(t, c, 1)
	require.NoError(t, c.Update(renderFrame()))

	p := pts[0]
	require.NoError(t, p.SetPixelSize(p.PixelSize()))
	require.NoError(t, p.SetColor(p.Color()))
	require.NoError(t, p.SetPosition(p.Position()))
	require.NoError(t, p.SetScaleByDistance(nil))
	assert.Empty(t, c.toUpdate)
	assert.Equal(t, [numProperties]int{}, c.propertiesChanged)

	require.NoError(t, p.SetOutlineWidth(3))
	require.NoError(t, p.SetOutlineColor(gputypes.Color{G: 1, A: 1}))
	assert.Len(t, c.toUpdate, 1, "a point is queued once")
	assert.Equal(t, 1, c.propertiesChanged[PropOutlineWidth])
	assert.Equal(t, 1, c.propertiesChanged[PropOutlineColor])
}

func TestGettersReturnCopies(t *testing.T) {
	c := New(newFakeDevice(), nil)
	o := DefaultPointOptions()
	o.ScaleByDistance = &NearFarScalar{Near: 1, NearValue: 2, Far: 3, FarValue: 4}
	p, err := c.Add(o)
	require.NoError(t, err)

	o.ScaleByDistance.Far = 100
	got := p.ScaleByDistance()
	assert.Equal(t, 3.0, got.Far)
	got.Far = 200
	assert.Equal(t, 3.0, p.ScaleByDistance().Far)
}
