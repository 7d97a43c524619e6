package points

import (
	"github.com/gogpu/points/proj"
)

// Camera is the part of the scene camera a collection needs.
type Camera interface {
	// PixelSize returns the size, in world units, of one pixel at the
	// distance of sphere.
	PixelSize(sphere BoundingSphere, drawingBufferWidth, drawingBufferHeight int) float64
}

// Passes selects what the current frame renders.
type Passes struct {
	// Render is set for the visual pass.
	Render bool

	// Pick is set when rendering object IDs for selection.
	Pick bool
}

// FrameState is the per-frame input to Collection.Update.
type FrameState struct {
	Mode SceneMode

	// MorphTime is the transition progress while Mode is SceneMorphing:
	// 0 is Columbus view, 1 is 3D.
	MorphTime float64

	// Projection maps geodetic coordinates to 2D and Columbus view. Nil
	// selects the geographic projection on WGS84.
	Projection proj.MapProjection

	// Camera inflates bounding volumes by the on-screen point size. Nil
	// skips the inflation.
	Camera Camera

	DrawingBufferWidth  int
	DrawingBufferHeight int

	Passes Passes

	// MinimumDisableDepthTestDistance applies to points whose own disable
	// depth test distance is zero. Any non-zero value compiles the depth
	// disable feature into every collection's shader.
	MinimumDisableDepthTestDistance float64

	// CommandList receives the draw commands of every updated collection.
	CommandList []*DrawCommand
}

var defaultProjection = proj.NewGeographicProjection(proj.WGS84)

func (fs *FrameState) mapProjection() proj.MapProjection {
	if fs.Projection != nil {
		return fs.Projection
	}
	return defaultProjection
}
