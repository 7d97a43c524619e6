package points

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/points/gpucore"
	"github.com/gogpu/points/shadercache"
)

// Pass orders draw commands within a frame.
type Pass uint8

const (
	// PassOpaque draws depth-writing geometry.
	PassOpaque Pass = iota

	// PassTranslucent draws blended geometry after every opaque draw.
	PassTranslucent
)

// String returns the string representation of Pass.
func (p Pass) String() string {
	switch p {
	case PassOpaque:
		return "Opaque"
	case PassTranslucent:
		return "Translucent"
	default:
		return "Unknown"
	}
}

// PickColorVarying names the varying that carries pick colors into the
// fragment stage.
const PickColorVarying = "v_pickColor"

// DrawUniforms are per-command uniform values.
type DrawUniforms struct {
	// MaximumTotalPointSize clamps pixel size plus outline, in pixels.
	MaximumTotalPointSize float32
}

// DrawCommand draws one chunk of a collection's vertex buffers.
// Commands are owned by their collection and reused across frames; do not
// retain them past the next Update.
type DrawCommand struct {
	PrimitiveType gputypes.PrimitiveTopology
	Pass          Pass
	Program       *shadercache.Program
	RenderState   gpucore.RenderState

	// VertexBuffers are shared by every chunk of a collection.
	VertexBuffers []gpucore.VertexBufferLayout

	// First and Count select the chunk's points.
	First int
	Count int

	BoundingVolume BoundingSphere
	ModelMatrix    mgl64.Mat4
	Uniforms       DrawUniforms

	// PickID names the varying holding pick colors.
	PickID string

	DebugShowBoundingVolume bool
	Owner                   *Collection
}
