package gpucore

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Resource IDs
//
// These opaque IDs represent GPU resources. Each device implementation
// maintains a mapping between IDs and actual backend resources.

// BufferID is an opaque handle to a vertex buffer.
type BufferID uint64

// ProgramID is an opaque handle to a linked shader program.
type ProgramID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// ErrUnknownResource is returned when an ID does not name a live resource.
var ErrUnknownResource = errors.New("gpucore: unknown resource")

// BufferUsage is the update-frequency hint of a vertex buffer.
type BufferUsage uint8

const (
	// BufferUsageStatic marks data that is written once and drawn many times.
	BufferUsageStatic BufferUsage = iota

	// BufferUsageStream marks data that is rewritten most frames.
	BufferUsageStream
)

// String returns the string representation of BufferUsage.
func (u BufferUsage) String() string {
	switch u {
	case BufferUsageStatic:
		return "Static"
	case BufferUsageStream:
		return "Stream"
	default:
		return "Unknown"
	}
}

// ProgramDesc describes a shader program to link.
type ProgramDesc struct {
	// Label is an optional debug label.
	Label string

	// VertexSource is the final vertex stage source text.
	VertexSource string

	// FragmentSource is the final fragment stage source text.
	FragmentSource string

	// AttributeLocations maps vertex attribute names to shader locations.
	AttributeLocations map[string]uint32
}

// RenderState is the fixed-function state a draw command is issued with.
// It is comparable and may be used as a map key.
type RenderState struct {
	DepthTest    bool
	DepthCompare gputypes.CompareFunction
	DepthWrite   bool
	Blending     bool
	Blend        gputypes.BlendState
}

// OpaqueRenderState returns depth-tested, depth-writing state without
// blending.
func OpaqueRenderState() RenderState {
	return RenderState{
		DepthTest:    true,
		DepthCompare: gputypes.CompareFunctionLessEqual,
		DepthWrite:   true,
	}
}

// TranslucentRenderState returns depth-tested state without depth writes
// and with straight alpha blending.
func TranslucentRenderState() RenderState {
	return RenderState{
		DepthTest:    true,
		DepthCompare: gputypes.CompareFunctionLessEqual,
		DepthWrite:   false,
		Blending:     true,
		Blend: gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorSrcAlpha,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
		},
	}
}

// PickID identifies an object in the pick pass. Color is the key encoded as
// normalized RGBA.
type PickID struct {
	Key   uint32
	Color gputypes.Color
}

// VertexAttribute is one four-component float attribute inside an
// interleaved vertex buffer.
type VertexAttribute struct {
	// Name is the attribute name the program binds.
	Name string

	// Location is the shader location.
	Location uint32

	// Offset is the byte offset within one vertex.
	Offset uint64
}

// VertexBufferLayout describes one interleaved vertex buffer bound for a
// draw. Each vertex holds ArrayStride bytes.
type VertexBufferLayout struct {
	Buffer      BufferID
	Usage       BufferUsage
	ArrayStride uint64
	Attributes  []VertexAttribute
}
