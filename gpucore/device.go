package gpucore

// Device abstracts over the GPU backend that owns buffers and programs.
//
// Implementations are not required to be safe for concurrent use; the point
// collection and shader cache call into a Device from a single render
// goroutine.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying an unknown ID is a no-op
//   - IDs become invalid after destruction and are never reused
type Device interface {
	// === Capabilities ===

	// MaximumPointSize returns the largest point sprite size, in pixels,
	// the device can rasterize.
	MaximumPointSize() float32

	// MaxVerticesPerDraw returns the largest vertex count a single draw may
	// reference. Vertex arrays are split into chunks of at most this size.
	MaxVerticesPerDraw() int

	// === Buffer Management ===

	// CreateBuffer creates a vertex buffer of size bytes.
	CreateBuffer(size int, usage BufferUsage) (BufferID, error)

	// WriteBuffer writes data into a buffer at the given byte offset.
	// Implementations must not retain data after returning.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// DestroyBuffer releases a buffer.
	DestroyBuffer(id BufferID)

	// === Programs ===

	// CreateProgram compiles and links a shader program.
	CreateProgram(desc *ProgramDesc) (ProgramID, error)

	// DestroyProgram releases a program.
	DestroyProgram(id ProgramID)

	// === Picking ===

	// CreatePickID registers object for picking and returns its ID.
	CreatePickID(object any) PickID

	// ReleasePickID unregisters a pick ID. Unknown keys are ignored.
	ReleasePickID(key uint32)
}
