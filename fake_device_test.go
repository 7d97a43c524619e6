package points

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/points/gpucore"
)

// fakeBuffer is a CPU copy of a device buffer.
type fakeBuffer struct {
	usage gpucore.BufferUsage
	data  []byte
}

// bufferWrite records one WriteBuffer call.
type bufferWrite struct {
	id     gpucore.BufferID
	offset uint64
	size   int
}

// fakeDevice records every buffer and program call.
type fakeDevice struct {
	maxPerDraw int

	nextBuffer     gpucore.BufferID
	buffers        map[gpucore.BufferID]*fakeBuffer
	bufferCreates  int
	bufferDestroys int
	writes         []bufferWrite
	failBuffer     error

	nextProgram     gpucore.ProgramID
	programs        map[gpucore.ProgramID]*gpucore.ProgramDesc
	compiles        int
	programDestroys int

	picks gpucore.PickRegistry
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		maxPerDraw: 1 << 16,
		buffers:    make(map[gpucore.BufferID]*fakeBuffer),
		programs:   make(map[gpucore.ProgramID]*gpucore.ProgramDesc),
	}
}

func (d *fakeDevice) MaximumPointSize() float32 { return 64 }
func (d *fakeDevice) MaxVerticesPerDraw() int   { return d.maxPerDraw }

func (d *fakeDevice) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if err := d.failBuffer; err != nil {
		d.failBuffer = nil
		return gpucore.InvalidID, err
	}
	d.nextBuffer++
	d.bufferCreates++
	d.buffers[d.nextBuffer] = &fakeBuffer{usage: usage, data: make([]byte, size)}
	return d.nextBuffer, nil
}

func (d *fakeDevice) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	buf, ok := d.buffers[id]
	if !ok {
		return gpucore.ErrUnknownResource
	}
	copy(buf.data[offset:], data)
	d.writes = append(d.writes, bufferWrite{id: id, offset: offset, size: len(data)})
	return nil
}

func (d *fakeDevice) DestroyBuffer(id gpucore.BufferID) {
	if _, ok := d.buffers[id]; ok {
		d.bufferDestroys++
		delete(d.buffers, id)
	}
}

func (d *fakeDevice) CreateProgram(desc *gpucore.ProgramDesc) (gpucore.ProgramID, error) {
	d.nextProgram++
	d.compiles++
	d.programs[d.nextProgram] = desc
	return d.nextProgram, nil
}

func (d *fakeDevice) DestroyProgram(id gpucore.ProgramID) {
	if _, ok := d.programs[id]; ok {
		d.programDestroys++
		delete(d.programs, id)
	}
}

func (d *fakeDevice) CreatePickID(object any) gpucore.PickID { return d.picks.Create(object) }
func (d *fakeDevice) ReleasePickID(key uint32)               { d.picks.Release(key) }

// resetWrites forgets recorded writes.
func (d *fakeDevice) resetWrites() { d.writes = nil }

// slot reads four floats of one vertex slot back from the device copy.
func (d *fakeDevice) slot(c *Collection, slot, index int) [4]float32 {
	for _, l := range c.vaf.layouts() {
		for _, a := range l.Attributes {
			if a.Location != uint32(slot) {
				continue
			}
			data := d.buffers[l.Buffer].data
			base := uint64(index)*l.ArrayStride + a.Offset
			var out [4]float32
			for i := range out {
				out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[base+uint64(i)*4:]))
			}
			return out
		}
	}
	panic("slot not bound")
}

// fixedCamera reports the same pixel size everywhere.
type fixedCamera float64

func (c fixedCamera) PixelSize(BoundingSphere, int, int) float64 { return float64(c) }

func renderFrame() *FrameState {
	return &FrameState{
		Mode:                Scene3D,
		DrawingBufferWidth:  800,
		DrawingBufferHeight: 600,
		Passes:              Passes{Render: true},
	}
}

func pickFrame() *FrameState {
	fs := renderFrame()
	fs.Passes = Passes{Pick: true}
	return fs
}
