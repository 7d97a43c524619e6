package points

import (
	"encoding/binary"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gogpu/points/gpucore"
)

// Vertex slots. Each slot is four float32 components.
const (
	slotPositionHighAndSize = iota
	slotPositionLowAndOutline
	slotCompressedAttribute0
	slotCompressedAttribute1
	slotScaleByDistance
	slotDistanceDisplayConditionAndDisableDepth

	numSlots
)

const slotComponents = 4

var slotNames = [numSlots]string{
	"positionHighAndSize",
	"positionLowAndOutline",
	"compressedAttribute0",
	"compressedAttribute1",
	"scaleByDistance",
	"distanceDisplayConditionAndDisableDepth",
}

// attributeLocations returns the attribute binding of the point program.
// A fresh map is returned each call; the shader cache keys on content.
func attributeLocations() map[string]uint32 {
	m := make(map[string]uint32, numSlots)
	for i, name := range slotNames {
		m[name] = uint32(i)
	}
	return m
}

// slotUsages maps the per-property buffer usage onto vertex slots.
func slotUsages(usage *[numProperties]gpucore.BufferUsage) [numSlots]gpucore.BufferUsage {
	return [numSlots]gpucore.BufferUsage{
		slotPositionHighAndSize:                     usage[PropPosition],
		slotPositionLowAndOutline:                   usage[PropPosition],
		slotCompressedAttribute0:                    usage[PropColor],
		slotCompressedAttribute1:                    usage[PropTranslucencyByDistance],
		slotScaleByDistance:                         usage[PropScaleByDistance],
		slotDistanceDisplayConditionAndDisableDepth: usage[PropDistanceDisplayCondition],
	}
}

// facadeBuffer is one interleaved vertex buffer and its CPU-side copy.
type facadeBuffer struct {
	usage   gpucore.BufferUsage
	id      gpucore.BufferID
	slots   []int
	stride  int // floats per vertex
	data    []float32
	written bool
}

// vertexChunk is a window of vertices drawn by one command.
type vertexChunk struct {
	first int
	count int
}

// vertexArrayFacade groups vertex slots by buffer usage so that slots that
// change together are uploaded together.
type vertexArrayFacade struct {
	device     gpucore.Device
	length     int
	buffers    []*facadeBuffer
	slotBuffer [numSlots]*facadeBuffer
	slotOffset [numSlots]int
	chunks     []vertexChunk
	scratch    []byte
}

func newVertexArrayFacade(device gpucore.Device, length int, usages [numSlots]gpucore.BufferUsage) *vertexArrayFacade {
	f := &vertexArrayFacade{device: device, length: length}

	for _, usage := range []gpucore.BufferUsage{gpucore.BufferUsageStatic, gpucore.BufferUsageStream} {
		var buf *facadeBuffer
		for slot := 0; slot < numSlots; slot++ {
			if usages[slot] != usage {
				continue
			}
			if buf == nil {
				buf = &facadeBuffer{usage: usage}
				f.buffers = append(f.buffers, buf)
			}
			f.slotBuffer[slot] = buf
			f.slotOffset[slot] = buf.stride
			buf.slots = append(buf.slots, slot)
			buf.stride += slotComponents
		}
		if buf != nil {
			buf.data = make([]float32, buf.stride*length)
		}
	}

	maxPerDraw := device.MaxVerticesPerDraw()
	if maxPerDraw <= 0 {
		maxPerDraw = length
	}
	for first := 0; first < length; first += maxPerDraw {
		f.chunks = append(f.chunks, vertexChunk{first: first, count: min(maxPerDraw, length-first)})
	}
	return f
}

// write stores one slot of one vertex and marks its buffer for upload.
func (f *vertexArrayFacade) write(slot, index int, x, y, z, w float32) {
	buf := f.slotBuffer[slot]
	i := index*buf.stride + f.slotOffset[slot]
	buf.data[i] = x
	buf.data[i+1] = y
	buf.data[i+2] = z
	buf.data[i+3] = w
	buf.written = true
}

// read returns one slot of one vertex.
func (f *vertexArrayFacade) read(slot, index int) [slotComponents]float32 {
	buf := f.slotBuffer[slot]
	i := index*buf.stride + f.slotOffset[slot]
	return [slotComponents]float32{buf.data[i], buf.data[i+1], buf.data[i+2], buf.data[i+3]}
}

// commit uploads every written buffer whole, creating device buffers on
// first use.
func (f *vertexArrayFacade) commit() error {
	for _, buf := range f.buffers {
		if buf.id == gpucore.InvalidID {
			id, err := f.device.CreateBuffer(len(buf.data)*4, buf.usage)
			if err != nil {
				return fmt.Errorf("create %s vertex buffer: %w", buf.usage, err)
			}
			buf.id = id
			buf.written = true
		}
		if !buf.written {
			continue
		}
		if err := f.device.WriteBuffer(buf.id, 0, f.encode(buf.data)); err != nil {
			return fmt.Errorf("write %s vertex buffer: %w", buf.usage, err)
		}
		buf.written = false
	}
	return nil
}

// subCommit uploads count vertices starting at index from every written
// buffer. Written flags stay set until endSubCommits.
func (f *vertexArrayFacade) subCommit(index, count int) error {
	for _, buf := range f.buffers {
		if !buf.written || buf.id == gpucore.InvalidID {
			continue
		}
		start := index * buf.stride
		end := (index + count) * buf.stride
		offset := uint64(start) * 4
		if err := f.device.WriteBuffer(buf.id, offset, f.encode(buf.data[start:end])); err != nil {
			return fmt.Errorf("write %s vertex range: %w", buf.usage, err)
		}
	}
	return nil
}

func (f *vertexArrayFacade) endSubCommits() {
	for _, buf := range f.buffers {
		buf.written = false
	}
}

// layouts describes the buffers for draw commands.
func (f *vertexArrayFacade) layouts() []gpucore.VertexBufferLayout {
	out := make([]gpucore.VertexBufferLayout, 0, len(f.buffers))
	for _, buf := range f.buffers {
		l := gpucore.VertexBufferLayout{
			Buffer:      buf.id,
			Usage:       buf.usage,
			ArrayStride: uint64(buf.stride) * 4,
			Attributes:  make([]gpucore.VertexAttribute, 0, len(buf.slots)),
		}
		for _, slot := range buf.slots {
			l.Attributes = append(l.Attributes, gpucore.VertexAttribute{
				Name:     slotNames[slot],
				Location: uint32(slot),
				Offset:   uint64(f.slotOffset[slot]) * 4,
			})
		}
		out = append(out, l)
	}
	return out
}

func (f *vertexArrayFacade) destroy() {
	for _, buf := range f.buffers {
		if buf.id != gpucore.InvalidID {
			f.device.DestroyBuffer(buf.id)
			buf.id = gpucore.InvalidID
		}
	}
}

// encode converts floats to little-endian bytes in a reused scratch buffer.
// The returned slice is only valid until the next call.
func (f *vertexArrayFacade) encode(data []float32) []byte {
	n := len(data) * 4
	if cap(f.scratch) < n {
		f.scratch = make([]byte, n)
	}
	b := f.scratch[:n]
	for i, v := range data {
		binary.LittleEndian.PutUint32(b[i*4:], math32.Float32bits(v))
	}
	return b
}
