package gpucore

import (
	"sync"

	"github.com/gogpu/gputypes"
)

// PickRegistry allocates pick IDs and maps them back to objects.
// Keys start at 1; key 0 is reserved for "nothing picked".
//
// PickRegistry is safe for concurrent use.
type PickRegistry struct {
	mu      sync.Mutex
	next    uint32
	objects map[uint32]any
}

// Create registers object and returns a fresh pick ID.
func (r *PickRegistry) Create(object any) PickID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.objects == nil {
		r.objects = make(map[uint32]any)
	}
	r.next++
	key := r.next
	r.objects[key] = object

	return PickID{Key: key, Color: PickColor(key)}
}

// Release unregisters a key. Unknown keys are ignored.
func (r *PickRegistry) Release(key uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, key)
}

// Object returns the object registered under key.
func (r *PickRegistry) Object(key uint32) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[key]
	return obj, ok
}

// Len returns the number of registered objects.
func (r *PickRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// PickColor encodes a key as RGBA, least significant byte in red.
func PickColor(key uint32) gputypes.Color {
	return gputypes.Color{
		R: float64(key&0xff) / 255,
		G: float64((key>>8)&0xff) / 255,
		B: float64((key>>16)&0xff) / 255,
		A: float64((key>>24)&0xff) / 255,
	}
}

// PickKey decodes the key from 8-bit RGBA pick pass output.
func PickKey(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}
