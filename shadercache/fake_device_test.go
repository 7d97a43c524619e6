package shadercache

import "github.com/gogpu/points/gpucore"

// fakeDevice records program creation and destruction.
type fakeDevice struct {
	next     gpucore.ProgramID
	programs map[gpucore.ProgramID]*gpucore.ProgramDesc
	compiles int
	destroys []gpucore.ProgramID
	failNext error
	picks    gpucore.PickRegistry
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{programs: make(map[gpucore.ProgramID]*gpucore.ProgramDesc)}
}

func (d *fakeDevice) MaximumPointSize() float32 { return 64 }
func (d *fakeDevice) MaxVerticesPerDraw() int   { return 1 << 16 }

func (d *fakeDevice) CreateBuffer(int, gpucore.BufferUsage) (gpucore.BufferID, error) {
	return 1, nil
}
func (d *fakeDevice) WriteBuffer(gpucore.BufferID, uint64, []byte) error { return nil }
func (d *fakeDevice) DestroyBuffer(gpucore.BufferID)                     {}

func (d *fakeDevice) CreateProgram(desc *gpucore.ProgramDesc) (gpucore.ProgramID, error) {
	if err := d.failNext; err != nil {
		d.failNext = nil
		return gpucore.InvalidID, err
	}
	d.next++
	d.compiles++
	d.programs[d.next] = desc
	return d.next, nil
}

func (d *fakeDevice) DestroyProgram(id gpucore.ProgramID) {
	d.destroys = append(d.destroys, id)
	delete(d.programs, id)
}

func (d *fakeDevice) CreatePickID(object any) gpucore.PickID { return d.picks.Create(object) }
func (d *fakeDevice) ReleasePickID(key uint32)               { d.picks.Release(key) }
