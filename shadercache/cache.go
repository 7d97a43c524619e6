package shadercache

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/points/gpucore"
)

// ProgramOptions describes a program by content.
type ProgramOptions struct {
	VertexSource   ShaderSource
	FragmentSource ShaderSource

	// AttributeLocations maps vertex attribute names to shader locations.
	AttributeLocations map[string]uint32

	// Extra is additional uniform metadata that distinguishes otherwise
	// equal programs. It must be JSON-serializable; maps serialize with
	// sorted keys.
	Extra any

	// Label is passed to the device for debugging. It is not part of the key.
	Label string
}

// Program is a compiled program owned by a Cache. All acquisitions of an
// equal program return the same *Program.
type Program struct {
	id             gpucore.ProgramID
	keyword        string
	vertexSource   string
	fragmentSource string
	destroyed      bool
}

// ID returns the device program handle.
func (p *Program) ID() gpucore.ProgramID { return p.id }

// Keyword returns the structural cache key.
func (p *Program) Keyword() string { return p.keyword }

// VertexSource returns the canonical vertex stage text the program was
// compiled from.
func (p *Program) VertexSource() string { return p.vertexSource }

// FragmentSource returns the canonical fragment stage text.
func (p *Program) FragmentSource() string { return p.fragmentSource }

// IsDestroyed reports whether the program's device resources are gone.
func (p *Program) IsDestroyed() bool { return p.destroyed }

// entry is the cache bookkeeping for one program.
type entry struct {
	program *Program
	count   int

	// base is the keyword of the program this one was derived from, empty
	// for base programs.
	base string

	// derived lists keywords (not full keys) derived from this program.
	derived []string
}

// Stats contains cache statistics.
type Stats struct {
	// Live is the number of entries, including pending ones.
	Live int
	// Pending is the number of zero-reference entries awaiting Flush.
	Pending int
	// Hits is the number of acquisitions served from the cache.
	Hits uint64
	// Misses is the number of acquisitions that compiled a program.
	Misses uint64
	// Destroyed is the number of programs destroyed.
	Destroyed uint64
}

// Cache deduplicates programs on one device.
//
// Cache is safe for concurrent use, although the collections sharing it are
// expected to run on a single render goroutine.
type Cache struct {
	mu        sync.Mutex
	device    gpucore.Device
	entries   map[string]*entry
	toRelease map[string]struct{}
	stats     Stats
	destroyed bool
}

// New creates an empty cache that compiles programs on device.
func New(device gpucore.Device) *Cache {
	return &Cache{
		device:    device,
		entries:   make(map[string]*entry),
		toRelease: make(map[string]struct{}),
	}
}

// Acquire returns the program described by opts, compiling it on a miss.
// Every successful call must be balanced by a Release.
func (c *Cache) Acquire(opts ProgramOptions) (*Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return nil, ErrDestroyed
	}
	return c.acquireLocked("", "", opts)
}

// Replace drops the caller's reference to old and acquires opts. If old was
// the last reference, it is destroyed immediately rather than deferred.
// A nil old behaves like Acquire.
func (c *Cache) Replace(old *Program, opts ProgramOptions) (*Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return nil, ErrDestroyed
	}
	if old != nil {
		c.dropLocked(old)
	}
	return c.acquireLocked("", "", opts)
}

// Release drops one reference. At zero the program is parked until Flush.
func (c *Cache) Release(p *Program) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return ErrDestroyed
	}
	if p == nil {
		return fmt.Errorf("%w: nil program", ErrUnknownProgram)
	}
	e, ok := c.entries[p.keyword]
	if !ok || e.program != p {
		return ErrUnknownProgram
	}

	if e.count > 0 {
		e.count--
	}
	if e.count == 0 {
		c.toRelease[p.keyword] = struct{}{}
	}
	return nil
}

// Flush destroys every parked program, derived programs first.
// It returns the number of programs destroyed.
func (c *Cache) Flush() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed || len(c.toRelease) == 0 {
		return 0
	}

	keywords := make([]string, 0, len(c.toRelease))
	for k := range c.toRelease {
		keywords = append(keywords, k)
	}
	slices.Sort(keywords)

	before := c.stats.Destroyed
	for _, k := range keywords {
		c.destroyLocked(k)
	}
	n := int(c.stats.Destroyed - before)

	Logger().Debug("shadercache: flush", "destroyed", n, "live", len(c.entries))
	return n
}

// AcquireDerived returns the program derived from base under keyword,
// compiling it from opts on a miss. The derived program is destroyed
// together with its base.
func (c *Cache) AcquireDerived(base *Program, keyword string, opts ProgramOptions) (*Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return nil, ErrDestroyed
	}
	if err := c.checkBaseLocked(base); err != nil {
		return nil, err
	}
	return c.acquireLocked(base.keyword, keyword, opts)
}

// ReplaceDerived destroys the program currently derived from base under
// keyword, if any, and compiles opts in its place.
func (c *Cache) ReplaceDerived(base *Program, keyword string, opts ProgramOptions) (*Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return nil, ErrDestroyed
	}
	if err := c.checkBaseLocked(base); err != nil {
		return nil, err
	}
	c.destroyLocked(keyword + base.keyword)
	return c.acquireLocked(base.keyword, keyword, opts)
}

// GetDerived returns the program derived from base under keyword without
// taking a reference.
func (c *Cache) GetDerived(base *Program, keyword string) (*Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed || base == nil {
		return nil, false
	}
	e, ok := c.entries[keyword+base.keyword]
	if !ok {
		return nil, false
	}
	return e.program, true
}

// Len returns the number of cached programs, including parked ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Live = len(c.entries)
	s.Pending = len(c.toRelease)
	return s
}

// Destroy destroys every program regardless of reference counts.
// Safe to call multiple times.
func (c *Cache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return
	}
	keywords := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keywords = append(keywords, k)
	}
	slices.Sort(keywords)
	for _, k := range keywords {
		c.destroyLocked(k)
	}
	c.destroyed = true
}

// IsDestroyed reports whether Destroy has been called.
func (c *Cache) IsDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// acquireLocked looks up or compiles a program. baseKeyword is empty for base
// programs. Caller must hold c.mu.
func (c *Cache) acquireLocked(baseKeyword, derivedKeyword string, opts ProgramOptions) (*Program, error) {
	vs, err := opts.VertexSource.Canonical()
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	fs, err := opts.FragmentSource.Canonical()
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}

	var keyword string
	if baseKeyword == "" {
		keyword, err = programKeyword(vs, fs, opts.AttributeLocations, opts.Extra)
		if err != nil {
			return nil, err
		}
	} else {
		keyword = derivedKeyword + baseKeyword
	}

	if e, ok := c.entries[keyword]; ok {
		delete(c.toRelease, keyword)
		e.count++
		c.stats.Hits++
		return e.program, nil
	}

	id, err := c.device.CreateProgram(&gpucore.ProgramDesc{
		Label:              opts.Label,
		VertexSource:       vs,
		FragmentSource:     fs,
		AttributeLocations: opts.AttributeLocations,
	})
	if err != nil {
		return nil, fmt.Errorf("shadercache: compile program: %w", err)
	}
	c.stats.Misses++

	p := &Program{id: id, keyword: keyword, vertexSource: vs, fragmentSource: fs}
	c.entries[keyword] = &entry{program: p, count: 1, base: baseKeyword}
	if baseKeyword != "" {
		base := c.entries[baseKeyword]
		if !slices.Contains(base.derived, derivedKeyword) {
			base.derived = append(base.derived, derivedKeyword)
		}
	}

	Logger().Debug("shadercache: compiled program",
		"label", opts.Label,
		"derived", derivedKeyword,
		"vertexDefines", opts.VertexSource.sortedDefines(),
		"fragmentDefines", opts.FragmentSource.sortedDefines())
	return p, nil
}

// dropLocked releases one reference to p and destroys it at zero.
func (c *Cache) dropLocked(p *Program) {
	e, ok := c.entries[p.keyword]
	if !ok || e.program != p {
		return
	}
	if e.count > 0 {
		e.count--
	}
	if e.count == 0 {
		c.destroyLocked(p.keyword)
	}
}

// destroyLocked destroys an entry and everything derived from it.
// Unknown keywords are ignored.
func (c *Cache) destroyLocked(keyword string) {
	e, ok := c.entries[keyword]
	if !ok {
		return
	}

	for _, d := range slices.Clone(e.derived) {
		c.destroyLocked(d + keyword)
	}

	if e.base != "" {
		if base, ok := c.entries[e.base]; ok {
			suffix := strings.TrimSuffix(keyword, e.base)
			base.derived = slices.DeleteFunc(base.derived, func(d string) bool { return d == suffix })
		}
	}

	c.device.DestroyProgram(e.program.id)
	e.program.destroyed = true
	delete(c.entries, keyword)
	delete(c.toRelease, keyword)
	c.stats.Destroyed++
}

func (c *Cache) checkBaseLocked(base *Program) error {
	if base == nil {
		return fmt.Errorf("%w: nil base program", ErrUnknownProgram)
	}
	e, ok := c.entries[base.keyword]
	if !ok || e.program != base {
		return fmt.Errorf("%w: base program not cached", ErrUnknownProgram)
	}
	return nil
}

// programKeyword builds the structural key of a base program.
func programKeyword(vs, fs string, locations map[string]uint32, extra any) (string, error) {
	// encoding/json sorts map keys, which makes the serialization stable.
	loc, err := json.Marshal(locations)
	if err != nil {
		return "", fmt.Errorf("shadercache: serialize attribute locations: %w", err)
	}
	ext, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("shadercache: serialize extra metadata: %w", err)
	}

	var b strings.Builder
	b.Grow(len(vs) + len(fs) + len(loc) + len(ext) + 3)
	b.WriteString(vs)
	b.WriteByte(0x1e)
	b.WriteString(fs)
	b.WriteByte(0x1e)
	b.Write(loc)
	b.WriteByte(0x1e)
	b.Write(ext)
	return b.String(), nil
}
