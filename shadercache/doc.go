// Package shadercache deduplicates compiled shader programs by structural
// key and reference-counts their use.
//
// A program is identified by the content of its inputs: the canonical text
// of both stages, the attribute-location mapping and any extra uniform
// metadata. Two acquisitions with equal content share one compiled program
// and one reference count, regardless of object identity.
//
// # Deferred Release
//
// Releasing the last reference does not destroy the program. The entry is
// parked in a pending set until [Cache.Flush] runs; acquiring an equal
// program before then revives it without recompiling. Render loops call
// Flush once per frame after every collection has updated.
//
//	prog, err := cache.Acquire(shadercache.ProgramOptions{
//	    VertexSource:       shadercache.ShaderSource{Sources: []string{vs}},
//	    FragmentSource:     shadercache.ShaderSource{Sources: []string{fs}, Defines: []string{"OPAQUE"}},
//	    AttributeLocations: map[string]uint32{"positionHighAndSize": 0},
//	})
//	...
//	cache.Release(prog)
//	cache.Flush()
//
// # Derived Programs
//
// A derived program (for example a picking variant) is keyed by a keyword
// plus its base program's key. The base records which keywords were derived
// from it, and destroying the base destroys every derived program first.
//
// # Shader Sources
//
// [ShaderSource] carries source fragments and a set of defines. Fragments
// are concatenated and run through a small preprocessor that understands
// #ifdef, #ifndef, #else and #endif. The active defines are recorded as
// comments at the top of the canonical text.
package shadercache
