// Package points renders large numbers of independently mutable point
// sprites in batches.
//
// A [Collection] owns its points and packs their attributes into a few
// interleaved GPU vertex buffers. Each frame, [Collection.Update] uploads
// only what changed since the previous frame, compiles the shader variant
// the points currently need, and appends draw commands to the frame.
//
// # Quick Start
//
//	shaders := shadercache.New(device)
//	c := points.New(device, shaders, points.WithBlendOption(points.BlendOpaqueAndTranslucent))
//
//	opts := points.DefaultPointOptions()
//	opts.Position = mgl64.Vec3{6378137, 0, 0}
//	opts.Color = gputypes.Color{R: 1, A: 1}
//	p, err := c.Add(opts)
//	if err != nil {
//	    return err
//	}
//
//	// Per frame:
//	if err := c.Update(frame); err != nil {
//	    return err
//	}
//	shaders.Flush()
//
// # Incremental Updates
//
// Setters on [Point] queue the point for upload and count which attribute
// group changed. Update either rebuilds every buffer (after Add, Remove or
// a buffer-usage change), rewrites whole buffers when more than a tenth of
// the points changed, or uploads each changed point on its own.
//
// Attribute groups that never change are kept in static buffers; groups
// that changed since the last rebuild move to stream buffers on the next
// rebuild.
//
// # Shader Variants
//
// Distance-based scaling, translucency, display conditions and depth-test
// disabling are compiled in only once a point needs them. Once enabled, a
// feature stays enabled for the life of the collection.
//
// # Precision
//
// Positions are double precision on the CPU and uploaded as a float32 high
// and low pair, so points far from the origin do not jitter.
//
// # Logging
//
// The package logs through [log/slog]. By default nothing is logged; call
// [SetLogger] to enable output.
package points
