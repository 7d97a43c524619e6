package points

import "github.com/go-gl/mathgl/mgl64"

// Option configures a Collection during creation.
// Use functional options to customize Collection behavior.
//
// Example:
//
//	// Defaults: visible, identity model matrix, opaque blending
//	c := points.New(device, shaders)
//
//	// Points placed in a local frame and blended in two passes
//	c := points.New(device, shaders,
//	    points.WithModelMatrix(mgl64.Translate3D(x, y, z)),
//	    points.WithBlendOption(points.BlendOpaqueAndTranslucent))
type Option func(*options)

// options holds optional configuration for Collection creation.
type options struct {
	show                    bool
	modelMatrix             mgl64.Mat4
	blendOption             BlendOption
	debugShowBoundingVolume bool
}

// defaultOptions returns the default collection options.
func defaultOptions() options {
	return options{
		show:        true,
		modelMatrix: mgl64.Ident4(),
		blendOption: BlendOpaque,
	}
}

// WithShow sets whether the collection is drawn at all.
func WithShow(show bool) Option {
	return func(o *options) {
		o.show = show
	}
}

// WithModelMatrix sets the transform from the points' local coordinates to
// world coordinates.
func WithModelMatrix(m mgl64.Mat4) Option {
	return func(o *options) {
		o.modelMatrix = m
	}
}

// WithBlendOption selects how point colors are blended.
// BlendOpaqueAndTranslucent is correct for any mix of alphas but costs two
// draws per chunk; the single-pass options are faster when all points are
// known to be opaque, or all translucent.
func WithBlendOption(b BlendOption) Option {
	return func(o *options) {
		o.blendOption = b
	}
}

// WithDebugShowBoundingVolume marks draw commands so that the renderer
// outlines their bounding sphere.
func WithDebugShowBoundingVolume(show bool) Option {
	return func(o *options) {
		o.debugShowBoundingVolume = show
	}
}
