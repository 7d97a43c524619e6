package points

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/points/shadercache"
)

//go:embed shaders/point_vs.wgsl
var pointVertexSource string

//go:embed shaders/point_fs.wgsl
var pointFragmentSource string

// Vertex stage defines, one per optional feature.
const (
	defineEyeDistanceScaling       = "EYE_DISTANCE_SCALING"
	defineEyeDistanceTranslucency  = "EYE_DISTANCE_TRANSLUCENCY"
	defineDistanceDisplayCondition = "DISTANCE_DISPLAY_CONDITION"
	defineDisableDepthDistance     = "DISABLE_DEPTH_DISTANCE"
)

// Fragment stage defines.
const (
	defineOpaque      = "OPAQUE"
	defineTranslucent = "TRANSLUCENT"
	definePick        = "PICK"
)

// pickKeyword names the pick variant derived from a point program.
const pickKeyword = "pick"

// vertexDefines lists the defines for a feature set in a fixed order.
func (f features) vertexDefines() []string {
	var defines []string
	if f.scaleByDistance {
		defines = append(defines, defineEyeDistanceScaling)
	}
	if f.translucencyByDistance {
		defines = append(defines, defineEyeDistanceTranslucency)
	}
	if f.distanceDisplayCondition {
		defines = append(defines, defineDistanceDisplayCondition)
	}
	if f.disableDepthDistance {
		defines = append(defines, defineDisableDepthDistance)
	}
	return defines
}

// newlyEnabled reports whether f turns on a feature that compiled lacks.
func (f features) newlyEnabled(compiled features) bool {
	return (f.scaleByDistance && !compiled.scaleByDistance) ||
		(f.translucencyByDistance && !compiled.translucencyByDistance) ||
		(f.distanceDisplayCondition && !compiled.distanceDisplayCondition) ||
		(f.disableDepthDistance && !compiled.disableDepthDistance)
}

// programOptions describes the point program for a feature set. fragment is
// the pass define, empty when the collection draws in a single pass.
func programOptions(f features, fragment, label string) shadercache.ProgramOptions {
	opts := shadercache.ProgramOptions{
		VertexSource: shadercache.ShaderSource{
			Sources: []string{pointVertexSource},
			Defines: f.vertexDefines(),
		},
		FragmentSource: shadercache.ShaderSource{
			Sources: []string{pointFragmentSource},
		},
		AttributeLocations: attributeLocations(),
		Label:              label,
	}
	if fragment != "" {
		opts.FragmentSource.Defines = []string{fragment}
	}
	return opts
}

// updateShaders recompiles the point programs when the blend option
// changed or a feature latch turned on since the last compile.
func (c *Collection) updateShaders(fs *FrameState, blendChanged bool) error {
	if fs.MinimumDisableDepthTestDistance != 0 {
		c.shader.disableDepthDistance = true
	}
	if !blendChanged && !c.shader.newlyEnabled(c.compiled) {
		return nil
	}

	want := c.shader
	both := c.blendOption == BlendOpaqueAndTranslucent

	if c.blendOption == BlendOpaque || both {
		pass := ""
		if both {
			pass = defineOpaque
		}
		opts := programOptions(want, pass, "points opaque")
		sp, err := c.shaders.Replace(c.sp, opts)
		c.sp = sp
		if err != nil {
			return fmt.Errorf("points: compile opaque program: %w", err)
		}
		c.spOptions = opts
	} else if c.sp != nil {
		if err := c.shaders.Release(c.sp); err != nil {
			Logger().Warn("points: release opaque program", "error", err)
		}
		c.sp = nil
	}

	if c.blendOption == BlendTranslucent || both {
		pass := ""
		if both {
			pass = defineTranslucent
		}
		opts := programOptions(want, pass, "points translucent")
		sp, err := c.shaders.Replace(c.spTranslucent, opts)
		c.spTranslucent = sp
		if err != nil {
			return fmt.Errorf("points: compile translucent program: %w", err)
		}
		c.spTranslucentOptions = opts
	} else if c.spTranslucent != nil {
		if err := c.shaders.Release(c.spTranslucent); err != nil {
			Logger().Warn("points: release translucent program", "error", err)
		}
		c.spTranslucent = nil
	}

	c.compiled = want
	c.stats.Recompiles++

	Logger().Debug("points: compiled programs",
		"id", c.id,
		"blend", c.blendOption,
		"defines", want.vertexDefines())
	return nil
}

// pickProgram returns the pick variant of the opaque or translucent
// program, compiling it on first use.
func (c *Collection) pickProgram(opaque bool) (*shadercache.Program, error) {
	base, opts := c.spTranslucent, c.spTranslucentOptions
	if opaque {
		base, opts = c.sp, c.spOptions
	}
	if p, ok := c.shaders.GetDerived(base, pickKeyword); ok {
		return p, nil
	}

	opts.FragmentSource = opts.FragmentSource.WithDefines(definePick)
	opts.Label += " pick"
	p, err := c.shaders.AcquireDerived(base, pickKeyword, opts)
	if err != nil {
		return nil, fmt.Errorf("points: compile pick program: %w", err)
	}
	return p, nil
}
