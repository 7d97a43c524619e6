package points

import (
	"fmt"
	"strings"
)

// BlendOption controls which passes a collection's points are drawn in.
type BlendOption uint8

const (
	// BlendOpaque draws every point in the opaque pass.
	BlendOpaque BlendOption = iota

	// BlendTranslucent draws every point with alpha blending.
	BlendTranslucent

	// BlendOpaqueAndTranslucent draws each chunk twice: opaque fragments in
	// the opaque pass, translucent fragments in the translucent pass.
	BlendOpaqueAndTranslucent
)

// String returns the string representation of BlendOption.
func (b BlendOption) String() string {
	switch b {
	case BlendOpaque:
		return "opaque"
	case BlendTranslucent:
		return "translucent"
	case BlendOpaqueAndTranslucent:
		return "opaque_and_translucent"
	default:
		return fmt.Sprintf("BlendOption(%d)", uint8(b))
	}
}

func (b BlendOption) valid() bool { return b <= BlendOpaqueAndTranslucent }

// MarshalText implements encoding.TextMarshaler.
func (b BlendOption) MarshalText() ([]byte, error) {
	if !b.valid() {
		return nil, fmt.Errorf("%w: blend option %d", ErrInvalidArgument, uint8(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BlendOption) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "opaque":
		*b = BlendOpaque
	case "translucent":
		*b = BlendTranslucent
	case "opaque_and_translucent":
		*b = BlendOpaqueAndTranslucent
	default:
		return fmt.Errorf("%w: unknown blend option %q", ErrInvalidArgument, text)
	}
	return nil
}

// SceneMode is how the scene is projected.
type SceneMode uint8

const (
	// Scene3D renders the globe in three dimensions.
	Scene3D SceneMode = iota

	// Scene2D renders a flat map seen from above.
	Scene2D

	// SceneColumbusView renders a flat map with heights.
	SceneColumbusView

	// SceneMorphing is a transition between modes.
	SceneMorphing
)

// String returns the string representation of SceneMode.
func (m SceneMode) String() string {
	switch m {
	case Scene3D:
		return "3D"
	case Scene2D:
		return "2D"
	case SceneColumbusView:
		return "ColumbusView"
	case SceneMorphing:
		return "Morphing"
	default:
		return fmt.Sprintf("SceneMode(%d)", uint8(m))
	}
}

// SplitDirection selects which side of the split position a point is drawn
// on when the scene is split for side-by-side comparison.
type SplitDirection int8

const (
	// SplitLeft draws the point left of the split position only.
	SplitLeft SplitDirection = -1

	// SplitNone draws the point on both sides.
	SplitNone SplitDirection = 0

	// SplitRight draws the point right of the split position only.
	SplitRight SplitDirection = 1
)
