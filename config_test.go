package points

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
show = false
blend_option = "opaque_and_translucent"
debug_show_bounding_volume = true

[point]
pixel_size = 8
color = [1.0, 0.5, 0.0, 1.0]
disable_depth_test_distance = inf
`))
	require.NoError(t, err)

	assert.False(t, cfg.Show)
	assert.Equal(t, BlendOpaqueAndTranslucent, cfg.BlendOption)
	assert.True(t, cfg.DebugShowBoundingVolume)

	o := cfg.PointOptions()
	assert.Equal(t, 8.0, o.PixelSize)
	assert.Equal(t, 0.5, o.Color.G)
	assert.True(t, math.IsInf(o.DisableDepthTestDistance, 1))
	assert.Equal(t, 0.0, o.OutlineColor.A, "missing keys keep defaults")

	c := New(newFakeDevice(), nil, cfg.Options()...)
	defer c.Destroy()
	assert.False(t, c.Show())
	assert.Equal(t, BlendOpaqueAndTranslucent, c.BlendOption())
	assert.True(t, c.DebugShowBoundingVolume())
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "colour = 1"},
		{"bad blend", `blend_option = "additive"`},
		{"negative size", "[point]\npixel_size = -2"},
		{"syntax", "show = "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			assert.Error(t, err)
		})
	}

	_, err := ParseConfig([]byte("[point]\noutline_width = -1"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlendOption = BlendTranslucent
	cfg.Point.OutlineWidth = 1.5

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "translucent")

	got, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.toml")
	require.NoError(t, os.WriteFile(path, []byte("[point]\npixel_size = 3\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Point.PixelSize)
	assert.True(t, cfg.Show)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultConfigMatchesDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultPointOptions(), cfg.PointOptions())
	require.NoError(t, cfg.Validate())
}
