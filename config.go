package points

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"
)

// Config holds collection and point defaults loaded from a TOML document.
//
//	show = true
//	blend_option = "opaque_and_translucent"
//
//	[point]
//	pixel_size = 8
//	color = [1.0, 0.5, 0.0, 1.0]
//	disable_depth_test_distance = inf
type Config struct {
	Show                    bool        `toml:"show"`
	BlendOption             BlendOption `toml:"blend_option"`
	DebugShowBoundingVolume bool        `toml:"debug_show_bounding_volume"`

	Point PointConfig `toml:"point"`
}

// PointConfig holds the defaults applied by Config.PointOptions.
// Colors are RGBA in [0, 1].
type PointConfig struct {
	PixelSize                float64    `toml:"pixel_size"`
	Color                    [4]float64 `toml:"color"`
	OutlineColor             [4]float64 `toml:"outline_color"`
	OutlineWidth             float64    `toml:"outline_width"`
	DisableDepthTestDistance float64    `toml:"disable_depth_test_distance"`
}

// DefaultConfig returns the configuration equivalent to New without options
// and DefaultPointOptions.
func DefaultConfig() Config {
	d := DefaultPointOptions()
	return Config{
		Show:        true,
		BlendOption: BlendOpaque,
		Point: PointConfig{
			PixelSize:    d.PixelSize,
			Color:        colorArray(d.Color),
			OutlineColor: colorArray(d.OutlineColor),
		},
	}
}

// ParseConfig decodes a TOML document over DefaultConfig. Keys missing from
// data keep their defaults; unknown keys are an error.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("points: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes the TOML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("points: load config: %w", err)
	}
	return ParseConfig(data)
}

// Validate reports whether the configured values are usable.
func (c Config) Validate() error {
	if c.BlendOption > BlendOpaqueAndTranslucent {
		return fmt.Errorf("%w: blend option %d", ErrInvalidArgument, uint8(c.BlendOption))
	}
	opts := c.PointOptions()
	return opts.validate()
}

// Options converts the collection settings to functional options for New.
func (c Config) Options() []Option {
	return []Option{
		WithShow(c.Show),
		WithBlendOption(c.BlendOption),
		WithDebugShowBoundingVolume(c.DebugShowBoundingVolume),
	}
}

// PointOptions returns DefaultPointOptions with the configured point
// defaults applied.
func (c Config) PointOptions() PointOptions {
	o := DefaultPointOptions()
	o.PixelSize = c.Point.PixelSize
	o.Color = arrayColor(c.Point.Color)
	o.OutlineColor = arrayColor(c.Point.OutlineColor)
	o.OutlineWidth = c.Point.OutlineWidth
	o.DisableDepthTestDistance = c.Point.DisableDepthTestDistance
	return o
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("points: marshal config: %w", err)
	}
	return data, nil
}

func colorArray(c gputypes.Color) [4]float64 {
	return [4]float64{c.R, c.G, c.B, c.A}
}

func arrayColor(a [4]float64) gputypes.Color {
	return gputypes.Color{R: a[0], G: a[1], B: a[2], A: a[3]}
}
