// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultMaximumPointSize is the largest point sprite, in pixels. Quads
	// have no hardware limit; the clamp keeps runaway scale-by-distance
	// values from filling the screen.
	DefaultMaximumPointSize = 256

	// DefaultMaxVerticesPerDraw caps instances per draw.
	DefaultMaxVerticesPerDraw = 1 << 16
)

// ShaderFormat selects how program sources reach the HAL.
type ShaderFormat uint8

const (
	// ShaderFormatSPIRV compiles WGSL to SPIR-V with naga.
	ShaderFormatSPIRV ShaderFormat = iota

	// ShaderFormatWGSL hands WGSL to the HAL unchanged.
	ShaderFormatWGSL
)

// String returns the configuration name of the format.
func (f ShaderFormat) String() string {
	switch f {
	case ShaderFormatSPIRV:
		return "spirv"
	case ShaderFormatWGSL:
		return "wgsl"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f ShaderFormat) MarshalText() ([]byte, error) {
	if f > ShaderFormatWGSL {
		return nil, fmt.Errorf("%w: shader format %d", ErrInvalidConfig, uint8(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ShaderFormat) UnmarshalText(text []byte) error {
	switch string(text) {
	case "spirv":
		*f = ShaderFormatSPIRV
	case "wgsl":
		*f = ShaderFormatWGSL
	default:
		return fmt.Errorf("%w: shader format %q", ErrInvalidConfig, text)
	}
	return nil
}

// Format is a texture format named in configuration files. The zero Format
// means "no attachment".
type Format gputypes.TextureFormat

var formatNames = []struct {
	name   string
	format Format
}{
	{"bgra8unorm", Format(gputypes.TextureFormatBGRA8Unorm)},
	{"rgba8unorm", Format(gputypes.TextureFormatRGBA8Unorm)},
	{"depth24plus-stencil8", Format(gputypes.TextureFormatDepth24PlusStencil8)},
}

// String returns the configuration name of the format.
func (f Format) String() string {
	if f == 0 {
		return "none"
	}
	for _, n := range formatNames {
		if n.format == f {
			return n.name
		}
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" || s == "none" {
		*f = 0
		return nil
	}
	for _, n := range formatNames {
		if n.name == s {
			*f = n.format
			return nil
		}
	}
	return fmt.Errorf("%w: texture format %q", ErrInvalidConfig, s)
}

// Config holds backend limits and render target formats.
//
//	maximum_point_size = 256
//	color_format = "bgra8unorm"
//	depth_format = "depth24plus-stencil8"
//	sample_count = 4
//	shader_format = "spirv"
type Config struct {
	MaximumPointSize   float32      `toml:"maximum_point_size"`
	MaxVerticesPerDraw int          `toml:"max_vertices_per_draw"`
	ColorFormat        Format       `toml:"color_format"`
	DepthFormat        Format       `toml:"depth_format"`
	SampleCount        uint32       `toml:"sample_count"`
	ShaderFormat       ShaderFormat `toml:"shader_format"`
}

// DefaultConfig returns single-sampled BGRA rendering with a
// depth-stencil attachment and SPIR-V shaders.
func DefaultConfig() Config {
	return Config{
		MaximumPointSize:   DefaultMaximumPointSize,
		MaxVerticesPerDraw: DefaultMaxVerticesPerDraw,
		ColorFormat:        Format(gputypes.TextureFormatBGRA8Unorm),
		DepthFormat:        Format(gputypes.TextureFormatDepth24PlusStencil8),
		SampleCount:        1,
		ShaderFormat:       ShaderFormatSPIRV,
	}
}

// ParseConfig decodes a TOML document over DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("wgpu: parse config: %w", err)
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
		return Config{}, fmt.Errorf("wgpu: load config: %w", err)
	}
	return ParseConfig(data)
}

// Validate reports whether the configuration can drive a device.
func (c Config) Validate() error {
	switch {
	case c.MaximumPointSize <= 0:
		return fmt.Errorf("%w: maximum point size %g", ErrInvalidConfig, c.MaximumPointSize)
	case c.MaxVerticesPerDraw <= 0:
		return fmt.Errorf("%w: max vertices per draw %d", ErrInvalidConfig, c.MaxVerticesPerDraw)
	case c.ColorFormat == 0:
		return fmt.Errorf("%w: missing color format", ErrInvalidConfig)
	case c.SampleCount != 1 && c.SampleCount != 4:
		return fmt.Errorf("%w: sample count %d", ErrInvalidConfig, c.SampleCount)
	case c.ShaderFormat > ShaderFormatWGSL:
		return fmt.Errorf("%w: shader format %d", ErrInvalidConfig, uint8(c.ShaderFormat))
	}
	return nil
}
