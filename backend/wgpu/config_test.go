// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
maximum_point_size = 128
color_format = "rgba8unorm"
depth_format = "none"
sample_count = 4
shader_format = "wgsl"
`))
	require.NoError(t, err)

	assert.Equal(t, float32(128), cfg.MaximumPointSize)
	assert.Equal(t, DefaultMaxVerticesPerDraw, cfg.MaxVerticesPerDraw)
	assert.Equal(t, Format(gputypes.TextureFormatRGBA8Unorm), cfg.ColorFormat)
	assert.Equal(t, Format(0), cfg.DepthFormat)
	assert.Equal(t, uint32(4), cfg.SampleCount)
	assert.Equal(t, ShaderFormatWGSL, cfg.ShaderFormat)
}

func TestParseConfigEmptyKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", `point_size = 3`},
		{"unknown format", `color_format = "r8unorm"`},
		{"unknown shader format", `shader_format = "glsl"`},
		{"sample count", `sample_count = 2`},
		{"point size", `maximum_point_size = 0`},
		{"vertices", `max_vertices_per_draw = -1`},
		{"no color", `color_format = "none"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backend.toml")
	require.NoError(t, os.WriteFile(path, []byte(`sample_count = 4`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), cfg.SampleCount)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatText(t *testing.T) {
	for _, name := range []string{"bgra8unorm", "rgba8unorm", "depth24plus-stencil8", "none"} {
		var f Format
		require.NoError(t, f.UnmarshalText([]byte(name)))
		text, err := f.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, name, string(text))
	}

	var f Format
	assert.ErrorIs(t, f.UnmarshalText([]byte("bogus")), ErrInvalidConfig)
}

func TestShaderFormatText(t *testing.T) {
	for _, sf := range []ShaderFormat{ShaderFormatSPIRV, ShaderFormatWGSL} {
		text, err := sf.MarshalText()
		require.NoError(t, err)
		var got ShaderFormat
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, sf, got)
	}

	_, err := ShaderFormat(9).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "unknown", ShaderFormat(9).String())
}
