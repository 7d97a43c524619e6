package shadercache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalExpandsConditionals(t *testing.T) {
	src := ShaderSource{
		Sources: []string{
			"a\n#ifdef X\nx\n#ifndef Y\nnot-y\n#else\ny\n#endif\n#else\nno-x\n#endif\nz   \n\n",
		},
	}

	tests := []struct {
		name    string
		defines []string
		want    string
	}{
		{"none", nil, "a\nno-x\nz\n"},
		{"x", []string{"X"}, "// #define X\na\nx\nnot-y\nz\n"},
		{"x and y", []string{"Y", "X"}, "// #define X\n// #define Y\na\nx\ny\nz\n"},
		{"y only", []string{"Y"}, "// #define Y\na\nno-x\nz\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := src
			s.Defines = tt.defines
			got, err := s.Canonical()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalConcatenatesSources(t *testing.T) {
	s := ShaderSource{Sources: []string{"fn a() {}", "fn b() {}"}}
	got, err := s.Canonical()
	require.NoError(t, err)
	assert.Equal(t, "fn a() {}\nfn b() {}\n", got)
}

func TestCanonicalRejectsUnbalancedDirectives(t *testing.T) {
	for _, body := range []string{
		"#ifdef A\n",
		"#endif\n",
		"#else\n",
		"#ifdef A\n#else\n#else\n#endif\n",
		"#ifdef\n#endif\n",
	} {
		_, err := ShaderSource{Sources: []string{body}}.Canonical()
		assert.ErrorIs(t, err, ErrInvalidSource, body)
	}
}

func TestWithDefinesDoesNotAlias(t *testing.T) {
	base := ShaderSource{Sources: []string{"x"}, Defines: make([]string, 1, 4)}
	base.Defines[0] = "A"

	a := base.WithDefines("B")
	b := base.WithDefines("C")

	assert.True(t, a.HasDefine("B"))
	assert.False(t, a.HasDefine("C"))
	assert.True(t, b.HasDefine("C"))
	assert.Equal(t, []string{"A"}, base.Defines)
}
