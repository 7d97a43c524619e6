package shadercache

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/points/internal/cache"
)

// ShaderSource is shader text split into fragments plus the preprocessor
// defines it is compiled with.
type ShaderSource struct {
	// Sources are concatenated in order, separated by newlines.
	Sources []string

	// Defines are the names considered defined by #ifdef / #ifndef.
	// Order and duplicates do not matter.
	Defines []string
}

// expansion is a memoized preprocessor result.
type expansion struct {
	text string
	err  error
}

// expansions memoizes canonical text by raw input, since collections rebuild
// the same handful of variants every time their feature set changes.
var expansions = cache.NewMemo[string, expansion](256)

// Canonical returns the preprocessed text of s. Equal sources with equal
// define sets produce byte-identical text.
func (s ShaderSource) Canonical() (string, error) {
	defines := s.sortedDefines()

	var key strings.Builder
	for _, d := range defines {
		key.WriteString(d)
		key.WriteByte(0)
	}
	key.WriteByte(0)
	for _, src := range s.Sources {
		key.WriteString(src)
		key.WriteByte(0)
	}

	e := expansions.GetOrCreate(key.String(), func() expansion {
		text, err := expand(s.Sources, defines)
		return expansion{text: text, err: err}
	})
	return e.text, e.err
}

// HasDefine reports whether name is among the defines.
func (s ShaderSource) HasDefine(name string) bool {
	return slices.Contains(s.Defines, name)
}

// WithDefines returns a copy of s with extra defines appended.
func (s ShaderSource) WithDefines(names ...string) ShaderSource {
	return ShaderSource{
		Sources: s.Sources,
		Defines: append(slices.Clone(s.Defines), names...),
	}
}

func (s ShaderSource) sortedDefines() []string {
	defines := make([]string, 0, len(s.Defines))
	for _, d := range s.Defines {
		d = strings.TrimSpace(d)
		if d != "" {
			defines = append(defines, d)
		}
	}
	slices.Sort(defines)
	return slices.Compact(defines)
}

// condFrame is one level of #ifdef nesting.
type condFrame struct {
	parentActive bool
	taken        bool
	seenElse     bool
}

// expand runs the preprocessor over the concatenated sources. Blank lines are
// dropped and trailing whitespace trimmed.
func expand(sources []string, defines []string) (string, error) {
	defined := make(map[string]bool, len(defines))
	for _, d := range defines {
		defined[d] = true
	}

	var out strings.Builder
	for _, d := range defines {
		out.WriteString("// #define ")
		out.WriteString(d)
		out.WriteByte('\n')
	}

	var stack []condFrame
	active := true
	lineNo := 0

	for _, src := range sources {
		for _, line := range strings.Split(src, "\n") {
			lineNo++
			trimmed := strings.TrimSpace(line)

			directive, arg, isDirective := parseDirective(trimmed)
			if isDirective {
				switch directive {
				case "#ifdef", "#ifndef":
					if arg == "" {
						return "", fmt.Errorf("%w: line %d: %s without name", ErrInvalidSource, lineNo, directive)
					}
					cond := defined[arg]
					if directive == "#ifndef" {
						cond = !cond
					}
					stack = append(stack, condFrame{parentActive: active, taken: cond})
					active = active && cond
				case "#else":
					if len(stack) == 0 {
						return "", fmt.Errorf("%w: line %d: #else without #ifdef", ErrInvalidSource, lineNo)
					}
					top := &stack[len(stack)-1]
					if top.seenElse {
						return "", fmt.Errorf("%w: line %d: duplicate #else", ErrInvalidSource, lineNo)
					}
					top.seenElse = true
					active = top.parentActive && !top.taken
				case "#endif":
					if len(stack) == 0 {
						return "", fmt.Errorf("%w: line %d: #endif without #ifdef", ErrInvalidSource, lineNo)
					}
					active = stack[len(stack)-1].parentActive
					stack = stack[:len(stack)-1]
				}
				continue
			}

			if !active || trimmed == "" {
				continue
			}
			out.WriteString(strings.TrimRight(line, " \t\r"))
			out.WriteByte('\n')
		}
	}

	if len(stack) != 0 {
		return "", fmt.Errorf("%w: %d unterminated #ifdef", ErrInvalidSource, len(stack))
	}
	return out.String(), nil
}

// parseDirective splits a preprocessor line into directive and argument.
func parseDirective(line string) (directive, arg string, ok bool) {
	if !strings.HasPrefix(line, "#") {
		return "", "", false
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "#ifdef", "#ifndef":
		if len(fields) > 1 {
			arg = fields[1]
		}
		return fields[0], arg, true
	case "#else", "#endif":
		return fields[0], "", true
	}
	return "", "", false
}
