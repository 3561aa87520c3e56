package wgsl

import (
	_ "embed"
	"fmt"
	"maps"
	"regexp"
	"strings"
)

// FullscreenSource is the vertex stage shared by every full-screen pass. It consumes the
// vec2 corner of the screen quad and emits clip position and uv.
//
//go:embed assets/fullscreen.wgsl
var FullscreenSource string

// QuaternionSource holds quat_rotate and instance_model for instanced transforms.
//
//go:embed assets/quaternion.wgsl
var QuaternionSource string

// DepthSource holds depth loading and world position reconstruction helpers.
//
//go:embed assets/depth.wgsl
var DepthSource string

// includeRegex matches `// @oxy:include name` on its own line.
var includeRegex = regexp.MustCompile(`^\s*//\s*@oxy:include\s+([\w.-]+)\s*$`)

// DefaultIncludes returns a fresh copy of the built-in snippet registry.
func DefaultIncludes() map[string]string {
	return map[string]string{
		"fullscreen": FullscreenSource,
		"quaternion": QuaternionSource,
		"depth":      DepthSource,
	}
}

// PreProcess replaces every include line in source with its registered snippet.
// Snippets may include other snippets; each snippet is emitted at most once and
// include cycles are reported as errors.
//
// Parameters:
//   - source: raw WGSL source
//   - includes: snippet registry, merged over DefaultIncludes; may be nil
//
// Returns:
//   - string: WGSL source with includes expanded
//   - error: if an include is unknown or cyclic
func PreProcess(source string, includes map[string]string) (string, error) {
	registry := DefaultIncludes()
	maps.Copy(registry, includes)

	p := &preProcessor{registry: registry, emitted: map[string]bool{}, active: map[string]bool{}}
	return p.expand(source, "")
}

type preProcessor struct {
	registry map[string]string
	emitted  map[string]bool
	active   map[string]bool
}

func (p *preProcessor) expand(source, from string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		m := includeRegex.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		name := m[1]
		if p.active[name] {
			return "", fmt.Errorf("wgsl: include cycle through %q at %sline %d", name, where(from), i+1)
		}
		if p.emitted[name] {
			continue
		}
		snippet, ok := p.registry[name]
		if !ok {
			return "", fmt.Errorf("wgsl: %sline %d: unknown include %q", where(from), i+1, name)
		}

		p.active[name] = true
		expanded, err := p.expand(snippet, name)
		delete(p.active, name)
		if err != nil {
			return "", err
		}
		p.emitted[name] = true
		out = append(out, expanded)
	}
	return strings.Join(out, "\n"), nil
}

func where(from string) string {
	if from == "" {
		return ""
	}
	return fmt.Sprintf("include %q ", from)
}
