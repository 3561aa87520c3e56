package wgsl

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// structRegex captures a struct's name and body.
	structRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// fieldRegex captures a member name and type after any attributes.
	fieldRegex = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)

	// builtinRegex detects @builtin(...) members, which never occupy buffer space.
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// vertexEntryRegex and fragmentEntryRegex capture entry point names.
	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\s+fn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\s+fn\s+(\w+)`)

	// bindingRegex captures group, binding, address space, name and type from a resource
	// declaration, e.g. `@group(0) @binding(0) var<uniform> u: Uniforms;`.
	bindingRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseStructs returns every struct declaration in comment-free source.
func parseStructs(source string) []structDecl {
	matches := structRegex.FindAllStringSubmatch(source, -1)
	out := make([]structDecl, 0, len(matches))
	for _, m := range matches {
		out = append(out, structDecl{name: m[1], fields: parseFields(m[2])})
	}
	return out
}

// parseFields splits a struct body into members. Commas inside angle brackets
// (array<vec4<f32>, 64>) do not separate members.
func parseFields(body string) []structField {
	var fields []structField
	for _, part := range splitTopLevel(body) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := fieldRegex.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		fields = append(fields, structField{
			name:     m[1],
			typeName: normalizeType(m[2]),
			builtin:  builtinRegex.MatchString(part),
		})
	}
	return fields
}

// parseBindings returns every @group/@binding resource declaration in source order.
func parseBindings(source string) []Binding {
	var out []Binding
	for _, m := range bindingRegex.FindAllStringSubmatch(source, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		b := Binding{
			Group:   group,
			Binding: binding,
			Name:    m[4],
			Type:    normalizeType(m[5]),
		}
		classify(&b, strings.TrimSpace(m[3]))
		out = append(out, b)
	}
	return out
}

// classify fills Kind and Sample from the address space and type.
func classify(b *Binding, addressSpace string) {
	switch {
	case addressSpace == "uniform":
		b.Kind = BindingUniformBuffer
	case strings.HasPrefix(addressSpace, "storage"):
		b.Kind = BindingReadOnlyStorageBuffer
		if strings.Contains(addressSpace, "read_write") {
			b.Kind = BindingStorageBuffer
		}
	case b.Type == "sampler":
		b.Kind = BindingSampler
	case b.Type == "sampler_comparison":
		b.Kind = BindingComparisonSampler
	case strings.HasPrefix(b.Type, "texture_depth_"):
		b.Kind = BindingDepthTexture
		b.Sample = SampleDepth
	case strings.HasPrefix(b.Type, "texture_"):
		b.Kind = BindingTexture
		switch {
		case strings.Contains(b.Type, "<i32>"):
			b.Sample = SampleSint
		case strings.Contains(b.Type, "<u32>"):
			b.Sample = SampleUint
		}
	}
}

// entryPoint returns the first function marked with the given stage regex.
func entryPoint(source string, re *regexp.Regexp) string {
	if m := re.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	return ""
}

// normalizeType drops whitespace and a trailing comma so "array<vec4<f32>, 64>," and
// "array<vec4<f32>,64>" compare equal.
func normalizeType(t string) string {
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, ",")
	return strings.Join(strings.Fields(t), "")
}

// splitTopLevel splits at commas that are not nested inside angle brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripComments removes // line comments and nestable /* */ block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case depth == 0 && source[i] == '/' && source[i+1] == '/':
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
