package wgsl

import (
	"strconv"
	"strings"
)

// primitiveLayouts holds size and alignment of host-shareable WGSL types.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var primitiveLayouts = map[string]typeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2<f32>": {8, 8}, "vec2f": {8, 8},
	"vec3<f32>": {12, 16}, "vec3f": {12, 16},
	"vec4<f32>": {16, 16}, "vec4f": {16, 16},
	"vec2<i32>": {8, 8}, "vec2i": {8, 8},
	"vec3<i32>": {12, 16}, "vec3i": {12, 16},
	"vec4<i32>": {16, 16}, "vec4i": {16, 16},
	"vec2<u32>": {8, 8}, "vec2u": {8, 8},
	"vec3<u32>": {12, 16}, "vec3u": {12, 16},
	"vec4<u32>": {16, 16}, "vec4u": {16, 16},

	// matCxR: C columns, each a vecR padded to its alignment.
	"mat2x2<f32>": {16, 8}, "mat2x2f": {16, 8},
	"mat3x3<f32>": {48, 16}, "mat3x3f": {48, 16},
	"mat4x4<f32>": {64, 16}, "mat4x4f": {64, 16},
	"mat3x4<f32>": {48, 16}, "mat4x3<f32>": {64, 16},
}

// alignUp rounds value up to a multiple of the power-of-two alignment.
func alignUp(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// arrayType splits "array<T,N>" into its element type and count.
// Runtime-sized arrays report count 0.
func arrayType(t string) (elem string, count int, ok bool) {
	inner, found := strings.CutPrefix(t, "array<")
	if !found || !strings.HasSuffix(inner, ">") {
		return "", 0, false
	}
	inner = inner[:len(inner)-1]
	parts := splitTopLevel(inner)
	elem = parts[0]
	if len(parts) == 2 {
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", 0, false
		}
		count = n
	}
	return elem, count, true
}

// resolveLayout returns the size and alignment of t given already-resolved structs.
func resolveLayout(t string, structs map[string]typeLayout) (typeLayout, bool) {
	if l, ok := primitiveLayouts[t]; ok {
		return l, true
	}
	if l, ok := structs[t]; ok {
		return l, true
	}
	elem, count, ok := arrayType(t)
	if !ok {
		return typeLayout{}, false
	}
	el, ok := resolveLayout(elem, structs)
	if !ok {
		return typeLayout{}, false
	}
	// Uniform-space arrays use a 16-byte element stride.
	stride := alignUp(max(el.align, 16), el.size)
	if count == 0 {
		return typeLayout{stride, max(el.align, 16)}, true
	}
	return typeLayout{uint64(count) * stride, max(el.align, 16)}, true
}

// layoutStruct places every member at its aligned offset and returns the member table
// together with the struct's size and alignment.
func layoutStruct(s structDecl, structs map[string]typeLayout) ([]UniformMember, typeLayout, bool) {
	var (
		members  []UniformMember
		offset   uint64
		maxAlign uint64 = 1
	)
	for _, f := range s.fields {
		if f.builtin {
			continue
		}
		l, ok := resolveLayout(f.typeName, structs)
		if !ok {
			return nil, typeLayout{}, false
		}
		offset = alignUp(l.align, offset)
		m := UniformMember{Name: f.name, Type: f.typeName, Offset: offset, Size: l.size}
		if elem, count, isArray := arrayType(f.typeName); isArray && count > 0 {
			el, _ := resolveLayout(elem, structs)
			m.Count = count
			m.Stride = l.size / uint64(count)
			m.Size = el.size
		}
		members = append(members, m)
		offset += l.size
		maxAlign = max(maxAlign, l.align)
	}
	return members, typeLayout{alignUp(maxAlign, offset), maxAlign}, true
}

// layoutAll resolves every struct, iterating until nested struct members settle.
func layoutAll(decls []structDecl) (map[string]typeLayout, map[string][]UniformMember) {
	sizes := make(map[string]typeLayout, len(decls))
	members := make(map[string][]UniformMember, len(decls))
	pending := decls
	for len(pending) > 0 {
		var next []structDecl
		for _, d := range pending {
			if m, l, ok := layoutStruct(d, sizes); ok {
				sizes[d.name] = l
				members[d.name] = m
			} else {
				next = append(next, d)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return sizes, members
}
