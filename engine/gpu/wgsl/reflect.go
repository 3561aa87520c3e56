package wgsl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Reflect extracts entry points, the uniform block layout and resource bindings from
// pre-processed WGSL source. The uniform block is the struct bound by the
// `var<uniform>` declaration at @group(0) @binding(0).
//
// Parameters:
//   - source: WGSL source after PreProcess
//
// Returns:
//   - *Reflection: the reflected shader interface
//   - error: if the uniform block type cannot be laid out
func Reflect(source string) (*Reflection, error) {
	clean := stripComments(source)
	r := &Reflection{
		VertexEntry:   entryPoint(clean, vertexEntryRegex),
		FragmentEntry: entryPoint(clean, fragmentEntryRegex),
		Uniforms:      map[string]UniformMember{},
		Bindings:      parseBindings(clean),
	}

	sizes, members := layoutAll(parseStructs(clean))
	for i, b := range r.Bindings {
		if b.Kind == BindingUniformBuffer || b.Kind == BindingStorageBuffer || b.Kind == BindingReadOnlyStorageBuffer {
			if l, ok := resolveLayout(b.Type, sizes); ok {
				r.Bindings[i].Size = l.size
			}
		}
		if b.Group != 0 || b.Binding != 0 || b.Kind != BindingUniformBuffer {
			continue
		}
		l, ok := sizes[b.Type]
		if !ok {
			return nil, fmt.Errorf("wgsl: uniform block %s: cannot resolve struct layout", b.Type)
		}
		r.UniformType = b.Type
		r.UniformSize = l.size
		for _, m := range members[b.Type] {
			r.Uniforms[m.Name] = m
		}
	}

	sort.SliceStable(r.Bindings, func(i, j int) bool {
		if r.Bindings[i].Group != r.Bindings[j].Group {
			return r.Bindings[i].Group < r.Bindings[j].Group
		}
		return r.Bindings[i].Binding < r.Bindings[j].Binding
	})
	return r, nil
}

// Merge combines the reflections of a separately compiled vertex and fragment stage.
// Entry points come from their own stage; uniform members and bindings are unioned.
//
// Parameters:
//   - vertex: reflection of the vertex stage source
//   - fragment: reflection of the fragment stage source
//
// Returns:
//   - *Reflection: the combined reflection
func Merge(vertex, fragment *Reflection) *Reflection {
	out := &Reflection{
		VertexEntry:   vertex.VertexEntry,
		FragmentEntry: fragment.FragmentEntry,
		UniformType:   vertex.UniformType,
		UniformSize:   max(vertex.UniformSize, fragment.UniformSize),
		Uniforms:      map[string]UniformMember{},
	}
	if out.UniformType == "" {
		out.UniformType = fragment.UniformType
	}
	for _, src := range []*Reflection{vertex, fragment} {
		for k, v := range src.Uniforms {
			out.Uniforms[k] = v
		}
	}
	seen := map[[2]int]bool{}
	for _, src := range []*Reflection{vertex, fragment} {
		for _, b := range src.Bindings {
			key := [2]int{b.Group, b.Binding}
			if !seen[key] {
				seen[key] = true
				out.Bindings = append(out.Bindings, b)
			}
		}
	}
	sort.SliceStable(out.Bindings, func(i, j int) bool {
		if out.Bindings[i].Group != out.Bindings[j].Group {
			return out.Bindings[i].Group < out.Bindings[j].Group
		}
		return out.Bindings[i].Binding < out.Bindings[j].Binding
	})
	return out
}

// Locate resolves a uniform name, optionally indexed as "name[i]", to its byte offset
// and element size inside the uniform block.
//
// Parameters:
//   - name: the member name with an optional index suffix
//
// Returns:
//   - offset: byte offset of the element
//   - size: byte size of one element
//   - ok: false if the member is unknown or the index is out of range
func (r *Reflection) Locate(name string) (offset, size uint64, ok bool) {
	base, index := name, 0
	if open := strings.IndexByte(name, '['); open > 0 && strings.HasSuffix(name, "]") {
		n, err := strconv.Atoi(name[open+1 : len(name)-1])
		if err != nil || n < 0 {
			return 0, 0, false
		}
		base, index = name[:open], n
	}
	m, found := r.Uniforms[base]
	if !found {
		return 0, 0, false
	}
	if m.Count == 0 {
		if index != 0 {
			return 0, 0, false
		}
		return m.Offset, m.Size, true
	}
	if index >= m.Count {
		return 0, 0, false
	}
	return m.Offset + uint64(index)*m.Stride, m.Size, true
}

// MaxGroup returns the highest bind group index used, or -1 when there are no bindings.
func (r *Reflection) MaxGroup() int {
	g := -1
	for _, b := range r.Bindings {
		g = max(g, b.Group)
	}
	return g
}
