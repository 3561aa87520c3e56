package gpu

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/wgsl"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipelineKey identifies one render pipeline variant of a shader. Fixed-function state
// the Device exposes as mutable is baked into WebGPU pipelines, so each combination in
// use gets its own cached pipeline.
type pipelineKey struct {
	shader     Handle
	colors     string
	depth      bool
	depthWrite bool
	blend      bool
	src        BlendFactor
	dst        BlendFactor
	cull       CullMode
	vertex     string
	instance   string
	strip      bool
}

// target is the resolved attachment set of the bound framebuffer for one pass.
type target struct {
	colors  []*wgpu.TextureView
	formats []wgpu.TextureFormat
	depth   *wgpu.TextureView
	width   int
	height  int
}

func (t target) formatKey() string {
	parts := make([]string, len(t.formats))
	for i, f := range t.formats {
		parts[i] = fmt.Sprint(uint32(f))
	}
	return strings.Join(parts, ",")
}

// pipeline returns the cached pipeline for key, creating it on first use.
func (d *wgpuDevice) pipeline(key pipelineKey, s *shaderEntry, t target, vertex, instance VertexLayout) (*wgpu.RenderPipeline, error) {
	if p, ok := d.pipelines[key]; ok {
		return p, nil
	}

	buffers := []wgpu.VertexBufferLayout{vertexBufferLayout(vertex, wgpu.VertexStepModeVertex, 0)}
	if len(instance) > 0 {
		buffers = append(buffers, vertexBufferLayout(instance, wgpu.VertexStepModeInstance, len(vertex)))
	}

	var fragment *wgpu.FragmentState
	if s.reflection.FragmentEntry != "" {
		targets := make([]wgpu.ColorTargetState, len(t.formats))
		for i, f := range t.formats {
			targets[i] = wgpu.ColorTargetState{Format: f, WriteMask: wgpu.ColorWriteMaskAll}
			if key.blend {
				targets[i].Blend = &wgpu.BlendState{
					Color: wgpu.BlendComponent{SrcFactor: wgpuBlendFactor(key.src), DstFactor: wgpuBlendFactor(key.dst), Operation: wgpu.BlendOperationAdd},
					Alpha: wgpu.BlendComponent{SrcFactor: wgpuBlendFactor(key.src), DstFactor: wgpuBlendFactor(key.dst), Operation: wgpu.BlendOperationAdd},
				}
			}
		}
		fragment = &wgpu.FragmentState{
			Module:     s.fragment,
			EntryPoint: s.reflection.FragmentEntry,
			Targets:    targets,
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if key.depth {
		depthStencil = &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled: key.depthWrite,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	topology := wgpu.PrimitiveTopologyTriangleList
	if key.strip {
		topology = wgpu.PrimitiveTopologyTriangleStrip
	}

	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  s.label + " Render Pipeline",
		Layout: s.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     s.vertex,
			EntryPoint: s.reflection.VertexEntry,
			Buffers:    buffers,
		},
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpuCullMode(key.cull),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: shader %q pipeline: %w", s.label, err)
	}
	d.pipelines[key] = p
	return p, nil
}

// vertexBufferLayout converts a float attribute list into a WebGPU buffer layout with
// consecutive shader locations starting at firstLocation.
func vertexBufferLayout(l VertexLayout, step wgpu.VertexStepMode, firstLocation int) wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, len(l))
	offset := 0
	for i, a := range l {
		attrs[i] = wgpu.VertexAttribute{
			Format:         vertexFormat(a.Components),
			Offset:         uint64(offset * 4),
			ShaderLocation: uint32(firstLocation + i),
		}
		offset += a.Components
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(l.Stride() * 4),
		StepMode:    step,
		Attributes:  attrs,
	}
}

func vertexFormat(components int) wgpu.VertexFormat {
	switch components {
	case 1:
		return wgpu.VertexFormatFloat32
	case 2:
		return wgpu.VertexFormatFloat32x2
	case 3:
		return wgpu.VertexFormatFloat32x3
	default:
		return wgpu.VertexFormatFloat32x4
	}
}

// layoutEntry converts a reflected binding into a bind group layout entry visible to
// both stages.
func layoutEntry(b wgsl.Binding) (wgpu.BindGroupLayoutEntry, error) {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    uint32(b.Binding),
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
	}
	switch b.Kind {
	case wgsl.BindingUniformBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = b.Size
	case wgsl.BindingTexture:
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		switch b.Sample {
		case wgsl.SampleSint:
			entry.Texture.SampleType = wgpu.TextureSampleTypeSint
		case wgsl.SampleUint:
			entry.Texture.SampleType = wgpu.TextureSampleTypeUint
		default:
			entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		}
	case wgsl.BindingDepthTexture:
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
	case wgsl.BindingSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	default:
		return entry, fmt.Errorf("binding %s (%s) is not supported", b.Name, b.Type)
	}
	return entry, nil
}

func wgpuFormat(f TextureFormat) wgpu.TextureFormat {
	switch f {
	case FormatRGBA8Srgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case FormatRGBA16F:
		return wgpu.TextureFormatRGBA16Float
	case FormatR8:
		return wgpu.TextureFormatR8Unorm
	case FormatR16F:
		return wgpu.TextureFormatR16Float
	case FormatDepth32F:
		return wgpu.TextureFormatDepth32Float
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}

func wgpuSampling(filter FilterMode, wrap WrapMode) (wgpu.FilterMode, wgpu.AddressMode) {
	f := wgpu.FilterModeLinear
	if filter == FilterNearest {
		f = wgpu.FilterModeNearest
	}
	a := wgpu.AddressModeRepeat
	if wrap == WrapClamp {
		a = wgpu.AddressModeClampToEdge
	}
	return f, a
}

func wgpuCullMode(c CullMode) wgpu.CullMode {
	switch c {
	case CullBack:
		return wgpu.CullModeBack
	case CullFront:
		return wgpu.CullModeFront
	default:
		return wgpu.CullModeNone
	}
}

func wgpuBlendFactor(f BlendFactor) wgpu.BlendFactor {
	switch f {
	case BlendOne:
		return wgpu.BlendFactorOne
	case BlendSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case BlendOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case BlendConstant:
		return wgpu.BlendFactorConstant
	case BlendOneMinusConstant:
		return wgpu.BlendFactorOneMinusConstant
	default:
		return wgpu.BlendFactorZero
	}
}
