package render_data

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Config describes the render pipeline resources: framebuffers in build order, shader
// programs and tuning parameters.
type Config struct {
	Framebuffers []FramebufferConfig `yaml:"framebuffers"`
	Shaders      []ShaderConfig      `yaml:"shaders"`
	Params       map[string]Param    `yaml:"params"`
}

// FramebufferConfig describes one render target. A zero width or height with auto_resize
// on means the target follows the window size.
type FramebufferConfig struct {
	Tag          string   `yaml:"tag"`
	Width        int      `yaml:"width,omitempty"`
	Height       int      `yaml:"height,omitempty"`
	AutoResize   *bool    `yaml:"auto_resize,omitempty"`
	ResizeFactor float32  `yaml:"resize_factor,omitempty"`
	Color        []string `yaml:"color,omitempty"`
	Depth        bool     `yaml:"depth,omitempty"`
	DepthFrom    string   `yaml:"depth_from,omitempty"`
	Filter       string   `yaml:"filter,omitempty"`
	Wrap         string   `yaml:"wrap,omitempty"`
}

// ShaderConfig names the stage sources of one program. Fragment defaults to Vertex.
type ShaderConfig struct {
	Tag      string `yaml:"tag"`
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment,omitempty"`
	Geometry string `yaml:"geometry,omitempty"`
}

// Param is a typed YAML parameter. Booleans, integers and floats map to the matching
// scalar kinds, sequences of 2, 3, 4 or 16 numbers to Vec2, Vec3, Vec4 or Mat4, and the
// mappings {uint: n} and {uint64: n} to Uint32 and Uint64.
type Param struct {
	Value gpu.Value
}

// UnmarshalYAML decodes a parameter node into its gpu.Value variant.
func (p *Param) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			p.Value = gpu.BoolValue(b)
		case "!!int":
			var i int
			if err := node.Decode(&i); err != nil {
				return err
			}
			p.Value = gpu.IntValue(i)
		case "!!float":
			var f float32
			if err := node.Decode(&f); err != nil {
				return err
			}
			p.Value = gpu.FloatValue(f)
		default:
			return fmt.Errorf("line %d: unsupported parameter %q", node.Line, node.Value)
		}
	case yaml.SequenceNode:
		var f []float32
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		switch len(f) {
		case 2:
			p.Value = gpu.Vec2Value(mgl32.Vec2([2]float32(f)))
		case 3:
			p.Value = gpu.Vec3Value(mgl32.Vec3([3]float32(f)))
		case 4:
			p.Value = gpu.Vec4Value(mgl32.Vec4([4]float32(f)))
		case 16:
			p.Value = gpu.Mat4Value(mgl32.Mat4([16]float32(f)))
		default:
			return fmt.Errorf("line %d: vector parameter of %d elements", node.Line, len(f))
		}
	case yaml.MappingNode:
		var m map[string]uint64
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		if v, ok := m["uint"]; ok && len(m) == 1 {
			if v > math.MaxUint32 {
				return fmt.Errorf("line %d: uint parameter %d overflows uint32", node.Line, v)
			}
			p.Value = gpu.Uint32Value(uint32(v))
			return nil
		}
		if v, ok := m["uint64"]; ok && len(m) == 1 {
			p.Value = gpu.Uint64Value(v)
			return nil
		}
		return fmt.Errorf("line %d: mapping parameter must be {uint: n} or {uint64: n}", node.Line)
	default:
		return fmt.Errorf("line %d: unsupported parameter node", node.Line)
	}
	return nil
}

// LoadConfig reads and validates a YAML pipeline description.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the decoded configuration
//   - error: if the file cannot be read or is invalid
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("render_data: read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("render_data: %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a YAML pipeline description.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: if decoding fails or Validate rejects it
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse pipeline config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks tags are unique, formats and sampling names are known, fixed-size
// framebuffers have a size and depth_from references an earlier depth-bearing framebuffer.
func (c Config) Validate() error {
	seen := make(map[string]FramebufferConfig, len(c.Framebuffers))
	for i, fb := range c.Framebuffers {
		if fb.Tag == "" {
			return fmt.Errorf("framebuffer %d has no tag", i)
		}
		if _, dup := seen[fb.Tag]; dup {
			return fmt.Errorf("framebuffer %q declared twice", fb.Tag)
		}
		for _, name := range fb.Color {
			f, ok := gpu.ParseTextureFormat(name)
			if !ok || f.IsDepth() {
				return fmt.Errorf("framebuffer %q: unknown color format %q", fb.Tag, name)
			}
		}
		if !fb.autoResize() && (fb.Width <= 0 || fb.Height <= 0) {
			return fmt.Errorf("framebuffer %q: fixed size needs width and height", fb.Tag)
		}
		if fb.ResizeFactor < 0 {
			return fmt.Errorf("framebuffer %q: negative resize_factor", fb.Tag)
		}
		if fb.DepthFrom != "" {
			src, ok := seen[fb.DepthFrom]
			if !ok {
				return fmt.Errorf("framebuffer %q: depth_from %q is not declared before it", fb.Tag, fb.DepthFrom)
			}
			if !src.Depth && src.DepthFrom == "" {
				return fmt.Errorf("framebuffer %q: depth_from %q has no depth", fb.Tag, fb.DepthFrom)
			}
		}
		if len(fb.Color) == 0 && !fb.Depth && fb.DepthFrom == "" {
			return fmt.Errorf("framebuffer %q has no attachments", fb.Tag)
		}
		if _, ok := parseFilter(fb.Filter); !ok {
			return fmt.Errorf("framebuffer %q: unknown filter %q", fb.Tag, fb.Filter)
		}
		if _, ok := parseWrap(fb.Wrap); !ok {
			return fmt.Errorf("framebuffer %q: unknown wrap %q", fb.Tag, fb.Wrap)
		}
		seen[fb.Tag] = fb
	}

	shaders := make(map[string]bool, len(c.Shaders))
	for i, s := range c.Shaders {
		if s.Tag == "" || s.Vertex == "" {
			return fmt.Errorf("shader %d needs a tag and a vertex source", i)
		}
		if shaders[s.Tag] {
			return fmt.Errorf("shader %q declared twice", s.Tag)
		}
		shaders[s.Tag] = true
	}
	return nil
}

// Merge returns c with every parameter from params set, overriding existing ones.
func (c Config) Merge(params map[string]gpu.Value) Config {
	out := c
	out.Params = make(map[string]Param, len(c.Params)+len(params))
	for k, v := range c.Params {
		out.Params[k] = v
	}
	for k, v := range params {
		out.Params[k] = Param{Value: v}
	}
	return out
}

func (fb FramebufferConfig) autoResize() bool {
	return fb.AutoResize == nil || *fb.AutoResize
}

func parseFilter(name string) (gpu.FilterMode, bool) {
	switch strings.ToLower(name) {
	case "", "linear":
		return gpu.FilterLinear, true
	case "nearest":
		return gpu.FilterNearest, true
	}
	return 0, false
}

func parseWrap(name string) (gpu.WrapMode, bool) {
	switch strings.ToLower(name) {
	case "", "clamp":
		return gpu.WrapClamp, true
	case "repeat":
		return gpu.WrapRepeat, true
	}
	return 0, false
}
