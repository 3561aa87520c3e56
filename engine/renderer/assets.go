package renderer

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/Carmen-Shannon/oxy-deferred/engine/render_data"
)

//go:embed assets/default.yaml
var defaultConfig []byte

//go:embed assets/shaders/*.wgsl
var shaderAssets embed.FS

// DefaultConfig returns the built-in pipeline description used by DefaultPasses.
//
// Returns:
//   - render_data.Config: a fresh copy of the embedded configuration
func DefaultConfig() render_data.Config {
	cfg, err := render_data.ParseConfig(defaultConfig)
	if err != nil {
		panic(fmt.Sprintf("renderer: embedded pipeline config: %v", err))
	}
	return cfg
}

// DefaultConfigYAML returns the embedded configuration document, for applications that
// want to start a custom pipeline file from it.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), defaultConfig...)
}

// ShaderFS returns the built-in WGSL sources, rooted so DefaultConfig's shader paths resolve.
func ShaderFS() fs.FS {
	sub, err := fs.Sub(shaderAssets, "assets/shaders")
	if err != nil {
		panic(fmt.Sprintf("renderer: embedded shaders: %v", err))
	}
	return sub
}
