package render_context

// RenderContextBuilderOption is a functional option for configuring a RenderContext via
// NewRenderContext.
type RenderContextBuilderOption func(*RenderContext)

// WithIDSource sets the generator RenderIDs are drawn from. Tests pass a seeded source
// to get a deterministic sequence.
//
// Parameters:
//   - ids: the id source
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the id source option
func WithIDSource(ids *IDSource) RenderContextBuilderOption {
	return func(rc *RenderContext) {
		rc.ids = ids
	}
}
