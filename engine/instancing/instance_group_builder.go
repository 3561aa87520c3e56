package instancing

// InstanceGroupBuilderOption is a functional option for configuring an InstanceGroup via
// NewInstanceGroup.
type InstanceGroupBuilderOption func(*InstanceGroup)

// WithLayout sets a custom per-instance attribute layout. It must match the instance
// layout the mesh was created with.
//
// Parameters:
//   - layout: the record layout
//
// Returns:
//   - InstanceGroupBuilderOption: a function that applies the layout option to a group
func WithLayout(layout AttributeLayout) InstanceGroupBuilderOption {
	return func(g *InstanceGroup) {
		g.layout = layout
	}
}
