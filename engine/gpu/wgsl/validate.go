package wgsl

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validate compiles source with the naga front-end and reports its log as an error.
// The backend calls it before creating shader modules so a bad shader fails with a
// readable message instead of a device error callback.
//
// Parameters:
//   - label: shader label used in the error message
//   - source: pre-processed WGSL
//
// Returns:
//   - error: nil if the source compiles
func Validate(label, source string) error {
	if _, err := naga.Compile(source); err != nil {
		return fmt.Errorf("wgsl: compile %q: %w", label, err)
	}
	return nil
}
