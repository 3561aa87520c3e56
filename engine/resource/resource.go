// Package resource wraps GPU objects with lazy creation and single-owner release.
//
// A wrapper starts unbuilt (zero handle). Build creates the GPU object on first call and
// is a no-op afterwards; Release frees it once and returns the wrapper to the unbuilt
// state. A build failure is fatal and panics with the resource kind and label.
// Wrappers must not be copied after first use.
package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/common"
)

// noCopy is flagged by go vet's copylocks check when a wrapper is copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

func buildFailed(kind, label string, err error) {
	common.Logger().Error("resource: build failed", "kind", kind, "label", label, "error", err)
	panic(fmt.Sprintf("resource: build %s %q: %v", kind, label, err))
}
