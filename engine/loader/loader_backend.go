package loader

import (
	"io"
)

// loaderBackend decodes one family of image file formats.
// Concrete implementations (e.g., imageLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Decode reads a complete image from r.
	//
	// Parameters:
	//   - r: the reader providing the encoded file
	//
	// Returns:
	//   - Image: the decoded RGBA image
	//   - error: error if the data is malformed or uses an unsupported variant
	Decode(r io.Reader) (Image, error)

	// Extensions lists the lower-case file extensions, with the dot, handled by the backend.
	Extensions() []string
}
