package loader

import (
	"io/fs"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFS reads image files from fsys instead of the OS filesystem.
//
// Parameters:
//   - fsys: the filesystem paths resolve against
//
// Returns:
//   - LoaderBuilderOption: a function that applies the filesystem option to a loader
func WithFS(fsys fs.FS) LoaderBuilderOption {
	return func(l *loader) {
		l.fsys = fsys
	}
}

// WithWorkers sets how many images LoadAll decodes at once. Values below one use one worker.
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithProgress registers a callback LoadAll invokes after each file, with the number of
// files finished and the total. Calls are serialized.
//
// Parameters:
//   - fn: the progress callback
//
// Returns:
//   - LoaderBuilderOption: a function that applies the progress option to a loader
func WithProgress(fn func(done, total int)) LoaderBuilderOption {
	return func(l *loader) {
		l.progress = fn
	}
}

// WithMaxDimension downscales images whose width or height exceeds n, keeping the aspect ratio.
func WithMaxDimension(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.maxSize = n
	}
}

// WithImage pre-populates the cache with an already decoded image.
//
// Parameters:
//   - key: the cache key for the image
//   - img: the image to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the image option to a loader
func WithImage(key string, img Image) LoaderBuilderOption {
	return func(l *loader) {
		l.imageCache[key] = img
	}
}
