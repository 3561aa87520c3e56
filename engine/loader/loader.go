package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/pierrec/lz4/v4"
)

// ErrUnsupportedFormat is wrapped by load errors for files no backend can decode.
var ErrUnsupportedFormat = errors.New("loader: unsupported format")

// compressedExt marks an LZ4 frame wrapping a file of the inner extension, as in
// "albedo.dds.lz4".
const compressedExt = ".lz4"

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	fsys     fs.FS
	workers  int
	maxSize  int
	progress func(done, total int)

	backends   map[string]loaderBackend
	imageCache map[string]Image
}

// Loader decodes texture images from disk and caches them by path.
// The backend is selected from the file extension; files ending in .lz4 are decompressed
// first and decoded by the extension that precedes it.
type Loader interface {
	// Load decodes the image at path and caches the result.
	// If the image is already cached (by path), the cached version is returned.
	//
	// Parameters:
	//   - path: the file path of the image
	//
	// Returns:
	//   - Image: the decoded RGBA image
	//   - error: ErrUnsupportedFormat for unknown extensions, or the decode failure
	Load(path string) (Image, error)

	// LoadReader decodes an image from a reader and caches it by name.
	// The extension of name selects the backend.
	//
	// Parameters:
	//   - name: the cache key, carrying the file extension
	//   - r: the reader providing the encoded image
	//
	// Returns:
	//   - Image: the decoded RGBA image
	//   - error: error if decoding fails
	LoadReader(name string, r io.Reader) (Image, error)

	// LoadAll decodes every path concurrently on a worker pool. Results keep the order
	// of paths. When any load fails the error of the first failing path is returned
	// along with the images that did decode.
	//
	// Parameters:
	//   - paths: the file paths to decode
	//
	// Returns:
	//   - []Image: the images, zero-valued where loading failed
	//   - error: the error of the lowest failing index
	LoadAll(paths []string) ([]Image, error)

	// Get retrieves a cached image by name.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - Image: the cached image
	//   - bool: whether the image was cached
	Get(name string) (Image, bool)

	// Images returns a copy of the image cache.
	Images() map[string]Image
}

var _ Loader = &loader{}

// NewLoader creates a Loader reading from the OS filesystem with one worker per CPU
// but one, unless overridden by options.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader instance
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		workers:    max(runtime.NumCPU()-1, 1),
		backends:   make(map[string]loaderBackend),
		imageCache: make(map[string]Image),
	}
	for _, b := range []loaderBackend{newImageLoaderBackend(), newDDSLoaderBackend()} {
		for _, ext := range b.Extensions() {
			l.backends[ext] = b
		}
	}

	for _, option := range options {
		option(l)
	}
	return l
}

// Load decodes a single image with a default Loader.
func Load(path string) (Image, error) {
	return NewLoader().Load(path)
}

// LoadAll decodes paths concurrently with a Loader built from options.
func LoadAll(paths []string, options ...LoaderBuilderOption) ([]Image, error) {
	return NewLoader(options...).LoadAll(paths)
}

func (l *loader) Load(path string) (Image, error) {
	if img, ok := l.Get(path); ok {
		return img, nil
	}

	f, err := l.open(path)
	if err != nil {
		return Image{}, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	img, err := l.decode(path, f)
	if err != nil {
		return Image{}, fmt.Errorf("loader: %s: %w", path, err)
	}
	l.store(path, img)
	return img, nil
}

func (l *loader) LoadReader(name string, r io.Reader) (Image, error) {
	if img, ok := l.Get(name); ok {
		return img, nil
	}

	img, err := l.decode(name, r)
	if err != nil {
		return Image{}, fmt.Errorf("loader: %s: %w", name, err)
	}
	l.store(name, img)
	return img, nil
}

func (l *loader) LoadAll(paths []string) ([]Image, error) {
	images := make([]Image, len(paths))
	errs := make([]error, len(paths))
	if len(paths) == 0 {
		return images, nil
	}

	pool := worker.NewDynamicWorkerPool(min(l.workers, len(paths)), 256, 1*time.Second)
	defer pool.Stop()

	// The pool's Wait blocks until workers idle out, so completion is tracked here.
	var wg sync.WaitGroup
	var progressMu sync.Mutex
	done := 0
	for i, path := range paths {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: path,
			Do: func() (any, error) {
				defer wg.Done()
				images[i], errs[i] = l.Load(path)

				if l.progress != nil {
					progressMu.Lock()
					done++
					l.progress(done, len(paths))
					progressMu.Unlock()
				}
				return images[i], errs[i]
			},
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			common.Logger().Warn("loader: load failed", "path", paths[i], "error", err)
		}
	}
	for _, err := range errs {
		if err != nil {
			return images, err
		}
	}
	common.Logger().Debug("loader: loaded images", "count", len(paths), "workers", min(l.workers, len(paths)))
	return images, nil
}

func (l *loader) Get(name string) (Image, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	img, ok := l.imageCache[name]
	return img, ok
}

func (l *loader) Images() map[string]Image {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]Image, len(l.imageCache))
	for k, v := range l.imageCache {
		result[k] = v
	}
	return result
}

func (l *loader) store(name string, img Image) {
	l.mu.Lock()
	l.imageCache[name] = img
	l.mu.Unlock()
}

func (l *loader) open(path string) (io.ReadCloser, error) {
	if l.fsys != nil {
		f, err := l.fsys.Open(filepath.ToSlash(path))
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return os.Open(path)
}

// decode unwraps an LZ4 frame when name carries the compressed suffix, then runs the
// backend registered for the remaining extension.
func (l *loader) decode(name string, r io.Reader) (Image, error) {
	lower := strings.ToLower(name)
	if inner, ok := strings.CutSuffix(lower, compressedExt); ok {
		lower = inner
		r = lz4.NewReader(r)
	}

	backend, err := l.resolveBackend(lower)
	if err != nil {
		return Image{}, err
	}
	img, err := backend.Decode(r)
	if err != nil {
		return Image{}, err
	}
	return fit(img, l.maxSize), nil
}

// resolveBackend selects the loader backend registered for the extension of name.
func (l *loader) resolveBackend(name string) (loaderBackend, error) {
	ext := filepath.Ext(name)
	if b, ok := l.backends[ext]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}
