package engine

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/profiler"
	"github.com/Carmen-Shannon/oxy-deferred/engine/render_context"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/window"
)

// maxTicksPerFrame bounds catch-up ticks after a long stall.
const maxTicksPerFrame = 8

// engine implements the Engine interface.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once

	window   window.Window
	renderer renderer.Renderer

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate         time.Duration
	tickCallback     func(deltaTime float32)
	renderCallback   func(deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	now   func() time.Time
	sleep func(time.Duration)
}

// Engine owns the window and the renderer and drives the frame loop on the calling thread:
// poll window events, run fixed-rate ticks, run the render callback, render the frame.
type Engine interface {
	// Window returns the window frames are presented to.
	Window() window.Window

	// Renderer returns the renderer driven by the loop.
	Renderer() renderer.Renderer

	// Context returns the renderer's scene context.
	Context() *render_context.RenderContext

	// SetTickRate sets the fixed tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called at the fixed tick rate.
	// Use this for game logic, input processing and scene updates.
	//
	// Parameters:
	//   - callback: function receiving the fixed tick delta in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called once per frame before rendering.
	//
	// Parameters:
	//   - callback: function receiving the frame delta in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the frame rate. Pass 0 to uncap (default).
	SetRenderFrameLimit(fps float64)

	// EnableProfiler enables periodic frame statistics in the log.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// Run initializes the renderer on the window and runs frames until the window closes
	// or Quit is called, then releases the renderer and closes the window.
	// It must be called from the thread that created the window.
	//
	// Fatal pipeline errors panic out of Run after the renderer is released and the
	// window closed.
	//
	// Returns:
	//   - error: if the renderer could not be initialized
	Run() error

	// Quit stops the loop after the current frame. Safe to call multiple times and from
	// any goroutine.
	Quit()
}

// NewEngine creates a new Engine from the provided options. A window is required; when
// no renderer is given one is created over the default pipeline.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: if no window was given or the default renderer could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		quitChannel: make(chan struct{}),
		tickRate:    time.Second / 60,
		now:         time.Now,
		sleep:       time.Sleep,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		return nil, errors.New("engine: a window is required")
	}
	if e.renderer == nil {
		r, err := renderer.NewRenderer()
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.renderer = r
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(time.Second)
	}

	e.window.SetResizeCallback(func(width, height int) {
		e.renderer.Resize(width, height)
	})
	return e, nil
}

func (e *engine) Window() window.Window { return e.window }

func (e *engine) Renderer() renderer.Renderer { return e.renderer }

func (e *engine) Context() *render_context.RenderContext { return e.renderer.Context() }

func (e *engine) Run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := e.renderer.Initialize(e.window); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer func() {
		e.renderer.Release()
		if cerr := e.window.Close(); cerr != nil {
			common.Logger().Warn("engine: close window", "error", cerr)
		}
	}()

	common.Logger().Info("engine: running", "tick_rate", e.tickRate, "frame_limit", e.renderFrameLimit)

	last := e.now()
	var accumulator time.Duration
	for e.running() && e.window.PollEvents() {
		frameStart := e.now()
		frame := frameStart.Sub(last)
		last = frameStart

		accumulator += frame
		ticks := 0
		for accumulator >= e.tickRate && ticks < maxTicksPerFrame {
			if e.tickCallback != nil {
				e.tickCallback(float32(e.tickRate.Seconds()))
			}
			accumulator -= e.tickRate
			ticks++
		}
		if ticks == maxTicksPerFrame {
			accumulator = 0
		}

		if e.renderCallback != nil {
			e.renderCallback(float32(frame.Seconds()))
		}
		e.renderer.Render()

		if e.profilingEnabled {
			e.profiler.Tick()
		}
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - e.now().Sub(frameStart); remaining > 0 {
				e.sleep(remaining)
			}
		}
	}
	common.Logger().Info("engine: stopped", "frames", e.renderer.Frame())
	return nil
}

func (e *engine) running() bool {
	select {
	case <-e.quitChannel:
		return false
	default:
		return true
	}
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	e.tickRate = rate(fps, 60)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = rate(fps, fps)
}

// rate converts a frequency to a period, substituting def for non-positive values.
func rate(fps, def float64) time.Duration {
	if fps <= 0 {
		fps = def
	}
	return time.Duration(float64(time.Second) / fps)
}
