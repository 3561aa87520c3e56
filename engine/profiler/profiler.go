package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
)

// Stats summarizes the frames of one reporting interval.
type Stats struct {
	Frames  int
	FPS     float64
	Avg     time.Duration
	Min     time.Duration
	Max     time.Duration
	HeapMB  float64
	AllocMB float64 // allocation rate in MB/s
	NumGC   uint32
}

// Profiler tracks frame timing and memory statistics.
// Stats are logged through the common logger at a configurable interval.
type Profiler struct {
	now      func() time.Time
	interval time.Duration

	frameCount int
	lastTick   time.Time
	lastReport time.Time
	minFrame   time.Duration
	maxFrame   time.Duration

	memStats       runtime.MemStats
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a new Profiler reporting once per interval.
// A non-positive interval defaults to 1 second.
//
// Parameters:
//   - interval: how often stats are logged
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return newProfiler(interval, time.Now)
}

func newProfiler(interval time.Duration, now func() time.Time) *Profiler {
	t := now()
	return &Profiler{now: now, interval: interval, lastTick: t, lastReport: t}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	t := p.now()
	frame := t.Sub(p.lastTick)
	p.lastTick = t

	if p.frameCount == 0 || frame < p.minFrame {
		p.minFrame = frame
	}
	p.maxFrame = max(p.maxFrame, frame)
	p.frameCount++

	elapsed := t.Sub(p.lastReport)
	if elapsed < p.interval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	p.last = Stats{
		Frames:  p.frameCount,
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
		Avg:     elapsed / time.Duration(p.frameCount),
		Min:     p.minFrame,
		Max:     p.maxFrame,
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
		AllocMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		NumGC:   p.memStats.NumGC,
	}
	common.Logger().Info("profiler",
		"fps", p.last.FPS,
		"avg", p.last.Avg,
		"min", p.last.Min,
		"max", p.last.Max,
		"heap_mb", p.last.HeapMB,
		"alloc_mb_s", p.last.AllocMB,
		"gc", p.last.NumGC,
	)

	p.frameCount = 0
	p.maxFrame = 0
	p.lastReport = t
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the stats of the most recent report.
func (p *Profiler) Last() Stats {
	return p.last
}
