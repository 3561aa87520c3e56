package profiler

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestTickReportsPerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := newProfiler(time.Second, clock.now)

	frames := []time.Duration{100 * time.Millisecond, 300 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}
	for i, d := range frames {
		clock.t = clock.t.Add(d)
		reported := p.Tick()
		if want := i == len(frames)-1; reported != want {
			t.Fatalf("tick %d reported = %v, want %v", i, reported, want)
		}
	}

	s := p.Last()
	if s.Frames != 4 {
		t.Errorf("Frames = %d, want 4", s.Frames)
	}
	if s.FPS != 4 {
		t.Errorf("FPS = %v, want 4", s.FPS)
	}
	if s.Avg != 250*time.Millisecond || s.Min != 100*time.Millisecond || s.Max != 400*time.Millisecond {
		t.Errorf("avg/min/max = %v/%v/%v", s.Avg, s.Min, s.Max)
	}

	// The next interval starts fresh.
	clock.t = clock.t.Add(2 * time.Second)
	if !p.Tick() {
		t.Fatal("expected a report after a long frame")
	}
	if s := p.Last(); s.Frames != 1 || s.Min != 2*time.Second || s.Max != 2*time.Second {
		t.Errorf("second report = %+v", s)
	}
}

func TestNewProfilerDefaultsInterval(t *testing.T) {
	if p := NewProfiler(0); p.interval != time.Second {
		t.Errorf("interval = %v, want 1s", p.interval)
	}
}
