package timectrl

import (
	"sync"
	"time"
)

// Mode describes how the pacer relates simulation time to wall-clock time.
type Mode int

const (
	// Accelerated lets the loop run as fast as it can.
	Accelerated Mode = iota
	// RealTime throttles the loop so simulated time tracks wall time,
	// scaled by Scale.
	RealTime
)

// Pacer throttles a fixed-timestep loop. The driver calls Pace once per
// completed step with the simulated timestep; in RealTime mode Pace sleeps
// whenever the simulation runs ahead of the wall clock. A loop that falls
// behind is never slowed further, it just stops sleeping.
//
// Listeners fire at most once per wall-clock second with the current
// simulated time, which is enough for progress reporting.
type Pacer struct {
	mu sync.Mutex

	mode  Mode
	scale float64 // simulated seconds per wall second

	started    time.Time
	simElapsed float64
	lastNotify time.Time
	listeners  []func(simElapsed float64)
}

// NewPacer constructs a pacer. Scale values at or below zero fall back
// to 1 (one simulated second per wall second).
func NewPacer(mode Mode, scale float64) *Pacer {
	if scale <= 0 {
		scale = 1
	}
	return &Pacer{mode: mode, scale: scale}
}

// AddListener registers a progress callback.
func (p *Pacer) AddListener(fn func(simElapsed float64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Pace accounts one step of simDt simulated seconds and, in RealTime mode,
// sleeps until the wall clock catches up.
func (p *Pacer) Pace(simDt float64) {
	p.mu.Lock()
	now := time.Now()
	if p.started.IsZero() {
		p.started = now
		p.lastNotify = now
	}
	p.simElapsed += simDt

	var sleep time.Duration
	if p.mode == RealTime {
		targetWall := time.Duration(p.simElapsed / p.scale * float64(time.Second))
		if ahead := targetWall - now.Sub(p.started); ahead > 0 {
			sleep = ahead
		}
	}

	var notify []func(float64)
	if now.Sub(p.lastNotify) >= time.Second {
		p.lastNotify = now
		notify = append(notify, p.listeners...)
	}
	simElapsed := p.simElapsed
	p.mu.Unlock()

	for _, fn := range notify {
		fn(simElapsed)
	}
	if sleep > 0 {
		time.Sleep(sleep)
	}
}

// SimElapsed returns the simulated seconds accounted so far.
func (p *Pacer) SimElapsed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.simElapsed
}

// WallElapsed returns the wall time since the first Pace call.
func (p *Pacer) WallElapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started.IsZero() {
		return 0
	}
	return time.Since(p.started)
}
