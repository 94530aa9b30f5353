package stats

import (
	"sync"
)

// StepSummary is one row of the run's time series.
type StepSummary struct {
	Step          uint64
	Time          float64
	Particles     int
	Contacts      int
	KineticEnergy float64
}

// EventType indicates what kind of change a subscriber is told about.
type EventType int

const (
	EventStepRecorded EventType = iota
	EventParticlesInserted
	EventParticlesRemoved
)

// Event is emitted to subscribers when the recorder learns something.
type Event struct {
	Type    EventType
	Summary StepSummary
	Count   int // inserted/removed particle count for lifecycle events
}

// Recorder is an in-memory, thread-safe time series of step summaries with
// subscriber callbacks. Output layers subscribe to it instead of polling
// the simulation, which keeps them off the hot loop.
type Recorder struct {
	mu sync.RWMutex

	steps    []StepSummary
	inserted int
	removed  int

	subs []func(Event)
}

// NewRecorder constructs an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Subscribe registers a callback invoked synchronously on every event.
// Callbacks must be fast; anything slow belongs on the subscriber's own
// goroutine.
func (r *Recorder) Subscribe(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}

// RecordStep appends one summary row.
func (r *Recorder) RecordStep(s StepSummary) {
	r.mu.Lock()
	r.steps = append(r.steps, s)
	subs := r.subs
	r.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Type: EventStepRecorded, Summary: s})
	}
}

// RecordInserted accounts particles created by insertion boundaries.
func (r *Recorder) RecordInserted(n int) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	r.inserted += n
	subs := r.subs
	r.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Type: EventParticlesInserted, Count: n})
	}
}

// RecordRemoved accounts particles destroyed by deletion boundaries.
func (r *Recorder) RecordRemoved(n int) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	r.removed += n
	subs := r.subs
	r.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Type: EventParticlesRemoved, Count: n})
	}
}

// Len returns the number of recorded steps.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.steps)
}

// Last returns the most recent summary, if any.
func (r *Recorder) Last() (StepSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.steps) == 0 {
		return StepSummary{}, false
	}
	return r.steps[len(r.steps)-1], true
}

// Steps returns a copy of the recorded series.
func (r *Recorder) Steps() []StepSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StepSummary, len(r.steps))
	copy(out, r.steps)
	return out
}

// Totals returns the lifetime inserted and removed particle counts.
func (r *Recorder) Totals() (inserted, removed int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inserted, r.removed
}
