package core

import "sync"

// Handle is a stable, generation-checked reference into a Handler. The zero
// Handle is never valid: live slots always carry an odd generation.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.generation == 0 }

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// Handler owns entities of one kind (particles, walls, boundaries, species)
// and hands out generational handles. Removing an entity bumps its slot
// generation, so handles held elsewhere fail loudly instead of aliasing a
// recycled slot.
//
// Mutation (Add, Remove, Flush) happens only at the driver's serial points;
// the mutex makes concurrent read access from snapshot and metrics code safe.
type Handler[T any] struct {
	mu    sync.RWMutex
	slots []slot[T]
	free  []uint32
	count int

	// pending has its own lock so QueueRemove works from inside ForEach,
	// where the read lock is already held.
	pendingMu sync.Mutex
	pending   []Handle
}

// NewHandler constructs an empty registry.
func NewHandler[T any]() *Handler[T] {
	return &Handler[T]{}
}

// Add stores a value and returns its handle. O(1) amortized; removed slots
// are reused from a free list.
func (h *Handler[T]) Add(value T) Handle {
	h.mu.Lock()
	defer h.mu.Unlock()

	var idx uint32
	if n := len(h.free); n > 0 {
		idx = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		h.slots = append(h.slots, slot[T]{})
		idx = uint32(len(h.slots) - 1)
	}

	s := &h.slots[idx]
	s.value = value
	s.generation++ // even (dead) -> odd (live)
	s.live = true
	h.count++
	return Handle{index: idx, generation: s.generation}
}

// Get returns a pointer to the entity behind the handle. It fails with a
// StaleHandleError (wrapping ErrStaleHandle) when the slot was removed or
// recycled.
func (h *Handler[T]) Get(handle Handle) (*T, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.getLocked(handle)
}

func (h *Handler[T]) getLocked(handle Handle) (*T, error) {
	if int(handle.index) >= len(h.slots) {
		return nil, &StaleHandleError{Index: handle.index, Generation: handle.generation}
	}
	s := &h.slots[handle.index]
	if !s.live || s.generation != handle.generation {
		return nil, &StaleHandleError{Index: handle.index, Generation: handle.generation}
	}
	return &s.value, nil
}

// Contains reports whether the handle still refers to a live entity.
func (h *Handler[T]) Contains(handle Handle) bool {
	_, err := h.Get(handle)
	return err == nil
}

// Remove deletes the entity immediately. Callers iterating the registry must
// use QueueRemove instead.
func (h *Handler[T]) Remove(handle Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removeLocked(handle)
}

func (h *Handler[T]) removeLocked(handle Handle) error {
	if _, err := h.getLocked(handle); err != nil {
		return err
	}
	s := &h.slots[handle.index]
	var zero T
	s.value = zero
	s.generation++ // odd (live) -> even (dead)
	s.live = false
	h.count--
	h.free = append(h.free, handle.index)
	return nil
}

// QueueRemove defers removal to the next Flush. Safe to call from ForEach
// visitors and from the deletion-boundary scan.
func (h *Handler[T]) QueueRemove(handle Handle) {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	h.pending = append(h.pending, handle)
}

// Flush applies queued removals and returns how many entities were removed.
// Handles that went stale while queued (double removal) are skipped; that is
// a recovered condition, not an error.
func (h *Handler[T]) Flush() int {
	h.pendingMu.Lock()
	queued := h.pending
	h.pending = nil
	h.pendingMu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for _, handle := range queued {
		if err := h.removeLocked(handle); err == nil {
			removed++
		}
	}
	return removed
}

// ForEach visits every live entity in slot order. Visitors may mutate the
// entity in place but must not Add or Remove; use QueueRemove for removal.
func (h *Handler[T]) ForEach(visit func(Handle, *T)) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := range h.slots {
		s := &h.slots[i]
		if s.live {
			visit(Handle{index: uint32(i), generation: s.generation}, &s.value)
		}
	}
}

// Handles returns the handles of all live entities in slot order.
func (h *Handler[T]) Handles() []Handle {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Handle, 0, h.count)
	for i := range h.slots {
		if h.slots[i].live {
			out = append(out, Handle{index: uint32(i), generation: h.slots[i].generation})
		}
	}
	return out
}

// Len returns the number of live entities.
func (h *Handler[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
