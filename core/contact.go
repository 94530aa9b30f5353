package core

import "sync"

// ContactKey identifies a contact by its participants. Particle pairs are
// ordered so that (a, b) and (b, a) map to the same key; particle–wall
// contacts set Wall and keep the particle in A.
type ContactKey struct {
	A, B Handle
	Wall bool
}

func particlePairKey(a, b Handle) ContactKey {
	if b.index < a.index || (b.index == a.index && b.generation < a.generation) {
		a, b = b, a
	}
	return ContactKey{A: a, B: b}
}

func particleWallKey(p, w Handle) ContactKey {
	return ContactKey{A: p, B: w, Wall: true}
}

// contactState is the spring history carried across steps while a contact
// stays active: accumulated sliding displacement, rolling displacement and
// torsion angle. It is dropped the step the overlap closes, so a
// re-engagement starts from a fresh spring.
type contactState struct {
	sliding Vec3
	rolling Vec3
	torsion float64

	lastStep uint64
}

// contactTable owns all persistent contact state, keyed by pair identity.
// Entities never hold pointers back into the table; everything is looked up
// fresh each step by key.
//
// getOrCreate may be called concurrently from the parallel force phase —
// distinct pairs always get distinct states, so only the map itself needs
// guarding. prune runs at the serial end of the step.
type contactTable struct {
	mu     sync.Mutex
	states map[ContactKey]*contactState
}

func newContactTable() *contactTable {
	return &contactTable{states: make(map[ContactKey]*contactState)}
}

func (t *contactTable) getOrCreate(key ContactKey, step uint64) *contactState {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.states[key]
	if !ok {
		s = &contactState{}
		t.states[key] = s
	}
	s.lastStep = step
	return s
}

// prune drops state for contacts that were not touched this step, i.e. whose
// overlap has closed, and for contacts involving removed entities (their
// handles can never match a live pair again).
func (t *contactTable) prune(step uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, s := range t.states {
		if s.lastStep != step {
			delete(t.states, key)
		}
	}
}

func (t *contactTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.states)
}
