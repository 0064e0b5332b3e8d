package variety

import "encoding/json"

// Ring is a bounded recency buffer used to discourage immediate repetition
// of generated content (encounter types, quest types, affix names).
// The oldest entry is evicted when the ring is at capacity.
// Consumers get Record and Contains only; the backing slice is never exposed
// for mutation.
type Ring[T comparable] struct {
	capacity int
	entries  []T
}

// DefaultCapacity is used when a ring is constructed with a non-positive capacity.
const DefaultCapacity = 5

// NewRing creates a ring holding at most capacity entries.
func NewRing[T comparable](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring[T]{
		capacity: capacity,
		entries:  make([]T, 0, capacity),
	}
}

// Record appends v as the most recent entry, evicting the oldest if needed.
func (r *Ring[T]) Record(v T) {
	if len(r.entries) >= r.capacity {
		r.entries = r.entries[1:]
	}
	r.entries = append(r.entries, v)
}

// Contains reports whether v was recorded within the ring's window.
func (r *Ring[T]) Contains(v T) bool {
	for _, e := range r.entries {
		if e == v {
			return true
		}
	}
	return false
}

// MostRecent returns the last recorded entry.
func (r *Ring[T]) MostRecent() (T, bool) {
	var zero T
	if len(r.entries) == 0 {
		return zero, false
	}
	return r.entries[len(r.entries)-1], true
}

// LeastRecent returns the oldest entry still in the window.
// Used to break VarietyExhaustion: when every candidate has been seen
// recently, the least recently used one is the best available choice.
func (r *Ring[T]) LeastRecent() (T, bool) {
	var zero T
	if len(r.entries) == 0 {
		return zero, false
	}
	return r.entries[0], true
}

// LeastRecentOf returns the candidate whose last recording is oldest.
// Candidates never recorded win outright.
func (r *Ring[T]) LeastRecentOf(candidates []T) (T, bool) {
	var zero T
	if len(candidates) == 0 {
		return zero, false
	}
	best := candidates[0]
	bestIdx := r.lastIndexOf(candidates[0])
	for _, c := range candidates[1:] {
		idx := r.lastIndexOf(c)
		if idx < bestIdx {
			best = c
			bestIdx = idx
		}
	}
	return best, true
}

func (r *Ring[T]) lastIndexOf(v T) int {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i] == v {
			return i
		}
	}
	return -1
}

// Len returns the number of entries currently held.
func (r *Ring[T]) Len() int {
	return len(r.entries)
}

// Cap returns the ring's capacity.
func (r *Ring[T]) Cap() int {
	return r.capacity
}

// ringJSON is the wire form of a Ring for game state snapshots.
type ringJSON[T comparable] struct {
	Capacity int `json:"capacity"`
	Entries  []T `json:"entries,omitempty"`
}

func (r *Ring[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(ringJSON[T]{Capacity: r.capacity, Entries: r.entries})
}

func (r *Ring[T]) UnmarshalJSON(data []byte) error {
	var rj ringJSON[T]
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}
	if rj.Capacity <= 0 {
		rj.Capacity = DefaultCapacity
	}
	r.capacity = rj.Capacity
	r.entries = rj.Entries
	if r.entries == nil {
		r.entries = make([]T, 0, r.capacity)
	}
	// Enforce the size invariant on snapshots written with a larger capacity.
	for len(r.entries) > r.capacity {
		r.entries = r.entries[1:]
	}
	return nil
}
