// Package history holds per-parameter sample history in fixed-size ring buffers.
package history

// DefaultSize is the number of samples retained when no size is configured.
const DefaultSize = 600

// Ring is a fixed-capacity circular buffer of float64 samples. Its storage is
// allocated once and never resized. Ring is not safe for concurrent use; the
// owning chart serializes access.
type Ring struct {
	data  []float64
	head  int // next write position
	count int
}

// NewRing creates a ring with the given capacity, falling back to DefaultSize.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultSize
	}
	return &Ring{data: make([]float64, size)}
}

// Record appends a sample, overwriting the oldest one once the ring is full.
func (r *Ring) Record(v float64) {
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// Count returns the number of valid samples.
func (r *Ring) Count() int { return r.count }

// Capacity returns the fixed size of the ring.
func (r *Ring) Capacity() int { return len(r.data) }

// NewestIndex returns the storage index of the most recent write.
func (r *Ring) NewestIndex() int {
	return (r.head - 1 + len(r.data)) % len(r.data)
}

// Newest returns the most recent sample. ok is false when the ring is empty.
func (r *Ring) Newest() (v float64, ok bool) {
	if r.count == 0 {
		return 0, false
	}
	return r.data[r.NewestIndex()], true
}

// Window returns up to n samples walking backwards from the newest, so
// index 0 is the most recent value.
func (r *Ring) Window(n int) []float64 {
	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	idx := r.NewestIndex()
	for i := 0; i < n; i++ {
		out[i] = r.data[idx]
		idx--
		if idx < 0 {
			idx = len(r.data) - 1
		}
	}
	return out
}

// Ordered returns all valid samples oldest first, ready for drawing.
func (r *Ring) Ordered() []float64 {
	return r.Last(r.count)
}

// Last returns the last n samples in chronological order (oldest first).
func (r *Ring) Last(n int) []float64 {
	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	start := (r.head - n + len(r.data)) % len(r.data)
	for i := 0; i < n; i++ {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}

// Extremes returns the minimum and maximum of the newest n samples. ok is
// false when there is nothing to scan.
func (r *Ring) Extremes(n int) (lo, hi float64, ok bool) {
	w := r.Window(n)
	if len(w) == 0 {
		return 0, 0, false
	}

	lo, hi = w[0], w[0]
	for _, v := range w[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}

// Expire forgets the oldest valid sample. It reports false when the ring was
// already empty.
func (r *Ring) Expire() bool {
	if r.count == 0 {
		return false
	}
	r.count--
	return true
}

// Reset drops every sample without releasing storage.
func (r *Ring) Reset() {
	r.head = 0
	r.count = 0
}
