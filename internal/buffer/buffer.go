// Package buffer provides the fixed-capacity sample window fed by the
// sampling loop.
package buffer

// Rolling is a fixed-capacity FIFO of raw samples backed by a ring.
// Once full, each Append overwrites the oldest sample.
type Rolling struct {
	data  []int
	pos   int
	count int
}

// NewRolling creates a window holding at most capacity samples
func NewRolling(capacity int) *Rolling {
	if capacity <= 0 {
		capacity = 1
	}

	return &Rolling{data: make([]int, capacity)}
}

// Append pushes a sample, evicting the oldest when the window is full
func (r *Rolling) Append(sample int) {
	r.data[r.pos] = sample
	r.pos = (r.pos + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// Clear empties the window
func (r *Rolling) Clear() {
	r.pos = 0
	r.count = 0
}

func (r *Rolling) Len() int {
	return r.count
}

func (r *Rolling) Cap() int {
	return len(r.data)
}

// Values returns a copy of the samples, oldest first
func (r *Rolling) Values() []int {
	out := make([]int, r.count)
	if r.count < len(r.data) {
		copy(out, r.data[:r.count])
		return out
	}

	n := copy(out, r.data[r.pos:])
	copy(out[n:], r.data[:r.pos])

	return out
}
