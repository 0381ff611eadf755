package common

// Ring is a fixed-capacity ring buffer of float64 values. Once full, each
// push evicts the oldest entry. Indexing is positional, so per-frame
// histories never allocate after construction.
type Ring struct {
	buf   []float64
	head  int
	count int
}

// NewRing creates a ring buffer with the given capacity
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		buf: make([]float64, capacity),
	}
}

// Push appends a value, evicting the oldest when full
func (r *Ring) Push(v float64) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Len returns the number of stored values
func (r *Ring) Len() int {
	return r.count
}

// Cap returns the buffer capacity
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Full returns true once capacity values have been pushed
func (r *Ring) Full() bool {
	return r.count == len(r.buf)
}

// Values appends the stored values to dst, oldest first, and returns it
func (r *Ring) Values(dst []float64) []float64 {
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		dst = append(dst, r.buf[(start+i)%len(r.buf)])
	}
	return dst
}

// Mean returns the arithmetic mean of the stored values
func (r *Ring) Mean() float64 {
	if r.count == 0 {
		return 0.0
	}

	sum := 0.0
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		sum += r.buf[(start+i)%len(r.buf)]
	}
	return sum / float64(r.count)
}

// Clear resets the buffer to empty
func (r *Ring) Clear() {
	r.head = 0
	r.count = 0
}
