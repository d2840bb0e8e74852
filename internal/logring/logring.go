// Package logring keeps the most recent N log lines for the focused
// container in a fixed-size ring, so an unbounded log stream can never grow
// the process.
package logring

// Ring is a bounded ordered buffer of log lines. Not safe for concurrent
// use; the logs poller is its only writer and reader.
type Ring struct {
	lines []string
	idx   int
	count int
}

// New returns a ring holding at most capacity lines. Capacity below one is
// treated as one.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{lines: make([]string, capacity)}
}

// Append adds lines in order, evicting the oldest once full.
func (r *Ring) Append(lines ...string) {
	for _, line := range lines {
		r.lines[r.idx] = line
		r.idx = (r.idx + 1) % len(r.lines)
		if r.count < len(r.lines) {
			r.count++
		}
	}
}

// Replace resets the ring to exactly the given lines (oldest first),
// keeping only the newest capacity lines when given more.
func (r *Ring) Replace(lines []string) {
	r.Reset()
	if overflow := len(lines) - len(r.lines); overflow > 0 {
		lines = lines[overflow:]
	}
	r.Append(lines...)
}

// Reset empties the ring.
func (r *Ring) Reset() {
	r.idx = 0
	r.count = 0
}

// Len reports how many lines are buffered.
func (r *Ring) Len() int { return r.count }

// Lines returns the buffered lines oldest-first as a fresh slice.
func (r *Ring) Lines() []string {
	out := make([]string, r.count)
	if r.count == len(r.lines) {
		for i := 0; i < r.count; i++ {
			out[i] = r.lines[(r.idx+i)%len(r.lines)]
		}
	} else {
		copy(out, r.lines[:r.count])
	}
	return out
}
