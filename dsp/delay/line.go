// Package delay provides the circular sample-history primitive shared by the
// delay-based filters in this module.
package delay

import "fmt"

// Line is a fixed-length circular delay line over a caller-owned buffer.
//
// The Line borrows the buffer exclusively for its whole lifetime: the caller
// allocates it once (typically at setup time, from a static pool on embedded
// targets) and must not read or write it while the Line exists. The Line
// itself never allocates.
//
// A Line of length N delays by N samples when driven read-then-write once per
// sample period: Read returns the sample written N cycles ago, Write then
// overwrites that slot and advances the cursor.
type Line struct {
	buffer []float64
	index  int
}

// New returns a delay line over buffer. The buffer must not be empty and must
// remain untouched by the caller for as long as the Line is in use.
func New(buffer []float64) (*Line, error) {
	if len(buffer) == 0 {
		return nil, fmt.Errorf("delay: buffer must not be empty")
	}

	return &Line{buffer: buffer}, nil
}

// Len returns the line length. Immutable after construction.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write stores sample at the cursor and advances the cursor by one slot,
// wrapping at the end of the buffer.
func (d *Line) Write(sample float64) {
	d.buffer[d.index] = sample
	d.index++
	if d.index >= len(d.buffer) {
		d.index = 0
	}
}

// Read returns the sample at the current cursor without mutating state.
// Called before Write in a processing cycle it yields the oldest sample,
// the one about to be overwritten.
func (d *Line) Read() float64 {
	return d.buffer[d.index]
}

// At returns the sample at index i modulo the line length, leaving the
// cursor untouched. Defined for every i, negative included.
func (d *Line) At(i int) float64 {
	n := len(d.buffer)
	i %= n
	if i < 0 {
		i += n
	}

	return d.buffer[i]
}

// Reset zeroes the buffer and rewinds the cursor.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.index = 0
}
