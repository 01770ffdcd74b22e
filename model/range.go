package model

import "fmt"

// Range is a half-open [Start, Stop) row interval over the training data.
// A nil *Range means "use the full data, no held-out prediction".
type Range struct {
	Start int
	Stop  int
}

// Len returns the number of rows covered.
func (r Range) Len() int {
	return r.Stop - r.Start
}

// Overlaps reports whether the two intervals share any row.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.Stop && o.Start < r.Stop
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.Stop)
}
