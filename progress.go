package appsize

import "fmt"

// Progress is a point-in-time view of a running batch.
type Progress struct {
	// Label is the earliest item still being measured or, when nothing is in flight,
	// the most recently finished item. Empty before any item has started.
	Label string
	// Completed counts items that finished: measured, failed or skipped.
	Completed int
	// Total is the number of items in the batch.
	Total int
	// InFlight is the number of measurements currently outstanding.
	InFlight int
}

// Done reports whether every item of the batch has finished.
func (p Progress) Done() bool { return p.Completed >= p.Total }

// Fraction returns the completed share in the range [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

func (p Progress) String() string {
	return fmt.Sprintf("[%d/%d] %s", p.Completed, p.Total, p.Label)
}

// Snapshotter exposes the progress of a batch to an external reporter.
// Implementations must be safe to call concurrently with the batch and must not block.
type Snapshotter interface {
	Snapshot() Progress
}
