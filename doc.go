// Package appsize measures the storage footprint of a fixed list of installed
// applications with a bounded number of concurrent measurements.
//
// A Batch dispatches items in input order to an asynchronous Measurer. At most
// Concurrency measurements are outstanding at once (DefaultConcurrency is 2); the
// dispatcher blocks while every slot is busy and resumes as soon as a completion
// callback frees one. Items rejected by the eligibility predicate are counted as
// completed without being measured.
//
// Results
// Successful measurements become Entry values: the reported Stats, an optional
// supplementary size looked up by Item.Key, and Size, the total of the components
// selected by the SizeFilter rounded up to whole blocks. Failed measurements are
// dropped silently. Once every dispatched measurement has completed, the entries
// are sorted with the configured comparator (BySizeDesc unless WithOrder is given).
// An empty result set is reported as ErrNoResults.
//
// Progress
// Snapshot may be called from any goroutine while Run is in progress. It never
// blocks and returns the completed count, the total, the number of outstanding
// measurements and the label of the earliest item still in flight.
//
// Cancellation
// When the context passed to Run is done, no further items are dispatched. Run
// still waits for the outstanding measurements and then returns an error wrapping
// ErrCancelled. WithItemTimeout bounds a single measurement.
//
// Backends
// Measurer implementations must call done exactly once; later calls are ignored and
// logged. Async adapts a blocking MeasureFunc, recovering panics and reporting
// failure when the item context is done.
package appsize
