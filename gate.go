package appsize

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultConcurrency is the number of measurements allowed in flight at once
// unless overridden with WithConcurrency.
const DefaultConcurrency = 2

// gate bounds the number of outstanding measurements and owns all mutable batch state.
//
// A single mutex guards the occupied slot count, the in-flight labels, the completed
// counter, the last completed label and the collected results. Every mutation publishes
// an immutable Progress value so that snapshot readers never take the lock.
//
// Waiters (acquire and drain) re-check their condition each time the changed channel
// is closed; the channel is replaced on every mutation.
type gate struct {
	limit int
	total int

	mu        sync.Mutex
	occupied  int
	inflight  []string
	completed int
	last      string
	results   []Entry
	changed   chan struct{}

	progress atomic.Pointer[Progress]
}

func newGate(limit, total int) *gate {
	g := &gate{
		limit:    limit,
		total:    total,
		inflight: make([]string, 0, limit),
		changed:  make(chan struct{}),
	}
	g.publishLocked()
	return g
}

// acquire blocks until a slot is free, then occupies it and records label as in flight.
// It returns ctx.Err() if ctx is done before a slot becomes available.
func (g *gate) acquire(ctx context.Context, label string) error {
	for {
		g.mu.Lock()
		if g.occupied < g.limit {
			g.occupied++
			g.inflight = append(g.inflight, label)
			g.publishLocked()
			g.mu.Unlock()
			return nil
		}
		changed := g.changed
		g.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// complete releases the slot held for label and counts the item as finished.
// A non-nil entry is added to the results inside the same critical section.
func (g *gate) complete(label string, e *Entry) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.occupied == 0 {
		panic(Namespace + ": gate released more times than acquired")
	}
	if e != nil {
		g.results = append(g.results, *e)
	}
	g.occupied--
	g.removeInFlightLocked(label)
	g.finishLocked(label)
	g.broadcastLocked()
}

// skip counts an item that is not measured. No slot is consumed.
func (g *gate) skip(label string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.finishLocked(label)
	g.broadcastLocked()
}

// drain blocks until no slot is occupied.
func (g *gate) drain() {
	for {
		g.mu.Lock()
		if g.occupied == 0 {
			g.mu.Unlock()
			return
		}
		changed := g.changed
		g.mu.Unlock()

		<-changed
	}
}

// collected returns a copy of the results gathered so far.
func (g *gate) collected() []Entry {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Entry, len(g.results))
	copy(out, g.results)
	return out
}

// snapshot returns the most recently published progress. It never blocks.
func (g *gate) snapshot() Progress {
	return *g.progress.Load()
}

func (g *gate) finishLocked(label string) {
	g.completed++
	g.last = label
}

// removeInFlightLocked removes the earliest occurrence of label, keeping the rest in order.
func (g *gate) removeInFlightLocked(label string) {
	for i, l := range g.inflight {
		if l == label {
			g.inflight = append(g.inflight[:i], g.inflight[i+1:]...)
			return
		}
	}
}

func (g *gate) broadcastLocked() {
	g.publishLocked()
	close(g.changed)
	g.changed = make(chan struct{})
}

func (g *gate) publishLocked() {
	p := Progress{
		Label:     g.last,
		Completed: g.completed,
		Total:     g.total,
		InFlight:  len(g.inflight),
	}
	if len(g.inflight) > 0 {
		p.Label = g.inflight[0]
	}
	g.progress.Store(&p)
}
