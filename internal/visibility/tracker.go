package visibility

import (
	"sync"
)

// Threshold is the visible fraction of a region that counts as seen.
const Threshold = 0.1

// Entry is one intersection report from the browser.
type Entry struct {
	ID           string  `json:"id"`
	Ratio        float64 `json:"ratio"`
	Intersecting bool    `json:"intersecting"`
}

// Sink receives regions newly latched for a visitor.
type Sink interface {
	Record(visitorID string, regions []string) bool
}

// Tracker knows the observable regions and hands newly seen ones to a Sink.
type Tracker struct {
	regions   map[string]struct{}
	threshold float64
	sink      Sink
}

// NewTracker returns a tracker over the given region ids. sink may be nil.
func NewTracker(regions []string, sink Sink) *Tracker {
	known := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		known[r] = struct{}{}
	}
	return &Tracker{regions: known, threshold: Threshold, sink: sink}
}

// Known reports whether id is an observable region.
func (t *Tracker) Known(id string) bool {
	_, ok := t.regions[id]
	return ok
}

// Observe starts observing on behalf of a visitor whose previously seen
// regions are seen. The caller must Close the observer.
func (t *Tracker) Observe(visitorID string, seen []string) *Observer {
	set := NewSet()
	for _, id := range seen {
		if t.Known(id) {
			set.Add(id)
		}
	}
	return &Observer{tracker: t, visitorID: visitorID, set: set}
}

// Observer accumulates intersection reports for one visitor.
type Observer struct {
	tracker   *Tracker
	visitorID string

	mu     sync.Mutex
	set    *Set
	closed bool
}

// Notify latches every entry that is intersecting at or above the threshold
// and names a known region. It returns the regions that were not seen before.
// Notifications after Close are ignored.
func (o *Observer) Notify(entries []Entry) []string {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}

	var added []string
	for _, e := range entries {
		if !e.Intersecting || e.Ratio < o.tracker.threshold || !o.tracker.Known(e.ID) {
			continue
		}
		if o.set.Add(e.ID) {
			added = append(added, e.ID)
		}
	}
	o.mu.Unlock()

	if len(added) > 0 && o.tracker.sink != nil {
		o.tracker.sink.Record(o.visitorID, added)
	}
	return added
}

// Visible returns the regions seen so far, sorted.
func (o *Observer) Visible() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.set.IDs()
}

// Close disposes the observer. It is safe to call more than once.
func (o *Observer) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
}
