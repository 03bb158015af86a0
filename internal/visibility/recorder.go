package visibility

import (
	"context"
	"sync"

	"github.com/garyellow/itdept-site/internal/config"
	"github.com/garyellow/itdept-site/internal/ctxutil"
	"github.com/garyellow/itdept-site/internal/logger"
	"github.com/garyellow/itdept-site/internal/metrics"
)

// Store persists seen regions. Adding an already stored region is a no-op.
type Store interface {
	AddVisibleSections(ctx context.Context, visitorID string, regions []string) error
}

// RecorderConfig configures a Recorder.
type RecorderConfig struct {
	QueueSize int
	Logger    *logger.Logger
	Metrics   *metrics.Metrics // optional
}

type update struct {
	visitorID string
	regions   []string
}

// Recorder is the single writer of seen regions. Record enqueues without
// blocking and one goroutine drains the queue into the Store.
type Recorder struct {
	store   Store
	log     *logger.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	queue  chan update
	closed bool
	done   chan struct{}
}

// NewRecorder starts the writer goroutine.
func NewRecorder(store Store, cfg RecorderConfig) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.New("info")
	}

	r := &Recorder{
		store:   store,
		log:     cfg.Logger.WithModule("visibility"),
		metrics: cfg.Metrics,
		queue:   make(chan update, cfg.QueueSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record implements Sink. It returns false when the update was dropped
// because the queue is full or the recorder is closed.
func (r *Recorder) Record(visitorID string, regions []string) bool {
	if visitorID == "" || len(regions) == 0 {
		return true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}

	select {
	case r.queue <- update{visitorID: visitorID, regions: append([]string(nil), regions...)}:
		if r.metrics != nil {
			r.metrics.SetVisibilityQueueDepth(len(r.queue))
		}
		return true
	default:
		if r.metrics != nil {
			r.metrics.RecordVisibilityDrop()
		}
		r.log.WithField("visitor_id", visitorID).Warn("Visibility queue full, dropping update")
		return false
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for u := range r.queue {
		r.write(u)
		if r.metrics != nil {
			r.metrics.SetVisibilityQueueDepth(len(r.queue))
		}
	}
}

func (r *Recorder) write(u update) {
	ctx, cancel := context.WithTimeout(ctxutil.WithVisitorID(context.Background(), u.visitorID), config.StorageOperation)
	defer cancel()

	if err := r.store.AddVisibleSections(ctx, u.visitorID, u.regions); err != nil {
		r.log.WithError(err).WarnContext(ctx, "Failed to persist visible sections")
		return
	}
	if r.metrics != nil {
		for _, region := range u.regions {
			r.metrics.RecordSectionRevealed(region)
		}
	}
}

// Close stops accepting updates and waits for queued ones to be written,
// or for ctx to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
