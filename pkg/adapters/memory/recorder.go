package memory

import (
	"sync"

	"github.com/weftlabs/weft/pkg/domain"
)

// Recorder implements ports.ProgressSink by collecting events. Used by
// tests and by the HTTP adapter to serve per-run progress trails.
type Recorder struct {
	mu     sync.RWMutex
	events []domain.ProgressEvent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish implements ports.ProgressSink.
func (r *Recorder) Publish(e domain.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns all recorded events in emission order.
func (r *Recorder) Events() []domain.ProgressEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ProgressEvent(nil), r.events...)
}

// ForRun returns the events of one run, in emission order.
func (r *Recorder) ForRun(runID string) []domain.ProgressEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ProgressEvent, 0)
	for _, e := range r.events {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
