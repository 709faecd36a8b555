package ports

import "github.com/weftlabs/weft/pkg/domain"

// ProgressSink receives progress events during a run: a UI callback, a log
// stream, an SSE broadcaster. Publish must not block for long; it is called
// on the executor goroutine.
type ProgressSink interface {
	Publish(e domain.ProgressEvent)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(domain.ProgressEvent)

// Publish implements ProgressSink.
func (f ProgressFunc) Publish(e domain.ProgressEvent) {
	f(e)
}
