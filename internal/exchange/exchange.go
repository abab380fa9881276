// Package exchange hands the most recent captured frame from a capture-rate
// producer to a display-rate consumer.
package exchange

import (
	"sync"

	"github.com/screenrec/screenrec/internal/capture"
)

// Exchange is a two-slot frame hand-off. The producer publishes into the
// slot the consumer is not reading, then flips the latest index; both sides
// hold the same lock for the full copy, so a reader can never observe a
// slot mid-write and the writer never waits for a reader between frames.
// Frames are not queued: an unconsumed frame is overwritten by the next
// publish, the consumer always sees the most recent one.
type Exchange struct {
	mu     sync.Mutex
	slots  [2]capture.Frame
	latest int
	unread bool
}

// New creates an empty exchange. Slots are sized lazily by the first publish.
func New() *Exchange {
	return &Exchange{}
}

// Publish copies frame into the exchange, replacing any unconsumed frame.
// Called only by the producer.
func (e *Exchange) Publish(f *capture.Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()

	write := 1 - e.latest
	e.slots[write].CopyFrom(f)
	e.latest = write
	e.unread = true
}

// TakeLatest copies the newest published frame into dst, resizing it as
// needed, and reports whether anything new arrived since the previous take.
// Taking with nothing pending is a no-op, not an error.
func (e *Exchange) TakeLatest(dst *capture.Frame) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.unread {
		return false
	}
	dst.CopyFrom(&e.slots[e.latest])
	e.unread = false
	return true
}

// PeekLatest copies the newest published frame into dst without consuming
// it: the primary consumer's next TakeLatest is unaffected. Used by
// secondary observers like the preview stream. Returns false when nothing
// was ever published.
func (e *Exchange) PeekLatest(dst *capture.Frame) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	latest := &e.slots[e.latest]
	if latest.Empty() {
		return false
	}
	dst.CopyFrom(latest)
	return true
}

// Pending reports whether an unconsumed frame is waiting.
func (e *Exchange) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unread
}
