package app

import (
	"sync"

	"github.com/NikiWay00/modern-video-downloader/internal/domain"
)

// eventQueue is the conduit between the worker goroutines and the
// presentation layer's poll loop. It is append-only and poll-drained:
// publication order is preserved and no message is ever dropped,
// regardless of how slowly the consumer polls.
type eventQueue struct {
	mu      sync.Mutex
	pending []domain.Message
}

func (q *eventQueue) publish(msg domain.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, msg)
}

// drain returns all queued messages in publication order, or nil
func (q *eventQueue) drain() []domain.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}
