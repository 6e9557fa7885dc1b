// Package sound collects sound requests from the simulation. The engine
// only asks for assets by name; playback belongs to whichever sink drains
// the queue.
package sound

import (
	"sync"

	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/behavior"
)

// Request is one call to RequestSound.
type Request struct {
	Asset string
	Loop  bool
}

// Queue buffers requests until the sink drains them. Identical requests
// within one drain window collapse to one.
type Queue struct {
	mu      sync.Mutex
	pending []Request
	seen    map[Request]bool
	log     *zap.Logger
}

var _ behavior.SoundRequester = (*Queue)(nil)

func NewQueue(logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{seen: map[Request]bool{}, log: logger}
}

func (q *Queue) RequestSound(asset string, loop bool) {
	if asset == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	r := Request{Asset: asset, Loop: loop}
	if q.seen[r] {
		return
	}
	q.seen[r] = true
	q.pending = append(q.pending, r)
	q.log.Debug("sound requested", zap.String("asset", asset), zap.Bool("loop", loop))
}

// Drain returns the pending requests in arrival order and clears them.
func (q *Queue) Drain() []Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	clear(q.seen)
	return out
}
