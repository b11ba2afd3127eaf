package cache

import (
	"sync"

	"restchat/internal/domain"
)

// Subscription is one reader's registration against a cache key.
//
// Updates delivers snapshots with a buffer of one, coalescing to the most
// recent: a slow reader skips intermediate states but always observes the
// latest. Close deregisters the reader and closes the channel.
type Subscription struct {
	cache *Cache
	key   domain.ResourceKey

	mu     sync.Mutex
	ch     chan Snapshot
	closed bool
}

// Key reports the resource key this subscription reads.
func (s *Subscription) Key() domain.ResourceKey { return s.key }

// Updates is the snapshot channel. It closes when the subscription does.
func (s *Subscription) Updates() <-chan Snapshot { return s.ch }

// Close deregisters the subscription from the cache. Safe to call more
// than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	s.cache.release(s)
}

// push delivers snap without blocking, displacing an undelivered older
// snapshot if the reader has not caught up.
func (s *Subscription) push(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
