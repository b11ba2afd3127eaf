// Package cache implements a keyed store of asynchronous read results.
//
// Each key holds at most one entry and at most one in-flight fetch;
// concurrent readers of the same key share that fetch. Readers receive a
// Subscription whose channel carries status snapshots; invalidating a key
// marks its entry stale and, when the key has active subscribers, triggers
// an immediate refetch.
//
// Every entry carries a monotonic fetch sequence. An invalidation issued
// while a fetch is in flight bumps the sequence, so the superseded fetch's
// result is discarded when it eventually lands instead of overwriting the
// newer state.
package cache
