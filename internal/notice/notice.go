package notice

import (
	"context"
	"fmt"

	"github.com/postpress/cnotify/pkg/kv"
	"github.com/postpress/cnotify/pkg/metrics"
)

// Type is the display bucket a notice lands in.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
)

const storeKey = "notices"

// Queue carries status messages across the redirect-after-submit cycle.
// One Queue is opened per request cycle, mutated freely, and flushed
// exactly once at teardown. It is not safe for concurrent use; each
// request owns its own instance.
type Queue struct {
	store   *kv.Store
	buckets map[Type][]string
	dirty   bool
}

// Open loads the persisted notice state, merged over empty buckets.
// Must run before anything that may want to enqueue during the cycle.
func Open(ctx context.Context, store *kv.Store) (*Queue, error) {
	q := &Queue{
		store: store,
		buckets: map[Type][]string{
			TypeSuccess: {},
			TypeError:   {},
		},
	}

	persisted := make(map[Type][]string)
	if _, err := store.Get(ctx, storeKey, &persisted); err != nil {
		return nil, fmt.Errorf("loading notices: %w", err)
	}
	for t, msgs := range persisted {
		if len(msgs) > 0 {
			q.buckets[t] = msgs
		}
	}
	return q, nil
}

// Enqueue queues a message for the next render. A message already
// queued in the same bucket is dropped.
func (q *Queue) Enqueue(message string, t Type) {
	for _, m := range q.buckets[t] {
		if m == message {
			return
		}
	}
	q.buckets[t] = append(q.buckets[t], message)
	q.dirty = true
	metrics.NoticesEnqueued.WithLabelValues(string(t)).Inc()
}

// Drain returns and clears the bucket. The store only ever holds
// undisplayed notices, so a non-empty drain marks the queue dirty.
func (q *Queue) Drain(t Type) []string {
	msgs := q.buckets[t]
	if len(msgs) == 0 {
		return nil
	}
	q.buckets[t] = []string{}
	q.dirty = true
	return msgs
}

// Flush persists the buckets if anything changed since Open. Safe to
// call when nothing changed; it is then a no-op.
func (q *Queue) Flush(ctx context.Context) error {
	if !q.dirty {
		return nil
	}
	if err := q.store.Set(ctx, storeKey, q.buckets); err != nil {
		return fmt.Errorf("flushing notices: %w", err)
	}
	q.dirty = false
	return nil
}
