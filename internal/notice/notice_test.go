package notice

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/postpress/cnotify/pkg/kv"
)

func newTestKV(t *testing.T) (*kv.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return kv.New(rdb, "cnotify"), mr
}

func TestEnqueueDedup(t *testing.T) {
	store, _ := newTestKV(t)
	q, err := Open(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}

	q.Enqueue("saved", TypeSuccess)
	q.Enqueue("saved", TypeSuccess)
	q.Enqueue("saved", TypeError) // same text, other bucket is fine

	if got := q.Drain(TypeSuccess); len(got) != 1 || got[0] != "saved" {
		t.Fatalf("success bucket: %v", got)
	}
	if got := q.Drain(TypeError); len(got) != 1 {
		t.Fatalf("error bucket: %v", got)
	}
}

func TestDrainClearsBucket(t *testing.T) {
	store, _ := newTestKV(t)
	q, _ := Open(context.Background(), store)

	q.Enqueue("one", TypeError)
	q.Enqueue("two", TypeError)

	got := q.Drain(TypeError)
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("got %v", got)
	}
	if again := q.Drain(TypeError); again != nil {
		t.Fatalf("second drain must be empty, got %v", again)
	}
}

func TestFlushPersistsAcrossCycles(t *testing.T) {
	store, _ := newTestKV(t)
	ctx := context.Background()

	// Cycle one enqueues but never renders.
	q1, _ := Open(ctx, store)
	q1.Enqueue("pending message", TypeError)
	if err := q1.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	// Cycle two sees the undisplayed notice, renders it, flushes.
	q2, _ := Open(ctx, store)
	got := q2.Drain(TypeError)
	if len(got) != 1 || got[0] != "pending message" {
		t.Fatalf("got %v", got)
	}
	if err := q2.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	// Cycle three starts clean.
	q3, _ := Open(ctx, store)
	if got := q3.Drain(TypeError); got != nil {
		t.Fatalf("notice leaked into a later cycle: %v", got)
	}
}

func TestFlushNoopWhenClean(t *testing.T) {
	store, mr := newTestKV(t)
	ctx := context.Background()

	q, _ := Open(ctx, store)
	if err := q.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("cnotify:notices") {
		t.Fatal("clean flush must not write the store")
	}

	q.Enqueue("something", TypeSuccess)
	if err := q.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("cnotify:notices") {
		t.Fatal("dirty flush must persist")
	}
}
