package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return New(rdb, "cnotify")
}

func TestSetGetDel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	type rec struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}

	if err := s.Set(ctx, "r1", rec{Name: "a", N: 2}); err != nil {
		t.Fatal(err)
	}

	var got rec
	ok, err := s.Get(ctx, "r1", &got)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got.Name != "a" || got.N != 2 {
		t.Fatalf("got %+v ok=%v", got, ok)
	}

	if err := s.Del(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	ok, err = s.Get(ctx, "r1", &got)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("key should be gone after Del")
	}
}

func TestGetMissingLeavesDstUntouched(t *testing.T) {
	s := newTestStore(t)

	got := map[string]string{"keep": "me"}
	ok, err := s.Get(context.Background(), "nope", &got)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("missing key reported as present")
	}
	if got["keep"] != "me" {
		t.Fatal("dst was modified for a missing key")
	}
}

func TestAppendList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, v := range []string{"one", "two", "three"} {
		if err := s.Append(ctx, "log", v); err != nil {
			t.Fatal(err)
		}
	}

	items, err := s.List(ctx, "log")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("want 3 items, got %d", len(items))
	}
	if string(items[0]) != `"one"` || string(items[2]) != `"three"` {
		t.Fatalf("order not preserved: %q %q", items[0], items[2])
	}
}

func TestKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Set(ctx, "draft:1", "a")
	_ = s.Set(ctx, "draft:2", "b")
	_ = s.Set(ctx, "sent:1", "c")

	keys, err := s.Keys(ctx, "draft:*")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("want 2 draft keys, got %v", keys)
	}
	for _, k := range keys {
		if k != "draft:1" && k != "draft:2" {
			t.Fatalf("unexpected key %q", k)
		}
	}
}
