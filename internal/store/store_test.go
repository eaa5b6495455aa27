package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/postpress/cnotify/pkg/kv"
)

func newTestKV(t *testing.T) *kv.Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return kv.New(rdb, "cnotify")
}

func TestDraftSaveLoadRoundTrip(t *testing.T) {
	drafts := NewDrafts(newTestKV(t))
	ctx := context.Background()

	if err := drafts.Save(ctx, "42", "Weekly Update", "<p>hello</p>", []string{"editor", "author"}); err != nil {
		t.Fatal(err)
	}

	got, err := drafts.Load(ctx, "42")
	if err != nil {
		t.Fatal(err)
	}
	if got.Subject != "Weekly Update" || got.Body != "<p>hello</p>" {
		t.Fatalf("got %+v", got)
	}
	if len(got.Groups) != 2 || got.Groups[0] != "editor" {
		t.Fatalf("groups %v", got.Groups)
	}
}

func TestDraftLoadUntouchedSubjectIsEmpty(t *testing.T) {
	drafts := NewDrafts(newTestKV(t))

	got, err := drafts.Load(context.Background(), "never-seen")
	if err != nil {
		t.Fatal(err)
	}
	if got.Subject != "" || got.Body != "" || len(got.Groups) != 0 {
		t.Fatalf("want empty draft, got %+v", got)
	}
}

func TestDraftSaveOverwrites(t *testing.T) {
	drafts := NewDrafts(newTestKV(t))
	ctx := context.Background()

	_ = drafts.Save(ctx, "42", "First", "one", []string{"editor"})
	_ = drafts.Save(ctx, "42", "Second", "two", nil)

	got, err := drafts.Load(ctx, "42")
	if err != nil {
		t.Fatal(err)
	}
	if got.Subject != "Second" || got.Body != "two" || len(got.Groups) != 0 {
		t.Fatalf("last write must win, got %+v", got)
	}
}

func TestArchiveAppendListRoundTrip(t *testing.T) {
	kvStore := newTestKV(t)
	drafts := NewDrafts(kvStore)
	archive := NewArchive(kvStore, drafts)
	ctx := context.Background()

	// Control characters, embedded quotes and multi-byte text all have
	// to survive the trip through the stored record.
	body := "line one\r\nline \"two\"\x00\x1b – søndag 日本語"
	sentAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := archive.Append(ctx, "42", "Weekly Update", body, []string{"editor"}, sentAt); err != nil {
		t.Fatal(err)
	}

	got, err := archive.List(ctx, "42")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 entry, got %d", len(got))
	}
	if got[0].Body != body {
		t.Fatalf("body not byte-identical: %q vs %q", got[0].Body, body)
	}
	if got[0].Subject != "Weekly Update" || !got[0].SentAt.Equal(sentAt) {
		t.Fatalf("got %+v", got[0])
	}
}

func TestArchiveAppendPreservesOrder(t *testing.T) {
	kvStore := newTestKV(t)
	drafts := NewDrafts(kvStore)
	archive := NewArchive(kvStore, drafts)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, subject := range []string{"First send", "Second send", "Third send"} {
		if err := archive.Append(ctx, "42", subject, "body", []string{"editor"}, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := archive.List(ctx, "42")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 entries, got %d", len(got))
	}
	if got[0].Subject != "First send" || got[1].Subject != "Second send" || got[2].Subject != "Third send" {
		t.Fatalf("order broken: %+v", got)
	}
}

func TestArchiveListEmptySubject(t *testing.T) {
	kvStore := newTestKV(t)
	archive := NewArchive(kvStore, NewDrafts(kvStore))

	got, err := archive.List(context.Background(), "never-sent")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty list, got %v", got)
	}
}

func TestArchiveAppendClearsDraft(t *testing.T) {
	kvStore := newTestKV(t)
	drafts := NewDrafts(kvStore)
	archive := NewArchive(kvStore, drafts)
	ctx := context.Background()

	_ = drafts.Save(ctx, "42", "Weekly Update", "content", []string{"editor"})

	if err := archive.Append(ctx, "42", "Weekly Update", "content", []string{"editor"}, time.Now()); err != nil {
		t.Fatal(err)
	}

	got, err := drafts.Load(ctx, "42")
	if err != nil {
		t.Fatal(err)
	}
	if got.Body != "" {
		t.Fatalf("draft must be cleared after a successful append, got %+v", got)
	}
}

func TestSettingsDefaultsAndRoundTrip(t *testing.T) {
	settings := NewSettings(newTestKV(t), Settings{FromEmail: "no-reply@x.com", FromName: "X"})
	ctx := context.Background()

	got, err := settings.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.FromEmail != "no-reply@x.com" || got.FromName != "X" {
		t.Fatalf("defaults not applied: %+v", got)
	}

	if err := settings.Save(ctx, Settings{FromEmail: "news@x.com", FromName: "X News"}); err != nil {
		t.Fatal(err)
	}
	got, err = settings.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.FromEmail != "news@x.com" || got.FromName != "X News" {
		t.Fatalf("got %+v", got)
	}
}

func TestSettingsDeleteAll(t *testing.T) {
	kvStore := newTestKV(t)
	drafts := NewDrafts(kvStore)
	archive := NewArchive(kvStore, drafts)
	settings := NewSettings(kvStore, Settings{FromEmail: "no-reply@x.com", FromName: "X"})
	ctx := context.Background()

	_ = drafts.Save(ctx, "1", "Subject one", "a", []string{"editor"})
	_ = drafts.Save(ctx, "2", "Subject two", "b", []string{"editor"})
	_ = archive.Append(ctx, "3", "Subject three", "c", []string{"editor"}, time.Now())
	_ = settings.Save(ctx, Settings{FromEmail: "news@x.com", FromName: "X News"})

	if err := settings.DeleteAll(ctx); err != nil {
		t.Fatal(err)
	}

	d, _ := drafts.Load(ctx, "1")
	if d.Body != "" {
		t.Fatal("draft survived DeleteAll")
	}
	sent, _ := archive.List(ctx, "3")
	if len(sent) != 0 {
		t.Fatal("archive survived DeleteAll")
	}
	s, _ := settings.Load(ctx)
	if s.FromEmail != "no-reply@x.com" {
		t.Fatalf("settings not reset to defaults: %+v", s)
	}
}
