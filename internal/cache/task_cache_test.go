package cache

import (
	"context"
	"testing"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/query"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*TaskCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTaskCache(rdb, time.Minute), mr
}

func mustKey(t *testing.T, f query.TaskFilter, owner int64) string {
	t.Helper()
	return mustKeyAt(t, f, owner, 0)
}

func mustKeyAt(t *testing.T, f query.TaskFilter, owner, gen int64) string {
	t.Helper()
	q, err := query.Compile(f, owner)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	k, err := Key(q, gen)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	return k
}

func TestKey_ScopedByOwnerAndFilter(t *testing.T) {
	a := mustKey(t, query.TaskFilter{}, 1)
	if a != mustKey(t, query.TaskFilter{}, 1) {
		t.Fatal("same query must produce the same key")
	}
	if a == mustKey(t, query.TaskFilter{}, 2) {
		t.Fatal("different owners must not share a key")
	}
	if a == mustKey(t, query.TaskFilter{Search: "x"}, 1) {
		t.Fatal("different filters must not share a key")
	}
	if a == mustKeyAt(t, query.TaskFilter{}, 1, 1) {
		t.Fatal("different generations must not share a key")
	}
	if _, err := Key(query.Query{}, 0); err == nil {
		t.Fatal("unscoped query must not produce a key")
	}
}

func TestTaskCache_SetGetInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	k1 := mustKey(t, query.TaskFilter{}, 1)
	k2 := mustKey(t, query.TaskFilter{}, 2)

	if p, err := c.GetPage(ctx, k1); err != nil || p != nil {
		t.Fatalf("expected miss, got %v, %v", p, err)
	}

	page := Page{Tasks: []dom.Task{{ID: 3, UserID: 1, Title: "A", Status: dom.StatusPending}}, Count: 1}
	if err := c.SetPage(ctx, k1, page); err != nil {
		t.Fatalf("SetPage: %v", err)
	}
	if err := c.SetPage(ctx, k2, Page{Count: 0}); err != nil {
		t.Fatalf("SetPage: %v", err)
	}
	if ttl := mr.TTL(k1); ttl != time.Minute {
		t.Fatalf("ttl = %v", ttl)
	}

	got, err := c.GetPage(ctx, k1)
	if err != nil || got == nil {
		t.Fatalf("GetPage: %v, %v", got, err)
	}
	if got.Count != 1 || len(got.Tasks) != 1 || got.Tasks[0].Title != "A" {
		t.Fatalf("page = %+v", got)
	}

	if err := c.InvalidateUser(ctx, 1); err != nil {
		t.Fatalf("InvalidateUser: %v", err)
	}
	if mr.Exists(k1) {
		t.Fatal("owner 1 page survived invalidation")
	}
	if !mr.Exists(k2) {
		t.Fatal("owner 2 page must not be invalidated by owner 1 writes")
	}
}

func TestTaskCache_InvalidateAdvancesGeneration(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx, 1)
	if err != nil || gen != 0 {
		t.Fatalf("initial generation = %d, %v", gen, err)
	}
	if err := c.InvalidateUser(ctx, 1); err != nil {
		t.Fatalf("InvalidateUser: %v", err)
	}
	if gen, _ = c.Generation(ctx, 1); gen != 1 {
		t.Fatalf("generation after write = %d, want 1", gen)
	}
	if other, _ := c.Generation(ctx, 2); other != 0 {
		t.Fatalf("owner 2 generation = %d, want 0", other)
	}

	// A page stored under the old generation after the write is not what
	// the next lookup asks for.
	old := mustKeyAt(t, query.TaskFilter{}, 1, 0)
	if err := c.SetPage(ctx, old, Page{Count: 7}); err != nil {
		t.Fatalf("SetPage: %v", err)
	}
	if p, err := c.GetPage(ctx, mustKeyAt(t, query.TaskFilter{}, 1, gen)); err != nil || p != nil {
		t.Fatalf("expected miss at generation %d, got %v, %v", gen, p, err)
	}

	// Invalidation drops pages but keeps the generation counter.
	if err := c.InvalidateUser(ctx, 1); err != nil {
		t.Fatalf("InvalidateUser: %v", err)
	}
	if mr.Exists(old) {
		t.Fatal("old page survived invalidation")
	}
	if gen, _ = c.Generation(ctx, 1); gen != 2 {
		t.Fatalf("generation = %d, want 2", gen)
	}
}
