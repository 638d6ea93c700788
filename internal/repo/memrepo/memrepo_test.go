package memrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/query"
	"taskmanager/internal/utils"

	"github.com/jackc/pgx/v5"
)

func seed(t *testing.T) (*Store, int64) {
	t.Helper()
	s := New()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	s.Now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	u, err := s.Users().Create(context.Background(), "owner@example.com", "Owner", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return s, u.ID
}

func TestUsers_DuplicateEmailIsUniqueViolation(t *testing.T) {
	s, _ := seed(t)
	_, err := s.Users().Create(context.Background(), "owner@example.com", "Again", "hash")
	if !utils.IsPGUniqueViolation(err) {
		t.Fatalf("got %v, want unique violation", err)
	}
	if _, err := s.Users().GetByEmail(context.Background(), "OWNER@example.com"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("email lookup must be case-sensitive, got %v", err)
	}
}

func TestTasks_CreateRequiresExistingUser(t *testing.T) {
	s, _ := seed(t)
	if _, err := s.Tasks().Create(context.Background(), dom.Task{UserID: 42, Title: "x"}); err == nil {
		t.Fatal("expected error for unknown owner")
	}
}

func TestTasks_FindSortsNullsLastAndPages(t *testing.T) {
	s, owner := seed(t)
	ctx := context.Background()
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []dom.Task{
		{Title: "a", DueDate: nil},
		{Title: "b", DueDate: &d2},
		{Title: "c", DueDate: &d1},
		{Title: "d", DueDate: &d2},
	} {
		in.UserID = owner
		in.Status, in.Priority = dom.StatusPending, dom.PriorityNormal
		if _, err := s.Tasks().Create(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	cases := []struct {
		dir  query.Direction
		want string
	}{
		{query.Asc, "cbda"},
		{query.Desc, "dbca"},
	}
	for _, tc := range cases {
		q := query.Query{
			Where: []query.Predicate{{Field: query.FieldOwner, Op: query.Eq, Value: owner}},
			Sort:  query.Sort{Field: query.FieldDueDate, Dir: tc.dir},
		}
		list, total, err := s.Tasks().Find(ctx, q)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if total != 4 || joinTitles(list) != tc.want {
			t.Fatalf("%s: got %q (total %d), want %q", tc.dir, joinTitles(list), total, tc.want)
		}

		q.Page = query.Page{Limit: 2, Offset: 1}
		list, total, err = s.Tasks().Find(ctx, q)
		if err != nil {
			t.Fatalf("find page: %v", err)
		}
		if total != 4 || joinTitles(list) != tc.want[1:3] {
			t.Fatalf("%s page: got %q (total %d)", tc.dir, joinTitles(list), total)
		}
	}
}

func TestTasks_FindRequiresOwner(t *testing.T) {
	s, _ := seed(t)
	_, _, err := s.Tasks().Find(context.Background(), query.Query{Sort: query.DefaultSort})
	if err == nil {
		t.Fatal("expected error for unscoped query")
	}
}

func TestTasks_MutationsAreOwnerScoped(t *testing.T) {
	s, owner := seed(t)
	ctx := context.Background()
	task, err := s.Tasks().Create(ctx, dom.Task{UserID: owner, Title: "mine", Status: dom.StatusDone, Priority: dom.PriorityHigh})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other := owner + 1

	if _, err := s.Tasks().GetByID(ctx, other, task.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("get: %v", err)
	}
	if _, err := s.Tasks().Update(ctx, other, task.ID, dom.TaskInput{Title: "theirs"}); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Tasks().Delete(ctx, other, task.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("delete: %v", err)
	}

	updated, err := s.Tasks().Update(ctx, owner, task.ID, dom.TaskInput{Title: "renamed"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != dom.StatusPending || updated.Priority != dom.PriorityNormal || !updated.UpdatedAt.After(task.UpdatedAt) {
		t.Fatalf("updated = %+v", updated)
	}
}

func joinTitles(list []dom.Task) string {
	var b []byte
	for _, t := range list {
		b = append(b, t.Title...)
	}
	return string(b)
}
