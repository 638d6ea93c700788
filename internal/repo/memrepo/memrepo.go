// Package memrepo is an in-memory implementation of the user and task
// stores. It evaluates compiled queries directly and reports errors the way
// Postgres does (pgx.ErrNoRows, unique violations), so services behave the
// same against it as against PGUserRepo and PGTaskRepo. One known gap: titles
// sort in byte order, not by a database collation.
package memrepo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/query"
	"taskmanager/internal/utils"

	"github.com/jackc/pgx/v5"
)

type Store struct {
	mu     sync.Mutex
	users  map[int64]dom.User
	tasks  map[int64]dom.Task
	nextID int64

	// Now stamps created_at and updated_at. Tests replace it to get
	// distinct, ordered timestamps.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		users: make(map[int64]dom.User),
		tasks: make(map[int64]dom.Task),
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the store as a repo.UserRepo.
func (s *Store) Users() *Users { return &Users{s} }

// Tasks returns the store as a repo.TaskRepo.
func (s *Store) Tasks() *Tasks { return &Tasks{s} }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

type Users struct{ s *Store }

func (u *Users) GetByEmail(_ context.Context, email string) (dom.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, usr := range u.s.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (u *Users) Create(_ context.Context, email, name, passwordHash string) (dom.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, usr := range u.s.users {
		if usr.Email == email {
			return dom.User{}, utils.UniqueViolation("users_email_key")
		}
	}
	usr := dom.User{
		ID:           u.s.id(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    u.s.Now(),
	}
	u.s.users[usr.ID] = usr
	return usr, nil
}

// Count returns how many users are stored.
func (u *Users) Count() int {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return len(u.s.users)
}

type Tasks struct{ s *Store }

func (r *Tasks) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[t.UserID]; !ok {
		return dom.Task{}, fmt.Errorf("insert task: user %d does not exist", t.UserID)
	}
	now := r.s.Now()
	t.ID = r.s.id()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.s.tasks[t.ID] = t
	return t, nil
}

func (r *Tasks) GetByID(_ context.Context, userID, id int64) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return dom.Task{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *Tasks) Update(_ context.Context, userID, id int64, in dom.TaskInput) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return dom.Task{}, pgx.ErrNoRows
	}
	t = t.Replace(in)
	t.UpdatedAt = r.s.Now()
	r.s.tasks[id] = t
	return t, nil
}

func (r *Tasks) Delete(_ context.Context, userID, id int64) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return dom.Task{}, pgx.ErrNoRows
	}
	delete(r.s.tasks, id)
	return t, nil
}

func (r *Tasks) Find(_ context.Context, q query.Query) ([]dom.Task, int64, error) {
	if _, ok := q.Owner(); !ok {
		return nil, 0, fmt.Errorf("query is not scoped to an owner")
	}
	if !query.Sortable(q.Sort.Field) {
		return nil, 0, fmt.Errorf("field %q is not sortable", q.Sort.Field)
	}

	r.s.mu.Lock()
	var matched []dom.Task
	for _, t := range r.s.tasks {
		ok, err := matchAll(t, q.Where)
		if err != nil {
			r.s.mu.Unlock()
			return nil, 0, err
		}
		if ok {
			matched = append(matched, t)
		}
	}
	r.s.mu.Unlock()

	sortTasks(matched, q.Sort)
	total := int64(len(matched))

	start := min(q.Page.Offset, len(matched))
	end := len(matched)
	if q.Page.Limit > 0 {
		end = min(start+q.Page.Limit, len(matched))
	}
	return append([]dom.Task(nil), matched[start:end]...), total, nil
}

func matchAll(t dom.Task, preds []query.Predicate) (bool, error) {
	for _, p := range preds {
		ok, err := match(t, p)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func match(t dom.Task, p query.Predicate) (bool, error) {
	switch p.Op {
	case query.Eq:
		if p.Field == query.FieldOwner {
			id, _ := p.Value.(int64)
			return t.UserID == id, nil
		}
		v, ok := stringField(t, p.Field)
		return ok && v == p.Value, nil
	case query.Contains:
		v, ok := stringField(t, p.Field)
		term, _ := p.Value.(string)
		return ok && strings.Contains(strings.ToLower(v), strings.ToLower(term)), nil
	case query.In:
		v, ok := stringField(t, p.Field)
		if !ok {
			return false, nil
		}
		vals, _ := p.Value.([]string)
		for _, want := range vals {
			if v == want {
				return true, nil
			}
		}
		return false, nil
	case query.GTE, query.LTE:
		v, ok := timeField(t, p.Field)
		bound, _ := p.Value.(time.Time)
		if !ok {
			return false, nil
		}
		if p.Op == query.GTE {
			return !v.Before(bound), nil
		}
		return !v.After(bound), nil
	}
	return false, fmt.Errorf("%s: unsupported operator %s", p.Field, p.Op)
}

// stringField returns the textual value of f; false means NULL.
func stringField(t dom.Task, f query.Field) (string, bool) {
	switch f {
	case query.FieldTitle:
		return t.Title, true
	case query.FieldStatus:
		return string(t.Status), true
	case query.FieldPriority:
		return string(t.Priority), true
	case query.FieldLabel:
		if t.Label == nil {
			return "", false
		}
		return string(*t.Label), true
	}
	return "", false
}

func timeField(t dom.Task, f query.Field) (time.Time, bool) {
	switch f {
	case query.FieldCreatedAt:
		return t.CreatedAt, true
	case query.FieldUpdatedAt:
		return t.UpdatedAt, true
	case query.FieldDueDate:
		if t.DueDate == nil {
			return time.Time{}, false
		}
		return *t.DueDate, true
	}
	return time.Time{}, false
}

// sortTasks orders like the Postgres store: enums by declaration order,
// NULLs last in both directions, ties broken by id in the same direction.
func sortTasks(list []dom.Task, s query.Sort) {
	desc := s.Dir == query.Desc
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		c, decided := compare(a, b, s.Field)
		if decided {
			return c < 0
		}
		if c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		if desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
}

// compare returns a three-way comparison of a and b on f. decided is true
// when exactly one side is NULL, in which case c already puts NULL last
// regardless of direction.
func compare(a, b dom.Task, f query.Field) (c int, decided bool) {
	switch f {
	case query.FieldTitle:
		// Byte order. Postgres orders text by the database collation, which
		// can differ for mixed case and non-ASCII titles; tests that sort by
		// title use data both orders agree on.
		return strings.Compare(a.Title, b.Title), false
	case query.FieldStatus:
		return a.Status.Rank() - b.Status.Rank(), false
	case query.FieldPriority:
		return a.Priority.Rank() - b.Priority.Rank(), false
	}
	at, aok := timeField(a, f)
	bt, bok := timeField(b, f)
	switch {
	case !aok && !bok:
		return 0, false
	case !aok:
		return 1, true
	case !bok:
		return -1, true
	}
	return at.Compare(bt), false
}
