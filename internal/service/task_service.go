package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"taskmanager/internal/cache"
	dom "taskmanager/internal/domain"
	"taskmanager/internal/query"
	"taskmanager/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

// TaskService owns the task lifecycle. Every method takes the caller's
// identity and only ever sees that caller's tasks.
type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	sf    singleflight.Group
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache) *TaskService {
	return &TaskService{repo: r, cache: c}
}

func (s *TaskService) Create(ctx context.Context, owner dom.Identity, in dom.TaskInput) (dom.Task, error) {
	in = in.WithDefaults()
	if err := in.Validate(); err != nil {
		return dom.Task{}, err
	}
	t, err := s.repo.Create(ctx, dom.Task{
		UserID:      owner.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Label:       in.Label,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	})
	if err != nil {
		return dom.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.invalidateCache(ctx, owner.ID)
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, owner dom.Identity, id int64) (dom.Task, error) {
	t, err := s.repo.GetByID(ctx, owner.ID, id)
	if err != nil {
		return dom.Task{}, notFound(err, "get task")
	}
	return t, nil
}

// Update replaces the task's fields with in. Fields omitted from in fall
// back to their defaults, not to the stored values.
func (s *TaskService) Update(ctx context.Context, owner dom.Identity, id int64, in dom.TaskInput) (dom.Task, error) {
	in = in.WithDefaults()
	if err := in.Validate(); err != nil {
		return dom.Task{}, err
	}
	t, err := s.repo.Update(ctx, owner.ID, id, in)
	if err != nil {
		return dom.Task{}, notFound(err, "update task")
	}
	s.invalidateCache(ctx, owner.ID)
	return t, nil
}

// Delete removes the task permanently and returns it as it was.
func (s *TaskService) Delete(ctx context.Context, owner dom.Identity, id int64) (dom.Task, error) {
	t, err := s.repo.Delete(ctx, owner.ID, id)
	if err != nil {
		return dom.Task{}, notFound(err, "delete task")
	}
	s.invalidateCache(ctx, owner.ID)
	return t, nil
}

// List returns one page of the owner's tasks matching f, and the number of
// matching tasks across all pages.
func (s *TaskService) List(ctx context.Context, owner dom.Identity, f query.TaskFilter) ([]dom.Task, int64, error) {
	q, err := query.Compile(f, owner.ID)
	if err != nil {
		return nil, 0, err
	}
	if s.cache == nil {
		return s.find(ctx, q)
	}

	gen, err := s.cache.Generation(ctx, owner.ID)
	if err != nil {
		log.Printf("task cache generation: %v", err)
		return s.find(ctx, q)
	}
	key, err := cache.Key(q, gen)
	if err != nil {
		return nil, 0, err
	}
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if p, err := s.cache.GetPage(ctx, key); err == nil && p != nil {
			return *p, nil
		} else if err != nil {
			log.Printf("task cache get: %v", err)
		}
		list, total, err := s.find(ctx, q)
		if err != nil {
			return nil, err
		}
		p := cache.Page{Tasks: list, Count: total}
		if err := s.cache.SetPage(ctx, key, p); err != nil {
			log.Printf("task cache set: %v", err)
		}
		return p, nil
	})
	if err != nil {
		return nil, 0, err
	}
	p := v.(cache.Page)
	return p.Tasks, p.Count, nil
}

func (s *TaskService) find(ctx context.Context, q query.Query) ([]dom.Task, int64, error) {
	list, total, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	if list == nil {
		list = []dom.Task{}
	}
	return list, total, nil
}

func (s *TaskService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		log.Printf("task cache invalidate user %d: %v", userID, err)
	}
}

func notFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
