package repo

import (
	"context"
	"fmt"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/query"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepo persists tasks. Every method except Create is scoped by owner and
// returns pgx.ErrNoRows when no task with that id belongs to that owner.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, userID, id int64) (dom.Task, error)
	// Update overwrites every mutable field with in and refreshes updated_at.
	Update(ctx context.Context, userID, id int64, in dom.TaskInput) (dom.Task, error)
	// Delete removes the task and returns it as it was before removal.
	Delete(ctx context.Context, userID, id int64) (dom.Task, error)
	// Find returns the page selected by q and the number of rows matching
	// q.Where regardless of the page window.
	Find(ctx context.Context, q query.Query) ([]dom.Task, int64, error)
}

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

const taskColumns = `id, user_id, title, description, status, label, priority, due_date, created_at, updated_at`

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	q := `
		INSERT INTO tasks (user_id, title, description, status, label, priority, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, q,
		t.UserID, t.Title, t.Description, string(t.Status), labelArg(t.Label), string(t.Priority), t.DueDate,
	))
}

func (r *PGTaskRepo) GetByID(ctx context.Context, userID, id int64) (dom.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	return scanTask(r.db.QueryRow(ctx, q, id, userID))
}

// Update is a single owner-scoped statement, so the task cannot disappear
// or change owner between the lookup and the write.
func (r *PGTaskRepo) Update(ctx context.Context, userID, id int64, in dom.TaskInput) (dom.Task, error) {
	q := `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, label = $6, priority = $7, due_date = $8, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, q,
		id, userID, in.Title, in.Description, string(in.Status), labelArg(in.Label), string(in.Priority), in.DueDate,
	))
}

func (r *PGTaskRepo) Delete(ctx context.Context, userID, id int64) (dom.Task, error) {
	q := `DELETE FROM tasks WHERE id = $1 AND user_id = $2 RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, q, id, userID))
}

// Find sends the page query and the count query in one batch, which Postgres
// runs as a single implicit transaction, so the count matches the page.
func (r *PGTaskRepo) Find(ctx context.Context, q query.Query) ([]dom.Task, int64, error) {
	stmt, err := renderFind(q)
	if err != nil {
		return nil, 0, err
	}

	b := &pgx.Batch{}
	b.Queue(stmt.list, stmt.listArgs...)
	b.Queue(stmt.count, stmt.countArgs...)
	br := r.db.SendBatch(ctx, b)
	defer br.Close()

	rows, err := br.Query()
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dom.Task, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	var total int64
	if err := br.QueryRow().Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}
	if err := br.Close(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var (
		t                dom.Task
		status, priority string
		label            *string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &status, &label, &priority,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return dom.Task{}, err
	}
	t.Status = dom.TaskStatus(status)
	t.Priority = dom.TaskPriority(priority)
	if label != nil {
		l := dom.TaskLabel(*label)
		t.Label = &l
	}
	return t, nil
}

func labelArg(l *dom.TaskLabel) any {
	if l == nil {
		return nil
	}
	return string(*l)
}
