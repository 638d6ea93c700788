package domain

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// Statuses lists every status in the order the database enum declares them.
var Statuses = []TaskStatus{StatusPending, StatusInProgress, StatusDone}

func (s TaskStatus) Valid() bool { return rankOf(Statuses, s) >= 0 }

// Rank is the position of s in the enum declaration, -1 if unknown.
func (s TaskStatus) Rank() int { return rankOf(Statuses, s) }

type TaskLabel string

const (
	LabelWork     TaskLabel = "WORK"
	LabelPersonal TaskLabel = "PERSONAL"
	LabelOther    TaskLabel = "OTHER"
)

var Labels = []TaskLabel{LabelWork, LabelPersonal, LabelOther}

func (l TaskLabel) Valid() bool { return rankOf(Labels, l) >= 0 }

func (l TaskLabel) Rank() int { return rankOf(Labels, l) }

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityNormal TaskPriority = "NORMAL"
	PriorityHigh   TaskPriority = "HIGH"
)

var Priorities = []TaskPriority{PriorityLow, PriorityNormal, PriorityHigh}

func (p TaskPriority) Valid() bool { return rankOf(Priorities, p) >= 0 }

func (p TaskPriority) Rank() int { return rankOf(Priorities, p) }

func rankOf[T comparable](all []T, v T) int {
	for i := range all {
		if all[i] == v {
			return i
		}
	}
	return -1
}

// Task is the stored task record. UserID is the owner and never changes.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description *string
	Status      TaskStatus
	Label       *TaskLabel
	Priority    TaskPriority
	DueDate     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskInput carries the client-supplied fields of a task, used both for
// creation and for full replacement. Zero values mean "not supplied".
type TaskInput struct {
	Title       string
	Description *string
	Status      TaskStatus
	Label       *TaskLabel
	Priority    TaskPriority
	DueDate     *time.Time
}

const TitleMaxLen = 32

// WithDefaults fills omitted enum fields with the schema defaults and
// normalizes the due date to a calendar date in UTC.
func (in TaskInput) WithDefaults() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = StatusPending
	}
	if in.Priority == "" {
		in.Priority = PriorityNormal
	}
	if in.DueDate != nil {
		d := DateOf(*in.DueDate)
		in.DueDate = &d
	}
	return in
}

// Validate reports every invalid field at once.
func (in TaskInput) Validate() error {
	v := &ValidationError{}
	switch n := len([]rune(in.Title)); {
	case n == 0:
		v.Add("title", "is required")
	case n > TitleMaxLen:
		v.Add("title", "must be at most 32 characters")
	}
	if in.Status != "" && !in.Status.Valid() {
		v.Add("status", "must be one of PENDING, IN_PROGRESS, DONE")
	}
	if in.Label != nil && !in.Label.Valid() {
		v.Add("label", "must be one of WORK, PERSONAL, OTHER")
	}
	if in.Priority != "" && !in.Priority.Valid() {
		v.Add("priority", "must be one of LOW, NORMAL, HIGH")
	}
	return v.OrNil()
}

// Replace merges in over t: identity, owner and creation time are kept,
// every other field is taken from in, so omitted fields end up at their
// defaults rather than their previous values.
func (t Task) Replace(in TaskInput) Task {
	in = in.WithDefaults()
	t.Title = in.Title
	t.Description = in.Description
	t.Status = in.Status
	t.Label = in.Label
	t.Priority = in.Priority
	t.DueDate = in.DueDate
	return t
}

// DateOf drops the time of day, keeping the calendar date as seen in t's
// location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
