package dto

import (
	"encoding/json"
	"strings"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/query"
)

const dateLayout = "2006-01-02"

// dateLayouts are tried in order. Date-only input is a calendar date; the
// others keep the date part of the given timestamp.
var dateLayouts = []string{
	dateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// Date parses due_date from JSON as either date-only ("2006-01-02") or
// RFC3339. null and "" both mean no date.
type Date struct{ t *time.Time }

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return dom.NewValidationError("due_date", "must be a string date")
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	t, ok := parseTime(*raw)
	if !ok {
		return dom.NewValidationError("due_date", "use date (YYYY-MM-DD) or RFC3339 datetime")
	}
	day := dom.DateOf(t)
	d.t = &day
	return nil
}

// Ptr returns *time.Time for use in service/domain.
func (d Date) Ptr() *time.Time { return d.t }

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TaskRequest is the body of both POST /tasks and PUT /tasks/{id}. On PUT,
// omitted fields are reset to their defaults.
type TaskRequest struct {
	Title       string  `json:"title" binding:"required,max=32" example:"Write report"`
	Description *string `json:"description"`
	Status      string  `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS DONE" example:"PENDING"`
	Label       *string `json:"label" binding:"omitempty,oneof=WORK PERSONAL OTHER" example:"WORK"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH" example:"NORMAL"`
	DueDate     Date    `json:"due_date" swaggertype:"string" example:"2026-02-19"`
}

// ToInput converts the request into the service input.
func (r TaskRequest) ToInput() dom.TaskInput {
	in := dom.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      dom.TaskStatus(r.Status),
		Priority:    dom.TaskPriority(r.Priority),
		DueDate:     r.DueDate.Ptr(),
	}
	if r.Label != nil && *r.Label != "" {
		l := dom.TaskLabel(*r.Label)
		in.Label = &l
	}
	return in
}

type TaskResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	Label       *string   `json:"label"`
	Priority    string    `json:"priority"`
	DueDate     *string   `json:"due_date" example:"2026-02-19"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewTaskResponse(t dom.Task) TaskResponse {
	out := TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Label != nil {
		l := string(*t.Label)
		out.Label = &l
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(dateLayout)
		out.DueDate = &d
	}
	return out
}

type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int64          `json:"count"`
}

func NewListTasksResponse(list []dom.Task, count int64) ListTasksResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = NewTaskResponse(list[i])
	}
	return ListTasksResponse{Tasks: out, Count: count}
}

// TaskFilterQuery is the query string of GET /tasks.
type TaskFilterQuery struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS DONE"`
	Priority string `form:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH"`
	// Labels accepts repeated keys, the labels[] form and comma-separated values.
	Labels        []string `form:"labels"`
	LabelsBracket []string `form:"labels[]" swaggerignore:"true"`

	AfterCreatedAt  string `form:"after_created_at" example:"2026-01-01T00:00:00Z"`
	BeforeCreatedAt string `form:"before_created_at"`
	AfterDueDate    string `form:"after_due_date" example:"2026-01-01"`
	BeforeDueDate   string `form:"before_due_date"`

	SortKey      string `form:"sort_key" example:"DUE_DATE__ASC"`
	SortKeyCamel string `form:"sortKey" swaggerignore:"true"`

	Limit  *int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset *int `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the raw query into a typed filter. Unknown labels and
// unparseable dates are reported per field.
func (q TaskFilterQuery) ToFilter() (query.TaskFilter, error) {
	v := &dom.ValidationError{}
	f := query.TaskFilter{
		Search:   q.Search,
		Status:   dom.TaskStatus(q.Status),
		Priority: dom.TaskPriority(q.Priority),
		SortKey:  q.SortKey,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if f.SortKey == "" {
		f.SortKey = q.SortKeyCamel
	}

	for _, group := range [][]string{q.Labels, q.LabelsBracket} {
		for _, raw := range group {
			for _, part := range strings.Split(raw, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				l := dom.TaskLabel(part)
				if !l.Valid() {
					v.Add("labels", "must be one of WORK, PERSONAL, OTHER")
					continue
				}
				f.Labels = append(f.Labels, l)
			}
		}
	}

	f.AfterCreatedAt = timeParam(v, "after_created_at", q.AfterCreatedAt)
	f.BeforeCreatedAt = timeParam(v, "before_created_at", q.BeforeCreatedAt)
	f.AfterDueDate = timeParam(v, "after_due_date", q.AfterDueDate)
	f.BeforeDueDate = timeParam(v, "before_due_date", q.BeforeDueDate)

	if err := v.OrNil(); err != nil {
		return query.TaskFilter{}, err
	}
	return f, nil
}

func timeParam(v *dom.ValidationError, name, raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	t, ok := parseTime(raw)
	if !ok {
		v.Add(name, "use date (YYYY-MM-DD) or RFC3339 datetime")
		return nil
	}
	return &t
}
