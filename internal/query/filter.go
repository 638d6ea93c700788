package query

import (
	"strings"
	"time"

	dom "taskmanager/internal/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// DefaultSort applies when the filter has no sort key.
var DefaultSort = Sort{Field: FieldCreatedAt, Dir: Desc}

// TaskFilter is the typed set of optional list parameters. Nil or empty
// fields are not applied.
type TaskFilter struct {
	Search   string
	Status   dom.TaskStatus
	Priority dom.TaskPriority
	Labels   []dom.TaskLabel

	AfterCreatedAt  *time.Time
	BeforeCreatedAt *time.Time
	AfterDueDate    *time.Time
	BeforeDueDate   *time.Time

	// SortKey is FIELD__DIRECTION, e.g. TITLE__ASC. Direction defaults to DESC.
	SortKey string

	Limit  *int
	Offset *int
}

// Compile turns f into a query scoped to ownerID. It is pure and
// deterministic: the same filter always yields the same query.
func Compile(f TaskFilter, ownerID int64) (Query, error) {
	if err := f.Validate(); err != nil {
		return Query{}, err
	}

	where := []Predicate{eq(FieldOwner, ownerID)}
	// The term is matched literally, surrounding spaces included.
	if f.Search != "" {
		where = append(where, Predicate{Field: FieldTitle, Op: Contains, Value: f.Search})
	}
	if f.Status != "" {
		where = append(where, eq(FieldStatus, string(f.Status)))
	}
	if f.Priority != "" {
		where = append(where, eq(FieldPriority, string(f.Priority)))
	}
	if labels := dedupeLabels(f.Labels); len(labels) > 0 {
		where = append(where, Predicate{Field: FieldLabel, Op: In, Value: labels})
	}
	where = append(where, between(FieldCreatedAt, f.AfterCreatedAt, f.BeforeCreatedAt)...)
	where = append(where, between(FieldDueDate, dateOrNil(f.AfterDueDate), dateOrNil(f.BeforeDueDate))...)

	sort := DefaultSort
	if f.SortKey != "" {
		s, err := ParseSortKey(f.SortKey)
		if err != nil {
			return Query{}, err
		}
		sort = s
	}

	page := Page{Limit: DefaultLimit}
	if f.Limit != nil {
		page.Limit = *f.Limit
	}
	if f.Offset != nil {
		page.Offset = *f.Offset
	}

	return Query{Where: where, Sort: sort, Page: page}, nil
}

// Validate checks the parts of the filter that the store cannot be trusted
// with: enum values, the page window and the sort key.
func (f TaskFilter) Validate() error {
	v := &dom.ValidationError{}
	if f.Status != "" && !f.Status.Valid() {
		v.Add("status", "must be one of PENDING, IN_PROGRESS, DONE")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		v.Add("priority", "must be one of LOW, NORMAL, HIGH")
	}
	for _, l := range f.Labels {
		if !l.Valid() {
			v.Add("labels", "each label must be one of WORK, PERSONAL, OTHER")
		}
	}
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > MaxLimit) {
		v.Add("limit", "must be between 1 and 100")
	}
	if f.Offset != nil && *f.Offset < 0 {
		v.Add("offset", "must not be negative")
	}
	if f.SortKey != "" {
		if _, problem := parseSortKey(f.SortKey); problem != "" {
			v.Add("sort_key", problem)
		}
	}
	return v.OrNil()
}

// ParseSortKey splits FIELD__DIRECTION. The field is lower-cased and must be
// sortable; the direction is case-insensitive and defaults to DESC.
func ParseSortKey(key string) (Sort, error) {
	s, problem := parseSortKey(key)
	if problem != "" {
		return Sort{}, dom.NewValidationError("sort_key", problem)
	}
	return s, nil
}

func parseSortKey(key string) (Sort, string) {
	name, dir, _ := strings.Cut(strings.TrimSpace(key), "__")
	field := Field(strings.ToLower(name))
	if !Sortable(field) {
		return Sort{}, "field must be one of title, status, priority, due_date, created_at, updated_at"
	}
	s := Sort{Field: field, Dir: Desc}
	switch strings.ToUpper(dir) {
	case "", "DESC":
	case "ASC":
		s.Dir = Asc
	default:
		return Sort{}, "direction must be ASC or DESC"
	}
	return s, ""
}

func dedupeLabels(in []dom.TaskLabel) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[dom.TaskLabel]bool, len(in))
	out := make([]string, 0, len(in))
	for _, l := range in {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, string(l))
	}
	return out
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dom.DateOf(*t)
	return &d
}
