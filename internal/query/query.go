// Package query compiles a task filter into a store-neutral query: a
// conjunction of predicates, one sort key and a page window. Store
// implementations render it (SQL for Postgres, direct evaluation for the
// in-memory store).
package query

import "time"

// Field names a filterable or sortable task attribute. The values are the
// Postgres column names.
type Field string

const (
	FieldOwner     Field = "user_id"
	FieldTitle     Field = "title"
	FieldStatus    Field = "status"
	FieldLabel     Field = "label"
	FieldPriority  Field = "priority"
	FieldDueDate   Field = "due_date"
	FieldCreatedAt Field = "created_at"
	FieldUpdatedAt Field = "updated_at"
)

var sortable = map[Field]bool{
	FieldTitle:     true,
	FieldStatus:    true,
	FieldPriority:  true,
	FieldDueDate:   true,
	FieldCreatedAt: true,
	FieldUpdatedAt: true,
}

// Sortable reports whether f may be used as a sort key.
func Sortable(f Field) bool { return sortable[f] }

type Op int

const (
	// Eq compares with a single value (int64 or string).
	Eq Op = iota
	// Contains is a case-insensitive substring match; Value is the raw term.
	Contains
	// In matches when the field equals any of Value ([]string).
	In
	// GTE and LTE are inclusive bounds; Value is a time.Time.
	GTE
	LTE
)

func (o Op) String() string {
	switch o {
	case Eq:
		return "eq"
	case Contains:
		return "contains"
	case In:
		return "in"
	case GTE:
		return "gte"
	case LTE:
		return "lte"
	}
	return "unknown"
}

type Predicate struct {
	Field Field
	Op    Op
	Value any
}

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

type Sort struct {
	Field Field
	Dir   Direction
}

type Page struct {
	Limit  int
	Offset int
}

// Query is the compiled form of a TaskFilter. Where is a conjunction and
// always starts with the owner predicate.
type Query struct {
	Where []Predicate
	Sort  Sort
	Page  Page
}

// Owner returns the owner id the query is scoped to.
func (q Query) Owner() (int64, bool) {
	for _, p := range q.Where {
		if p.Field == FieldOwner && p.Op == Eq {
			id, ok := p.Value.(int64)
			return id, ok
		}
	}
	return 0, false
}

// Unpaged returns a copy of q without the page window, as used for counting.
func (q Query) Unpaged() Query {
	q.Page = Page{}
	return q
}

func eq(f Field, v any) Predicate { return Predicate{Field: f, Op: Eq, Value: v} }

func between(f Field, after, before *time.Time) []Predicate {
	var out []Predicate
	if after != nil {
		out = append(out, Predicate{Field: f, Op: GTE, Value: *after})
	}
	if before != nil {
		out = append(out, Predicate{Field: f, Op: LTE, Value: *before})
	}
	return out
}
