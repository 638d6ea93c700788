package query

import (
	"errors"
	"reflect"
	"testing"
	"time"

	dom "taskmanager/internal/domain"
)

func intPtr(n int) *int { return &n }

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestCompile_NoFiltersUsesDefaults(t *testing.T) {
	q, err := Compile(TaskFilter{}, 7)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := Query{
		Where: []Predicate{{Field: FieldOwner, Op: Eq, Value: int64(7)}},
		Sort:  Sort{Field: FieldCreatedAt, Dir: Desc},
		Page:  Page{Limit: 10, Offset: 0},
	}
	if !reflect.DeepEqual(q, want) {
		t.Fatalf("got %+v, want %+v", q, want)
	}
	if owner, ok := q.Owner(); !ok || owner != 7 {
		t.Fatalf("Owner() = %d, %v", owner, ok)
	}
}

func TestCompile_OwnerPredicateAlwaysFirst(t *testing.T) {
	q, err := Compile(TaskFilter{Search: "x", Status: dom.StatusDone}, 3)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if q.Where[0] != (Predicate{Field: FieldOwner, Op: Eq, Value: int64(3)}) {
		t.Fatalf("first predicate is %+v", q.Where[0])
	}
}

func TestCompile_AllFilters(t *testing.T) {
	f := TaskFilter{
		Search:          "report",
		Status:          dom.StatusInProgress,
		Priority:        dom.PriorityHigh,
		Labels:          []dom.TaskLabel{dom.LabelWork, dom.LabelOther, dom.LabelWork},
		AfterCreatedAt:  date("2024-01-01"),
		BeforeCreatedAt: date("2024-01-31"),
		AfterDueDate:    date("2024-06-01"),
		BeforeDueDate:   date("2024-06-30"),
		SortKey:         "TITLE__ASC",
		Limit:           intPtr(25),
		Offset:          intPtr(50),
	}
	q, err := Compile(f, 1)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := []Predicate{
		{Field: FieldOwner, Op: Eq, Value: int64(1)},
		{Field: FieldTitle, Op: Contains, Value: "report"},
		{Field: FieldStatus, Op: Eq, Value: "IN_PROGRESS"},
		{Field: FieldPriority, Op: Eq, Value: "HIGH"},
		{Field: FieldLabel, Op: In, Value: []string{"WORK", "OTHER"}},
		{Field: FieldCreatedAt, Op: GTE, Value: *date("2024-01-01")},
		{Field: FieldCreatedAt, Op: LTE, Value: *date("2024-01-31")},
		{Field: FieldDueDate, Op: GTE, Value: *date("2024-06-01")},
		{Field: FieldDueDate, Op: LTE, Value: *date("2024-06-30")},
	}
	if !reflect.DeepEqual(q.Where, want) {
		t.Fatalf("where:\n got %+v\nwant %+v", q.Where, want)
	}
	if q.Sort != (Sort{Field: FieldTitle, Dir: Asc}) {
		t.Fatalf("sort = %+v", q.Sort)
	}
	if q.Page != (Page{Limit: 25, Offset: 50}) {
		t.Fatalf("page = %+v", q.Page)
	}
}

func TestCompile_SearchKeepsSurroundingSpaces(t *testing.T) {
	for _, term := range []string{" bar", "bar ", "   "} {
		q, err := Compile(TaskFilter{Search: term}, 1)
		if err != nil {
			t.Fatalf("Compile(%q): %v", term, err)
		}
		if len(q.Where) != 2 || q.Where[1] != (Predicate{Field: FieldTitle, Op: Contains, Value: term}) {
			t.Fatalf("Compile(%q) where = %+v", term, q.Where)
		}
	}
}

// Due-date bounds must land on due_date and leave the created_at range
// untouched when both are given.
func TestCompile_DueDateBoundsDoNotOverwriteCreatedAt(t *testing.T) {
	q, err := Compile(TaskFilter{
		AfterCreatedAt: date("2020-01-01"),
		AfterDueDate:   date("2030-01-01"),
	}, 1)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var created, due int
	for _, p := range q.Where {
		switch p.Field {
		case FieldCreatedAt:
			created++
			if !p.Value.(time.Time).Equal(*date("2020-01-01")) {
				t.Fatalf("created_at bound = %v", p.Value)
			}
		case FieldDueDate:
			due++
			if !p.Value.(time.Time).Equal(*date("2030-01-01")) {
				t.Fatalf("due_date bound = %v", p.Value)
			}
		}
	}
	if created != 1 || due != 1 {
		t.Fatalf("created_at predicates = %d, due_date predicates = %d", created, due)
	}
}

func TestCompile_OneSidedBounds(t *testing.T) {
	q, err := Compile(TaskFilter{BeforeDueDate: date("2024-03-01")}, 1)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(q.Where) != 2 || q.Where[1].Field != FieldDueDate || q.Where[1].Op != LTE {
		t.Fatalf("where = %+v", q.Where)
	}
}

func TestCompile_DueDateBoundTruncatedToDate(t *testing.T) {
	ts := time.Date(2024, 5, 6, 17, 30, 0, 0, time.UTC)
	q, err := Compile(TaskFilter{AfterDueDate: &ts}, 1)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got := q.Where[1].Value.(time.Time)
	if !got.Equal(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("bound = %v", got)
	}
}

func TestCompile_RejectsPageWindowOutOfRange(t *testing.T) {
	cases := []struct {
		name   string
		filter TaskFilter
		field  string
	}{
		{"limit zero", TaskFilter{Limit: intPtr(0)}, "limit"},
		{"limit too big", TaskFilter{Limit: intPtr(101)}, "limit"},
		{"negative offset", TaskFilter{Offset: intPtr(-1)}, "offset"},
		{"bad status", TaskFilter{Status: "INCORRECT_STATUS"}, "status"},
		{"bad priority", TaskFilter{Priority: "INCORRECT"}, "priority"},
		{"bad label", TaskFilter{Labels: []dom.TaskLabel{"INCORRECT"}}, "labels"},
		{"unknown sort field", TaskFilter{SortKey: "PASSWORD__ASC"}, "sort_key"},
		{"bad sort direction", TaskFilter{SortKey: "TITLE__SIDEWAYS"}, "sort_key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.filter, 1)
			var verr *dom.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("expected field %q in %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestCompile_AcceptsPageWindowEdges(t *testing.T) {
	for _, f := range []TaskFilter{
		{Limit: intPtr(1)},
		{Limit: intPtr(100)},
		{Offset: intPtr(0)},
	} {
		if _, err := Compile(f, 1); err != nil {
			t.Fatalf("Compile(%+v): %v", f, err)
		}
	}
}

func TestParseSortKey(t *testing.T) {
	cases := []struct {
		key  string
		want Sort
	}{
		{"TITLE__DESC", Sort{FieldTitle, Desc}},
		{"TITLE__ASC", Sort{FieldTitle, Asc}},
		{"due_date__asc", Sort{FieldDueDate, Asc}},
		{"PRIORITY", Sort{FieldPriority, Desc}},
		{"UPDATED_AT__", Sort{FieldUpdatedAt, Desc}},
		{"CREATED_AT__DESC", Sort{FieldCreatedAt, Desc}},
		{"STATUS__ASC", Sort{FieldStatus, Asc}},
	}
	for _, tc := range cases {
		got, err := ParseSortKey(tc.key)
		if err != nil {
			t.Fatalf("ParseSortKey(%q): %v", tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("ParseSortKey(%q) = %+v, want %+v", tc.key, got, tc.want)
		}
	}
	if _, err := ParseSortKey("USER_ID__ASC"); err == nil {
		t.Fatal("expected user_id to be rejected as a sort key")
	}
}

func TestCompile_Deterministic(t *testing.T) {
	f := TaskFilter{Search: "a", Labels: []dom.TaskLabel{dom.LabelPersonal}, SortKey: "STATUS__ASC"}
	a, _ := Compile(f, 9)
	b, _ := Compile(f, 9)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("compile is not deterministic: %+v vs %+v", a, b)
	}
}
