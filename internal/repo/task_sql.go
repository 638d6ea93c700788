package repo

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskmanager/internal/query"
)

var taskColumnOf = map[query.Field]string{
	query.FieldOwner:     "user_id",
	query.FieldTitle:     "title",
	query.FieldStatus:    "status",
	query.FieldLabel:     "label",
	query.FieldPriority:  "priority",
	query.FieldDueDate:   "due_date",
	query.FieldCreatedAt: "created_at",
	query.FieldUpdatedAt: "updated_at",
}

type findStmt struct {
	list      string
	listArgs  []any
	count     string
	countArgs []any
}

// renderFind turns a compiled query into the page statement and the count
// statement. Only known columns are ever interpolated; values are always
// bound parameters.
func renderFind(q query.Query) (findStmt, error) {
	where, args, err := renderWhere(q.Where)
	if err != nil {
		return findStmt{}, err
	}
	order, err := renderOrder(q.Sort)
	if err != nil {
		return findStmt{}, err
	}

	listArgs := append(append([]any(nil), args...), q.Page.Limit, q.Page.Offset)
	n := len(args)
	return findStmt{
		list: `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where +
			` ORDER BY ` + order +
			` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2),
		listArgs:  listArgs,
		count:     `SELECT COUNT(*) FROM tasks WHERE ` + where,
		countArgs: args,
	}, nil
}

func renderWhere(preds []query.Predicate) (string, []any, error) {
	if len(preds) == 0 {
		return "", nil, fmt.Errorf("query has no predicates")
	}
	if _, ok := (query.Query{Where: preds}).Owner(); !ok {
		return "", nil, fmt.Errorf("query is not scoped to an owner")
	}

	parts := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	for _, p := range preds {
		col, ok := taskColumnOf[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown field %q", p.Field)
		}
		ph := "$" + strconv.Itoa(len(args)+1)
		switch p.Op {
		case query.Eq:
			parts = append(parts, col+" = "+ph)
			args = append(args, p.Value)
		case query.Contains:
			term, ok := p.Value.(string)
			if !ok {
				return "", nil, fmt.Errorf("%s: contains needs a string", p.Field)
			}
			parts = append(parts, col+" ILIKE "+ph)
			args = append(args, "%"+escapeLike(term)+"%")
		case query.In:
			vals, ok := p.Value.([]string)
			if !ok {
				return "", nil, fmt.Errorf("%s: in needs []string", p.Field)
			}
			parts = append(parts, col+" = ANY("+ph+")")
			args = append(args, vals)
		case query.GTE, query.LTE:
			v, ok := p.Value.(time.Time)
			if !ok {
				return "", nil, fmt.Errorf("%s: range bound needs a time", p.Field)
			}
			op := " >= "
			if p.Op == query.LTE {
				op = " <= "
			}
			parts = append(parts, col+op+ph)
			args = append(args, v)
		default:
			return "", nil, fmt.Errorf("%s: unsupported operator %s", p.Field, p.Op)
		}
	}
	return strings.Join(parts, " AND "), args, nil
}

// renderOrder sorts by the requested column with NULLs last, then by id in
// the same direction so equal keys page deterministically.
func renderOrder(s query.Sort) (string, error) {
	if !query.Sortable(s.Field) {
		return "", fmt.Errorf("field %q is not sortable", s.Field)
	}
	dir := "DESC"
	if s.Dir == query.Asc {
		dir = "ASC"
	}
	return taskColumnOf[s.Field] + " " + dir + " NULLS LAST, id " + dir, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
