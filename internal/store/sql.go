package store

import (
	"strconv"
	"strings"

	"shop-chatbot/internal/models"
)

// BuildSQL renders a QueryRequest into a PostgreSQL statement and its
// positional arguments. `?` placeholders are renumbered to `$n` strictly
// left to right, so predicate order is the binding order. A LIMIT clause
// binds its value as the final parameter.
func BuildSQL(req models.QueryRequest) (string, []interface{}) {
	var b strings.Builder
	var args []interface{}

	b.WriteString("SELECT ")
	b.WriteString(strings.Join(req.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(req.Target)

	for _, join := range req.Joins {
		b.WriteString(" ")
		b.WriteString(join)
	}

	if len(req.Predicates) > 0 {
		b.WriteString(" WHERE ")
		for i, pred := range req.Predicates {
			if i > 0 {
				b.WriteString(" AND ")
			}
			b.WriteString(renumber(pred.Expr, len(args)))
			args = append(args, pred.Args...)
		}
	}

	if len(req.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(req.GroupBy, ", "))
	}

	if len(req.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(req.OrderBy, ", "))
	}

	if req.Limit > 0 {
		b.WriteString(" LIMIT $")
		b.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, req.Limit)
	}

	return b.String(), args
}

// renumber rewrites each `?` in expr to the next `$n` position, starting
// after `used` already-bound parameters.
func renumber(expr string, used int) string {
	var b strings.Builder
	n := used
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(expr[i])
	}
	return b.String()
}
