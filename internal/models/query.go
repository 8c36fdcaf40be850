// internal/models/query.go
package models

import (
	"strconv"
)

// Predicate is one WHERE clause fragment. Expr uses `?` placeholders that
// the SQL builder renumbers to PostgreSQL `$n` positions; Args bind in
// the order the placeholders appear.
type Predicate struct {
	Expr string
	Args []interface{}
}

// QueryRequest is a structured, parameterized read query. Predicates are
// ANDed in slice order, which is also the argument binding order.
type QueryRequest struct {
	Target     string
	Columns    []string
	Joins      []string
	Predicates []Predicate
	GroupBy    []string
	OrderBy    []string
	Limit      int // 0 means no LIMIT clause
}

// Row is a single result row keyed by column alias.
type Row map[string]interface{}

// QueryResult holds the rows returned by one executed QueryRequest.
type QueryResult struct {
	Rows []Row
}

// Empty reports whether the result carries no rows.
func (r QueryResult) Empty() bool {
	return len(r.Rows) == 0
}

// First returns the first row, or nil when the result is empty.
func (r QueryResult) First() Row {
	if len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0]
}

// String coerces a column to string. lib/pq hands back []byte for text
// and numeric columns scanned into interface{}.
func (row Row) String(key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Float coerces a column to float64, returning 0 for NULL or absent.
func (row Row) Float(key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// Int coerces a column to int64, returning 0 for NULL or absent.
func (row Row) Int(key string) int64 {
	switch v := row[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			f, _ := strconv.ParseFloat(string(v), 64)
			return int64(f)
		}
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}
