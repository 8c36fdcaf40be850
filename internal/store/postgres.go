// Package store executes structured read queries against PostgreSQL and
// serves catalog vocabularies through a Redis read-through cache.
package store

import (
	"context"
	"strings"

	"shop-chatbot/internal/common/database"
	"shop-chatbot/internal/common/errors"
	"shop-chatbot/internal/common/logger"
	"shop-chatbot/internal/common/metrics"
	"shop-chatbot/internal/models"
)

// SQLExecutor runs QueryRequests against PostgreSQL.
type SQLExecutor struct {
	db  *database.PostgresClient
	log logger.Logger
}

func NewSQLExecutor(db *database.PostgresClient, log logger.Logger) *SQLExecutor {
	return &SQLExecutor{db: db, log: log}
}

// Execute builds and runs the statement, scanning every row into a
// column-keyed map. Rows are fully drained before returning.
func (s *SQLExecutor) Execute(ctx context.Context, req models.QueryRequest) (models.QueryResult, error) {
	stmt, args := BuildSQL(req)
	target := targetLabel(req.Target)
	metrics.StoreQueriesTotal.WithLabelValues(target).Inc()

	rows, err := s.db.Query(ctx, stmt, args...)
	if err != nil {
		metrics.StoreQueriesFailed.WithLabelValues(target).Inc()
		s.log.Error("query failed", map[string]interface{}{
			"target": target,
			"error":  err.Error(),
		})
		return models.QueryResult{}, errors.NewQueryExecutionFailedError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return models.QueryResult{}, errors.NewQueryExecutionFailedError(err)
	}

	var result models.QueryResult
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			metrics.StoreQueriesFailed.WithLabelValues(target).Inc()
			return models.QueryResult{}, errors.NewQueryExecutionFailedError(err)
		}

		row := make(models.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		metrics.StoreQueriesFailed.WithLabelValues(target).Inc()
		return models.QueryResult{}, errors.NewQueryExecutionFailedError(err)
	}

	return result, nil
}

// targetLabel strips the table alias for metric labels ("orders o" ->
// "orders").
func targetLabel(target string) string {
	if i := strings.IndexByte(target, ' '); i > 0 {
		return target[:i]
	}
	return target
}
