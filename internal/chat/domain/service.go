package domain

import (
	"context"
	"errors"
	"fmt"
)

type AskRequest struct {
	Query string
}

type AskResult struct {
	Query    string           `json:"query"`
	SQL      string           `json:"sql"`
	Columns  []string         `json:"columns"`
	Results  []map[string]any `json:"results"`
	RowCount int              `json:"rowCount"`
}

type Service interface {
	Ask(context.Context, AskRequest) (AskResult, error)
	History(ctx context.Context, limit int) ([]HistoryItem, error)
}

var (
	ErrInvalidQuery         = errors.New("invalid_query")
	ErrInvalidLimit         = errors.New("invalid_limit")
	ErrUpstreamUnavailable  = errors.New("upstream_unavailable")
	ErrQueryExecutionFailed = errors.New("query_execution_failed")
	ErrStatementRejected    = errors.New("statement_rejected")
)

// QueryError carries the statement that failed so callers can show it.
type QueryError struct {
	Statement string
	Cause     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("sql execution failed: %v", e.Cause)
}

func (e *QueryError) Unwrap() error { return e.Cause }

func (e *QueryError) Is(target error) bool {
	return target == ErrQueryExecutionFailed
}
