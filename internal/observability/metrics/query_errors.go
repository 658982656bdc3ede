package metrics

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	QueryErrorReasonTimeout   = "timeout"
	QueryErrorReasonSyntax    = "syntax"
	QueryErrorReasonUndefined = "undefined_object"
	QueryErrorReasonReadOnly  = "read_only"
	QueryErrorReasonCanceled  = "canceled"
	QueryErrorReasonUnknown   = "unknown"
)

// QueryErrorReason maps a database error to a low-cardinality label.
func QueryErrorReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return QueryErrorReasonTimeout
	case errors.Is(err, context.Canceled):
		return QueryErrorReasonCanceled
	case hasPGCode(err, "57014"):
		return QueryErrorReasonTimeout
	case hasPGCode(err, "42601"):
		return QueryErrorReasonSyntax
	case hasPGCode(err, "42P01", "42703", "42883"):
		return QueryErrorReasonUndefined
	case hasPGCode(err, "25006"):
		return QueryErrorReasonReadOnly
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "syntax error"):
		return QueryErrorReasonSyntax
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such column"):
		return QueryErrorReasonUndefined
	case strings.Contains(msg, "readonly"), strings.Contains(msg, "read-only"):
		return QueryErrorReasonReadOnly
	}
	return QueryErrorReasonUnknown
}

func hasPGCode(err error, codes ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	for _, code := range codes {
		if pgErr.Code == code {
			return true
		}
	}
	return false
}
