package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/spendlens/internal/chat/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertHistory(ctx context.Context, db *gorm.DB, entry *domain.ChatHistoryEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListHistory(ctx context.Context, db *gorm.DB, limit int) ([]domain.ChatHistoryEntry, error) {
	entries := []domain.ChatHistoryEntry{}
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Execute runs an arbitrary statement and collects every row. With ReadOnly
// on Postgres the statement runs inside a READ ONLY transaction that is
// always rolled back.
func (r *repo) Execute(ctx context.Context, db *gorm.DB, statement string, opts domain.ExecOptions) (domain.QueryResult, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	conn := db.WithContext(ctx)
	if opts.ReadOnly && conn.Dialector.Name() == "postgres" {
		tx := conn.Begin(&sql.TxOptions{ReadOnly: true})
		if tx.Error != nil {
			return domain.QueryResult{}, tx.Error
		}
		defer tx.Rollback()
		return collect(tx.Raw(statement))
	}
	return collect(conn.Raw(statement))
}

func collect(stmt *gorm.DB) (domain.QueryResult, error) {
	rows, err := stmt.Rows()
	if err != nil {
		return domain.QueryResult{}, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return domain.QueryResult{}, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return domain.QueryResult{}, err
	}

	result := domain.QueryResult{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return domain.QueryResult{}, err
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i], types[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return domain.QueryResult{}, err
	}
	return result, nil
}

// normalizeValue turns driver values into JSON friendly ones. Exact numerics
// come back as strings from some drivers and are emitted as JSON numbers.
func normalizeValue(value any, columnType *sql.ColumnType) any {
	if raw, ok := value.([]byte); ok {
		value = string(raw)
	}
	text, ok := value.(string)
	if !ok || columnType == nil {
		return value
	}
	switch strings.ToUpper(columnType.DatabaseTypeName()) {
	case "NUMERIC", "DECIMAL":
		if d, err := decimal.NewFromString(text); err == nil {
			return json.Number(d.String())
		}
	}
	return text
}
