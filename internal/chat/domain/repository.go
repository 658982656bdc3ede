package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	InsertHistory(ctx context.Context, db *gorm.DB, entry *ChatHistoryEntry) error
	ListHistory(ctx context.Context, db *gorm.DB, limit int) ([]ChatHistoryEntry, error)
	Execute(ctx context.Context, db *gorm.DB, statement string, opts ExecOptions) (QueryResult, error)
}
