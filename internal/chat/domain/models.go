package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ChatHistoryEntry is one chat attempt. Rows are append-only. Results holds
// the JSON literal null when the attempt produced no rows.
type ChatHistoryEntry struct {
	ID        snowflake.ID   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Query     string         `gorm:"type:text;not null" json:"query"`
	SQL       *string        `gorm:"column:sql;type:text" json:"sql"`
	Results   datatypes.JSON `gorm:"column:results;not null" json:"results"`
	Error     *string        `gorm:"column:error;type:text" json:"error"`
	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
}

func (ChatHistoryEntry) TableName() string { return "chat_history" }

// QueryResult is the row set of an executed statement. Columns keeps the
// order reported by the driver.
type QueryResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

type ExecOptions struct {
	ReadOnly bool
	Timeout  time.Duration
}

type HistoryItem struct {
	ID        snowflake.ID     `json:"id"`
	Query     string           `json:"query"`
	SQL       *string          `json:"sql"`
	Results   []map[string]any `json:"results"`
	Error     *string          `json:"error"`
	CreatedAt time.Time        `json:"createdAt"`
}
