//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/spendlens/internal/chat/domain"
	"github.com/smallbiznis/spendlens/internal/migration"
	"github.com/smallbiznis/spendlens/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("spendlens_test"),
		tcPostgres.WithUsername("spendlens"),
		tcPostgres.WithPassword("spendlens"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, migration.Apply(conn, db.Config{Type: db.TypePostgres}, zaptest.NewLogger(t)))
	return conn
}

func TestPostgresReadOnlyExecution(t *testing.T) {
	conn := newPostgres(t)
	repo := Provide()
	ctx := context.Background()

	require.NoError(t, conn.Exec(`INSERT INTO vendors (id, name, created_at, updated_at) VALUES (1, 'Acme', NOW(), NOW())`).Error)

	result, err := repo.Execute(ctx, conn, `SELECT id, name FROM vendors`, domain.ExecOptions{ReadOnly: true, Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Acme", result.Rows[0]["name"])

	_, err = repo.Execute(ctx, conn, `DELETE FROM vendors`, domain.ExecOptions{ReadOnly: true})
	require.Error(t, err)
	assert.Equal(t, "25006", db.SQLState(err))

	var count int64
	require.NoError(t, conn.Table("vendors").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPostgresMigrationsReapplyAndCheckStatus(t *testing.T) {
	conn := newPostgres(t)

	require.NoError(t, migration.Apply(conn, db.Config{Type: db.TypePostgres}, zaptest.NewLogger(t)))

	for _, table := range []string{"vendors", "customers", "invoices", "line_items", "payments", "chat_history"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}

	err := conn.Exec(`INSERT INTO vendors (id, name, created_at, updated_at) VALUES (2, 'V', NOW(), NOW())`).Error
	require.NoError(t, err)
	err = conn.Exec(`INSERT INTO customers (id, name, created_at, updated_at) VALUES (3, 'C', NOW(), NOW())`).Error
	require.NoError(t, err)
	err = conn.Exec(`INSERT INTO invoices (id, invoice_number, vendor_id, customer_id, issue_date, total_amount, status, currency, created_at, updated_at)
		VALUES (4, 'INV-4', 2, 3, NOW(), 10, 'cancelled', 'USD', NOW(), NOW())`).Error
	require.Error(t, err)
	assert.Equal(t, "23514", db.SQLState(err))
}
