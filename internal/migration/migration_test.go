package migration

import (
	"io/fs"
	"testing"

	"github.com/smallbiznis/spendlens/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestApplyUsesAutoMigrateForSQLite(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	require.NoError(t, Apply(conn, db.Config{Type: db.TypeSQLite}, zaptest.NewLogger(t)))

	for _, table := range []string{"vendors", "customers", "invoices", "line_items", "payments", "chat_history"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}
