package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveType(t *testing.T) {
	assert.Equal(t, TypePostgres, Config{URL: "postgresql://u:p@localhost:5432/app"}.ResolveType())
	assert.Equal(t, TypePostgres, Config{URL: "postgres://localhost/app"}.ResolveType())
	assert.Equal(t, TypeMySQL, Config{URL: "mysql://u:p@tcp(localhost:3306)/app"}.ResolveType())
	assert.Equal(t, TypeSQLite, Config{URL: "file:app.db"}.ResolveType())
	assert.Equal(t, TypeMySQL, Config{Type: "MySQL"}.ResolveType())
}

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	require.Error(t, err)
}

func TestDialectBuildsPostgresFromURL(t *testing.T) {
	d, err := Dialect(Config{URL: "postgres://localhost/app"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: vendors.name")))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
}

func TestNewTestIsolatesDatabases(t *testing.T) {
	type row struct{ ID int }

	first, err := NewTest()
	require.NoError(t, err)
	second, err := NewTest()
	require.NoError(t, err)

	require.NoError(t, first.AutoMigrate(&row{}))
	require.NoError(t, first.Create(&row{ID: 1}).Error)

	assert.False(t, second.Migrator().HasTable(&row{}))
}
