package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
	TypeSQLite   = "sqlite"
)

// ResolveType returns the driver implied by the URL scheme, falling back to cfg.Type.
func (cfg Config) ResolveType() string {
	url := strings.ToLower(strings.TrimSpace(cfg.URL))
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return TypePostgres
	case strings.HasPrefix(url, "mysql://"):
		return TypeMySQL
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		return TypeSQLite
	}
	return strings.ToLower(strings.TrimSpace(cfg.Type))
}

func Dialect(cfg Config) (gorm.Dialector, error) {
	url := strings.TrimSpace(cfg.URL)
	switch cfg.ResolveType() {
	case TypeMySQL:
		if url != "" {
			return mysql.Open(strings.TrimPrefix(url, "mysql://")), nil
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Name,
		)), nil
	case TypePostgres:
		if url != "" {
			return postgres.Open(url), nil
		}
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.Port,
			cfg.SSLMode,
		)), nil
	case TypeSQLite:
		if url != "" {
			return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
		}
		name := strings.TrimSpace(cfg.Name)
		if name == "" || name == "postgres" {
			name = "spendlens.db"
		}
		return sqlite.Open(name), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.Type)
	}
}
