package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialect identifiers supported by the database layer.
const (
	// DialectPostgres is the PostgreSQL dialect name.
	DialectPostgres = "postgres"
	// DialectSQLite is the SQLite dialect name.
	DialectSQLite = "sqlite"
	// DialectMySQL is the MySQL dialect name.
	DialectMySQL = "mysql"
)

// Open opens a GORM connection, choosing the driver from the DSN shape:
// "file:" or "*.db" for SQLite, "mysql://" for MySQL, anything else for PostgreSQL.
func Open(dsn string) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch DialectForDSN(trimmed) {
	case DialectSQLite:
		dialector = sqlite.Open(trimmed)
	case DialectMySQL:
		dialector = mysql.Open(mysqlDSN(trimmed))
	default:
		dialector = postgres.Open(trimmed)
	}

	conn, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	if IsSQLite(conn) {
		sqlDB, errDB := conn.DB()
		if errDB != nil {
			return nil, fmt.Errorf("db: sql handle: %w", errDB)
		}
		// SQLite allows one writer; a single connection serializes transactions
		// instead of failing them with SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	}
	return conn, nil
}

// DialectForDSN infers the dialect name from a DSN.
func DialectForDSN(dsn string) string {
	lowered := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lowered, "file:"),
		strings.HasSuffix(lowered, ".db"),
		strings.HasSuffix(lowered, ".sqlite"),
		lowered == ":memory:":
		return DialectSQLite
	case strings.HasPrefix(lowered, "mysql://"):
		return DialectMySQL
	default:
		return DialectPostgres
	}
}

// mysqlDSN strips the mysql:// scheme and makes sure times scan into time.Time.
func mysqlDSN(dsn string) string {
	out := strings.TrimSpace(dsn)
	if idx := strings.Index(out, "://"); idx >= 0 {
		out = out[idx+3:]
	}
	if !strings.Contains(out, "parseTime=") {
		separator := "?"
		if strings.Contains(out, "?") {
			separator = "&"
		}
		out += separator + "parseTime=true&loc=UTC"
	}
	return out
}

// DialectName returns the active database dialect name.
func DialectName(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// IsSQLite reports whether the connection uses SQLite.
func IsSQLite(conn *gorm.DB) bool {
	return DialectName(conn) == DialectSQLite
}

// CaseInsensitiveLikeExpr returns a SQL expression for case-insensitive LIKE.
func CaseInsensitiveLikeExpr(conn *gorm.DB, column string) string {
	if DialectName(conn) == DialectPostgres {
		return fmt.Sprintf("%s ILIKE ?", column)
	}
	return fmt.Sprintf("LOWER(%s) LIKE ?", column)
}

// NormalizeLikePattern normalizes a LIKE pattern for the current dialect.
func NormalizeLikePattern(conn *gorm.DB, pattern string) string {
	if DialectName(conn) == DialectPostgres {
		return pattern
	}
	return strings.ToLower(pattern)
}
