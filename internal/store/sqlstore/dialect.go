package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// dialect holds everything that differs between the supported databases.
type dialect struct {
	name       string
	driverName string
	// forUpdate is appended to row-locking SELECTs. SQLite has no row locks;
	// its single connection already serialises transactions.
	forUpdate string
	txOptions *sql.TxOptions
	schema    []string
	maxOpen   int
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres, "pgx":
		return dialect{
			name:       DriverPostgres,
			driverName: "pgx",
			forUpdate:  " FOR UPDATE",
			txOptions:  &sql.TxOptions{Isolation: sql.LevelReadCommitted},
			schema:     postgresSchema,
			maxOpen:    30,
		}, nil
	case DriverMySQL:
		return dialect{
			name:       DriverMySQL,
			driverName: "mysql",
			forUpdate:  " FOR UPDATE",
			txOptions:  &sql.TxOptions{Isolation: sql.LevelReadCommitted},
			schema:     mysqlSchema,
			maxOpen:    30,
		}, nil
	case DriverSQLite, "sqlite3":
		return dialect{
			name:       DriverSQLite,
			driverName: "sqlite",
			schema:     sqliteSchema,
			maxOpen:    1,
		}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// dsn normalises a connection string for the dialect.
func (d dialect) dsn(raw string) (string, error) {
	switch d.name {
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(raw)
		if err != nil {
			return "", err
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		// Report matched rows so an UPDATE that keeps the same value still
		// counts as found.
		cfg.ClientFoundRows = true
		return cfg.FormatDSN(), nil
	case DriverSQLite:
		if strings.Contains(raw, "?") {
			return raw, nil
		}
		path := strings.TrimPrefix(raw, "file:")
		return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_time_format=sqlite", nil
	default:
		return raw, nil
	}
}

// retryable reports transient lock failures worth running the unit again for.
func (d dialect) retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1213 || myErr.Number == 1205
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code() & 0xff
		return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
