package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andy/facturas/internal/config"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mutecomm/go-sqlcipher/v4"
)

type DB struct {
	*sql.DB

	// Driver is one of the config.Driver* names
	Driver string
}

// Open connects to the invoicing database described by cfg. password is the
// sqlcipher key and is only used for encrypted SQLite files.
func Open(cfg config.DatabaseConfig, password string) (*DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return openSQLite(cfg.Path, password)
	case config.DriverMySQL:
		return openServer(config.DriverMySQL, "mysql", cfg.DSN)
	case config.DriverPostgres:
		return openServer(config.DriverPostgres, "pgx", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// openSQLite opens a SQLite file, encrypted when password is not empty
func openSQLite(dbPath, password string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	connStr := dbPath
	if password != "" {
		connStr = fmt.Sprintf("%s?_pragma_key=%s&_pragma_cipher_page_size=4096", dbPath, url.QueryEscape(password))
	}

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode so the TUI can read while a PDF export runs
	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB, Driver: config.DriverSQLite}, nil
}

func openServer(driver, sqlDriver, dsn string) (*DB, error) {
	sqlDB, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	return &DB{DB: sqlDB, Driver: driver}, nil
}

// Rebind rewrites ? placeholders into the form the driver expects
func (db *DB) Rebind(query string) string {
	if db.Driver != config.DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
