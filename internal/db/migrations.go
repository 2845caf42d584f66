package db

import (
	"fmt"
	"time"
)

type migration struct {
	version    int
	statements []string
}

// migrations create the legacy invoicing tables. Statements run one at a
// time because the mysql driver rejects multi-statement strings.
var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS Clientes (
				NOMBRE VARCHAR(255) NOT NULL,
				CIF VARCHAR(32),
				DIRECCION VARCHAR(255)
			)`,
			`CREATE TABLE IF NOT EXISTS Facting (
				NUMERO VARCHAR(32) NOT NULL PRIMARY KEY,
				FECHA DATE,
				CLIENTE VARCHAR(255) NOT NULL,
				CIF VARCHAR(32),
				TOTAL DECIMAL(12,2),
				BASE1 DECIMAL(12,2),
				IVA1 DECIMAL(12,2)
			)`,
			`CREATE TABLE IF NOT EXISTS Contenid (
				REFERENCIA VARCHAR(32) NOT NULL,
				Codigo VARCHAR(32),
				Datos TEXT,
				CANTIDAD DECIMAL(12,3),
				PRECIO DECIMAL(12,4)
			)`,
		},
	},
	{
		version: 2,
		statements: []string{
			`CREATE INDEX idx_facting_cliente ON Facting(CLIENTE)`,
			`CREATE INDEX idx_contenid_referencia ON Contenid(REFERENCIA)`,
		},
	},
}

// RunMigrations applies all pending database migrations
func (db *DB) RunMigrations() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at VARCHAR(40) NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		for _, stmt := range m.statements {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
			}
		}

		appliedAt := time.Now().UTC().Format(time.RFC3339)
		if _, err := tx.Exec(db.Rebind("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)"), m.version, appliedAt); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	return nil
}

// SchemaVersion returns the latest applied migration, 0 when none
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}
