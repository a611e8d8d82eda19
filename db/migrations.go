package db

import (
	"database/sql"
	"fmt"
)

const (
	sqlCreateSessionTable = `CREATE TABLE IF NOT EXISTS session(
                        key varchar(32) NOT NULL PRIMARY KEY,
                        value text NOT NULL
                        )`
	sqlAddSessionUpdatedAt = `ALTER TABLE session ADD COLUMN updated_at timestamp`
	sqlCreateSchemaTable   = `CREATE TABLE IF NOT EXISTS schema_version(version int NOT NULL)`
	sqlSelectSchemaVersion = `SELECT coalesce(max(version), 0) FROM schema_version`
	sqlInsertSchemaVersion = `INSERT INTO schema_version(version) VALUES (?)`
)

// migrations are applied in order; index+1 is the schema version.
var migrations = []string{
	sqlCreateSessionTable,
	sqlAddSessionUpdatedAt,
}

// RunMigrations brings the schema up to date.
func (db *DB) RunMigrations() error {
	if _, err := db.db.Exec(sqlCreateSchemaTable); err != nil {
		return fmt.Errorf("create schema table: %w", err)
	}

	var current int
	if err := db.db.QueryRow(sqlSelectSchemaVersion).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		err := db.wrapTransaction(func(tx *sql.Tx) error {
			if _, err := tx.Exec(migrations[i]); err != nil {
				return err
			}
			_, err := tx.Exec(sqlInsertSchemaVersion, version)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d: %w", version, err)
		}
		log.Debugf("Applied session schema migration %d", version)
	}

	return nil
}
