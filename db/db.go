package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/util"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB stores the persisted session entries.
type DB struct {
	db *sql.DB
}

const (
	KeyToken    = "token"
	KeyUsername = "username"
	KeyAvatar   = "avatar"

	sqlSelectSession = `SELECT key, value FROM session WHERE key IN (?, ?, ?)`
	sqlUpsertSession = `INSERT INTO session(key, value, updated_at) VALUES (?, ?, ?)
                        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	sqlDeleteSession = `DELETE FROM session WHERE key IN (?, ?, ?)`
	sqlCountSession  = `SELECT count(*) FROM session`

	maxBusyRetries = 5
)

var log = util.NewLogger("db")

// Open opens (and creates, if needed) the session database at path.
// ":memory:" is accepted for tests.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	// a single writer keeps the three-entry group consistent and an
	// in-memory database alive for the lifetime of the handle
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Warnf("Failed to set busy_timeout: %v", err)
	}

	database := &DB{db: sqlDB}
	if err := database.RunMigrations(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.Debugf("Session database ready at %s", path)
	return database, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// LoadSession returns the persisted session, or nil when no token is stored.
// The returned session is not yet validated against the backend.
func (db *DB) LoadSession() (*domain.Session, error) {
	rows, err := db.db.Query(sqlSelectSession, KeyToken, KeyUsername, KeyAvatar)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, 3)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	if values[KeyToken] == "" {
		return nil, nil
	}

	return &domain.Session{
		LoggedIn: true,
		Token:    values[KeyToken],
		Username: values[KeyUsername],
		Avatar:   values[KeyAvatar],
	}, nil
}

// SaveSession writes token, username and avatar as one group.
func (db *DB) SaveSession(s domain.Session) error {
	now := time.Now().UTC()
	return db.wrapTransaction(func(tx *sql.Tx) error {
		for _, kv := range [][2]string{
			{KeyToken, s.Token},
			{KeyUsername, s.Username},
			{KeyAvatar, s.Avatar},
		} {
			if _, err := tx.Exec(sqlUpsertSession, kv[0], kv[1], now); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearSession removes all three entries as one group.
func (db *DB) ClearSession() error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteSession, KeyToken, KeyUsername, KeyAvatar)
		return err
	})
}

// CountEntries returns the number of persisted session rows.
func (db *DB) CountEntries() (int, error) {
	var n int
	err := db.db.QueryRow(sqlCountSession).Scan(&n)
	return n, err
}

func (db *DB) wrapTransaction(f func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	for attempt := 0; ; attempt++ {
		tx, err := db.db.BeginTx(ctx, nil)
		if err != nil {
			log.Errorf("error starting transaction: %s", err)
			return err
		}

		err = f(tx)
		if err == nil {
			err = tx.Commit()
			if err != nil {
				log.Errorf("error committing transaction: %s", err)
			}
			return err
		}

		tx.Rollback()
		var serr *sqlite.Error
		if errors.As(err, &serr) && serr.Code() == sqlitelib.SQLITE_BUSY && attempt < maxBusyRetries {
			continue
		}
		log.Errorf("error in transaction: %s", err)
		return err
	}
}
