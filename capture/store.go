// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: capture/store.go
// Summary: SQLite-backed store for captured session byte streams.
//          Recorders batch incoming chunks asynchronously; replay hands
//          the chunks back in order, optionally with original timing.
// Usage: Opened by the cmds around a pty or file session.

package capture

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrNoSession is returned when a session id does not exist.
var ErrNoSession = errors.New("capture: no such session")

// Current schema version, bump when a change needs a rebuilt database.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    protocol TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    started_at INTEGER NOT NULL,    -- UnixNano
    closed_at INTEGER               -- NULL while recording
);

CREATE TABLE IF NOT EXISTS chunks (
    session_id INTEGER NOT NULL,
    seq INTEGER NOT NULL,
    offset_ns INTEGER NOT NULL,     -- nanoseconds since session start
    data BLOB NOT NULL,
    PRIMARY KEY (session_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
`

// Config holds the store configuration.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BatchSize is the number of chunks to accumulate before flushing.
	// Default: 64
	BatchSize int

	// BatchTimeout is how long to wait before flushing a partial batch.
	// Default: 2s
	BatchTimeout time.Duration

	// ChannelBuffer is the size of the async recording channel.
	// Default: 512
	ChannelBuffer int

	// Logger receives flush failures. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// DefaultConfig returns sensible defaults for dbPath.
func DefaultConfig(dbPath string) Config {
	return Config{
		DBPath:        dbPath,
		BatchSize:     64,
		BatchTimeout:  2 * time.Second,
		ChannelBuffer: 512,
		Logger:        zerolog.Nop(),
	}
}

// SessionMeta describes a session about to be recorded.
type SessionMeta struct {
	Title    string
	Protocol string
	Width    int
	Height   int
}

// SessionInfo describes a stored session.
type SessionInfo struct {
	ID        int64
	Title     string
	Protocol  string
	Width     int
	Height    int
	StartedAt time.Time
	ClosedAt  time.Time // zero while the session is still open
}

// Chunk is one recorded write.
type Chunk struct {
	Seq    int64
	Offset time.Duration // since session start
	Data   []byte
}

// Store persists session byte streams in a SQLite database.
type Store struct {
	config Config
	db     *sql.DB
	log    zerolog.Logger

	mu sync.Mutex
}

// Open opens (or creates) a store at dbPath with default settings.
func Open(dbPath string) (*Store, error) {
	return OpenWithConfig(DefaultConfig(dbPath))
}

// OpenWithConfig opens a store with custom settings.
func OpenWithConfig(config Config) (*Store, error) {
	if config.BatchSize <= 0 {
		config.BatchSize = 64
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 2 * time.Second
	}
	if config.ChannelBuffer <= 0 {
		config.ChannelBuffer = 512
	}

	if dir := filepath.Dir(config.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("capture: create directory: %w", err)
		}
	}

	dsn := config.DBPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("capture: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("capture: connect: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("capture: create schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{config: config, db: db, log: config.Logger}, nil
}

// migrate drops the chunk tables when the schema version moved. Captures
// are session logs, not documents, so a rebuild is acceptable.
func migrate(db *sql.DB) error {
	var current int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		current = 0
	}
	if current == schemaVersion {
		return nil
	}
	if current != 0 {
		for _, stmt := range []string{"DELETE FROM chunks", "DELETE FROM sessions"} {
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("capture: migrate: %w", err)
			}
		}
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("capture: set schema version: %w", err)
	}
	return nil
}

// Close closes the database. Recorders must be closed first.
func (s *Store) Close() error {
	return s.db.Close()
}

// Sessions lists stored sessions, newest first.
func (s *Store) Sessions() ([]SessionInfo, error) {
	rows, err := s.db.Query(`
		SELECT id, title, protocol, width, height, started_at, closed_at
		FROM sessions
		ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("capture: list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var started int64
		var closed sql.NullInt64
		if err := rows.Scan(&info.ID, &info.Title, &info.Protocol,
			&info.Width, &info.Height, &started, &closed); err != nil {
			return nil, err
		}
		info.StartedAt = time.Unix(0, started)
		if closed.Valid {
			info.ClosedAt = time.Unix(0, closed.Int64)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Session returns a single session record.
func (s *Store) Session(id int64) (SessionInfo, error) {
	var info SessionInfo
	var started int64
	var closed sql.NullInt64
	err := s.db.QueryRow(`
		SELECT id, title, protocol, width, height, started_at, closed_at
		FROM sessions WHERE id = ?
	`, id).Scan(&info.ID, &info.Title, &info.Protocol,
		&info.Width, &info.Height, &started, &closed)
	if err == sql.ErrNoRows {
		return SessionInfo{}, ErrNoSession
	}
	if err != nil {
		return SessionInfo{}, err
	}
	info.StartedAt = time.Unix(0, started)
	if closed.Valid {
		info.ClosedAt = time.Unix(0, closed.Int64)
	}
	return info, nil
}

// Delete removes a session and its chunks.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM chunks WHERE session_id = ?", id); err != nil {
		tx.Rollback()
		return err
	}
	res, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		tx.Rollback()
		return err
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return err
	}
	if n == 0 {
		return ErrNoSession
	}
	return nil
}

// Replay calls fn for every chunk of the session in recording order.
// Returning an error from fn stops the replay.
func (s *Store) Replay(id int64, fn func(Chunk) error) error {
	if _, err := s.Session(id); err != nil {
		return err
	}
	rows, err := s.db.Query(`
		SELECT seq, offset_ns, data FROM chunks
		WHERE session_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return fmt.Errorf("capture: replay: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Chunk
		var offset int64
		if err := rows.Scan(&c.Seq, &offset, &c.Data); err != nil {
			return err
		}
		c.Offset = time.Duration(offset)
		if err := fn(c); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ReadAll returns the session's byte stream concatenated.
func (s *Store) ReadAll(id int64) ([]byte, error) {
	var buf bytes.Buffer
	err := s.Replay(id, func(c Chunk) error {
		buf.Write(c.Data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Play writes the session to w, sleeping between chunks to reproduce
// the recorded pacing. speed scales the delays (2 = twice as fast);
// speed <= 0 disables pacing entirely.
func (s *Store) Play(ctx context.Context, id int64, w io.Writer, speed float64) error {
	var last time.Duration
	return s.Replay(id, func(c Chunk) error {
		if speed > 0 && c.Offset > last {
			wait := time.Duration(float64(c.Offset-last) / speed)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		last = c.Offset
		_, err := w.Write(c.Data)
		return err
	})
}
