package audit

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Sink receives one audit record per editor operation
type Sink interface {
	Log(sessionID, command, argument string, success bool, errorMsg string)
}

// Entry is one stored audit record
type Entry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Command   string    `json:"command"`
	Argument  string    `json:"argument"`
	Success   bool      `json:"success"`
	ErrorMsg  string    `json:"error_msg"`
}

// DB stores audit records in SQLite
type DB struct {
	db *sql.DB
}

// Open connects to the SQLite database at dbPath and creates the schema
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	d := &DB{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return d, nil
}

func (d *DB) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		session_id TEXT NOT NULL,
		command TEXT NOT NULL,
		argument TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		error_msg TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_session ON audit_logs(session_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON audit_logs(timestamp);
	`
	_, err := d.db.Exec(schema)
	return err
}

// Close closes the database
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Record inserts an audit record
func (d *DB) Record(sessionID, command, argument string, success bool, errorMsg string) error {
	query := `
		INSERT INTO audit_logs (timestamp, session_id, command, argument, success, error_msg)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query, time.Now().UTC(), sessionID, command, argument, success, errorMsg)
	return err
}

// Log implements Sink. Insert failures are reported on the process log.
func (d *DB) Log(sessionID, command, argument string, success bool, errorMsg string) {
	if err := d.Record(sessionID, command, argument, success, errorMsg); err != nil {
		log.Printf("Warning: failed to record audit event %s: %v", command, err)
	}
}

// Recent returns up to limit records, newest first. An empty sessionID matches all sessions.
func (d *DB) Recent(sessionID string, limit int) ([]Entry, error) {
	query := `
		SELECT id, timestamp, session_id, command, argument, success, COALESCE(error_msg, '')
		FROM audit_logs
		WHERE (? = '' OR session_id = ?)
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := d.db.Query(query, sessionID, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.SessionID, &e.Command, &e.Argument, &e.Success, &e.ErrorMsg); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Fanout sends every record to each sink
type Fanout []Sink

// Log implements Sink
func (f Fanout) Log(sessionID, command, argument string, success bool, errorMsg string) {
	for _, s := range f {
		if s != nil {
			s.Log(sessionID, command, argument, success, errorMsg)
		}
	}
}

// ForSession binds sink to one session, in the shape editor.WithAudit expects
func ForSession(sink Sink, sessionID string) func(cmd, arg string, success bool, errMsg string) {
	if sink == nil {
		return nil
	}
	return func(cmd, arg string, success bool, errMsg string) {
		sink.Log(sessionID, cmd, arg, success, errMsg)
	}
}
