// Package archive persists finished interview sessions to sqlite. It sits
// entirely outside the live-session path: the orchestrator writes a session
// here once, after disconnect, and nothing ever reads an archived session
// back into the registry.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"interviewd/internal/transcript"
)

// Session is one archived interview.
type Session struct {
	ID            string    `json:"id"`
	Industry      string    `json:"industry,omitempty"`
	Level         string    `json:"level,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	QuestionCount int       `json:"question_count"`
	AnswerCount   int       `json:"answer_count"`
	Summary       string    `json:"summary"`
}

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = filepath.Join("data", "interviewd.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) init() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			industry TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			question_count INTEGER NOT NULL DEFAULT 0,
			answer_count INTEGER NOT NULL DEFAULT 0,
			summary TEXT NOT NULL DEFAULT ''
		);
	`); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);
	`); err != nil {
		return fmt.Errorf("create turns table: %w", err)
	}

	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)"); err != nil {
		return fmt.Errorf("create sessions index: %w", err)
	}
	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_turns_session_id ON turns(session_id)"); err != nil {
		return fmt.Errorf("create turns index: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable, for health checks.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// ArchiveSession writes a finished session and its full transcript in one
// transaction. Counts and summary are derived from the transcript the same
// way a live report is.
func (s *Store) ArchiveSession(id, industry, level string, startedAt, endedAt time.Time, turns []transcript.Turn) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("session id is required")
	}

	report := transcript.BuildReport(industry, level, turns)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO sessions(id, industry, level, started_at, ended_at, question_count, answer_count, summary)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		industry,
		level,
		startedAt.UTC().Format(time.RFC3339Nano),
		endedAt.UTC().Format(time.RFC3339Nano),
		report.QuestionCount,
		report.AnswerCount,
		report.Summary,
	); err != nil {
		return fmt.Errorf("archive session %s: %w", id, err)
	}

	for _, turn := range turns {
		if _, err := tx.Exec(
			`INSERT INTO turns(session_id, role, text, timestamp) VALUES(?, ?, ?, ?)`,
			id,
			string(turn.Role),
			turn.Text,
			turn.Timestamp.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("archive turn for session %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// GetSessionsByDate returns archived sessions started on a YYYY-MM-DD date.
func (s *Store) GetSessionsByDate(date string) ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT id, industry, level, started_at, ended_at, question_count, answer_count, summary
		 FROM sessions
		 WHERE substr(started_at, 1, 10) = ?
		 ORDER BY started_at DESC`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions by date %s: %w", date, err)
	}
	defer func() { _ = rows.Close() }()

	return scanSessions(rows)
}

// GetSession returns one archived session. sql.ErrNoRows when absent.
func (s *Store) GetSession(id string) (Session, error) {
	row := s.db.QueryRow(
		`SELECT id, industry, level, started_at, ended_at, question_count, answer_count, summary
		 FROM sessions WHERE id = ?`,
		id,
	)

	var sess Session
	var startedAt, endedAt string
	if err := row.Scan(&sess.ID, &sess.Industry, &sess.Level, &startedAt, &endedAt,
		&sess.QuestionCount, &sess.AnswerCount, &sess.Summary); err != nil {
		return Session{}, fmt.Errorf("query session %s: %w", id, err)
	}

	if err := parseTimes(&sess, startedAt, endedAt); err != nil {
		return Session{}, fmt.Errorf("session %s: %w", id, err)
	}
	return sess, nil
}

// GetTurns returns an archived transcript in its original append order.
func (s *Store) GetTurns(sessionID string) ([]transcript.Turn, error) {
	rows, err := s.db.Query(
		`SELECT role, text, timestamp FROM turns WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query turns for session %s: %w", sessionID, err)
	}
	defer func() { _ = rows.Close() }()

	turns := make([]transcript.Turn, 0, 16)
	for rows.Next() {
		var role, text, ts string
		if err := rows.Scan(&role, &text, &ts); err != nil {
			return nil, fmt.Errorf("scan turn for session %s: %w", sessionID, err)
		}

		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse turn timestamp for session %s: %w", sessionID, err)
		}

		turns = append(turns, transcript.Turn{Role: transcript.Role(role), Text: text, Timestamp: parsed})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows for session %s: %w", sessionID, err)
	}

	return turns, nil
}

// GetDates returns the distinct dates with archived sessions, newest first.
func (s *Store) GetDates() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT substr(started_at, 1, 10) AS date FROM sessions ORDER BY date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dates rows: %w", err)
	}

	return dates, nil
}

func scanSessions(rows *sql.Rows) ([]Session, error) {
	sessions := make([]Session, 0, 16)
	for rows.Next() {
		var sess Session
		var startedAt, endedAt string
		if err := rows.Scan(&sess.ID, &sess.Industry, &sess.Level, &startedAt, &endedAt,
			&sess.QuestionCount, &sess.AnswerCount, &sess.Summary); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}

		if err := parseTimes(&sess, startedAt, endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions rows: %w", err)
	}

	return sessions, nil
}

func parseTimes(sess *Session, startedAt, endedAt string) error {
	parsedStart, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return fmt.Errorf("parse started_at: %w", err)
	}
	sess.StartedAt = parsedStart

	parsedEnd, err := time.Parse(time.RFC3339Nano, endedAt)
	if err != nil {
		return fmt.Errorf("parse ended_at: %w", err)
	}
	sess.EndedAt = parsedEnd

	return nil
}
