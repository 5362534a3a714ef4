package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"minute/internal/config"
)

// Store manages session persistence backed by SQLite.
type Store struct {
	db       *sql.DB
	path     string
	dataRoot string
}

// Open initializes or connects to the session database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, dataRoot: cfg.Paths.DataDir}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a new session in recording state and creates its directory.
// The row is committed before Create returns so a crash immediately afterward
// still leaves a discoverable record.
func (s *Store) Create(ctx context.Context, title string, source AudioSource) (*Session, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	id := uuid.NewString()
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle(now.Local())
	}

	if err := os.MkdirAll(s.SessionDir(id), 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (
            id, title, status, audio_source, audio_path,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		title,
		StatusRecording,
		string(source),
		RelativeAudioPath(id),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a session by identifier. Returns nil when no row matches.
func (s *Store) GetByID(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// FindActive returns the session occupying the recording/processing slot, or
// nil when none is active.
func (s *Store) FindActive(ctx context.Context) (*Session, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE status IN (?, ?) ORDER BY created_at LIMIT 1`,
		StatusRecording,
		StatusProcessing,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return sess, nil
}

// List returns sessions filtered by status set (or all sessions when no status
// is provided), newest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Session, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + sessionColumns + ` FROM sessions`
	orderClause := ` ORDER BY created_at DESC`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Update persists changes to an existing session.
func (s *Store) Update(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("session is nil")
	}
	sess.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions
         SET title = ?, status = ?, audio_source = ?, audio_path = ?,
             transcript_path = ?, summary_path = ?, error_message = ?,
             duration = ?, updated_at = ?
         WHERE id = ?`,
		sess.Title,
		sess.Status,
		nullableString(string(sess.AudioSource)),
		nullableString(sess.AudioPath),
		nullableString(sess.TranscriptPath),
		nullableString(sess.SummaryPath),
		nullableString(sess.ErrorMessage),
		nullableInt64(sess.Duration),
		sess.UpdatedAt.Format(time.RFC3339Nano),
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// UpdateTitle changes the human-facing title. Valid in any lifecycle state.
func (s *Store) UpdateTitle(ctx context.Context, id, title string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?`,
		title,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return requireRow(res)
}

// UpdateStatus persists a bare status change.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return requireRow(res)
}

// MarkProcessing records the end of capture: status becomes processing and the
// measured duration is stored.
func (s *Store) MarkProcessing(ctx context.Context, id string, durationSeconds int64) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET status = ?, duration = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
		StatusProcessing,
		durationSeconds,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return requireRow(res)
}

// MarkRetrying returns a terminal session to processing for a transcription
// retry without touching the recorded duration.
func (s *Store) MarkRetrying(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET status = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
		StatusProcessing,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark retrying: %w", err)
	}
	return requireRow(res)
}

// MarkFailed records a failure with an operator-facing message. The duration
// is only written when provided so transcription failures keep the measured
// recording length.
func (s *Store) MarkFailed(ctx context.Context, id, message string, durationSeconds *int64) error {
	var (
		res sql.Result
		err error
	)
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if durationSeconds != nil {
		res, err = s.db.ExecContext(
			ctx,
			`UPDATE sessions SET status = ?, error_message = ?, duration = ?, updated_at = ? WHERE id = ?`,
			StatusFailed, message, *durationSeconds, timestamp, id,
		)
	} else {
		res, err = s.db.ExecContext(
			ctx,
			`UPDATE sessions SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
			StatusFailed, message, timestamp, id,
		)
	}
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return requireRow(res)
}

// MarkInterrupted records a shutdown mid-recording, preserving partial audio.
func (s *Store) MarkInterrupted(ctx context.Context, id string, durationSeconds int64) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET status = ?, duration = ?, updated_at = ? WHERE id = ?`,
		StatusInterrupted,
		durationSeconds,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark interrupted: %w", err)
	}
	return requireRow(res)
}

// MarkCompleted records a finished transcription and its artifact path.
func (s *Store) MarkCompleted(ctx context.Context, id, transcriptPath string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET status = ?, transcript_path = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
		StatusCompleted,
		nullableString(transcriptPath),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return requireRow(res)
}

// SetSummaryPath records a generated summary artifact.
func (s *Store) SetSummaryPath(ctx context.Context, id, summaryPath string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET summary_path = ?, updated_at = ? WHERE id = ?`,
		nullableString(summaryPath),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set summary path: %w", err)
	}
	return requireRow(res)
}

// RecoverInterrupted sweeps sessions left active by a previous process into
// interrupted. Run once at startup before any new session may begin.
func (s *Store) RecoverInterrupted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET status = ?, updated_at = ? WHERE status IN (?, ?)`,
		StatusInterrupted,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusRecording,
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("recover interrupted sessions: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes the session row and its directory tree.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	if err := os.RemoveAll(s.SessionDir(id)); err != nil {
		return true, fmt.Errorf("remove session directory: %w", err)
	}
	return true, nil
}

// Stats returns a count of sessions grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM sessions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("session stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const sessionColumns = "id, title, status, audio_source, audio_path, transcript_path, summary_path, error_message, duration, created_at, updated_at"

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		id             string
		title          string
		statusStr      string
		audioSource    sql.NullString
		audioPath      sql.NullString
		transcriptPath sql.NullString
		summaryPath    sql.NullString
		errorMessage   sql.NullString
		duration       sql.NullInt64
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&statusStr,
		&audioSource,
		&audioPath,
		&transcriptPath,
		&summaryPath,
		&errorMessage,
		&duration,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	sess := &Session{
		ID:             id,
		Title:          title,
		Status:         Status(statusStr),
		AudioSource:    AudioSource(audioSource.String),
		AudioPath:      audioPath.String,
		TranscriptPath: transcriptPath.String,
		SummaryPath:    summaryPath.String,
		ErrorMessage:   errorMessage.String,
	}
	if duration.Valid {
		value := duration.Int64
		sess.Duration = &value
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		sess.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		sess.UpdatedAt = updated
	}
	return sess, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
