package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"reelsmith/internal/config"
)

const jobColumns = `id, job_id, concept, format, audience_level, title, status,
	storyboard_json, deliverable_path, error_message,
	progress_stage, progress_percent, progress_message,
	created_at, updated_at`

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the jobs database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "jobs.db")
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

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewJob inserts a pending job for the given concept and returns it.
func (s *Store) NewJob(ctx context.Context, concept, format, audienceLevel string) (*Job, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, errors.New("insert job: concept required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	jobID := uuid.NewString()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            job_id, concept, format, audience_level, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		jobID,
		concept,
		strings.ToLower(strings.TrimSpace(format)),
		strings.TrimSpace(audienceLevel),
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a job by its row identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// GetByJobID fetches a job by its public identifier. Returns nil when absent.
func (s *Store) GetByJobID(ctx context.Context, jobID string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE job_id = ?`, jobID)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns jobs ordered newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var result []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		result = append(result, job)
	}
	return result, rows.Err()
}

// Update persists the mutable fields of a job.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("update job: nil job")
	}
	job.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET
            title = ?, status = ?, storyboard_json = ?, deliverable_path = ?,
            error_message = ?, progress_stage = ?, progress_percent = ?,
            progress_message = ?, updated_at = ?
        WHERE id = ?`,
		job.Title,
		job.Status,
		job.StoryboardJSON,
		job.DeliverablePath,
		job.ErrorMessage,
		job.ProgressStage,
		job.ProgressPercent,
		job.ProgressMessage,
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// MarkFailed records a failure message and moves the job to failed.
func (s *Store) MarkFailed(ctx context.Context, job *Job, message string) error {
	if job == nil {
		return errors.New("mark failed: nil job")
	}
	job.Status = StatusFailed
	job.ErrorMessage = strings.TrimSpace(message)
	return s.Update(ctx, job)
}

// MarkCompleted records the deliverable path and moves the job to completed.
func (s *Store) MarkCompleted(ctx context.Context, job *Job, deliverablePath string) error {
	if job == nil {
		return errors.New("mark completed: nil job")
	}
	job.Status = StatusCompleted
	job.DeliverablePath = deliverablePath
	job.ErrorMessage = ""
	job.SetProgress("done", "deliverable ready", 100)
	return s.Update(ctx, job)
}

// Summary aggregates job counts by lifecycle state.
func (s *Store) Summary(ctx context.Context) (HealthSummary, error) {
	var summary HealthSummary
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return summary, fmt.Errorf("summarize jobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return summary, fmt.Errorf("scan summary: %w", err)
		}
		summary.Total += count
		parsed, ok := ParseStatus(status)
		if !ok {
			continue
		}
		switch parsed {
		case StatusPending:
			summary.Pending += count
		case StatusCompleted:
			summary.Completed += count
		case StatusFailed:
			summary.Failed += count
		default:
			if _, processing := processingStatuses[parsed]; processing {
				summary.Processing += count
			}
		}
	}
	return summary, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var status string
	var createdAt, updatedAt string
	if err := row.Scan(
		&job.ID,
		&job.JobID,
		&job.Concept,
		&job.Format,
		&job.AudienceLevel,
		&job.Title,
		&status,
		&job.StoryboardJSON,
		&job.DeliverablePath,
		&job.ErrorMessage,
		&job.ProgressStage,
		&job.ProgressPercent,
		&job.ProgressMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	job.Status = Status(status)
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		job.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		job.UpdatedAt = parsed
	}
	return &job, nil
}
