package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"rag-chatbot-platform/models"
)

var ErrJobNotFound = errors.New("ingest job not found")

func (s *Store) CreateJob(ctx context.Context, job *models.IngestJob) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ingest_jobs (id, source_name, file_path, sectioned, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		job.ID, job.SourceName, job.FilePath, job.Sectioned, models.JobPending,
	)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *Store) MarkJobRunning(ctx context.Context, jobID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE ingest_jobs SET status = $2, updated_at = now() WHERE id = $1`,
		jobID, models.JobRunning,
	)
	if err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (s *Store) MarkJobSucceeded(ctx context.Context, jobID string, chunkCount int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE ingest_jobs
		 SET status = $2, chunk_count = $3, updated_at = now(), finished_at = now()
		 WHERE id = $1`,
		jobID, models.JobSucceeded, chunkCount,
	)
	if err != nil {
		return fmt.Errorf("mark job succeeded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (s *Store) MarkJobFailed(ctx context.Context, jobID, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE ingest_jobs
		 SET status = $2, error = $3, updated_at = now(), finished_at = now()
		 WHERE id = $1`,
		jobID, models.JobFailed, errMsg,
	)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*models.IngestJob, error) {
	var job models.IngestJob
	err := s.pool.QueryRow(ctx,
		`SELECT id, source_name, file_path, sectioned, status, chunk_count,
		        COALESCE(error, ''), created_at, updated_at, finished_at
		 FROM ingest_jobs WHERE id = $1`,
		jobID,
	).Scan(&job.ID, &job.SourceName, &job.FilePath, &job.Sectioned, &job.Status,
		&job.ChunkCount, &job.Error, &job.CreatedAt, &job.UpdatedAt, &job.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// FailStaleJobs marks pending and running jobs older than maxAge as failed
// and returns the file paths of the jobs it reaped so their temporary
// uploads can be removed.
func (s *Store) FailStaleJobs(ctx context.Context, maxAge time.Duration) ([]string, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	rows, err := s.pool.Query(ctx,
		`UPDATE ingest_jobs
		 SET status = $1, error = 'job exceeded maximum age', updated_at = now(), finished_at = now()
		 WHERE status IN ($2, $3) AND created_at < $4
		 RETURNING file_path`,
		models.JobFailed, models.JobPending, models.JobRunning, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("fail stale jobs: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan stale job: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
