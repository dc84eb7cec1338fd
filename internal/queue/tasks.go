package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"rag-chatbot-platform/internal/logger"
)

const TaskIngestPDF = "ingest:pdf"

type IngestPDFPayload struct {
	JobID      string `json:"job_id"`
	FilePath   string `json:"file_path"`
	SourceName string `json:"source_name"`
	Sectioned  bool   `json:"sectioned"`
}

// NewIngestPDFTask builds the ingestion task for a stored upload. Ingestion
// is never retried automatically; a failure is recorded on the job instead.
func NewIngestPDFTask(jobID, filePath, sourceName string, sectioned bool) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestPDFPayload{
		JobID:      jobID,
		FilePath:   filePath,
		SourceName: sourceName,
		Sectioned:  sectioned,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestPDF,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("ingest"),
	), nil
}

// Ingestor is the pipeline surface the task handler drives.
type Ingestor interface {
	Ingest(ctx context.Context, filePath, sourceName string) (int, error)
	IngestSections(ctx context.Context, filePath, sourceName string) (int, error)
}

// JobStore tracks lifecycle state for ingestion jobs.
type JobStore interface {
	MarkJobRunning(ctx context.Context, jobID string) error
	MarkJobSucceeded(ctx context.Context, jobID string, chunkCount int) error
	MarkJobFailed(ctx context.Context, jobID, errMsg string) error
}

type TaskProcessor struct {
	ingestor Ingestor
	jobs     JobStore
}

func NewTaskProcessor(ingestor Ingestor, jobs JobStore) *TaskProcessor {
	return &TaskProcessor{ingestor: ingestor, jobs: jobs}
}

// HandleIngestPDF runs one ingestion job to completion and records the
// outcome. The temporary upload is removed whether or not the job succeeds.
func (p *TaskProcessor) HandleIngestPDF(ctx context.Context, t *asynq.Task) error {
	var payload IngestPDFPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal ingest payload: %w", asynq.SkipRetry)
	}

	logger.Info("starting ingestion job", "job_id", payload.JobID, "source", payload.SourceName, "sectioned", payload.Sectioned)

	if err := p.jobs.MarkJobRunning(ctx, payload.JobID); err != nil {
		logger.Error("failed to mark job running", "job_id", payload.JobID, "error", err)
	}

	var count int
	var err error
	if payload.Sectioned {
		count, err = p.ingestor.IngestSections(ctx, payload.FilePath, payload.SourceName)
	} else {
		count, err = p.ingestor.Ingest(ctx, payload.FilePath, payload.SourceName)
	}

	if rmErr := os.Remove(payload.FilePath); rmErr != nil && !os.IsNotExist(rmErr) {
		logger.Warn("failed to remove uploaded file", "path", payload.FilePath, "error", rmErr)
	}

	if err != nil {
		if markErr := p.jobs.MarkJobFailed(ctx, payload.JobID, err.Error()); markErr != nil {
			logger.Error("failed to mark job failed", "job_id", payload.JobID, "error", markErr)
		}
		logger.Error("ingestion job failed", "job_id", payload.JobID, "error", err)
		return fmt.Errorf("ingest %s: %v: %w", payload.SourceName, err, asynq.SkipRetry)
	}

	if count == 0 {
		msg := "no chunks could be persisted"
		if markErr := p.jobs.MarkJobFailed(ctx, payload.JobID, msg); markErr != nil {
			logger.Error("failed to mark job failed", "job_id", payload.JobID, "error", markErr)
		}
		return fmt.Errorf("ingest %s: %s: %w", payload.SourceName, msg, asynq.SkipRetry)
	}

	if err := p.jobs.MarkJobSucceeded(ctx, payload.JobID, count); err != nil {
		logger.Error("failed to mark job succeeded", "job_id", payload.JobID, "error", err)
	}

	logger.Info("ingestion job finished", "job_id", payload.JobID, "chunks", count)
	return nil
}
