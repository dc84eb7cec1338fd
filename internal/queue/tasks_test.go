package queue

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hibiken/asynq"
)

type fakeIngestor struct {
	count        int
	err          error
	plainCalls   int
	sectionCalls int
}

func (f *fakeIngestor) Ingest(ctx context.Context, filePath, sourceName string) (int, error) {
	f.plainCalls++
	return f.count, f.err
}

func (f *fakeIngestor) IngestSections(ctx context.Context, filePath, sourceName string) (int, error) {
	f.sectionCalls++
	return f.count, f.err
}

type fakeJobStore struct {
	running   []string
	succeeded map[string]int
	failed    map[string]string
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{succeeded: map[string]int{}, failed: map[string]string{}}
}

func (f *fakeJobStore) MarkJobRunning(ctx context.Context, jobID string) error {
	f.running = append(f.running, jobID)
	return nil
}

func (f *fakeJobStore) MarkJobSucceeded(ctx context.Context, jobID string, chunkCount int) error {
	f.succeeded[jobID] = chunkCount
	return nil
}

func (f *fakeJobStore) MarkJobFailed(ctx context.Context, jobID, errMsg string) error {
	f.failed[jobID] = errMsg
	return nil
}

func tempUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0600); err != nil {
		t.Fatalf("write temp upload: %v", err)
	}
	return path
}

func mustTask(t *testing.T, jobID, filePath string, sectioned bool) *asynq.Task {
	t.Helper()
	task, err := NewIngestPDFTask(jobID, filePath, "doc", sectioned)
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	return task
}

func TestHandleIngestPDFSuccess(t *testing.T) {
	path := tempUpload(t)
	ing := &fakeIngestor{count: 12}
	jobs := newFakeJobStore()
	p := NewTaskProcessor(ing, jobs)

	if err := p.HandleIngestPDF(context.Background(), mustTask(t, "job-1", path, false)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ing.plainCalls != 1 || ing.sectionCalls != 0 {
		t.Fatalf("wrong ingest variant called")
	}
	if jobs.succeeded["job-1"] != 12 {
		t.Fatalf("job not marked succeeded with count: %v", jobs.succeeded)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("upload file not removed")
	}
}

func TestHandleIngestPDFSectioned(t *testing.T) {
	path := tempUpload(t)
	ing := &fakeIngestor{count: 3}
	jobs := newFakeJobStore()
	p := NewTaskProcessor(ing, jobs)

	if err := p.HandleIngestPDF(context.Background(), mustTask(t, "job-2", path, true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ing.sectionCalls != 1 || ing.plainCalls != 0 {
		t.Fatalf("sectioned upload must use sectioned ingestion")
	}
}

func TestHandleIngestPDFFailureMarksJobFailed(t *testing.T) {
	path := tempUpload(t)
	ing := &fakeIngestor{err: errors.New("extraction failed")}
	jobs := newFakeJobStore()
	p := NewTaskProcessor(ing, jobs)

	err := p.HandleIngestPDF(context.Background(), mustTask(t, "job-3", path, false))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("ingestion failures must not be retried, got %v", err)
	}
	if jobs.failed["job-3"] == "" {
		t.Fatalf("job not marked failed")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("upload file must be removed even on failure")
	}
}

func TestHandleIngestPDFZeroChunksIsFailure(t *testing.T) {
	path := tempUpload(t)
	ing := &fakeIngestor{count: 0}
	jobs := newFakeJobStore()
	p := NewTaskProcessor(ing, jobs)

	err := p.HandleIngestPDF(context.Background(), mustTask(t, "job-4", path, false))
	if err == nil {
		t.Fatalf("zero persisted chunks must fail the job")
	}
	if jobs.failed["job-4"] == "" {
		t.Fatalf("job not marked failed")
	}
	if len(jobs.succeeded) != 0 {
		t.Fatalf("job must not be marked succeeded")
	}
}

func TestHandleIngestPDFBadPayload(t *testing.T) {
	p := NewTaskProcessor(&fakeIngestor{}, newFakeJobStore())
	task := asynq.NewTask(TaskIngestPDF, []byte("{not json"))

	err := p.HandleIngestPDF(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("bad payload must skip retry, got %v", err)
	}
}
