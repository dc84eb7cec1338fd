package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"rag-chatbot-platform/internal/config"
	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/internal/queue"
	"rag-chatbot-platform/internal/store"
	"rag-chatbot-platform/models"
	"rag-chatbot-platform/utils"
)

// HandlePDFUpload accepts a PDF, stores it to disk, creates a tracked
// ingestion job and enqueues it for background processing.
func HandlePDFUpload(cfg *config.Config, st *store.Store, queueClient *asynq.Client, sectioned bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseMultipartForm(cfg.MaxFileSize); err != nil {
			utils.RespondWithTooLarge(c, "File size exceeds maximum limit")
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "No PDF file provided", nil)
			return
		}
		defer file.Close()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
			utils.RespondWithBadRequest(c, "Only PDF files are allowed", nil)
			return
		}
		if header.Size > cfg.MaxFileSize {
			utils.RespondWithTooLarge(c, "File size exceeds maximum limit")
			return
		}

		// Basic PDF header validation without loading the whole file
		headerBuf := make([]byte, 5)
		if _, err := io.ReadFull(file, headerBuf); err != nil {
			utils.RespondWithBadRequest(c, "Cannot read file header", nil)
			return
		}
		if string(headerBuf[:4]) != "%PDF" {
			utils.RespondWithBadRequest(c, "File does not appear to be a valid PDF", nil)
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			utils.RespondWithInternalError(c, "Failed to reset file for saving", nil)
			return
		}

		jobID := uuid.NewString()
		sourceName := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))

		uploadDir := filepath.Join(cfg.FileStorageDir, "uploads")
		if err := os.MkdirAll(uploadDir, 0755); err != nil {
			utils.RespondWithInternalError(c, "Failed to create upload directory", nil)
			return
		}

		filePath := filepath.Join(uploadDir, fmt.Sprintf("%s.pdf", jobID))
		dst, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to open destination", nil)
			return
		}
		if _, err := io.Copy(dst, io.LimitReader(file, cfg.MaxFileSize)); err != nil {
			dst.Close()
			os.Remove(filePath)
			utils.RespondWithInternalError(c, "Failed to save file", nil)
			return
		}
		dst.Close()

		job := &models.IngestJob{
			ID:         jobID,
			SourceName: sourceName,
			FilePath:   filePath,
			Sectioned:  sectioned,
		}
		if err := st.CreateJob(c.Request.Context(), job); err != nil {
			os.Remove(filePath)
			logger.Error("failed to create ingest job", "error", err)
			utils.RespondWithInternalError(c, "Failed to create ingestion job", nil)
			return
		}

		task, err := queue.NewIngestPDFTask(jobID, filePath, sourceName, sectioned)
		if err != nil {
			os.Remove(filePath)
			utils.RespondWithInternalError(c, "Failed to create processing task", nil)
			return
		}
		if _, err := queueClient.Enqueue(task); err != nil {
			os.Remove(filePath)
			logger.Error("failed to enqueue ingest task", "job_id", jobID, "error", err)
			utils.RespondWithInternalError(c, "Failed to enqueue processing task", nil)
			return
		}

		c.JSON(http.StatusAccepted, models.UploadResponse{
			JobID:      jobID,
			SourceName: sourceName,
			Filename:   header.Filename,
			Size:       header.Size,
			Status:     models.JobPending,
			CreatedAt:  job.CreatedAt,
		})
	}
}

// CheckJobStatus reports the state of an ingestion job.
func CheckJobStatus(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := st.GetJob(c.Request.Context(), c.Param("id"))
		if errors.Is(err, store.ErrJobNotFound) {
			utils.RespondWithNotFound(c, "Job not found")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to retrieve job", nil)
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

// ListDocuments returns per-source chunk counts.
func ListDocuments(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := st.ListDocuments(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list documents", nil)
			return
		}
		if docs == nil {
			docs = []models.DocumentInfo{}
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
	}
}

// DeleteDocument removes all chunks stored under a source name.
func DeleteDocument(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sourceName := c.Param("source")
		deleted, err := st.DeleteDocument(c.Request.Context(), sourceName)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to delete document", nil)
			return
		}
		if deleted == 0 {
			utils.RespondWithNotFound(c, "No chunks found for source")
			return
		}
		c.JSON(http.StatusOK, gin.H{"source_name": sourceName, "deleted_chunks": deleted})
	}
}
