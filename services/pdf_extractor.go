package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"rag-chatbot-platform/internal/logger"
)

// TextExtractor turns a document on disk into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, filePath string) (string, error)
}

// PDFExtractor extracts PDF text with the pure-Go reader first and falls
// back to poppler's pdftotext when the Go reader fails or yields nothing.
type PDFExtractor struct {
	maxFileSize int64
}

func NewPDFExtractor(maxFileSize int64) *PDFExtractor {
	return &PDFExtractor{maxFileSize: maxFileSize}
}

func (e *PDFExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return "", &ExtractionError{Source: filePath, Err: fmt.Errorf("stat pdf: %w", err)}
	}
	if e.maxFileSize > 0 && stat.Size() > e.maxFileSize {
		return "", &ExtractionError{Source: filePath, Err: fmt.Errorf("pdf exceeds size limit (%d bytes)", stat.Size())}
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", &ExtractionError{Source: filePath, Err: fmt.Errorf("read pdf: %w", err)}
	}

	text, goErr := e.extractWithGoPDF(content)
	if goErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if goErr != nil {
		logger.Warn("go-pdf extraction failed, trying pdftotext", "file", filePath, "error", goErr)
	}

	text, popErr := e.extractWithPoppler(ctx, content)
	if popErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	return "", &ExtractionError{Source: filePath, Err: fmt.Errorf("all extraction methods failed: go-pdf: %v, pdftotext: %v", goErr, popErr)}
}

func (e *PDFExtractor) extractWithGoPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf reader: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("failed to extract pdf page", "page", i, "error", err)
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	extracted := textBuilder.String()
	if strings.TrimSpace(extracted) == "" {
		return "", fmt.Errorf("no text extracted")
	}
	return extracted, nil
}

func (e *PDFExtractor) extractWithPoppler(ctx context.Context, content []byte) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not available")
	}

	extractCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(extractCtx, "pdftotext", "-layout", "-", "-")
	cmd.Stdin = bytes.NewReader(content)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext: %v, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return "", fmt.Errorf("no text extracted")
	}
	return stdout.String(), nil
}
