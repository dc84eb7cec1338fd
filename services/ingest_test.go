package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"rag-chatbot-platform/models"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	return f.text, f.err
}

type fakeEmbedder struct {
	calls   int
	failSet map[int]bool
	failAll bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	call := f.calls
	f.calls++
	if f.failAll || f.failSet[call] {
		return nil, errors.New("embedding unavailable")
	}
	return []float32{float32(call), 0, 0}, nil
}

type fakeChunkStore struct {
	batches   [][]models.Chunk
	failBatch map[int]bool
}

func (f *fakeChunkStore) InsertChunkBatch(ctx context.Context, chunks []models.Chunk) error {
	idx := len(f.batches)
	f.batches = append(f.batches, append([]models.Chunk(nil), chunks...))
	if f.failBatch[idx] {
		return errors.New("storage down")
	}
	return nil
}

func (f *fakeChunkStore) stored() []models.Chunk {
	var all []models.Chunk
	for i, b := range f.batches {
		if f.failBatch[i] {
			continue
		}
		all = append(all, b...)
	}
	return all
}

func newTestIngestor(extractor TextExtractor, embedder *fakeEmbedder, store *fakeChunkStore) *Ingestor {
	sectioner := NewSectioner([]string{"chapter"})
	return NewIngestor(extractor, embedder, store, sectioner, 50, 10, 100, 5)
}

func paragraphs(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "Paragraph number %d with filler text inside.\n\n", i)
	}
	return sb.String()
}

func TestIngestExtractionFailureIsFatal(t *testing.T) {
	extractor := &fakeExtractor{err: &ExtractionError{Source: "doc", Err: errors.New("corrupt")}}
	store := &fakeChunkStore{}
	ing := newTestIngestor(extractor, &fakeEmbedder{}, store)

	_, err := ing.Ingest(context.Background(), "doc.pdf", "doc")
	if err == nil {
		t.Fatalf("expected extraction error")
	}
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %T", err)
	}
	if len(store.batches) != 0 {
		t.Fatalf("nothing should be stored on extraction failure")
	}
}

func TestIngestStoresAllChunks(t *testing.T) {
	extractor := &fakeExtractor{text: paragraphs(10)}
	embedder := &fakeEmbedder{}
	store := &fakeChunkStore{}
	ing := newTestIngestor(extractor, embedder, store)

	count, err := ing.Ingest(context.Background(), "doc.pdf", "doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != len(store.stored()) {
		t.Fatalf("reported %d, stored %d", count, len(store.stored()))
	}
	if count == 0 {
		t.Fatalf("expected chunks to be stored")
	}
	for _, c := range store.stored() {
		if c.SourceName != "doc" {
			t.Fatalf("wrong source name %q", c.SourceName)
		}
		if c.Content == "" {
			t.Fatalf("empty chunk content stored")
		}
	}
}

func TestIngestSkipsFailedEmbeddings(t *testing.T) {
	extractor := &fakeExtractor{text: paragraphs(10)}
	embedder := &fakeEmbedder{failSet: map[int]bool{1: true, 4: true, 7: true}}
	store := &fakeChunkStore{}
	ing := newTestIngestor(extractor, embedder, store)

	count, err := ing.Ingest(context.Background(), "doc.pdf", "doc")
	if err != nil {
		t.Fatalf("partial embedding failure must not fail ingestion: %v", err)
	}
	if count != embedder.calls-3 {
		t.Fatalf("expected %d stored after 3 skips, got %d", embedder.calls-3, count)
	}
	for _, c := range store.stored() {
		if c.SequenceIndex == 1 || c.SequenceIndex == 4 || c.SequenceIndex == 7 {
			t.Fatalf("skipped chunk %d was stored", c.SequenceIndex)
		}
	}
}

func TestIngestAllEmbeddingsFail(t *testing.T) {
	extractor := &fakeExtractor{text: paragraphs(5)}
	store := &fakeChunkStore{}
	ing := newTestIngestor(extractor, &fakeEmbedder{failAll: true}, store)

	count, err := ing.Ingest(context.Background(), "doc.pdf", "doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero persisted chunks, got %d", count)
	}
}

func TestIngestBatchFailureLosesOnlyThatBatch(t *testing.T) {
	extractor := &fakeExtractor{text: paragraphs(20)}
	embedder := &fakeEmbedder{}
	store := &fakeChunkStore{failBatch: map[int]bool{0: true}}
	ing := newTestIngestor(extractor, embedder, store)

	count, err := ing.Ingest(context.Background(), "doc.pdf", "doc")
	if err != nil {
		t.Fatalf("batch failure must not fail ingestion: %v", err)
	}
	if len(store.batches) < 2 {
		t.Fatalf("expected multiple batches, got %d", len(store.batches))
	}
	lost := len(store.batches[0])
	if count != embedder.calls-lost {
		t.Fatalf("expected %d stored after losing first batch, got %d", embedder.calls-lost, count)
	}
}

func TestIngestSectionsDerivedSourceNames(t *testing.T) {
	text := "Chapter 1\n" + paragraphs(2) + "Chapter 2\n" + paragraphs(2)
	extractor := &fakeExtractor{text: text}
	store := &fakeChunkStore{}
	ing := newTestIngestor(extractor, &fakeEmbedder{}, store)

	count, err := ing.IngestSections(context.Background(), "book.pdf", "book")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count == 0 {
		t.Fatalf("expected stored chunks")
	}

	sources := map[string]bool{}
	for _, c := range store.stored() {
		sources[c.SourceName] = true
	}
	if !sources["book_section_1"] || !sources["book_section_2"] {
		t.Fatalf("expected derived section sources, got %v", sources)
	}
}

func TestIngestSectionsSequenceRestartsPerSection(t *testing.T) {
	text := "Chapter 1\n" + paragraphs(3) + "Chapter 2\n" + paragraphs(3)
	extractor := &fakeExtractor{text: text}
	store := &fakeChunkStore{}
	ing := newTestIngestor(extractor, &fakeEmbedder{}, store)

	if _, err := ing.IngestSections(context.Background(), "book.pdf", "book"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	firstSeq := map[string]int{}
	for _, c := range store.stored() {
		if cur, ok := firstSeq[c.SourceName]; !ok || c.SequenceIndex < cur {
			firstSeq[c.SourceName] = c.SequenceIndex
		}
	}
	for source, seq := range firstSeq {
		if seq != 0 {
			t.Fatalf("section %s does not start at sequence 0 (got %d)", source, seq)
		}
	}
}
