package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/documint-labs/documint/internal/chunker"
	"github.com/documint-labs/documint/internal/core/domain"
	"github.com/documint-labs/documint/internal/core/ports/driven"
	"github.com/documint-labs/documint/internal/core/ports/driving"
	"github.com/documint-labs/documint/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService manages project document sets: dedup by content hash,
// chunking of new documents and persistence. At most one structural
// mutation runs per project at a time; different projects proceed
// independently.
type IngestService struct {
	store     driven.ProjectStore
	extractor driven.LayoutExtractor
	chunker   *chunker.Chunker
	workers   int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithIngestWorkers bounds the number of documents extracted and
// chunked concurrently within one batch.
func WithIngestWorkers(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewIngestService creates an ingest service.
func NewIngestService(
	store driven.ProjectStore,
	extractor driven.LayoutExtractor,
	ch *chunker.Chunker,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		store:     store,
		extractor: extractor,
		chunker:   ch,
		workers:   runtime.NumCPU(),
		locks:     make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// projectLock returns the mutex serialising structural mutations for
// one project, creating it on first use.
func (s *IngestService) projectLock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

// processedDoc is one successfully extracted and chunked input file.
type processedDoc struct {
	doc    domain.Document
	chunks []domain.Chunk
}

// Ingest adds new documents to the named project, creating the project
// on first use. Each file's content hash is computed before any
// chunking work; files whose hash already exists in the project (or
// earlier in the same batch) are skipped and reported as duplicates.
// Extraction and chunking of new files run on a bounded worker pool;
// one bad file fails alone, the rest of the batch proceeds.
func (s *IngestService) Ingest(
	ctx context.Context, projectName string, files []driving.IngestFile,
) (*driving.IngestResult, error) {
	projectName = strings.TrimSpace(projectName)
	if projectName == "" {
		return nil, fmt.Errorf("%w: empty project name", domain.ErrInvalidInput)
	}

	lock := s.projectLock(projectName)
	lock.Lock()
	defer lock.Unlock()

	logger.Section("Ingest")
	logger.Debug("Project: %q, files: %d", projectName, len(files))

	project, created, err := s.loadOrCreate(ctx, projectName)
	if err != nil {
		return nil, err
	}

	result := &driving.IngestResult{}

	// Dedup before any chunking work. seen guards against the same
	// bytes appearing twice within one batch.
	seen := make(map[string]struct{})
	var fresh []driving.IngestFile
	var hashes []string

	for _, f := range files {
		hash := domain.HashBytes(f.Data)
		if _, dup := seen[hash]; dup || project.HasDocumentHash(hash) {
			logger.Debug("Skipping duplicate %q (hash %.12s)", f.Name, hash)
			result.SkippedDuplicates = append(result.SkippedDuplicates, f.Name)
			continue
		}
		seen[hash] = struct{}{}
		fresh = append(fresh, f)
		hashes = append(hashes, hash)
	}

	processed, failures := s.processBatch(ctx, fresh, hashes)
	result.Failed = failures

	for _, p := range processed {
		project.AppendDocument(p.doc, p.chunks)
		result.Added = append(result.Added, p.doc)
		logger.Info("Added %q: %d pages, %d chunks",
			p.doc.Name, p.doc.PageCount, len(p.chunks))
	}

	if len(result.Added) > 0 || created {
		if err := s.store.Save(ctx, project); err != nil {
			return nil, fmt.Errorf("save project %q: %w", projectName, err)
		}
	}

	result.ChunkCount = len(project.Chunks)
	logger.Info("Ingest complete: %d added, %d skipped, %d failed, %d chunks total",
		len(result.Added), len(result.SkippedDuplicates), len(result.Failed), result.ChunkCount)

	return result, nil
}

// loadOrCreate loads the project or starts an empty one.
func (s *IngestService) loadOrCreate(
	ctx context.Context, name string,
) (*domain.Project, bool, error) {
	project, err := s.store.Load(ctx, name)
	if err == nil {
		return project, false, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("Project %q does not exist, creating", name)
		return domain.NewProject(name), true, nil
	}
	return nil, false, fmt.Errorf("load project %q: %w", name, err)
}

// processBatch extracts and chunks the deduplicated files on a bounded
// worker pool, preserving input order in the returned slices.
func (s *IngestService) processBatch(
	ctx context.Context, files []driving.IngestFile, hashes []string,
) ([]processedDoc, []driving.IngestFailure) {
	type slot struct {
		doc processedDoc
		err error
	}

	slots := make([]slot, len(files))
	sem := make(chan struct{}, s.workers)

	var wg sync.WaitGroup
	for i := range files {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			doc, err := s.processFile(ctx, files[i], hashes[i])
			if err != nil {
				slots[i] = slot{err: err}
				return
			}
			slots[i] = slot{doc: *doc}
		}(i)
	}
	wg.Wait()

	var processed []processedDoc
	var failures []driving.IngestFailure
	for i, sl := range slots {
		if sl.err != nil {
			logger.Warn("Processing %q failed: %v", files[i].Name, sl.err)
			failures = append(failures, driving.IngestFailure{
				Name: files[i].Name,
				Err:  sl.err,
			})
			continue
		}
		processed = append(processed, sl.doc)
	}

	return processed, failures
}

// processFile extracts one document's layout and chunks it.
func (s *IngestService) processFile(
	ctx context.Context, file driving.IngestFile, hash string,
) (*processedDoc, error) {
	extraction, err := s.extractor.Extract(ctx, file.Name, file.Data)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", file.Name, err)
	}

	drafts := s.chunker.Split(extraction.Blocks)

	doc := domain.Document{
		ID:        hash,
		Name:      file.Name,
		ByteSize:  int64(len(file.Data)),
		PageCount: extraction.PageCount,
		CreatedAt: time.Now().UTC(),
	}

	chunks := make([]domain.Chunk, len(drafts))
	for i, d := range drafts {
		chunks[i] = domain.Chunk{
			ID:         domain.ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			Heading:    d.Heading,
			Content:    d.Content,
			PageNumber: d.PageNumber,
			OrderIndex: i,
		}
	}

	return &processedDoc{doc: doc, chunks: chunks}, nil
}

// RemoveDocument deletes the named document and all of its chunks,
// persists the result and reports what remains. Removing the last
// document leaves a valid empty project.
func (s *IngestService) RemoveDocument(
	ctx context.Context, projectName, documentName string,
) (*driving.RemoveResult, error) {
	projectName = strings.TrimSpace(projectName)
	if projectName == "" {
		return nil, fmt.Errorf("%w: empty project name", domain.ErrInvalidInput)
	}

	lock := s.projectLock(projectName)
	lock.Lock()
	defer lock.Unlock()

	logger.Section("Remove Document")
	logger.Debug("Project: %q, document: %q", projectName, documentName)

	project, err := s.store.Load(ctx, projectName)
	if err != nil {
		return nil, fmt.Errorf("load project %q: %w", projectName, err)
	}

	if !project.RemoveDocument(documentName) {
		return nil, fmt.Errorf("document %q in project %q: %w",
			documentName, projectName, domain.ErrNotFound)
	}
	if err := s.store.Save(ctx, project); err != nil {
		return nil, fmt.Errorf("save project %q: %w", projectName, err)
	}
	logger.Info("Removed %q: %d documents, %d chunks remain",
		documentName, len(project.Documents), len(project.Chunks))

	return &driving.RemoveResult{
		Removed:            true,
		RemainingDocuments: len(project.Documents),
		RemainingChunks:    len(project.Chunks),
	}, nil
}
