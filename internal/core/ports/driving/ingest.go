package driving

import (
	"context"

	"github.com/documint-labs/documint/internal/core/domain"
)

// IngestFile is one raw document handed to the ingest pipeline.
type IngestFile struct {
	// Name is the original file name.
	Name string

	// Data is the raw file content. Its hash is the dedup key.
	Data []byte
}

// IngestFailure reports one document that could not be processed.
// A failed document never aborts the rest of the batch.
type IngestFailure struct {
	// Name is the file that failed.
	Name string

	// Err is the underlying cause, wrapping domain.ErrExtractionFailed
	// for extractor problems.
	Err error
}

// IngestResult summarises one ingest call.
type IngestResult struct {
	// Added lists the documents that were genuinely new.
	Added []domain.Document

	// SkippedDuplicates lists file names whose content hash already
	// existed in the project. Duplicates are informational, not errors.
	SkippedDuplicates []string

	// Failed lists per-document processing failures.
	Failed []IngestFailure

	// ChunkCount is the project's total chunk count after the call.
	ChunkCount int
}

// RemoveResult summarises one document removal.
type RemoveResult struct {
	// Removed reports whether a document was deleted.
	Removed bool

	// RemainingDocuments is the document count after removal.
	RemainingDocuments int

	// RemainingChunks is the chunk count after removal.
	RemainingChunks int
}

// IngestService manages a project's document set. Structural mutations
// on the same project are serialised; different projects proceed
// independently.
type IngestService interface {
	// Ingest adds new documents to the named project, creating it on
	// first use. Documents whose content hash is already present are
	// skipped and reported. Re-ingesting identical files is a
	// successful no-op.
	Ingest(ctx context.Context, projectName string, files []IngestFile) (*IngestResult, error)

	// RemoveDocument deletes the named document and all its chunks.
	// An unknown project or document yields domain.ErrNotFound.
	// Removing the last document leaves a valid empty project so a
	// later ingest can resume it.
	RemoveDocument(ctx context.Context, projectName, documentName string) (*RemoveResult, error)
}
