package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested project or document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as an
	// empty project name or a non-positive result count.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionFailed indicates the external layout extractor
	// returned malformed or empty input for a document. The document is
	// skipped; ingestion of the remaining batch continues.
	ErrExtractionFailed = errors.New("layout extraction failed")

	// ErrEmbeddingUnavailable indicates the embedding collaborator is
	// unreachable or errored. Retrieval degrades to BM25-only scoring;
	// this never fails a search outright.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexStale indicates a retrieval index no longer matches its
	// project. Advisory: callers decide whether to rebuild before serving.
	ErrIndexStale = errors.New("retrieval index is stale")
)
