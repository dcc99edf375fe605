package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Document represents one ingested PDF within a project.
// It is immutable once created: the ID is the SHA-256 hash of the raw
// file bytes, so a document with an existing hash is never re-ingested.
type Document struct {
	// ID is the lowercase hex SHA-256 of the file content.
	ID string

	// Name is the original file name (e.g., "menu.pdf").
	Name string

	// ByteSize is the size of the original file in bytes.
	ByteSize int64

	// PageCount is the number of pages reported by the extractor.
	PageCount int

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time
}

// Chunk is a heading-aligned span of document content and the unit of
// retrieval. Chunks are created during chunking, never mutated, and
// removed only when their owning document is removed.
type Chunk struct {
	// ID is deterministic: the SHA-256 of documentID + ordinal.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Heading is the section heading, empty for headless leading content.
	Heading string

	// Content is the chunk text.
	Content string

	// PageNumber is the 1-based page the chunk starts on.
	PageNumber int

	// OrderIndex is the ordinal position within the document. It is the
	// stable tie-break for equal scores and part of the diversity check.
	OrderIndex int

	// Embedding is the cached vector representation. Nil until the
	// embedding collaborator has produced one; cached indefinitely since
	// embeddings are deterministic per model+text.
	Embedding []float32
}

// HashBytes returns the content hash used as a Document ID.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ChunkID derives the deterministic chunk identifier from the owning
// document and the chunk's ordinal within it.
func ChunkID(documentID string, ordinal int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s||%d", documentID, ordinal))
	return hex.EncodeToString(sum[:])
}
