// Package domain defines the core business entities for DocumInt.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested PDF identified by its content hash
//   - Chunk: A heading-aligned, page-referenced span of document text
//   - Project: A named collection of documents, chunks and index state
//   - PageBlock: A unit of externally extracted page text with layout hints
//   - Insight: The recorded, ranked result of one retrieval query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
