package driven

import (
	"context"

	"github.com/documint-labs/documint/internal/core/domain"
)

// Extraction is the result of running the external layout extractor
// over one document.
type Extraction struct {
	// Blocks are page-ordered, top-to-bottom text blocks with layout hints.
	Blocks []domain.PageBlock

	// PageCount is the total number of pages in the document.
	PageCount int
}

// LayoutExtractor turns raw document bytes into ordered page blocks.
// The PDF parsing itself happens outside this core; adapters wrap
// whatever produced the layout (pre-extracted JSON, a sidecar tool).
type LayoutExtractor interface {
	// Extract produces the page blocks for one document.
	// A malformed or empty document returns an error wrapping
	// domain.ErrExtractionFailed; the caller skips that document and
	// continues with the rest of the batch.
	Extract(ctx context.Context, name string, data []byte) (*Extraction, error)
}
