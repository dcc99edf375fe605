// Package layoutjson decodes pre-extracted PDF layout JSON into page
// blocks. The PDF parsing itself happens outside this tool; a sidecar
// extractor emits one JSON document per PDF with per-block font and
// position metadata, and this adapter turns that into the block
// sequence the chunker consumes.
package layoutjson

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/documint-labs/documint/internal/core/domain"
	"github.com/documint-labs/documint/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.LayoutExtractor = (*Extractor)(nil)

// layoutBlock is the wire form of one text block.
type layoutBlock struct {
	PageNumber int     `json:"page_number"`
	Text       string  `json:"text"`
	FontSize   float64 `json:"font_size"`
	IsBold     bool    `json:"is_bold"`
	YPosition  float64 `json:"y_position"`
}

// layoutDocument is the wire form of one extracted document.
type layoutDocument struct {
	PageCount int           `json:"page_count"`
	Blocks    []layoutBlock `json:"blocks"`
}

// Extractor reads layout JSON produced by the external extraction step.
type Extractor struct{}

// New creates a layout JSON extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract decodes the layout JSON and returns page-ordered blocks.
// Blocks are re-sorted by page then vertical position, so a sloppy
// producer still yields a top-to-bottom reading order.
func (e *Extractor) Extract(_ context.Context, name string, data []byte) (*driven.Extraction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrExtractionFailed, name)
	}

	var doc layoutDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", domain.ErrExtractionFailed, name, err)
	}
	if len(doc.Blocks) == 0 {
		return nil, fmt.Errorf("%w: %s has no text blocks", domain.ErrExtractionFailed, name)
	}

	blocks := make([]domain.PageBlock, len(doc.Blocks))
	for i, b := range doc.Blocks {
		if b.PageNumber < 1 {
			return nil, fmt.Errorf("%w: %s block %d has page number %d",
				domain.ErrExtractionFailed, name, i, b.PageNumber)
		}
		blocks[i] = domain.PageBlock{
			PageNumber: b.PageNumber,
			Text:       b.Text,
			FontSize:   b.FontSize,
			Bold:       b.IsBold,
			YPosition:  b.YPosition,
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].PageNumber != blocks[j].PageNumber {
			return blocks[i].PageNumber < blocks[j].PageNumber
		}
		return blocks[i].YPosition < blocks[j].YPosition
	})

	pageCount := doc.PageCount
	if pageCount == 0 {
		for _, b := range blocks {
			if b.PageNumber > pageCount {
				pageCount = b.PageNumber
			}
		}
	}

	return &driven.Extraction{Blocks: blocks, PageCount: pageCount}, nil
}
