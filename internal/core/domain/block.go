package domain

// PageBlock is one unit of externally extracted page text, tagged with
// the layout hints the chunker needs to spot headings. Blocks arrive
// page-ordered and top-to-bottom within a page; the chunker trusts that
// ordering.
type PageBlock struct {
	// PageNumber is 1-based.
	PageNumber int

	// Text is the block's text content.
	Text string

	// FontSize is the dominant font size of the block in points.
	FontSize float64

	// Bold reports whether the block is rendered in a bold weight.
	Bold bool

	// YPosition is the vertical offset from the top of the page.
	YPosition float64
}
