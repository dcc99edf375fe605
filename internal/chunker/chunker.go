// Package chunker provides a heading-aware text chunking processor.
package chunker

import (
	"regexp"
	"sort"
	"strings"

	"github.com/documint-labs/documint/internal/core/domain"
)

// DefaultHeadingRatio is the factor by which a block's font size must
// exceed the page's median body size to count as a heading.
const DefaultHeadingRatio = 1.15

// DefaultMinChunkChars is the minimum chunk length; shorter chunks are
// merged into a neighbour instead of emitted standalone.
const DefaultMinChunkChars = 40

// DefaultMaxHeadingWords is the word limit for the bold-heading rule.
const DefaultMaxHeadingWords = 12

// numberedHeading matches numbered section headings like "2.1 Scope".
var numberedHeading = regexp.MustCompile(`^\d+(\.\d+)*\s`)

// Draft is a chunk before identity assignment. The caller derives the
// ID, DocumentID and OrderIndex when attaching drafts to a document.
type Draft struct {
	// Heading is the section heading, empty for headless content.
	Heading string

	// Content is the accumulated body text.
	Content string

	// PageNumber is the 1-based page of the chunk's opening block.
	PageNumber int
}

// Chunker groups page blocks into heading-delimited chunks.
// Splitting is pure and deterministic: identical input always yields
// identical chunk boundaries.
type Chunker struct {
	headingRatio    float64
	minChunkChars   int
	maxHeadingWords int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithHeadingRatio sets the font-size ratio for heading detection.
func WithHeadingRatio(ratio float64) Option {
	return func(c *Chunker) {
		if ratio > 1 {
			c.headingRatio = ratio
		}
	}
}

// WithMinChunkChars sets the minimum emitted chunk length in characters.
func WithMinChunkChars(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.minChunkChars = n
		}
	}
}

// WithMaxHeadingWords sets the word limit for the bold-heading rule.
func WithMaxHeadingWords(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxHeadingWords = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		headingRatio:    DefaultHeadingRatio,
		minChunkChars:   DefaultMinChunkChars,
		maxHeadingWords: DefaultMaxHeadingWords,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Split groups the page-ordered blocks into heading-delimited drafts.
// Content before the first detected heading becomes a draft with an
// empty heading. A document with no detected headings at all falls back
// to one draft per page, keeping page-reference granularity usable for
// citation.
func (c *Chunker) Split(blocks []domain.PageBlock) []Draft {
	blocks = nonEmpty(blocks)
	if len(blocks) == 0 {
		return nil
	}

	medians := pageMedianFontSizes(blocks)

	var anyHeading bool
	for _, b := range blocks {
		if c.isHeading(b, medians[b.PageNumber]) {
			anyHeading = true
			break
		}
	}

	if !anyHeading {
		return c.mergeShort(perPageDrafts(blocks))
	}

	var drafts []Draft
	var current *Draft
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.Join(body, "\n")
		if current.Content != "" || current.Heading != "" {
			drafts = append(drafts, *current)
		}
		current = nil
		body = nil
	}

	for _, b := range blocks {
		if c.isHeading(b, medians[b.PageNumber]) {
			flush()
			current = &Draft{
				Heading:    strings.TrimSpace(b.Text),
				PageNumber: b.PageNumber,
			}
			continue
		}

		if current == nil {
			// Headless content before the first heading.
			current = &Draft{PageNumber: b.PageNumber}
		}
		body = append(body, strings.TrimSpace(b.Text))
	}
	flush()

	return c.mergeShort(drafts)
}

// isHeading classifies one block against the page's median body size.
func (c *Chunker) isHeading(b domain.PageBlock, median float64) bool {
	text := strings.TrimSpace(b.Text)
	if text == "" {
		return false
	}

	if median > 0 && b.FontSize > median*c.headingRatio {
		return true
	}
	if b.Bold && len(strings.Fields(text)) <= c.maxHeadingWords {
		return true
	}
	return numberedHeading.MatchString(text)
}

// mergeShort folds drafts below the minimum length into their next
// neighbour (the trailing draft merges backward) so degenerate
// fragments such as a stranded caption never surface alone.
func (c *Chunker) mergeShort(drafts []Draft) []Draft {
	if c.minChunkChars == 0 || len(drafts) < 2 {
		return drafts
	}

	var out []Draft
	var carry *Draft

	for i := range drafts {
		d := drafts[i]
		if carry != nil {
			d.Content = joinCarry(*carry, d.Content)
			d.PageNumber = carry.PageNumber
			carry = nil
		}
		if len(d.Content) >= c.minChunkChars {
			out = append(out, d)
			continue
		}
		if i < len(drafts)-1 {
			carry = &d
			continue
		}
		// Trailing short draft folds backward instead.
		if len(out) > 0 {
			last := &out[len(out)-1]
			last.Content = strings.TrimSpace(last.Content + "\n" + joinCarry(d, ""))
		} else {
			out = append(out, d)
		}
	}

	return out
}

// joinCarry prepends a short draft's heading and content to the text
// that absorbs it.
func joinCarry(short Draft, next string) string {
	parts := make([]string, 0, 3)
	if short.Heading != "" {
		parts = append(parts, short.Heading)
	}
	if short.Content != "" {
		parts = append(parts, short.Content)
	}
	if next != "" {
		parts = append(parts, next)
	}
	return strings.Join(parts, "\n")
}

// perPageDrafts is the no-headings fallback: one draft per page.
func perPageDrafts(blocks []domain.PageBlock) []Draft {
	var drafts []Draft
	var current *Draft
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.Join(body, "\n")
		drafts = append(drafts, *current)
		current = nil
		body = nil
	}

	for _, b := range blocks {
		if current != nil && b.PageNumber != current.PageNumber {
			flush()
		}
		if current == nil {
			current = &Draft{PageNumber: b.PageNumber}
		}
		body = append(body, strings.TrimSpace(b.Text))
	}
	flush()

	return drafts
}

// pageMedianFontSizes computes the median font size per page.
func pageMedianFontSizes(blocks []domain.PageBlock) map[int]float64 {
	sizes := make(map[int][]float64)
	for _, b := range blocks {
		sizes[b.PageNumber] = append(sizes[b.PageNumber], b.FontSize)
	}

	medians := make(map[int]float64, len(sizes))
	for page, s := range sizes {
		sort.Float64s(s)
		n := len(s)
		if n%2 == 1 {
			medians[page] = s[n/2]
		} else {
			medians[page] = (s[n/2-1] + s[n/2]) / 2
		}
	}
	return medians
}

// nonEmpty filters out blocks with no visible text.
func nonEmpty(blocks []domain.PageBlock) []domain.PageBlock {
	out := make([]domain.PageBlock, 0, len(blocks))
	for _, b := range blocks {
		if strings.TrimSpace(b.Text) != "" {
			out = append(out, b)
		}
	}
	return out
}
