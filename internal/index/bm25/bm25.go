// Package bm25 implements a BM25 lexical index over a fixed corpus.
package bm25

import (
	"math"
	"regexp"
	"strings"
)

// DefaultK1 is the default term-frequency saturation parameter.
const DefaultK1 = 1.5

// DefaultB is the default document-length normalisation parameter.
const DefaultB = 0.75

// tokenPattern matches word tokens, including numbers and
// apostrophe-joined forms.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// Index holds BM25 postings over a corpus. Positions in score slices
// correspond to positions in the corpus the index was built from. An
// index is immutable after construction and safe for concurrent reads.
type Index struct {
	k1 float64
	b  float64

	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	docFreqs  map[string]int
	stopwords map[string]struct{}
}

// Option configures index construction.
type Option func(*Index)

// WithK1 sets the term-frequency saturation parameter.
func WithK1(k1 float64) Option {
	return func(ix *Index) {
		if k1 > 0 {
			ix.k1 = k1
		}
	}
}

// WithB sets the length normalisation parameter, clamped to [0,1].
func WithB(b float64) Option {
	return func(ix *Index) {
		if b >= 0 && b <= 1 {
			ix.b = b
		}
	}
}

// New builds an index over the corpus. An empty corpus yields a valid
// index whose Scores always return an empty slice.
func New(corpus []string, opts ...Option) *Index {
	ix := &Index{
		k1:        DefaultK1,
		b:         DefaultB,
		docFreqs:  make(map[string]int),
		stopwords: defaultStopwords(),
	}

	for _, opt := range opts {
		opt(ix)
	}

	ix.termFreqs = make([]map[string]int, len(corpus))
	ix.docLens = make([]int, len(corpus))

	var totalLen int
	for i, text := range corpus {
		tokens := ix.Tokenize(text)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}

		ix.termFreqs[i] = tf
		ix.docLens[i] = len(tokens)
		totalLen += len(tokens)

		for term := range tf {
			ix.docFreqs[term]++
		}
	}

	if len(corpus) > 0 {
		ix.avgDocLen = float64(totalLen) / float64(len(corpus))
	}

	return ix
}

// Len returns the corpus size.
func (ix *Index) Len() int { return len(ix.termFreqs) }

// Scores computes the raw BM25 score of every corpus document against
// the query, in corpus order. Query terms absent from the corpus
// contribute nothing.
func (ix *Index) Scores(query string) []float64 {
	scores := make([]float64, len(ix.termFreqs))
	if len(ix.termFreqs) == 0 {
		return scores
	}

	n := float64(len(ix.termFreqs))
	for _, term := range ix.Tokenize(query) {
		df, ok := ix.docFreqs[term]
		if !ok {
			continue
		}

		idf := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))

		for i := range ix.termFreqs {
			freq := float64(ix.termFreqs[i][term])
			if freq == 0 {
				continue
			}

			norm := 1 - ix.b + ix.b*float64(ix.docLens[i])/ix.avgDocLen
			scores[i] += idf * freq * (ix.k1 + 1) / (freq + ix.k1*norm)
		}
	}

	return scores
}

// Tokenize lowercases the text and extracts word tokens, dropping
// stopwords.
func (ix *Index) Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, stop := ix.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else",
		"for", "to", "of", "in", "on", "at", "by", "with", "as",
		"is", "are", "was", "were", "be", "been", "being", "it",
		"this", "that", "these", "those", "from", "up", "down",
		"over", "under", "than", "so", "such", "into", "about",
		"between", "through", "during", "before", "after", "out",
		"off", "own", "same", "too", "very", "can", "will", "just",
		"should", "now",
	}

	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
