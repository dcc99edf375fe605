package domain

import "time"

// RankedChunk is one entry in a retrieval result.
type RankedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// BM25Score is the min-max normalised lexical score in [0,1].
	BM25Score float64

	// EmbeddingScore is the normalised cosine-similarity score.
	// Nil means no embedding signal was available for this query
	// (BM25-only mode or embedding fallback), which is distinct from a
	// zero similarity.
	EmbeddingScore *float64

	// HybridScore is the weighted fusion of the two normalised scores.
	HybridScore float64

	// ImportanceRank is the 1-based position in the final accepted
	// order after diversity selection.
	ImportanceRank int
}

// Insight records the ranked result of one retrieval query. It is
// created per query and read-only afterwards; the analysis or script an
// external consumer attaches to it is outside this core.
type Insight struct {
	// ID identifies the query (UUID assigned by the retriever).
	ID string

	// ProjectName is the project the query ran against.
	ProjectName string

	// Persona and Task form the query pair.
	Persona string
	Task    string

	// K is the requested result count.
	K int

	// Domain is the classification the query was scored under.
	Domain Domain

	// Results are ordered by ImportanceRank ascending.
	Results []RankedChunk

	// CreatedAt is when the query ran.
	CreatedAt time.Time
}
