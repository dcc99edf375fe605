package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/documint-labs/documint/internal/core/domain"
	"github.com/documint-labs/documint/internal/core/ports/driven"
	"github.com/documint-labs/documint/internal/core/ports/driving"
	"github.com/documint-labs/documint/internal/index/bm25"
	"github.com/documint-labs/documint/internal/index/vector"
	"github.com/documint-labs/documint/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// retrievalIndex is the published, immutable index for one project.
// It is a cache reconstructible from the project's chunks, never the
// source of truth. Readers always see a complete index: Build prepares
// a new one aside and swaps the pointer.
type retrievalIndex struct {
	chunks   []domain.Chunk
	lexical  *bm25.Index
	vectors  map[string][]float32
	model    string
	revision int64
}

// RetrievalService builds per-project retrieval indexes and serves
// domain-weighted hybrid queries over them.
type RetrievalService struct {
	store    driven.ProjectStore
	embedder driven.EmbeddingService
	insights driven.InsightStore

	k1 float64
	b  float64

	mu      sync.RWMutex
	indexes map[string]*retrievalIndex
}

// RetrievalOption configures the retrieval service.
type RetrievalOption func(*RetrievalService)

// WithBM25Parameters overrides the lexical scoring parameters.
func WithBM25Parameters(k1, b float64) RetrievalOption {
	return func(s *RetrievalService) {
		s.k1 = k1
		s.b = b
	}
}

// NewRetrievalService creates a retrieval service. The embedder and
// insight store are optional: without an embedder, queries score
// BM25-only; without an insight store, query records are not kept.
func NewRetrievalService(
	store driven.ProjectStore,
	embedder driven.EmbeddingService,
	insights driven.InsightStore,
	opts ...RetrievalOption,
) *RetrievalService {
	s := &RetrievalService{
		store:    store,
		embedder: embedder,
		insights: insights,
		k1:       bm25.DefaultK1,
		b:        bm25.DefaultB,
		indexes:  make(map[string]*retrievalIndex),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Build rebuilds the project's retrieval index and publishes it
// atomically. Lexical postings are rebuilt over all chunks; embedding
// vectors are computed only for chunks without a cached one, and the
// fresh vectors are written back to the store so later rebuilds reuse
// them. An unreachable embedder degrades the index to BM25-only
// instead of failing the build.
func (s *RetrievalService) Build(ctx context.Context, project *domain.Project) error {
	logger.Section("Index Build")
	logger.Debug("Project: %q, chunks: %d, revision: %d",
		project.Name, len(project.Chunks), project.Revision)

	corpus := make([]string, len(project.Chunks))
	for i := range project.Chunks {
		corpus[i] = project.Chunks[i].Heading + "\n" + project.Chunks[i].Content
	}

	idx := &retrievalIndex{
		chunks:   append([]domain.Chunk(nil), project.Chunks...),
		lexical:  bm25.New(corpus, bm25.WithK1(s.k1), bm25.WithB(s.b)),
		revision: project.Revision,
	}

	if s.embedder != nil {
		if err := s.embedChunks(ctx, project, idx); err != nil {
			logger.Warn("Embedding unavailable, index degrades to BM25-only: %v", err)
			idx.vectors = nil
			idx.model = ""
		}
	} else {
		logger.Debug("No embedder configured, BM25-only index")
	}

	s.mu.Lock()
	s.indexes[project.Name] = idx
	s.mu.Unlock()

	logger.Info("Index published: %d chunks, embeddings=%t", len(idx.chunks), idx.vectors != nil)
	return nil
}

// embedChunks fills the index vector map, computing embeddings only
// for chunks that lack a cached vector for the current model, and
// persists the new vectors.
func (s *RetrievalService) embedChunks(
	ctx context.Context, project *domain.Project, idx *retrievalIndex,
) error {
	model := s.embedder.ModelName()

	// A model switch invalidates every cached vector.
	reuseCache := project.EmbeddingModel == model

	idx.vectors = make(map[string][]float32, len(idx.chunks))

	var missing []int
	for i := range idx.chunks {
		if reuseCache && idx.chunks[i].Embedding != nil {
			idx.vectors[idx.chunks[i].ID] = idx.chunks[i].Embedding
			continue
		}
		missing = append(missing, i)
	}

	logger.Debug("Embedding model %q: %d cached, %d to compute",
		model, len(idx.chunks)-len(missing), len(missing))

	if len(missing) == 0 {
		idx.model = model
		return nil
	}

	texts := make([]string, len(missing))
	for i, pos := range missing {
		texts[i] = idx.chunks[pos].Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(embeddings) != len(missing) {
		return fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingUnavailable, len(embeddings), len(missing))
	}

	fresh := make(map[string][]float32, len(missing))
	for i, pos := range missing {
		idx.chunks[pos].Embedding = embeddings[i]
		idx.vectors[idx.chunks[pos].ID] = embeddings[i]
		fresh[idx.chunks[pos].ID] = embeddings[i]
	}

	if err := s.store.UpdateEmbeddings(ctx, project.Name, fresh, model); err != nil {
		// Vectors still serve this index; only the cache write failed.
		logger.Warn("Persisting %d embeddings failed: %v", len(fresh), err)
	}
	project.EmbeddingModel = model

	idx.model = model
	return nil
}

// Stale reports whether the published index was built at an older
// project revision, or has never been built.
func (s *RetrievalService) Stale(project *domain.Project) bool {
	s.mu.RLock()
	idx, ok := s.indexes[project.Name]
	s.mu.RUnlock()

	return !ok || idx.revision != project.Revision
}

// Search runs one (persona, task) query and returns the ranked,
// diversity-constrained top-k as an Insight. A stale or missing index
// is rebuilt first. If the embedding signal is unavailable for this
// query, scoring degrades to BM25-only with the embedding score absent
// from the results.
func (s *RetrievalService) Search(
	ctx context.Context, project *domain.Project, persona, task string, k int,
) (*domain.Insight, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	if s.Stale(project) {
		logger.Debug("Index stale or missing for %q, rebuilding", project.Name)
		if err := s.Build(ctx, project); err != nil {
			return nil, fmt.Errorf("rebuild index: %w", err)
		}
	}

	s.mu.RLock()
	idx := s.indexes[project.Name]
	s.mu.RUnlock()

	queryDomain := ClassifyDomain(persona, task)
	profile := queryDomain.Profile()

	logger.Section("Search")
	logger.Debug("Project: %q, persona: %q, task: %q, k: %d", project.Name, persona, task, k)
	logger.Info("Domain: %s (bm25=%.2f, embedding=%.2f)",
		queryDomain, profile.BM25Weight, profile.EmbeddingWeight)

	if queryDomain != project.Domain {
		// The project caches its last detection. Best-effort: a failed
		// write never fails the query.
		project.Domain = queryDomain
		if err := s.store.UpdateDomain(ctx, project.Name, queryDomain); err != nil {
			logger.Warn("Recording domain %s for %q: %v", queryDomain, project.Name, err)
		}
	}

	insight := &domain.Insight{
		ID:          uuid.NewString(),
		ProjectName: project.Name,
		Persona:     persona,
		Task:        task,
		K:           k,
		Domain:      queryDomain,
		CreatedAt:   time.Now().UTC(),
	}

	if len(idx.chunks) == 0 {
		logger.Debug("Empty index, returning no results")
		return s.record(ctx, insight)
	}

	query := strings.TrimSpace(persona + " " + task)
	expanded := query
	if len(profile.ExpansionTerms) > 0 {
		expanded = query + " " + strings.Join(profile.ExpansionTerms, " ")
		logger.Debug("Expanded query: %q", expanded)
	}

	bm25Norm := minMaxNormalize(idx.lexical.Scores(expanded))
	embNorm, haveEmbedding := s.embeddingScores(ctx, idx, query)

	bm25Weight := profile.BM25Weight
	embWeight := profile.EmbeddingWeight
	if !haveEmbedding {
		// Observable fallback: callers see a nil embedding score, not zero.
		bm25Weight, embWeight = 1, 0
		logger.Info("BM25-only scoring for this query")
	}

	ranked := make([]domain.RankedChunk, len(idx.chunks))
	for i := range idx.chunks {
		rc := domain.RankedChunk{
			Chunk:     idx.chunks[i],
			BM25Score: bm25Norm[i],
		}
		if haveEmbedding {
			e := embNorm[i]
			rc.EmbeddingScore = &e
		}
		rc.HybridScore = bm25Weight*rc.BM25Score + embWeight*embNorm[i]
		ranked[i] = rc
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].HybridScore != ranked[j].HybridScore {
			return ranked[i].HybridScore > ranked[j].HybridScore
		}
		if ranked[i].Chunk.OrderIndex != ranked[j].Chunk.OrderIndex {
			return ranked[i].Chunk.OrderIndex < ranked[j].Chunk.OrderIndex
		}
		return ranked[i].Chunk.ID < ranked[j].Chunk.ID
	})

	insight.Results = selectDiverse(ranked, k)
	logger.Info("Results: %d of %d chunks", len(insight.Results), len(idx.chunks))

	return s.record(ctx, insight)
}

// embeddingScores computes normalised cosine similarities between the
// query embedding and every chunk vector, in index chunk order. The
// second return reports whether an embedding signal exists for this
// query at all.
func (s *RetrievalService) embeddingScores(
	ctx context.Context, idx *retrievalIndex, query string,
) ([]float64, bool) {
	if s.embedder == nil || len(idx.vectors) == 0 {
		return make([]float64, len(idx.chunks)), false
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		// Includes deadline expiry: degrade this query, never fail it.
		logger.Warn("Query embedding failed, falling back to BM25-only: %v", err)
		return make([]float64, len(idx.chunks)), false
	}

	raw := make([]float64, len(idx.chunks))
	for i := range idx.chunks {
		raw[i] = vector.Cosine(queryVec, idx.vectors[idx.chunks[i].ID])
	}

	return minMaxNormalize(raw), true
}

// record saves the insight when a store is configured. Recording is
// best-effort: a store failure is logged, not surfaced, so a search
// result is never lost to bookkeeping.
func (s *RetrievalService) record(ctx context.Context, insight *domain.Insight) (*domain.Insight, error) {
	if s.insights != nil {
		if err := s.insights.Save(ctx, insight); err != nil {
			logger.Warn("Recording insight %s failed: %v", insight.ID, err)
		}
	}
	return insight, nil
}

// minMaxNormalize rescales scores to [0,1] across the candidate set.
// A zero-variance series normalises to all zeros rather than dividing
// by zero.
func minMaxNormalize(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	lo, hi := scores[0], scores[0]
	for _, v := range scores[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if hi == lo {
		return out
	}

	for i, v := range scores {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// selectDiverse walks the ranked list and greedily accepts chunks that
// do not repeat an already-accepted (document, heading) pair. If the
// constraint leaves slots unfilled, it relaxes and fills from the
// remaining highest-scoring chunks, so the result always has
// min(k, total) entries. ImportanceRank is the 1-based position in the
// final accepted order.
func selectDiverse(ranked []domain.RankedChunk, k int) []domain.RankedChunk {
	if k > len(ranked) {
		k = len(ranked)
	}

	type sectionKey struct {
		documentID string
		heading    string
	}

	accepted := make([]domain.RankedChunk, 0, k)
	taken := make(map[int]struct{}, k)
	sections := make(map[sectionKey]struct{}, k)

	for i, rc := range ranked {
		if len(accepted) == k {
			break
		}
		key := sectionKey{rc.Chunk.DocumentID, rc.Chunk.Heading}
		if _, dup := sections[key]; dup {
			continue
		}
		sections[key] = struct{}{}
		taken[i] = struct{}{}
		accepted = append(accepted, rc)
	}

	// Relax the constraint to fill remaining slots.
	for i, rc := range ranked {
		if len(accepted) == k {
			break
		}
		if _, ok := taken[i]; ok {
			continue
		}
		taken[i] = struct{}{}
		accepted = append(accepted, rc)
	}

	for i := range accepted {
		accepted[i].ImportanceRank = i + 1
	}

	return accepted
}
