package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIndex_Scores_RanksMatchingDocumentHigher tests that a document
// containing the query terms outscores one that does not.
func TestIndex_Scores_RanksMatchingDocumentHigher(t *testing.T) {
	ix := New([]string{
		"vegetarian recipes using seasonal mushrooms",
		"quarterly revenue report across all business units",
		"mushroom risotto cooking technique explained",
	})

	scores := ix.Scores("mushroom cooking")

	require.Len(t, scores, 3)
	assert.Greater(t, scores[2], scores[1])
	assert.Equal(t, 0.0, scores[1])
}

// TestIndex_Scores_UnknownTermsScoreZero tests that a query with no
// corpus terms yields all-zero scores rather than an error.
func TestIndex_Scores_UnknownTermsScoreZero(t *testing.T) {
	ix := New([]string{"alpha content", "beta content"})

	scores := ix.Scores("zzyzx")

	require.Len(t, scores, 2)
	for _, s := range scores {
		assert.Equal(t, 0.0, s)
	}
}

// TestIndex_Scores_EmptyCorpus tests scoring against an empty index.
func TestIndex_Scores_EmptyCorpus(t *testing.T) {
	ix := New(nil)

	assert.Empty(t, ix.Scores("anything"))
	assert.Equal(t, 0, ix.Len())
}

// TestIndex_Scores_LengthNormalisation tests that with b enabled a
// shorter document matching the term outscores a longer one with the
// same term frequency.
func TestIndex_Scores_LengthNormalisation(t *testing.T) {
	ix := New([]string{
		"glacier",
		"glacier formed slowly across millennia while sediment accumulated beneath moving ice sheets",
	})

	scores := ix.Scores("glacier")

	require.Len(t, scores, 2)
	assert.Greater(t, scores[0], scores[1])
}

// TestIndex_Scores_Deterministic tests that repeated scoring of the
// same query yields identical results.
func TestIndex_Scores_Deterministic(t *testing.T) {
	ix := New([]string{
		"travel itinerary for the southern coast",
		"budget accommodation near the old town",
	})

	assert.Equal(t, ix.Scores("coast itinerary"), ix.Scores("coast itinerary"))
}

// TestIndex_Tokenize tests lowercasing, stopword removal and
// apostrophe handling.
func TestIndex_Tokenize(t *testing.T) {
	ix := New(nil)

	tokens := ix.Tokenize("The chef's 3 favourite dishes")

	assert.Equal(t, []string{"chef's", "3", "favourite", "dishes"}, tokens)
}

// TestIndex_Options tests that invalid option values keep defaults.
func TestIndex_Options(t *testing.T) {
	ix := New([]string{"doc"}, WithK1(-1), WithB(2))

	assert.Equal(t, DefaultK1, ix.k1)
	assert.Equal(t, DefaultB, ix.b)

	tuned := New([]string{"doc"}, WithK1(1.2), WithB(0.5))
	assert.Equal(t, 1.2, tuned.k1)
	assert.Equal(t, 0.5, tuned.b)
}
