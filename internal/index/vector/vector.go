// Package vector provides similarity math over embedding vectors.
package vector

import "math"

// Cosine returns the cosine similarity of two vectors. Mismatched
// lengths or a zero-magnitude vector yield 0, matching the "no signal"
// semantics the retriever expects for unusable embeddings.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
