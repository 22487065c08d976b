// Package vision holds image embedding and similarity types.
package vision

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/smartshopper/internal/domain"
)

// Embedding is a unit-length vector. Two embeddings are comparable only
// when produced by the same model, which Similarity checks by dimension.
type Embedding struct {
	vec []float32
}

// NewEmbedding L2-normalizes raw and returns the embedding.
// The input slice is not modified.
func NewEmbedding(raw []float32) (Embedding, error) {
	if len(raw) == 0 {
		return Embedding{}, fmt.Errorf("embedding is empty")
	}
	var sum float64
	for _, v := range raw {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Embedding{}, fmt.Errorf("embedding contains non-finite values")
		}
		sum += f * f
	}
	if sum == 0 {
		return Embedding{}, fmt.Errorf("embedding has zero norm")
	}
	norm := math.Sqrt(sum)
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(float64(v) / norm)
	}
	return Embedding{vec: vec}, nil
}

// Dim returns the vector dimension.
func (e Embedding) Dim() int { return len(e.vec) }

// Vector returns the normalized components. Callers must not modify it.
func (e Embedding) Vector() []float32 { return e.vec }

// Similarity returns the cosine similarity of two embeddings, in [-1, 1].
func Similarity(a, b Embedding) (float64, error) {
	if a.Dim() != b.Dim() {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, a.Dim(), b.Dim())
	}
	return dot(a.vec, b.vec), nil
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	// Rounding can push identical vectors a hair past 1.
	return max(-1, min(1, s))
}

// Candidate is a product embedding eligible for ranking.
type Candidate struct {
	ID        string
	Embedding Embedding
}

// Match is a ranked candidate. Matches are computed per query and never stored.
type Match struct {
	ID    string  `json:"product_id"`
	Score float64 `json:"similarity_score"`
}
