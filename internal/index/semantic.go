package index

import (
	"math"
	"sort"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
)

// SemanticIndex holds one embedding vector per fragment of a single context.
// Vectors are produced once at ingest and never recomputed (fragments are
// immutable). A nil SemanticIndex means the context is keyword-only.
type SemanticIndex struct {
	fragments []domain.Fragment
	vectors   [][]float32
}

// minSimilarity is the cosine floor below which a fragment is considered
// unrelated to the question and excluded from the results.
const minSimilarity = 0.30

// NewSemanticIndex pairs a context's fragments with their embedding vectors.
// len(vectors) must equal len(fragments).
func NewSemanticIndex(fragments []domain.Fragment, vectors [][]float32) *SemanticIndex {
	return &SemanticIndex{fragments: fragments, vectors: vectors}
}

// Query computes cosine similarity of the query vector against every fragment
// vector and returns the top-k hits above the similarity floor in descending
// order, ties broken by ingest position.
func (idx *SemanticIndex) Query(queryVector []float32, k int) []domain.RetrievalHit {
	if idx == nil || len(idx.vectors) == 0 {
		return nil
	}

	hits := make([]domain.RetrievalHit, 0, len(idx.vectors))
	for i, vec := range idx.vectors {
		sim := cosineSimilarity(queryVector, vec)
		if sim < minSimilarity {
			continue
		}
		hits = append(hits, domain.RetrievalHit{
			FragmentID: idx.fragments[i].ID,
			Text:       idx.fragments[i].Text,
			Score:      sim,
			Source:     domain.HitSourceSemantic,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].FragmentID < hits[j].FragmentID
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// cosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either vector is zero or the dimensions disagree.
func cosineSimilarity(a, b []float32) float64 {
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
