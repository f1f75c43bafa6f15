// Package index holds the two per-context retrieval indexes: an inverted
// full-text index for exact keyword matching and a vector store for semantic
// similarity. Both are built once at ingest and are read-only afterwards, so
// concurrent queries need no locking.
package index

import (
	"math"
	"sort"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
)

// posting records one fragment's occurrence data for a term.
type posting struct {
	fragmentID int
	frequency  int
	positions  []int
}

// KeywordIndex is a per-context inverted index over fragment text. It is
// never shared across contexts.
type KeywordIndex struct {
	postings  map[string][]posting
	fragments []domain.Fragment
}

// NewKeywordIndex builds the inverted index for a context's fragments.
func NewKeywordIndex(fragments []domain.Fragment) *KeywordIndex {
	idx := &KeywordIndex{
		postings:  make(map[string][]posting),
		fragments: fragments,
	}

	for _, frag := range fragments {
		freqs := make(map[string]*posting)
		for pos, term := range Tokenize(frag.Text) {
			p, ok := freqs[term]
			if !ok {
				p = &posting{fragmentID: frag.ID}
				freqs[term] = p
			}
			p.frequency++
			p.positions = append(p.positions, pos)
		}
		for term, p := range freqs {
			idx.postings[term] = append(idx.postings[term], *p)
		}
	}
	return idx
}

// Empty reports whether indexing produced no searchable terms at all, e.g.
// for fragments made entirely of stopwords or punctuation.
func (idx *KeywordIndex) Empty() bool {
	return len(idx.postings) == 0
}

// Query scores fragments against the query text and returns hits in
// descending score order, ties broken by ingest position (earlier fragment
// wins). Terms combine with OR semantics for recall: any matching term
// contributes. Scoring is term frequency weighted by inverse fragment
// frequency within the context.
func (idx *KeywordIndex) Query(text string, k int) []domain.RetrievalHit {
	terms := uniqueTerms(Tokenize(text))
	if len(terms) == 0 {
		return nil
	}

	n := float64(len(idx.fragments))
	scores := make(map[int]float64)
	for _, term := range terms {
		plist, ok := idx.postings[term]
		if !ok {
			continue
		}
		idf := math.Log(1+n/float64(len(plist))) + 1
		for _, p := range plist {
			tf := 1 + math.Log(float64(p.frequency))
			scores[p.fragmentID] += tf * idf
		}
	}
	if len(scores) == 0 {
		return nil
	}

	hits := make([]domain.RetrievalHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, domain.RetrievalHit{
			FragmentID: id,
			Text:       idx.fragments[id].Text,
			Score:      score,
			Source:     domain.HitSourceKeyword,
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
