package service

import "github.com/arturoeanton/go-page-rag-ollama/internal/domain"

// fuseHits merges keyword and semantic hits into one ranked, deduplicated,
// budget-bounded list. Keyword hits are primary and keep their score order;
// semantic hits whose fragment was not already present are appended in
// similarity order. Dedup key is the fragment id. The merged list is then cut
// from the tail so the summed chunk lengths never exceed budgetChars.
//
// Pure function: same inputs always produce the same output.
func fuseHits(keyword, semantic []domain.RetrievalHit, budgetChars int) []domain.RetrievalHit {
	seen := make(map[int]struct{}, len(keyword)+len(semantic))
	merged := make([]domain.RetrievalHit, 0, len(keyword)+len(semantic))

	for _, h := range keyword {
		if _, dup := seen[h.FragmentID]; dup {
			continue
		}
		seen[h.FragmentID] = struct{}{}
		merged = append(merged, h)
	}
	for _, h := range semantic {
		if _, dup := seen[h.FragmentID]; dup {
			continue
		}
		seen[h.FragmentID] = struct{}{}
		merged = append(merged, h)
	}

	if budgetChars <= 0 {
		return merged
	}
	total := 0
	for i, h := range merged {
		total += len(h.Text)
		if total > budgetChars {
			return merged[:i]
		}
	}
	return merged
}
