package domain

import "time"

// FragmentKind classifies an extracted unit of page text.
type FragmentKind string

// Fragment kinds as reported by the content extraction client.
const (
	KindTitle             FragmentKind = "title"
	KindMeta              FragmentKind = "meta"
	KindHeading           FragmentKind = "heading"
	KindStructuredSection FragmentKind = "structured-section"
	KindParagraph         FragmentKind = "paragraph"
	KindProduct           FragmentKind = "product"
	KindBody              FragmentKind = "body"
)

// Context status values.
const (
	ContextStatusIndexed     = "indexed"      // keyword + semantic indexes built
	ContextStatusKeywordOnly = "keyword_only" // embedding provider was unreachable at ingest
)

// Fragment is one extracted unit of page text. Fragments are immutable once
// stored; the ID is the fragment's ingest position within its context.
type Fragment struct {
	ID     int          `json:"id"`
	Kind   FragmentKind `json:"kind"`
	Text   string       `json:"text"`
	Tokens int          `json:"tokens"` // rough token estimate, derived at ingest
}

// Context is one page-scoped retrieval session. It owns its fragments and is
// never merged with another context.
type Context struct {
	ID        string     `json:"context_id"`
	URL       string     `json:"url"`
	Status    string     `json:"status"`
	Fragments []Fragment `json:"fragments"`
	CreatedAt time.Time  `json:"created_at"`
}

// EstimateTokens approximates the token count of a text (~4 chars per token).
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
