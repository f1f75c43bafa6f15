package index

import (
	"strings"
	"unicode"
)

// stopwords are excluded from both indexing and queries. The per-context
// corpus is tiny, so common function words carry no signal and only inflate
// fragment frequencies.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "can": {}, "do": {}, "does": {}, "for": {}, "from": {},
	"had": {}, "has": {}, "have": {}, "he": {}, "her": {}, "his": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "is": {}, "it": {}, "its": {}, "me": {},
	"my": {}, "no": {}, "not": {}, "of": {}, "on": {}, "or": {}, "our": {},
	"she": {}, "so": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "to": {},
	"was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "who": {}, "will": {}, "with": {}, "you": {}, "your": {},
}

// Tokenize normalizes text into index terms: lowercase, split on anything
// that is not a letter or digit, drop stopwords and single-character tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, stem(f))
	}
	return tokens
}

// stem strips common plural suffixes so "returns" matches "return" and
// "policies" matches "policy". Deliberately lighter than a full stemmer: the
// corpus is one page, and over-stemming hurts precision more than it helps
// recall.
func stem(token string) string {
	switch {
	case len(token) > 4 && strings.HasSuffix(token, "ies"):
		return token[:len(token)-3] + "y"
	case len(token) > 3 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") &&
		!strings.HasSuffix(token, "us") && !strings.HasSuffix(token, "is"):
		return token[:len(token)-1]
	default:
		return token
	}
}

// uniqueTerms returns the distinct terms of a token stream, preserving first
// occurrence order. Query scoring uses OR semantics across distinct terms.
func uniqueTerms(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}
