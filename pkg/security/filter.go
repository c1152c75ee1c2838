// Package security screens pipeline text for sensitive topics. The
// filter runs twice per query: on the raw question before any processing
// and on the synthesized answer before it leaves the pipeline.
package security

import (
	"strings"

	"github.com/happyculture/soco-concierge/pkg/types"
)

// Evaluator classifies a piece of text as allowed or blocked. It must be
// deterministic, total, and free of side effects. The interface keeps
// the matcher swappable for regex or embedding based filtering later.
type Evaluator interface {
	Evaluate(text string) types.SecurityVerdict
}

// DefaultDenylist carries the terms the hotel assistant must never
// discuss: credentials, internal configuration, and their French
// equivalents.
var DefaultDenylist = []string{
	"mongodb_uri",
	"api_key",
	"openrouter",
	"environment variable",
	"secret",
	"password",
	"credential",
	"variable d'environnement",
	"mot de passe",
}

// KeywordFilter is a denylist matcher using case-insensitive substring
// matching against configured terms.
type KeywordFilter struct {
	terms []string
}

// NewKeywordFilter creates a filter over the given denylist terms. Terms
// are case-normalized once at construction; empty terms are dropped. A
// nil or empty list falls back to DefaultDenylist.
func NewKeywordFilter(terms []string) *KeywordFilter {
	if len(terms) == 0 {
		terms = DefaultDenylist
	}

	normalized := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			normalized = append(normalized, term)
		}
	}
	return &KeywordFilter{terms: normalized}
}

// Evaluate returns a blocked verdict when the text contains any
// denylisted term, naming the first match as the reason.
func (f *KeywordFilter) Evaluate(text string) types.SecurityVerdict {
	lowered := strings.ToLower(text)
	for _, term := range f.terms {
		if strings.Contains(lowered, term) {
			return types.SecurityVerdict{Blocked: true, Reason: term}
		}
	}
	return types.SecurityVerdict{}
}
