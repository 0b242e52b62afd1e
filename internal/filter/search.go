package filter

import (
	"strings"
	"time"

	"github.com/starford/tavla/internal/models"
)

// maxSearchTokens caps how many terms one string search can carry;
// extra tokens are ignored.
const maxSearchTokens = 10

// searchFields are the projected fields the string-search mode scans.
var searchFields = []string{
	"assigned_to",
	"category",
	"title",
	"description",
	"details",
	"id",
	"type",
}

// SearchPredicate builds the default free-text filter. The raw string is
// split on whitespace; tokens are lower-cased, trimmed, deduplicated and
// capped. Every retained token must appear as a substring of at least
// one non-empty searchable field. A filter with no tokens matches every
// card.
func SearchPredicate(raw string) Predicate {
	return SearchPredicateAt(raw, time.Now())
}

// SearchPredicateAt is SearchPredicate with an explicit evaluation time.
func SearchPredicateAt(raw string, now time.Time) Predicate {
	tokens := searchTokens(raw)
	if len(tokens) == 0 {
		return MatchAll
	}
	proj := NewProjector(now)
	return func(c models.Card) bool {
		fields := proj.Project(c)
		values := make([]string, 0, len(searchFields))
		for _, name := range searchFields {
			s, _ := fields[name].(string)
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				values = append(values, s)
			}
		}
		for _, tok := range tokens {
			found := false
			for _, v := range values {
				if strings.Contains(v, tok) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
}

func searchTokens(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Fields(raw) {
		tok := strings.ToLower(strings.TrimSpace(part))
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if len(out) == maxSearchTokens {
			break
		}
	}
	return out
}
