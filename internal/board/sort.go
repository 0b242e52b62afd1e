package board

import (
	"math"
	"sort"
	"strings"

	"github.com/starford/tavla/internal/models"
)

// SortCards returns a new slice ordered for display: priority descending,
// then type urgency (emergency, bug, everything else), then title
// case-insensitively ascending. The sort is stable, so cards that tie on
// all three keys keep their relative input order. The input slice is
// never modified; persistence order stays whatever the mutation engine
// produced.
func SortCards(cards []models.Card) []models.Card {
	out := append([]models.Card(nil), cards...)
	sort.SliceStable(out, func(i, j int) bool {
		return cardLess(out[i], out[j])
	})
	return out
}

func cardLess(a, b models.Card) bool {
	ap, bp := sortPrio(a), sortPrio(b)
	if ap != bp {
		return ap > bp
	}
	ar, br := typeRank(a.Type), typeRank(b.Type)
	if ar != br {
		return ar < br
	}
	return sortTitle(a) < sortTitle(b)
}

// sortPrio treats a missing or NaN priority as 0.
func sortPrio(c models.Card) float64 {
	if c.Prio == nil || math.IsNaN(*c.Prio) {
		return 0
	}
	return *c.Prio
}

// typeRank maps card types to urgency ranks: emergencies first, bugs and
// issues second, plain notes and tasks last.
func typeRank(typ string) int {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case models.TypeEmergency:
		return 0
	case models.TypeBug, "issue":
		return 1
	}
	return 2
}

func sortTitle(c models.Card) string {
	return strings.ToLower(strings.TrimSpace(c.Title))
}
