// Package board implements the card ordering engine and the board
// mutation engine: every operation takes a board document and yields a
// fresh one, keeping each card id owned by exactly one group.
package board

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/starford/tavla/internal/apperr"
	"github.com/starford/tavla/internal/models"
)

// MoveCard transfers a card between lanes. The card is identified by its
// position in the flattened, group-ordered card list (the drag protocol's
// identity space), not by its position within a lane. A move whose source
// and destination coincide, or whose index or lanes cannot be resolved,
// returns the board unchanged.
func MoveCard(b models.Board, globalIndex int, from, to models.GroupKey) models.Board {
	if from == to {
		return b.Clone()
	}
	if !models.ValidGroup(from) || !models.ValidGroup(to) {
		return b.Clone()
	}
	all := b.AllCards()
	if globalIndex < 0 || globalIndex >= len(all) {
		return b.Clone()
	}
	card := all[globalIndex]

	out := models.NewBoard()
	for _, g := range models.Groups {
		kept := make([]models.Card, 0, len(b.Group(g)))
		for _, c := range b.Group(g) {
			// Drop the card from every lane, not just the source.
			// A duplicated id in a hand-edited file collapses back
			// to single ownership here.
			if c.ID == card.ID {
				continue
			}
			kept = append(kept, c)
		}
		out.SetGroup(g, kept)
	}
	out.SetGroup(to, append(out.Group(to), card))
	return out
}

// CreateCard validates the form, builds a new card with a fresh id and
// creation timestamp, and appends it to the given lane.
func CreateCard(b models.Board, group models.GroupKey, form CardForm, now time.Time) (models.Board, models.Card, error) {
	if !models.ValidGroup(group) {
		return b, models.Card{}, fmt.Errorf("%w: unknown group %q", apperr.ErrValidation, group)
	}
	if err := form.Validate(); err != nil {
		return b, models.Card{}, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}

	card := buildCard(form)
	card.ID = NextCardID(b)
	card.CreationTime = now.UTC().Format(time.RFC3339)

	out := b.Clone()
	out.SetGroup(group, append(out.Group(group), card))
	return out, card, nil
}

// EditCard validates the form and overwrites every field of the
// identified card except its id and creation time. The card keeps its
// lane and position.
func EditCard(b models.Board, id string, form CardForm) (models.Board, models.Card, error) {
	if err := form.Validate(); err != nil {
		return b, models.Card{}, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	group, idx := b.FindCard(id)
	if idx < 0 {
		return b, models.Card{}, fmt.Errorf("%w: card %q", apperr.ErrNotFound, id)
	}
	prev := b.Group(group)[idx]

	card := buildCard(form)
	card.ID = prev.ID
	card.CreationTime = prev.CreationTime

	out := b.Clone()
	out.Group(group)[idx] = card
	return out, card, nil
}

// DeleteCard removes the card from whichever lane holds it and prunes
// its id from every other card's references list. Deleting an unknown id
// leaves the board unchanged.
func DeleteCard(b models.Board, id string) models.Board {
	if _, idx := b.FindCard(id); idx < 0 {
		return b.Clone()
	}
	out := models.NewBoard()
	for _, g := range models.Groups {
		kept := make([]models.Card, 0, len(b.Group(g)))
		for _, c := range b.Group(g) {
			if c.ID == id {
				continue
			}
			kept = append(kept, pruneReference(c, id))
		}
		out.SetGroup(g, kept)
	}
	return out
}

// pruneReference returns the card without the given id in its references.
// The card is only cloned when something actually changes.
func pruneReference(c models.Card, id string) models.Card {
	found := false
	for _, ref := range c.References {
		if ref == id {
			found = true
			break
		}
	}
	if !found {
		return c
	}
	out := c.Clone()
	refs := out.References[:0]
	for _, ref := range out.References {
		if ref != id {
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		out.References = nil
	} else {
		out.References = refs
	}
	return out
}

// buildCard maps validated form fields onto a card. Blank optional
// fields become absent rather than empty values, matching the canonical
// document shape.
func buildCard(form CardForm) models.Card {
	card := models.Card{
		Title: strings.TrimSpace(form.Title),
		Type:  strings.ToLower(strings.TrimSpace(form.Type)),
	}
	if prio := strings.TrimSpace(form.Prio); prio != "" {
		if v, err := strconv.ParseFloat(prio, 64); err == nil {
			card.Prio = &v
		}
	}
	if category := strings.TrimSpace(form.Category); category != "" {
		card.Category = category
	}
	if name := strings.TrimSpace(form.AssignedTo); name != "" {
		card.AssignedTo = &models.Person{Name: name}
	}
	if desc := strings.TrimSpace(form.Description); desc != "" {
		card.Description = &models.Content{Content: desc, Mime: models.MimeMarkdown}
	}
	if details := strings.TrimSpace(form.Details); details != "" {
		card.Details = &models.Content{Content: details, Mime: models.MimeMarkdown}
	}
	if len(form.References) > 0 {
		seen := make(map[string]struct{}, len(form.References))
		var refs []string
		for _, ref := range form.References {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
		card.References = refs
	}
	return card
}
