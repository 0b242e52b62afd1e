// Package filter implements the dual-mode card filter: a compiled
// boolean expression language and the default free-text string search.
// Both modes evaluate against the projected field set, never against the
// raw card shape.
package filter

import (
	"math"
	"strings"
	"time"

	"github.com/starford/tavla/internal/models"
)

// Projector derives the normalized, typed field set a card exposes to
// the filter modes. The evaluation time is captured once at construction
// so every card in one filter pass sees the same "current time".
type Projector struct {
	now time.Time
}

// NewProjector creates a projector with a fixed evaluation time.
func NewProjector(now time.Time) *Projector {
	return &Projector{now: now}
}

// fieldNames is the closed set of identifiers an expression may
// reference. The compiler rejects anything outside it.
var fieldNames = map[string]struct{}{
	"assigned_to":  {},
	"cat":          {},
	"category":     {},
	"description":  {},
	"details":      {},
	"id":           {},
	"is_bug":       {},
	"is_emerg":     {},
	"is_emergency": {},
	"is_issue":     {},
	"is_note":      {},
	"is_task":      {},
	"no":           {},
	"now":          {},
	"prio":         {},
	"priority":     {},
	"tag":          {},
	"time":         {},
	"title":        {},
	"type":         {},
	"utc":          {},
	"yes":          {},
}

// Project returns the card's projected fields. Derivation is total:
// anything that cannot be derived degrades to "", nil, or false.
func (p *Projector) Project(c models.Card) map[string]any {
	typ := strings.ToLower(strings.TrimSpace(c.Type))

	isBug := typ == models.TypeBug || typ == "issue"
	isNote := typ == models.TypeNote || typ == "note" || typ == "task"
	isEmergency := typ == models.TypeEmergency

	prio := prioValue(c)

	return map[string]any{
		"assigned_to":  assigneeName(c),
		"cat":          c.Category,
		"category":     c.Category,
		"description":  contentText(c.Description),
		"details":      contentText(c.Details),
		"id":           c.ID,
		"is_bug":       isBug,
		"is_emerg":     isEmergency,
		"is_emergency": isEmergency,
		"is_issue":     isBug,
		"is_note":      isNote,
		"is_task":      isNote,
		"no":           false,
		"now":          float64(p.now.Unix()),
		"prio":         prio,
		"priority":     prio,
		"tag":          c.Tag,
		"time":         timeValue(c.CreationTime),
		"title":        c.Title,
		"type":         typ,
		"utc":          float64(p.now.UTC().Unix()),
		"yes":          true,
	}
}

func assigneeName(c models.Card) string {
	if c.AssignedTo == nil {
		return ""
	}
	return c.AssignedTo.Name
}

func contentText(c *models.Content) string {
	if c == nil {
		return ""
	}
	return c.Content
}

// prioValue returns the card priority as float64, or nil when absent or
// not a number. The sort engine treats that case as 0; the filter keeps
// the distinction so expressions can tell "no priority" from "priority 0".
func prioValue(c models.Card) any {
	if c.Prio == nil || math.IsNaN(*c.Prio) {
		return nil
	}
	return *c.Prio
}

// creationTimeLayouts are tried in order; all are interpreted as UTC
// when the value carries no zone of its own.
var creationTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeValue parses an ISO-8601-ish creation timestamp into a numeric
// epoch value, or nil when absent or unparsable.
func timeValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range creationTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return float64(t.Unix())
		}
	}
	return nil
}
