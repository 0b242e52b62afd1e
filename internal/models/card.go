// Package models defines the board document types for Tavla.
package models

import "encoding/json"

// GroupKey identifies one of the four fixed board lanes.
type GroupKey string

// The set of lanes is closed: a board document has exactly these four keys.
const (
	GroupTodo       GroupKey = "todo"
	GroupInProgress GroupKey = "in-progress"
	GroupTesting    GroupKey = "testing"
	GroupDone       GroupKey = "done"
)

// Groups lists the lanes in canonical display order.
var Groups = []GroupKey{GroupTodo, GroupInProgress, GroupTesting, GroupDone}

// ValidGroup reports whether key names one of the four lanes.
func ValidGroup(key GroupKey) bool {
	for _, g := range Groups {
		if g == key {
			return true
		}
	}
	return false
}

// Card types. Everything outside this set is treated as a plain note/task.
const (
	TypeNote      = ""
	TypeBug       = "bug"
	TypeEmergency = "emergency"
)

// Person is the assignee of a card.
type Person struct {
	Name string `json:"name"`
}

// Content is a text block with an explicit mime type.
type Content struct {
	Content string `json:"content"`
	Mime    string `json:"mime"`
}

// MimeMarkdown is the mime type of every content block the service writes.
const MimeMarkdown = "text/markdown"

// UnmarshalJSON accepts either the canonical {content, mime} object or a
// bare string (hand-edited board files use both shapes).
func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Content = s
		c.Mime = MimeMarkdown
		return nil
	}
	type content Content
	var v content
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Content(v)
	return nil
}

// Card is a single kanban work item.
type Card struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Type         string   `json:"type,omitempty"`
	Prio         *float64 `json:"prio,omitempty"`
	Category     string   `json:"category,omitempty"`
	AssignedTo   *Person  `json:"assignedTo,omitempty"`
	Description  *Content `json:"description,omitempty"`
	Details      *Content `json:"details,omitempty"`
	References   []string `json:"references,omitempty"`
	Tag          string   `json:"tag,omitempty"`
	CreationTime string   `json:"creation_time"`
}

// Clone returns a copy of the card with its own references slice.
func (c Card) Clone() Card {
	out := c
	if c.Prio != nil {
		p := *c.Prio
		out.Prio = &p
	}
	if c.AssignedTo != nil {
		a := *c.AssignedTo
		out.AssignedTo = &a
	}
	if c.Description != nil {
		d := *c.Description
		out.Description = &d
	}
	if c.Details != nil {
		d := *c.Details
		out.Details = &d
	}
	if c.References != nil {
		out.References = append([]string(nil), c.References...)
	}
	return out
}

// Board is the full persisted document: four ordered card groups.
// Field order matches the canonical on-disk key order.
type Board struct {
	Todo       []Card `json:"todo"`
	InProgress []Card `json:"in-progress"`
	Testing    []Card `json:"testing"`
	Done       []Card `json:"done"`
}

// NewBoard returns an empty board with all four groups present.
func NewBoard() Board {
	return Board{
		Todo:       []Card{},
		InProgress: []Card{},
		Testing:    []Card{},
		Done:       []Card{},
	}
}

// Group returns the card sequence of the given lane. Unknown keys yield nil.
func (b Board) Group(key GroupKey) []Card {
	switch key {
	case GroupTodo:
		return b.Todo
	case GroupInProgress:
		return b.InProgress
	case GroupTesting:
		return b.Testing
	case GroupDone:
		return b.Done
	}
	return nil
}

// SetGroup replaces the card sequence of the given lane in place.
// Unknown keys are ignored.
func (b *Board) SetGroup(key GroupKey, cards []Card) {
	switch key {
	case GroupTodo:
		b.Todo = cards
	case GroupInProgress:
		b.InProgress = cards
	case GroupTesting:
		b.Testing = cards
	case GroupDone:
		b.Done = cards
	}
}

// Clone returns a board whose group slices are independent copies.
// Cards themselves are copied shallowly; mutation code clones individual
// cards before changing them.
func (b Board) Clone() Board {
	out := Board{}
	for _, g := range Groups {
		out.SetGroup(g, append([]Card{}, b.Group(g)...))
	}
	return out
}

// Normalize ensures every group slice is non-nil so the document always
// round-trips with all four keys present.
func (b *Board) Normalize() {
	for _, g := range Groups {
		if b.Group(g) == nil {
			b.SetGroup(g, []Card{})
		}
	}
}

// AllCards returns every card flattened in group order. This order is the
// identity space of the move protocol: a card's position in this list is
// its global index.
func (b Board) AllCards() []Card {
	var out []Card
	for _, g := range Groups {
		out = append(out, b.Group(g)...)
	}
	return out
}

// CardCount returns the total number of cards on the board.
func (b Board) CardCount() int {
	n := 0
	for _, g := range Groups {
		n += len(b.Group(g))
	}
	return n
}

// FindCard returns the group and index of the card with the given id,
// or ("", -1) if no group holds it.
func (b Board) FindCard(id string) (GroupKey, int) {
	for _, g := range Groups {
		for i, c := range b.Group(g) {
			if c.ID == id {
				return g, i
			}
		}
	}
	return "", -1
}
