package api

import (
	"github.com/starford/tavla/internal/board"
	"github.com/starford/tavla/internal/boardservice"
	"github.com/starford/tavla/internal/index"
)

// CardForm is the request body for creating or editing a card (aliased
// from the domain layer).
type CardForm = board.CardForm

// CreateCardRequest is the request body for adding a card to a lane.
type CreateCardRequest struct {
	Group string   `json:"group" example:"todo" validate:"required"`
	Card  CardForm `json:"card" validate:"required"`
}

// MoveRequest describes a drag-and-drop move. Index addresses the card
// by its position in the flattened, lane-ordered card list.
type MoveRequest struct {
	Index int    `json:"index" example:"3" validate:"required"`
	From  string `json:"from" example:"todo" validate:"required"`
	To    string `json:"to" example:"done" validate:"required"`
}

// FilterCheckRequest is the request body for validating a filter
// expression without applying it.
type FilterCheckRequest struct {
	Filter string `json:"filter" example:"is_bug and prio >= 5" validate:"required"`
}

// FilterCheckResponse reports whether a filter expression compiles.
type FilterCheckResponse struct {
	Ok    bool   `json:"ok" example:"true" validate:"required"`
	Error string `json:"error,omitempty" example:"filter: unknown identifier \"pri\" at offset 0"`
}

// ViewResponse is the filtered, sorted board (aliased from the domain
// layer).
type ViewResponse = boardservice.View

// SearchResult is a single search hit (aliased from the index layer).
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// EnvironmentResponse describes the running service for clients.
type EnvironmentResponse struct {
	Name      string   `json:"name" example:"tavla" validate:"required"`
	Version   string   `json:"version" example:"1.2.0" validate:"required"`
	BoardPath string   `json:"boardPath" example:"/data/board.json" validate:"required"`
	Lanes     []string `json:"lanes" validate:"required"`
}
