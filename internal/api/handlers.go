package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/tavla/internal/apperr"
	"github.com/starford/tavla/internal/boardservice"
	"github.com/starford/tavla/internal/models"
)

// Environment is the static service description exposed to clients.
type Environment struct {
	Name      string
	Version   string
	BoardPath string
}

// Handler holds API route handlers.
type Handler struct {
	svc *boardservice.Service
	env Environment
}

// NewHandler creates a new Handler.
func NewHandler(svc *boardservice.Service, env Environment) *Handler {
	return &Handler{svc: svc, env: env}
}

// ifMatchHeader reads the If-Match header, stripping surrounding quotes
// (standard ETag format).
func ifMatchHeader(r *http.Request) string {
	return strings.Trim(r.Header.Get("If-Match"), `"`)
}

// GetBoard handles GET /api/board.
//
//	@Summary		Get the full board document
//	@Tags			board
//	@Produce		json
//	@Success		200	{object}	models.Board
//	@Security		BearerAuth
//	@Router			/board [get]
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	b, sum := h.svc.Snapshot(r.Context())
	w.Header().Set("ETag", `"`+sum+`"`)
	writeJSON(w, http.StatusOK, b)
}

// ReplaceBoard handles PUT /api/board.
//
//	@Summary		Replace the whole board document
//	@Tags			board
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header		string			false	"Checksum for optimistic concurrency"
//	@Param			body		body		models.Board	true	"New board document"
//	@Success		200			{object}	models.Board
//	@Failure		400			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/board [put]
func (h *Handler) ReplaceBoard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var b models.Board
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	replaced, sum, err := h.svc.Replace(r.Context(), b, ifMatchHeader(r))
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		} else {
			slog.Error("replace board failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("ETag", `"`+sum+`"`)
	writeJSON(w, http.StatusOK, replaced)
}

// View handles GET /api/board/view.
//
//	@Summary		Get the board filtered and sorted for display
//	@Tags			board
//	@Produce		json
//	@Param			filter	query		string	false	"Filter text"
//	@Param			mode	query		string	false	"Filter mode"	Enums(search, expression)
//	@Success		200		{object}	ViewResponse
//	@Security		BearerAuth
//	@Router			/board/view [get]
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := boardservice.FilterMode(q.Get("mode"))
	if mode == "" {
		mode = boardservice.ModeSearch
	}
	writeJSON(w, http.StatusOK, h.svc.View(r.Context(), q.Get("filter"), mode))
}

// CreateCard handles POST /api/board/cards.
//
//	@Summary		Add a card to a lane
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateCardRequest	true	"Lane and card fields"
//	@Success		201		{object}	models.Card
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/board/cards [post]
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	card, err := h.svc.CreateCard(r.Context(), models.GroupKey(req.Group), req.Card)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("create card failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// EditCard handles PUT /api/board/cards/{id}.
//
//	@Summary		Replace a card's editable fields
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Card id"
//	@Param			body	body		CardForm	true	"New card fields"
//	@Success		200		{object}	models.Card
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/board/cards/{id} [put]
func (h *Handler) EditCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var form CardForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	card, err := h.svc.EditCard(r.Context(), id, form)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("edit card failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// DeleteCard handles DELETE /api/board/cards/{id}. Deleting an unknown
// id succeeds; the operation is idempotent.
//
//	@Summary		Remove a card
//	@Tags			cards
//	@Param			id	path	string	true	"Card id"
//	@Success		204	"Card deleted"
//	@Security		BearerAuth
//	@Router			/board/cards/{id} [delete]
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteCard(r.Context(), id); err != nil {
		slog.Error("delete card failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveCard handles POST /api/board/moves.
//
//	@Summary		Move a card between lanes
//	@Tags			cards
//	@Accept			json
//	@Success		204		"Move applied (or ignored as a no-op)"
//	@Failure		400		{object}	errResponse
//	@Param			body	body		MoveRequest	true	"Move description"
//	@Security		BearerAuth
//	@Router			/board/moves [post]
func (h *Handler) MoveCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	err := h.svc.MoveCard(r.Context(), req.Index, models.GroupKey(req.From), models.GroupKey(req.To))
	if err != nil {
		slog.Error("move card failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckFilter handles POST /api/filters/check.
//
//	@Summary		Validate a filter expression without applying it
//	@Tags			filters
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FilterCheckRequest	true	"Expression to check"
//	@Success		200		{object}	FilterCheckResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/filters/check [post]
func (h *Handler) CheckFilter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req FilterCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	resp := FilterCheckResponse{Ok: true}
	if err := h.svc.CheckFilter(r.Context(), req.Filter); err != nil {
		resp = FilterCheckResponse{Ok: false, Error: err.Error()}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across cards
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// GetEnvironment handles GET /api/environment.
//
//	@Summary		Describe the running service
//	@Tags			environment
//	@Produce		json
//	@Success		200	{object}	EnvironmentResponse
//	@Security		BearerAuth
//	@Router			/environment [get]
func (h *Handler) GetEnvironment(w http.ResponseWriter, r *http.Request) {
	lanes := make([]string, len(models.Groups))
	for i, g := range models.Groups {
		lanes[i] = string(g)
	}
	writeJSON(w, http.StatusOK, EnvironmentResponse{
		Name:      h.env.Name,
		Version:   h.env.Version,
		BoardPath: h.env.BoardPath,
		Lanes:     lanes,
	})
}
