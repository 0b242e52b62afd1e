// Package boardservice coordinates the in-memory board document with
// persistence, indexing, filtering, and change notifications. It is the
// single writer for the board: every mutation goes through its mutex,
// so handlers and the MCP server never race on the document.
package boardservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/tavla/internal/apperr"
	"github.com/starford/tavla/internal/board"
	"github.com/starford/tavla/internal/filter"
	"github.com/starford/tavla/internal/index"
	"github.com/starford/tavla/internal/models"
	"github.com/starford/tavla/internal/store"
)

// FilterMode selects how a filter string is interpreted.
type FilterMode string

const (
	// ModeSearch treats the filter as whitespace-separated search tokens.
	ModeSearch FilterMode = "search"
	// ModeExpression treats the filter as a boolean expression.
	ModeExpression FilterMode = "expression"
)

// Notifier receives change notifications after successful mutations.
// *sse.Broker satisfies it.
type Notifier interface {
	PublishCardEvent(kind, id string)
	PublishBoardUpdated()
	PublishSaveFailed(msg string)
}

// View is a read-only projection of the board: lanes filtered by the
// active filter and sorted into display order. FilterError carries a
// compile diagnostic when the expression was rejected; the lanes are
// then unfiltered rather than empty.
type View struct {
	Board       models.Board `json:"board"`
	FilterError string       `json:"filterError,omitempty"`
}

// Service owns the authoritative board document.
type Service struct {
	store    store.Provider
	saver    *store.Saver
	db       index.CardIndex
	notifier Notifier
	logger   *slog.Logger

	mu    sync.Mutex
	board models.Board
	sum   string
}

// NewService creates a service around an already loaded (or empty)
// document; call Load before serving requests.
func NewService(st store.Provider, saver *store.Saver, db index.CardIndex, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		saver:    saver,
		db:       db,
		notifier: notifier,
		logger:   logger,
		board:    models.NewBoard(),
	}
}

// Load reads the board from disk (a missing file yields an empty board)
// and rebuilds the card index.
func (s *Service) Load(_ context.Context) error {
	b, err := s.store.Load()
	if err != nil {
		return err
	}
	sum, err := boardChecksum(b)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.board = b
	s.sum = sum
	s.mu.Unlock()

	s.reindex(b)
	return nil
}

// Snapshot returns a copy of the current board and its checksum. The
// checksum doubles as the ETag for optimistic concurrency.
func (s *Service) Snapshot(_ context.Context) (models.Board, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone(), s.sum
}

// Replace swaps in a whole new document. When ifMatch is non-empty it
// must equal the current checksum or the replace fails with ErrConflict.
func (s *Service) Replace(_ context.Context, b models.Board, ifMatch string) (models.Board, string, error) {
	b.Normalize()

	s.mu.Lock()
	if ifMatch != "" && ifMatch != s.sum {
		s.mu.Unlock()
		return models.Board{}, "", apperr.ErrConflict
	}
	sum, err := s.commitLocked(b)
	s.mu.Unlock()
	if err != nil {
		return models.Board{}, "", err
	}

	s.notifier.PublishBoardUpdated()
	return b.Clone(), sum, nil
}

// CreateCard validates the form, allocates the next id, and appends the
// card to the given lane.
func (s *Service) CreateCard(_ context.Context, group models.GroupKey, form board.CardForm) (models.Card, error) {
	s.mu.Lock()
	next, card, err := board.CreateCard(s.board, group, form, time.Now())
	if err != nil {
		s.mu.Unlock()
		return models.Card{}, err
	}
	if _, err := s.commitLocked(next); err != nil {
		s.mu.Unlock()
		return models.Card{}, err
	}
	s.mu.Unlock()

	s.notifier.PublishCardEvent("created", card.ID)
	return card, nil
}

// EditCard replaces the card's user-editable fields, keeping its id,
// lane, position, and creation time.
func (s *Service) EditCard(_ context.Context, id string, form board.CardForm) (models.Card, error) {
	s.mu.Lock()
	next, card, err := board.EditCard(s.board, id, form)
	if err != nil {
		s.mu.Unlock()
		return models.Card{}, err
	}
	if _, err := s.commitLocked(next); err != nil {
		s.mu.Unlock()
		return models.Card{}, err
	}
	s.mu.Unlock()

	s.notifier.PublishCardEvent("updated", card.ID)
	return card, nil
}

// DeleteCard removes the card and prunes references to it from the
// remaining cards. Deleting an unknown id is a no-op.
func (s *Service) DeleteCard(_ context.Context, id string) error {
	s.mu.Lock()
	_, _, found := findCard(s.board, id)
	if !found {
		s.mu.Unlock()
		return nil
	}
	next := board.DeleteCard(s.board, id)
	if _, err := s.commitLocked(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notifier.PublishCardEvent("deleted", id)
	return nil
}

// MoveCard moves the card at the given global index from one lane to
// another. Invalid moves leave the board unchanged.
func (s *Service) MoveCard(_ context.Context, globalIndex int, from, to models.GroupKey) error {
	s.mu.Lock()
	moved := movedCardID(s.board, globalIndex, from, to)
	next := board.MoveCard(s.board, globalIndex, from, to)
	if _, err := s.commitLocked(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if moved != "" {
		s.notifier.PublishCardEvent("moved", moved)
	}
	return nil
}

// MoveCardByID moves a card to the destination lane by id. Used by the
// MCP tools, which address cards by id rather than board position.
func (s *Service) MoveCardByID(_ context.Context, id string, to models.GroupKey) error {
	if !models.ValidGroup(to) {
		return fmt.Errorf("%w: unknown lane %q", apperr.ErrValidation, string(to))
	}

	s.mu.Lock()
	from, idx, found := findCard(s.board, id)
	if !found {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	next := board.MoveCard(s.board, globalIndexOf(s.board, from, idx), from, to)
	if _, err := s.commitLocked(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notifier.PublishCardEvent("moved", id)
	return nil
}

// View returns the board filtered and sorted for display. An invalid
// expression never fails the request: the board comes back unfiltered
// with the compile diagnostic in FilterError.
func (s *Service) View(_ context.Context, filterText string, mode FilterMode) View {
	pred := filter.MatchAll
	var filterErr string

	switch mode {
	case ModeExpression:
		p, err := filter.Compile(filterText)
		if err != nil {
			filterErr = err.Error()
		} else {
			pred = p
		}
	default:
		pred = filter.SearchPredicate(filterText)
	}

	s.mu.Lock()
	b := s.board.Clone()
	s.mu.Unlock()

	var out models.Board
	for _, g := range models.Groups {
		var kept []models.Card
		for _, c := range b.Group(g) {
			if pred(c) {
				kept = append(kept, c)
			}
		}
		out.SetGroup(g, board.SortCards(kept))
	}
	out.Normalize()

	return View{Board: out, FilterError: filterErr}
}

// CheckFilter compiles the expression and reports the diagnostic, if
// any, without evaluating it against the board.
func (s *Service) CheckFilter(_ context.Context, expr string) error {
	_, err := filter.Compile(expr)
	return err
}

// Search runs a full-text query against the card index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Reload re-reads the board from disk after an external change. Writes
// that merely echo our own save are detected by checksum and skipped.
func (s *Service) Reload(ctx context.Context) error {
	b, err := s.store.Load()
	if err != nil {
		return err
	}
	sum, err := boardChecksum(b)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if sum == s.sum {
		s.mu.Unlock()
		return nil
	}
	s.board = b
	s.sum = sum
	s.mu.Unlock()

	s.reindex(b)
	s.notifier.PublishBoardUpdated()
	s.logger.Info("board reloaded from disk", slog.String("path", s.store.Path()))
	return nil
}

// commitLocked installs the new document, schedules the save, and
// rebuilds the index. Caller holds s.mu.
func (s *Service) commitLocked(b models.Board) (string, error) {
	sum, err := boardChecksum(b)
	if err != nil {
		return "", err
	}
	s.board = b
	s.sum = sum
	s.saver.Enqueue(b)
	s.reindex(b)
	return sum, nil
}

// reindex rebuilds the card index. Index failures are logged, not
// fatal: the index is derived data and the document is already safe.
func (s *Service) reindex(b models.Board) {
	if err := s.db.ReplaceAll(index.RowsFromBoard(b)); err != nil {
		s.logger.Error("reindex failed", slog.String("error", err.Error()))
	}
}

func boardChecksum(b models.Board) (string, error) {
	data, err := store.Encode(b)
	if err != nil {
		return "", err
	}
	return store.Checksum(data), nil
}

func findCard(b models.Board, id string) (models.GroupKey, int, bool) {
	g, i := b.FindCard(id)
	if i < 0 {
		return "", -1, false
	}
	return g, i, true
}

// globalIndexOf converts a (lane, position) pair into the flattened
// index used by the move operation.
func globalIndexOf(b models.Board, group models.GroupKey, idx int) int {
	offset := 0
	for _, g := range models.Groups {
		if g == group {
			return offset + idx
		}
		offset += len(b.Group(g))
	}
	return -1
}

func movedCardID(b models.Board, globalIndex int, from, to models.GroupKey) string {
	if from == to || !models.ValidGroup(from) || !models.ValidGroup(to) {
		return ""
	}
	cards := b.AllCards()
	if globalIndex < 0 || globalIndex >= len(cards) {
		return ""
	}
	return cards[globalIndex].ID
}
