package store

import (
	"log/slog"
	"sync/atomic"

	"github.com/starford/tavla/internal/models"
)

// Saver serializes board writes. At most one save is on disk at a time,
// and a newer document replaces a still-pending one instead of queueing
// behind it, so saves never interleave and the last document always
// wins.
//
// Concurrency model: a single loop goroutine owns the write path.
// Enqueue hands it the latest document through a one-slot mailbox.
type Saver struct {
	store   Provider
	logger  *slog.Logger
	onError func(error)

	docCh   chan models.Board
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewSaver creates a saver writing through the given provider. onError,
// if non-nil, is called with every failed save so the failure can be
// surfaced to clients; the in-memory document is unaffected either way.
func NewSaver(store Provider, logger *slog.Logger, onError func(error)) *Saver {
	s := &Saver{
		store:   store,
		logger:  logger,
		onError: onError,
		docCh:   make(chan models.Board, 1),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Saver) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.stopCh:
			// Flush a pending document before exiting.
			select {
			case b := <-s.docCh:
				s.write(b)
			default:
			}
			return
		case b := <-s.docCh:
			s.write(b)
		}
	}
}

func (s *Saver) write(b models.Board) {
	if err := s.store.Save(b); err != nil {
		s.logger.Error("save failed",
			slog.String("path", s.store.Path()),
			slog.String("error", err.Error()))
		if s.onError != nil {
			s.onError(err)
		}
	}
}

// Enqueue schedules the document for persistence, replacing any pending
// document that has not reached disk yet. It never blocks the caller.
func (s *Saver) Enqueue(b models.Board) {
	if s.closed.Load() {
		return
	}
	for {
		select {
		case s.docCh <- b:
			return
		default:
		}
		// Mailbox full: drop the stale pending document and retry.
		select {
		case <-s.docCh:
		default:
		}
	}
}

// Close stops the loop after flushing any pending document.
func (s *Saver) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	<-s.stopped
}
