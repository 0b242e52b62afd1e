package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/tavla/internal/models"
)

// Predicate is a pure function from a card to a filter decision.
type Predicate func(models.Card) bool

// MatchAll accepts every card.
func MatchAll(models.Card) bool { return true }

// MatchNone rejects every card. Callers that receive a CompileError fall
// back to this (or to MatchAll, per their policy) instead of crashing.
func MatchNone(models.Card) bool { return false }

// CompileError describes why a filter expression failed to compile. It
// is surfaced to the user verbatim and never treated as a fatal fault.
type CompileError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("filter: %s at offset %d", e.Msg, e.Pos)
}

// Compile turns a boolean filter expression into a predicate over cards.
// A blank expression matches every card. Malformed syntax and unknown
// identifiers or functions yield a *CompileError and no predicate.
// Evaluation of a compiled predicate is pure, total, and side-effect
// free.
func Compile(expr string) (Predicate, error) {
	return CompileAt(expr, time.Now())
}

// CompileAt is Compile with an explicit evaluation time. The time is
// fixed into the predicate, so every card in one filter pass sees the
// same now/utc values.
func CompileAt(expr string, now time.Time) (Predicate, error) {
	if strings.TrimSpace(expr) == "" {
		return MatchAll, nil
	}
	root, err := parse(expr)
	if err != nil {
		return nil, err
	}
	proj := NewProjector(now)
	return func(c models.Card) bool {
		return truthy(eval(root, proj.Project(c)))
	}, nil
}
