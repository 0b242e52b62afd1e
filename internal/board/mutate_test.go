package board

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/tavla/internal/apperr"
	"github.com/starford/tavla/internal/models"
)

func testBoard() models.Board {
	b := models.NewBoard()
	b.SetGroup(models.GroupTodo, []models.Card{
		{ID: "1", Title: "a"},
		{ID: "2", Title: "b"},
	})
	b.SetGroup(models.GroupInProgress, []models.Card{
		{ID: "3", Title: "c"},
	})
	return b
}

func ids(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func equalIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNextCardID(t *testing.T) {
	tests := []struct {
		name string
		b    models.Board
		want string
	}{
		{"empty board", models.NewBoard(), "1"},
		{"sequential", testBoard(), "4"},
		{"gap keeps max", func() models.Board {
			b := models.NewBoard()
			b.SetGroup(models.GroupDone, []models.Card{{ID: "9"}, {ID: "2"}})
			return b
		}(), "10"},
		{"non-numeric ignored", func() models.Board {
			b := models.NewBoard()
			b.SetGroup(models.GroupTodo, []models.Card{{ID: "x"}, {ID: "3"}})
			return b
		}(), "4"},
		{"only non-numeric", func() models.Board {
			b := models.NewBoard()
			b.SetGroup(models.GroupTodo, []models.Card{{ID: "abc"}})
			return b
		}(), "1"},
	}
	for _, tc := range tests {
		if got := NextCardID(tc.b); got != tc.want {
			t.Errorf("%s: NextCardID = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestMoveCard(t *testing.T) {
	b := testBoard()

	// Global index 2 is the first in-progress card.
	out := MoveCard(b, 2, models.GroupInProgress, models.GroupDone)
	if !equalIDs(ids(out.Group(models.GroupInProgress))) {
		t.Errorf("in-progress = %v, want empty", ids(out.Group(models.GroupInProgress)))
	}
	if !equalIDs(ids(out.Group(models.GroupDone)), "3") {
		t.Errorf("done = %v, want [3]", ids(out.Group(models.GroupDone)))
	}
	// Input board untouched.
	if len(b.Group(models.GroupInProgress)) != 1 {
		t.Error("input board was mutated")
	}
}

func TestMoveCard_NoOps(t *testing.T) {
	b := testBoard()

	for _, tc := range []struct {
		name  string
		index int
		from  models.GroupKey
		to    models.GroupKey
	}{
		{"same lane", 0, models.GroupTodo, models.GroupTodo},
		{"bad source", 0, "nope", models.GroupDone},
		{"bad destination", 0, models.GroupTodo, "nope"},
		{"index out of range", 99, models.GroupTodo, models.GroupDone},
		{"negative index", -1, models.GroupTodo, models.GroupDone},
	} {
		out := MoveCard(b, tc.index, tc.from, tc.to)
		if out.CardCount() != b.CardCount() || len(out.Group(models.GroupDone)) != 0 {
			t.Errorf("%s: board changed", tc.name)
		}
	}
}

func TestMoveCard_CollapsesDuplicateIDs(t *testing.T) {
	// A hand-edited file can hold the same id in two lanes; moving the
	// card restores single ownership.
	b := models.NewBoard()
	b.SetGroup(models.GroupTodo, []models.Card{{ID: "1", Title: "a"}})
	b.SetGroup(models.GroupTesting, []models.Card{{ID: "1", Title: "a copy"}})

	out := MoveCard(b, 0, models.GroupTodo, models.GroupDone)
	if out.CardCount() != 1 {
		t.Fatalf("card count = %d, want 1", out.CardCount())
	}
	if !equalIDs(ids(out.Group(models.GroupDone)), "1") {
		t.Errorf("done = %v, want [1]", ids(out.Group(models.GroupDone)))
	}
}

func TestCreateCard(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	out, card, err := CreateCard(testBoard(), models.GroupTesting, CardForm{
		Title:      "  New Task  ",
		Type:       " BUG ",
		Prio:       "5",
		Category:   "infra",
		AssignedTo: "Alice",
	}, now)
	if err != nil {
		t.Fatal(err)
	}

	if card.ID != "4" {
		t.Errorf("id = %q, want 4", card.ID)
	}
	if card.Title != "New Task" || card.Type != "bug" {
		t.Errorf("card = %+v", card)
	}
	if card.Prio == nil || *card.Prio != 5 {
		t.Errorf("prio = %v, want 5", card.Prio)
	}
	if card.AssignedTo == nil || card.AssignedTo.Name != "Alice" {
		t.Errorf("assignedTo = %v", card.AssignedTo)
	}
	if card.CreationTime != "2025-06-01T07:30:00Z" {
		t.Errorf("creation time = %q, want UTC RFC3339", card.CreationTime)
	}
	if !equalIDs(ids(out.Group(models.GroupTesting)), "4") {
		t.Errorf("testing lane = %v", ids(out.Group(models.GroupTesting)))
	}
}

func TestCreateCard_Errors(t *testing.T) {
	b := testBoard()
	now := time.Now()

	if _, _, err := CreateCard(b, "nope", CardForm{Title: "x"}, now); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad group err = %v", err)
	}
	if _, _, err := CreateCard(b, models.GroupTodo, CardForm{Title: " "}, now); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blank title err = %v", err)
	}
}

func TestCreateCard_BlankOptionalsAbsent(t *testing.T) {
	_, card, err := CreateCard(models.NewBoard(), models.GroupTodo, CardForm{
		Title:       "x",
		Prio:        "",
		Category:    "  ",
		AssignedTo:  "",
		Description: " ",
	}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if card.Prio != nil || card.Category != "" || card.AssignedTo != nil || card.Description != nil {
		t.Errorf("blank optionals should be absent: %+v", card)
	}
}

func TestEditCard(t *testing.T) {
	b := testBoard()
	b.Group(models.GroupTodo)[0].CreationTime = "2024-01-01T00:00:00Z"

	out, card, err := EditCard(b, "1", CardForm{Title: "renamed", Type: "emergency"})
	if err != nil {
		t.Fatal(err)
	}
	if card.ID != "1" || card.CreationTime != "2024-01-01T00:00:00Z" {
		t.Errorf("identity not preserved: %+v", card)
	}
	if card.Title != "renamed" || card.Type != "emergency" {
		t.Errorf("edit not applied: %+v", card)
	}
	// Lane and position preserved.
	if !equalIDs(ids(out.Group(models.GroupTodo)), "1", "2") {
		t.Errorf("todo lane = %v", ids(out.Group(models.GroupTodo)))
	}
}

func TestEditCard_Errors(t *testing.T) {
	b := testBoard()

	if _, _, err := EditCard(b, "99", CardForm{Title: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing card err = %v", err)
	}
	if _, _, err := EditCard(b, "1", CardForm{Title: ""}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("invalid form err = %v", err)
	}
}

func TestDeleteCard(t *testing.T) {
	b := testBoard()
	b.Group(models.GroupTodo)[1].References = []string{"1", "3"}
	b.Group(models.GroupInProgress)[0].References = []string{"1"}

	out := DeleteCard(b, "1")
	if out.CardCount() != 2 {
		t.Fatalf("card count = %d, want 2", out.CardCount())
	}
	if _, idx := out.FindCard("1"); idx >= 0 {
		t.Error("card 1 still present")
	}

	// References to the deleted card are pruned everywhere.
	rem := out.Group(models.GroupTodo)[0]
	if !equalIDs(rem.References, "3") {
		t.Errorf("references = %v, want [3]", rem.References)
	}
	if refs := out.Group(models.GroupInProgress)[0].References; refs != nil {
		t.Errorf("emptied references = %v, want nil", refs)
	}

	// Input board untouched.
	if b.CardCount() != 3 {
		t.Error("input board was mutated")
	}
}

func TestDeleteCard_UnknownIDIsNoOp(t *testing.T) {
	b := testBoard()
	out := DeleteCard(b, "99")
	if out.CardCount() != b.CardCount() {
		t.Errorf("card count = %d, want %d", out.CardCount(), b.CardCount())
	}
}
