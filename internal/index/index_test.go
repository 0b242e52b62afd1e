package index

import (
	"path/filepath"
	"testing"

	"github.com/starford/tavla/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func fptr(f float64) *float64 { return &f }

func indexedBoard() models.Board {
	b := models.NewBoard()
	b.SetGroup(models.GroupTodo, []models.Card{
		{
			ID:          "1",
			Title:       "Fix login timeout",
			Type:        "  BUG ",
			Prio:        fptr(5),
			Category:    "auth",
			AssignedTo:  &models.Person{Name: "alice"},
			Description: &models.Content{Content: "session expires early"},
			Details:     &models.Content{Content: "reproduces on staging"},
		},
	})
	b.SetGroup(models.GroupDone, []models.Card{
		{ID: "2", Title: "Write release notes"},
	})
	return b
}

func TestRowsFromBoard(t *testing.T) {
	rows := RowsFromBoard(indexedBoard())
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	r := rows[0]
	if r.ID != "1" || r.Lane != "todo" {
		t.Errorf("row 0 = %+v", r)
	}
	if r.Type != "bug" {
		t.Errorf("type = %q, want %q", r.Type, "bug")
	}
	if r.Prio != 5 {
		t.Errorf("prio = %v, want 5", r.Prio)
	}
	if r.AssignedTo != "alice" {
		t.Errorf("assigned_to = %q, want %q", r.AssignedTo, "alice")
	}
	if r.Body != "session expires early\nreproduces on staging" {
		t.Errorf("body = %q", r.Body)
	}

	r = rows[1]
	if r.ID != "2" || r.Lane != "done" {
		t.Errorf("row 1 = %+v", r)
	}
	if r.Prio != 0 || r.AssignedTo != "" || r.Body != "" {
		t.Errorf("optional fields not zero: %+v", r)
	}
}

func TestReplaceAllAndCount(t *testing.T) {
	db := openTestDB(t)

	if err := db.ReplaceAll(RowsFromBoard(indexedBoard())); err != nil {
		t.Fatalf("ReplaceAll() error: %v", err)
	}
	n, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	// A rebuild replaces rather than accumulates.
	small := models.NewBoard()
	small.SetGroup(models.GroupTodo, []models.Card{{ID: "9", Title: "only"}})
	if err := db.ReplaceAll(RowsFromBoard(small)); err != nil {
		t.Fatal(err)
	}
	n, err = db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count after rebuild = %d, want 1", n)
	}

	if err := db.ReplaceAll(nil); err != nil {
		t.Fatal(err)
	}
	n, _ = db.Count()
	if n != 0 {
		t.Errorf("count after clearing = %d, want 0", n)
	}
}

func TestSearch(t *testing.T) {
	db := openTestDB(t)
	if err := db.ReplaceAll(RowsFromBoard(indexedBoard())); err != nil {
		t.Fatal(err)
	}

	hits, err := db.Search("login", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "1" {
		t.Fatalf("hits = %+v, want card 1", hits)
	}
	if hits[0].Lane != "todo" || hits[0].Title != "Fix login timeout" {
		t.Errorf("hit = %+v", hits[0])
	}

	// Body text is searchable too.
	hits, err = db.Search("staging", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "1" {
		t.Errorf("body search hits = %+v", hits)
	}

	hits, err = db.Search("nomatch", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("unexpected hits = %+v", hits)
	}
}

func TestSearch_LimitAndDefault(t *testing.T) {
	db := openTestDB(t)
	b := models.NewBoard()
	var cards []models.Card
	for _, id := range []string{"1", "2", "3"} {
		cards = append(cards, models.Card{ID: id, Title: "shared keyword"})
	}
	b.SetGroup(models.GroupTodo, cards)
	if err := db.ReplaceAll(RowsFromBoard(b)); err != nil {
		t.Fatal(err)
	}

	hits, err := db.Search("shared", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("limited hits = %d, want 2", len(hits))
	}

	hits, err = db.Search("shared", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Errorf("default-limit hits = %d, want 3", len(hits))
	}
}
