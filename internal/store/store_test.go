package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/tavla/internal/models"
)

func fptr(f float64) *float64 { return &f }

func sampleBoard() models.Board {
	b := models.NewBoard()
	b.SetGroup(models.GroupTodo, []models.Card{
		{ID: "1", Title: "first", Type: "bug", Prio: fptr(3), CreationTime: "2025-01-01T00:00:00Z"},
	})
	b.SetGroup(models.GroupDone, []models.Card{
		{ID: "2", Title: "second", References: []string{"1"}},
	})
	return b
}

func TestEncode_CanonicalForm(t *testing.T) {
	data, err := Encode(sampleBoard())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		t.Error("encoded document must end with a newline")
	}

	s := string(data)
	order := []string{`"todo"`, `"in-progress"`, `"testing"`, `"done"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		if idx < 0 || idx < last {
			t.Fatalf("group keys out of order:\n%s", s)
		}
		last = idx
	}
}

func TestEncodeDecode_ByteStableRoundTrip(t *testing.T) {
	first, err := Encode(sampleBoard())
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(first)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Encode(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("round trip changed bytes:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestDecode_ToleratesMissingGroups(t *testing.T) {
	b, err := Decode([]byte(`{"todo":[{"id":"1","title":"x"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if b.CardCount() != 1 {
		t.Errorf("card count = %d, want 1", b.CardCount())
	}
	// Normalize gives every group a non-nil slice.
	for _, g := range models.Groups {
		if b.Group(g) == nil {
			t.Errorf("group %s is nil after decode", g)
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode([]byte(`{`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestChecksum_TracksContent(t *testing.T) {
	a, _ := Encode(sampleBoard())
	b, _ := Encode(sampleBoard())
	if Checksum(a) != Checksum(b) {
		t.Error("identical documents must share a checksum")
	}

	other := sampleBoard()
	other.Group(models.GroupTodo)[0].Title = "changed"
	c, _ := Encode(other)
	if Checksum(a) == Checksum(c) {
		t.Error("different documents must not share a checksum")
	}
}

func TestFS_LoadMissingYieldsEmptyBoard(t *testing.T) {
	fs, err := NewFS(filepath.Join(t.TempDir(), "board.json"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.Load()
	if err != nil {
		t.Fatal(err)
	}
	if b.CardCount() != 0 {
		t.Errorf("card count = %d, want 0", b.CardCount())
	}
	for _, g := range models.Groups {
		if b.Group(g) == nil {
			t.Errorf("group %s is nil", g)
		}
	}
}

func TestFS_SaveLoadRoundTrip(t *testing.T) {
	fs, err := NewFS(filepath.Join(t.TempDir(), "board.json"))
	if err != nil {
		t.Fatal(err)
	}

	if err := fs.Save(sampleBoard()); err != nil {
		t.Fatal(err)
	}
	loaded, err := fs.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.CardCount() != 2 {
		t.Errorf("card count = %d, want 2", loaded.CardCount())
	}
	if g, _ := loaded.FindCard("2"); g != models.GroupDone {
		t.Errorf("card 2 lane = %q, want done", g)
	}

	// Saving again produces identical bytes.
	before, _ := os.ReadFile(fs.Path())
	if err := fs.Save(loaded); err != nil {
		t.Fatal(err)
	}
	after, _ := os.ReadFile(fs.Path())
	if !bytes.Equal(before, after) {
		t.Error("repeated save changed file contents")
	}
}

func TestFS_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFS(filepath.Join(dir, "board.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Save(sampleBoard()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tavla-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestNewFS_MissingParentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope", "board.json")); err == nil {
		t.Error("expected error for missing parent directory")
	}
}
