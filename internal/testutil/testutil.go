// Package testutil provides shared test helpers for setting up board
// files and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/tavla/internal/index"
	"github.com/starford/tavla/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "tavla-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestBoardFile creates a temporary board file path with a store.Provider.
// The file itself does not exist yet; loading it yields an empty board.
func TestBoardFile(t *testing.T) (string, store.Provider) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.json")
	fs, err := store.NewFS(path)
	if err != nil {
		t.Fatal(err)
	}
	return path, fs
}
