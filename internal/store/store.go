// Package store owns the canonical board document: a single JSON file
// holding the four card groups, loaded or saved as a whole.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/starford/tavla/internal/models"
)

// Provider is the persistence interface for the board document.
type Provider interface {
	// Load reads the board document. A missing file yields an empty
	// board without error; anything else that goes wrong is a
	// persistence failure.
	Load() (models.Board, error)
	// Save atomically persists the whole document. A partially
	// written file is never left behind.
	Save(models.Board) error
	// Path returns the absolute path of the board file.
	Path() string
}

// Encode renders the canonical on-disk form of the document: two-space
// indent, the four group keys in fixed order, trailing newline. Saving
// and checksumming both go through here so the file round-trips
// byte-for-byte under repeated load/save.
func Encode(b models.Board) ([]byte, error) {
	b.Normalize()
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("store: encode board: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a persisted board document.
func Decode(data []byte) (models.Board, error) {
	var b models.Board
	if err := json.Unmarshal(data, &b); err != nil {
		return models.Board{}, fmt.Errorf("store: decode board: %w", err)
	}
	b.Normalize()
	return b, nil
}

// Checksum returns the hex-encoded SHA-256 digest of data, used as the
// board ETag and for telling our own saves apart from external edits.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
