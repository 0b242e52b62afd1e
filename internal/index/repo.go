package index

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/tavla/internal/models"
)

// CardRow represents a row in the cards table.
type CardRow struct {
	ID         string
	Lane       string
	Title      string
	Category   string
	AssignedTo string
	Type       string
	Prio       float64
	Body       string
	UpdatedAt  time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Lane    string `json:"lane"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// RowsFromBoard flattens a board document into index rows. Description
// and details text are folded into the searchable body column.
func RowsFromBoard(b models.Board) []CardRow {
	now := time.Now()
	var out []CardRow
	for _, g := range models.Groups {
		for _, c := range b.Group(g) {
			row := CardRow{
				ID:        c.ID,
				Lane:      string(g),
				Title:     c.Title,
				Category:  c.Category,
				Type:      strings.ToLower(strings.TrimSpace(c.Type)),
				Body:      cardBody(c),
				UpdatedAt: now,
			}
			if c.AssignedTo != nil {
				row.AssignedTo = c.AssignedTo.Name
			}
			if c.Prio != nil {
				row.Prio = *c.Prio
			}
			out = append(out, row)
		}
	}
	return out
}

func cardBody(c models.Card) string {
	var parts []string
	if c.Description != nil && c.Description.Content != "" {
		parts = append(parts, c.Description.Content)
	}
	if c.Details != nil && c.Details.Content != "" {
		parts = append(parts, c.Details.Content)
	}
	return strings.Join(parts, "\n")
}

// ReplaceAll rebuilds the whole index from the given rows in one
// transaction. Boards are small, so a full rebuild per save is simpler
// and safer than diffing.
func (db *DB) ReplaceAll(rows []CardRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM cards`); err != nil {
		return fmt.Errorf("index: clear cards: %w", err)
	}
	ftsClear(tx)

	if len(rows) > 0 {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO cards (id, lane, title, category, assigned_to, type, prio, body, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare card insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.Exec(r.ID, r.Lane, r.Title, r.Category, r.AssignedTo, r.Type, r.Prio, r.Body, r.UpdatedAt); err != nil {
				return fmt.Errorf("index: insert card: %w", err)
			}
			if err := ftsInsert(tx, r); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Count returns the number of indexed cards.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
