//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS cards_fts USING fts5(
			id UNINDEXED,
			lane UNINDEXED,
			title,
			body,
			category,
			assigned_to,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, r CardRow) error {
	_, err := tx.Exec(`INSERT INTO cards_fts (id, lane, title, body, category, assigned_to) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Lane, r.Title, r.Body, r.Category, r.AssignedTo)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsClear(tx *sql.Tx) {
	_, _ = tx.Exec(`DELETE FROM cards_fts`)
}

// Search performs an FTS5 full-text search and returns matching cards
// with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id,
		       lane,
		       title,
		       snippet(cards_fts, 3, '<b>', '</b>', '...', 64)
		FROM cards_fts
		WHERE cards_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Lane, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
