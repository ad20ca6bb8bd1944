//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/odl/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS definitions_fts USING fts5(
			program UNINDEXED,
			collection UNINDEXED,
			instrument UNINDEXED,
			name,
			summary,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, program string, defs []models.Definition) error {
	ftsDelete(tx, program)
	for _, d := range defs {
		_, err := tx.Exec(`
			INSERT INTO definitions_fts (program, collection, instrument, name, summary, body)
			VALUES (?, ?, ?, ?, ?, ?)
		`, program, d.Collection, d.Instrument, d.Name, d.Summary, d.Body)
		if err != nil {
			return fmt.Errorf("index: upsert fts: %w", err)
		}
	}
	return nil
}

func ftsDelete(tx *sql.Tx, program string) {
	_, _ = tx.Exec(`DELETE FROM definitions_fts WHERE program = ?`, program)
}

// Search performs an FTS5 full-text search and returns matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT program,
		       collection,
		       name,
		       instrument,
		       snippet(definitions_fts, 4, '<b>', '</b>', '...', 32)
		FROM definitions_fts
		WHERE definitions_fts MATCH ?
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
		if err := rows.Scan(&r.Program, &r.Collection, &r.Name, &r.Instrument, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
