package index

import (
	"fmt"
	"time"

	"github.com/starford/odl/internal/models"
)

// ProgramRow represents a row in the programs table.
type ProgramRow struct {
	Path        string    `json:"path"`
	Checksum    string    `json:"checksum"`
	Definitions int       `json:"definitions"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Program    string `json:"program"`
	Collection string `json:"collection"`
	Name       string `json:"name"`
	Instrument string `json:"instrument,omitempty"`
	Snippet    string `json:"snippet"`
}

// UpsertProgram replaces a program and all of its definitions, FTS entries
// and references within a transaction.
func (db *DB) UpsertProgram(p ProgramRow, defs []models.Definition) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO programs (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, p.Path, p.Checksum, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert program: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM definitions WHERE program = ?`, p.Path)
	_, _ = tx.Exec(`DELETE FROM refs WHERE program = ?`, p.Path)

	if len(defs) > 0 {
		defStmt, err := tx.Prepare(`
			INSERT INTO definitions (program, position, collection, name, instrument, summary, body)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare definition insert: %w", err)
		}
		defer defStmt.Close()
		refStmt, err := tx.Prepare(`INSERT OR IGNORE INTO refs (program, source, target) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare ref insert: %w", err)
		}
		defer refStmt.Close()

		for i, d := range defs {
			if _, err := defStmt.Exec(p.Path, i, d.Collection, d.Name, d.Instrument, d.Summary, d.Body); err != nil {
				return fmt.Errorf("index: insert definition: %w", err)
			}
			for _, target := range d.Refs {
				if _, err := refStmt.Exec(p.Path, d.Name, target); err != nil {
					return fmt.Errorf("index: insert ref: %w", err)
				}
			}
		}
	}

	if err := ftsUpsert(tx, p.Path, defs); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteProgram removes a program with its definitions and references.
func (db *DB) DeleteProgram(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM refs WHERE program = ?`, path)
	_, _ = tx.Exec(`DELETE FROM definitions WHERE program = ?`, path)
	_, _ = tx.Exec(`DELETE FROM programs WHERE path = ?`, path)
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a program, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM programs WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed program keyed by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM programs`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListPrograms returns every indexed program, ordered by path, with the
// number of definitions it holds.
func (db *DB) ListPrograms() ([]ProgramRow, error) {
	rows, err := db.conn.Query(`
		SELECT path, checksum, updated_at,
		       (SELECT COUNT(*) FROM definitions d WHERE d.program = programs.path)
		FROM programs
		ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list programs: %w", err)
	}
	defer rows.Close()

	var out []ProgramRow
	for rows.Next() {
		var r ProgramRow
		if err := rows.Scan(&r.Path, &r.Checksum, &r.UpdatedAt, &r.Definitions); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Find returns the definitions of a collection, or only those called name
// when name is non-empty, in program then document order.
func (db *DB) Find(collection, name string) ([]models.Definition, error) {
	q := `SELECT program, collection, name, instrument, summary, body
		FROM definitions WHERE collection = ?`
	args := []any{collection}
	if name != "" {
		q += ` AND name = ?`
		args = append(args, name)
	}
	q += ` ORDER BY program, position`

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: find: %w", err)
	}
	defer rows.Close()

	var out []models.Definition
	for rows.Next() {
		var d models.Definition
		if err := rows.Scan(&d.Program, &d.Collection, &d.Name, &d.Instrument, &d.Summary, &d.Body); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Referrers returns the names of definitions that use the named one.
func (db *DB) Referrers(name string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT source FROM refs WHERE target = ? ORDER BY source`, name)
	if err != nil {
		return nil, fmt.Errorf("index: referrers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
