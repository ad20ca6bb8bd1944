package index

import "github.com/starford/odl/internal/models"

// DefinitionIndex defines the interface for definition indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type DefinitionIndex interface {
	UpsertProgram(p ProgramRow, defs []models.Definition) error
	DeleteProgram(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListPrograms() ([]ProgramRow, error)
	Find(collection, name string) ([]models.Definition, error)
	Search(query string, limit int) ([]SearchResult, error)
	Referrers(name string) ([]string, error)
	Close() error
}

// Verify *DB satisfies DefinitionIndex at compile time.
var _ DefinitionIndex = (*DB)(nil)
