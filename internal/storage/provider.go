// Package storage keeps program documents as YAML files under one directory.
package storage

import "github.com/starford/odl/internal/models"

// Provider is the interface for program file operations. Paths are
// relative to the program root.
type Provider interface {
	// List returns metadata for every program file under dir.
	List(dir string) ([]models.ProgramMetadata, error)
	// Read returns the raw bytes of the program at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the program at path.
	Write(path string, content []byte) error
	// Delete removes the program at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
