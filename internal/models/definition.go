// Package models defines the records kept by the program database.
package models

import "time"

// Definition is one named object of a stored program: a target, offset
// pattern, instrument config, detector config or observing block.
type Definition struct {
	Program    string `json:"program"`
	Collection string `json:"collection"`
	Name       string `json:"name"`
	Instrument string `json:"instrument,omitempty"`
	Summary    string `json:"summary"`
	// Body is a complete single-object document in the stored YAML form.
	Body string `json:"body"`
	// Refs names the other definitions this one uses, e.g. the target of a
	// block.
	Refs []string `json:"refs,omitempty"`
}

// ProgramMetadata is a lightweight representation returned by list operations.
type ProgramMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
