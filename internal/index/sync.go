package index

import (
	"log/slog"
	"time"

	"github.com/starford/odl/internal/parser"
	"github.com/starford/odl/internal/storage"
	"github.com/starford/odl/pkg/odl"
)

// Sync walks the program directory and brings the index up to date:
//   - new/changed programs are parsed and upserted
//   - programs removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, reg *odl.Registry, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] == m.Checksum {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, reg, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteProgram(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}
	return nil
}

// IndexFile parses a program and upserts its definitions.
func IndexFile(db DefinitionIndex, reg *odl.Registry, path string, data []byte) error {
	res, err := parser.Parse(data, reg)
	if err != nil {
		return err
	}
	defs := res.Definitions
	for i := range defs {
		defs[i].Program = path
	}
	return db.UpsertProgram(ProgramRow{
		Path:      path,
		Checksum:  storage.Checksum(data),
		UpdatedAt: time.Now(),
	}, defs)
}
