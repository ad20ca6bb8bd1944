// Package catalog coordinates the program store and the definition index.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"slices"

	"github.com/google/uuid"

	"github.com/starford/odl/internal/index"
	"github.com/starford/odl/internal/models"
	"github.com/starford/odl/internal/parser"
	"github.com/starford/odl/internal/storage"
	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/block"
	"github.com/starford/odl/pkg/odl"
)

// UploadDir is where uploaded programs are stored, relative to the root.
const UploadDir = "uploads"

// ProgramDetail is the full representation of a stored program.
type ProgramDetail struct {
	Path        string              `json:"path"`
	Checksum    string              `json:"checksum"`
	Content     string              `json:"content"`
	Definitions []models.Definition `json:"definitions"`
}

// EstimateResult is the observing time of a program's blocks.
type EstimateResult struct {
	Path        string  `json:"path"`
	Blocks      int     `json:"blocks"`
	ShutterOpen float64 `json:"shutter_open_s"`
	WallClock   float64 `json:"wall_clock_s"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    index.DefinitionIndex
	reg   *odl.Registry
}

// NewService creates a new catalog service.
func NewService(store storage.Provider, db index.DefinitionIndex, reg *odl.Registry) *Service {
	return &Service{store: store, db: db, reg: reg}
}

// Registry returns the instrument registry used to decode programs.
func (s *Service) Registry() *odl.Registry { return s.reg }

// Upload stores a program under a fresh name in UploadDir and indexes it.
// It returns the stored path.
func (s *Service) Upload(ctx context.Context, data []byte) (string, error) {
	p := path.Join(UploadDir, uuid.NewString()+".yaml")
	if _, err := s.Save(ctx, p, data); err != nil {
		return "", err
	}
	return p, nil
}

// Save writes a new program at p and indexes it. The document must parse.
func (s *Service) Save(_ context.Context, p string, data []byte) (*ProgramDetail, error) {
	if !storage.IsProgram(p) {
		return nil, fmt.Errorf("%w: %s is not a .yaml file", apperr.ErrInvalidDocument, p)
	}
	if _, err := odl.Parse(data, s.reg); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidDocument, err)
	}
	if _, err := s.store.Read(p); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(p, data); err != nil {
		return nil, err
	}
	if err := s.IndexFile(p, data); err != nil {
		return nil, err
	}
	return s.buildDetail(p, data)
}

// Program reads a stored program.
func (s *Service) Program(_ context.Context, p string) (*ProgramDetail, error) {
	data, err := s.read(p)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(p, data)
}

// Document reads and decodes a stored program.
func (s *Service) Document(_ context.Context, p string) (*odl.Document, error) {
	data, err := s.read(p)
	if err != nil {
		return nil, err
	}
	doc, err := odl.Parse(data, s.reg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidDocument, err)
	}
	return doc, nil
}

// Delete removes a program from storage and index.
func (s *Service) Delete(_ context.Context, p string) error {
	if err := s.store.Delete(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteProgram(p)
}

// Programs lists the indexed programs.
func (s *Service) Programs(_ context.Context) ([]index.ProgramRow, error) {
	rows, err := s.db.ListPrograms()
	if err != nil {
		return nil, err
	}
	return nonNilSlice(rows), nil
}

// Definitions gathers the definitions of collection col, or only those
// called name, into one document. Unknown collections return
// apperr.ErrUnknownCollection; no match returns apperr.ErrNotFound.
func (s *Service) Definitions(_ context.Context, col, name string) (*odl.Document, error) {
	if !slices.Contains(odl.Keys, col) {
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnknownCollection, col)
	}
	defs, err := s.db.Find(col, name)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, apperr.ErrNotFound
	}
	doc := &odl.Document{}
	for _, d := range defs {
		one, err := odl.Parse([]byte(d.Body), s.reg)
		if err != nil {
			return nil, fmt.Errorf("%s %q in %s: %w", col, d.Name, d.Program, err)
		}
		doc.Append(one)
	}
	return doc, nil
}

// Estimate returns the shutter-open and wall-clock time of a program.
func (s *Service) Estimate(ctx context.Context, p string) (*EstimateResult, error) {
	doc, err := s.Document(ctx, p)
	if err != nil {
		return nil, err
	}
	est := doc.ObservingBlocks.EstimateTime()
	return &EstimateResult{
		Path:        p,
		Blocks:      len(doc.ObservingBlocks),
		ShutterOpen: est.ShutterOpen,
		WallClock:   est.WallClock,
	}, nil
}

// Cals returns the calibration blocks a program needs.
func (s *Service) Cals(ctx context.Context, p string) (block.List, error) {
	doc, err := s.Document(ctx, p)
	if err != nil {
		return nil, err
	}
	return doc.ObservingBlocks.Cals()
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	res, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// Referrers returns the definitions that use the named one.
func (s *Service) Referrers(_ context.Context, name string) ([]string, error) {
	refs, err := s.db.Referrers(name)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(refs), nil
}

// IndexFile parses data and upserts it into the index.
func (s *Service) IndexFile(p string, data []byte) error {
	return index.IndexFile(s.db, s.reg, p, data)
}

func (s *Service) read(p string) ([]byte, error) {
	data, err := s.store.Read(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Service) buildDetail(p string, data []byte) (*ProgramDetail, error) {
	doc, err := odl.Parse(data, s.reg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidDocument, err)
	}
	defs, err := splitDefinitions(doc, p)
	if err != nil {
		return nil, err
	}
	return &ProgramDetail{
		Path:        p,
		Checksum:    storage.Checksum(data),
		Content:     string(data),
		Definitions: nonNilSlice(defs),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func splitDefinitions(doc *odl.Document, p string) ([]models.Definition, error) {
	defs, err := parser.Split(doc)
	if err != nil {
		return nil, err
	}
	for i := range defs {
		defs[i].Program = p
	}
	return defs, nil
}
