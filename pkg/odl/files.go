package odl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/astrogo/fitsio"

	"github.com/starford/odl/pkg/target"
)

// ReadFile parses the document stored at path.
func ReadFile(path string, reg *Registry) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// WriteFile validates doc and writes it to path, replacing any existing
// file atomically.
func WriteFile(path string, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	return WriteAtomic(path, data)
}

// WriteAtomic writes data to a temporary file next to path, syncs it and
// renames it into place.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".odl-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	success = true
	return nil
}

// WriteStarlist writes one star-list line per target.
func WriteStarlist(w io.Writer, targets target.List) error {
	lines, err := targets.Starlist()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, lines)
	return err
}

// WriteHeader writes a FITS file whose primary HDU holds cards and no data.
func WriteHeader(w io.Writer, cards []fitsio.Card) error {
	f, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer f.Close()

	im := fitsio.NewImage(8, nil)
	defer im.Close()
	if err := im.Header().Append(cards...); err != nil {
		return fmt.Errorf("fits header: %w", err)
	}
	return f.Write(im)
}
