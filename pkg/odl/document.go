// Package odl reads and writes observing description documents and talks
// to the observatory database.
package odl

import (
	"errors"
	"fmt"

	"github.com/astrogo/fitsio"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/starford/odl/pkg/alignment"
	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/astro"
	"github.com/starford/odl/pkg/block"
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/offset"
	"github.com/starford/odl/pkg/target"
)

// Section keys of a document entry.
const (
	KeyTargets           = "Targets"
	KeyOffsetPatterns    = "OffsetPatterns"
	KeyInstrumentConfigs = "InstrumentConfigs"
	KeyDetectorConfigs   = "DetectorConfigs"
	KeyObservingBlocks   = "ObservingBlocks"
)

// Keys lists the section keys in document order.
var Keys = []string{KeyTargets, KeyOffsetPatterns, KeyInstrumentConfigs, KeyDetectorConfigs, KeyObservingBlocks}

// Document is an observing program: loose definitions plus the blocks that
// combine them.
type Document struct {
	Targets           target.List
	OffsetPatterns    []*offset.Pattern
	InstrumentConfigs []block.InstrumentConfig
	DetectorConfigs   []detector.Config
	ObservingBlocks   block.List
}

// Len returns the number of definitions in the document.
func (d *Document) Len() int {
	return len(d.Targets) + len(d.OffsetPatterns) + len(d.InstrumentConfigs) +
		len(d.DetectorConfigs) + len(d.ObservingBlocks)
}

// Append adds every definition of other to d.
func (d *Document) Append(other *Document) {
	d.Targets = append(d.Targets, other.Targets...)
	d.OffsetPatterns = append(d.OffsetPatterns, other.OffsetPatterns...)
	d.InstrumentConfigs = append(d.InstrumentConfigs, other.InstrumentConfigs...)
	d.DetectorConfigs = append(d.DetectorConfigs, other.DetectorConfigs...)
	d.ObservingBlocks = append(d.ObservingBlocks, other.ObservingBlocks...)
}

// Validate checks every definition and joins the failures.
func (d *Document) Validate() error {
	var errs []error
	if err := d.Targets.Validate(); err != nil {
		errs = append(errs, err)
	}
	for i, p := range d.OffsetPatterns {
		if p == nil {
			errs = append(errs, fmt.Errorf("%w: offset pattern %d is empty", apperr.ErrOffset, i))
			continue
		}
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for i, ic := range d.InstrumentConfigs {
		if ic == nil {
			errs = append(errs, fmt.Errorf("%w: instrument config %d is empty", apperr.ErrInstrumentConfig, i))
			continue
		}
		if err := ic.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, dc := range d.DetectorConfigs {
		if err := dc.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.ObservingBlocks.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// BlockHeader returns the FITS cards of block i.
func (d *Document) BlockHeader(i int) ([]fitsio.Card, error) {
	if i < 0 || i >= len(d.ObservingBlocks) || d.ObservingBlocks[i] == nil {
		return nil, fmt.Errorf("%w: no observing block %d", apperr.ErrNotFound, i)
	}
	return d.ObservingBlocks[i].Header(), nil
}

// entry is one element of the stored list. Each entry normally carries a
// single section.
type entry struct {
	Targets           []*target.Target         `yaml:"Targets,omitempty"`
	OffsetPatterns    []offset.PatternRecord   `yaml:"OffsetPatterns,omitempty"`
	InstrumentConfigs []block.InstrumentConfig `yaml:"InstrumentConfigs,omitempty"`
	DetectorConfigs   []detector.Config        `yaml:"DetectorConfigs,omitempty"`
	ObservingBlocks   []blockRecord            `yaml:"ObservingBlocks,omitempty"`
}

// rawEntry is entry as read, before instrument setups are decoded.
type rawEntry struct {
	Targets           []*target.Target       `yaml:"Targets"`
	OffsetPatterns    []offset.PatternRecord `yaml:"OffsetPatterns"`
	InstrumentConfigs []yaml.Node            `yaml:"InstrumentConfigs"`
	DetectorConfigs   []detector.Config      `yaml:"DetectorConfigs"`
	ObservingBlocks   []rawBlock             `yaml:"ObservingBlocks"`
}

type blockFields struct {
	ID         string                `yaml:"id"`
	Type       block.Type            `yaml:"blocktype"`
	Target     *target.Target        `yaml:"target,omitempty"`
	Pattern    *offset.PatternRecord `yaml:"pattern,omitempty"`
	Detectors  []detector.Config     `yaml:"detconfig"`
	Align      alignment.Alignment   `yaml:"align,omitempty"`
	Associated []string              `yaml:"associatedblocks,omitempty"`
	GuideStar  *astro.Coord          `yaml:"guidestar,omitempty"`
	DRPArgs    map[string]any        `yaml:"drp_args,omitempty"`
	QLArgs     map[string]any        `yaml:"ql_args,omitempty"`
}

type blockRecord struct {
	Fields     blockFields            `yaml:",inline"`
	Instrument block.InstrumentConfig `yaml:"instconfig,omitempty"`
}

type rawBlock struct {
	Fields     blockFields `yaml:",inline"`
	Instrument yaml.Node   `yaml:"instconfig"`
}

func recordOf(b *block.Block) blockRecord {
	rec := blockRecord{
		Fields: blockFields{
			ID:        b.ID.String(),
			Type:      b.Type(),
			Target:    b.Target,
			Detectors: b.Detectors,
			Align:     b.Align,
			GuideStar: b.GuideStar,
			DRPArgs:   b.DRPArgs,
			QLArgs:    b.QLArgs,
		},
		Instrument: b.Instrument,
	}
	if b.Pattern != nil {
		pr := b.Pattern.Record()
		rec.Fields.Pattern = &pr
	}
	for _, id := range b.Associated {
		rec.Fields.Associated = append(rec.Fields.Associated, id.String())
	}
	return rec
}

func (r *Registry) decodeBlock(raw rawBlock) (*block.Block, error) {
	rb := raw.Fields
	var opts []block.Option
	if rb.ID != "" {
		id, err := uuid.Parse(rb.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: block id %q: %w", apperr.ErrBlock, rb.ID, err)
		}
		opts = append(opts, block.WithID(id))
	}
	for _, s := range rb.Associated {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: associated block %q: %w", apperr.ErrBlock, s, err)
		}
		opts = append(opts, block.AssociatedWith(id))
	}

	var pattern *offset.Pattern
	if rb.Pattern != nil {
		p, err := offset.PatternFromRecord(*rb.Pattern, r.frames)
		if err != nil {
			return nil, err
		}
		pattern = p
	}
	var ic block.InstrumentConfig
	if !raw.Instrument.IsZero() {
		decoded, err := r.DecodeInstrument(&raw.Instrument)
		if err != nil {
			return nil, err
		}
		ic = decoded
	}

	b := block.New(rb.Type, rb.Target, pattern, ic, rb.Detectors, opts...)
	b.Align = rb.Align
	b.GuideStar = rb.GuideStar
	b.DRPArgs = rb.DRPArgs
	b.QLArgs = rb.QLArgs
	return b, nil
}

// Parse decodes a document. Instrument setups are decoded through reg and
// offset frames are resolved against its frames. Parse does not validate.
func Parse(data []byte, reg *Registry) (*Document, error) {
	var entries []rawEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc := &Document{}
	for i, e := range entries {
		doc.Targets = append(doc.Targets, e.Targets...)
		for _, pr := range e.OffsetPatterns {
			p, err := offset.PatternFromRecord(pr, reg.frames)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			doc.OffsetPatterns = append(doc.OffsetPatterns, p)
		}
		for j := range e.InstrumentConfigs {
			ic, err := reg.DecodeInstrument(&e.InstrumentConfigs[j])
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			doc.InstrumentConfigs = append(doc.InstrumentConfigs, ic)
		}
		doc.DetectorConfigs = append(doc.DetectorConfigs, e.DetectorConfigs...)
		for _, rb := range e.ObservingBlocks {
			b, err := reg.decodeBlock(rb)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			doc.ObservingBlocks = append(doc.ObservingBlocks, b)
		}
	}
	return doc, nil
}

// Marshal encodes doc as a list with one entry per non-empty section.
func Marshal(doc *Document) ([]byte, error) {
	var entries []entry
	if len(doc.Targets) > 0 {
		entries = append(entries, entry{Targets: doc.Targets})
	}
	if len(doc.OffsetPatterns) > 0 {
		recs := make([]offset.PatternRecord, 0, len(doc.OffsetPatterns))
		for i, p := range doc.OffsetPatterns {
			if p == nil {
				return nil, fmt.Errorf("%w: offset pattern %d is nil", apperr.ErrOffset, i)
			}
			recs = append(recs, p.Record())
		}
		entries = append(entries, entry{OffsetPatterns: recs})
	}
	if len(doc.InstrumentConfigs) > 0 {
		entries = append(entries, entry{InstrumentConfigs: doc.InstrumentConfigs})
	}
	if len(doc.DetectorConfigs) > 0 {
		entries = append(entries, entry{DetectorConfigs: doc.DetectorConfigs})
	}
	if len(doc.ObservingBlocks) > 0 {
		recs := make([]blockRecord, 0, len(doc.ObservingBlocks))
		for i, b := range doc.ObservingBlocks {
			if b == nil {
				return nil, fmt.Errorf("%w: observing block %d is nil", apperr.ErrBlock, i)
			}
			recs = append(recs, recordOf(b))
		}
		entries = append(entries, entry{ObservingBlocks: recs})
	}
	if entries == nil {
		entries = []entry{}
	}
	out, err := yaml.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return out, nil
}
