// Package parser splits a program document into its named definitions.
package parser

import (
	"github.com/starford/odl/internal/models"
	"github.com/starford/odl/pkg/block"
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/odl"
	"github.com/starford/odl/pkg/offset"
	"github.com/starford/odl/pkg/target"
)

// Result holds the output of parsing a program file.
type Result struct {
	Document    *odl.Document
	Definitions []models.Definition
}

// Parse decodes data with reg and returns one definition per object.
// Definitions carry no program path; the caller sets it.
func Parse(data []byte, reg *odl.Registry) (*Result, error) {
	doc, err := odl.Parse(data, reg)
	if err != nil {
		return nil, err
	}
	defs, err := Split(doc)
	if err != nil {
		return nil, err
	}
	return &Result{Document: doc, Definitions: defs}, nil
}

// Split returns one definition per object of doc, in collection order.
func Split(doc *odl.Document) ([]models.Definition, error) {
	var out []models.Definition
	add := func(def models.Definition, single *odl.Document) error {
		body, err := odl.Marshal(single)
		if err != nil {
			return err
		}
		def.Body = string(body)
		out = append(out, def)
		return nil
	}

	for _, t := range doc.Targets {
		if err := add(targetDef(t), &odl.Document{Targets: target.List{t}}); err != nil {
			return nil, err
		}
	}
	for _, p := range doc.OffsetPatterns {
		if err := add(patternDef(p), &odl.Document{OffsetPatterns: []*offset.Pattern{p}}); err != nil {
			return nil, err
		}
	}
	for _, ic := range doc.InstrumentConfigs {
		def := models.Definition{
			Collection: odl.KeyInstrumentConfigs,
			Name:       ic.Name(),
			Instrument: ic.Instrument(),
			Summary:    ic.Instrument() + " " + ic.Name(),
		}
		if err := add(def, &odl.Document{InstrumentConfigs: []block.InstrumentConfig{ic}}); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.DetectorConfigs {
		def := models.Definition{
			Collection: odl.KeyDetectorConfigs,
			Name:       d.Name(),
			Instrument: d.Instrument,
			Summary:    d.Name(),
		}
		if err := add(def, &odl.Document{DetectorConfigs: []detector.Config{d}}); err != nil {
			return nil, err
		}
	}
	for _, b := range doc.ObservingBlocks {
		if err := add(blockDef(b), &odl.Document{ObservingBlocks: block.List{b}}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func targetDef(t *target.Target) models.Definition {
	return models.Definition{
		Collection: odl.KeyTargets,
		Name:       t.Name,
		Summary:    t.Name,
	}
}

func patternDef(p *offset.Pattern) models.Definition {
	return models.Definition{
		Collection: odl.KeyOffsetPatterns,
		Name:       p.Name,
		Summary:    p.String(),
	}
}

// blockDef names a block by its id and records the definitions it uses.
func blockDef(b *block.Block) models.Definition {
	def := models.Definition{
		Collection: odl.KeyObservingBlocks,
		Name:       b.ID.String(),
		Summary:    b.String(),
	}
	if b.Instrument != nil {
		def.Instrument = b.Instrument.Instrument()
	}
	refs := newRefSet()
	if b.Target != nil {
		refs.add(b.Target.Name)
	}
	if b.Pattern != nil {
		refs.add(b.Pattern.Name)
	}
	if b.Instrument != nil {
		refs.add(b.Instrument.Name())
	}
	for _, d := range b.Detectors {
		refs.add(d.Name())
	}
	for _, id := range b.Associated {
		refs.add(id.String())
	}
	def.Refs = refs.list
	return def
}

// refSet keeps first-seen order and drops blanks and duplicates.
type refSet struct {
	seen map[string]struct{}
	list []string
}

func newRefSet() *refSet { return &refSet{seen: make(map[string]struct{})} }

func (r *refSet) add(name string) {
	if name == "" {
		return
	}
	if _, dup := r.seen[name]; dup {
		return
	}
	r.seen[name] = struct{}{}
	r.list = append(r.list, name)
}
