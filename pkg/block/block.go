// Package block combines targets, offset patterns and configurations into
// observing blocks and rolls program statistics up over lists of them.
package block

import (
	"fmt"

	"github.com/astrogo/fitsio"
	"github.com/google/uuid"

	"github.com/starford/odl/pkg/alignment"
	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/astro"
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/offset"
	"github.com/starford/odl/pkg/target"
)

// Type tags what a block is for. It is fixed by the constructor.
type Type string

// Block types.
const (
	TypeScience     Type = "science"
	TypeTelluric    Type = "telluric"
	TypeStandard    Type = "standard"
	TypeCalibration Type = "calibration"
	TypeFocus       Type = "focus"
)

// Types lists the block types in display order.
var Types = []Type{TypeScience, TypeTelluric, TypeStandard, TypeCalibration, TypeFocus}

// InstrumentConfig is the optical setup of one instrument. Implementations
// are comparable value types; calibration variants are modified copies.
type InstrumentConfig interface {
	// Instrument is the fixed instrument id, e.g. "KCWI".
	Instrument() string
	Name() string
	Validate() error
	// Cals returns the calibration blocks this setup needs, in order.
	Cals() (List, error)
	Header() []fitsio.Card
}

// Block is one unit of execution.
type Block struct {
	ID         uuid.UUID
	typ        Type
	Target     *target.Target
	Pattern    *offset.Pattern
	Instrument InstrumentConfig
	// Detectors read out simultaneously, e.g. both KCWI arms.
	Detectors  []detector.Config
	Align      alignment.Alignment
	Associated []uuid.UUID
	GuideStar  *astro.Coord
	DRPArgs    map[string]any
	QLArgs     map[string]any
}

// Option configures a Block.
type Option func(*Block)

// WithAlignment sets the alignment strategy.
func WithAlignment(a alignment.Alignment) Option { return func(b *Block) { b.Align = a } }

// WithGuideStar sets the guide star position.
func WithGuideStar(c astro.Coord) Option { return func(b *Block) { b.GuideStar = &c } }

// WithDRPArgs sets arguments for the data reduction pipeline.
func WithDRPArgs(args map[string]any) Option { return func(b *Block) { b.DRPArgs = args } }

// WithQLArgs sets arguments for the quick look pipeline.
func WithQLArgs(args map[string]any) Option { return func(b *Block) { b.QLArgs = args } }

// WithID replaces the generated block id.
func WithID(id uuid.UUID) Option { return func(b *Block) { b.ID = id } }

// AssociatedWith links the block to other blocks by id.
func AssociatedWith(ids ...uuid.UUID) Option {
	return func(b *Block) { b.Associated = append(b.Associated, ids...) }
}

// New returns a block of the given type. Construction never fails; call
// Validate.
func New(typ Type, tgt *target.Target, pattern *offset.Pattern, inst InstrumentConfig,
	dets []detector.Config, opts ...Option) *Block {
	b := &Block{
		ID:         uuid.New(),
		typ:        typ,
		Target:     tgt,
		Pattern:    pattern,
		Instrument: inst,
		Detectors:  dets,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Science returns a science block.
func Science(tgt *target.Target, pattern *offset.Pattern, inst InstrumentConfig,
	dets []detector.Config, opts ...Option) *Block {
	return New(TypeScience, tgt, pattern, inst, dets, opts...)
}

// Telluric returns a telluric standard block.
func Telluric(tgt *target.Target, pattern *offset.Pattern, inst InstrumentConfig,
	dets []detector.Config, opts ...Option) *Block {
	return New(TypeTelluric, tgt, pattern, inst, dets, opts...)
}

// StandardStar returns a flux standard block.
func StandardStar(tgt *target.Target, pattern *offset.Pattern, inst InstrumentConfig,
	dets []detector.Config, opts ...Option) *Block {
	return New(TypeStandard, tgt, pattern, inst, dets, opts...)
}

// Calibration returns a calibration block.
func Calibration(tgt *target.Target, pattern *offset.Pattern, inst InstrumentConfig,
	dets []detector.Config, opts ...Option) *Block {
	return New(TypeCalibration, tgt, pattern, inst, dets, opts...)
}

// Focus returns a focus block.
func Focus(tgt *target.Target, pattern *offset.Pattern, inst InstrumentConfig,
	dets []detector.Config, opts ...Option) *Block {
	return New(TypeFocus, tgt, pattern, inst, dets, opts...)
}

// Type returns the block type.
func (b *Block) Type() Type { return b.typ }

// Link records other as associated with b.
func (b *Block) Link(other *Block) {
	if other == nil {
		return
	}
	b.Associated = append(b.Associated, other.ID)
}

// Validate checks that the block is complete and that every part is valid.
func (b *Block) Validate() error {
	if !isType(b.typ) {
		return fmt.Errorf("%w: unknown block type %q", apperr.ErrBlock, b.typ)
	}
	if b.Pattern == nil {
		return fmt.Errorf("%w: %s block has no offset pattern", apperr.ErrBlock, b.typ)
	}
	if b.Instrument == nil {
		return fmt.Errorf("%w: %s block has no instrument config", apperr.ErrBlock, b.typ)
	}
	if len(b.Detectors) == 0 {
		return fmt.Errorf("%w: %s block has no detector config", apperr.ErrBlock, b.typ)
	}

	if b.Target != nil {
		if err := b.Target.Validate(); err != nil {
			return err
		}
	}
	if err := b.Pattern.Validate(); err != nil {
		return err
	}
	if err := b.Instrument.Validate(); err != nil {
		return err
	}
	for _, d := range b.Detectors {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return b.Align.Validate()
}

func isType(t Type) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// EstimateTime returns the shutter-open and wall-clock time of the block.
// Simultaneous detectors count once, at the slowest of them.
func (b *Block) EstimateTime() Estimate {
	if b.Pattern == nil {
		return Estimate{}
	}
	var wall, shutter float64
	for _, d := range b.Detectors {
		wall = max(wall, d.EstimateDuration())
		shutter = max(shutter, d.ShutterOpen())
	}
	steps := float64(b.Pattern.Steps())
	return Estimate{ShutterOpen: steps * shutter, WallClock: steps * wall}
}

// Cals returns the calibrations for the block's instrument setup.
// Calibration and focus blocks need none.
func (b *Block) Cals() (List, error) {
	if b.typ == TypeCalibration || b.typ == TypeFocus {
		return nil, nil
	}
	if b.Instrument == nil {
		return nil, fmt.Errorf("%w: %s block has no instrument config", apperr.ErrBlock, b.typ)
	}
	return b.Instrument.Cals()
}

// Header returns the FITS cards describing the block.
func (b *Block) Header() []fitsio.Card {
	cards := []fitsio.Card{{Name: "OBTYPE", Value: string(b.typ), Comment: "OB Type"}}
	if b.Target != nil {
		cards = append(cards, b.Target.Header()...)
	}
	if b.Pattern != nil {
		cards = append(cards, b.Pattern.Header()...)
	}
	if b.Instrument != nil {
		cards = append(cards, b.Instrument.Header()...)
	}
	if !b.Align.IsZero() {
		cards = append(cards, b.Align.Header()...)
	}
	return cards
}

// String is a one line summary of the block.
func (b *Block) String() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s", b.typ, targetName(b.Target), patternName(b.Pattern),
		instrumentName(b.Instrument), detectorNames(b.Detectors))
}

func targetName(t *target.Target) string {
	if t == nil {
		return "None"
	}
	return t.Name
}

func patternName(p *offset.Pattern) string {
	if p == nil {
		return "None"
	}
	return p.String()
}

func instrumentName(ic InstrumentConfig) string {
	if ic == nil {
		return "None"
	}
	return ic.Name()
}

func detectorNames(dets []detector.Config) string {
	switch len(dets) {
	case 0:
		return "None"
	case 1:
		return dets[0].Name()
	}
	out := dets[0].Name()
	for _, d := range dets[1:] {
		out += " + " + d.Name()
	}
	return out
}
