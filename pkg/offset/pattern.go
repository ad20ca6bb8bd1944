package offset

import (
	"fmt"
	"io"
	"strings"

	"github.com/astrogo/fitsio"
	"gopkg.in/yaml.v3"

	"github.com/starford/odl/pkg/apperr"
)

// Pattern is an ordered list of offsets replayed Repeat times as a whole.
type Pattern struct {
	Name    string
	Repeat  int
	Offsets []TelescopeOffset
}

// NewPattern builds a pattern. All offsets must share one frame kind.
func NewPattern(name string, repeat int, offsets ...TelescopeOffset) (*Pattern, error) {
	p := &Pattern{Name: name, Repeat: repeat, Offsets: offsets}
	if err := p.checkFrames(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pattern) checkFrames() error {
	for i, o := range p.Offsets {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("offset %d: %w", i, err)
		}
		if o.Frame.Kind != p.Offsets[0].Frame.Kind {
			return fmt.Errorf("%w: all offsets must have the same frame type (%s vs %s)",
				apperr.ErrFrame, o.Frame.Kind, p.Offsets[0].Frame.Kind)
		}
	}
	return nil
}

// Validate checks frames, the repeat count and that the pattern is not empty.
func (p *Pattern) Validate() error {
	if p.Repeat < 1 {
		return fmt.Errorf("%w: pattern %q: repeat must be at least 1, got %d", apperr.ErrOffset, p.Name, p.Repeat)
	}
	if len(p.Offsets) == 0 {
		return fmt.Errorf("%w: pattern %q has no offsets", apperr.ErrOffset, p.Name)
	}
	return p.checkFrames()
}

// Len returns the number of positions in one pass of the pattern.
func (p *Pattern) Len() int { return len(p.Offsets) }

// Steps returns the total number of positions visited, Repeat * Len.
func (p *Pattern) Steps() int { return p.Repeat * len(p.Offsets) }

// String returns the display name, e.g. "Stare x3".
func (p *Pattern) String() string {
	return fmt.Sprintf("%s x%d", p.Name, p.Repeat)
}

// Table renders the pattern name followed by one row per offset.
func (p *Pattern) Table() string {
	var b strings.Builder
	b.WriteString(p.String())
	b.WriteString("\n    dx(\")|dy(\")|  dr(deg)| posname| guide\n")
	for _, o := range p.Offsets {
		b.WriteString("    ")
		b.WriteString(o.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Execute prints every move of every repeat.
func (p *Pattern) Execute(w io.Writer) error {
	for r := 0; r < p.Repeat; r++ {
		for _, o := range p.Offsets {
			if err := o.Execute(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// Header returns the FITS cards describing the pattern.
func (p *Pattern) Header() []fitsio.Card {
	cards := []fitsio.Card{
		{Name: "OPNAME", Value: p.String(), Comment: "Offset Pattern Name"},
		{Name: "OPREPEAT", Value: p.Repeat, Comment: "Offset Pattern Repeats"},
		{Name: "OPLENGTH", Value: p.Len(), Comment: "Number of Offset Positions"},
	}
	for i, o := range p.Offsets {
		n := i + 1
		frame := ""
		if o.Frame != nil {
			frame = o.Frame.Name
		}
		cards = append(cards,
			fitsio.Card{Name: fmt.Sprintf("OP%02dNAME", n), Value: o.PosName, Comment: fmt.Sprintf("Position %02d Name", n)},
			fitsio.Card{Name: fmt.Sprintf("OP%02dDX", n), Value: o.DX, Comment: fmt.Sprintf("Position %02d dX (arcsec)", n)},
			fitsio.Card{Name: fmt.Sprintf("OP%02dDY", n), Value: o.DY, Comment: fmt.Sprintf("Position %02d dY (arcsec)", n)},
			fitsio.Card{Name: fmt.Sprintf("OP%02dREL", n), Value: o.Relative, Comment: fmt.Sprintf("Position %02d Relative?", n)},
			fitsio.Card{Name: fmt.Sprintf("OP%02dFRM", n), Value: frame, Comment: fmt.Sprintf("Position %02d Frame", n)},
			fitsio.Card{Name: fmt.Sprintf("OP%02dGUID", n), Value: o.Guide, Comment: fmt.Sprintf("Position %02d Guide?", n)},
		)
	}
	return cards
}

// PatternRecord is the stored form of a pattern.
type PatternRecord struct {
	Name    string   `yaml:"name" json:"name"`
	Repeat  int      `yaml:"repeat" json:"repeat"`
	Offsets []Record `yaml:"offsets" json:"offsets"`
}

// UnmarshalYAML decodes a pattern record; a missing repeat means 1.
func (r *PatternRecord) UnmarshalYAML(node *yaml.Node) error {
	type plain PatternRecord
	p := plain{Repeat: 1}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = PatternRecord(p)
	return nil
}

// Record returns the stored form of p.
func (p *Pattern) Record() PatternRecord {
	rec := PatternRecord{Name: p.Name, Repeat: p.Repeat, Offsets: make([]Record, 0, len(p.Offsets))}
	for _, o := range p.Offsets {
		rec.Offsets = append(rec.Offsets, o.Record())
	}
	return rec
}

// PatternFromRecord rebuilds a pattern, resolving frames in frames.
func PatternFromRecord(rec PatternRecord, frames Frames) (*Pattern, error) {
	offsets := make([]TelescopeOffset, 0, len(rec.Offsets))
	for i, or := range rec.Offsets {
		o, err := FromRecord(or, frames)
		if err != nil {
			return nil, fmt.Errorf("pattern %q offset %d: %w", rec.Name, i, err)
		}
		offsets = append(offsets, o)
	}
	return NewPattern(rec.Name, rec.Repeat, offsets...)
}
