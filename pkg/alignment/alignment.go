// Package alignment describes how a target is placed on the instrument
// before science exposures start.
package alignment

import (
	"fmt"

	"github.com/astrogo/fitsio"
	"gopkg.in/yaml.v3"

	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/detector"
)

// Kind is the alignment strategy.
type Kind string

// Alignment strategies.
const (
	KindBlind  Kind = "blind"
	KindGuider Kind = "guider"
	KindMask   Kind = "mask"
)

// Alignment is a target acquisition strategy. The zero value means no
// alignment step.
type Alignment struct {
	Kind     Kind
	Faint    bool             // guider
	Bright   bool             // mask
	Detector *detector.Config // mask
	Filter   string           // mask
	TakeSky  bool             // mask
}

// Blind points the telescope and trusts the pointing model.
func Blind() Alignment { return Alignment{Kind: KindBlind} }

// Guider centers the target on the guide camera.
func Guider(faint bool) Alignment { return Alignment{Kind: KindGuider, Faint: faint} }

// Mask aligns a slit mask using exposures taken with det through filter.
func Mask(det detector.Config, filter string, takeSky, bright bool) Alignment {
	return Alignment{
		Kind:     KindMask,
		Bright:   bright,
		Detector: &det,
		Filter:   filter,
		TakeSky:  takeSky,
	}
}

// IsZero reports whether no alignment is set.
func (a Alignment) IsZero() bool { return a.Kind == "" }

// Name is the display name of the strategy.
func (a Alignment) Name() string {
	switch a.Kind {
	case KindBlind:
		return "Blind Align"
	case KindGuider:
		if a.Faint {
			return "Guider Align, faint"
		}
		return "Guider Align"
	case KindMask:
		det := ""
		if a.Detector != nil {
			det = a.Detector.Name()
		}
		name := fmt.Sprintf("Mask Align (%s)", det)
		if a.Bright {
			name += " bright"
		}
		if a.TakeSky {
			name += " take sky"
		}
		return name
	default:
		return ""
	}
}

// String returns Name.
func (a Alignment) String() string { return a.Name() }

// Validate checks the strategy and, for mask alignment, its detector.
func (a Alignment) Validate() error {
	switch a.Kind {
	case "", KindBlind, KindGuider:
		return nil
	case KindMask:
		if a.Detector == nil {
			return fmt.Errorf("%w: mask alignment needs a detector config", apperr.ErrAlignment)
		}
		if err := a.Detector.Validate(); err != nil {
			return fmt.Errorf("%w: %w", apperr.ErrAlignment, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown alignment %q", apperr.ErrAlignment, a.Kind)
	}
}

// Header returns the FITS cards describing the alignment.
func (a Alignment) Header() []fitsio.Card {
	return []fitsio.Card{{Name: "ALNAME", Value: a.Name(), Comment: "Alignment Name"}}
}

type record struct {
	Name     string           `yaml:"name,omitempty"`
	Kind     Kind             `yaml:"kind"`
	Faint    bool             `yaml:"faint,omitempty"`
	Bright   bool             `yaml:"bright,omitempty"`
	Detector *detector.Config `yaml:"detconfig,omitempty"`
	Filter   string           `yaml:"filter,omitempty"`
	TakeSky  bool             `yaml:"takesky,omitempty"`
}

// MarshalYAML writes the alignment with its display name.
func (a Alignment) MarshalYAML() (any, error) {
	return record{
		Name:     a.Name(),
		Kind:     a.Kind,
		Faint:    a.Faint,
		Bright:   a.Bright,
		Detector: a.Detector,
		Filter:   a.Filter,
		TakeSky:  a.TakeSky,
	}, nil
}

// UnmarshalYAML reads an alignment; the stored name is ignored.
func (a *Alignment) UnmarshalYAML(node *yaml.Node) error {
	var rec record
	if err := node.Decode(&rec); err != nil {
		return err
	}
	*a = Alignment{
		Kind:     rec.Kind,
		Faint:    rec.Faint,
		Bright:   rec.Bright,
		Detector: rec.Detector,
		Filter:   rec.Filter,
		TakeSky:  rec.TakeSky,
	}
	return nil
}
