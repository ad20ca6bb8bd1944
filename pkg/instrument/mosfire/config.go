// Package mosfire describes the Multi-Object Spectrometer For Infra-Red
// Exploration.
package mosfire

import (
	"fmt"
	"strings"

	"github.com/astrogo/fitsio"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/odl/pkg/instrument"
)

// Instrument is the instrument id.
const Instrument = "MOSFIRE"

const pkgPath = "odl/mosfire"

// Observing modes.
const (
	ModeSpectroscopy = "spectroscopy"
	ModeImaging      = "imaging"
)

// DefaultMask is the long slit used when no mask is named.
const DefaultMask = "longslit_46x0.7"

var filters = []any{"Y", "J", "H", "K", "J2", "J3", "H1", "H2", "NB1061"}

// centralWavelengths are filter centers in microns.
var centralWavelengths = map[string]float64{
	"Y": 1.048, "J": 1.253, "H": 1.637, "K": 2.162,
	"J2": 1.181, "J3": 1.288, "H1": 1.556, "H2": 1.709, "NB1061": 1.061,
}

// Config is a MOSFIRE setup.
type Config struct {
	Mode         string  `yaml:"mode"`
	Filter       string  `yaml:"filter"`
	Mask         string  `yaml:"mask,omitempty"`
	AlignMask    bool    `yaml:"alignmask,omitempty"`
	MiraMask     bool    `yaml:"miramask,omitempty"`
	ArcLamp      string  `yaml:"arclamp,omitempty"`
	DomeFlatLamp string  `yaml:"domeflatlamp,omitempty"`
	ObsWL        float64 `yaml:"obswl"`
}

// New returns a spectroscopy setup through filter with the named mask. An
// empty mask selects the default long slit.
func New(filter, mask string) Config {
	if mask == "" {
		mask = DefaultMask
	}
	return Config{
		Mode:   ModeSpectroscopy,
		Filter: filter,
		Mask:   mask,
		ObsWL:  obsWL(filter),
	}
}

// Imaging returns an imaging setup through filter.
func Imaging(filter string) Config {
	c := New(filter, "open")
	c.Mode = ModeImaging
	return c
}

func obsWL(filter string) float64 {
	if wl, ok := centralWavelengths[filter]; ok {
		return wl
	}
	return instrument.DefaultObsWL
}

// Instrument returns "MOSFIRE".
func (c Config) Instrument() string { return Instrument }

// Name is derived from the setup.
func (c Config) Name() string {
	var b strings.Builder
	switch {
	case c.MiraMask:
		fmt.Fprintf(&b, "Mira %s-%s", c.Filter, c.Mode)
	case c.AlignMask:
		fmt.Fprintf(&b, "%s-align %s-%s", c.Mask, c.Filter, c.Mode)
	default:
		fmt.Fprintf(&b, "%s %s-%s", c.Mask, c.Filter, c.Mode)
	}
	if c.ArcLamp != "" {
		fmt.Fprintf(&b, " arclamp=%s", c.ArcLamp)
	}
	if c.DomeFlatLamp != "" {
		fmt.Fprintf(&b, " domelamp=%s", c.DomeFlatLamp)
	}
	return b.String()
}

func (c Config) String() string { return c.Name() }

// Validate checks the setup.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Mode, validation.Required, validation.In(ModeSpectroscopy, ModeImaging)),
		validation.Field(&c.Filter, validation.Required, validation.In(filters...)),
		validation.Field(&c.Mask, validation.When(!c.MiraMask, validation.Required)),
		validation.Field(&c.ArcLamp, validation.In("Ne", "Ar")),
		validation.Field(&c.DomeFlatLamp, validation.In(instrument.LampOn, instrument.LampOff)),
		validation.Field(&c.ObsWL, validation.Min(0.0)),
	)
	return instrument.Invalid(c.Name(), err)
}

// Header returns the FITS cards describing the setup.
func (c Config) Header() []fitsio.Card {
	return instrument.Cards(c.Name(), pkgPath, Instrument, c.ObsWL)
}

type record struct {
	Name       string `yaml:"name"`
	Instrument string `yaml:"instrument"`
	Fields     fields `yaml:",inline"`
}

type fields Config

// MarshalYAML writes the setup with its name and instrument id.
func (c Config) MarshalYAML() (any, error) {
	return record{Name: c.Name(), Instrument: Instrument, Fields: fields(c)}, nil
}
