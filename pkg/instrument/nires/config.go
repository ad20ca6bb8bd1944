// Package nires describes the Near-Infrared Echellette Spectrometer.
package nires

import (
	"strings"

	"github.com/astrogo/fitsio"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/odl/pkg/instrument"
)

// Instrument is the instrument id.
const Instrument = "NIRES"

const pkgPath = "odl/nires"

// ArcLampNIRES is the arc lamp setting of the internal arc calibration.
const ArcLampNIRES = "niresarcs"

// Config is a NIRES setup. The spectrograph has a fixed format so only the
// calibration lamps vary.
type Config struct {
	ArcLamp      string  `yaml:"arclamp,omitempty"`
	DomeFlatLamp string  `yaml:"domeflatlamp,omitempty"`
	ObsWL        float64 `yaml:"obswl"`
}

// New returns the science setup.
func New() Config { return Config{ObsWL: 1.65} }

// Instrument returns "NIRES".
func (c Config) Instrument() string { return Instrument }

// Name is derived from the setup.
func (c Config) Name() string {
	var b strings.Builder
	b.WriteString("NIRES Instrument Config")
	if c.ArcLamp != "" {
		b.WriteString(" arclamp")
	}
	if c.DomeFlatLamp != "" {
		b.WriteString(" domelamp=" + c.DomeFlatLamp)
	}
	return b.String()
}

func (c Config) String() string { return c.Name() }

// Validate checks the setup.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.ArcLamp, validation.In(ArcLampNIRES)),
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
