// Package kcwi describes the Keck Cosmic Web Imager: its setups, offset
// frames, detectors and calibration recipe.
package kcwi

import (
	"fmt"
	"strings"

	"github.com/astrogo/fitsio"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/odl/pkg/instrument"
)

// Instrument is the instrument id.
const Instrument = "KCWI"

const pkgPath = "odl/kcwi"

// Slicer names. SlicerFPC selects the focal plane camera.
const (
	SlicerSmall  = "small"
	SlicerMedium = "medium"
	SlicerLarge  = "large"
	SlicerFPC    = "FPC"
)

// Calibration unit positions and lamps.
const (
	CalObjDark     = "Dark"
	CalObjFlatA    = "FlatA"
	CalObjMedBarsA = "MedBarsA"

	LampFeAr = "FEAR"
	LampThAr = "THAR"
	LampCont = "CONT"
)

// lampExpTimes are the arc exposure times in seconds.
var lampExpTimes = map[string]float64{LampFeAr: 30, LampThAr: 45, LampCont: 6}

// Config is a KCWI blue plus red setup.
type Config struct {
	Slicer    string `yaml:"slicer"`
	Polarizer string `yaml:"polarizer"`

	BlueGrating   string  `yaml:"bluegrating"`
	BlueFilter    string  `yaml:"bluefilter"`
	BlueCWave     float64 `yaml:"bluecwave"`
	BluePWave     float64 `yaml:"bluepwave"`
	BlueNandSMask bool    `yaml:"bluenandsmask"`
	BlueFocus     float64 `yaml:"bluefocus,omitempty"`

	RedGrating   string  `yaml:"redgrating"`
	RedFilter    string  `yaml:"redfilter"`
	RedCWave     float64 `yaml:"redcwave"`
	RedPWave     float64 `yaml:"redpwave"`
	RedNandSMask bool    `yaml:"rednandsmask"`
	RedFocus     float64 `yaml:"redfocus,omitempty"`

	CalMirror    string `yaml:"calmirror"`
	CalObj       string `yaml:"calobj"`
	ArcLamp      string `yaml:"arclamp,omitempty"`
	DomeFlatLamp string `yaml:"domeflatlamp,omitempty"`
	// Label is appended to the name, e.g. "bias".
	Label string  `yaml:"label,omitempty"`
	ObsWL float64 `yaml:"obswl"`
}

// New returns the default setup: medium slicer, BH3 at 4800 Angstrom on
// both arms.
func New() Config {
	return Config{
		Slicer:      SlicerMedium,
		Polarizer:   "Sky",
		BlueGrating: "BH3",
		BlueFilter:  "KBlue",
		BlueCWave:   4800,
		BluePWave:   4500,
		RedGrating:  "BH3",
		RedFilter:   "KRed",
		RedCWave:    4800,
		RedPWave:    4500,
		CalMirror:   "Sky",
		CalObj:      CalObjDark,
		ObsWL:       0.48,
	}
}

// WithBlue returns a copy with the blue arm set to grating at cwave
// Angstrom. The peak wavelength follows 300 Angstrom below.
func (c Config) WithBlue(grating string, cwave float64) Config {
	c.BlueGrating, c.BlueCWave, c.BluePWave = grating, cwave, cwave-300
	c.ObsWL = cwave / 1e4
	return c
}

// WithRed returns a copy with the red arm set to grating at cwave Angstrom.
func (c Config) WithRed(grating string, cwave float64) Config {
	c.RedGrating, c.RedCWave, c.RedPWave = grating, cwave, cwave-300
	return c
}

// WithSlicer returns a copy using the named slicer.
func (c Config) WithSlicer(slicer string) Config {
	c.Slicer = slicer
	return c
}

// Instrument returns "KCWI".
func (c Config) Instrument() string { return Instrument }

// Name is derived from the setup.
func (c Config) Name() string {
	var b strings.Builder
	if c.Slicer == SlicerFPC {
		b.WriteString(SlicerFPC)
	} else {
		fmt.Fprintf(&b, "%s %s %.0f Angstrom", c.Slicer, c.BlueGrating, c.BlueCWave)
	}
	if c.CalObj != CalObjDark {
		fmt.Fprintf(&b, " calobj=%s", c.CalObj)
	}
	if c.ArcLamp != "" {
		fmt.Fprintf(&b, " arclamp=%s", c.ArcLamp)
	}
	if c.DomeFlatLamp != "" {
		fmt.Fprintf(&b, " domeflatlamp=%s", c.DomeFlatLamp)
	}
	if c.Label != "" {
		b.WriteString(" " + c.Label)
	}
	return b.String()
}

func (c Config) String() string { return c.Name() }

// Validate checks the setup.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Slicer, validation.Required,
			validation.In(SlicerSmall, SlicerMedium, SlicerLarge, SlicerFPC)),
		validation.Field(&c.Polarizer, validation.Required, validation.In("Sky", "Polar", "Lens")),
		validation.Field(&c.BlueGrating, validation.Required, validation.In("BL", "BM", "BH1", "BH2", "BH3")),
		validation.Field(&c.BlueCWave, validation.Required, validation.Min(3000.0), validation.Max(6000.0)),
		validation.Field(&c.RedGrating, validation.Required),
		validation.Field(&c.RedCWave, validation.Min(0.0)),
		validation.Field(&c.CalObj, validation.Required),
		validation.Field(&c.ArcLamp, validation.In(LampFeAr, LampThAr, LampCont)),
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

// fields has the layout of Config without its methods.
type fields Config

// MarshalYAML writes the setup with its name and instrument id.
func (c Config) MarshalYAML() (any, error) {
	return record{Name: c.Name(), Instrument: Instrument, Fields: fields(c)}, nil
}
