package detector

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// record is the stored form of a Config. Family specific fields are
// pointers so that only the ones that apply are written.
type record struct {
	Name        string   `yaml:"name,omitempty"`
	Instrument  string   `yaml:"instrument"`
	Detector    string   `yaml:"detector,omitempty"`
	Family      Family   `yaml:"family,omitempty"`
	ExpTime     float64  `yaml:"exptime"`
	NExp        int      `yaml:"nexp"`
	ReadoutMode string   `yaml:"readoutmode,omitempty"`
	Coadds      *int     `yaml:"coadds,omitempty"`
	AmpMode     *int     `yaml:"ampmode,omitempty"`
	Dark        *bool    `yaml:"dark,omitempty"`
	Binning     string   `yaml:"binning,omitempty"`
	Window      string   `yaml:"window,omitempty"`
	Gain        *int     `yaml:"gain,omitempty"`
	Overhead    *float64 `yaml:"overhead,omitempty"`
}

// MarshalYAML writes the fields that apply to the family plus the derived
// name.
func (c Config) MarshalYAML() (any, error) {
	rec := record{
		Name:        c.Name(),
		Instrument:  c.Instrument,
		Detector:    c.Detector,
		Family:      c.Family,
		ExpTime:     c.ExpTime,
		NExp:        c.NExp,
		ReadoutMode: c.ReadoutMode,
	}
	switch c.Family {
	case FamilyIR:
		rec.Coadds = &c.Coadds
	case FamilyCCD:
		rec.AmpMode, rec.Dark, rec.Gain = &c.AmpMode, &c.Dark, &c.Gain
		rec.Binning, rec.Window = c.Binning, c.Window
	case FamilyCMOS:
		rec.Gain, rec.Overhead = &c.Gain, &c.Overhead
		rec.Binning, rec.Window = c.Binning, c.Window
	}
	return rec, nil
}

// UnmarshalYAML rebuilds a Config, starting from the profile defaults of
// the named detector. The stored name is ignored; it is always derived.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var rec record
	if err := node.Decode(&rec); err != nil {
		return err
	}
	if rec.Instrument == "" {
		return fmt.Errorf("line %d: detector config without instrument", node.Line)
	}

	out := New(rec.Instrument, rec.Detector)
	if _, known := lookupProfile(rec.Instrument, rec.Detector); !known && rec.Family != "" {
		out.Family = rec.Family
	}
	out.ExpTime = rec.ExpTime
	if rec.NExp != 0 {
		out.NExp = rec.NExp
	}
	if rec.ReadoutMode != "" {
		out.ReadoutMode = rec.ReadoutMode
	}
	if rec.Coadds != nil {
		out.Coadds = *rec.Coadds
	}
	if rec.AmpMode != nil {
		out.AmpMode = *rec.AmpMode
	}
	if rec.Dark != nil {
		out.Dark = *rec.Dark
	}
	if rec.Binning != "" {
		out.Binning = rec.Binning
	}
	out.Window = rec.Window
	if rec.Gain != nil {
		out.Gain = *rec.Gain
	}
	if rec.Overhead != nil {
		out.Overhead = *rec.Overhead
	}
	*c = out
	return nil
}
