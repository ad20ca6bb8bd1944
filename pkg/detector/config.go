// Package detector holds exposure recipes for every detector family: the
// shared fields, the family tag that picks the timing formula, and the
// per-instrument lookup tables.
package detector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/astrogo/fitsio"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/odl/pkg/apperr"
)

// Config is one exposure recipe. Fields that do not apply to the family are
// left zero. Config is a comparable value; copies are independent.
type Config struct {
	Instrument  string
	Detector    string
	Family      Family
	ExpTime     float64
	NExp        int
	ReadoutMode string
	Coadds      int     // ir
	AmpMode     int     // ccd
	Dark        bool    // ccd
	Binning     string  // ccd, cmos
	Window      string  // ccd, cmos
	Gain        int     // ccd, cmos
	Overhead    float64 // cmos, per exposure
}

// Option adjusts a Config built by New.
type Option func(*Config)

// WithExpTime sets the exposure time in seconds.
func WithExpTime(s float64) Option { return func(c *Config) { c.ExpTime = s } }

// WithNExp sets the number of exposures.
func WithNExp(n int) Option { return func(c *Config) { c.NExp = n } }

// WithReadoutMode sets the readout mode string.
func WithReadoutMode(mode string) Option { return func(c *Config) { c.ReadoutMode = mode } }

// WithCoadds sets the number of coadds.
func WithCoadds(n int) Option { return func(c *Config) { c.Coadds = n } }

// WithAmpMode sets the amplifier mode.
func WithAmpMode(mode int) Option { return func(c *Config) { c.AmpMode = mode } }

// Dark closes the shutter for the exposure.
func Dark() Option { return func(c *Config) { c.Dark = true } }

// WithBinning sets the binning, e.g. "2x2".
func WithBinning(b string) Option { return func(c *Config) { c.Binning = b } }

// WithWindow sets a readout window.
func WithWindow(w string) Option { return func(c *Config) { c.Window = w } }

// WithGain sets the detector gain.
func WithGain(g int) Option { return func(c *Config) { c.Gain = g } }

// WithOverhead sets the per-exposure overhead in seconds.
func WithOverhead(s float64) Option { return func(c *Config) { c.Overhead = s } }

// New returns a config for the detector with its profile defaults applied.
// Unknown instruments get the generic family. New never fails; call Validate.
func New(instrument, detector string, opts ...Option) Config {
	c := Config{Instrument: instrument, Detector: detector, Family: FamilyGeneric}
	if p, ok := lookupProfile(instrument, detector); ok {
		c = p.defaults
		c.Instrument, c.Detector, c.Family = instrument, detector, p.family
	}
	c.NExp = 1
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Config) profile() profile {
	if p, ok := lookupProfile(c.Instrument, c.Detector); ok && p.family == c.Family {
		return p
	}
	return profile{family: c.Family, maxReads: defaultMaxReads}
}

// Name is the human readable summary, derived from the fields.
func (c Config) Name() string {
	switch c.Family {
	case FamilyIR:
		inst := c.Instrument
		if c.Detector != "" {
			inst += " " + c.Detector
		}
		return fmt.Sprintf("%s %.0fs (%s, %d coadds) x%d", inst, c.ExpTime, c.ReadoutMode, c.Coadds, c.NExp)
	case FamilyCCD:
		dark := ""
		if c.Dark {
			dark = " (Dark)"
		}
		return fmt.Sprintf("%s%s %.0fs%s x%d", c.Instrument, c.Detector, c.ExpTime, dark, c.NExp)
	case FamilyCMOS:
		return fmt.Sprintf("%s%s %.0fs (gain %d) x%d", c.Instrument, c.Detector, c.ExpTime, c.Gain, c.NExp)
	default:
		return fmt.Sprintf("%s %.0fs x%d", c.Instrument, c.ExpTime, c.NExp)
	}
}

// String returns Name.
func (c Config) String() string { return c.Name() }

var readoutGrammar = regexp.MustCompile(`^(M?)CDS(\d*)$`)

// Validate checks the config against its family rules.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Instrument, validation.Required),
		validation.Field(&c.Family, validation.In(FamilyGeneric, FamilyIR, FamilyCCD, FamilyCMOS)),
		validation.Field(&c.ExpTime, validation.Min(0.0)),
		validation.Field(&c.NExp, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", apperr.ErrDetectorConfig, c.Name(), err)
	}
	if _, ok := lookupProfile(c.Instrument, c.Detector); !ok && hasProfiles(c.Instrument) {
		return fmt.Errorf("%w: %s has no detector %q", apperr.ErrDetectorConfig, c.Instrument, c.Detector)
	}

	switch c.Family {
	case FamilyIR:
		if err := c.validateReadout(); err != nil {
			return err
		}
		err = validation.ValidateStruct(&c, validation.Field(&c.Coadds, validation.Required, validation.Min(1)))
	case FamilyCCD:
		_, knownAmp := ampCount[c.AmpMode]
		err = validation.ValidateStruct(&c,
			validation.Field(&c.ReadoutMode, validation.Required, validation.In(ReadoutSlow, ReadoutFast)),
			validation.Field(&c.Binning, validation.Required, validation.In("1x1", "2x2")),
			validation.Field(&c.AmpMode, validation.By(func(any) error {
				if !knownAmp {
					return fmt.Errorf("unknown amplifier mode %d", c.AmpMode)
				}
				return nil
			})),
		)
	case FamilyCMOS:
		err = validation.ValidateStruct(&c,
			validation.Field(&c.ReadoutMode, validation.Required, validation.In(ReadoutSlow, ReadoutFast)),
			validation.Field(&c.Gain, validation.Required, validation.Min(1)),
			validation.Field(&c.Overhead, validation.Min(0.0)),
		)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", apperr.ErrDetectorConfig, c.Name(), err)
	}
	return nil
}

// validateReadout checks "CDS" or "MCDSn" against the instrument read cap.
func (c Config) validateReadout() error {
	m := readoutGrammar.FindStringSubmatch(c.ReadoutMode)
	if m == nil {
		return fmt.Errorf("%w: readout mode %q is not CDS or MCDS<n>", apperr.ErrDetectorConfig, c.ReadoutMode)
	}
	if m[1] == "" {
		if m[2] != "" {
			return fmt.Errorf("%w: readout mode %q: CDS takes no read count", apperr.ErrDetectorConfig, c.ReadoutMode)
		}
		return nil
	}
	if m[2] == "" {
		return fmt.Errorf("%w: readout mode %q needs a read count", apperr.ErrDetectorConfig, c.ReadoutMode)
	}
	reads, err := strconv.Atoi(m[2])
	if err != nil {
		return fmt.Errorf("%w: readout mode %q: %w", apperr.ErrDetectorConfig, c.ReadoutMode, err)
	}
	maxReads := c.profile().maxReads
	if reads < 1 || reads > maxReads {
		return fmt.Errorf("%w: %s supports MCDS1 to MCDS%d, got %q",
			apperr.ErrDetectorConfig, strings.TrimSpace(c.Instrument+" "+c.Detector), maxReads, c.ReadoutMode)
	}
	return nil
}

// ReadoutTime returns the time to read one frame in seconds.
func (c Config) ReadoutTime() float64 {
	if p := c.profile(); p.readout != nil {
		return p.readout(c)
	}
	return 0
}

// perExposureOverhead is the non-integrating time of one exposure.
func (c Config) perExposureOverhead() float64 {
	switch c.Family {
	case FamilyCCD:
		p := c.profile()
		return p.erase + c.ReadoutTime() + p.other
	case FamilyCMOS:
		return c.Overhead
	default:
		return 0
	}
}

// EstimateDuration returns the wall-clock time of the recipe in seconds.
// Generic and IR detectors count exposure time only; CCD adds erase,
// readout and other overhead per exposure; CMOS adds its fixed overhead.
func (c Config) EstimateDuration() float64 {
	switch c.Family {
	case FamilyCCD, FamilyCMOS:
		return (c.ExpTime + c.perExposureOverhead()) * float64(c.NExp)
	default:
		return c.ExpTime
	}
}

// ShutterOpen returns the integrating time, exptime * nexp.
func (c Config) ShutterOpen() float64 {
	return c.ExpTime * float64(c.NExp)
}

// MatchTime returns a copy whose exposure time makes the whole recipe last
// total seconds.
func (c Config) MatchTime(total float64) Config {
	n := c.NExp
	if n < 1 {
		n = 1
	}
	c.ExpTime = total/float64(n) - c.perExposureOverhead()
	return c
}

// Header returns the FITS cards describing the config.
func (c Config) Header() []fitsio.Card {
	cards := []fitsio.Card{
		{Name: "DCNAME", Value: c.Name(), Comment: "Detector Config Name"},
		{Name: "DCINSTR", Value: c.Instrument, Comment: "Detector Config Instrument Name"},
		{Name: "DCDET", Value: c.Detector, Comment: "Detector Config Detector Name"},
		{Name: "DCEXPT", Value: c.ExpTime, Comment: "Detector Config Exptime (sec)"},
		{Name: "DCNEXP", Value: c.NExp, Comment: "Detector Config Number of Exposures"},
		{Name: "DCRDMODE", Value: c.ReadoutMode, Comment: "Detector Config Readout Mode"},
	}
	switch c.Family {
	case FamilyIR:
		cards = append(cards,
			fitsio.Card{Name: "DCCOADDS", Value: c.Coadds, Comment: "Detector Config Coadds"})
	case FamilyCCD:
		cards = append(cards,
			fitsio.Card{Name: "DCBIN", Value: c.Binning, Comment: "Detector Config Binning"},
			fitsio.Card{Name: "DCWINDOW", Value: c.Window, Comment: "Detector Config Window"},
			fitsio.Card{Name: "DCAMPMOD", Value: c.AmpMode, Comment: "Detector Config Amplifier Mode"},
			fitsio.Card{Name: "DCDARK", Value: c.Dark, Comment: "Detector Config Dark"})
	case FamilyCMOS:
		cards = append(cards,
			fitsio.Card{Name: "DCBIN", Value: c.Binning, Comment: "Detector Config Binning"},
			fitsio.Card{Name: "DCWINDOW", Value: c.Window, Comment: "Detector Config Window"},
			fitsio.Card{Name: "DCGAIN", Value: c.Gain, Comment: "Detector Config Gain"})
	}
	return cards
}
