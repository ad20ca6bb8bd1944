// Package target describes observing targets: position, proper motion,
// rotator and acquisition strategy, and their star-list rendering.
package target

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/astro"
)

// Rotator modes.
const (
	RotPA         = "pa"
	RotStationary = "stationary"
	RotVertical   = "vertical"
)

// Acquisition strategies.
const (
	AcqGuiderBright          = "guider: bright"
	AcqGuiderFaint           = "guider: faint"
	AcqGuiderOffset          = "guider: offset"
	AcqMaskAlign             = "mask align"
	AcqMaskAlignOffset       = "mask align + offset"
	AcqMaskAlignBright       = "mask align: bright"
	AcqMaskAlignBrightOffset = "mask align: bright + offset"
	AcqBlind                 = "blind"
	AcqNone                  = "none"
)

// Object types.
const (
	TypeScience          = "science"
	TypeSky              = "sky"
	TypeFluxStandard     = "flux standard"
	TypeTelluricStandard = "telluric standard"
	TypeCal              = "cal"
	TypeCustom           = "custom"
)

var (
	rotatorModes = []string{RotPA, RotStationary, RotVertical}
	acquisitions = []string{
		AcqGuiderBright, AcqGuiderFaint, AcqGuiderOffset,
		AcqMaskAlign, AcqMaskAlignOffset, AcqMaskAlignBright, AcqMaskAlignBrightOffset,
		AcqBlind, AcqNone,
	}
	objectTypes = []string{TypeScience, TypeSky, TypeFluxStandard, TypeTelluricStandard, TypeCal, TypeCustom}
	wraps       = []string{"n", "s", "north", "south", "shortest"}

	// Allowed position angles per rotator mode, degrees.
	validPA = map[string][2]float64{
		RotPA:         {0, 360},
		RotStationary: {0, 360},
		RotVertical:   {0, 360},
	}

	// Names of calibration positions that have no sky coordinates.
	calPositions = []string{"none", "domeflat", "domeflats"}
)

// Target is a sky target. Optional numeric fields are pointers so that an
// unset value can be told apart from zero.
type Target struct {
	Name        string   `yaml:"name" json:"name"`
	RA          *float64 `yaml:"RA,omitempty" json:"RA,omitempty"`
	Dec         *float64 `yaml:"Dec,omitempty" json:"Dec,omitempty"`
	Equinox     *float64 `yaml:"equinox,omitempty" json:"equinox,omitempty"`
	Epoch       *float64 `yaml:"epoch,omitempty" json:"epoch,omitempty"`
	Frame       string   `yaml:"frame,omitempty" json:"frame,omitempty"`
	RotMode     string   `yaml:"rotmode,omitempty" json:"rotmode,omitempty"`
	PA          *float64 `yaml:"PA,omitempty" json:"PA,omitempty"`
	RAOffset    *float64 `yaml:"RAOffset,omitempty" json:"RAOffset,omitempty"`
	DecOffset   *float64 `yaml:"DecOffset,omitempty" json:"DecOffset,omitempty"`
	ObjectType  string   `yaml:"objecttype,omitempty" json:"objecttype,omitempty"`
	Acquisition string   `yaml:"acquisition,omitempty" json:"acquisition,omitempty"`
	PMRA        float64  `yaml:"PMRA" json:"PMRA"`
	PMDec       float64  `yaml:"PMDec" json:"PMDec"`
	ObsTime     *float64 `yaml:"obstime,omitempty" json:"obstime,omitempty"`
	Mag         Mags     `yaml:"mag,omitempty" json:"mag,omitempty"`
	Wrap        string   `yaml:"wrap,omitempty" json:"wrap,omitempty"`
	DRA         float64  `yaml:"dra" json:"dra"`
	DDec        float64  `yaml:"ddec" json:"ddec"`
	Comment     string   `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// New returns a target at the given ICRS position (degrees, J2000).
func New(name string, ra, dec float64) *Target {
	return &Target{
		Name:    name,
		RA:      &ra,
		Dec:     &dec,
		Equinox: ptr(2000.0),
		Frame:   "icrs",
	}
}

// Parse returns a target from sexagesimal (or decimal) text. RA is read in
// hours, Dec in degrees.
func Parse(name, ra, dec string) (*Target, error) {
	raDeg, err := astro.ParseRA(ra)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperr.ErrTarget, name, err)
	}
	decDeg, err := astro.ParseDec(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperr.ErrTarget, name, err)
	}
	return New(name, raDeg, decDeg), nil
}

// DomeFlats returns the calibration position used for dome flat fields.
func DomeFlats(pa float64) *Target {
	return &Target{
		Name:        "DomeFlats",
		RotMode:     RotStationary,
		PA:          &pa,
		ObjectType:  TypeCal,
		Acquisition: AcqBlind,
	}
}

// IsCalPosition reports whether the target names a calibration position that
// has no sky coordinates.
func (t *Target) IsCalPosition() bool {
	return contains(calPositions, t.Name)
}

// String returns the target name.
func (t *Target) String() string { return t.Name }

// Validate checks required fields and enumerations. Missing rotator mode,
// PA, acquisition and object type are filled with defaults and reported as
// warnings.
func (t *Target) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrTarget)
	}
	if !t.IsCalPosition() {
		switch {
		case t.RA == nil:
			return fmt.Errorf("%w: %s: RA is required", apperr.ErrTarget, t.Name)
		case t.Dec == nil:
			return fmt.Errorf("%w: %s: Dec is required", apperr.ErrTarget, t.Name)
		case t.Equinox == nil:
			return fmt.Errorf("%w: %s: equinox is required", apperr.ErrTarget, t.Name)
		}
	}

	if t.RotMode == "" {
		t.RotMode = RotPA
		t.warn("no rotator mode given, assuming PA mode")
	}
	if t.PA == nil {
		t.PA = ptr(0.0)
		t.warn("no PA given, assuming 0 deg")
	}
	if t.Acquisition == "" {
		t.Acquisition = AcqGuiderBright
		t.warn(`no acquisition mode given, assuming "guider: bright"`)
	}
	if t.ObjectType == "" {
		t.ObjectType = TypeScience
		t.warn(`no object type given, assuming "science"`)
	}

	err := validation.ValidateStruct(t,
		validation.Field(&t.RotMode, validation.By(oneOf(rotatorModes))),
		validation.Field(&t.Acquisition, validation.By(oneOf(acquisitions))),
		validation.Field(&t.ObjectType, validation.By(oneOf(objectTypes))),
		validation.Field(&t.Wrap, validation.By(oneOf(wraps))),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", apperr.ErrTarget, t.Name, err)
	}

	limits := validPA[strings.ToLower(t.RotMode)]
	if *t.PA < limits[0] || *t.PA > limits[1] {
		return fmt.Errorf("%w: %s: rotator PA %.1f not in range [%g, %g]",
			apperr.ErrTarget, t.Name, *t.PA, limits[0], limits[1])
	}
	return nil
}

func (t *Target) warn(msg string) {
	apperr.Warn(apperr.WarnTarget, msg, slog.String("target", t.Name))
}

// oneOf accepts the empty string or any of values, ignoring case.
func oneOf(values []string) validation.RuleFunc {
	return func(v any) error {
		s, _ := v.(string)
		if s == "" || contains(values, s) {
			return nil
		}
		return fmt.Errorf("%q is not one of %s", s, strings.Join(values, ", "))
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Coord returns the position at the observation time, or now when no
// observation time is set.
func (t *Target) Coord() (astro.Coord, error) {
	return t.CoordAt(time.Now())
}

// CoordAt returns the position at the target's observation time, falling
// back to now when neither is set. Proper motion is applied only when both
// components are non-zero; epoch defaults to now as well.
func (t *Target) CoordAt(now time.Time) (astro.Coord, error) {
	if t.RA == nil || t.Dec == nil {
		return astro.Coord{}, fmt.Errorf("%w: %s has no coordinates", apperr.ErrTarget, t.Name)
	}
	c := astro.Coord{RA: *t.RA, Dec: *t.Dec}
	if t.PMRA == 0 || t.PMDec == 0 {
		return c, nil
	}

	nowYear := astro.JulianYear(now)
	epoch, obstime := nowYear, nowYear
	if t.Epoch != nil {
		epoch = *t.Epoch
	}
	if t.ObsTime != nil {
		obstime = *t.ObsTime
	}
	return astro.Propagate(c, t.PMRA, t.PMDec, epoch, obstime), nil
}

func (t *Target) observationTime() time.Time {
	if t.ObsTime != nil {
		return astro.FromJulianYear(*t.ObsTime)
	}
	return time.Now()
}

// AltAz returns the horizontal position of the target from site at the
// observation time. It is recomputed on every call.
func (t *Target) AltAz(site astro.Site) (astro.Horizontal, error) {
	at := t.observationTime()
	c, err := t.CoordAt(at)
	if err != nil {
		return astro.Horizontal{}, err
	}
	return astro.ToHorizontal(c, site, at), nil
}

// Alt returns the altitude in degrees.
func (t *Target) Alt(site astro.Site) (float64, error) {
	h, err := t.AltAz(site)
	return h.Alt, err
}

// Az returns the azimuth in degrees.
func (t *Target) Az(site astro.Site) (float64, error) {
	h, err := t.AltAz(site)
	return h.Az, err
}

// MoonSeparation returns the angular distance to the Moon in degrees. ok is
// false when the Moon is below the horizon.
func (t *Target) MoonSeparation(site astro.Site) (sep float64, ok bool, err error) {
	at := t.observationTime()
	c, err := t.CoordAt(at)
	if err != nil {
		return 0, false, err
	}
	if astro.MoonHorizontal(site, at).Alt < 0 {
		return 0, false, nil
	}
	moon, _ := astro.Moon(at)
	return astro.Separation(c, moon), true, nil
}

func ptr[T any](v T) *T { return &v }
