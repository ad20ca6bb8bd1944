// Package instrument holds the pieces shared by the instrument setups:
// FITS cards, lamp states and error wrapping.
package instrument

import (
	"fmt"

	"github.com/astrogo/fitsio"

	"github.com/starford/odl/pkg/apperr"
)

// DefaultObsWL is the observing wavelength assumed when a setup does not
// name one, in microns.
const DefaultObsWL = 0.5

// Dome lamp states.
const (
	LampOn  = "on"
	LampOff = "off"
)

// Lamp returns LampOff when off is set and LampOn otherwise.
func Lamp(off bool) string {
	if off {
		return LampOff
	}
	return LampOn
}

// Cards returns the FITS cards every instrument setup carries. obswl is in
// microns.
func Cards(name, pkg, inst string, obswl float64) []fitsio.Card {
	return []fitsio.Card{
		{Name: "ICNAME", Value: name, Comment: "Instrument Config Name"},
		{Name: "ICPKG", Value: pkg, Comment: "Instrument Config Package Name"},
		{Name: "ICINST", Value: inst, Comment: "Instrument Config Instrument Name"},
		{Name: "ICOBSWL", Value: obswl, Comment: "Instrument Config Wavelength (micron)"},
	}
}

// Invalid wraps a validation failure of the named setup.
func Invalid(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", apperr.ErrInstrumentConfig, name, err)
}
