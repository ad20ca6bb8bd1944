package offset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/odl/pkg/apperr"
)

// Unit is the unit attached to an offset quantity.
type Unit string

// Supported units. UnitNone marks a bare number whose unit is assumed.
const (
	UnitNone        Unit = ""
	UnitArcsec      Unit = "arcsec"
	UnitArcmin      Unit = "arcmin"
	UnitDegree      Unit = "deg"
	UnitRadian      Unit = "rad"
	UnitMilliarcsec Unit = "mas"
	UnitPixel       Unit = "pix"
	UnitMillimeter  Unit = "mm"
)

var arcsecPer = map[Unit]float64{
	UnitArcsec:      1,
	UnitArcmin:      60,
	UnitDegree:      3600,
	UnitRadian:      206264.80624709636,
	UnitMilliarcsec: 1e-3,
}

var unitAliases = map[string]Unit{
	"":           UnitNone,
	"\"":         UnitArcsec,
	"as":         UnitArcsec,
	"arcsec":     UnitArcsec,
	"arcsecond":  UnitArcsec,
	"arcseconds": UnitArcsec,
	"'":          UnitArcmin,
	"arcmin":     UnitArcmin,
	"arcminute":  UnitArcmin,
	"arcminutes": UnitArcmin,
	"d":          UnitDegree,
	"deg":        UnitDegree,
	"degree":     UnitDegree,
	"degrees":    UnitDegree,
	"rad":        UnitRadian,
	"radian":     UnitRadian,
	"radians":    UnitRadian,
	"mas":        UnitMilliarcsec,
	"px":         UnitPixel,
	"pix":        UnitPixel,
	"pixel":      UnitPixel,
	"pixels":     UnitPixel,
	"mm":         UnitMillimeter,
}

// Quantity is a number with an optional unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

// Arcsec returns v arcseconds.
func Arcsec(v float64) Quantity { return Quantity{Value: v, Unit: UnitArcsec} }

// Degrees returns v degrees.
func Degrees(v float64) Quantity { return Quantity{Value: v, Unit: UnitDegree} }

// Pixels returns v detector pixels.
func Pixels(v float64) Quantity { return Quantity{Value: v, Unit: UnitPixel} }

// Millimeters returns v millimeters in the focal plane.
func Millimeters(v float64) Quantity { return Quantity{Value: v, Unit: UnitMillimeter} }

// Raw returns a bare number. Offsets built from raw numbers assume
// arcseconds (or degrees for rotation) and warn about it.
func Raw(v float64) Quantity { return Quantity{Value: v} }

// Neg returns -q.
func (q Quantity) Neg() Quantity {
	q.Value = -q.Value
	return q
}

// String renders q as "1.25 arcsec".
func (q Quantity) String() string {
	v := strconv.FormatFloat(q.Value, 'f', -1, 64)
	if q.Unit == UnitNone {
		return v
	}
	return v + " " + string(q.Unit)
}

// ParseQuantity parses text such as "1.5 arcsec", "10pix" or "-3".
func ParseQuantity(s string) (Quantity, error) {
	text := strings.TrimSpace(s)
	i := len(text)
	for i > 0 {
		c := text[i-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		i--
	}
	num, suffix := strings.TrimSpace(text[:i]), strings.ToLower(strings.TrimSpace(text[i:]))

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: invalid quantity %q", apperr.ErrOffset, s)
	}
	unit, ok := unitAliases[suffix]
	if !ok {
		return Quantity{}, fmt.Errorf("%w: unknown unit %q", apperr.ErrOffset, suffix)
	}
	return Quantity{Value: v, Unit: unit}, nil
}

// toArcsec converts q to arcseconds. Pixel and millimeter values go through
// the frame scale.
func (q Quantity) toArcsec(f *Frame) (float64, error) {
	if q.Unit == UnitNone {
		return q.Value, nil
	}
	if k, ok := arcsecPer[q.Unit]; ok {
		return q.Value * k, nil
	}
	if f != nil && f.ScaleUnit == q.Unit {
		return q.Value * f.Scale, nil
	}
	frame := "no frame"
	if f != nil {
		frame = f.Name
	}
	return 0, fmt.Errorf("%w: %s cannot be converted to arcsec in %s", apperr.ErrOffset, q, frame)
}

// toDegrees converts an angular q to degrees.
func (q Quantity) toDegrees() (float64, error) {
	if q.Unit == UnitNone {
		return q.Value, nil
	}
	k, ok := arcsecPer[q.Unit]
	if !ok {
		return 0, fmt.Errorf("%w: %s cannot be converted to degrees", apperr.ErrOffset, q)
	}
	return q.Value * k / 3600, nil
}
