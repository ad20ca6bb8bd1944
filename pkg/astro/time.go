// Package astro holds the small amount of positional astronomy the observing
// description needs: time scales, the observatory site, sexagesimal notation,
// horizontal coordinates and a low-precision lunar ephemeris.
package astro

import (
	"math"
	"time"
)

// j2000 is the Julian Date of the J2000.0 epoch.
const j2000 = 2451545.0

// daysPerJulianYear is the length of a Julian year in days.
const daysPerJulianYear = 365.25

// JulianDate converts a UTC time to a Julian Date.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())
	frac := (float64(t.Hour()) + float64(t.Minute())/60 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/3600) / 24

	// January and February count as months 13 and 14 of the previous year.
	if m <= 2 {
		y--
		m += 12
	}

	a := math.Floor(y / 100)
	b := 2 - a + math.Floor(a/4)

	return math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + b - 1524.5 + frac
}

// JulianYear returns t as a Julian epoch, e.g. 2000.0 for J2000.
func JulianYear(t time.Time) float64 {
	return 2000.0 + (JulianDate(t)-j2000)/daysPerJulianYear
}

// FromJulianYear converts a Julian epoch back to a UTC time.
func FromJulianYear(year float64) time.Time {
	days := (year - 2000.0) * daysPerJulianYear
	// J2000.0 is 2000-01-01 12:00 (TT); the TT-UTC offset is ignored.
	base := time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(days * 24 * float64(time.Hour)))
}

// GMST returns Greenwich Mean Sidereal Time in degrees (IAU-82 model).
func GMST(t time.Time) float64 {
	tUT1 := (JulianDate(t) - j2000) / 36525.0

	// Seconds of time; 876600h expressed in seconds.
	sec := 67310.54841 +
		(3155760000.0+8640184.812866)*tUT1 +
		0.093104*tUT1*tUT1 -
		6.2e-6*tUT1*tUT1*tUT1

	sec = math.Mod(sec, 86400.0)
	if sec < 0 {
		sec += 86400.0
	}
	return sec / 240.0
}

// LocalSiderealTime returns the mean sidereal time in degrees at the given
// east longitude.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	return normalizeDegrees(GMST(t) + lonDeg)
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func rad(d float64) float64 { return d * math.Pi / 180 }

func deg(r float64) float64 { return r * 180 / math.Pi }
