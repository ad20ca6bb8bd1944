package astro

import (
	"math"
	"time"
)

// Coord is an equatorial position in decimal degrees.
type Coord struct {
	RA  float64 `yaml:"ra"`
	Dec float64 `yaml:"dec"`
}

// Horizontal is a position in the observer's alt/az frame. Azimuth runs
// from north (0) through east (90).
type Horizontal struct {
	Alt float64
	Az  float64
}

// Separation returns the angular distance between a and b in degrees.
func Separation(a, b Coord) float64 {
	ra1, dec1 := rad(a.RA), rad(a.Dec)
	ra2, dec2 := rad(b.RA), rad(b.Dec)
	dra := ra2 - ra1

	// Vincenty form, stable at small and antipodal separations.
	num1 := math.Cos(dec2) * math.Sin(dra)
	num2 := math.Cos(dec1)*math.Sin(dec2) - math.Sin(dec1)*math.Cos(dec2)*math.Cos(dra)
	den := math.Sin(dec1)*math.Sin(dec2) + math.Cos(dec1)*math.Cos(dec2)*math.Cos(dra)
	return deg(math.Atan2(math.Hypot(num1, num2), den))
}

// ToHorizontal converts c to altitude and azimuth as seen from site at t.
// Refraction is not applied.
func ToHorizontal(c Coord, site Site, t time.Time) Horizontal {
	lst := LocalSiderealTime(t, site.LonDeg)
	ha := rad(lst - c.RA)
	dec := rad(c.Dec)
	lat := rad(site.LatDeg)

	sinAlt := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(ha)
	alt := math.Asin(math.Max(-1, math.Min(1, sinAlt)))

	az := math.Atan2(-math.Sin(ha)*math.Cos(dec),
		math.Cos(lat)*math.Sin(dec)-math.Sin(lat)*math.Cos(dec)*math.Cos(ha))

	return Horizontal{Alt: deg(alt), Az: normalizeDegrees(deg(az))}
}

// Propagate applies proper motion (arcsec/yr, RA component already scaled by
// cos Dec) from one Julian epoch to another using a linear model.
func Propagate(c Coord, pmRA, pmDec, fromYear, toYear float64) Coord {
	dt := toYear - fromYear
	dec := c.Dec + pmDec*dt/3600
	cosDec := math.Cos(rad(c.Dec))
	ra := c.RA
	if cosDec > 1e-12 {
		ra += pmRA * dt / 3600 / cosDec
	}
	if dec > 90 {
		dec = 180 - dec
		ra += 180
	} else if dec < -90 {
		dec = -180 - dec
		ra += 180
	}
	return Coord{RA: normalizeDegrees(ra), Dec: dec}
}
