package astro

import (
	"math"
	"time"
)

// Moon returns the geocentric position of the Moon at t along with its
// horizontal parallax in degrees. The series is the low-precision one from
// the Astronomical Almanac and is good to a few tenths of a degree.
func Moon(t time.Time) (Coord, float64) {
	tc := (JulianDate(t) - j2000) / 36525.0
	s := func(a, b float64) float64 { return math.Sin(rad(a + b*tc)) }
	c := func(a, b float64) float64 { return math.Cos(rad(a + b*tc)) }

	lambda := 218.32 + 481267.881*tc +
		6.29*s(135.0, 477198.87) - 1.27*s(259.3, -413335.36) +
		0.66*s(235.7, 890534.22) + 0.21*s(269.9, 954397.74) -
		0.19*s(357.5, 35999.05) - 0.11*s(186.5, 966404.03)
	beta := 5.13*s(93.3, 483202.02) + 0.28*s(228.2, 960400.89) -
		0.28*s(318.3, 6003.15) - 0.17*s(217.6, -407332.21)
	parallax := 0.9508 +
		0.0518*c(135.0, 477198.87) + 0.0095*c(259.3, -413335.36) +
		0.0078*c(235.7, 890534.22) + 0.0028*c(269.9, 954397.74)

	eps := rad(23.439291 - 0.0130042*tc)
	l, b := rad(lambda), rad(beta)

	// Ecliptic to equatorial.
	x := math.Cos(b) * math.Cos(l)
	y := math.Cos(eps)*math.Cos(b)*math.Sin(l) - math.Sin(eps)*math.Sin(b)
	z := math.Sin(eps)*math.Cos(b)*math.Sin(l) + math.Cos(eps)*math.Sin(b)

	return Coord{
		RA:  normalizeDegrees(deg(math.Atan2(y, x))),
		Dec: deg(math.Asin(z)),
	}, parallax
}

// MoonHorizontal returns the topocentric altitude and azimuth of the Moon.
func MoonHorizontal(site Site, t time.Time) Horizontal {
	pos, parallax := Moon(t)
	h := ToHorizontal(pos, site, t)
	h.Alt -= parallax * math.Cos(rad(h.Alt))
	return h
}
