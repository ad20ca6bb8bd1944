package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJulianDate(t *testing.T) {
	ts := time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)
	assert.InDelta(t, 2451545.0, JulianDate(ts), 1e-9)

	ts = time.Date(1987, time.April, 10, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 2446895.5, JulianDate(ts), 1e-9)
}

func TestJulianYearRoundTrip(t *testing.T) {
	ts := time.Date(2024, time.March, 15, 6, 30, 0, 0, time.UTC)
	year := JulianYear(ts)
	assert.InDelta(t, 2024.2, year, 0.01)
	assert.WithinDuration(t, ts, FromJulianYear(year), time.Second)
	assert.InDelta(t, 2000.0, JulianYear(FromJulianYear(2000.0)), 1e-9)
}

func TestGMST(t *testing.T) {
	// Vallado example 3-5: 1992-08-20 12:14 UT1 -> 152.578787886 deg.
	ts := time.Date(1992, time.August, 20, 12, 14, 0, 0, time.UTC)
	assert.InDelta(t, 152.578787886, GMST(ts), 1e-3)
}

func TestParseSexagesimal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"10:30:00", 10.5},
		{"10 30 00", 10.5},
		{"10h30m00s", 10.5},
		{"-00 30 00", -0.5},
		{"+45:15:36", 45.26},
		{"12.25", 12.25},
	}
	for _, tt := range tests {
		got, err := ParseSexagesimal(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}

	for _, bad := range []string{"", "abc", "10:61:00", "1 2 3 4"} {
		_, err := ParseSexagesimal(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseRADec(t *testing.T) {
	ra, err := ParseRA("00:42:44.3")
	require.NoError(t, err)
	assert.InDelta(t, 10.684583, ra, 1e-5)

	dec, err := ParseDec("+41:16:09")
	require.NoError(t, err)
	assert.InDelta(t, 41.269167, dec, 1e-5)

	_, err = ParseRA("25:00:00")
	assert.Error(t, err)
	_, err = ParseDec("-91:00:00")
	assert.Error(t, err)
}

func TestFormatHMSDMS(t *testing.T) {
	assert.Equal(t, "00 42 44.30", FormatHMS(10.684583333, 2))
	assert.Equal(t, "+41 16 09.00", FormatDMS(41.269166667, 2))
	assert.Equal(t, "-00 30 00.00", FormatDMS(-0.5, 2))
	// Rounding carries into the minutes instead of printing 60.00.
	assert.Equal(t, "01 00 00.00", FormatHMS(15*(1-1e-9), 2))
}

func TestSeparation(t *testing.T) {
	assert.InDelta(t, 90.0, Separation(Coord{0, 0}, Coord{90, 0}), 1e-9)
	assert.InDelta(t, 1.0, Separation(Coord{10, 20}, Coord{10, 21}), 1e-9)
	assert.InDelta(t, 0.0, Separation(Coord{123, -45}, Coord{123, -45}), 1e-9)
}

func TestToHorizontalZenith(t *testing.T) {
	site := Keck()
	ts := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	overhead := Coord{RA: LocalSiderealTime(ts, site.LonDeg), Dec: site.LatDeg}
	h := ToHorizontal(overhead, site, ts)
	assert.InDelta(t, 90.0, h.Alt, 1e-5)
}

func TestPropagate(t *testing.T) {
	c := Coord{RA: 100, Dec: 0}
	got := Propagate(c, 3.6, -3.6, 2000, 2010)
	assert.InDelta(t, 100.01, got.RA, 1e-9)
	assert.InDelta(t, -0.01, got.Dec, 1e-9)

	same := Propagate(c, 0, 0, 2000, 2030)
	assert.Equal(t, c, same)
}

func TestMoonKnownPosition(t *testing.T) {
	// Meeus example 47.a: 1992-04-12 0h TD, RA 134.688 deg, Dec +13.768 deg.
	ts := time.Date(1992, time.April, 12, 0, 0, 0, 0, time.UTC)
	pos, parallax := Moon(ts)
	assert.InDelta(t, 134.688, pos.RA, 0.5)
	assert.InDelta(t, 13.768, pos.Dec, 0.5)
	assert.InDelta(t, 0.99, parallax, 0.05)
}
