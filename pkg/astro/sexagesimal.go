package astro

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var sexagesimalSeparators = strings.NewReplacer(
	":", " ", "h", " ", "m", " ", "s", " ", "d", " ",
	"°", " ", "'", " ", "\"", " ",
)

// ParseSexagesimal parses "dd mm ss.s", "dd:mm:ss.s", "12h30m00s" or a plain
// decimal number and returns the value in the leading unit.
func ParseSexagesimal(s string) (float64, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, fmt.Errorf("empty sexagesimal value")
	}

	sign := 1.0
	switch text[0] {
	case '-':
		sign = -1
		text = text[1:]
	case '+':
		text = text[1:]
	}

	fields := strings.Fields(sexagesimalSeparators.Replace(text))
	if len(fields) == 0 || len(fields) > 3 {
		return 0, fmt.Errorf("invalid sexagesimal value %q", s)
	}

	var value float64
	scale := 1.0
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid sexagesimal value %q: %w", s, err)
		}
		if v < 0 || (i > 0 && v >= 60) {
			return 0, fmt.Errorf("invalid sexagesimal value %q: component %d out of range", s, i)
		}
		value += v / scale
		scale *= 60
	}
	return sign * value, nil
}

// ParseRA parses a right ascension given in hours (sexagesimal or decimal)
// and returns degrees.
func ParseRA(s string) (float64, error) {
	h, err := ParseSexagesimal(s)
	if err != nil {
		return 0, err
	}
	if h < 0 || h >= 24 {
		return 0, fmt.Errorf("right ascension %q out of range", s)
	}
	return h * 15, nil
}

// ParseDec parses a declination in degrees (sexagesimal or decimal).
func ParseDec(s string) (float64, error) {
	d, err := ParseSexagesimal(s)
	if err != nil {
		return 0, err
	}
	if d < -90 || d > 90 {
		return 0, fmt.Errorf("declination %q out of range", s)
	}
	return d, nil
}

// FormatHMS renders an angle in degrees as "hh mm ss.ss" hours with prec
// decimals on the seconds.
func FormatHMS(degrees float64, prec int) string {
	h, m, sec := split(normalizeDegrees(degrees)/15, prec)
	if h == 24 {
		h = 0
	}
	return fmt.Sprintf("%02d %02d %s", h, m, formatSeconds(sec, prec))
}

// FormatDMS renders a declination as "+dd mm ss.ss".
func FormatDMS(degrees float64, prec int) string {
	sign := "+"
	if degrees < 0 {
		sign = "-"
	}
	d, m, sec := split(math.Abs(degrees), prec)
	return fmt.Sprintf("%s%02d %02d %s", sign, d, m, formatSeconds(sec, prec))
}

// split breaks v into whole units, minutes and seconds, rounding the seconds
// to prec decimals first so that 59.999 never prints as 60.00.
func split(v float64, prec int) (int, int, float64) {
	scale := math.Pow(10, float64(prec))
	total := math.Round(v * 3600 * scale)
	perMinute := 60 * scale
	perUnit := 3600 * scale

	whole := math.Floor(total / perUnit)
	total -= whole * perUnit
	minutes := math.Floor(total / perMinute)
	total -= minutes * perMinute
	return int(whole), int(minutes), total / scale
}

func formatSeconds(sec float64, prec int) string {
	width := 2
	if prec > 0 {
		width = prec + 3
	}
	return fmt.Sprintf("%0*.*f", width, prec, sec)
}
