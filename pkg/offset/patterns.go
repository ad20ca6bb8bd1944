package offset

import "fmt"

// Stare observes the base position repeat times.
func Stare(repeat int, guide bool) *Pattern {
	base := TelescopeOffset{Frame: SkyFrame(), PosName: "base", Guide: guide}
	return &Pattern{Name: "Stare", Repeat: repeat, Offsets: []TelescopeOffset{base}}
}

// StarSky observes the target and then a sky position offset by (dx, dy).
// The guider is released on sky.
func StarSky(dx, dy Quantity, repeat int) (*Pattern, error) {
	star, sky, err := starAndSky(dx, dy)
	if err != nil {
		return nil, err
	}
	return NewPattern(fmt.Sprintf("StarSky (%.0f %.0f)", sky.DX, sky.DY), repeat, star, sky)
}

// SkyStar is StarSky in the opposite order.
func SkyStar(dx, dy Quantity, repeat int) (*Pattern, error) {
	star, sky, err := starAndSky(dx, dy)
	if err != nil {
		return nil, err
	}
	return NewPattern(fmt.Sprintf("SkyStar (%.0f %.0f)", sky.DX, sky.DY), repeat, sky, star)
}

// StarSkyStar brackets one sky position with two target positions.
func StarSkyStar(dx, dy Quantity, repeat int) (*Pattern, error) {
	star, sky, err := starAndSky(dx, dy)
	if err != nil {
		return nil, err
	}
	return NewPattern(fmt.Sprintf("StarSkyStar (%.0f %.0f)", sky.DX, sky.DY), repeat, star, sky, star)
}

func starAndSky(dx, dy Quantity) (TelescopeOffset, TelescopeOffset, error) {
	frame := SkyFrame()
	star, err := New(Arcsec(0), Arcsec(0), frame, Named("star"))
	if err != nil {
		return TelescopeOffset{}, TelescopeOffset{}, err
	}
	sky, err := New(dx, dy, frame, Named("sky"), Guided(false))
	if err != nil {
		return TelescopeOffset{}, TelescopeOffset{}, err
	}
	return star, sky, nil
}

// ABBA nods along the y axis of frame: +offset, -offset, -offset, +offset.
func ABBA(frame *Frame, offset Quantity, guide bool, repeat int) (*Pattern, error) {
	a, err := New(Arcsec(0), offset, frame, Named("A"), Guided(guide))
	if err != nil {
		return nil, err
	}
	b, err := New(Arcsec(0), offset.Neg(), frame, Named("B"), Guided(guide))
	if err != nil {
		return nil, err
	}
	return NewPattern(fmt.Sprintf("ABBA (%.2f arcsec)", a.DY), repeat, a, b, b, a)
}

// PMFM modulates the pupil mask focus between +value and -value at the base
// position. It is used for focus blocks.
func PMFM(value, repeat int) *Pattern {
	frame := SkyFrame()
	plus, minus := value, -value
	return &Pattern{
		Name:   fmt.Sprintf("PMFM +/-%d", value),
		Repeat: repeat,
		Offsets: []TelescopeOffset{
			{Frame: frame, PosName: fmt.Sprintf("%+d", plus), Guide: true, PMFM: &plus},
			{Frame: frame, PosName: fmt.Sprintf("%+d", minus), Guide: true, PMFM: &minus},
		},
	}
}
