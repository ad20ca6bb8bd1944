package target

import "github.com/astrogo/fitsio"

// Header returns the FITS cards describing the target. Coordinates are
// written only when set.
func (t *Target) Header() []fitsio.Card {
	cards := []fitsio.Card{{Name: "TGNAME", Value: t.Name, Comment: "Target Name"}}
	if t.RA != nil && t.Dec != nil {
		cards = append(cards,
			fitsio.Card{Name: "TGRA", Value: *t.RA, Comment: "Target RA (deg)"},
			fitsio.Card{Name: "TGDEC", Value: *t.Dec, Comment: "Target Dec (deg)"})
	}
	if t.Equinox != nil {
		cards = append(cards, fitsio.Card{Name: "TGEQUIN", Value: *t.Equinox, Comment: "Target Equinox"})
	}
	if t.RotMode != "" {
		cards = append(cards, fitsio.Card{Name: "TGROTMOD", Value: t.RotMode, Comment: "Target Rotator Mode"})
	}
	if t.PA != nil {
		cards = append(cards, fitsio.Card{Name: "TGPA", Value: *t.PA, Comment: "Target Position Angle (deg)"})
	}
	return cards
}
