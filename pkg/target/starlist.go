package target

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/odl/pkg/astro"
)

// Star lists carry coordinates with two decimals on the seconds.
const starlistPrecision = 2

// StarlistLine renders the target as one Keck star-list line:
//
//	name             hh mm ss.ss +dd mm ss.ss equinox [key=value ...] # [mags] [comment]
func (t *Target) StarlistLine() (string, error) {
	c, err := t.Coord()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	equinox := "2000"
	if t.Equinox != nil {
		equinox = formatFloat(*t.Equinox)
	}
	fmt.Fprintf(&b, "%-16s %s %s %s", t.Name, astro.FormatHMS(c.RA, starlistPrecision), astro.FormatDMS(c.Dec, starlistPrecision), equinox)

	if t.RotMode != "" {
		b.WriteString(" rotmode=" + t.RotMode)
	}
	if t.PA != nil {
		fmt.Fprintf(&b, " PA=%.1f", *t.PA)
	}
	if t.RAOffset != nil {
		b.WriteString(" raoff=" + formatFloat(*t.RAOffset))
	}
	if t.DecOffset != nil {
		b.WriteString(" decoff=" + formatFloat(*t.DecOffset))
	}
	if t.Wrap != "" {
		b.WriteString(" wrap=" + t.Wrap)
	}
	// vmag is the only magnitude the star-list format knows about.
	if v, ok := t.Mag.Get("V"); ok {
		fmt.Fprintf(&b, " vmag=%.2f", v)
	}
	if t.DRA != 0 {
		b.WriteString(" dra=" + formatFloat(t.DRA))
	}
	if t.DDec != 0 {
		b.WriteString(" ddec=" + formatFloat(t.DDec))
	}

	b.WriteString(" #")
	for _, m := range t.Mag {
		fmt.Fprintf(&b, " %smag=%.2f", m.Band, m.Value)
	}
	if t.Comment != "" {
		b.WriteString(" " + t.Comment)
	}
	return b.String(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
