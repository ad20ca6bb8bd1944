package offset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/odl/pkg/apperr"
)

func TestPatternStepsAndFrames(t *testing.T) {
	slit := MustInstrumentFrame("Slit", 0.18)
	for _, repeat := range []int{1, 2, 5} {
		p, err := ABBA(slit, Arcsec(1.25), true, repeat)
		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.Equal(t, 4, p.Len())
		assert.Equal(t, 4*repeat, p.Steps())
		for _, o := range p.Offsets {
			assert.Equal(t, p.Offsets[0].Frame.Kind, o.Frame.Kind)
		}
	}
}

func TestNewPatternMixedFrames(t *testing.T) {
	sky, err := New(Arcsec(0), Arcsec(0), SkyFrame())
	require.NoError(t, err)
	inst, err := New(Arcsec(1), Arcsec(0), MustInstrumentFrame("Detector", 0.1))
	require.NoError(t, err)

	_, err = NewPattern("mixed", 1, sky, inst)
	assert.ErrorIs(t, err, apperr.ErrFrame)

	// Two instrument frames of the same kind may be combined.
	other, err := New(Arcsec(1), Arcsec(0), MustInstrumentFrame("Slit", 0.2))
	require.NoError(t, err)
	_, err = NewPattern("ok", 1, inst, other)
	assert.NoError(t, err)
}

func TestPatternValidate(t *testing.T) {
	p := Stare(0, true)
	assert.ErrorIs(t, p.Validate(), apperr.ErrOffset)

	empty := &Pattern{Name: "empty", Repeat: 1}
	assert.ErrorIs(t, empty.Validate(), apperr.ErrOffset)

	assert.NoError(t, Stare(3, true).Validate())
}

func TestPredefinedPatterns(t *testing.T) {
	stare := Stare(2, false)
	assert.Equal(t, "Stare x2", stare.String())
	assert.Equal(t, 2, stare.Steps())
	assert.Equal(t, "base", stare.Offsets[0].PosName)
	assert.False(t, stare.Offsets[0].Guide)

	sss, err := StarSkyStar(Arcsec(10), Arcsec(10), 1)
	require.NoError(t, err)
	assert.Equal(t, "StarSkyStar (10 10)", sss.Name)
	require.Equal(t, 3, sss.Len())
	assert.Equal(t, []string{"star", "sky", "star"}, posNames(sss))
	assert.False(t, sss.Offsets[1].Guide)
	assert.True(t, sss.Offsets[0].Guide)

	ss, err := StarSky(Arcsec(5), Arcsec(-5), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"star", "sky"}, posNames(ss))
	sk, err := SkyStar(Arcsec(5), Arcsec(-5), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"sky", "star"}, posNames(sk))

	abba, err := ABBA(SkyFrame(), Arcsec(1.25), true, 1)
	require.NoError(t, err)
	assert.Equal(t, "ABBA (1.25 arcsec)", abba.Name)
	assert.Equal(t, []string{"A", "B", "B", "A"}, posNames(abba))
	assert.Equal(t, 1.25, abba.Offsets[0].DY)
	assert.Equal(t, -1.25, abba.Offsets[1].DY)

	pmfm := PMFM(350, 1)
	assert.Equal(t, "PMFM +/-350", pmfm.Name)
	assert.Equal(t, []string{"+350", "-350"}, posNames(pmfm))
	require.NotNil(t, pmfm.Offsets[1].PMFM)
	assert.Equal(t, -350, *pmfm.Offsets[1].PMFM)
}

func posNames(p *Pattern) []string {
	out := make([]string, 0, p.Len())
	for _, o := range p.Offsets {
		out = append(out, o.PosName)
	}
	return out
}

func TestPatternHeader(t *testing.T) {
	p, err := ABBA(SkyFrame(), Arcsec(2), false, 3)
	require.NoError(t, err)

	cards := p.Header()
	require.Len(t, cards, 3+6*4)
	assert.Equal(t, "OPNAME", cards[0].Name)
	assert.Equal(t, "ABBA (2.00 arcsec) x3", cards[0].Value)
	assert.Equal(t, "OPREPEAT", cards[1].Name)
	assert.Equal(t, 3, cards[1].Value)
	assert.Equal(t, "OPLENGTH", cards[2].Name)
	assert.Equal(t, 4, cards[2].Value)

	names := make([]string, 0, 6)
	for _, c := range cards[3:9] {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"OP01NAME", "OP01DX", "OP01DY", "OP01REL", "OP01FRM", "OP01GUID"}, names)
	assert.Equal(t, "OP04GUID", cards[len(cards)-1].Name)
	for _, c := range cards {
		assert.LessOrEqual(t, len(c.Name), 8, c.Name)
	}
}

func TestPatternRecordRoundTrip(t *testing.T) {
	slit := MustInstrumentFrame("Slit", 0.18)
	p, err := ABBA(slit, Pixels(5), true, 2)
	require.NoError(t, err)

	back, err := PatternFromRecord(p.Record(), NewFrames(slit))
	require.NoError(t, err)
	assert.Equal(t, p.Record(), back.Record())
	assert.Equal(t, p.Steps(), back.Steps())
}

func TestPatternExecuteRepeats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Stare(3, true).Execute(&buf))
	assert.Equal(t, 6, strings.Count(buf.String(), "\n"))
}

func TestPatternTable(t *testing.T) {
	table := Stare(1, true).Table()
	assert.True(t, strings.HasPrefix(table, "Stare x1\n"))
	assert.Contains(t, table, "    base|  true")
}
