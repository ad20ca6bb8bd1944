package block

import (
	"bytes"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/odl/pkg/alignment"
	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/offset"
	"github.com/starford/odl/pkg/target"
)

// fakeConfig is a value-typed instrument setup whose cals are one block per
// call, so duplicated cals are visible in the output.
type fakeConfig struct {
	Filter string
	Lamp   string
}

func (c fakeConfig) Instrument() string { return "FAKE" }
func (c fakeConfig) Name() string       { return "fake " + c.Filter }
func (c fakeConfig) Validate() error    { return nil }

func (c fakeConfig) Cals() (List, error) {
	arc := c
	arc.Lamp = "on"
	det := detector.New("FAKE", "", detector.WithExpTime(1))
	return List{Calibration(nil, offset.Stare(1, false), arc, []detector.Config{det})}, nil
}

func (c fakeConfig) Header() []fitsio.Card {
	return []fitsio.Card{{Name: "ICNAME", Value: c.Name()}}
}

func generic(exptime float64) detector.Config {
	return detector.New("FAKE", "", detector.WithExpTime(exptime))
}

func abba(t *testing.T) *offset.Pattern {
	t.Helper()
	p, err := offset.ABBA(offset.SkyFrame(), offset.Arcsec(5), true, 1)
	require.NoError(t, err)
	return p
}

func TestListEstimateTime(t *testing.T) {
	inst := fakeConfig{Filter: "J"}
	l := List{
		Science(nil, offset.Stare(2, true), inst, []detector.Config{generic(10)}),
		Science(nil, abba(t), inst, []detector.Config{generic(5)}),
	}
	est := l.EstimateTime()
	assert.InDelta(t, 40.0, est.ShutterOpen, 1e-9)
	assert.InDelta(t, 40.0, est.WallClock, 1e-9)
	assert.Contains(t, est.String(), "Shutter Open Time: 40 s (0.0 hrs)")
}

func TestBlockEstimateUsesSlowestDetector(t *testing.T) {
	blue := detector.New("KCWI", "blue", detector.WithExpTime(100))
	red := detector.New("KCWI", "red", detector.WithExpTime(300))
	b := Science(nil, offset.Stare(1, true), fakeConfig{}, []detector.Config{blue, red})

	est := b.EstimateTime()
	assert.InDelta(t, 300.0, est.ShutterOpen, 1e-9)
	assert.InDelta(t, red.EstimateDuration(), est.WallClock, 1e-9)
	assert.Greater(t, est.WallClock, est.ShutterOpen)
}

func TestEstimateWithoutPattern(t *testing.T) {
	b := Science(nil, nil, fakeConfig{}, []detector.Config{generic(10)})
	assert.Equal(t, Estimate{}, b.EstimateTime())
}

func TestListCalsDeduplicatesByValue(t *testing.T) {
	a := fakeConfig{Filter: "K"}
	b := fakeConfig{Filter: "K"}
	h := fakeConfig{Filter: "H"}
	det := []detector.Config{generic(10)}

	l := List{
		Science(nil, offset.Stare(1, true), a, det),
		Telluric(nil, offset.Stare(1, true), b, det),
		Science(nil, offset.Stare(1, true), h, det),
	}
	cals, err := l.Cals()
	require.NoError(t, err)
	require.Len(t, cals, 2)
	assert.Equal(t, "fake K", cals[0].Instrument.Name())
	assert.Equal(t, "fake H", cals[1].Instrument.Name())
	for _, c := range cals {
		assert.Equal(t, TypeCalibration, c.Type())
	}
}

func TestListCalsSkipsCalibrationAndFocus(t *testing.T) {
	det := []detector.Config{generic(1)}
	l := List{
		Calibration(nil, offset.Stare(1, false), fakeConfig{Filter: "Y"}, det),
		Focus(nil, offset.Stare(1, false), fakeConfig{Filter: "J"}, det),
	}
	cals, err := l.Cals()
	require.NoError(t, err)
	assert.Empty(t, cals)

	blockCals, err := l[0].Cals()
	require.NoError(t, err)
	assert.Nil(t, blockCals)
}

func TestBlockCalsWithoutInstrument(t *testing.T) {
	_, err := Science(nil, offset.Stare(1, true), nil, nil).Cals()
	assert.ErrorIs(t, err, apperr.ErrBlock)
}

func TestValidate(t *testing.T) {
	det := []detector.Config{generic(10)}
	tests := []struct {
		name string
		b    *Block
		want error
	}{
		{"complete", Science(target.New("M31", 10.68, 41.27), offset.Stare(1, true), fakeConfig{}, det), nil},
		{"no pattern", Science(nil, nil, fakeConfig{}, det), apperr.ErrBlock},
		{"no instrument", Science(nil, offset.Stare(1, true), nil, det), apperr.ErrBlock},
		{"no detector", Science(nil, offset.Stare(1, true), fakeConfig{}, nil), apperr.ErrBlock},
		{"bad type", New("nap", nil, offset.Stare(1, true), fakeConfig{}, det), apperr.ErrBlock},
		{"bad detector", Science(nil, offset.Stare(1, true), fakeConfig{}, []detector.Config{detector.New("FAKE", "", detector.WithNExp(0))}), apperr.ErrDetectorConfig},
		{"bad alignment", Science(nil, offset.Stare(1, true), fakeConfig{}, det, WithAlignment(alignment.Alignment{Kind: "x"})), apperr.ErrAlignment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.b.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListValidateRejectsNil(t *testing.T) {
	l := List{Science(nil, offset.Stare(1, true), fakeConfig{}, []detector.Config{generic(1)}), nil}
	assert.ErrorIs(t, l.Validate(), apperr.ErrBlock)
}

func TestConstructorsFixType(t *testing.T) {
	det := []detector.Config{generic(1)}
	p := offset.Stare(1, true)
	assert.Equal(t, TypeScience, Science(nil, p, nil, det).Type())
	assert.Equal(t, TypeTelluric, Telluric(nil, p, nil, det).Type())
	assert.Equal(t, TypeStandard, StandardStar(nil, p, nil, det).Type())
	assert.Equal(t, TypeCalibration, Calibration(nil, p, nil, det).Type())
	assert.Equal(t, TypeFocus, Focus(nil, p, nil, det).Type())
}

func TestLink(t *testing.T) {
	det := []detector.Config{generic(1)}
	sci := Science(nil, offset.Stare(1, true), fakeConfig{}, det)
	tell := Telluric(nil, offset.Stare(1, true), fakeConfig{}, det)
	assert.NotEqual(t, sci.ID, tell.ID)

	sci.Link(tell)
	sci.Link(nil)
	assert.Equal(t, []uuid.UUID{tell.ID}, sci.Associated)
}

func TestHeader(t *testing.T) {
	b := Science(target.New("M31", 10.68, 41.27), offset.Stare(1, true), fakeConfig{Filter: "J"},
		[]detector.Config{generic(1)}, WithAlignment(alignment.Guider(false)))
	cards := b.Header()
	require.NotEmpty(t, cards)
	assert.Equal(t, "OBTYPE", cards[0].Name)
	assert.Equal(t, "science", cards[0].Value)

	names := map[string]bool{}
	for _, c := range cards {
		names[c.Name] = true
	}
	for _, want := range []string{"TGNAME", "OPNAME", "ICNAME", "ALNAME"} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestTable(t *testing.T) {
	l := List{Science(target.New("NGC1068", 40.67, -0.01), offset.Stare(1, true), fakeConfig{Filter: "J"},
		[]detector.Config{generic(10)}, WithAlignment(alignment.Blind()))}
	var buf bytes.Buffer
	require.NoError(t, l.Table(&buf))
	out := buf.String()
	assert.Contains(t, out, "NGC1068")
	assert.Contains(t, out, "fake J")
	assert.Contains(t, out, "Blind Align")
}

func TestSequence(t *testing.T) {
	inst := fakeConfig{Filter: "J"}
	l := List{
		Science(nil, abba(t), inst, []detector.Config{generic(5)}),
	}
	seq, err := l.Sequence()
	require.NoError(t, err)
	require.Len(t, seq, 1)
	require.NoError(t, seq.Validate())

	seq[0].Repeat = 3
	assert.InDelta(t, 60.0, seq.EstimateTime().ShutterOpen, 1e-9)

	seq = append(seq, nil)
	assert.ErrorIs(t, seq.Validate(), apperr.ErrSequence)
	assert.ErrorIs(t, (&SequenceElement{Pattern: abba(t), Detector: generic(1)}).Validate(), apperr.ErrSequence)

	_, err = List{nil}.Sequence()
	assert.ErrorIs(t, err, apperr.ErrBlock)
}

func TestSequenceKeepsPatternRepeat(t *testing.T) {
	l := List{
		Science(nil, offset.Stare(3, true), fakeConfig{}, []detector.Config{generic(10)}),
		Science(nil, abba(t), fakeConfig{}, []detector.Config{generic(5)}),
	}
	seq, err := l.Sequence()
	require.NoError(t, err)
	require.Len(t, seq, 2)
	assert.Equal(t, 3, seq[0].Repeat)
	assert.Equal(t, 1, seq[1].Repeat)
	assert.InDelta(t, l.EstimateTime().ShutterOpen, seq.EstimateTime().ShutterOpen, 1e-9)
	assert.InDelta(t, 50.0, seq.EstimateTime().ShutterOpen, 1e-9)
}
