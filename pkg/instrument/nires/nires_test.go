package nires

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/block"
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/offset"
)

func TestCals(t *testing.T) {
	cals, err := New().Cals()
	require.NoError(t, err)
	require.Len(t, cals, 2)

	arcs, flats := cals[0], cals[1]
	assert.Equal(t, "NIRES Instrument Config arclamp", arcs.Instrument.Name())
	assert.Equal(t, 120.0, arcs.Detectors[0].ExpTime)
	assert.Equal(t, 3, arcs.Pattern.Repeat)
	assert.Equal(t, DetectorSpec, arcs.Detectors[0].Detector)

	assert.Equal(t, "NIRES Instrument Config domelamp=on", flats.Instrument.Name())
	assert.Equal(t, 100.0, flats.Detectors[0].ExpTime)
	assert.Equal(t, 9, flats.Pattern.Repeat)
	assert.Equal(t, "DomeFlats", flats.Target.Name)

	require.NoError(t, cals.Validate())
	est := cals.EstimateTime()
	assert.InDelta(t, 3*120.0+9*100.0, est.ShutterOpen, 1e-9)
}

func TestMira(t *testing.T) {
	b := Mira()
	assert.Equal(t, block.TypeFocus, b.Type())
	assert.Equal(t, "PMFM +/-350", b.Pattern.Name)
	require.Len(t, b.Detectors, 1)
	assert.Equal(t, DetectorSCAM, b.Detectors[0].Detector)
	assert.Equal(t, 5, b.Detectors[0].Coadds)
	require.NoError(t, b.Validate())

	cals, err := block.List{b}.Cals()
	require.NoError(t, err)
	assert.Empty(t, cals)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, New().Validate())
	c := New()
	c.DomeFlatLamp = "dim"
	assert.ErrorIs(t, c.Validate(), apperr.ErrInstrumentConfig)
}

func TestReadoutCap(t *testing.T) {
	assert.NoError(t, SpecDetector(10, detector.WithReadoutMode("MCDS32")).Validate())
	assert.ErrorIs(t, ScamDetector(10, detector.WithReadoutMode("MCDS33")).Validate(), apperr.ErrDetectorConfig)
}

func TestABBA(t *testing.T) {
	p, err := ABBA(offset.Pixels(10), true, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, p.Offsets[0].DY, 1e-9)
	assert.InDelta(t, -1.5, p.Offsets[1].DY, 1e-9)
}

func TestYAMLRoundTrip(t *testing.T) {
	c := New()
	c.DomeFlatLamp = "off"
	data, err := yaml.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: NIRES Instrument Config domelamp=off")

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, c, back)
}
