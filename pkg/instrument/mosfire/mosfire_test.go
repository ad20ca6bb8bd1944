package mosfire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/starford/odl/pkg/alignment"
	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/block"
	"github.com/starford/odl/pkg/offset"
)

func TestName(t *testing.T) {
	tests := []struct {
		name string
		c    Config
		want string
	}{
		{"long slit", New("J", ""), "longslit_46x0.7 J-spectroscopy"},
		{"align", Config{Mode: ModeSpectroscopy, Filter: "H", Mask: "cosmos_1", AlignMask: true}, "cosmos_1-align H-spectroscopy"},
		{"mira", Config{Mode: ModeImaging, Filter: "K", MiraMask: true}, "Mira K-imaging"},
		{"arcs", New("K", "").arcSetup(LampNe), "longslit_46x0.7 K-spectroscopy arclamp=Ne"},
		{"flats off", New("K", "").domeFlatSetup(true), "longslit_46x0.7 K-spectroscopy domelamp=off"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Name())
		})
	}
}

func TestCalsNonK(t *testing.T) {
	cals, err := New("Y", "").Cals()
	require.NoError(t, err)
	require.Len(t, cals, 1)
	assert.Equal(t, 17.0, cals[0].Detectors[0].ExpTime)
	assert.Equal(t, 7, cals[0].Pattern.Repeat)
	assert.Equal(t, "DomeFlats", cals[0].Target.Name)
	assert.NoError(t, cals.Validate())
}

func TestCalsK(t *testing.T) {
	sci := New("K", "")
	cals, err := sci.Cals()
	require.NoError(t, err)
	require.Len(t, cals, 4)

	names := make([]string, 0, len(cals))
	for _, b := range cals {
		names = append(names, b.Instrument.Name())
		assert.Equal(t, block.TypeCalibration, b.Type())
	}
	assert.Equal(t, []string{
		"longslit_46x0.7 K-spectroscopy domelamp=on",
		"longslit_46x0.7 K-spectroscopy domelamp=off",
		"longslit_46x0.7 K-spectroscopy arclamp=Ne",
		"longslit_46x0.7 K-spectroscopy arclamp=Ar",
	}, names)
	assert.Equal(t, 11.0, cals[0].Detectors[0].ExpTime)
	assert.Equal(t, 1.0, cals[2].Detectors[0].ExpTime)
	assert.Equal(t, 2, cals[2].Pattern.Repeat)
	assert.Equal(t, New("K", ""), sci)
}

func TestCalsUnknownFilter(t *testing.T) {
	_, err := New("NB1061", "").Cals()
	assert.ErrorIs(t, err, apperr.ErrInstrumentConfig)
}

func TestSeqCals(t *testing.T) {
	seq, err := New("K", "").SeqCals()
	require.NoError(t, err)
	require.Len(t, seq, 4)
	require.NoError(t, seq.Validate())
	// 7*11 on + 7*11 off + 2*1 Ne + 2*1 Ar
	assert.InDelta(t, 158.0, seq.EstimateTime().ShutterOpen, 1e-9)

	seq, err = New("J", "").SeqCals()
	require.NoError(t, err)
	assert.Len(t, seq, 1)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, New("H", "").Validate())
	assert.NoError(t, Imaging("K").Validate())
	assert.ErrorIs(t, New("Z", "").Validate(), apperr.ErrInstrumentConfig)

	c := New("J", "")
	c.Mode = "polarimetry"
	assert.ErrorIs(t, c.Validate(), apperr.ErrInstrumentConfig)
}

func TestAcquisition(t *testing.T) {
	acq := DefaultAcq()
	assert.Equal(t, 7.0, acq.ExpTime)
	assert.Equal(t, 3, acq.Coadds)
	bright := BrightAcq()
	assert.Equal(t, 2.0, bright.ExpTime)
	assert.Equal(t, 5, bright.Coadds)

	a := New("J", "").MaskAlign(true, false)
	assert.Equal(t, alignment.KindMask, a.Kind)
	assert.Equal(t, "J", a.Filter)
	assert.Equal(t, "Mask Align (MOSFIRE 2s (CDS, 5 coadds) x1) bright", a.Name())
	assert.NoError(t, a.Validate())
}

func TestPatterns(t *testing.T) {
	abba, err := ABBA(offset.Arcsec(DefaultNod), true, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, abba.Steps())
	assert.Equal(t, FrameSlit, abba.Offsets[0].Frame.Name)

	l2p, err := Long2pos(true, 1)
	require.NoError(t, err)
	require.Equal(t, 4, l2p.Len())
	assert.Equal(t, 45.0, l2p.Offsets[0].DX)
	assert.Equal(t, -23.0, l2p.Offsets[0].DY)
	assert.Equal(t, FrameDetector, l2p.Offsets[3].Frame.Name)
}

func TestYAMLRoundTrip(t *testing.T) {
	c := New("K", "cosmos_1")
	c.AlignMask = true
	data, err := yaml.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), "instrument: MOSFIRE")

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, c, back)
}
