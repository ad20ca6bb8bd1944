package alignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/detector"
)

func TestNames(t *testing.T) {
	det := detector.New("MOSFIRE", "", detector.WithExpTime(10))
	assert.Equal(t, "Blind Align", Blind().Name())
	assert.Equal(t, "Guider Align", Guider(false).Name())
	assert.Equal(t, "Guider Align, faint", Guider(true).Name())
	assert.Equal(t, "Mask Align (MOSFIRE 10s (CDS, 1 coadds) x1)", Mask(det, "J", false, false).Name())
	assert.Equal(t, "Mask Align (MOSFIRE 10s (CDS, 1 coadds) x1) bright take sky", Mask(det, "J", true, true).Name())
	assert.Equal(t, "", Alignment{}.Name())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Alignment{}.Validate())
	assert.NoError(t, Blind().Validate())
	assert.ErrorIs(t, Alignment{Kind: "telepathy"}.Validate(), apperr.ErrAlignment)
	assert.ErrorIs(t, Alignment{Kind: KindMask}.Validate(), apperr.ErrAlignment)

	bad := detector.New("MOSFIRE", "", detector.WithReadoutMode("MCDS99"))
	err := Mask(bad, "K", false, false).Validate()
	assert.ErrorIs(t, err, apperr.ErrAlignment)
	assert.ErrorIs(t, err, apperr.ErrDetectorConfig)
}

func TestHeader(t *testing.T) {
	cards := Guider(true).Header()
	require.Len(t, cards, 1)
	assert.Equal(t, "ALNAME", cards[0].Name)
	assert.Equal(t, "Guider Align, faint", cards[0].Value)
}

func TestYAMLRoundTrip(t *testing.T) {
	det := detector.New("MOSFIRE", "", detector.WithExpTime(7), detector.WithCoadds(3))
	for _, a := range []Alignment{Blind(), Guider(true), Mask(det, "Y", true, false)} {
		data, err := yaml.Marshal(a)
		require.NoError(t, err)
		var back Alignment
		require.NoError(t, yaml.Unmarshal(data, &back))
		assert.Equal(t, a, back)
	}
}
