package mosfire

import (
	"github.com/starford/odl/pkg/alignment"
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/offset"
)

// Detector returns a MOSFIRE recipe of exptime seconds, CDS with one coadd
// unless opts say otherwise.
func Detector(exptime float64, opts ...detector.Option) detector.Config {
	return detector.New(Instrument, "", append([]detector.Option{detector.WithExpTime(exptime)}, opts...)...)
}

// DefaultAcq is the mask alignment exposure for most targets.
func DefaultAcq() detector.Config {
	return Detector(7, detector.WithCoadds(3))
}

// BrightAcq is the mask alignment exposure for bright targets.
func BrightAcq() detector.Config {
	return Detector(2, detector.WithCoadds(5))
}

// MaskAlign returns the mask alignment for the setup's filter.
func (c Config) MaskAlign(bright, takeSky bool) alignment.Alignment {
	acq := DefaultAcq()
	if bright {
		acq = BrightAcq()
	}
	return alignment.Mask(acq, c.Filter, takeSky, bright)
}

// Frame names.
const (
	FrameDetector = "MOSFIRE Detector"
	FrameSlit     = "MOSFIRE Slit"
)

// DetectorFrame is the detector pixel frame, 0.1798 arcsec per pixel.
func DetectorFrame() *offset.Frame { return offset.MustInstrumentFrame(FrameDetector, 0.1798) }

// SlitFrame is the slit frame, 0.1798 arcsec per pixel.
func SlitFrame() *offset.Frame { return offset.MustInstrumentFrame(FrameSlit, 0.1798) }

// Frames returns the MOSFIRE offset frames.
func Frames() []*offset.Frame { return []*offset.Frame{DetectorFrame(), SlitFrame()} }

// DefaultNod is the ABBA nod amplitude in arcseconds.
const DefaultNod = 1.25

// ABBA nods along the slit.
func ABBA(nod offset.Quantity, guide bool, repeat int) (*offset.Pattern, error) {
	return offset.ABBA(SlitFrame(), nod, guide, repeat)
}

// Long2pos is the long2pos calibration mask pattern: two slit positions on
// each side of the field.
func Long2pos(guide bool, repeat int) (*offset.Pattern, error) {
	frame := DetectorFrame()
	moves := []struct {
		dx, dy float64
		name   string
	}{
		{+45, -23, "A"},
		{+45, -9, "B"},
		{-45, +9, "A"},
		{-45, +23, "B"},
	}
	offsets := make([]offset.TelescopeOffset, 0, len(moves))
	for _, m := range moves {
		o, err := offset.New(offset.Arcsec(m.dx), offset.Arcsec(m.dy), frame, offset.Named(m.name), offset.Guided(guide))
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, o)
	}
	return offset.NewPattern("long2pos", repeat, offsets...)
}
