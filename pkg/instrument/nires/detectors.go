package nires

import (
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/offset"
)

// Detector names.
const (
	DetectorSpec = "Spec"
	DetectorSCAM = "SCAM"
)

// SpecDetector returns a spectrograph recipe of exptime seconds.
func SpecDetector(exptime float64, opts ...detector.Option) detector.Config {
	return newDetector(DetectorSpec, exptime, opts)
}

// ScamDetector returns a slit viewing camera recipe of exptime seconds.
func ScamDetector(exptime float64, opts ...detector.Option) detector.Config {
	return newDetector(DetectorSCAM, exptime, opts)
}

func newDetector(name string, exptime float64, opts []detector.Option) detector.Config {
	return detector.New(Instrument, name, append([]detector.Option{detector.WithExpTime(exptime)}, opts...)...)
}

// Frame names.
const (
	FrameSCAM = "NIRES Scam Detector"
	FrameSlit = "NIRES Slit"
)

// ScamFrame is the slit viewing camera frame, 0.123 arcsec per pixel.
func ScamFrame() *offset.Frame { return offset.MustInstrumentFrame(FrameSCAM, 0.123) }

// SlitFrame is the slit frame, 0.15 arcsec per pixel.
func SlitFrame() *offset.Frame { return offset.MustInstrumentFrame(FrameSlit, 0.15) }

// Frames returns the NIRES offset frames.
func Frames() []*offset.Frame { return []*offset.Frame{ScamFrame(), SlitFrame()} }

// ABBA nods along the slit.
func ABBA(nod offset.Quantity, guide bool, repeat int) (*offset.Pattern, error) {
	return offset.ABBA(SlitFrame(), nod, guide, repeat)
}
