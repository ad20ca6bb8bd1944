package kcwi

import (
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/offset"
)

// Detector names.
const (
	DetectorBlue = "blue"
	DetectorRed  = "red"
	DetectorFPC  = "FPC"
)

// BlueDetector returns a blue arm CCD recipe of exptime seconds.
func BlueDetector(exptime float64, opts ...detector.Option) detector.Config {
	return newDetector(DetectorBlue, exptime, opts)
}

// RedDetector returns a red arm CCD recipe of exptime seconds.
func RedDetector(exptime float64, opts ...detector.Option) detector.Config {
	return newDetector(DetectorRed, exptime, opts)
}

// FPCDetector returns a focal plane camera recipe of exptime seconds.
func FPCDetector(exptime float64, opts ...detector.Option) detector.Config {
	return newDetector(DetectorFPC, exptime, opts)
}

func newDetector(name string, exptime float64, opts []detector.Option) detector.Config {
	return detector.New(Instrument, name, append([]detector.Option{detector.WithExpTime(exptime)}, opts...)...)
}

// Frame names.
const (
	FrameBlueDetector = "Blue Detector"
	FrameSmallSlicer  = "SmallSlicer"
	FrameMediumSlicer = "MediumSlicer"
	FrameLargeSlicer  = "LargeSlicer"
)

// Frames returns the KCWI offset frames. Scales are arcsec per pixel.
func Frames() []*offset.Frame {
	return []*offset.Frame{
		offset.MustInstrumentFrame(FrameBlueDetector, 0.1798),
		offset.MustInstrumentFrame(FrameSmallSlicer, 0.35),
		offset.MustInstrumentFrame(FrameMediumSlicer, 0.70),
		offset.MustInstrumentFrame(FrameLargeSlicer, 1.35),
	}
}
