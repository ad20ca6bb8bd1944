package nires

import (
	"github.com/starford/odl/pkg/block"
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/instrument"
	"github.com/starford/odl/pkg/offset"
	"github.com/starford/odl/pkg/target"
)

const (
	arcExpTime      = 120
	arcFrames       = 3
	domeFlatExpTime = 100
	domeFlatFrames  = 9
)

// Arcs is a set of internal arc exposures on the spectrograph.
func (c Config) Arcs() *block.Block {
	ic := c
	ic.ArcLamp = ArcLampNIRES
	return block.Calibration(nil, offset.Stare(arcFrames, false), ic,
		[]detector.Config{SpecDetector(arcExpTime)})
}

// DomeFlats is a set of dome flats, lamp on unless off is set.
func (c Config) DomeFlats(off bool) *block.Block {
	ic := c
	ic.DomeFlatLamp = instrument.Lamp(off)
	return block.Calibration(target.DomeFlats(0), offset.Stare(domeFlatFrames, false), ic,
		[]detector.Config{SpecDetector(domeFlatExpTime)})
}

// Cals returns arcs then dome flats.
func (c Config) Cals() (block.List, error) {
	return block.List{c.Arcs(), c.DomeFlats(false)}, nil
}

// Mira is the focus block: the pupil mask focus modulated on the slit
// viewing camera.
func Mira() *block.Block {
	return block.Focus(nil, offset.PMFM(350, 1), New(),
		[]detector.Config{ScamDetector(2, detector.WithCoadds(5))})
}
