package mosfire

import (
	"fmt"

	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/block"
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/instrument"
	"github.com/starford/odl/pkg/offset"
	"github.com/starford/odl/pkg/target"
)

// Arc lamps.
const (
	LampNe = "Ne"
	LampAr = "Ar"
)

// domeFlatExpTimes are dome flat exposure times in seconds by filter.
var domeFlatExpTimes = map[string]float64{"Y": 17, "J": 11, "H": 11, "K": 11}

const (
	arcExpTime     = 1
	arcFrames      = 2
	domeFlatFrames = 7
)

func (c Config) arcSetup(lamp string) Config {
	c.ArcLamp = lamp
	return c
}

func (c Config) domeFlatSetup(off bool) Config {
	c.DomeFlatLamp = instrument.Lamp(off)
	return c
}

func (c Config) domeFlatExpTime() (float64, error) {
	exptime, ok := domeFlatExpTimes[c.Filter]
	if !ok {
		return 0, fmt.Errorf("%w: no dome flat exposure time for filter %q", apperr.ErrInstrumentConfig, c.Filter)
	}
	return exptime, nil
}

// Arcs is a pair of one second exposures of the named lamp.
func (c Config) Arcs(lamp string) *block.Block {
	return block.Calibration(nil, offset.Stare(arcFrames, false), c.arcSetup(lamp),
		[]detector.Config{Detector(arcExpTime)})
}

// DomeFlats is a set of dome flats, lamp on unless off is set.
func (c Config) DomeFlats(off bool) (*block.Block, error) {
	exptime, err := c.domeFlatExpTime()
	if err != nil {
		return nil, err
	}
	return block.Calibration(target.DomeFlats(0), offset.Stare(domeFlatFrames, false), c.domeFlatSetup(off),
		[]detector.Config{Detector(exptime)}), nil
}

// Cals returns dome flats and, in K band, lamp off flats and Ne and Ar arcs.
func (c Config) Cals() (block.List, error) {
	on, err := c.DomeFlats(false)
	if err != nil {
		return nil, err
	}
	cals := block.List{on}
	if c.Filter == "K" {
		off, err := c.DomeFlats(true)
		if err != nil {
			return nil, err
		}
		cals = append(cals, off, c.Arcs(LampNe), c.Arcs(LampAr))
	}
	return cals, nil
}

// SeqCals returns the calibration recipe as a sequence.
func (c Config) SeqCals() (block.Sequence, error) {
	exptime, err := c.domeFlatExpTime()
	if err != nil {
		return nil, err
	}
	stare := offset.Stare(1, false)
	seq := block.Sequence{
		{Pattern: stare, Detector: Detector(exptime), Instrument: c.domeFlatSetup(false), Repeat: domeFlatFrames},
	}
	if c.Filter == "K" {
		seq = append(seq,
			&block.SequenceElement{Pattern: stare, Detector: Detector(exptime), Instrument: c.domeFlatSetup(true), Repeat: domeFlatFrames},
			&block.SequenceElement{Pattern: stare, Detector: Detector(arcExpTime), Instrument: c.arcSetup(LampNe), Repeat: arcFrames},
			&block.SequenceElement{Pattern: stare, Detector: Detector(arcExpTime), Instrument: c.arcSetup(LampAr), Repeat: arcFrames},
		)
	}
	return seq, nil
}
