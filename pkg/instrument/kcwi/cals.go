package kcwi

import (
	"fmt"

	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/block"
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/instrument"
	"github.com/starford/odl/pkg/offset"
	"github.com/starford/odl/pkg/target"
)

// Calibration repeat counts.
const (
	biasFrames     = 7
	domeFlatFrames = 3
	domeFlatTime   = 100
)

func calBlock(tgt *target.Target, repeat int, ic Config, det detector.Config) *block.Block {
	return block.Calibration(tgt, offset.Stare(repeat, false), ic, []detector.Config{det})
}

// ContBars is the continuum lamp through the medium bars mask.
func (c Config) ContBars() *block.Block {
	ic := c
	ic.CalObj, ic.ArcLamp = CalObjMedBarsA, LampCont
	return calBlock(nil, 1, ic, BlueDetector(lampExpTimes[LampCont]))
}

// Arcs is an arc lamp exposure through the flat field position.
func (c Config) Arcs(lamp string) (*block.Block, error) {
	exptime, ok := lampExpTimes[lamp]
	if !ok {
		return nil, fmt.Errorf("%w: unknown KCWI arc lamp %q", apperr.ErrInstrumentConfig, lamp)
	}
	ic := c
	ic.ArcLamp, ic.CalObj = lamp, CalObjFlatA
	return calBlock(nil, 1, ic, BlueDetector(exptime)), nil
}

// Bias is a set of zero second dark frames.
func (c Config) Bias() *block.Block {
	ic := c
	ic.Label = "bias"
	return calBlock(nil, biasFrames, ic, BlueDetector(0, detector.Dark()))
}

// DomeFlats is a set of dome flats, lamp on unless off is set.
func (c Config) DomeFlats(off bool) *block.Block {
	ic := c
	ic.DomeFlatLamp = instrument.Lamp(off)
	return calBlock(target.DomeFlats(0), domeFlatFrames, ic, BlueDetector(domeFlatTime))
}

// Calibrations returns the recipe for this setup: continuum bars, FeAr,
// ThAr and continuum arcs and bias when internal is set, then dome flats
// when domeflats is set.
func (c Config) Calibrations(internal, domeflats bool) (block.List, error) {
	var cals block.List
	if internal {
		cals = append(cals, c.ContBars())
		for _, lamp := range []string{LampFeAr, LampThAr, LampCont} {
			arc, err := c.Arcs(lamp)
			if err != nil {
				return nil, err
			}
			cals = append(cals, arc)
		}
		cals = append(cals, c.Bias())
	}
	if domeflats {
		cals = append(cals, c.DomeFlats(false))
	}
	return cals, nil
}

// Cals returns the full recipe.
func (c Config) Cals() (block.List, error) {
	return c.Calibrations(true, true)
}
