package block

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/olekukonko/tablewriter"

	"github.com/starford/odl/pkg/apperr"
)

// List is an ordered program of blocks.
type List []*Block

// Validate checks every block in order.
func (l List) Validate() error {
	for i, b := range l {
		if b == nil {
			return fmt.Errorf("%w: element %d is not an observing block", apperr.ErrBlock, i)
		}
		if err := b.Validate(); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}

// EstimateTime sums the estimates of all blocks.
func (l List) EstimateTime() Estimate {
	var total Estimate
	for _, b := range l {
		if b != nil {
			total = total.Add(b.EstimateTime())
		}
	}
	return total
}

// InstrumentConfigs returns the distinct instrument setups of the science
// side of the program in first-seen order. Setups are compared by value.
func (l List) InstrumentConfigs() []InstrumentConfig {
	var out []InstrumentConfig
	for _, b := range l {
		if b == nil || b.Instrument == nil || b.typ == TypeCalibration || b.typ == TypeFocus {
			continue
		}
		if !containsConfig(out, b.Instrument) {
			out = append(out, b.Instrument)
		}
	}
	return out
}

func containsConfig(seen []InstrumentConfig, ic InstrumentConfig) bool {
	for _, s := range seen {
		if reflect.DeepEqual(s, ic) {
			return true
		}
	}
	return false
}

// Cals concatenates the calibrations of every distinct instrument setup.
func (l List) Cals() (List, error) {
	var out List
	for _, ic := range l.InstrumentConfigs() {
		cals, err := ic.Cals()
		if err != nil {
			return nil, fmt.Errorf("cals for %s: %w", ic.Name(), err)
		}
		out = append(out, cals...)
	}
	return out, nil
}

// Sequence flattens the list into sequence elements, one per detector of
// each block.
func (l List) Sequence() (Sequence, error) {
	var seq Sequence
	for i, b := range l {
		if b == nil {
			return nil, fmt.Errorf("%w: element %d is not an observing block", apperr.ErrBlock, i)
		}
		repeat := 1
		if b.Pattern != nil && b.Pattern.Repeat > 1 {
			repeat = b.Pattern.Repeat
		}
		for _, d := range b.Detectors {
			seq = append(seq, &SequenceElement{
				Pattern:    b.Pattern,
				Detector:   d,
				Instrument: b.Instrument,
				Repeat:     repeat,
			})
		}
	}
	return seq, nil
}

// Table writes the list as a table of targets, patterns and configs.
func (l List) Table(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("Target", "Pattern", "InstrumentConfig", "DetectorConfig", "AlignmentMethod")
	for _, b := range l {
		if b == nil {
			continue
		}
		row := []string{
			targetName(b.Target),
			patternName(b.Pattern),
			instrumentName(b.Instrument),
			detectorNames(b.Detectors),
			b.Align.Name(),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func (l List) String() string {
	var buf bytes.Buffer
	if err := l.Table(&buf); err != nil {
		return err.Error()
	}
	return buf.String()
}
