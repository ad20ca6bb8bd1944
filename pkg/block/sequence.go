package block

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/offset"
)

// SequenceElement is one line of an execution table: a pattern run with one
// detector config under one instrument setup.
type SequenceElement struct {
	Pattern    *offset.Pattern
	Detector   detector.Config
	Instrument InstrumentConfig
	Repeat     int
}

// Validate checks that the element is complete.
func (e *SequenceElement) Validate() error {
	if e.Pattern == nil {
		return fmt.Errorf("%w: element has no offset pattern", apperr.ErrSequence)
	}
	if e.Repeat < 1 {
		return fmt.Errorf("%w: repeat must be at least 1, got %d", apperr.ErrSequence, e.Repeat)
	}
	if err := e.Pattern.Validate(); err != nil {
		return err
	}
	if e.Instrument != nil {
		if err := e.Instrument.Validate(); err != nil {
			return err
		}
	}
	return e.Detector.Validate()
}

// EstimateTime counts exposure time only, for every position and repeat.
func (e *SequenceElement) EstimateTime() Estimate {
	if e.Pattern == nil {
		return Estimate{}
	}
	t := float64(e.Pattern.Len()) * e.Detector.ExpTime * float64(e.Detector.NExp) * float64(e.Repeat)
	return Estimate{ShutterOpen: t, WallClock: t}
}

// Sequence is an ordered list of sequence elements.
type Sequence []*SequenceElement

// Validate checks every element in order.
func (s Sequence) Validate() error {
	for i, e := range s {
		if e == nil {
			return fmt.Errorf("%w: element %d is not a sequence element", apperr.ErrSequence, i)
		}
		if err := e.Validate(); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// EstimateTime sums the element estimates.
func (s Sequence) EstimateTime() Estimate {
	var total Estimate
	for _, e := range s {
		if e != nil {
			total = total.Add(e.EstimateTime())
		}
	}
	return total
}

// Table writes the sequence as a table.
func (s Sequence) Table(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("Pattern", "Repeat", "DetectorConfig", "InstrumentConfig")
	for _, e := range s {
		if e == nil {
			continue
		}
		row := []string{patternName(e.Pattern), strconv.Itoa(e.Repeat), e.Detector.Name(), instrumentName(e.Instrument)}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
