// Package offset models telescope moves: coordinate frames, single offsets
// and ordered, repeatable offset patterns.
package offset

import (
	"fmt"
	"sort"

	"github.com/starford/odl/pkg/apperr"
)

// FrameKind distinguishes the families of offset frames. Offsets in one
// pattern must share a kind.
type FrameKind string

// Frame kinds.
const (
	KindSky        FrameKind = "SkyFrame"
	KindInstrument FrameKind = "InstrumentFrame"
)

// SkyFrameName is the name under which the sky frame is recorded.
const SkyFrameName = "SkyFrame"

// Frame is a coordinate system in which a telescope move is expressed.
// Frames are built once and shared by pointer between offsets.
type Frame struct {
	Name        string
	Kind        FrameKind
	Scale       float64 // arcsec per ScaleUnit
	ScaleUnit   Unit
	OffsetAngle float64 // degrees
	XKeyword    string
	YKeyword    string
}

// SkyFrame returns the RA/Dec offset frame.
func SkyFrame() *Frame {
	return &Frame{
		Name:      SkyFrameName,
		Kind:      KindSky,
		Scale:     1.3751,
		ScaleUnit: UnitMillimeter,
		XKeyword:  "RAOFF",
		YKeyword:  "DECOFF",
	}
}

// NewInstrumentFrame returns a detector or slit frame with the given pixel
// scale in arcsec/pixel. Rotated instrument frames are not supported.
func NewInstrumentFrame(name string, scale, offsetAngle float64) (*Frame, error) {
	if offsetAngle != 0 {
		return nil, fmt.Errorf("%w: %s: offset angle %g deg is not supported", apperr.ErrFrame, name, offsetAngle)
	}
	return &Frame{
		Name:      name,
		Kind:      KindInstrument,
		Scale:     scale,
		ScaleUnit: UnitPixel,
		XKeyword:  "INSTXOFF",
		YKeyword:  "INSTYOFF",
	}, nil
}

// MustInstrumentFrame is NewInstrumentFrame for unrotated frames declared in
// code.
func MustInstrumentFrame(name string, scale float64) *Frame {
	f, err := NewInstrumentFrame(name, scale, 0)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Frame) check() error {
	if f == nil {
		return fmt.Errorf("%w: offset has no frame", apperr.ErrFrame)
	}
	switch f.Kind {
	case KindSky, KindInstrument:
		return nil
	default:
		return fmt.Errorf("%w: %q is not a known offset frame", apperr.ErrFrame, f.Name)
	}
}

// Frames is a set of frames addressable by name, used to resolve the frame
// names found in stored patterns.
type Frames map[string]*Frame

// NewFrames returns a set holding the sky frame plus the given frames.
func NewFrames(frames ...*Frame) Frames {
	fs := Frames{SkyFrameName: SkyFrame()}
	fs.Add(frames...)
	return fs
}

// Add registers frames, replacing any with the same name.
func (fs Frames) Add(frames ...*Frame) {
	for _, f := range frames {
		fs[f.Name] = f
	}
}

// Lookup returns the frame registered under name.
func (fs Frames) Lookup(name string) (*Frame, error) {
	if name == "" {
		name = SkyFrameName
	}
	f, ok := fs[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown frame %q", apperr.ErrFrame, name)
	}
	return f, nil
}

// Names lists the registered frame names in sorted order.
func (fs Frames) Names() []string {
	names := make([]string, 0, len(fs))
	for n := range fs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
