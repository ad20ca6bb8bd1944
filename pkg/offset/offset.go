package offset

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/starford/odl/pkg/apperr"
)

// Bare numbers smaller than these are treated as exact zeros and do not
// trigger a unit warning.
const (
	negligibleArcsec  = 1e-6
	negligibleDegrees = 1e-1
)

// TelescopeOffset is one telescope move within a frame. DX and DY are in
// arcseconds, DR in degrees.
type TelescopeOffset struct {
	DX       float64
	DY       float64
	DR       float64
	Frame    *Frame
	Relative bool
	PosName  string
	Guide    bool
	PMFM     *int
}

type settings struct {
	dr       Quantity
	relative bool
	posname  string
	guide    bool
	pmfm     *int
}

// Option configures an offset built with New.
type Option func(*settings)

// WithRotation sets the rotator move.
func WithRotation(dr Quantity) Option {
	return func(s *settings) { s.dr = dr }
}

// Relative makes the move relative to the current position rather than to
// the base position.
func Relative() Option {
	return func(s *settings) { s.relative = true }
}

// Named sets the position name.
func Named(posname string) Option {
	return func(s *settings) { s.posname = posname }
}

// Guided sets whether the guider stays locked at this position. Offsets are
// guided unless told otherwise.
func Guided(guide bool) Option {
	return func(s *settings) { s.guide = guide }
}

// WithPMFM requests a PMFM (pupil mask focus modulation) value at this
// position.
func WithPMFM(value int) Option {
	return func(s *settings) { s.pmfm = &value }
}

// New builds an offset, normalizing dx and dy to arcseconds and the rotation
// to degrees.
func New(dx, dy Quantity, frame *Frame, opts ...Option) (TelescopeOffset, error) {
	s := settings{guide: true}
	for _, opt := range opts {
		opt(&s)
	}

	if err := frame.check(); err != nil {
		return TelescopeOffset{}, err
	}

	x, err := normalizeLinear("dx", dx, frame)
	if err != nil {
		return TelescopeOffset{}, err
	}
	y, err := normalizeLinear("dy", dy, frame)
	if err != nil {
		return TelescopeOffset{}, err
	}
	r, err := s.dr.toDegrees()
	if err != nil {
		return TelescopeOffset{}, err
	}
	if s.dr.Unit == UnitNone && math.Abs(s.dr.Value) > negligibleDegrees {
		apperr.Warn(apperr.WarnOffset, "no offset unit given for dr, assuming degrees",
			slog.Float64("dr", s.dr.Value))
	}

	return TelescopeOffset{
		DX:       x,
		DY:       y,
		DR:       r,
		Frame:    frame,
		Relative: s.relative,
		PosName:  s.posname,
		Guide:    s.guide,
		PMFM:     s.pmfm,
	}, nil
}

func normalizeLinear(axis string, q Quantity, frame *Frame) (float64, error) {
	if q.Unit == UnitNone && math.Abs(q.Value) > negligibleArcsec {
		apperr.Warn(apperr.WarnOffset, "no offset unit given for "+axis+", assuming arcseconds",
			slog.Float64(axis, q.Value))
	}
	return q.toArcsec(frame)
}

// Validate checks that the offset uses a known frame.
func (o TelescopeOffset) Validate() error {
	return o.Frame.check()
}

// String renders the offset as a fixed-width table row.
func (o TelescopeOffset) String() string {
	return fmt.Sprintf("%+6.1f|%+6.1f|%+8.1f|%8s|%6s",
		o.DX, o.DY, o.DR, o.PosName, strconv.FormatBool(o.Guide))
}

// Execute prints the keyword writes that would perform this move. It does
// not talk to any hardware.
func (o TelescopeOffset) Execute(w io.Writer) error {
	if err := o.Validate(); err != nil {
		return err
	}
	mode := "rel2base=t"
	if o.Relative {
		mode = "rel2curr=t"
	}
	if _, err := fmt.Fprintf(w, "%s.write(%g, %s)\n", o.Frame.XKeyword, o.DX, mode); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s.write(%g, %s)\n", o.Frame.YKeyword, o.DY, mode); err != nil {
		return err
	}
	if o.PMFM != nil {
		if _, err := fmt.Fprintf(w, "Set pmfm value to %d\n", *o.PMFM); err != nil {
			return err
		}
	}
	return nil
}

// Record is the stored form of an offset.
type Record struct {
	DX       float64 `yaml:"dx" json:"dx"`
	DY       float64 `yaml:"dy" json:"dy"`
	DR       float64 `yaml:"dr" json:"dr"`
	Frame    string  `yaml:"frame" json:"frame"`
	Relative bool    `yaml:"relative" json:"relative"`
	PosName  string  `yaml:"posname" json:"posname"`
	Guide    bool    `yaml:"guide" json:"guide"`
	PMFM     *int    `yaml:"pmfm,omitempty" json:"pmfm,omitempty"`
}

// UnmarshalYAML decodes a record, treating a missing guide flag as true.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	type plain Record
	p := plain{Guide: true, Frame: SkyFrameName}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = Record(p)
	return nil
}

// Record returns the stored form of o.
func (o TelescopeOffset) Record() Record {
	rec := Record{
		DX:       o.DX,
		DY:       o.DY,
		DR:       o.DR,
		Relative: o.Relative,
		PosName:  o.PosName,
		Guide:    o.Guide,
		PMFM:     o.PMFM,
	}
	if o.Frame != nil {
		rec.Frame = o.Frame.Name
	}
	return rec
}

// FromRecord rebuilds an offset, resolving its frame in frames. Stored
// values are already in arcseconds and degrees.
func FromRecord(rec Record, frames Frames) (TelescopeOffset, error) {
	frame, err := frames.Lookup(rec.Frame)
	if err != nil {
		return TelescopeOffset{}, err
	}
	opts := []Option{
		WithRotation(Degrees(rec.DR)),
		Named(rec.PosName),
		Guided(rec.Guide),
	}
	if rec.Relative {
		opts = append(opts, Relative())
	}
	if rec.PMFM != nil {
		opts = append(opts, WithPMFM(*rec.PMFM))
	}
	return New(Arcsec(rec.DX), Arcsec(rec.DY), frame, opts...)
}
