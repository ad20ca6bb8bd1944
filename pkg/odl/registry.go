package odl

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/block"
	"github.com/starford/odl/pkg/instrument/kcwi"
	"github.com/starford/odl/pkg/instrument/mosfire"
	"github.com/starford/odl/pkg/instrument/nires"
	"github.com/starford/odl/pkg/offset"
)

// DecodeFunc decodes a stored instrument setup.
type DecodeFunc func(node *yaml.Node) (block.InstrumentConfig, error)

// Registry maps instrument ids to setup decoders and holds the offset
// frames those instruments define.
type Registry struct {
	decoders map[string]DecodeFunc
	frames   offset.Frames
}

// NewRegistry returns an empty registry that knows only the sky frame.
func NewRegistry() *Registry {
	return &Registry{decoders: map[string]DecodeFunc{}, frames: offset.NewFrames()}
}

// DefaultRegistry knows KCWI, MOSFIRE and NIRES.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(kcwi.Instrument, DecodeWithDefaults(kcwi.New), kcwi.Frames()...)
	r.Register(mosfire.Instrument, DecodeWithDefaults(func() mosfire.Config { return mosfire.New("Y", "") }),
		mosfire.Frames()...)
	r.Register(nires.Instrument, DecodeWithDefaults(nires.New), nires.Frames()...)
	return r
}

// Register adds an instrument. Ids are case insensitive.
func (r *Registry) Register(instrument string, dec DecodeFunc, frames ...*offset.Frame) {
	r.decoders[strings.ToUpper(instrument)] = dec
	r.frames.Add(frames...)
}

// Instruments lists the registered ids in sorted order.
func (r *Registry) Instruments() []string {
	out := make([]string, 0, len(r.decoders))
	for name := range r.decoders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Frames returns the frames of all registered instruments plus the sky
// frame.
func (r *Registry) Frames() offset.Frames { return r.frames }

// DecodeInstrument picks the decoder named by the node's "instrument" key.
func (r *Registry) DecodeInstrument(node *yaml.Node) (block.InstrumentConfig, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: instrument config must be a mapping", node.Line)
	}
	var name string
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "instrument" {
			name = node.Content[i+1].Value
			break
		}
	}
	dec, ok := r.decoders[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (line %d)", apperr.ErrUnknownInstrument, name, node.Line)
	}
	ic, err := dec(node)
	if err != nil {
		return nil, fmt.Errorf("decode %s config: %w", name, err)
	}
	return ic, nil
}

// DecodeWithDefaults returns a decoder that starts from the setup built by
// defaults and overrides the fields present in the node.
func DecodeWithDefaults[T block.InstrumentConfig](defaults func() T) DecodeFunc {
	return func(node *yaml.Node) (block.InstrumentConfig, error) {
		c := defaults()
		if err := node.Decode(&c); err != nil {
			return nil, err
		}
		return c, nil
	}
}
