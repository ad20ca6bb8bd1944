package target

import (
	"fmt"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/astro"
)

// coordParsers convert text coordinates to degrees. RA text is in hours.
var coordParsers = map[string]func(string) (float64, error){
	"RA":  astro.ParseRA,
	"Dec": astro.ParseDec,
}

// UnmarshalYAML accepts RA and Dec either as decimal degrees or as
// sexagesimal text ("00:42:44.3", "+41 16 09").
func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	type plain Target
	if node.Kind == yaml.MappingNode {
		n := *node
		n.Content = slices.Clone(node.Content)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, n.Content[i+1]
			parse, ok := coordParsers[key]
			if !ok || val.Kind != yaml.ScalarNode || val.ShortTag() != "!!str" {
				continue
			}
			deg, err := parse(val.Value)
			if err != nil {
				return fmt.Errorf("%w: line %d: %s: %w", apperr.ErrTarget, val.Line, key, err)
			}
			n.Content[i+1] = &yaml.Node{
				Kind:  yaml.ScalarNode,
				Tag:   "!!float",
				Value: strconv.FormatFloat(deg, 'g', -1, 64),
				Line:  val.Line,
			}
		}
		node = &n
	}
	return node.Decode((*plain)(t))
}
