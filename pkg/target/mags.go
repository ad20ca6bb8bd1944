package target

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Magnitude is the brightness of a target in one band.
type Magnitude struct {
	Band  string
	Value float64
}

// Mags is an ordered band to magnitude mapping. Order is preserved through
// YAML so star-list comments come out in the order they were given.
type Mags []Magnitude

// Get returns the magnitude in band.
func (m Mags) Get(band string) (float64, bool) {
	for _, mag := range m {
		if mag.Band == band {
			return mag.Value, true
		}
	}
	return 0, false
}

// Set adds or replaces the magnitude in band.
func (m *Mags) Set(band string, value float64) {
	for i := range *m {
		if (*m)[i].Band == band {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, Magnitude{Band: band, Value: value})
}

// MarshalYAML writes the magnitudes as a mapping in insertion order.
func (m Mags) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, mag := range m {
		var value yaml.Node
		if err := value.Encode(mag.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: mag.Band},
			&value,
		)
	}
	return node, nil
}

// UnmarshalYAML reads a band mapping, keeping document order. Null
// magnitudes are skipped.
func (m *Mags) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: magnitudes must be a mapping", node.Line)
	}
	out := make(Mags, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		band, value := node.Content[i], node.Content[i+1]
		if value.Tag == "!!null" {
			continue
		}
		var v float64
		if err := value.Decode(&v); err != nil {
			return fmt.Errorf("magnitude %s: %w", band.Value, err)
		}
		out = append(out, Magnitude{Band: band.Value, Value: v})
	}
	*m = out
	return nil
}
