package parser

import (
	"strings"
	"testing"

	"github.com/starford/odl/internal/testutil/fixtures"
	"github.com/starford/odl/pkg/odl"
)

func TestParse_OneDefinitionPerObject(t *testing.T) {
	r, err := Parse([]byte(fixtures.Program), odl.DefaultRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct{ col, name string }{
		{odl.KeyTargets, "NGC 1068"},
		{odl.KeyOffsetPatterns, "dither"},
		{odl.KeyInstrumentConfigs, "longslit_46x0.7 H-spectroscopy"},
		{odl.KeyDetectorConfigs, r.Document.DetectorConfigs[0].Name()},
		{odl.KeyObservingBlocks, fixtures.BlockID},
	}
	if len(r.Definitions) != len(want) {
		t.Fatalf("definitions = %d, want %d", len(r.Definitions), len(want))
	}
	for i, w := range want {
		d := r.Definitions[i]
		if d.Collection != w.col || d.Name != w.name {
			t.Errorf("definition %d = %s/%q, want %s/%q", i, d.Collection, d.Name, w.col, w.name)
		}
	}
}

func TestParse_InstrumentTagged(t *testing.T) {
	r, err := Parse([]byte(fixtures.Program), odl.DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range r.Definitions {
		switch d.Collection {
		case odl.KeyTargets, odl.KeyOffsetPatterns:
			if d.Instrument != "" {
				t.Errorf("%s: instrument = %q, want none", d.Collection, d.Instrument)
			}
		default:
			if d.Instrument != "MOSFIRE" {
				t.Errorf("%s: instrument = %q, want MOSFIRE", d.Collection, d.Instrument)
			}
		}
	}
}

func TestParse_BodyIsSingleObjectDocument(t *testing.T) {
	r, err := Parse([]byte(fixtures.Program), odl.DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range r.Definitions {
		doc, err := odl.Parse([]byte(d.Body), odl.DefaultRegistry())
		if err != nil {
			t.Fatalf("%s body does not parse: %v", d.Name, err)
		}
		if doc.Len() != 1 {
			t.Errorf("%s body holds %d objects, want 1", d.Name, doc.Len())
		}
		if !strings.Contains(d.Body, d.Collection+":") {
			t.Errorf("%s body lacks its collection key:\n%s", d.Name, d.Body)
		}
	}
}

func TestParse_BlockRefs(t *testing.T) {
	r, err := Parse([]byte(fixtures.Program), odl.DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	blk := r.Definitions[len(r.Definitions)-1]
	want := []string{"NGC 1068", "dither", "longslit_46x0.7 H-spectroscopy", r.Document.DetectorConfigs[0].Name()}
	if strings.Join(blk.Refs, "|") != strings.Join(want, "|") {
		t.Errorf("refs = %v, want %v", blk.Refs, want)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("- Targets: {{{"), odl.DefaultRegistry()); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestParse_Empty(t *testing.T) {
	r, err := Parse([]byte("[]"), odl.DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Definitions) != 0 {
		t.Errorf("definitions = %d, want 0", len(r.Definitions))
	}
}
