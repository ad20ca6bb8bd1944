package odl

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/odl/internal/testutil/warntest"
	"github.com/starford/odl/pkg/alignment"
	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/astro"
	"github.com/starford/odl/pkg/block"
	"github.com/starford/odl/pkg/detector"
	"github.com/starford/odl/pkg/instrument/kcwi"
	"github.com/starford/odl/pkg/instrument/mosfire"
	"github.com/starford/odl/pkg/instrument/nires"
	"github.com/starford/odl/pkg/offset"
	"github.com/starford/odl/pkg/target"
)

var cmpBlocks = cmp.AllowUnexported(block.Block{})

func sampleDocument(t *testing.T) *Document {
	t.Helper()
	m31 := target.New("M31", 10.6847, 41.2687)
	m31.RotMode = target.RotPA
	pa := 45.0
	m31.PA = &pa
	m31.Mag.Set("V", 3.44)

	abba, err := mosfire.ABBA(offset.Arcsec(mosfire.DefaultNod), true, 2)
	require.NoError(t, err)

	mos := mosfire.New("K", "")
	sci := block.Science(m31, abba, mos, []detector.Config{mosfire.Detector(120, detector.WithReadoutMode("MCDS16"))},
		block.WithAlignment(mos.MaskAlign(false, true)),
		block.WithGuideStar(astro.Coord{RA: 10.7, Dec: 41.3}),
		block.WithDRPArgs(map[string]any{"bkg": "auto"}))
	tell := block.Telluric(target.New("HIP 1234", 12.1, 40.2), offset.Stare(1, true), mos,
		[]detector.Config{mosfire.Detector(10)}, block.WithAlignment(alignment.Guider(false)))
	sci.Link(tell)

	kc := kcwi.New().WithBlue("BM", 4200)
	kb := block.Science(m31, offset.Stare(3, true), kc,
		[]detector.Config{kcwi.BlueDetector(600), kcwi.RedDetector(600)})

	return &Document{
		Targets:           target.List{m31},
		OffsetPatterns:    []*offset.Pattern{abba, offset.Stare(1, true), offset.PMFM(350, 2)},
		InstrumentConfigs: []block.InstrumentConfig{mos, kc, nires.New()},
		DetectorConfigs:   []detector.Config{mosfire.DefaultAcq(), kcwi.FPCDetector(5), nires.ScamDetector(2)},
		ObservingBlocks:   block.List{sci, tell, kb, nires.Mira()},
	}
}

func TestRoundTrip(t *testing.T) {
	doc := sampleDocument(t)
	data, err := Marshal(doc)
	require.NoError(t, err)

	back, err := Parse(data, DefaultRegistry())
	require.NoError(t, err)
	if diff := cmp.Diff(doc, back, cmpBlocks); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, doc.Len(), back.Len())
}

func TestMarshalSections(t *testing.T) {
	data, err := Marshal(sampleDocument(t))
	require.NoError(t, err)
	out := string(data)
	for _, key := range Keys {
		assert.Contains(t, out, "- "+key+":")
	}

	empty, err := Marshal(&Document{})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(empty))
}

func TestParseHandWritten(t *testing.T) {
	src := `
- Targets:
  - name: NGC 1068
    RA: 40.6696
    Dec: -0.0133
    equinox: 2000
- InstrumentConfigs:
  - instrument: kcwi
    slicer: small
  - instrument: MOSFIRE
    filter: H
- OffsetPatterns:
  - name: dither
    offsets:
      - {dx: 0, dy: 2, posname: A}
      - {dx: 0, dy: -2, posname: B, frame: MOSFIRE Slit}
- DetectorConfigs:
  - instrument: NIRES
    detector: Spec
    exptime: 300
    readoutmode: MCDS16
`
	doc, err := Parse([]byte(src), DefaultRegistry())
	require.ErrorIs(t, err, apperr.ErrFrame, "mixed frame kinds in one pattern")
	assert.Nil(t, doc)

	src = strings.Replace(src, ", frame: MOSFIRE Slit", "", 1)
	doc, err = Parse([]byte(src), DefaultRegistry())
	require.NoError(t, err)

	require.Len(t, doc.InstrumentConfigs, 2)
	k, ok := doc.InstrumentConfigs[0].(kcwi.Config)
	require.True(t, ok)
	assert.Equal(t, "small", k.Slicer)
	assert.Equal(t, "BH3", k.BlueGrating, "defaults fill unset fields")

	m := doc.InstrumentConfigs[1].(mosfire.Config)
	assert.Equal(t, "longslit_46x0.7 H-spectroscopy", m.Name())

	require.Len(t, doc.OffsetPatterns, 1)
	assert.Equal(t, 1, doc.OffsetPatterns[0].Repeat)
	assert.True(t, doc.OffsetPatterns[0].Offsets[0].Guide)

	require.Len(t, doc.DetectorConfigs, 1)
	assert.Equal(t, detector.FamilyIR, doc.DetectorConfigs[0].Family)
	assert.Equal(t, 1, doc.DetectorConfigs[0].Coadds)
	require.NoError(t, doc.Validate())
}

func TestParseSexagesimalTargets(t *testing.T) {
	src := `
- Targets:
  - name: M31
    RA: '00:42:44.3'
    Dec: '+41:16:09'
    equinox: 2000
  - name: NGC 1068
    RA: 40.6696
    Dec: -0.0133
`
	doc, err := Parse([]byte(src), DefaultRegistry())
	require.NoError(t, err)
	require.Len(t, doc.Targets, 2)
	assert.InDelta(t, 10.684583, *doc.Targets[0].RA, 1e-6)
	assert.InDelta(t, 41.269167, *doc.Targets[0].Dec, 1e-6)
	assert.Equal(t, 40.6696, *doc.Targets[1].RA)

	_, err = Parse([]byte(strings.Replace(src, "00:42:44.3", "00:61:00", 1)), DefaultRegistry())
	assert.ErrorIs(t, err, apperr.ErrTarget)
}

func TestMarshalRejectsNilEntries(t *testing.T) {
	_, err := Marshal(&Document{OffsetPatterns: []*offset.Pattern{nil}})
	assert.ErrorIs(t, err, apperr.ErrOffset)

	_, err = Marshal(&Document{ObservingBlocks: []*block.Block{nil}})
	assert.ErrorIs(t, err, apperr.ErrBlock)

	ok, err := NewClient().Upload(context.Background(), &Document{ObservingBlocks: []*block.Block{nil}})
	assert.ErrorIs(t, err, apperr.ErrBlock)
	assert.False(t, ok)
}

func TestParseUnknownInstrument(t *testing.T) {
	_, err := Parse([]byte("- InstrumentConfigs:\n  - instrument: HIRES\n"), DefaultRegistry())
	assert.ErrorIs(t, err, apperr.ErrUnknownInstrument)

	_, err = Parse([]byte("- InstrumentConfigs:\n  - KCWI\n"), DefaultRegistry())
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, []string{"KCWI", "MOSFIRE", "NIRES"}, reg.Instruments())
	for _, name := range []string{offset.SkyFrameName, kcwi.FrameMediumSlicer, mosfire.FrameSlit, nires.FrameSCAM} {
		_, err := reg.Frames().Lookup(name)
		assert.NoError(t, err, name)
	}
	empty := NewRegistry()
	assert.Empty(t, empty.Instruments())
}

func TestValidateJoinsErrors(t *testing.T) {
	bad := kcwi.New()
	bad.Slicer = "huge"
	doc := &Document{
		InstrumentConfigs: []block.InstrumentConfig{bad},
		DetectorConfigs:   []detector.Config{mosfire.Detector(1, detector.WithReadoutMode("MCDS17"))},
	}
	err := doc.Validate()
	assert.ErrorIs(t, err, apperr.ErrInstrumentConfig)
	assert.ErrorIs(t, err, apperr.ErrDetectorConfig)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "programs", "night1.yaml")
	doc := sampleDocument(t)
	require.NoError(t, WriteFile(path, doc))

	back, err := ReadFile(path, DefaultRegistry())
	require.NoError(t, err)
	if diff := cmp.Diff(doc, back, cmpBlocks); diff != "" {
		t.Errorf("file round trip mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteFileRefusesInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	doc := &Document{ObservingBlocks: block.List{nil}}
	assert.ErrorIs(t, WriteFile(path, doc), apperr.ErrBlock)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteStarlist(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStarlist(&buf, sampleDocument(t).Targets))
	assert.True(t, strings.HasPrefix(buf.String(), "M31 "))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestWriteHeader(t *testing.T) {
	doc := sampleDocument(t)
	cards, err := doc.BlockHeader(1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, cards))
	out := buf.String()
	assert.Contains(t, out, "END")
	assert.Zero(t, buf.Len()%2880, "FITS files come in 2880 byte blocks")
	for _, key := range []string{"OBTYPE", "TGNAME", "OPNAME", "ICNAME", "ALNAME"} {
		assert.Contains(t, out, key)
	}

	_, err = doc.BlockHeader(99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClientUpload(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile(UploadField)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		got = string(data)
	}))
	defer srv.Close()

	c := NewClient(WithUploadURL(srv.URL))
	ok, err := c.Upload(context.Background(), sampleDocument(t))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, got, "ObservingBlocks")
}

func TestClientUploadRejected(t *testing.T) {
	rec := warntest.Capture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ok, err := NewClient(WithUploadURL(srv.URL)).Upload(context.Background(), &Document{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{apperr.WarnUploadFailed}, rec.Categories())
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(WithUploadURL(url), WithDownloadURL(url))
	_, err := c.Upload(context.Background(), &Document{})
	assert.ErrorIs(t, err, apperr.ErrUnreachable)
	assert.ErrorIs(t, c.Ping(context.Background()), apperr.ErrUnreachable)
	_, err = c.Download(context.Background(), KeyTargets, "")
	assert.ErrorIs(t, err, apperr.ErrUnreachable)
}

func TestClientDownload(t *testing.T) {
	doc := &Document{InstrumentConfigs: []block.InstrumentConfig{kcwi.New()}}
	data, err := Marshal(doc)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("col") != KeyInstrumentConfigs {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "default", r.URL.Query().Get("name"))
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	c := NewClient(WithDownloadURL(srv.URL + "/api/ddoi/getDefs"))
	back, err := c.Download(context.Background(), KeyInstrumentConfigs, "default")
	require.NoError(t, err)
	require.Len(t, back.InstrumentConfigs, 1)
	assert.Equal(t, kcwi.New(), back.InstrumentConfigs[0])

	_, err = c.Download(context.Background(), KeyTargets, "default")
	assert.ErrorIs(t, err, apperr.ErrDownloadFailed)

	require.NoError(t, c.Ping(context.Background()))
}
