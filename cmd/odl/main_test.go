package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/odl/internal/api"
	"github.com/starford/odl/internal/catalog"
	"github.com/starford/odl/internal/testutil"
	"github.com/starford/odl/internal/testutil/fixtures"
	"github.com/starford/odl/pkg/odl"
)

// runApp runs the command line and returns what it wrote to stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(context.Background(), append([]string{"odl"}, args...))
	return out.String(), err
}

func writeProgram(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "program.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestValidate(t *testing.T) {
	out, err := runApp(t, "-c", "", "validate", writeProgram(t, fixtures.Program))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "5 definitions, 1 blocks ok") {
		t.Errorf("output = %q", out)
	}

	bad := "- DetectorConfigs:\n  - instrument: MOSFIRE\n    exptime: 10\n    readoutmode: XYZ\n"
	if _, err := runApp(t, "-c", "", "validate", writeProgram(t, bad)); err == nil {
		t.Error("expected validation error")
	}
	if _, err := runApp(t, "-c", "", "validate"); err == nil {
		t.Error("expected error without FILE")
	}
}

func TestEstimate(t *testing.T) {
	out, err := runApp(t, "-c", "", "estimate", writeProgram(t, fixtures.Program))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if !strings.Contains(out, "Shutter Open Time: 240 s") || !strings.Contains(out, "NGC 1068") {
		t.Errorf("output = %q", out)
	}
}

func TestCals(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "cals.yaml")
	out, err := runApp(t, "-c", "", "cals", "-o", dst, writeProgram(t, fixtures.Program))
	if err != nil {
		t.Fatalf("cals: %v", err)
	}
	if !strings.Contains(out, "DomeFlats") {
		t.Errorf("cals table missing dome flats: %q", out)
	}
	doc, err := odl.ReadFile(dst, odl.DefaultRegistry())
	if err != nil {
		t.Fatalf("read cals: %v", err)
	}
	if len(doc.ObservingBlocks) == 0 {
		t.Error("no calibration blocks written")
	}
}

func TestStarlist(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "starlist.txt")
	if _, err := runApp(t, "-c", "", "starlist", "-o", dst, writeProgram(t, fixtures.Program)); err != nil {
		t.Fatalf("starlist: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "NGC 1068") {
		t.Errorf("starlist = %q, want one line for the shared target", data)
	}
}

func TestTargets(t *testing.T) {
	out, err := runApp(t, "-c", "", "targets", "--at", "2026-10-19T08:00:00Z", writeProgram(t, fixtures.Telluric))
	if err != nil {
		t.Fatalf("targets: %v", err)
	}
	if !strings.Contains(out, "HIP 10559") {
		t.Errorf("output = %q", out)
	}
	if _, err := runApp(t, "-c", "", "targets", "--at", "yesterday", writeProgram(t, fixtures.Telluric)); err == nil {
		t.Error("expected error for bad --at")
	}
}

func TestHeader(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "block.fits")
	if _, err := runApp(t, "-c", "", "header", "-o", dst, writeProgram(t, fixtures.Program)); err != nil {
		t.Fatalf("header: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 || info.Size()%2880 != 0 {
		t.Errorf("FITS size = %d, want a positive multiple of 2880", info.Size())
	}

	if _, err := runApp(t, "-c", "", "header", "-o", dst, "--block", "7", writeProgram(t, fixtures.Program)); err == nil {
		t.Error("expected error for out-of-range block")
	}
}

func TestUploadDownloadPing(t *testing.T) {
	_, store := testutil.TestPrograms(t)
	svc := catalog.NewService(store, testutil.TestDB(t), odl.DefaultRegistry())
	srv := httptest.NewServer(api.NewRouter(svc, false, "", nil))
	defer srv.Close()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := fmt.Sprintf("database:\n  upload_url: %s/\n  download_url: %s/api/ddoi/getDefs\n", srv.URL, srv.URL)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	if out, err := runApp(t, "-c", cfgPath, "ping"); err != nil || !strings.Contains(out, "ok") {
		t.Fatalf("ping = %q, %v", out, err)
	}

	out, err := runApp(t, "-c", cfgPath, "upload", writeProgram(t, fixtures.Program))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(out, "uploaded 5 definitions") {
		t.Errorf("upload output = %q", out)
	}

	out, err = runApp(t, "-c", cfgPath, "download", "--col", odl.KeyTargets, "--name", "NGC 1068")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	doc, err := odl.Parse([]byte(out), odl.DefaultRegistry())
	if err != nil {
		t.Fatalf("download output does not parse: %v\n%s", err, out)
	}
	if len(doc.Targets) != 1 || doc.Targets[0].Name != "NGC 1068" {
		t.Errorf("downloaded targets = %v", doc.Targets)
	}

	if _, err := runApp(t, "-c", cfgPath, "download", "--col", odl.KeyTargets, "--name", "nobody"); err == nil {
		t.Error("expected error for missing definition")
	}
}
