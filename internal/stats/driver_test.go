package stats_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kbstats/internal/kb"
	"kbstats/internal/stats"
)

const tinySXFM = `<feature_model name="Tiny">
<feature_tree>
:r Tiny(tiny)
	:m Core(core)
	:o Extra(extra)
</feature_tree>
<constraints>
c1: ~extra or core
</constraints>
</feature_model>
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runDriver(t *testing.T, cfg stats.Config) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	w := stats.NewWriter(&buf)
	err := stats.NewDriver(cfg, nil).Run(w)
	if cerr := w.Close(); cerr != nil {
		t.Fatalf("Close: %v", cerr)
	}
	return buf.String(), err
}

// countBlocks counts report blocks by their leading index lines.
func countBlocks(report string) int {
	n := 0
	for _, line := range strings.Split(report, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.ContainsAny(trimmed, ":") && trimmed == strings.TrimLeft(trimmed, "#") {
			n++
		}
	}
	return n
}

func TestRunDirectorySkipsUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.sxfm", tinySXFM)
	writeFile(t, dir, "notes.txt", "not a feature model")

	report, err := runDriver(t, stats.Config{FMDir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(report, "1\nName: Tiny\n") {
		t.Errorf("report does not start with block 1 for Tiny:\n%s", report)
	}
	if got := countBlocks(report); got != 1 {
		t.Errorf("report has %d blocks, want 1:\n%s", got, report)
	}
	// 1 CTC over 3 declared constraints.
	if !strings.Contains(report, "CTC ratio: 0.3333333333333333\n") {
		t.Errorf("missing CTC ratio line:\n%s", report)
	}
}

func TestRunSharedIndexAcrossCategories(t *testing.T) {
	dir := t.TempDir()
	fmPath := writeFile(t, dir, "tiny.sxfm", tinySXFM)

	report, err := runDriver(t, stats.Config{
		Benchmarks: []string{"Camera", "PC"},
		FMFile:     fmPath,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, prefix := range []string{"1\nName: Camera\n", "\n2\nName: PC\n", "\n3\nName: Tiny\n"} {
		if !strings.Contains(report, prefix) {
			t.Errorf("missing block %q in report:\n%s", prefix, report)
		}
	}
	if got := countBlocks(report); got != 3 {
		t.Errorf("report has %d blocks, want 3", got)
	}
}

func TestRunUnknownBenchmarkAbortsBeforeProcessing(t *testing.T) {
	report, err := runDriver(t, stats.Config{Benchmarks: []string{"Camera", "Unknown"}})
	if !errors.Is(err, kb.ErrUnsupportedKB) {
		t.Fatalf("error = %v, want ErrUnsupportedKB", err)
	}
	if report != "" {
		t.Errorf("report written despite configuration error:\n%s", report)
	}
}

func TestRunIsolatesFailingItems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "aaa-broken.sxfm", "not xml at all")
	writeFile(t, dir, "tiny.sxfm", tinySXFM)

	report, err := runDriver(t, stats.Config{FMDir: dir})
	if err == nil {
		t.Fatal("expected aggregate error for the broken file")
	}
	if !strings.Contains(err.Error(), "aaa-broken.sxfm") {
		t.Errorf("error does not name the failing file: %v", err)
	}
	var runErr *stats.RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("error is %T, want *stats.RunError: %v", err, err)
	}
	if runErr.Total != 2 || len(runErr.Failed) != 1 || runErr.Failed[0] != "aaa-broken.sxfm" {
		t.Errorf("unexpected failure summary: %+v", runErr)
	}
	// The surviving item gets index 1: indices stay contiguous.
	if !strings.HasPrefix(report, "1\nName: Tiny\n") {
		t.Errorf("surviving item not reported as block 1:\n%s", report)
	}
	if got := countBlocks(report); got != 1 {
		t.Errorf("report has %d blocks, want 1", got)
	}
}

func TestRunMissingDirectory(t *testing.T) {
	_, err := runDriver(t, stats.Config{FMDir: filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestRunEmptyConfig(t *testing.T) {
	report, err := runDriver(t, stats.Config{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report != "" {
		t.Errorf("report written for empty config:\n%s", report)
	}
}

// Two identical runs produce byte-identical reports.
func TestRunIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.sxfm", tinySXFM)
	cfg := stats.Config{Benchmarks: []string{"PC"}, FMDir: dir}

	first, err := runDriver(t, cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := runDriver(t, cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first != second {
		t.Error("two runs over the same inputs differ")
	}
}

func TestCreateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	w, err := stats.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := stats.NewDriver(stats.Config{Benchmarks: []string{"Camera"}}, nil).Run(w); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(data), "1\nName: Camera\n") {
		t.Errorf("unexpected report content:\n%s", data)
	}
}

const smartwatchSXFM = `<feature_model name="Smartwatch">
<feature_tree>
:r Smartwatch(smartwatch)
	:m Connector(connector)
		:g (connector_types) [1,*]
			: Bluetooth(bluetooth)
			: WiFi(wifi)
			: NFC(nfc)
	:m Screen(screen)
		:g (screen_types) [1,1]
			: Analog(analog)
			: High Resolution(highres)
			: E-ink(eink)
	:o Camera(camera)
	:o Compass(compass)
</feature_tree>
<constraints>
c1: ~camera or highres
c2: ~compass or wifi
c3: ~analog or ~camera
c4: ~nfc or bluetooth or wifi
</constraints>
</feature_model>
`

// A full feature model file driven end to end: parse, translate, encode,
// solve, report. The report is compared byte for byte, solver counts
// included.
func TestRunFeatureModelEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "smartwatch.sxfm", smartwatchSXFM)

	report, err := runDriver(t, stats.Config{FMFile: path})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := `1
Name: Smartwatch
Source: smartwatch.sxfm
#variables: 11
#constraints: 10
#Choco variables: 22
#Choco constraints: 44
Consistency: true

CTC ratio: 0.4
#features: 11
#leaf features: 8
#relationships: 6
#constraints: 4
#MANDATORY: 2
#OPTIONAL: 2
#ALTERNATIVE: 1
#OR: 1
#REQUIRES: 2
#EXCLUDES: 1
`
	if report != want {
		t.Errorf("report mismatch\ngot:\n%s\nwant:\n%s", report, want)
	}
	if got := countBlocks(report); got != 1 {
		t.Errorf("report has %d blocks, want 1", got)
	}
}
