package stats_test

import (
	"testing"

	"kbstats/internal/fm"
	"kbstats/internal/kb"
	"kbstats/internal/stats"
)

// smartwatchModel builds the bundled example, optionally renaming every
// feature with the given prefix and reordering the cross-tree constraints.
// Both transformations are structure-preserving.
func smartwatchModel(t *testing.T, prefix string, reverseCTCs bool) *fm.FeatureModel {
	t.Helper()
	m := fm.New(prefix + "Smartwatch")

	add := func(id string) *fm.Feature {
		t.Helper()
		f, err := m.AddFeature(prefix+id, prefix+id)
		if err != nil {
			t.Fatal(err)
		}
		return f
	}
	rel := func(typ fm.RelType, parent *fm.Feature, children ...*fm.Feature) {
		t.Helper()
		if err := m.AddRelationship(typ, parent, children...); err != nil {
			t.Fatal(err)
		}
	}

	root := add("smartwatch")
	connector := add("connector")
	screen := add("screen")
	camera := add("camera")
	compass := add("compass")
	bt := add("bluetooth")
	wifi := add("wifi")
	nfc := add("nfc")
	analog := add("analog")
	highres := add("highres")
	eink := add("eink")

	rel(fm.Mandatory, root, connector)
	rel(fm.Mandatory, root, screen)
	rel(fm.Optional, root, camera)
	rel(fm.Optional, root, compass)
	rel(fm.Or, connector, bt, wifi, nfc)
	rel(fm.Alternative, screen, analog, highres, eink)

	ctcs := []fm.CTConstraint{
		fm.Requires("c1", prefix+"camera", prefix+"highres"),
		fm.Requires("c2", prefix+"compass", prefix+"wifi"),
		fm.Excludes("c3", prefix+"analog", prefix+"camera"),
		{Name: "c4", Literals: []fm.Literal{
			{Feature: prefix + "nfc", Negated: true},
			{Feature: prefix + "bluetooth"},
			{Feature: prefix + "wifi"},
		}},
	}
	if reverseCTCs {
		for i, j := 0, len(ctcs)-1; i < j; i, j = i+1, j-1 {
			ctcs[i], ctcs[j] = ctcs[j], ctcs[i]
		}
	}
	for _, c := range ctcs {
		if err := m.AddConstraint(c); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func buildFM(t *testing.T, m *fm.FeatureModel) (stats.Record, *kb.Built) {
	t.Helper()
	base, err := kb.FromFeatureModel(m, m.Name+".sxfm")
	if err != nil {
		t.Fatal(err)
	}
	built, err := base.Build()
	if err != nil {
		t.Fatal(err)
	}
	rec, err := stats.ForFeatureModel(m, built)
	if err != nil {
		t.Fatal(err)
	}
	return rec, built
}

func TestBase(t *testing.T) {
	k, err := kb.Benchmark(kb.Camera)
	if err != nil {
		t.Fatal(err)
	}
	built, err := k.Build()
	if err != nil {
		t.Fatal(err)
	}
	rec, err := stats.Base(built)
	if err != nil {
		t.Fatalf("Base: %v", err)
	}

	if rec.Name != "Camera" {
		t.Errorf("Name = %q", rec.Name)
	}
	if rec.Source != k.Source {
		t.Errorf("Source = %q, want %q", rec.Source, k.Source)
	}
	if rec.Variables != built.NumVariables() || rec.Constraints != built.NumConstraints() {
		t.Errorf("declared counts %d/%d do not match built form", rec.Variables, rec.Constraints)
	}
	if rec.SolverVariables != built.NumSolverVariables() || rec.SolverConstraints != built.NumSolverConstraints() {
		t.Errorf("solver counts %d/%d do not match built form", rec.SolverVariables, rec.SolverConstraints)
	}
	if !rec.Consistent {
		t.Error("Camera benchmark inconsistent")
	}
	if rec.FM != nil {
		t.Error("plain knowledge base carries feature model stats")
	}
}

func TestForFeatureModelSmartwatch(t *testing.T) {
	m := smartwatchModel(t, "", false)
	rec, built := buildFM(t, m)

	if rec.FM == nil {
		t.Fatal("missing feature model stats")
	}
	s := rec.FM

	if s.Features != 11 || s.LeafFeatures != 8 {
		t.Errorf("features = %d/%d leaves, want 11/8", s.Features, s.LeafFeatures)
	}
	if s.Relationships != 6 || s.Constraints != 4 {
		t.Errorf("relationships/constraints = %d/%d, want 6/4", s.Relationships, s.Constraints)
	}
	if s.Mandatory != 2 || s.Optional != 2 || s.Alternative != 1 || s.Or != 1 {
		t.Errorf("relationship breakdown = %d/%d/%d/%d", s.Mandatory, s.Optional, s.Alternative, s.Or)
	}
	if s.Mandatory+s.Optional+s.Alternative+s.Or != s.Relationships {
		t.Error("relationship breakdown does not sum to total")
	}
	if s.Requires != 2 || s.Excludes != 1 {
		t.Errorf("requires/excludes = %d/%d, want 2/1", s.Requires, s.Excludes)
	}
	if s.Requires+s.Excludes > s.Constraints {
		t.Error("requires+excludes exceeds constraint count")
	}

	if !s.CTCDefined {
		t.Fatal("CTC ratio undefined for smartwatch")
	}
	// 4 CTCs over 10 declared constraints.
	if s.CTCRatio != 0.4 {
		t.Errorf("CTCRatio = %v, want 0.4", s.CTCRatio)
	}
	if built.NumConstraints() != 10 {
		t.Errorf("declared constraints = %d, want 10", built.NumConstraints())
	}
}

// The ratio only depends on structure: reordering CTCs or renaming features
// must not change it.
func TestCTCRatioInvariance(t *testing.T) {
	base, _ := buildFM(t, smartwatchModel(t, "", false))
	reordered, _ := buildFM(t, smartwatchModel(t, "", true))
	renamed, _ := buildFM(t, smartwatchModel(t, "x_", false))

	if base.FM.CTCRatio != reordered.FM.CTCRatio {
		t.Errorf("reordering CTCs changed the ratio: %v != %v", base.FM.CTCRatio, reordered.FM.CTCRatio)
	}
	if base.FM.CTCRatio != renamed.FM.CTCRatio {
		t.Errorf("renaming features changed the ratio: %v != %v", base.FM.CTCRatio, renamed.FM.CTCRatio)
	}
}

// A model without relationships or CTCs has a zero denominator; the ratio is
// explicitly undefined, not a division fault.
func TestDegenerateCTCRatio(t *testing.T) {
	m := fm.New("lonely")
	if _, err := m.AddFeature("r", "R"); err != nil {
		t.Fatal(err)
	}
	rec, _ := buildFM(t, m)

	if rec.FM == nil {
		t.Fatal("missing feature model stats")
	}
	if rec.FM.CTCDefined {
		t.Error("CTC ratio defined despite zero declared constraints")
	}
	if rec.FM.CTCRatio != 0 {
		t.Errorf("undefined ratio carries value %v", rec.FM.CTCRatio)
	}
}
