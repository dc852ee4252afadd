package gcode

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/LaserNest/internal/engine"
	"github.com/piwi3910/LaserNest/internal/model"
)

// newTestSettings returns Settings suitable for testing with predictable output.
func newTestSettings() Settings {
	s := DefaultSettings()
	s.FeedRate = 3000
	s.Power = 800
	s.KerfWidth = 0
	s.PierceDelay = 0
	s.LeadIn = 0
	s.MicroJoints = 0
	s.Dialect = "Generic"
	return s
}

func newTestLayout() model.SheetLayout {
	return model.SheetLayout{
		PartID:        "p1",
		PartName:      "Bracket",
		SheetWidth:    500,
		SheetHeight:   300,
		PartWidth:     100,
		PartHeight:    50,
		PartsPerSheet: 2,
		TotalSheets:   3,
		Utilization:   6.7,
		Positions: []model.Position{
			{X: 0, Y: 0, Rotation: 0},
			{X: 105, Y: 0, Rotation: 90},
		},
	}
}

func TestGenerateLayout_CutLengthIsPerimeterPerPart(t *testing.T) {
	code := New(newTestSettings()).GenerateLayout(newTestLayout(), 1)

	if got := CutLength(code); math.Abs(got-600) > 1e-6 {
		t.Errorf("expected cut length 600, got %f", got)
	}
	if got := CutTime(code); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("expected 0.2 min at 3000 mm/min, got %f", got)
	}
}

func TestGenerateLayout_BeamSwitching(t *testing.T) {
	code := New(newTestSettings()).GenerateLayout(newTestLayout(), 1)

	if n := strings.Count(code, "M3 S800"); n != 2 {
		t.Errorf("expected one beam-on per part, got %d", n)
	}
	// One at start, one per part, one in the footer.
	if n := strings.Count(code, "M5\n"); n != 4 {
		t.Errorf("expected 4 beam-off commands, got %d", n)
	}
	if !strings.Contains(code, "[rotated]") {
		t.Error("expected rotated part comment")
	}
	if strings.Contains(code, "G4 ") {
		t.Error("expected no dwell when pierce delay is 0")
	}
}

func TestGenerateLayout_KerfOffset(t *testing.T) {
	s := newTestSettings()
	s.KerfWidth = 0.2
	code := New(s).GenerateLayout(newTestLayout(), 1)

	// Each side grows by the full kerf width.
	want := 2 * 2 * (100.2 + 50.2)
	if got := CutLength(code); math.Abs(got-want) > 1e-6 {
		t.Errorf("expected cut length %f, got %f", want, got)
	}
	if !strings.Contains(code, "G0 X-0.100 Y-0.100") {
		t.Errorf("expected rapid to the offset corner in output:\n%s", code)
	}
}

func TestGenerateLayout_LeadIn(t *testing.T) {
	s := newTestSettings()
	s.LeadIn = 5
	code := New(s).GenerateLayout(newTestLayout(), 1)

	if n := strings.Count(code, "Lead-in"); n != 2 {
		t.Errorf("expected a lead-in per part, got %d", n)
	}
	if got := CutLength(code); math.Abs(got-610) > 1e-6 {
		t.Errorf("expected cut length 610 including lead-ins, got %f", got)
	}
}

func TestGenerateLayout_MicroJointsLeaveBridges(t *testing.T) {
	s := newTestSettings()
	s.MicroJoints = 1
	s.MicroJointWidth = 0.5
	code := New(s).GenerateLayout(newTestLayout(), 1)

	// Four sides per part, one bridge each.
	want := 600 - 2*4*0.5
	if got := CutLength(code); math.Abs(got-want) > 1e-6 {
		t.Errorf("expected cut length %f, got %f", want, got)
	}
	if n := strings.Count(code, "M3 S800"); n != 2*5 {
		t.Errorf("expected beam to restart after every bridge, got %d beam-ons", n)
	}
}

func TestGenerateLayout_PierceDelay(t *testing.T) {
	s := newTestSettings()
	s.PierceDelay = 0.4
	code := New(s).GenerateLayout(newTestLayout(), 1)

	if n := strings.Count(code, "G4 P0.40"); n != 2 {
		t.Errorf("expected a dwell after each pierce, got %d", n)
	}
}

func TestGenerateLayout_TracesEveryGridPosition(t *testing.T) {
	opts := engine.NestOptions{Scale: 1, Unit: model.UnitMM, SheetWidth: 1220, SheetHeight: 2440, Quantity: 1}
	part := model.Part{ID: "t", Name: "Tiny", Width: 10, Height: 10}
	l, err := engine.NestPart(part, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.PartsPerSheet != 13122 || len(l.Positions) != engine.MaxSampledPositions {
		t.Fatalf("expected 13122 per sheet with sampled positions, got %d/%d", l.PartsPerSheet, len(l.Positions))
	}

	code := New(newTestSettings()).GenerateLayout(*l, 1)

	if n := strings.Count(code, "--- Part "); n != l.PartsPerSheet {
		t.Errorf("expected %d traced parts, got %d", l.PartsPerSheet, n)
	}
	if n := strings.Count(code, "M3 S800"); n != l.PartsPerSheet {
		t.Errorf("expected one beam-on per part, got %d", n)
	}
	if strings.Contains(code, "NOTE:") {
		t.Error("a complete program must not carry the partial-trace note")
	}
	if got, want := CutLength(code), float64(l.PartsPerSheet)*40; math.Abs(got-want) > 1e-3 {
		t.Errorf("expected cut length %f, got %f", want, got)
	}
}

func TestGenerateLayout_NotesShortGrid(t *testing.T) {
	// The 500x300 sheet holds 20 upright 100x50 parts, fewer than claimed.
	l := newTestLayout()
	l.PartsPerSheet = 250
	code := New(newTestSettings()).GenerateLayout(l, 1)

	if !strings.Contains(code, "traces 20 of 250 positions") {
		t.Errorf("expected partial-trace note in header:\n%s", code)
	}
}

func TestGenerateAll_SkipsUnfitLayouts(t *testing.T) {
	nr := model.NestingResult{Layouts: []model.SheetLayout{
		newTestLayout(),
		{PartName: "Huge", SheetWidth: 500, SheetHeight: 300, PartWidth: 900, PartHeight: 900, WastePercent: 100},
	}}

	codes := New(newTestSettings()).GenerateAll(nr)
	if len(codes) != 1 {
		t.Fatalf("expected 1 program, got %d", len(codes))
	}
	if !strings.Contains(codes[0], "Bracket") {
		t.Error("expected the fitting layout's program")
	}
}

func TestWriteAll_WritesOneFilePerLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "programs")
	l := newTestLayout()
	l.PartName = "Side Panel/A"
	nr := model.NestingResult{Layouts: []model.SheetLayout{l}}

	paths, err := New(newTestSettings()).WriteAll(dir, nr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 file, got %d", len(paths))
	}
	if filepath.Base(paths[0]) != "sheet-01-Side_Panel_A.nc" {
		t.Errorf("unexpected file name %q", filepath.Base(paths[0]))
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("failed to read program: %v", err)
	}
	if math.Abs(CutLength(string(data))-600) > 1e-6 {
		t.Error("written program does not match the generated one")
	}
}

func TestDialects(t *testing.T) {
	s := newTestSettings()

	s.Dialect = "Grbl"
	grbl := New(s).GenerateLayout(newTestLayout(), 1)
	if !strings.Contains(grbl, "M4 S800") {
		t.Error("expected Grbl dynamic laser mode M4")
	}
	if math.Abs(CutLength(grbl)-600) > 1e-6 {
		t.Error("M4 must count as beam on")
	}

	s.Dialect = "LinuxCNC"
	lcnc := New(s).GenerateLayout(newTestLayout(), 1)
	if !strings.Contains(lcnc, "( --- Part 1: Bracket") {
		t.Error("expected parenthetical comments")
	}
	if math.Abs(CutLength(lcnc)-600) > 1e-6 {
		t.Errorf("expected 600 with 4-decimal output, got %f", CutLength(lcnc))
	}

	if GetDialect("nope").Name != "Generic" {
		t.Error("unknown dialect must fall back to Generic")
	}
	if len(DialectNames()) != 3 {
		t.Errorf("expected 3 dialects, got %v", DialectNames())
	}
}

func TestSettingsSanitized(t *testing.T) {
	s := Settings{FeedRate: math.NaN(), Power: -1, KerfWidth: -1, MicroJoints: -2}
	got := s.Sanitized()
	d := DefaultSettings()

	if got.FeedRate != d.FeedRate {
		t.Errorf("expected default feed rate, got %f", got.FeedRate)
	}
	if got.Power != d.Power {
		t.Errorf("expected default power, got %d", got.Power)
	}
	if got.KerfWidth != d.KerfWidth {
		t.Errorf("expected default kerf, got %f", got.KerfWidth)
	}
	if got.MicroJoints != 0 {
		t.Errorf("expected no micro joints, got %d", got.MicroJoints)
	}
	if got.Dialect != "Generic" {
		t.Errorf("expected Generic dialect, got %q", got.Dialect)
	}
}
