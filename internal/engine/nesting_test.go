package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/piwi3910/LaserNest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultNestOptions(qty int) NestOptions {
	return NestOptions{
		Scale:       1,
		Unit:        model.UnitMM,
		SheetWidth:  1220,
		SheetHeight: 2440,
		Quantity:    qty,
	}
}

func testPart(name string, w, h float64) model.Part {
	return model.Part{ID: name, Name: name, Width: w, Height: h, PathLength: 2 * (w + h)}
}

func TestComputeNesting_ExactFitTieKeepsUnrotated(t *testing.T) {
	result, err := ComputeNesting([]model.Part{testPart("Plate", 600, 300)}, defaultNestOptions(20))
	require.NoError(t, err)
	require.Len(t, result.Layouts, 1)

	l := result.Layouts[0]
	assert.Equal(t, 16, l.PartsPerSheet)
	assert.Equal(t, 2, l.TotalSheets)
	require.Len(t, l.Positions, 16)
	for _, p := range l.Positions {
		assert.Equal(t, 0, p.Rotation)
	}
	assert.InDelta(t, 16*600*300/(1220.0*2440)*100, l.Utilization, 1e-9)
	assert.Equal(t, 2, result.TotalSheets)
	assert.Equal(t, 1, result.TotalParts)
}

func TestComputeNesting_TooLargeContinuesBatch(t *testing.T) {
	parts := []model.Part{
		testPart("Huge", 1300, 2500),
		testPart("Small", 100, 100),
	}
	result, err := ComputeNesting(parts, defaultNestOptions(10))

	var tooLarge *PartTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, "Huge", tooLarge.PartName)

	require.Len(t, result.Layouts, 2)
	huge := result.Layouts[0]
	assert.Equal(t, 0, huge.PartsPerSheet)
	assert.Equal(t, 0, huge.TotalSheets)
	assert.Equal(t, 0.0, huge.Utilization)
	assert.Equal(t, 100.0, huge.WastePercent)
	assert.Empty(t, huge.Positions)

	small := result.Layouts[1]
	assert.True(t, small.Fits())
	assert.Equal(t, 1, small.TotalSheets)
	assert.Equal(t, 2, result.TotalParts)
	assert.Len(t, result.UnfitLayouts(), 1)
}

func TestComputeNesting_GapMakesNearFullSizeUnfit(t *testing.T) {
	// 1218 + 5 > 1220 even though the bare part is narrower than the sheet.
	result, err := ComputeNesting([]model.Part{testPart("Edge", 1218, 2000)}, defaultNestOptions(1))
	require.Error(t, err)
	assert.Equal(t, 0, result.Layouts[0].PartsPerSheet)
}

func TestComputeNesting_RotatedOrientationWins(t *testing.T) {
	result, err := ComputeNesting([]model.Part{testPart("Strip", 100, 400)}, defaultNestOptions(1))
	require.NoError(t, err)

	l := result.Layouts[0]
	// Unrotated: 11 x 6 = 66. Rotated: 3 x 23 = 69.
	assert.Equal(t, 69, l.PartsPerSheet)
	require.NotEmpty(t, l.Positions)
	assert.Equal(t, 90, l.Positions[0].Rotation)
	assert.Equal(t, model.Position{X: 5, Y: 5, Rotation: 90}, l.Positions[0])
	assert.Equal(t, model.Position{X: 410, Y: 5, Rotation: 90}, l.Positions[1])
	assert.Equal(t, model.Position{X: 5, Y: 110, Rotation: 90}, l.Positions[3])
	// Dimensions are reported pre-rotation.
	assert.Equal(t, 100.0, l.PartWidth)
	assert.Equal(t, 400.0, l.PartHeight)
}

func TestComputeNesting_OrientationOptimality(t *testing.T) {
	sizes := [][2]float64{{600, 300}, {100, 400}, {250, 250}, {1000, 50}, {37, 611}, {1200, 10}}
	for _, s := range sizes {
		w, h := s[0], s[1]
		result, err := ComputeNesting([]model.Part{testPart("P", w, h)}, defaultNestOptions(5))
		require.NoError(t, err)

		a := math.Floor(1220/(w+Gap)) * math.Floor(2440/(h+Gap))
		b := math.Floor(1220/(h+Gap)) * math.Floor(2440/(w+Gap))
		l := result.Layouts[0]
		assert.Equal(t, int(math.Max(a, b)), l.PartsPerSheet, "part %.0fx%.0f", w, h)
		if a >= b {
			assert.Equal(t, 0, l.Positions[0].Rotation, "ties keep the unrotated orientation")
		}
	}
}

func TestComputeNesting_SamplingCapDoesNotAffectCounts(t *testing.T) {
	result, err := ComputeNesting([]model.Part{testPart("Tiny", 10, 10)}, defaultNestOptions(20000))
	require.NoError(t, err)

	l := result.Layouts[0]
	// 81 columns x 162 rows.
	assert.Equal(t, 13122, l.PartsPerSheet)
	assert.Equal(t, 2, l.TotalSheets)
	assert.Len(t, l.Positions, MaxSampledPositions)
	// Row-major: the cap cuts the second row short.
	assert.Equal(t, model.Position{X: 5, Y: 20}, l.Positions[81])
}

func TestComputeNesting_SheetsNeeded(t *testing.T) {
	for _, qty := range []int{1, 15, 16, 17, 32, 33, 1000} {
		result, err := ComputeNesting([]model.Part{testPart("Plate", 600, 300)}, defaultNestOptions(qty))
		require.NoError(t, err)
		l := result.Layouts[0]
		want := int(math.Ceil(float64(qty) / float64(l.PartsPerSheet)))
		assert.Equal(t, want, l.TotalSheets, "qty %d", qty)
	}
}

func TestComputeNesting_Monotonicity(t *testing.T) {
	part := testPart("P", 173, 91)
	prev := 0
	for w := 100.0; w <= 3000; w += 37 {
		opts := defaultNestOptions(1)
		opts.SheetWidth = w
		result, _ := ComputeNesting([]model.Part{part}, opts)
		got := result.Layouts[0].PartsPerSheet
		assert.GreaterOrEqual(t, got, prev, "sheet width %.0f", w)
		prev = got
	}

	prev = 0
	for h := 100.0; h <= 3000; h += 41 {
		opts := defaultNestOptions(1)
		opts.SheetHeight = h
		result, _ := ComputeNesting([]model.Part{part}, opts)
		got := result.Layouts[0].PartsPerSheet
		assert.GreaterOrEqual(t, got, prev, "sheet height %.0f", h)
		prev = got
	}
}

func TestComputeNesting_UtilizationBounds(t *testing.T) {
	parts := []model.Part{
		testPart("A", 600, 300),
		testPart("B", 1215, 2435),
		testPart("C", 1, 1),
		testPart("D", 5000, 10),
	}
	result, _ := ComputeNesting(parts, defaultNestOptions(3))
	for _, l := range result.Layouts {
		assert.GreaterOrEqual(t, l.Utilization, 0.0)
		assert.LessOrEqual(t, l.Utilization, 100.0)
		assert.InDelta(t, 100.0, l.Utilization+l.WastePercent, 1e-9)
	}
}

func TestComputeNesting_UnitConversion(t *testing.T) {
	opts := defaultNestOptions(20)
	opts.Unit = model.UnitCM
	result, err := ComputeNesting([]model.Part{testPart("Plate", 60, 30)}, opts)
	require.NoError(t, err)
	assert.Equal(t, 600.0, result.Layouts[0].PartWidth)
	assert.Equal(t, 16, result.Layouts[0].PartsPerSheet)

	opts.Unit = model.UnitInch
	opts.Scale = 0.5
	result, err = ComputeNesting([]model.Part{testPart("Plate", 10, 20)}, opts)
	require.NoError(t, err)
	assert.InDelta(t, 127.0, result.Layouts[0].PartWidth, 1e-9)
	assert.InDelta(t, 254.0, result.Layouts[0].PartHeight, 1e-9)
}

func TestComputeNesting_InvalidOptionsFallBackToDefaults(t *testing.T) {
	opts := NestOptions{Scale: math.NaN(), SheetWidth: -1, SheetHeight: math.Inf(1), Quantity: -4}
	result, err := ComputeNesting([]model.Part{testPart("Plate", 600, 300)}, opts)
	require.NoError(t, err)

	l := result.Layouts[0]
	assert.Equal(t, 1220.0, l.SheetWidth)
	assert.Equal(t, 2440.0, l.SheetHeight)
	assert.Equal(t, 600.0, l.PartWidth)
	assert.Equal(t, 1, l.TotalSheets)
}

func TestComputeNesting_InvalidPartEmitsNoLayout(t *testing.T) {
	parts := []model.Part{
		testPart("Zero", 0, 100),
		testPart("NaN", math.NaN(), 100),
		testPart("Good", 100, 100),
	}
	result, err := ComputeNesting(parts, defaultNestOptions(1))

	var invalid *InvalidPartError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "Zero", invalid.PartName)
	require.Len(t, result.Layouts, 1)
	assert.Equal(t, "Good", result.Layouts[0].PartName)
	assert.Equal(t, 3, result.TotalParts)
}

func TestComputeNesting_GlobalUtilizationIsUnweightedMean(t *testing.T) {
	// Known quirk: the unfit layout contributes zero utilization with the same
	// weight as a layout spanning many sheets.
	parts := []model.Part{
		testPart("Plate", 600, 300),
		testPart("Huge", 1300, 2500),
	}
	result, _ := ComputeNesting(parts, defaultNestOptions(500))

	plate := result.Layouts[0]
	assert.Equal(t, 32, plate.TotalSheets)
	assert.InDelta(t, plate.Utilization/2, result.GlobalUtilization, 1e-9)
}

func TestComputeNesting_Idempotent(t *testing.T) {
	parts := []model.Part{testPart("A", 600, 300), testPart("B", 1300, 2500), testPart("C", 45, 80)}
	first, err1 := ComputeNesting(parts, defaultNestOptions(7))
	second, err2 := ComputeNesting(parts, defaultNestOptions(7))
	assert.Equal(t, first, second)
	assert.Equal(t, err1, err2)
}

func TestComputeNesting_EmptyParts(t *testing.T) {
	result, err := ComputeNesting(nil, defaultNestOptions(1))
	require.NoError(t, err)
	assert.Empty(t, result.Layouts)
	assert.Equal(t, 0.0, result.GlobalUtilization)
}

func TestComputeNesting_HugeSheetIsRejectedNotWrapped(t *testing.T) {
	for _, side := range []float64{1e10, 2e10, 1e12, 1e20, math.MaxFloat64} {
		opts := defaultNestOptions(10)
		opts.SheetWidth, opts.SheetHeight = side, side

		var result model.NestingResult
		var err error
		require.NotPanics(t, func() {
			result, err = ComputeNesting([]model.Part{testPart("Tiny", 10, 10)}, opts)
		}, "sheet side %g", side)
		require.Len(t, result.Layouts, 1)

		l := result.Layouts[0]
		if l.PartsPerSheet == 0 {
			var capErr *CapacityExceededError
			require.ErrorAs(t, err, &capErr, "zero capacity must be reported for side %g", side)
			assert.Equal(t, MaxPartsPerSheet, capErr.Limit)
			assert.Equal(t, 0, l.TotalSheets)
			assert.Empty(t, l.Positions)
			assert.Equal(t, 100.0, l.WastePercent)
			continue
		}
		require.NoError(t, err)
		assert.LessOrEqual(t, l.PartsPerSheet, MaxPartsPerSheet)
		assert.LessOrEqual(t, len(l.Positions), MaxSampledPositions)
	}
}

func TestComputeNesting_CapacityAtLimitIsAccepted(t *testing.T) {
	opts := defaultNestOptions(1)
	opts.SheetWidth, opts.SheetHeight = 5000, 5000

	result, err := ComputeNesting([]model.Part{testPart("Pin", 1, 1)}, opts)
	require.NoError(t, err)
	// 833 x 833 cells.
	assert.Equal(t, 693889, result.Layouts[0].PartsPerSheet)
}

func TestComputeEstimation_RejectsOverCapacityLayout(t *testing.T) {
	opts := defaultNestOptions(1)
	opts.SheetWidth, opts.SheetHeight = 1e12, 1e12
	nr, nestErr := ComputeNesting([]model.Part{testPart("Tiny", 10, 10)}, opts)
	require.Error(t, nestErr)

	_, err := ComputeEstimation(EstimateInput{
		Nesting:    &nr,
		Catalog:    model.Catalog(model.DefaultMaterials()),
		MaterialID: "ss304",
		Thickness:  1,
		Scale:      1,
		Quantity:   1,
		Operating:  model.DefaultOperatingSettings(),
	})
	var capErr *CapacityExceededError
	assert.ErrorAs(t, err, &capErr)
}

func TestLayoutPositions_RebuildsFullGrid(t *testing.T) {
	result, err := ComputeNesting([]model.Part{testPart("Tiny", 10, 10)}, defaultNestOptions(1))
	require.NoError(t, err)
	l := result.Layouts[0]
	require.Len(t, l.Positions, MaxSampledPositions)

	all := LayoutPositions(l)
	require.Len(t, all, l.PartsPerSheet)
	assert.Equal(t, l.Positions, all[:MaxSampledPositions])
	assert.Equal(t, model.Position{X: 80*15 + 5, Y: 161*15 + 5}, all[len(all)-1])
}

func TestLayoutPositions_RotatedGrid(t *testing.T) {
	// 101 x 69 rotated beats 34 x 203 upright.
	result, err := ComputeNesting([]model.Part{testPart("Strip", 30, 7)}, defaultNestOptions(1))
	require.NoError(t, err)
	l := result.Layouts[0]
	require.Equal(t, 6969, l.PartsPerSheet)
	require.Equal(t, 90, l.Positions[0].Rotation)

	all := LayoutPositions(l)
	require.Len(t, all, l.PartsPerSheet)
	for _, p := range all {
		assert.Equal(t, l.Positions[0].Rotation, p.Rotation)
		w, h := l.PlacedSize(p)
		assert.LessOrEqual(t, p.X+w, l.SheetWidth)
		assert.LessOrEqual(t, p.Y+h, l.SheetHeight)
	}
}

func TestLayoutPositions_UnfitLayout(t *testing.T) {
	result, _ := ComputeNesting([]model.Part{testPart("Huge", 1300, 2500)}, defaultNestOptions(1))
	assert.Nil(t, LayoutPositions(result.Layouts[0]))
}
