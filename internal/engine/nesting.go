package engine

import (
	"math"

	"github.com/piwi3910/LaserNest/internal/model"
	"github.com/piwi3910/LaserNest/internal/numeric"
)

const (
	// Gap is the clearance between packed parts and from the sheet edge, in mm.
	Gap = 5.0

	// MaxSampledPositions bounds the placements generated for previews.
	// It never affects PartsPerSheet or TotalSheets.
	MaxSampledPositions = 100

	// MaxPartsPerSheet is the largest grid a layout may hold. Every cell is
	// traced by the G-code generator, so larger grids are rejected.
	MaxPartsPerSheet = 1_000_000
)

// NestOptions are the run-wide parameters of a nesting computation.
type NestOptions struct {
	Scale       float64
	Unit        model.Unit
	SheetWidth  float64 // mm
	SheetHeight float64 // mm
	Quantity    int
}

// Sanitized replaces invalid options with their defaults.
func (o NestOptions) Sanitized() NestOptions {
	return NestOptions{
		Scale:       numeric.ValidOrDefault(o.Scale, numeric.Positive, model.DefaultScale),
		Unit:        model.ParseUnit(string(o.Unit)),
		SheetWidth:  numeric.ValidOrDefault(o.SheetWidth, numeric.Positive, model.DefaultSheetWidth),
		SheetHeight: numeric.ValidOrDefault(o.SheetHeight, numeric.Positive, model.DefaultSheetHeight),
		Quantity:    numeric.PositiveIntOrDefault(o.Quantity, model.DefaultQuantity),
	}
}

// grid is one orientation of a part on a sheet.
type grid struct {
	cols, rows int
	w, h       float64 // placed footprint
	rotation   int
}

// capacity is computed in float64 so huge grids cannot wrap.
func (g grid) capacity() float64 {
	return float64(g.cols) * float64(g.rows)
}

func (g grid) count() int {
	if g.capacity() > MaxPartsPerSheet {
		return MaxPartsPerSheet
	}
	return g.cols * g.rows
}

func (g grid) saturated() bool {
	return g.capacity() > MaxPartsPerSheet
}

// cells floors a sheet side over a pitch and caps it at math.MaxInt32.
func cells(side, pitch float64) int {
	n := math.Floor(numeric.SafeDivide(side, pitch, 0))
	switch {
	case !numeric.IsValidNumber(n) || n < 0:
		return 0
	case n > math.MaxInt32:
		return math.MaxInt32
	}
	return int(n)
}

func fitGrid(sheetW, sheetH, w, h float64, rotation int) grid {
	return grid{
		cols:     cells(sheetW, w+Gap),
		rows:     cells(sheetH, h+Gap),
		w:        w,
		h:        h,
		rotation: rotation,
	}
}

// bestGrid evaluates both orientations. Ties keep the unrotated one.
func bestGrid(sheetW, sheetH, w, h float64) grid {
	a := fitGrid(sheetW, sheetH, w, h, 0)
	b := fitGrid(sheetW, sheetH, h, w, 90)
	if b.capacity() > a.capacity() {
		return b
	}
	return a
}

func fitsSheet(w, h, sheetW, sheetH float64) bool {
	minPart, maxPart := math.Min(w, h), math.Max(w, h)
	minSheet, maxSheet := math.Min(sheetW, sheetH), math.Max(sheetW, sheetH)
	return minPart+Gap <= minSheet && maxPart+Gap <= maxSheet
}

// samplePositions lays out up to MaxSampledPositions cells row-major.
func samplePositions(g grid, total int) []model.Position {
	if total > MaxSampledPositions {
		total = MaxSampledPositions
	}
	return g.positions(total)
}

// positions lays out the first n cells of the grid row-major.
func (g grid) positions(n int) []model.Position {
	if c := g.count(); n > c {
		n = c
	}
	if n < 0 {
		n = 0
	}
	positions := make([]model.Position, 0, n)
	for row := 0; row < g.rows && len(positions) < n; row++ {
		for col := 0; col < g.cols && len(positions) < n; col++ {
			positions = append(positions, model.Position{
				X:        float64(col)*(g.w+Gap) + Gap,
				Y:        float64(row)*(g.h+Gap) + Gap,
				Rotation: g.rotation,
			})
		}
	}
	return positions
}

// LayoutPositions rebuilds every placement of a layout, not only the
// sampled ones kept in Positions. The grid is recovered from the sheet,
// the part and the rotation of the first sampled position.
func LayoutPositions(l model.SheetLayout) []model.Position {
	if !l.Fits() || len(l.Positions) == 0 {
		return nil
	}
	if len(l.Positions) >= l.PartsPerSheet {
		return l.Positions
	}
	first := l.Positions[0]
	w, h := l.PlacedSize(first)
	g := fitGrid(l.SheetWidth, l.SheetHeight, w, h, first.Rotation)
	if g.saturated() {
		return l.Positions
	}
	return g.positions(l.PartsPerSheet)
}

// NestPart computes the layout of a single part. The returned error is a
// *InvalidPartError (no layout), or a *PartTooLargeError or
// *CapacityExceededError (zero-capacity layout).
func NestPart(part model.Part, opts NestOptions) (*model.SheetLayout, error) {
	opts = opts.Sanitized()
	mult := opts.Scale * opts.Unit.Multiplier()
	w := part.Width * mult
	h := part.Height * mult
	if !numeric.Positive(w) || !numeric.Positive(h) {
		return nil, &InvalidPartError{PartName: part.Name, Width: w, Height: h}
	}

	layout := &model.SheetLayout{
		PartID:      part.ID,
		PartName:    part.Name,
		SheetWidth:  opts.SheetWidth,
		SheetHeight: opts.SheetHeight,
		PartWidth:   w,
		PartHeight:  h,
		Positions:   []model.Position{},
	}

	if !fitsSheet(w, h, opts.SheetWidth, opts.SheetHeight) {
		layout.WastePercent = 100
		return layout, &PartTooLargeError{
			PartName:    part.Name,
			Width:       w,
			Height:      h,
			SheetWidth:  opts.SheetWidth,
			SheetHeight: opts.SheetHeight,
		}
	}

	g := bestGrid(opts.SheetWidth, opts.SheetHeight, w, h)
	if g.saturated() {
		layout.WastePercent = 100
		return layout, &CapacityExceededError{
			PartName:    part.Name,
			Width:       w,
			Height:      h,
			SheetWidth:  opts.SheetWidth,
			SheetHeight: opts.SheetHeight,
			Limit:       MaxPartsPerSheet,
		}
	}
	perSheet := g.count()
	layout.PartsPerSheet = perSheet
	layout.TotalSheets = int(numeric.SafeCeil(numeric.SafeDivide(float64(opts.Quantity), float64(perSheet), 0), 0))
	layout.Positions = samplePositions(g, perSheet)

	util := numeric.SafeDivide(float64(perSheet)*w*h, opts.SheetWidth*opts.SheetHeight, 0) * 100
	layout.Utilization = numeric.Clamp(util, 0, 100)
	layout.WastePercent = 100 - layout.Utilization
	return layout, nil
}

// ComputeNesting packs each part independently on the configured sheet.
// Per-part failures never stop the batch: the complete result is always
// returned, together with the first failure encountered.
func ComputeNesting(parts []model.Part, opts NestOptions) (model.NestingResult, error) {
	opts = opts.Sanitized()

	result := model.NestingResult{
		Layouts:    make([]model.SheetLayout, 0, len(parts)),
		TotalParts: len(parts),
	}
	var firstErr error
	var utilSum float64

	for _, p := range parts {
		layout, err := NestPart(p, opts)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if layout == nil {
			continue
		}
		result.Layouts = append(result.Layouts, *layout)
		result.TotalSheets += layout.TotalSheets
		utilSum += layout.Utilization
	}

	// Unweighted: a one-sheet layout counts as much as a fifty-sheet one.
	result.GlobalUtilization = numeric.SafeDivide(utilSum, float64(len(result.Layouts)), 0)
	return result, firstErr
}
