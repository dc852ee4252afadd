package model

import (
	"strings"

	"github.com/google/uuid"

	"github.com/piwi3910/LaserNest/internal/numeric"
)

// Unit is the drawing unit of an uploaded design.
type Unit string

const (
	UnitMM   Unit = "mm"
	UnitCM   Unit = "cm"
	UnitM    Unit = "m"
	UnitInch Unit = "inch"
)

// ParseUnit normalizes a unit name. Unknown names map to millimeters.
func ParseUnit(s string) Unit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cm":
		return UnitCM
	case "m":
		return UnitM
	case "inch", "in", "\"":
		return UnitInch
	default:
		return UnitMM
	}
}

// Multiplier returns the factor that converts one unit into millimeters.
func (u Unit) Multiplier() float64 {
	switch u {
	case UnitCM:
		return 10
	case UnitM:
		return 1000
	case UnitInch:
		return 25.4
	default:
		return 1
	}
}

func (u Unit) String() string {
	if u == "" {
		return string(UnitMM)
	}
	return string(u)
}

// FileType identifies how an uploaded design was produced.
type FileType string

const (
	FileSVG      FileType = "svg"
	FileDXF      FileType = "dxf"
	FileImage    FileType = "image"
	FileManifest FileType = "manifest"
)

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PathData is one cuttable path extracted from an uploaded design.
type PathData struct {
	ID       string  `json:"id"`
	Length   float64 `json:"length"` // source units, pre-scale
	Selected bool    `json:"selected"`
}

// SourceFile is an uploaded design after parsing: its bounding dimensions
// in source units and the paths found inside it.
type SourceFile struct {
	Name   string     `json:"name"`
	Type   FileType   `json:"type"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Paths  []PathData `json:"paths,omitempty"`
}

// SelectedPathLength sums the lengths of the selected paths.
func (f SourceFile) SelectedPathLength() float64 {
	var total float64
	for _, p := range f.Paths {
		if p.Selected && p.Length > 0 {
			total += p.Length
		}
	}
	return total
}

// Selection is a user-drawn crop rectangle over a rendered preview.
type Selection struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CroppedPreview carries the pixel size of the preview cropped for a selection.
type CroppedPreview struct {
	SelectionID string  `json:"selection_id"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
}

// Part is one distinct design element to be cut.
type Part struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Width      float64 `json:"width"`       // source units, pre-scale
	Height     float64 `json:"height"`      // source units, pre-scale
	PathLength float64 `json:"path_length"` // source units, pre-scale
	ExactPath  bool    `json:"exact_path"`  // PathLength comes from selected path data
}

// DefaultPartSize is used when a part's dimensions are missing or invalid.
const DefaultPartSize = 100.0

func NewPart(name string, w, h float64) Part {
	return Part{
		ID:         uuid.New().String()[:8],
		Name:       name,
		Width:      w,
		Height:     h,
		PathLength: 2 * (w + h),
	}
}

// Position is one sampled placement of a part on a sheet.
type Position struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation int     `json:"rotation"` // 0 or 90 degrees
}

// Rotated reports whether the placement is turned by 90 degrees.
func (p Position) Rotated() bool {
	return p.Rotation == 90
}

// SheetLayout is the nesting of a single part type on stock sheets.
type SheetLayout struct {
	PartID        string     `json:"part_id"`
	PartName      string     `json:"part_name"`
	SheetWidth    float64    `json:"sheet_width"`
	SheetHeight   float64    `json:"sheet_height"`
	PartWidth     float64    `json:"part_width"`  // scaled, pre-rotation (mm)
	PartHeight    float64    `json:"part_height"` // scaled, pre-rotation (mm)
	PartsPerSheet int        `json:"parts_per_sheet"`
	TotalSheets   int        `json:"total_sheets"`
	Utilization   float64    `json:"utilization"`
	WastePercent  float64    `json:"waste_percent"`
	Positions     []Position `json:"positions"`
}

// Fits reports whether at least one instance of the part fits on a sheet.
func (l SheetLayout) Fits() bool {
	return l.PartsPerSheet > 0
}

// PlacedSize returns the footprint of a placement, swapping sides when rotated.
func (l SheetLayout) PlacedSize(p Position) (w, h float64) {
	if p.Rotated() {
		return l.PartHeight, l.PartWidth
	}
	return l.PartWidth, l.PartHeight
}

// SheetArea returns the stock sheet area in square mm.
func (l SheetLayout) SheetArea() float64 {
	return l.SheetWidth * l.SheetHeight
}

// NestingResult aggregates the layouts of one estimation run.
type NestingResult struct {
	Layouts           []SheetLayout `json:"layouts"`
	TotalSheets       int           `json:"total_sheets"`
	GlobalUtilization float64       `json:"global_utilization"`
	TotalParts        int           `json:"total_parts"`
}

// UnfitLayouts returns the layouts whose part does not fit on the sheet.
func (nr NestingResult) UnfitLayouts() []SheetLayout {
	var out []SheetLayout
	for _, l := range nr.Layouts {
		if !l.Fits() {
			out = append(out, l)
		}
	}
	return out
}

// EstimationResult is the cost breakdown of one run.
type EstimationResult struct {
	MaterialID         string  `json:"material_id"`
	Thickness          float64 `json:"thickness"`
	Quantity           int     `json:"quantity"`
	CuttingSpeed       float64 `json:"cutting_speed"`        // mm/min
	TotalCuttingLength float64 `json:"total_cutting_length"` // mm
	CuttingTime        float64 `json:"cutting_time"`         // minutes
	MaterialCost       float64 `json:"material_cost"`
	LaborCost          float64 `json:"labor_cost"`
	GasCost            float64 `json:"gas_cost"`
	TotalCost          float64 `json:"total_cost"`
	PricePerPiece      float64 `json:"price_per_piece"`
	GasUsage           float64 `json:"gas_usage"` // m3
	GasTanks           float64 `json:"gas_tanks"`
	ProcessedArea      float64 `json:"processed_area"` // square mm
	TotalSheets        int     `json:"total_sheets"`
	WastePercent       float64 `json:"waste_percent"`
}

// Valid reports whether the total cost is a finite, non-negative amount.
// Callers flag any other value as an invalid estimate.
func (r EstimationResult) Valid() bool {
	return numeric.NonNegative(r.TotalCost)
}
