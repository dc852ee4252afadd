package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/LaserNest/internal/model"
)

func buildTestNesting() model.NestingResult {
	return model.NestingResult{
		Layouts: []model.SheetLayout{
			{
				PartID: "p1", PartName: "Bracket",
				SheetWidth: 1220, SheetHeight: 2440,
				PartWidth: 600, PartHeight: 300,
				PartsPerSheet: 2, TotalSheets: 5,
				Utilization: 12, WastePercent: 88,
				Positions: []model.Position{{X: 5, Y: 5}, {X: 610, Y: 5}},
			},
			{
				PartID: "p2", PartName: "Strip",
				SheetWidth: 1000, SheetHeight: 2000,
				PartWidth: 100, PartHeight: 400,
				PartsPerSheet: 1, TotalSheets: 3,
				Utilization: 2, WastePercent: 98,
				Positions: []model.Position{{X: 5, Y: 5, Rotation: 90}},
			},
			{
				PartID: "p3", PartName: "Huge",
				SheetWidth: 1220, SheetHeight: 2440,
				PartWidth: 1300, PartHeight: 2500,
				WastePercent: 100,
			},
		},
		TotalSheets:       8,
		GlobalUtilization: 14.0 / 3,
		TotalParts:        3,
	}
}

func TestBuildLayout_SheetsSideBySide(t *testing.T) {
	doc := BuildLayout(buildTestNesting())

	// 3 sheet boundaries + 3 sampled positions.
	require.Len(t, doc.Polylines, 6)
	require.Len(t, doc.Labels, 3)

	first := doc.Polylines[0]
	assert.Equal(t, LayerSheets, first.Layer)
	assert.Equal(t, []model.Point2D{{X: 0, Y: 0}, {X: 1220, Y: 0}, {X: 1220, Y: 2440}, {X: 0, Y: 2440}}, first.Vertices)

	second := doc.Polylines[3]
	assert.Equal(t, LayerSheets, second.Layer)
	assert.Equal(t, 1420.0, second.Vertices[0].X)

	third := doc.Polylines[5]
	assert.Equal(t, 2620.0, third.Vertices[0].X)

	assert.Equal(t, 3840.0, doc.Width)
	assert.Equal(t, 2440.0, doc.Height)
}

func TestBuildLayout_RotatedPositionSwapsSides(t *testing.T) {
	doc := BuildLayout(buildTestNesting())

	strip := doc.Polylines[4]
	assert.Equal(t, LayerParts, strip.Layer)
	assert.Equal(t, model.Point2D{X: 1425, Y: 5}, strip.Vertices[0])
	// Rotated: 400 wide, 100 tall.
	assert.Equal(t, model.Point2D{X: 1825, Y: 105}, strip.Vertices[2])
}

func TestBuildLayout_LabelsAndUnfitSheet(t *testing.T) {
	doc := BuildLayout(buildTestNesting())

	assert.Equal(t, "Sheet 1: Bracket (5 sheets)", doc.Labels[0].Text)
	assert.Equal(t, "Sheet 3: Huge (0 sheets)", doc.Labels[2].Text)
	assert.Equal(t, 2620.0, doc.Labels[2].X)
	assert.Greater(t, doc.Labels[0].Y, 2440.0)
}

func TestBuildLayout_Empty(t *testing.T) {
	doc := BuildLayout(model.NestingResult{})
	assert.Empty(t, doc.Polylines)
	assert.Empty(t, doc.Labels)
}

func TestExportDXF_ReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.dxf")
	require.NoError(t, ExportDXF(path, buildTestNesting()))

	d, err := dxf.Open(path)
	require.NoError(t, err)

	var polylines []*entity.LwPolyline
	for _, e := range d.Entities() {
		if lw, ok := e.(*entity.LwPolyline); ok {
			polylines = append(polylines, lw)
		}
	}
	require.Len(t, polylines, 6)
	require.Len(t, polylines[0].Vertices, 4)
	assert.InDelta(t, 1220.0, polylines[0].Vertices[1][0], 1e-6)
	assert.InDelta(t, 2440.0, polylines[0].Vertices[2][1], 1e-6)
}

func TestExportDXF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dxf")
	assert.Error(t, ExportDXF(path, model.NestingResult{}))
}
