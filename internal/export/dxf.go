package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/LaserNest/internal/model"
)

// SheetSpacing is the horizontal gap between sheets laid side by side.
const SheetSpacing = 200.0

// Layer names used in exported drawings.
const (
	LayerSheets = "SHEETS"
	LayerParts  = "PARTS"
	LayerLabels = "LABELS"
)

// textHeight is the text height of sheet labels, in drawing units.
const textHeight = 20.0

// Polyline is a closed outline in drawing coordinates.
type Polyline struct {
	Layer    string
	Vertices []model.Point2D
}

// Label is a text entity in drawing coordinates.
type Label struct {
	Text   string
	X, Y   float64
	Height float64
}

// LayoutDocument is the geometry of an exported nesting layout.
type LayoutDocument struct {
	Polylines []Polyline
	Labels    []Label
	Width     float64
	Height    float64
}

func rect(layer string, x, y, w, h float64) Polyline {
	return Polyline{
		Layer: layer,
		Vertices: []model.Point2D{
			{X: x, Y: y},
			{X: x + w, Y: y},
			{X: x + w, Y: y + h},
			{X: x, Y: y + h},
		},
	}
}

// BuildLayout places every layout's sheet side by side and draws the sheet
// boundary, one rectangle per sampled position and a label. Unfit layouts
// still get their boundary and label so the failure shows in the drawing.
func BuildLayout(nr model.NestingResult) LayoutDocument {
	var doc LayoutDocument
	offsetX := 0.0

	for i, l := range nr.Layouts {
		doc.Polylines = append(doc.Polylines, rect(LayerSheets, offsetX, 0, l.SheetWidth, l.SheetHeight))

		for _, p := range l.Positions {
			w, h := l.PlacedSize(p)
			doc.Polylines = append(doc.Polylines, rect(LayerParts, offsetX+p.X, p.Y, w, h))
		}

		doc.Labels = append(doc.Labels, Label{
			Text:   fmt.Sprintf("Sheet %d: %s (%d sheets)", i+1, l.PartName, l.TotalSheets),
			X:      offsetX,
			Y:      l.SheetHeight + textHeight,
			Height: textHeight,
		})

		if l.SheetHeight > doc.Height {
			doc.Height = l.SheetHeight
		}
		doc.Width = offsetX + l.SheetWidth
		offsetX += l.SheetWidth + SheetSpacing
	}

	return doc
}

// ExportDXF writes the nesting layout as a DXF drawing with sheets, parts
// and labels on separate layers.
func ExportDXF(path string, nr model.NestingResult) error {
	if len(nr.Layouts) == 0 {
		return fmt.Errorf("no layouts to export")
	}
	doc := BuildLayout(nr)

	d := dxf.NewDrawing()
	layers := []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerSheets, color.White},
		{LayerParts, color.Red},
		{LayerLabels, color.Cyan},
	}
	for _, ly := range layers {
		if _, err := d.AddLayer(ly.name, ly.col, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", ly.name, err)
		}
	}

	current := ""
	for _, pl := range doc.Polylines {
		if pl.Layer != current {
			if err := d.ChangeLayer(pl.Layer); err != nil {
				return fmt.Errorf("failed to select layer %s: %w", pl.Layer, err)
			}
			current = pl.Layer
		}
		verts := make([][]float64, len(pl.Vertices))
		for i, v := range pl.Vertices {
			verts[i] = []float64{v.X, v.Y}
		}
		if _, err := d.LwPolyline(true, verts...); err != nil {
			return fmt.Errorf("failed to add polyline: %w", err)
		}
	}

	if err := d.ChangeLayer(LayerLabels); err != nil {
		return fmt.Errorf("failed to select layer %s: %w", LayerLabels, err)
	}
	for _, lb := range doc.Labels {
		if _, err := d.Text(lb.Text, lb.X, lb.Y, 0, lb.Height); err != nil {
			return fmt.Errorf("failed to add label %q: %w", lb.Text, err)
		}
	}

	return d.SaveAs(path)
}
