// Package export writes nesting layouts and cost quotes to DXF, PDF, XLSX
// and QR label files.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/LaserNest/internal/model"
)

type rgb struct{ r, g, b int }

// layoutColors cycles per layout so each page keeps one part color.
var layoutColors = []rgb{
	{76, 175, 80},  // green
	{33, 150, 243}, // blue
	{255, 152, 0},  // orange
	{156, 39, 176}, // purple
	{0, 188, 212},  // cyan
	{244, 67, 54},  // red
	{255, 235, 59}, // yellow
	{121, 85, 72},  // brown
}

var (
	black     = rgb{0, 0, 0}
	darkGrey  = rgb{80, 80, 80}
	sheetGrey = rgb{200, 204, 208}
	alertRed  = rgb{200, 0, 0}
)

// A4 landscape, mm.
const (
	pageW       = 297.0
	pageH       = 210.0
	margin      = 15.0
	contentW    = pageW - 2*margin
	titleH      = 12.0
	footerSpace = 20.0
	canvasTop   = margin + titleH + 5.0
)

// pdfWriter wraps fpdf with the handful of drawing calls the reports use.
type pdfWriter struct {
	*fpdf.Fpdf
}

func (w pdfWriter) font(style string, size float64) {
	w.SetFont("Helvetica", style, size)
}

func (w pdfWriter) textColor(c rgb) { w.SetTextColor(c.r, c.g, c.b) }
func (w pdfWriter) fillColor(c rgb) { w.SetFillColor(c.r, c.g, c.b) }
func (w pdfWriter) drawColor(c rgb) { w.SetDrawColor(c.r, c.g, c.b) }

// textAt writes a single cell at x, y.
func (w pdfWriter) textAt(x, y, width, height float64, s, align string) {
	w.SetXY(x, y)
	w.CellFormat(width, height, s, "", 0, align, false, 0, "")
}

// centered writes s centered on x.
func (w pdfWriter) centered(x, y, height float64, s string) {
	sw := w.GetStringWidth(s)
	w.textAt(x-sw/2, y, sw, height, s, "C")
}

// ExportPDF writes one page per layout followed by a summary page with the
// nesting totals and, when q is not nil, the quote.
func ExportPDF(path string, nr model.NestingResult, q *Quote) error {
	if len(nr.Layouts) == 0 {
		return fmt.Errorf("no layouts to export")
	}

	w := pdfWriter{fpdf.New("L", "mm", "A4", "")}
	w.SetAutoPageBreak(false, margin)

	for i, l := range nr.Layouts {
		w.AddPage()
		w.layoutPage(l, i+1)
	}
	w.AddPage()
	w.summaryPage(nr, q)

	return w.OutputFileAndClose(path)
}

// sheetCanvas maps sheet millimetres onto the page.
type sheetCanvas struct {
	x, y, scale float64
	w, h        float64
}

func newSheetCanvas(l model.SheetLayout) sheetCanvas {
	areaH := pageH - canvasTop - margin - footerSpace
	scale := math.Min(contentW/l.SheetWidth, areaH/l.SheetHeight)
	c := sheetCanvas{scale: scale, w: l.SheetWidth * scale, h: l.SheetHeight * scale}
	c.x = margin + (contentW-c.w)/2
	c.y = canvasTop
	return c
}

func (c sheetCanvas) rect(x, y, w, h float64) (float64, float64, float64, float64) {
	return c.x + x*c.scale, c.y + y*c.scale, w * c.scale, h * c.scale
}

func (w pdfWriter) layoutPage(l model.SheetLayout, n int) {
	w.font("B", 14)
	w.textAt(margin, margin, contentW, titleH,
		fmt.Sprintf("Sheet %d: %s (%.0f x %.0f mm)", n, l.PartName, l.SheetWidth, l.SheetHeight), "L")
	w.font("", 10)
	w.textAt(margin, margin+titleH, contentW, 5,
		fmt.Sprintf("Part: %.1f x %.1f mm | Per sheet: %d | Sheets: %d | Utilization: %.1f%% | Waste: %.1f%%",
			l.PartWidth, l.PartHeight, l.PartsPerSheet, l.TotalSheets, l.Utilization, l.WastePercent), "L")

	c := newSheetCanvas(l)
	w.fillColor(sheetGrey)
	w.drawColor(rgb{100, 100, 100})
	w.SetLineWidth(0.5)
	w.Rect(c.x, c.y, c.w, c.h, "FD")

	if !l.Fits() {
		w.hatch(c.x, c.y, c.w, c.h)
		w.font("B", 12)
		w.textColor(alertRed)
		w.centered(c.x+c.w/2, c.y+c.h/2-3, 6, "PART DOES NOT FIT")
		w.textColor(black)
	}

	color := layoutColors[(n-1)%len(layoutColors)]
	for _, p := range l.Positions {
		pw, ph := l.PlacedSize(p)
		x, y, rw, rh := c.rect(p.X, p.Y, pw, ph)
		w.fillColor(color)
		w.drawColor(rgb{30, 30, 30})
		w.SetLineWidth(0.3)
		w.Rect(x, y, rw, rh, "FD")

		if rw <= 15 || rh <= 8 {
			continue
		}
		w.font("", labelFontSize(rw, rh))
		w.textColor(black)
		if dims := fmt.Sprintf("%.0fx%.0f", pw, ph); w.GetStringWidth(dims) < rw-2 {
			w.centered(x+rw/2, y+rh/2-2, 4, dims)
		}
	}

	w.sheetDimensions(l, c)

	if len(l.Positions) < l.PartsPerSheet {
		w.font("I", 8)
		w.textAt(margin, c.y+c.h+6, contentW, 4,
			fmt.Sprintf("Showing %d of %d placements per sheet", len(l.Positions), l.PartsPerSheet), "L")
	}
}

// hatch fills a rectangle with red diagonal lines.
func (w pdfWriter) hatch(x, y, width, height float64) {
	const spacing = 4.0
	w.drawColor(alertRed)
	w.SetLineWidth(0.15)
	for d := spacing; d < width+height; d += spacing {
		w.Line(x+math.Max(0, d-height), y+math.Min(height, d), x+math.Min(width, d), y+math.Max(0, d-width))
	}
}

// sheetDimensions labels the sheet width below the canvas and its height,
// rotated, to the left.
func (w pdfWriter) sheetDimensions(l model.SheetLayout, c sheetCanvas) {
	w.font("", 8)
	w.textColor(darkGrey)
	w.centered(c.x+c.w/2, c.y+c.h+1, 4, fmt.Sprintf("%.0f mm", l.SheetWidth))

	cx, cy := c.x-3, c.y+c.h/2
	w.TransformBegin()
	w.TransformRotate(90, cx, cy)
	w.centered(cx, cy-2, 4, fmt.Sprintf("%.0f mm", l.SheetHeight))
	w.TransformEnd()
	w.textColor(black)
}

func (w pdfWriter) summaryPage(nr model.NestingResult, q *Quote) {
	w.font("B", 16)
	w.textAt(margin, margin, contentW, 10, "Laser Cutting Estimate", "L")
	w.drawColor(black)
	w.SetLineWidth(0.5)
	w.Line(margin, margin+12, pageW-margin, margin+12)

	y := margin + 18
	w.font("B", 12)
	w.textAt(margin, y, 100, 7, "Nesting", "L")
	y += 9

	y = w.keyValues(y, [][2]string{
		{"Part Types", fmt.Sprintf("%d", nr.TotalParts)},
		{"Total Sheets", fmt.Sprintf("%d", nr.TotalSheets)},
		{"Utilization", fmt.Sprintf("%.1f%%", nr.GlobalUtilization)},
		{"Parts That Do Not Fit", fmt.Sprintf("%d", len(nr.UnfitLayouts()))},
	})
	y += 5

	rows := make([][]string, len(nr.Layouts))
	alert := make([]bool, len(nr.Layouts))
	for i, l := range nr.Layouts {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			l.PartName,
			fmt.Sprintf("%.1f x %.1f mm", l.PartWidth, l.PartHeight),
			fmt.Sprintf("%d", l.PartsPerSheet),
			fmt.Sprintf("%d", l.TotalSheets),
			fmt.Sprintf("%.1f%%", l.Utilization),
			fmt.Sprintf("%.1f%%", l.WastePercent),
		}
		alert[i] = !l.Fits()
	}
	y = w.table(y,
		[]float64{20, 70, 45, 30, 30, 35, 35},
		[]string{"Sheet", "Part", "Part Size", "Per Sheet", "Sheets", "Utilization", "Waste"},
		rows, alert)

	if q != nil {
		w.quote(*q, y+8)
	}

	w.font("I", 8)
	w.textColor(rgb{120, 120, 120})
	w.textAt(margin, pageH-margin, contentW, 4, "Generated by LaserNest - Laser Cutting Estimator", "C")
}

// table draws a bordered grid with zebra rows; rows flagged in alert are
// printed in red. It returns the y below the table.
func (w pdfWriter) table(y float64, widths []float64, headers []string, rows [][]string, alert []bool) float64 {
	const rowH = 6.0
	cells := func(values []string, fill bool) {
		x := margin
		for i, v := range values {
			w.SetXY(x, y)
			w.CellFormat(widths[i], rowH, v, "1", 0, "C", fill, 0, "")
			x += widths[i]
		}
		y += rowH
	}

	w.font("B", 9)
	w.fillColor(rgb{230, 230, 230})
	cells(headers, true)

	w.font("", 9)
	for i, row := range rows {
		if i%2 == 0 {
			w.fillColor(rgb{245, 245, 245})
		} else {
			w.fillColor(rgb{255, 255, 255})
		}
		if alert[i] {
			w.textColor(alertRed)
		}
		cells(row, true)
		w.textColor(black)
	}
	return y
}

// quote draws the cost lines, total and price per piece.
func (w pdfWriter) quote(q Quote, y float64) float64 {
	w.font("B", 12)
	w.textColor(black)
	w.textAt(margin, y, 200, 7, fmt.Sprintf("Quote: %s %.1f mm x %d", q.MaterialName, q.Thickness, q.Quantity), "L")
	y += 9

	x := margin + 5
	w.font("", 9)
	for _, line := range q.Lines {
		w.SetXY(x, y)
		w.CellFormat(90, 5, line.Label, "", 0, "L", false, 0, "")
		w.CellFormat(40, 5, line.Quantity.String()+" "+line.Measure, "", 0, "R", false, 0, "")
		w.CellFormat(50, 5, FormatMoney(line.Amount, q.Currency, q.Decimals), "", 0, "R", false, 0, "")
		y += 5
	}

	w.font("B", 10)
	w.SetXY(x, y+1)
	w.CellFormat(130, 6, "Total", "T", 0, "L", false, 0, "")
	w.CellFormat(50, 6, FormatMoney(q.Total, q.Currency, q.Decimals), "T", 0, "R", false, 0, "")
	y += 7

	w.font("", 9)
	w.SetXY(x, y)
	w.CellFormat(130, 5, "Price per piece", "", 0, "L", false, 0, "")
	w.CellFormat(50, 5, FormatMoney(q.PricePerPiece, q.Currency, q.Decimals), "", 0, "R", false, 0, "")
	return y + 6
}

// keyValues prints label: value pairs with bold values.
func (w pdfWriter) keyValues(y float64, items [][2]string) float64 {
	for _, kv := range items {
		w.font("", 10)
		w.textAt(margin+5, y, 60, 6, kv[0]+":", "L")
		w.font("B", 10)
		w.CellFormat(40, 6, kv[1], "", 0, "L", false, 0, "")
		y += 7
	}
	return y
}

// labelFontSize picks a font size that fits a drawn part of w x h mm.
func labelFontSize(w, h float64) float64 {
	switch d := math.Min(w, h); {
	case d > 40:
		return 8
	case d > 20:
		return 7
	default:
		return 6
	}
}
