package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/LaserNest/internal/model"
)

// LabelInfo holds the data encoded into each part label's QR code.
type LabelInfo struct {
	PartID      string  `json:"id"`
	PartName    string  `json:"part"`
	Width       float64 `json:"width_mm"`
	Height      float64 `json:"height_mm"`
	SheetIndex  int     `json:"sheet"`
	Quantity    int     `json:"qty"`
	TotalSheets int     `json:"sheets"`
	Material    string  `json:"material,omitempty"`
	Thickness   float64 `json:"thickness_mm,omitempty"`
	Rotated     bool    `json:"rotated"`
}

// LabelOptions carries the job details printed on every label.
type LabelOptions struct {
	Material  string
	Thickness float64
	Quantity  int
}

// Avery 5160 compatible sheet: 3 x 10 labels of 66.7 x 25.4 mm on US Letter.
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelsPerPage   = labelCols * 10
	qrSize          = 20.0
	labelPadding    = 2.0
)

// ExportLabels writes a PDF with one QR-coded label per layout that fits its
// sheet. The QR code carries the LabelInfo as JSON.
func ExportLabels(path string, nr model.NestingResult, opts LabelOptions) error {
	if len(nr.Layouts) == 0 {
		return fmt.Errorf("no layouts to generate labels for")
	}
	labels := CollectLabelInfos(nr, opts)
	if len(labels) == 0 {
		return fmt.Errorf("no fitting parts to generate labels for")
	}

	w := pdfWriter{fpdf.New("P", "mm", "Letter", "")}
	w.SetAutoPageBreak(false, 0)

	for i, info := range labels {
		slot := i % labelsPerPage
		if slot == 0 {
			w.AddPage()
		}
		x := labelMarginLeft + float64(slot%labelCols)*labelWidth
		y := labelMarginTop + float64(slot/labelCols)*labelHeight
		if err := w.label(x, y, info); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", info.PartName, err)
		}
	}
	return w.OutputFileAndClose(path)
}

// qrImage registers the QR code for info and returns its image name.
func (w pdfWriter) qrImage(info LabelInfo) (string, error) {
	payload, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to marshal label info: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}
	name := fmt.Sprintf("qr_%d_%s", info.SheetIndex, info.PartID)
	w.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	return name, nil
}

// label draws one label with its top-left corner at x, y: text on the left,
// the QR code on the right and a light cutting guide around it.
func (w pdfWriter) label(x, y float64, info LabelInfo) error {
	w.drawColor(rgb{200, 200, 200})
	w.SetLineWidth(0.1)
	w.Rect(x, y, labelWidth, labelHeight, "D")

	img, err := w.qrImage(info)
	if err != nil {
		return err
	}
	w.ImageOptions(img, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2,
		qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	tx := x + labelPadding
	ty := y + labelPadding
	tw := labelWidth - qrSize - 3*labelPadding

	w.font("B", 9)
	w.textColor(black)
	w.textAt(tx, ty, tw, 4.5, w.truncate(info.PartName, tw), "L")

	w.font("", 7)
	w.textAt(tx, ty+5, tw, 3.5, fmt.Sprintf("%.0f x %.0f mm", info.Width, info.Height), "L")

	w.font("", 6)
	w.textColor(rgb{100, 100, 100})
	w.textAt(tx, ty+9, tw, 3,
		fmt.Sprintf("Sheet %d | qty %d | %d sheets", info.SheetIndex, info.Quantity, info.TotalSheets), "L")
	if info.Material != "" {
		w.textAt(tx, ty+12.5, tw, 3, fmt.Sprintf("%s %.1f mm", info.Material, info.Thickness), "L")
	}
	if info.Rotated {
		w.font("I", 6)
		w.textColor(rgb{150, 100, 0})
		w.textAt(tx, ty+16, tw, 3, "Rotated 90\xb0", "L")
	}
	w.textColor(black)
	return nil
}

// truncate shortens s with an ellipsis until it fits width in the current font.
func (w pdfWriter) truncate(s string, width float64) string {
	if w.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && w.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// CollectLabelInfos extracts one label per fitting layout of a nesting result.
func CollectLabelInfos(nr model.NestingResult, opts LabelOptions) []LabelInfo {
	var labels []LabelInfo
	for i, l := range nr.Layouts {
		if !l.Fits() {
			continue
		}
		rotated := len(l.Positions) > 0 && l.Positions[0].Rotated()
		labels = append(labels, LabelInfo{
			PartID:      l.PartID,
			PartName:    l.PartName,
			Width:       l.PartWidth,
			Height:      l.PartHeight,
			SheetIndex:  i + 1,
			Quantity:    opts.Quantity,
			TotalSheets: l.TotalSheets,
			Material:    opts.Material,
			Thickness:   opts.Thickness,
			Rotated:     rotated,
		})
	}
	return labels
}
