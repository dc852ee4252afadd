// Package report renders nesting, quote and history results for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/piwi3910/LaserNest/internal/engine"
	"github.com/piwi3910/LaserNest/internal/export"
	"github.com/piwi3910/LaserNest/internal/history"
	"github.com/piwi3910/LaserNest/internal/model"
)

// Renderer writes plain-text reports, styling headings when the output is a
// color-capable terminal.
type Renderer struct {
	w       io.Writer
	heading lipgloss.Style
	warn    lipgloss.Style
	color   bool
}

// New returns a renderer for w. Color is enabled only for terminals and can
// be disabled with NO_COLOR.
func New(w io.Writer) *Renderer {
	return NewWithColor(w, shouldUseColor(w))
}

// NewWithColor returns a renderer with color forced on or off.
func NewWithColor(w io.Writer, color bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		w:       w,
		color:   color,
		heading: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A")),
		warn:    lr.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	}
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func (r *Renderer) title(s string) {
	if r.color {
		s = r.heading.Render(s)
	}
	fmt.Fprintln(r.w, s)
}

func (r *Renderer) table(headers []string, rows [][]string, right map[int]bool) {
	for _, line := range formatTable(headers, rows, right) {
		fmt.Fprintln(r.w, line)
	}
	fmt.Fprintln(r.w)
}

// Warnings prints each message on its own line.
func (r *Renderer) Warnings(msgs []string) {
	for _, m := range msgs {
		line := "warning: " + m
		if r.color {
			line = r.warn.Render(line)
		}
		fmt.Fprintln(r.w, line)
	}
}

// Nesting prints one row per layout followed by the totals.
func (r *Renderer) Nesting(nr model.NestingResult) {
	r.title("Nesting")
	rows := make([][]string, 0, len(nr.Layouts))
	for i, l := range nr.Layouts {
		status := "ok"
		if !l.Fits() {
			status = "DOES NOT FIT"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			l.PartName,
			fmt.Sprintf("%.1f x %.1f", l.PartWidth, l.PartHeight),
			fmt.Sprintf("%d", l.PartsPerSheet),
			fmt.Sprintf("%d", l.TotalSheets),
			fmt.Sprintf("%.1f%%", l.Utilization),
			status,
		})
	}
	r.table(
		[]string{"#", "Part", "Size (mm)", "Per sheet", "Sheets", "Utilization", "Status"},
		rows,
		map[int]bool{0: true, 3: true, 4: true, 5: true},
	)
	fmt.Fprintf(r.w, "Parts: %d  Sheets: %d  Average utilization: %.1f%%\n\n",
		nr.TotalParts, nr.TotalSheets, nr.GlobalUtilization)
}

// Quote prints the cost lines, total and price per piece.
func (r *Renderer) Quote(q export.Quote) {
	r.title(fmt.Sprintf("Quote: %s %.1f mm x %d", q.MaterialName, q.Thickness, q.Quantity))
	rows := make([][]string, 0, len(q.Lines)+1)
	for _, l := range q.Lines {
		rows = append(rows, []string{
			l.Label,
			l.Quantity.String() + " " + l.Measure,
			export.FormatMoney(l.Amount, q.Currency, q.Decimals),
		})
	}
	rows = append(rows, []string{"Total", "", export.FormatMoney(q.Total, q.Currency, q.Decimals)})
	r.table([]string{"Item", "Quantity", "Amount"}, rows, map[int]bool{1: true, 2: true})

	est := q.Estimation
	fmt.Fprintf(r.w, "Cutting: %.0f mm at %.0f mm/min = %.2f min\n",
		est.TotalCuttingLength, est.CuttingSpeed, est.CuttingTime)
	fmt.Fprintf(r.w, "Gas: %.4f m3 (%.3f tanks)\n", est.GasUsage, est.GasTanks)
	fmt.Fprintf(r.w, "Price per piece: %s\n\n", export.FormatMoney(q.PricePerPiece, q.Currency, q.Decimals))
}

// Comparison prints the what-if cost of every material option, marking the
// cheapest one.
func (r *Renderer) Comparison(options []engine.MaterialOption, currency string, decimals int32) {
	r.title("Material comparison")
	cheapest, hasCheapest := engine.CheapestOption(options)
	money := func(f float64) string {
		return export.FormatMoney(decimal.NewFromFloat(f).Round(decimals), currency, decimals)
	}

	rows := make([][]string, 0, len(options))
	for _, o := range options {
		mark := ""
		if hasCheapest && o.MaterialID == cheapest.MaterialID && o.Thickness == cheapest.Thickness {
			mark = "*"
		}
		if o.Err != nil {
			rows = append(rows, []string{mark, o.MaterialName, fmt.Sprintf("%.1f", o.Thickness), "", "", "", o.Err.Error()})
			continue
		}
		rows = append(rows, []string{
			mark,
			o.MaterialName,
			fmt.Sprintf("%.1f", o.Thickness),
			fmt.Sprintf("%.0f", o.CuttingSpeed),
			fmt.Sprintf("%.2f", o.CuttingTime),
			money(o.TotalCost),
			money(o.PricePerPiece),
		})
	}
	r.table(
		[]string{"", "Material", "Thickness", "Speed", "Minutes", "Total", "Per piece"},
		rows,
		map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true},
	)
}

// Materials prints the catalog with the effective cutting speed of every
// stocked thickness.
func (r *Renderer) Materials(catalog model.Catalog, speeds []model.SpeedEntry) {
	r.title("Materials")
	var rows [][]string
	for _, m := range catalog {
		price := fmt.Sprintf("%.0f", m.PricePerMeter)
		if len(m.Thicknesses) == 0 {
			rows = append(rows, []string{m.ID, m.Name, "-", fmt.Sprintf("%.0f", m.CuttingSpeed), string(m.Gas), price})
			continue
		}
		for _, t := range m.Thicknesses {
			rows = append(rows, []string{
				m.ID,
				m.Name,
				fmt.Sprintf("%.1f", t),
				fmt.Sprintf("%.0f", engine.CuttingSpeed(m, t, speeds)),
				string(m.Gas),
				price,
			})
		}
	}
	// List price per meter of cut is informational; quotes price by sheet area.
	r.table([]string{"ID", "Name", "Thickness", "Speed (mm/min)", "Gas", "List Price/m"}, rows,
		map[int]bool{2: true, 3: true, 5: true})
}

// History prints recorded runs, newest first.
func (r *Renderer) History(runs []history.Run) {
	r.title("History")
	if len(runs) == 0 {
		fmt.Fprintln(r.w, "No runs recorded.")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		places := max(int32(0), -run.TotalCost.Exponent())
		rows = append(rows, []string{
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.ID[:min(8, len(run.ID))],
			fmt.Sprintf("%s %.1f", run.MaterialName, run.Thickness),
			fmt.Sprintf("%d", run.Quantity),
			fmt.Sprintf("%d", run.Sheets),
			export.FormatMoney(run.TotalCost, run.Currency, places),
			strings.Join(run.Sources, ", "),
		})
	}
	r.table(
		[]string{"When", "ID", "Material", "Qty", "Sheets", "Total", "Files"},
		rows,
		map[int]bool{3: true, 4: true, 5: true},
	)
}
