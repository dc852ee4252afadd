package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/LaserNest/internal/model"
)

// Workbook sheet names.
const (
	SheetNesting = "Nesting"
	SheetQuote   = "Quote"
)

var nestingHeaders = []string{
	"Sheet", "Part", "Part Width (mm)", "Part Height (mm)", "Sheet Width (mm)",
	"Sheet Height (mm)", "Per Sheet", "Sheets", "Utilization (%)", "Waste (%)",
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// ExportXLSX writes the nesting table and, when q is not nil, the quote
// lines to a workbook.
func ExportXLSX(path string, nr model.NestingResult, q *Quote) error {
	if len(nr.Layouts) == 0 {
		return fmt.Errorf("no layouts to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetNesting); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := make([]any, len(nestingHeaders))
	for i, h := range nestingHeaders {
		headers[i] = h
	}
	if err := writeRow(f, SheetNesting, 1, headers...); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	for i, l := range nr.Layouts {
		err := writeRow(f, SheetNesting, row,
			i+1, l.PartName, l.PartWidth, l.PartHeight, l.SheetWidth, l.SheetHeight,
			l.PartsPerSheet, l.TotalSheets, l.Utilization, l.WastePercent)
		if err != nil {
			return fmt.Errorf("failed to write layout %q: %w", l.PartName, err)
		}
		row++
	}
	row++
	if err := writeRow(f, SheetNesting, row, "Total", "", "", "", "", "", "", nr.TotalSheets, nr.GlobalUtilization); err != nil {
		return fmt.Errorf("failed to write totals: %w", err)
	}

	if q != nil {
		if err := writeQuoteSheet(f, *q); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeQuoteSheet(f *excelize.File, q Quote) error {
	if _, err := f.NewSheet(SheetQuote); err != nil {
		return fmt.Errorf("failed to add quote sheet: %w", err)
	}

	rows := [][]any{
		{"Material", q.MaterialName},
		{"Thickness (mm)", q.Thickness},
		{"Quantity", q.Quantity},
		{"Currency", q.Currency},
		{},
		{"Item", "Measure", "Quantity", "Rate", "Amount"},
	}
	for _, l := range q.Lines {
		rows = append(rows, []any{
			l.Label, l.Measure, l.Quantity.InexactFloat64(), l.Rate.InexactFloat64(), l.Amount.InexactFloat64(),
		})
	}
	rows = append(rows,
		[]any{"Total", "", "", "", q.Total.InexactFloat64()},
		[]any{"Price per piece", "", "", "", q.PricePerPiece.InexactFloat64()},
	)

	for i, r := range rows {
		if err := writeRow(f, SheetQuote, i+1, r...); err != nil {
			return fmt.Errorf("failed to write quote row %d: %w", i+1, err)
		}
	}
	return nil
}
