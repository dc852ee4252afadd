package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/LaserNest/internal/logging"
	"github.com/piwi3910/LaserNest/internal/model"
)

// ColumnMapping maps semantic column roles to their indices in the data.
// A negative index means the column is absent.
type ColumnMapping struct {
	Label      int
	Width      int
	Height     int
	PathLength int
	Quantity   int
}

// positionalMapping is used when the first row is not a header.
var positionalMapping = ColumnMapping{Label: 0, Width: 1, Height: 2, PathLength: 3, Quantity: 4}

type columnRole int

const (
	roleLabel columnRole = iota
	roleWidth
	roleHeight
	rolePath
	roleQuantity
)

// columnAliases lists the accepted header spellings, lowercase.
var columnAliases = map[columnRole][]string{
	roleLabel:    {"label", "name", "part", "part name", "description", "desc", "piece", "item", "file"},
	roleWidth:    {"width", "w", "x"},
	roleHeight:   {"height", "h", "y"},
	rolePath:     {"path", "path length", "cut length", "cutting length", "perimeter", "length", "len"},
	roleQuantity: {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
}

var aliasRoles = func() map[string]columnRole {
	m := make(map[string]columnRole)
	for role, aliases := range columnAliases {
		for _, a := range aliases {
			m[a] = role
		}
	}
	return m
}()

// field returns a pointer to the index for role.
func (m *ColumnMapping) field(role columnRole) *int {
	switch role {
	case roleLabel:
		return &m.Label
	case roleWidth:
		return &m.Width
	case roleHeight:
		return &m.Height
	case rolePath:
		return &m.PathLength
	default:
		return &m.Quantity
	}
}

// DetectColumns matches a header row case-insensitively against the known
// aliases. The first column matching a role wins. When no cell matches, it
// returns the positional mapping (label, width, height, path length,
// quantity) and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Width: -1, Height: -1, PathLength: -1, Quantity: -1}
	matched := false
	for i, cell := range row {
		role, ok := aliasRoles[strings.ToLower(strings.TrimSpace(cell))]
		if !ok {
			continue
		}
		matched = true
		if idx := mapping.field(role); *idx < 0 {
			*idx = i
		}
	}
	if !matched {
		return positionalMapping, false
	}
	return mapping, true
}

// missingRequired names the required columns absent from a header mapping.
func (m ColumnMapping) missingRequired() []string {
	var missing []string
	if m.Width < 0 {
		missing = append(missing, "Width")
	}
	if m.Height < 0 {
		missing = append(missing, "Height")
	}
	return missing
}

var delimiterNames = map[rune]string{',': "comma", ';': "semicolon", '\t': "tab", '|': "pipe"}

func newCSVReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// DetectCSVDelimiter picks the delimiter among comma, semicolon, tab and pipe
// whose rows most consistently match the column count of the first row.
// Delimiters that yield a single column are never chosen.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := newCSVReader(bytes.NewReader(data), delim).ReadAll()
		if err != nil || len(records) == 0 {
			continue
		}
		cols := len(records[0])
		if cols < 2 {
			continue
		}
		consistent := 0
		for _, row := range records {
			if len(row) == cols {
				consistent++
			}
		}
		if score := consistent*10 + cols; score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// ImportCSV imports a part manifest from a CSV file, detecting the delimiter
// and mapping columns by their header names.
func ImportCSV(path string) ImportResult {
	var result ImportResult

	data, err := os.ReadFile(path)
	if err != nil {
		result.errorf("Cannot open file: %v", err)
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.errorf("File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	rows := ImportCSVFromReader(bytes.NewReader(data), delimiter)
	if delimiter != ',' {
		result.warnf("Detected %s delimiter", delimiterNames[delimiter])
	}
	result.merge(rows, "")
	return result
}

// ImportCSVFromReader imports a part manifest with a known delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune) ImportResult {
	records, err := newCSVReader(r, delimiter).ReadAll()
	if err != nil {
		var result ImportResult
		result.errorf("Cannot read CSV: %v", err)
		return result
	}
	return importRows(records, "Line")
}

// ImportExcel imports a part manifest from the first sheet of an Excel
// workbook.
func ImportExcel(path string) ImportResult {
	var result ImportResult

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.errorf("Cannot open Excel file: %v", err)
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.errorf("Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.errorf("Cannot read Excel data: %v", err)
		return result
	}
	return importRows(rows, "Row")
}

// importRows maps the columns of a manifest and parses each data row into a
// source file. Bad rows become errors and never stop the import.
func importRows(rows [][]string, rowPrefix string) ImportResult {
	var result ImportResult
	if len(rows) == 0 {
		result.errorf("File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	switch {
	case hasHeader:
		start = 1
		if missing := mapping.missingRequired(); len(missing) > 0 {
			result.errorf("Required columns not found in header: %s", strings.Join(missing, ", "))
			return result
		}
	case len(rows[0]) >= 3 && !isNumber(rows[0][1]):
		// An unrecognized header; the data still follows the positional layout.
		start = 1
	}
	if start == 1 {
		logging.Debug("manifest header row skipped")
	}

	for i := start; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		p := rowParser{row: rows[i], mapping: mapping, label: fmt.Sprintf("%s %d", rowPrefix, i+1)}
		file, qty, err := p.parse(len(result.Files))
		if err != "" {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Warnings = append(result.Warnings, p.warnings...)
		result.addQuantity(qty)
		result.Files = append(result.Files, file)
	}
	return result
}

// rowParser reads one manifest row.
type rowParser struct {
	row      []string
	mapping  ColumnMapping
	label    string
	warnings []string
}

func (p *rowParser) cell(idx int) string {
	if idx < 0 || idx >= len(p.row) {
		return ""
	}
	return strings.TrimSpace(p.row[idx])
}

// dimension parses a required positive size column.
func (p *rowParser) dimension(idx int, name string) (float64, string) {
	s := p.cell(idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", p.label, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", p.label, name, s)
	}
	return v, ""
}

// parse returns the source file, its quantity (0 when absent) and an error
// message for rows that cannot be used. n is the number of files so far and
// names unlabeled parts.
func (p *rowParser) parse(n int) (model.SourceFile, int, string) {
	width, msg := p.dimension(p.mapping.Width, "width")
	if msg != "" {
		return model.SourceFile{}, 0, msg
	}
	height, msg := p.dimension(p.mapping.Height, "height")
	if msg != "" {
		return model.SourceFile{}, 0, msg
	}
	if width <= 0 || height <= 0 {
		return model.SourceFile{}, 0, fmt.Sprintf("%s: Width and height must be positive", p.label)
	}

	name := p.cell(p.mapping.Label)
	if name == "" {
		name = fmt.Sprintf("Part %d", n+1)
	}
	file := model.SourceFile{Name: name, Type: model.FileManifest, Width: width, Height: height}

	if s := p.cell(p.mapping.PathLength); s != "" {
		length, err := strconv.ParseFloat(s, 64)
		switch {
		case err != nil:
			p.warn("Invalid path length '%s', using perimeter", s)
		case length <= 0:
			p.warn("Path length must be positive, using perimeter")
		default:
			file.Paths = []model.PathData{{ID: "path-1", Length: length, Selected: true}}
		}
	}

	qty := 0
	if s := p.cell(p.mapping.Quantity); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			qty = v
		} else {
			p.warn("Invalid quantity '%s', ignoring", s)
		}
	}
	return file, qty, ""
}

func (p *rowParser) warn(format string, args ...any) {
	p.warnings = append(p.warnings, p.label+": "+fmt.Sprintf(format, args...))
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
