// Package importer turns uploaded designs into parsed source files: DXF
// drawings with their cut paths, and CSV or Excel part manifests.
package importer

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/piwi3910/LaserNest/internal/logging"
	"github.com/piwi3910/LaserNest/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Files    []model.SourceFile
	Errors   []string
	Warnings []string
	// QuantityHint is the largest quantity listed in a manifest, or 0.
	QuantityHint int
	// Quantities are the distinct manifest quantities, ascending.
	Quantities []int
}

func (r *ImportResult) addQuantity(q int) {
	if q <= 0 {
		return
	}
	r.QuantityHint = max(r.QuantityHint, q)
	if i, found := slices.BinarySearch(r.Quantities, q); !found {
		r.Quantities = slices.Insert(r.Quantities, i, q)
	}
}

// QuantitiesDisagree reports whether manifest rows list different
// quantities. Every part is still nested at QuantityHint.
func (r *ImportResult) QuantitiesDisagree() bool {
	return len(r.Quantities) > 1
}

func (r *ImportResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ImportResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// merge appends other to r, prefixing its messages.
func (r *ImportResult) merge(other ImportResult, prefix string) {
	r.Files = append(r.Files, other.Files...)
	for _, e := range other.Errors {
		r.Errors = append(r.Errors, prefix+e)
	}
	for _, w := range other.Warnings {
		r.Warnings = append(r.Warnings, prefix+w)
	}
	r.QuantityHint = max(r.QuantityHint, other.QuantityHint)
	for _, q := range other.Quantities {
		r.addQuantity(q)
	}
}

// ImportFile imports a drawing or manifest, choosing the reader by extension.
func ImportFile(path string) ImportResult {
	var result ImportResult
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dxf":
		result = ImportDXF(path)
	case ".csv", ".txt":
		result = ImportCSV(path)
	case ".xlsx", ".xlsm", ".xls":
		result = ImportExcel(path)
	default:
		result.errorf("Unsupported file type: %s", filepath.Base(path))
	}

	logging.Debug("imported file",
		zap.String("path", path),
		zap.Int("files", len(result.Files)),
		zap.Int("errors", len(result.Errors)),
		zap.Int("warnings", len(result.Warnings)))
	return result
}

// ImportFiles imports every path in order and merges the results. Messages
// are prefixed with the file name they came from.
func ImportFiles(paths []string) ImportResult {
	var merged ImportResult
	for _, p := range paths {
		merged.merge(ImportFile(p), filepath.Base(p)+": ")
	}
	return merged
}
