package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/LaserNest/internal/engine"
	"github.com/piwi3910/LaserNest/internal/export"
	"github.com/piwi3910/LaserNest/internal/gcode"
	"github.com/piwi3910/LaserNest/internal/importer"
	"github.com/piwi3910/LaserNest/internal/logging"
	"github.com/piwi3910/LaserNest/internal/model"
	"github.com/piwi3910/LaserNest/internal/project"
)

// jobFlags are the nesting and export flags shared by estimate and nest.
type jobFlags struct {
	material    string
	thickness   float64
	scale       float64
	unit        string
	quantity    int
	sheetWidth  float64
	sheetHeight float64

	dxfPath    string
	pdfPath    string
	xlsxPath   string
	labelsPath string
	gcodeDir   string
	profile    string
	dialect    string
	kerf       float64
}

func (f *jobFlags) bindNesting(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "scale factor applied to part dimensions (default from settings)")
	cmd.Flags().StringVar(&f.unit, "unit", "", "unit of the input dimensions: mm, cm, m, inch (default from settings)")
	cmd.Flags().IntVarP(&f.quantity, "quantity", "q", model.DefaultQuantity, "pieces per part (default: manifest quantity, else 1)")
	cmd.Flags().Float64Var(&f.sheetWidth, "sheet-width", 0, "sheet width in mm (default from settings)")
	cmd.Flags().Float64Var(&f.sheetHeight, "sheet-height", 0, "sheet height in mm (default from settings)")
}

func (f *jobFlags) bindMaterial(cmd *cobra.Command, required bool) {
	cmd.Flags().StringVarP(&f.material, "material", "m", "", "material ID (see 'lasernest materials')")
	cmd.Flags().Float64VarP(&f.thickness, "thickness", "t", 0, "sheet thickness in mm")
	if required {
		_ = cmd.MarkFlagRequired("material")
		_ = cmd.MarkFlagRequired("thickness")
	}
}

func (f *jobFlags) bindExports(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dxfPath, "dxf", "", "write the sheet layouts to a DXF file")
	cmd.Flags().StringVar(&f.pdfPath, "pdf", "", "write a PDF report")
	cmd.Flags().StringVar(&f.xlsxPath, "xlsx", "", "write an Excel workbook")
	cmd.Flags().StringVar(&f.labelsPath, "labels", "", "write a PDF of QR part labels")
	cmd.Flags().StringVar(&f.gcodeDir, "gcode", "", "write one laser program per layout into this directory")
	cmd.Flags().StringVar(&f.profile, "profile", "", "laser profile for --gcode (see 'lasernest profiles')")
	cmd.Flags().StringVar(&f.dialect, "dialect", "", "controller dialect for --gcode: Generic, Grbl, LinuxCNC")
	cmd.Flags().Float64Var(&f.kerf, "kerf", 0, "kerf width in mm for --gcode")
}

// job is the outcome of importing and nesting a set of input files.
type job struct {
	paths    []string
	source   engine.PartSource
	options  engine.NestOptions
	nesting  model.NestingResult
	warnings []string
}

// nestOptions fills unset flags from the settings.
func (a *app) nestOptions(cmd *cobra.Command, f *jobFlags, quantityHint int) engine.NestOptions {
	s := a.settings
	opts := engine.NestOptions{
		Scale:       s.DefaultScale,
		Unit:        s.DefaultUnit,
		SheetWidth:  s.DefaultSheetWidth,
		SheetHeight: s.DefaultSheetHeight,
		Quantity:    f.quantity,
	}
	if cmd.Flags().Changed("scale") {
		opts.Scale = f.scale
	}
	if f.unit != "" {
		opts.Unit = model.ParseUnit(f.unit)
	}
	if cmd.Flags().Changed("sheet-width") {
		opts.SheetWidth = f.sheetWidth
	}
	if cmd.Flags().Changed("sheet-height") {
		opts.SheetHeight = f.sheetHeight
	}
	if !cmd.Flags().Changed("quantity") && quantityHint > 0 {
		opts.Quantity = quantityHint
	}
	return opts.Sanitized()
}

// runNesting imports the files and nests every part. Import problems and
// parts that cannot be nested are collected as warnings.
func (a *app) runNesting(cmd *cobra.Command, f *jobFlags, paths []string) (*job, error) {
	res := importer.ImportFiles(paths)
	j := &job{paths: paths}
	j.warnings = append(j.warnings, res.Errors...)
	j.warnings = append(j.warnings, res.Warnings...)
	if len(res.Files) == 0 {
		return j, fmt.Errorf("no parts could be imported from %d file(s)", len(paths))
	}

	j.source = engine.FileSource{Files: res.Files}
	parts, err := engine.Normalize(j.source)
	if err != nil {
		return j, err
	}

	j.options = a.nestOptions(cmd, f, res.QuantityHint)
	if res.QuantitiesDisagree() && !cmd.Flags().Changed("quantity") {
		j.warnings = append(j.warnings, fmt.Sprintf(
			"manifest quantities differ (%s); every part is nested at quantity %d",
			joinInts(res.Quantities), j.options.Quantity))
	}
	logging.Debug("nesting parts",
		zap.Int("parts", len(parts)),
		zap.Int("quantity", j.options.Quantity),
		zap.Float64("sheet_width", j.options.SheetWidth),
		zap.Float64("sheet_height", j.options.SheetHeight))

	nr, err := engine.ComputeNesting(parts, j.options)
	if err != nil {
		logging.Warn("nesting incomplete", zap.Error(err))
		j.warnings = append(j.warnings, err.Error())
	}
	j.nesting = nr
	return j, nil
}

func (a *app) profilesPath() string {
	if a.cfgFile == "" {
		return project.DefaultProfilesPath()
	}
	return filepath.Join(filepath.Dir(a.configPath()), "profiles.json")
}

// gcodeSettings resolves the generator settings from the profile and flags.
// feedRate, when positive, is used unless a profile is selected.
func (a *app) gcodeSettings(cmd *cobra.Command, f *jobFlags, feedRate float64) (gcode.Settings, error) {
	s := gcode.DefaultSettings()
	if feedRate > 0 {
		s.FeedRate = feedRate
	}
	if f.profile != "" {
		profiles, err := project.LoadProfiles(a.profilesPath())
		if err != nil {
			return s, err
		}
		p, ok := project.FindProfile(profiles, f.profile)
		if !ok {
			return s, fmt.Errorf("unknown laser profile %q", f.profile)
		}
		s = p.Settings
	}
	if f.dialect != "" {
		s.Dialect = f.dialect
	}
	if cmd.Flags().Changed("kerf") {
		s.KerfWidth = f.kerf
	}
	return s, nil
}

// writeExports writes every requested output file. q may be nil when no
// estimation was made.
func (a *app) writeExports(cmd *cobra.Command, f *jobFlags, j *job, q *export.Quote, feedRate float64) error {
	out := cmd.OutOrStdout()
	nr := j.nesting

	if f.dxfPath != "" {
		if err := export.ExportDXF(f.dxfPath, nr); err != nil {
			return fmt.Errorf("DXF export failed: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", f.dxfPath)
	}
	if f.pdfPath != "" {
		if err := export.ExportPDF(f.pdfPath, nr, q); err != nil {
			return fmt.Errorf("PDF export failed: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", f.pdfPath)
	}
	if f.xlsxPath != "" {
		if err := export.ExportXLSX(f.xlsxPath, nr, q); err != nil {
			return fmt.Errorf("XLSX export failed: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", f.xlsxPath)
	}
	if f.labelsPath != "" {
		opts := export.LabelOptions{Thickness: f.thickness, Quantity: j.options.Quantity}
		if m := a.settings.Catalog().FindMaterialByID(f.material); m != nil {
			opts.Material = m.Name
		}
		if err := export.ExportLabels(f.labelsPath, nr, opts); err != nil {
			return fmt.Errorf("label export failed: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", f.labelsPath)
	}
	if f.gcodeDir != "" {
		gs, err := a.gcodeSettings(cmd, f, feedRate)
		if err != nil {
			return err
		}
		paths, err := gcode.New(gs).WriteAll(f.gcodeDir, nr)
		if err != nil {
			return fmt.Errorf("program export failed: %w", err)
		}
		for _, p := range paths {
			fmt.Fprintf(out, "Wrote %s\n", p)
		}
	}
	return nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
