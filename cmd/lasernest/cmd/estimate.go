package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/LaserNest/internal/engine"
	"github.com/piwi3910/LaserNest/internal/export"
	"github.com/piwi3910/LaserNest/internal/history"
	"github.com/piwi3910/LaserNest/internal/logging"
	"github.com/piwi3910/LaserNest/internal/model"
)

func newEstimateCmd(a *app) *cobra.Command {
	var (
		f         jobFlags
		format    string
		compare   bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "estimate [files...]",
		Short: "Nest parts and price the laser cutting job",
		Long: `Import DXF drawings or CSV/Excel manifests, nest every part on stock
sheets and estimate the cost of material, laser time and assist gas.

Examples:
  lasernest estimate bracket.dxf -m ms -t 3 -q 50
  lasernest estimate parts.csv -m ss304 -t 1 --compare
  lasernest estimate plate.dxf -m aluminum -t 2 --pdf quote.pdf --xlsx quote.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEstimate(cmd, &f, args, format, compare, !noHistory)
		},
	}

	f.bindMaterial(cmd, true)
	f.bindNesting(cmd)
	f.bindExports(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolVar(&compare, "compare", false, "also price every material and thickness in the catalog")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this run in the history")
	return cmd
}

// estimateOutput is the JSON form of an estimate run.
type estimateOutput struct {
	Nesting  model.NestingResult `json:"nesting"`
	Quote    export.Quote        `json:"quote"`
	Warnings []string            `json:"warnings,omitempty"`
}

func (a *app) runEstimate(cmd *cobra.Command, f *jobFlags, paths []string, format string, compare, record bool) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown output format %q", format)
	}
	out := cmd.OutOrStdout()
	r := a.renderer(out)

	j, err := a.runNesting(cmd, f, paths)
	if err != nil {
		r.Warnings(j.warnings)
		return err
	}

	in := engine.EstimateInput{
		Nesting:    &j.nesting,
		Catalog:    a.settings.Catalog(),
		MaterialID: f.material,
		Thickness:  f.thickness,
		Scale:      j.options.Scale,
		Unit:       j.options.Unit,
		Quantity:   j.options.Quantity,
		Operating:  a.settings.Operating,
		Source:     j.source,
		SpeedTable: a.settings.SpeedTable,
	}
	est, err := engine.ComputeEstimation(in)
	if err != nil {
		if format == "text" {
			r.Warnings(j.warnings)
			r.Nesting(j.nesting)
		}
		var tooLarge *engine.PartTooLargeError
		var overCapacity *engine.CapacityExceededError
		if errors.As(err, &tooLarge) || errors.As(err, &overCapacity) {
			return fmt.Errorf("cannot estimate: %w", err)
		}
		if errors.Is(err, engine.ErrMaterialNotFound) {
			return fmt.Errorf("%w (known: %s)", err, strings.Join(materialIDs(a.settings.Catalog()), ", "))
		}
		return err
	}
	if !est.Valid() {
		logging.Warn("estimation produced an invalid total", zap.Float64("total_cost", est.TotalCost))
	}

	material := a.settings.Catalog().FindMaterialByID(f.material)
	q := export.BuildQuote(est, *material, a.settings.Operating, a.settings.Currency, a.settings.CurrencyDecimals)

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(estimateOutput{Nesting: j.nesting, Quote: q, Warnings: j.warnings}); err != nil {
			return err
		}
	default:
		r.Warnings(j.warnings)
		r.Nesting(j.nesting)
		r.Quote(q)
		if compare {
			r.Comparison(engine.CompareMaterials(in), a.settings.Currency, a.settings.CurrencyDecimals)
		}
	}

	if err := a.writeExports(cmd, f, j, &q, est.CuttingSpeed); err != nil {
		return err
	}

	if record {
		a.recordRun(cmd.Context(), history.NewRun(q, j.nesting, j.paths))
	}
	return nil
}

// recordRun stores the run in the history database. Failures are logged and
// never fail the command.
func (a *app) recordRun(ctx context.Context, run history.Run) {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := history.Open(a.historyPath())
	if err != nil {
		logging.Warn("history unavailable", zap.String("path", a.historyPath()), zap.Error(err))
		return
	}
	defer store.Close()

	id, err := store.Record(ctx, run)
	if err != nil {
		logging.Warn("failed to record run", zap.Error(err))
		return
	}
	logging.Debug("run recorded", zap.String("id", id))
}

func materialIDs(c model.Catalog) []string {
	ids := make([]string, len(c))
	for i, m := range c {
		ids[i] = m.ID
	}
	return ids
}
