package cmd

import (
	"github.com/spf13/cobra"

	"github.com/piwi3910/LaserNest/internal/engine"
)

func newNestCmd(a *app) *cobra.Command {
	var f jobFlags

	cmd := &cobra.Command{
		Use:   "nest [files...]",
		Short: "Nest parts on sheets without pricing",
		Long: `Import DXF drawings or CSV/Excel manifests and compute how many sheets
the job needs. With --material and --thickness the laser programs use the
material's cutting speed.

Examples:
  lasernest nest panel.dxf -q 20
  lasernest nest parts.csv --sheet-width 1500 --sheet-height 3000 --dxf layout.dxf
  lasernest nest bracket.dxf -m ms -t 3 --gcode ./nc --dialect Grbl`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := a.renderer(cmd.OutOrStdout())

			j, err := a.runNesting(cmd, &f, args)
			r.Warnings(j.warnings)
			if err != nil {
				return err
			}
			r.Nesting(j.nesting)

			var feedRate float64
			if m := a.settings.Catalog().FindMaterialByID(f.material); m != nil {
				feedRate = engine.CuttingSpeed(*m, f.thickness, a.settings.SpeedTable)
			}
			return a.writeExports(cmd, &f, j, nil, feedRate)
		},
	}

	f.bindMaterial(cmd, false)
	f.bindNesting(cmd)
	f.bindExports(cmd)
	return cmd
}
