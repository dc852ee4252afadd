package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/LaserNest/internal/project"
)

func newMaterialsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materials",
		Short: "List the material catalog and effective cutting speeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.renderer(cmd.OutOrStdout()).Materials(a.settings.Catalog(), a.settings.SpeedTable)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export <path>",
		Short: "Write the materials and speed table to a JSON or TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := project.ExportMaterials(args[0], a.settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <path>",
		Short: "Merge a material library into the settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, added, err := project.ImportMaterials(args[0], a.settings)
			if err != nil {
				return err
			}
			if err := project.SaveSettings(a.configPath(), merged); err != nil {
				return err
			}
			a.settings = merged
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new material(s) into %s\n", added, a.configPath())
			return nil
		},
	})

	return cmd
}
