package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/LaserNest/internal/gcode"
	"github.com/piwi3910/LaserNest/internal/project"
)

func newProfilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage laser profiles used for program generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := project.LoadProfiles(a.profilesPath())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No laser profiles. Add one with 'lasernest profiles add NAME'.")
				return nil
			}
			for _, p := range profiles {
				s := p.Settings
				fmt.Fprintf(out, "%-16s %-9s F%.0f S%d kerf %.2f pierce %.2fs lead-in %.1f joints %d\n",
					p.Name, s.Dialect, s.FeedRate, s.Power, s.KerfWidth, s.PierceDelay, s.LeadIn, s.MicroJoints)
			}
			return nil
		},
	}

	s := gcode.DefaultSettings()
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add or replace a laser profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.profilesPath()
			profiles, err := project.LoadProfiles(path)
			if err != nil {
				return err
			}
			profiles, err = project.UpsertProfile(profiles, project.LaserProfile{Name: args[0], Settings: s})
			if err != nil {
				return err
			}
			if err := project.SaveProfiles(path, profiles); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %q to %s\n", args[0], path)
			return nil
		},
	}
	add.Flags().Float64Var(&s.FeedRate, "feed", s.FeedRate, "cutting feed rate in mm/min")
	add.Flags().IntVar(&s.Power, "power", s.Power, "S value while the beam is on")
	add.Flags().Float64Var(&s.KerfWidth, "kerf", s.KerfWidth, "kerf width in mm")
	add.Flags().Float64Var(&s.PierceDelay, "pierce-delay", s.PierceDelay, "dwell after each pierce in seconds")
	add.Flags().Float64Var(&s.LeadIn, "lead-in", s.LeadIn, "lead-in length in mm")
	add.Flags().IntVar(&s.MicroJoints, "micro-joints", s.MicroJoints, "uncut bridges per side")
	add.Flags().Float64Var(&s.MicroJointWidth, "micro-joint-width", s.MicroJointWidth, "bridge width in mm")
	add.Flags().StringVar(&s.Dialect, "dialect", s.Dialect, "controller dialect: Generic, Grbl, LinuxCNC")
	cmd.AddCommand(add)

	return cmd
}
