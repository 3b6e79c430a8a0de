package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pablasso/workbench/internal/app"
	"github.com/pablasso/workbench/internal/util"
	"github.com/pablasso/workbench/internal/workbench"
)

func newPhaseCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Manage phases",
		Long:  `Commands for listing, adding, renaming and deleting phases.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List phases in order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := g.open(cmd)
				if err != nil {
					return err
				}
				defer s.Close()

				doc := s.Doc()
				perPhase := make(map[string]int)
				for _, f := range doc.Features {
					perPhase[f.PhaseID]++
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tORDER\tNAME\tFEATURES")
				for _, p := range workbench.OrderedPhases(doc) {
					fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", util.ShortID(p.ID), p.Order, p.Name, perPhase[p.ID])
				}
				if orphans := workbench.Orphans(doc); len(orphans) > 0 {
					fmt.Fprintf(w, "-\t-\tUnassigned\t%d\n", len(orphans))
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a phase after the existing ones",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return g.mutate(cmd, func(s *app.State) error {
					p, err := s.AddPhase(args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Added phase %s %q\n", util.ShortID(p.ID), p.Name)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "rename <phase> <name>",
			Short: "Rename a phase",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return g.mutate(cmd, func(s *app.State) error {
					p, err := s.Doc().ResolvePhase(args[0])
					if err != nil {
						return err
					}
					return s.RenamePhase(p.ID, args[1])
				})
			},
		},
		&cobra.Command{
			Use:     "rm <phase>",
			Aliases: []string{"remove"},
			Short:   "Delete a phase that has no features",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return g.mutate(cmd, func(s *app.State) error {
					p, err := s.Doc().ResolvePhase(args[0])
					if err != nil {
						return err
					}
					if err := s.DeletePhase(p.ID); err != nil {
						return fmt.Errorf("%w; move or delete its features first", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted phase %q\n", p.Name)
					return nil
				})
			},
		},
	)
	return cmd
}
