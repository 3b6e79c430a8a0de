package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pablasso/workbench/internal/app"
	"github.com/pablasso/workbench/internal/util"
	"github.com/pablasso/workbench/internal/workbench"
)

func newAddCmd(g *globalOptions) *cobra.Command {
	var (
		phase       string
		description string
		status      string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a feature",
		Long:  "Add a feature at the end of the ordering. Without --phase it goes into the first phase.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.mutate(cmd, func(s *app.State) error {
				doc := s.Doc()
				in := workbench.NewFeature{Title: args[0], Description: description}

				if phase != "" {
					p, err := doc.ResolvePhase(phase)
					if err != nil {
						return err
					}
					in.PhaseID = p.ID
				} else {
					phases := workbench.OrderedPhases(doc)
					if len(phases) == 0 {
						return errors.New("no phases yet; create one with 'workbench phase add <name>'")
					}
					in.PhaseID = phases[0].ID
				}

				if status != "" {
					st, err := workbench.ParseStatus(status)
					if err != nil {
						return err
					}
					in.Status = st
				}
				for _, tag := range tags {
					in.Tags = append(in.Tags, util.ParseTags(tag)...)
				}

				f, err := s.AddFeature(in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q\n", util.ShortID(f.ID), f.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&phase, "phase", "p", "", "phase id, id prefix or name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "feature description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "initial status (default not_started)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag (repeatable, or comma separated)")
	return cmd
}

func newEditCmd(g *globalOptions) *cobra.Command {
	var (
		title       string
		description string
		tags        string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a feature's title, description or tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch workbench.FeaturePatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("tags") {
				parsed := util.ParseTags(tags)
				patch.Tags = &parsed
			}
			if patch == (workbench.FeaturePatch{}) {
				return errors.New("nothing to change; pass --title, --description or --tags")
			}

			return g.mutate(cmd, func(s *app.State) error {
				f, err := s.Doc().ResolveFeature(args[0])
				if err != nil {
					return err
				}
				if err := s.EditFeature(f.ID, patch); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", util.ShortID(f.ID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags, replacing the current ones")
	return cmd
}

func newStatusCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set a feature's status",
		Long:  "Set a feature's status: not_started, in_progress, done or blocked.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := workbench.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return g.mutate(cmd, func(s *app.State) error {
				f, err := s.Doc().ResolveFeature(args[0])
				if err != nil {
					return err
				}
				if err := s.SetStatus(f.ID, status); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", util.ShortID(f.ID), status.Label())
				return nil
			})
		},
	}
}

func newMoveCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <phase>",
		Short: "Move a feature to another phase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.mutate(cmd, func(s *app.State) error {
				doc := s.Doc()
				f, err := doc.ResolveFeature(args[0])
				if err != nil {
					return err
				}
				p, err := doc.ResolvePhase(args[1])
				if err != nil {
					return err
				}
				if err := s.MoveToPhase(f.ID, p.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", util.ShortID(f.ID), p.Name)
				return nil
			})
		},
	}
}

func newOrderCmd(g *globalOptions) *cobra.Command {
	var up, down int

	cmd := &cobra.Command{
		Use:   "order <id> [order]",
		Short: "Reorder a feature",
		Long: `Set a feature's order value, or move it by positions with --up/--down.
Moving renumbers all features 1..n.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			moving := cmd.Flags().Changed("up") || cmd.Flags().Changed("down")
			if moving == (len(args) == 2) {
				return errors.New("give either an order value or --up/--down")
			}

			return g.mutate(cmd, func(s *app.State) error {
				f, err := s.Doc().ResolveFeature(args[0])
				if err != nil {
					return err
				}
				if moving {
					return s.MoveFeature(f.ID, down-up)
				}
				order, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid order %q: %w", args[1], err)
				}
				return s.SetOrder(f.ID, order)
			})
		},
	}

	cmd.Flags().IntVar(&up, "up", 0, "move up this many positions")
	cmd.Flags().IntVar(&down, "down", 0, "move down this many positions")
	return cmd
}

func newRemoveCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a feature",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.mutate(cmd, func(s *app.State) error {
				f, err := s.Doc().ResolveFeature(args[0])
				if err != nil {
					return err
				}
				if err := s.DeleteFeature(f.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %q\n", util.ShortID(f.ID), f.Title)
				return nil
			})
		},
	}
}
