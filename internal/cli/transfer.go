package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pablasso/workbench/internal/app"
	"github.com/pablasso/workbench/internal/workbench"
)

func newTitleCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "title [text]",
		Short: "Show or rename the workbench",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				s, err := g.open(cmd)
				if err != nil {
					return err
				}
				defer s.Close()
				_, err = fmt.Fprintln(cmd.OutOrStdout(), s.Doc().Title)
				return err
			}
			return g.mutate(cmd, func(s *app.State) error {
				if err := s.SetTitle(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed workbench to %q\n", s.Doc().Title)
				return nil
			})
		},
	}
}

func newExportCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the document as JSON",
		Long:  "Write the whole document as JSON to a file, or to stdout when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			data, err := workbench.Encode(s.Doc())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(args[0], append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
			return nil
		},
	}
}

func newImportCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the document with a JSON export",
		Long:  "Replace the whole document with one previously written by 'workbench export'. Older versions are migrated.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			doc, err := workbench.Decode(data)
			if err != nil {
				return err
			}
			return g.mutate(cmd, func(s *app.State) error {
				if err := s.Replace(doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %q (%s, %s)\n",
					doc.Title, pluralize(len(doc.Phases), "phase"), pluralize(len(doc.Features), "feature"))
				return nil
			})
		},
	}
}

func newResetCmd(g *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the document with the starter document",
		Long:  "Discards every phase and feature and starts over from the starter document. This cannot be undone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "This will discard every phase and feature. Continue? [y/N] ")

				reader := bufio.NewReader(cmd.InOrStdin())
				response, _ := reader.ReadString('\n')
				response = strings.TrimSpace(strings.ToLower(response))

				if response != "y" && response != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			return g.mutate(cmd, func(s *app.State) error {
				s.Reset()
				fmt.Fprintln(cmd.OutOrStdout(), "Workbench reset.")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}
