package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pablasso/workbench/internal/util"
	"github.com/pablasso/workbench/internal/workbench"
)

type listOptions struct {
	phase  string
	status string
	tag    string
	text   string
	where  string
	json   bool
}

func newListCmd(g *globalOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List features grouped by phase",
		Long: `List features in order, grouped by phase.

--where takes an expression over the fields id, title, description, status,
phase, phaseId, tags, order, createdAt and updatedAt, for example:

  workbench list --where 'status != "done" && "api" in tags'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return runList(cmd.OutOrStdout(), s.Doc(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.phase, "phase", "", "only features in this phase (id, id prefix or name)")
	cmd.Flags().StringVar(&opts.status, "status", "", "only features with this status")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "only features with this tag")
	cmd.Flags().StringVar(&opts.text, "search", "", "only features whose title, description or tags contain this text")
	cmd.Flags().StringVar(&opts.where, "where", "", "filter expression")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print features as JSON")
	return cmd
}

func runList(w io.Writer, doc workbench.Doc, opts *listOptions) error {
	filter := workbench.Filter{Tag: opts.tag, Text: opts.text}
	if opts.phase != "" {
		p, err := doc.ResolvePhase(opts.phase)
		if err != nil {
			return err
		}
		filter.PhaseID = p.ID
	}
	if opts.status != "" {
		status, err := workbench.ParseStatus(opts.status)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	features := filter.Apply(workbench.OrderedFeatures(doc))
	if opts.where != "" {
		q, err := workbench.CompileQuery(opts.where)
		if err != nil {
			return err
		}
		if features, err = q.Select(doc, features); err != nil {
			return err
		}
	}

	if opts.json {
		if features == nil {
			features = []workbench.Feature{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(features)
	}

	fmt.Fprintf(w, "%s (%s)\n\n", doc.Title, pluralize(len(features), "feature"))
	if len(features) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, g := range workbench.GroupByPhase(doc, features) {
		if len(g.Features) == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\t\t\t\t\n", strings.ToUpper(g.Name()))
		for _, f := range g.Features {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				util.ShortID(f.ID),
				f.Status.Label(),
				f.Title,
				formatTags(f.Tags),
				formatAge(f.UpdatedAt),
			)
		}
	}
	return tw.Flush()
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return "#" + strings.Join(tags, " #")
}

// formatAge returns a human-readable relative time for a ms timestamp.
func formatAge(ms int64) string {
	return humanize.Time(time.UnixMilli(ms))
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
