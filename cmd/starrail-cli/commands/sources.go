package commands

import (
	"slices"
	"strings"

	"starrail-backend/internal/app"
	"starrail-backend/internal/codes"
	"starrail-backend/internal/components/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	sourcesOnly       *[]string
	sourcesNormalized *bool
)

func init() {
	sourcesOnly = sourcesCmd.Flags().StringSlice("only", nil, "Only fetch the sources with the given names.")
	sourcesNormalized = sourcesCmd.Flags().Bool("normalize", false, "Filter and deduplicate the results like discovery does.")
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources [--only <name>,...] [--normalize]",
	Short: "Fetches every code source and prints what they report without touching the database.",
	Run: func(cmd *cobra.Command, args []string) {
		srcs := app.Sources(telemetry.SlogAPI{})
		if len(*sourcesOnly) > 0 {
			srcs = slices.DeleteFunc(srcs, func(s codes.SourceAPI) bool {
				return !slices.ContainsFunc(*sourcesOnly, func(name string) bool {
					return strings.EqualFold(name, s.Name())
				})
			})
		}

		var candidates []codes.Candidate
		for _, src := range srcs {
			candidates = append(candidates, src.Fetch(cmd.Context())...)
		}
		if *sourcesNormalized {
			candidates = codes.Normalize(candidates, codes.DefaultLowPriority)
		}

		t := newTable(table.Row{"Source", "Code", "Rewards"})
		for _, c := range candidates {
			t.AppendRow(table.Row{c.Source, c.Code, joinLines(c.Rewards)})
		}
		t.AppendFooter(table.Row{"", "Total", len(candidates)})
		t.Render()
	},
}
