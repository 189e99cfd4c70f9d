package commands

import (
	"starrail-backend/internal/codes"
	"starrail-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	codesInactive *bool
	codesAll      *bool
)

func init() {
	codesInactive = codesCmd.Flags().Bool("inactive", false, "List inactive codes instead of active ones.")
	codesAll = codesCmd.Flags().Bool("all", false, "List every known code.")
	rootCmd.AddCommand(codesCmd)
}

func printCodes(records []codes.CodeRecord) {
	t := newTable(table.Row{"Code", "Rewards", "Source", "Discovered", "Active"})
	for _, r := range records {
		t.AppendRow(table.Row{r.Code, joinLines(r.Rewards), r.Source, formatDate(r.Date), r.Active})
	}
	t.Render()
}

var codesCmd = &cobra.Command{
	Use:   "codes [--inactive | --all]",
	Short: "Lists the codes stored in the database.",
	Run: func(cmd *cobra.Command, args []string) {
		a := loadApp()
		defer a.Close()

		var (
			records []codes.CodeRecord
			err     error
		)
		switch {
		case *codesAll:
			records, err = a.Store.ListCodes(cmd.Context())
		case *codesInactive:
			records, err = a.Store.ListInactiveCodes(cmd.Context())
		default:
			records, err = a.Store.ListActiveCodes(cmd.Context())
		}
		if err != nil {
			serviceutil.Fatal("failed to list codes", err)
		}
		printCodes(records)
	},
}
