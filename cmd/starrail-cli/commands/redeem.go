package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"starrail-backend/internal/codes"
	"starrail-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(redeemCmd)
	rootCmd.AddCommand(validateCmd)
}

func printAttempts(result codes.RedeemResult) {
	if result.Skipped {
		fmt.Println("No account configured, redemption was skipped.")
		return
	}
	t := newTable(table.Row{"Code", "Outcome", "Message"})
	for _, a := range result.Attempts {
		t.AppendRow(table.Row{a.Code, a.Outcome.String(), a.Message})
	}
	t.Render()
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discovers new codes, stores them and redeems them on the configured account.",
	Run: func(cmd *cobra.Command, args []string) {
		a := loadApp()
		defer a.Close()

		fresh, err := a.Aggregator.DiscoverNewCodes(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to discover codes", err)
		}
		if len(fresh) == 0 {
			fmt.Println("No new codes.")
			return
		}
		printCodes(fresh)

		result, err := a.Redeemer.AttemptRedemption(cmd.Context(), fresh)
		printAttempts(result)
		if err != nil {
			serviceutil.Fatal("failed to redeem codes", err)
		}
	},
}

var redeemCmd = &cobra.Command{
	Use:   "redeem <code> [code...]",
	Short: "Redeems the given codes on the configured account without storing them.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := loadApp()
		defer a.Close()

		records := make([]codes.CodeRecord, len(args))
		for i, code := range args {
			records[i] = codes.CodeRecord{
				Code:   strings.ToUpper(strings.TrimSpace(code)),
				Source: "manual",
				Date:   a.Time.Now(),
				Active: true,
			}
		}
		result, err := a.Redeemer.AttemptRedemption(cmd.Context(), records)
		printAttempts(result)
		if err != nil {
			serviceutil.Fatal("failed to redeem codes", err)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Re-checks every active code and marks the expired ones inactive.",
	Run: func(cmd *cobra.Command, args []string) {
		a := loadApp()
		defer a.Close()

		result, err := a.Validator.RevalidateActiveCodes(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to validate codes", err)
		}
		if result.Skipped {
			fmt.Println("No account configured, validation was skipped.")
			return
		}

		t := newTable(table.Row{"Code", "State"})
		for _, c := range result.ActiveCodes {
			t.AppendRow(table.Row{c, "active"})
		}
		for _, c := range result.InactiveCodes {
			t.AppendRow(table.Row{c, "deactivated"})
		}
		for _, c := range result.UnknownCodes {
			t.AppendRow(table.Row{c, "unknown"})
		}
		t.Render()
		slog.Info("validation finished", "deactivated", len(result.InactiveCodes))
	},
}
