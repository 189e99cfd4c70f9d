package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"starrail-backend/internal/app"
	"starrail-backend/internal/components/telemetry"
	"starrail-backend/lib/configutil"
	"starrail-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var configPath *string

var rootCmd = &cobra.Command{
	Use:   "starrail-cli",
	Short: "starrail-cli is a CLI for discovering, redeeming and inspecting Honkai: Star Rail redemption codes.",
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() app.Config {
	cfg, err := configutil.ReadConfig[app.Config](*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func loadApp() app.App {
	a, err := app.New(readConfig(), telemetry.SlogAPI{})
	if err != nil {
		serviceutil.Fatal("failed to initialize", err)
	}
	return a
}

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateTime)
}

func joinLines(values []string) string {
	return strings.Join(values, "\n")
}
