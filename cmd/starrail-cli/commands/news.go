package commands

import (
	"fmt"
	"os"
	"time"

	"starrail-backend/internal/news"
	"starrail-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	newsLang  *string
	newsLimit *int64
	newsPoll  *bool
)

func init() {
	newsLang = newsCmd.Flags().String("lang", news.DefaultLanguage, "The language of the articles.")
	newsLimit = newsCmd.Flags().Int64("limit", 20, "The maximum amount of articles to print.")
	newsPoll = newsCmd.Flags().Bool("poll", false, "Poll the news feed before printing.")
	errorsLimit = errorsCmd.Flags().Int64("limit", 20, "The maximum amount of errors to print.")
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(errorsCmd)
}

func unixDate(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).Format(time.DateOnly)
}

var newsCmd = &cobra.Command{
	Use:   "news <event | notice | info> [--lang <lang>] [--limit <n>] [--poll]",
	Short: "Lists the stored news articles of a given type.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		typ, ok := news.ParseType(args[0])
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown news type %q\n", args[0])
			os.Exit(1)
		}

		a := loadApp()
		defer a.Close()

		if *newsPoll {
			result, err := a.Poller.Poll(cmd.Context())
			if err != nil {
				serviceutil.Fatal("failed to poll news", err)
			}
			for lang, n := range result.Inserted {
				if n > 0 {
					fmt.Printf("%s: %d new articles\n", lang, n)
				}
			}
		}

		articles, err := a.Store.ListArticles(cmd.Context(), typ, news.ParseLanguage(*newsLang), *newsLimit)
		if err != nil {
			serviceutil.Fatal("failed to list articles", err)
		}
		t := newTable(table.Row{"ID", "Title", "Created", "Start", "End", "URL"})
		for _, article := range articles {
			t.AppendRow(table.Row{
				article.ID,
				article.Title,
				unixDate(article.CreatedAt),
				unixDate(article.StartAt),
				unixDate(article.EndAt),
				article.URL,
			})
		}
		t.Render()
	},
}

var errorsLimit *int64

var errorsCmd = &cobra.Command{
	Use:   "errors [--limit <n>]",
	Short: "Prints the most recent errors recorded by the server.",
	Run: func(cmd *cobra.Command, args []string) {
		a := loadApp()
		defer a.Close()

		entries, err := a.Store.ListErrors(cmd.Context(), *errorsLimit)
		if err != nil {
			serviceutil.Fatal("failed to list errors", err)
		}
		t := newTable(table.Row{"ID", "Time", "Name", "Message"})
		for _, e := range entries {
			t.AppendRow(table.Row{e.ID, formatDate(e.CreatedAt), e.Name, e.Message})
		}
		t.Render()
	},
}
