package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/cli/config"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"github.com/secmon-lab/deckmemo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var errSearchNotConfigured = goerr.New("search API is not configured")

func cmdSearch() *cli.Command {
	var searchCfg config.Search

	return &cli.Command{
		Name:      "search",
		Usage:     "Look up a memo snippet with the Custom Search API",
		ArgsUsage: "<snippet>",
		Flags:     searchCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return goerr.Wrap(model.ErrInvalidInput, "snippet is required")
			}

			client, err := searchCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if client == nil {
				return goerr.Wrap(errSearchNotConfigured, "set --search-api-key and --search-engine-id")
			}

			logging.Default().Debug("Searching snippet", "query", query)
			items, err := client.Search(ctx, query)
			if err != nil {
				return goerr.Wrap(err, "failed to search snippet", goerr.V("query", query))
			}

			printSearchResults(color.Output, query, items)
			return nil
		},
	}
}

func printSearchResults(w io.Writer, query string, items []model.SearchItem) {
	header := color.New(color.FgCyan, color.Bold)
	title := color.New(color.FgGreen)
	link := color.New(color.FgBlue, color.Underline)

	_, _ = header.Fprintf(w, "Results for %q (%d)\n", query, len(items))
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "No matching sources found.")
		return
	}

	for i, item := range items {
		item = item.Normalize()
		_, _ = fmt.Fprintf(w, "\n[%d] ", i+1)
		_, _ = title.Fprintln(w, item.Title)
		_, _ = fmt.Fprintf(w, "    %s\n    ", item.Snippet)
		_, _ = link.Fprintln(w, item.Link)
	}
}
