package cmd

import (
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "curator",
		Usage: "Aggregate and curate news articles from RSS feeds",
		Description: `Curator pulls articles from a configurable set of RSS feeds,
		keeps the ones that match each category's keyword lists, and tracks
		the editorial lifecycle of every picked article: selected, rewritten
		by an AI collaborator, and finally published to the CMS.

		Selected articles are stored in an SQLite database; the live article
		list is cached in memory and refreshed when it goes stale.

		Flags can generally be set via environment variables, e.g.:

		--database => CURATOR_DATABASE=curator.db
		--port => CURATOR_PORT=8080
		`,
		Commands: []*cli.Command{
			serveCmd(),
			fetchCmd(),
			migrateCmd(),
			rollbackCmd(),
			feedsCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}
