package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"curator/feeds"
	"curator/models"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Run the aggregation pipeline once and print the result",
		Description: `Fetches every enabled feed source, filters and aggregates the
articles and prints them to stdout.

Returns each article as a JSON object on a single line. Use a tool like jq to
process the output.

Prints all other log messages to stderr.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config/feeds.toml",
				Usage:   "Path to feeds configuration file",
				EnvVars: []string{"CURATOR_CONFIG"},
			},
			&cli.DurationFlag{
				Name:    "fetch-timeout",
				Value:   5 * time.Second,
				Usage:   "Timeout for fetching a single feed",
				EnvVars: []string{"CURATOR_FETCH_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:    "disable-filtering",
				Usage:   "Accept every feed item, bypassing keyword matching",
				EnvVars: []string{"CURATOR_DISABLE_FILTERING"},
			},
		},
		Action: func(ctx *cli.Context) error {
			// Keep stdout clean for the article stream
			log.SetOutput(os.Stderr)

			registry, err := feeds.LoadRegistry(ctx.String("config"))
			if err != nil {
				return err
			}

			fetcher := feeds.NewFetcher(nil).WithTimeout(ctx.Duration("fetch-timeout"))
			pipeline := feeds.NewPipeline(registry, fetcher, feeds.PipelineOptions{
				DisableFiltering: ctx.Bool("disable-filtering"),
			})

			articles, err := pipeline.FetchAll(ctx.Context)
			if err != nil {
				return err
			}

			for _, article := range articles {
				printStdout(&article)
			}

			return nil
		},
	}
}

func printStdout(article *models.Article) {
	// Print as single JSON string on a single line
	articleJson, err := json.Marshal(article)
	if err == nil {
		fmt.Println(string(articleJson))
	}
}
