package cmd

import (
	"fmt"
	"strconv"

	"curator/config"
	"curator/feeds"

	"github.com/cqroot/prompt"
	"github.com/urfave/cli/v2"
)

func feedsCmd() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config/feeds.toml",
		Usage:   "Path to feeds configuration file",
		EnvVars: []string{"CURATOR_CONFIG"},
	}

	return &cli.Command{
		Name:  "feeds",
		Usage: "Manage feed sources",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List configured feed sources",
				Flags: []cli.Flag{configFlag},
				Action: func(ctx *cli.Context) error {
					registry, err := feeds.LoadRegistry(ctx.String("config"))
					if err != nil {
						return err
					}

					fmt.Printf("Feed sources (%s):\n", registry.Origin())
					for _, source := range registry.Sources() {
						state := "disabled"
						if source.Enabled {
							state = "enabled"
						}
						fmt.Printf("  %-20s %-10s %-8s %s\n", source.ID, source.Category, state, source.URL)
					}
					return nil
				},
			},
			{
				Name:  "add",
				Usage: "Interactively add a feed source",
				Flags: []cli.Flag{configFlag},
				Action: func(ctx *cli.Context) error {
					registry, err := feeds.LoadRegistry(ctx.String("config"))
					if err != nil {
						return err
					}

					id, err := prompt.New().Ask("Feed id:").Input("my-feed")
					if err != nil {
						return err
					}

					url, err := prompt.New().Ask("Feed URL:").Input("https://example.com/rss")
					if err != nil {
						return err
					}

					name, err := prompt.New().Ask("Display name:").Input("My Feed")
					if err != nil {
						return err
					}

					category, err := prompt.New().Ask("Category:").Input("tech")
					if err != nil {
						return err
					}

					maxArticles, err := prompt.New().Ask("Max articles per fetch:").Input("20")
					if err != nil {
						return err
					}
					parsedMax, err := strconv.Atoi(maxArticles)
					if err != nil {
						return fmt.Errorf("max articles must be a number: %w", err)
					}

					source := config.FeedConfig{
						ID:          id,
						URL:         url,
						DisplayName: name,
						Category:    category,
						Enabled:     true,
						MaxArticles: parsedMax,
					}

					if err := registry.Add(source); err != nil {
						return err
					}

					fmt.Println("Added feed source", id)
					return nil
				},
			},
		},
	}
}
