package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"curator/cache"
	"curator/curation"
	"curator/feeds"
	"curator/publish"
	"curator/rewrite"
	"curator/server"
	"curator/store"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the curation API",
		Description: `Starts the curation HTTP server.

Aggregates articles from every enabled feed source, filters them by each
category's keyword lists and serves the curation dashboard API: pending
articles, selected articles, AI rewriting and CMS publishing.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "curator.db",
				Usage:   "SQLite database file location",
				EnvVars: []string{"CURATOR_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config/feeds.toml",
				Usage:   "Path to feeds configuration file",
				EnvVars: []string{"CURATOR_CONFIG"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   8080,
				Usage:   "Port to listen on",
				EnvVars: []string{"CURATOR_PORT"},
			},
			&cli.StringFlag{
				Name:    "allow-origins",
				Value:   "http://localhost:3001",
				Usage:   "CORS origin allowed to call the API",
				EnvVars: []string{"CURATOR_ALLOW_ORIGINS"},
			},
			&cli.DurationFlag{
				Name:    "cache-ttl",
				Value:   cache.DefaultTTL,
				Usage:   "How long an aggregation snapshot stays fresh",
				EnvVars: []string{"CURATOR_CACHE_TTL"},
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
			&cli.StringFlag{
				Name:    "openai-api-key",
				Usage:   "API key for the rewrite model",
				EnvVars: []string{"CURATOR_OPENAI_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "openai-model",
				Value:   "gpt-4o-mini",
				Usage:   "Model used for article rewrites",
				EnvVars: []string{"CURATOR_OPENAI_MODEL"},
			},
			&cli.StringFlag{
				Name:    "openai-endpoint",
				Usage:   "Override the chat completions endpoint",
				EnvVars: []string{"CURATOR_OPENAI_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "wordpress-url",
				Usage:   "Base URL of the WordPress site to publish to",
				EnvVars: []string{"CURATOR_WORDPRESS_URL"},
			},
			&cli.StringFlag{
				Name:    "wordpress-user",
				Usage:   "WordPress username",
				EnvVars: []string{"CURATOR_WORDPRESS_USER"},
			},
			&cli.StringFlag{
				Name:    "wordpress-app-password",
				Usage:   "WordPress application password",
				EnvVars: []string{"CURATOR_WORDPRESS_APP_PASSWORD"},
			},
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")

			if err := store.Migrate(database); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			articleStore, err := store.NewSQLite(database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer articleStore.Close()

			registry, err := feeds.LoadRegistry(ctx.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load feed registry: %w", err)
			}

			log.WithFields(log.Fields{
				"origin":  registry.Origin(),
				"sources": len(registry.Sources()),
			}).Info("Loaded feed registry")

			fetcher := feeds.NewFetcher(nil).WithTimeout(ctx.Duration("fetch-timeout"))
			pipeline := feeds.NewPipeline(registry, fetcher, feeds.PipelineOptions{
				DisableFiltering: ctx.Bool("disable-filtering"),
			})
			live := cache.NewLive(pipeline, ctx.Duration("cache-ttl"))

			rewriter := rewrite.NewClient(
				ctx.String("openai-endpoint"),
				ctx.String("openai-model"),
				ctx.String("openai-api-key"),
			)
			publisher := publish.NewWordPress(
				ctx.String("wordpress-url"),
				ctx.String("wordpress-user"),
				ctx.String("wordpress-app-password"),
			)

			orchestrator := curation.NewOrchestrator(articleStore, live, rewriter, publisher)

			app := server.Server(&server.ServerConfig{
				AllowOrigins: ctx.String("allow-origins"),
				Orchestrator: orchestrator,
				Cache:        live,
				Registry:     registry,
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)

			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.Error("Error shutting down server", err)
				}
			}()

			fmt.Println("Starting server...")
			return app.Listen(fmt.Sprintf(":%d", ctx.Int("port")))
		},
	}
}
