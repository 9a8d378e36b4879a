// Copyright 2025 EcoInsight Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	ecoinsight "github.com/ecoinsight/ecoinsight"
	"github.com/ecoinsight/ecoinsight/ai"
	"github.com/ecoinsight/ecoinsight/ai/openai"
	"github.com/ecoinsight/ecoinsight/ingestion"
	"github.com/ecoinsight/ecoinsight/reembed"
	"github.com/ecoinsight/ecoinsight/storage"
	"github.com/ecoinsight/ecoinsight/storage/badger"
)

func main() {
	// Optional .env for OPENWEATHER_API_KEY and friends; absence is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "ecoinsight",
		Usage: "Per-city environmental observations with hybrid story retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Fetch and store current conditions for one or more cities",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "OpenWeatherMap API key",
						EnvVars: []string{"OPENWEATHER_API_KEY"},
					},
					&cli.StringSliceFlag{
						Name:     "city",
						Aliases:  []string{"c"},
						Usage:    "City to ingest (repeatable)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of cities ingested concurrently (default: CPU count)",
					},
				},
			},
			{
				Name:   "story",
				Usage:  "Generate and store a climate story for a city",
				Action: storyCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "city",
						Aliases:  []string{"c"},
						Usage:    "City to generate a story for",
						Required: true,
					},
				),
			},
			{
				Name:   "search",
				Usage:  "Search stored stories by semantic similarity with lexical fallback",
				Action: searchCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Search query",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of results",
						Value: 5,
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Re-embed stored stories with the configured embedding model",
				Action: reembedCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "only-missing",
						Usage: "Only embed stories that have no vector yet",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of stories to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:   "stories",
				Usage:  "List stored stories for a city",
				Action: storiesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "city",
						Aliases:  []string{"c"},
						Usage:    "City to list stories for",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "story-model",
			Usage: "Story generation model name",
			Value: "qwen2.5:3b",
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	cfg := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorModel(c.String("story-model")),
	)
	cfg.Normalize()
	return cfg
}

func openDatabase(c *cli.Context) (*ecoinsight.Database, error) {
	db, err := ecoinsight.NewDatabase(c.String("db"), ecoinsight.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	apiKey := c.String("api-key")
	if apiKey == "" {
		return fmt.Errorf("api key is required (flag --api-key or OPENWEATHER_API_KEY)")
	}

	db, err := ecoinsight.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var opts []ingestion.CoordinatorOption
	if c.Int("pool-size") > 0 {
		opts = append(opts, ingestion.WithPoolSize(c.Int("pool-size")))
	}

	coordinator, err := db.NewCoordinator(apiKey, opts...)
	if err != nil {
		return fmt.Errorf("failed to create coordinator: %w", err)
	}
	defer coordinator.Release()

	report, err := coordinator.IngestAll(ctx, c.StringSlice("city"))
	if err != nil {
		return fmt.Errorf("ingestion batch failed: %w", err)
	}

	fmt.Printf("Stored: %d\n", report.Stored)
	fmt.Printf("Rejected: %d\n", report.Rejected)
	for _, failure := range report.Failures {
		fmt.Printf("Failed: %s (stage %s): %s\n", failure.City, failure.Stage, failure.Cause)
	}
	return nil
}

func storyCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	composer, err := db.NewComposer()
	if err != nil {
		return fmt.Errorf("failed to create composer: %w", err)
	}

	artifact, err := composer.Compose(ctx, c.String("city"))
	if err != nil {
		return fmt.Errorf("failed to compose story: %w", err)
	}

	fmt.Printf("Story %d for %s (embedded: %v)\n\n", artifact.Id, artifact.Location, len(artifact.Vector) > 0)
	fmt.Println(artifact.Text)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	retriever, err := db.NewRetriever()
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}

	outcome, err := retriever.Search(ctx, c.String("query"), c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Mode: %s\n", outcome.Mode)
	if len(outcome.Results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, result := range outcome.Results {
		fmt.Printf("\n%d. %s", i+1, result.Location)
		if result.Score != nil {
			fmt.Printf(" (score %.3f)", *result.Score)
		}
		fmt.Printf("\n%s\n", result.Text)
	}
	return nil
}

func storiesCommand(c *cli.Context) error {
	ctx := context.Background()

	// Listing needs no AI services; open storage directly.
	backend, artifacts, err := openArtifacts(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()

	stories, err := artifacts.GetArtifactsByLocation(ctx, c.String("city"))
	if err != nil {
		return fmt.Errorf("failed to list stories: %w", err)
	}

	if len(stories) == 0 {
		fmt.Printf("No stories for %s.\n", c.String("city"))
		return nil
	}
	for _, artifact := range stories {
		fmt.Printf("%d  %s  %s\n", artifact.Id, artifact.CreatedAt.Format("2006-01-02 15:04"), artifact.ModelUsed)
		fmt.Println(artifact.Text)
		fmt.Println()
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, artifacts, err := openArtifacts(c.String("db"))
	if err != nil {
		return err
	}
	defer backend.Close()

	embedder, err := openai.NewEmbedder(aiConfigFromFlags(c))
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := reembed.DefaultConfig()
	config.BatchSize = c.Int("batch-size")
	config.MaxRetries = c.Int("max-retries")
	config.RetryDelay = c.Duration("retry-delay")
	config.OnlyMissing = c.Bool("only-missing")
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := reembed.NewReembedder(artifacts, embedder, config, os.Stderr)
	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("re-embedding failed: %w", err)
	}
	return nil
}

func openArtifacts(dbPath string) (*badger.Backend, storage.ArtifactRepository, error) {
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	artifacts, err := badger.NewArtifactRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to create repository: %w", err)
	}
	return backend, artifacts, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
