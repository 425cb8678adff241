// cmd/bizlens/main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/bizlens/internal/config"
	"github.com/andresuchdata/bizlens/internal/engine"
	"github.com/andresuchdata/bizlens/internal/storage"
	"github.com/andresuchdata/bizlens/pkg/logger"
)

func newIndustryFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "industry",
		Usage:   "Industry context to analyze with",
		Value:   "retail",
		EnvVars: []string{"ANALYSIS_DEFAULT_INDUSTRY"},
	}
}

func setupLogging(c *cli.Context) error {
	if c.Bool("verbose") {
		logger.SetLevel("debug")
	} else {
		logger.SetLevel("info")
	}
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}

	app := &cli.App{
		Name:  "bizlens",
		Usage: "Turn inventory and sales CSVs into plain-language business insights",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Analyze an inventory CSV and print a weekly report",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Inventory CSV (unified or legacy format)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "sales-file",
						Usage: "Optional separate sales CSV",
					},
					newIndustryFlag(),
					&cli.StringFlag{
						Name:    "business-name",
						Usage:   "Business name shown on the report",
						Value:   "Business",
						EnvVars: []string{"ANALYSIS_BUSINESS_NAME"},
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the markdown report to this file instead of stdout",
					},
					&cli.StringFlag{
						Name:  "publish",
						Usage: "Also publish the report to object storage under this key prefix",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the structured result as JSON instead of the report",
					},
				},
				Action: runAnalyze,
			},
			{
				Name:   "industries",
				Usage:  "List available industry contexts",
				Action: runIndustries,
			},
			{
				Name:  "fetch",
				Usage: "Download snapshot files from the configured object storage bucket",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Only fetch objects under this key prefix",
					},
					&cli.StringFlag{
						Name:  "dest",
						Usage: "Local directory to download into",
						Value: "./data/uploads",
					},
					&cli.Int64Flag{
						Name:  "concurrency",
						Usage: "Maximum parallel downloads",
						Value: 4,
					},
				},
				Action: runFetch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func runAnalyze(c *cli.Context) error {
	eng := engine.New()

	result, rendered, err := eng.AnalyzeAndReport(
		c.Context,
		c.String("industry"),
		c.String("file"),
		c.String("sales-file"),
		c.String("business-name"),
	)
	if err != nil {
		return err
	}

	for _, d := range result.Diagnostics {
		logger.Log.Warn().Str("stage", d.Stage).Str("check", d.Check).Msg(d.Message)
	}

	if prefix := c.String("publish"); prefix != "" {
		cfg := config.Load()
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return err
		}
		key := storage.ReportKey(prefix, c.String("business-name"), time.Now())
		if err := storage.PublishReport(c.Context, store, key, rendered); err != nil {
			return err
		}
		logger.Log.Info().Str("key", key).Msg("report published")
	}

	if c.Bool("json") {
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Println(string(payload))
		return nil
	}

	if out := c.String("out"); out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(out, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Log.Info().Str("path", out).Int("insights", len(result.Insights)).Msg("report written")
		return nil
	}

	fmt.Println(rendered)
	return nil
}

func runIndustries(c *cli.Context) error {
	fmt.Println(strings.Join(engine.New().Industries(), "\n"))
	return nil
}

func runFetch(c *cli.Context) error {
	cfg := config.Load()

	store, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return err
	}

	fetcher := storage.NewFetcher(store, c.Int64("concurrency"))
	paths, err := fetcher.FetchAll(c.Context, c.String("prefix"), c.String("dest"))
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		logger.Log.Info().Str("prefix", c.String("prefix")).Msg("no objects found")
		return nil
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	logger.Log.Info().Int("files", len(paths)).Str("dest", c.String("dest")).Msg("fetch complete")
	return nil
}
