package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/app"
	"github.com/kailas-cloud/audience/internal/config"
	logpkg "github.com/kailas-cloud/audience/internal/logger"
	"github.com/kailas-cloud/audience/internal/repository/embstore"
	audienceuc "github.com/kailas-cloud/audience/internal/usecase/audience"
	"github.com/kailas-cloud/audience/internal/version"
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "recommend",
		Usage:   "Rank profiles against a free-text audience description",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a config file (default: config/<ENV>.yaml)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Audience description, e.g. \"students in Kazan, 18-22\"",
			},
			&cli.IntFlag{
				Name:    "top-k",
				Aliases: []string{"k"},
				Usage:   "Number of profiles to return (default: ranking.default_top_k)",
			},
			&cli.BoolFlag{
				Name:  "refine",
				Usage: "Rewrite the query with the LLM refiner before ranking",
			},
			&cli.StringFlag{
				Name:  "location",
				Usage: "Location appended to queries that ask for something nearby",
			},
			&cli.IntFlag{
				Name:  "option",
				Usage: "Which refiner suggestion to use (1-based)",
				Value: 1,
			},
		},
		Action: recommendCommand,
		Commands: []*cli.Command{
			{
				Name:   "criteria",
				Usage:  "Print the criteria extracted from a query without ranking",
				Action: criteriaCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Audience description",
						Required: true,
					},
				},
			},
			{
				Name:   "convert-embeddings",
				Usage:  "Convert a JSON group embedding store to Parquet",
				Action: convertCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "in",
						Usage:    "Source store (JSON object or .parquet)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "out",
						Usage:    "Destination .parquet file",
						Required: true,
					},
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load(config.GetEnv())
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	env := config.GetEnv()
	if env == "prod" {
		env = "local" // console output for interactive use
	}
	return logpkg.NewLogger(env, c.String("log-level"))
}

func recommendCommand(c *cli.Context) error {
	query := c.String("query")
	if query == "" {
		return fmt.Errorf("--query is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	topK := c.Int("top-k")
	if topK == 0 {
		topK = cfg.Ranking.DefaultTopK
	}

	start := time.Now()
	rep, err := a.Audience.Recommend(ctx, audienceuc.Request{
		Query:    query,
		TopK:     topK,
		Location: c.String("location"),
		Refine:   c.Bool("refine"),
		Option:   c.Int("option") - 1,
	})
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	elapsed := time.Since(start)

	out := c.App.Writer
	if rep.NeedsLocation && c.String("location") == "" {
		fmt.Fprintln(out, "hint: the query asks for something nearby; pass --location to narrow it")
	}
	if rep.Refined {
		fmt.Fprintf(out, "refined query: %s\n", rep.Query)
	}
	fmt.Fprintf(out, "criteria: %s\n", audienceuc.Describe(rep.Criteria))
	fmt.Fprintf(out, "filtered: %d, embedded: %d, groups direct/fallback/unresolved: %d/%d/%d\n\n",
		rep.Filtered, rep.Embedded, rep.Resolution.Direct, rep.Resolution.Fallback, rep.Resolution.Unresolved)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USER_ID\tCITY\tAGE\tGENDER\tSIMILARITY")
	for _, res := range rep.Results {
		m := res.Member()
		age := "-"
		if v, ok := m.Age(); ok {
			age = strconv.Itoa(v)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.4f\n", m.ID(), m.City(), age, m.Sex(), res.Score())
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	fmt.Fprintf(out, "\n%d profiles in %s\n", len(rep.Results), elapsed.Round(time.Millisecond))
	return nil
}

func criteriaCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	a, err := app.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer a.Close()

	crit, err := a.Audience.Criteria(c.String("query"))
	if err != nil {
		return fmt.Errorf("criteria: %w", err)
	}
	fmt.Fprintln(c.App.Writer, audienceuc.Describe(crit))
	return nil
}

func convertCommand(c *cli.Context) error {
	vectors, err := embstore.Load(c.String("in"), zap.NewNop())
	if err != nil {
		return err
	}
	if err := embstore.WriteParquet(c.String("out"), vectors); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "wrote %d group vectors to %s\n", len(vectors), c.String("out"))
	return nil
}
