package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	"github.com/programme-lv/ranker/internal/environment"
	"github.com/programme-lv/ranker/internal/gatherer"
	"github.com/programme-lv/ranker/internal/gatherer/natsgath"
	"github.com/programme-lv/ranker/internal/gatherer/termgath"
	"github.com/programme-lv/ranker/sqsgath"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.TimeOnly,
	})))

	cmd := &cli.Command{
		Name:  "ranker",
		Usage: "score, rank and down-sample candidate coding solutions",
		Commands: []*cli.Command{
			scoreCommand(),
			combineCommand(),
			filterCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// loadConfig resolves the file/env configuration and lets set CLI flags win.
func loadConfig(cmd *cli.Command) (*environment.Config, environment.Dataset, error) {
	cfg, err := environment.Read()
	if err != nil {
		return nil, "", err
	}
	if cmd.IsSet("dataset") {
		cfg.Dataset = cmd.String("dataset")
	}
	if cmd.IsSet("timeout") {
		cfg.TimeoutSec = cmd.Float("timeout")
	}
	if cmd.IsSet("workers") {
		cfg.Workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("time-ratio") {
		cfg.TimeRatioThreshold = cmd.Float("time-ratio")
	}
	if cmd.IsSet("pool-size") {
		cfg.PoolSize = int(cmd.Int("pool-size"))
	}
	if cmd.IsSet("progress") {
		cfg.Progress = cmd.String("progress")
	}
	dataset, err := environment.ParseDataset(cfg.Dataset)
	if err != nil {
		return nil, "", err
	}
	return cfg, dataset, nil
}

func gatherSummary(processed, tossed int, startedAt time.Time) gatherer.Summary {
	return gatherer.Summary{
		Processed:  processed,
		Tossed:     tossed,
		ElapsedSec: time.Since(startedAt).Seconds(),
	}
}

// buildGatherer picks the progress sink configured for this run.
func buildGatherer(ctx context.Context, cfg *environment.Config) (gatherer.RunGatherer, error) {
	switch cfg.Progress {
	case "nats":
		return natsgath.New(cfg.NatsURL, cfg.NatsSubject)
	case "sqs":
		return sqsgath.New(ctx, cfg.AwsRegion, cfg.SqsQueueURL)
	case "none":
		return gatherer.Discard{}, nil
	default:
		return termgath.New(), nil
	}
}
