package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/programme-lv/ranker/api"
	"github.com/programme-lv/ranker/internal/executor"
	"github.com/programme-lv/ranker/internal/jsonl"
)

func scoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "score",
		Usage: "execute every record's tests in sandboxed Python subprocesses",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Usage: "task/candidate jsonl stream", Required: true},
			&cli.StringFlag{Name: "output", Usage: "scored jsonl stream", Required: true},
			&cli.StringFlag{Name: "dataset", Usage: "HE, HE_plus, MBPP or MBPP_plus"},
			&cli.FloatFlag{Name: "timeout", Usage: "per-test wall-clock budget in seconds"},
			&cli.IntFlag{Name: "workers", Usage: "concurrent scoring workers"},
			&cli.BoolFlag{Name: "adaptive-timeouts", Usage: "derive budgets from a previous pass's timings"},
			&cli.BoolFlag{Name: "no-prompt", Usage: "don't prepend the prompt to the solution body"},
			&cli.StringFlag{Name: "progress", Usage: "progress sink: term, nats, sqs or none"},
		},
		Action: runScore,
	}
}

func runScore(ctx context.Context, cmd *cli.Command) error {
	cfg, dataset, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lines, err := jsonl.ReadAll[*api.TaskRecord](cmd.String("input"))
	if err != nil {
		return err
	}
	slog.Info("scoring records",
		slog.Int("lines", len(lines)),
		slog.String("dataset", string(dataset)),
		slog.Int("workers", cfg.Workers))

	gath, err := buildGatherer(ctx, cfg)
	if err != nil {
		return err
	}

	orch := &executor.Orchestrator{
		Worker:  &executor.Worker{PythonBin: cfg.PythonBin, Timeout: cfg.TimeoutSec},
		Dataset: dataset,
		Workers: cfg.Workers,
		Opts: executor.ScoreOptions{
			AddPrompt: !cmd.Bool("no-prompt"),
			Adaptive:  cmd.Bool("adaptive-timeouts"),
		},
		Gath: gath,
	}
	scored, summary := orch.Run(ctx, lines)

	w, err := jsonl.NewWriter(cmd.String("output"))
	if err != nil {
		return err
	}
	for _, rec := range scored {
		if err := w.Write(rec); err != nil {
			w.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	slog.Info("scoring finished",
		slog.Int("processed", summary.Processed),
		slog.Int("failed", summary.Failed))
	return nil
}
