package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/programme-lv/ranker/api"
	"github.com/programme-lv/ranker/internal/combine"
	"github.com/programme-lv/ranker/internal/jsonl"
	"github.com/programme-lv/ranker/internal/rank"
)

func combineCommand() *cli.Command {
	return &cli.Command{
		Name:  "combine",
		Usage: "join the reference stream with scored runs, filter and rank",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Usage: "reference task jsonl stream", Required: true},
			&cli.StringFlag{Name: "runs-dir", Usage: "directory holding exec_*.jsonl run files", Required: true},
			&cli.StringFlag{Name: "output-dir", Usage: "directory for the four output streams", Required: true},
			&cli.StringFlag{Name: "dataset", Usage: "HE, HE_plus, MBPP or MBPP_plus"},
			&cli.FloatFlag{Name: "time-ratio", Usage: "runtime ratio below which equal-score candidates collapse"},
			&cli.StringFlag{Name: "progress", Usage: "progress sink: term, nats, sqs or none"},
		},
		Action: runCombine,
	}
}

func runCombine(ctx context.Context, cmd *cli.Command) error {
	cfg, dataset, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	inputs, err := jsonl.ReadAll[*api.TaskRecord](cmd.String("input"))
	if err != nil {
		return err
	}
	runs, err := combine.LoadRunFiles(cmd.String("runs-dir"))
	if err != nil {
		return err
	}
	slog.Info("combining runs",
		slog.Int("lines", len(inputs)),
		slog.Int("run_files", len(runs)),
		slog.String("dataset", string(dataset)))

	outDir := cmd.String("output-dir")
	writers := make([]*jsonl.Writer, 4)
	for i, suffix := range []string{"unranked", "ranked", "base_ranked", "plus_ranked"} {
		path := filepath.Join(outDir, fmt.Sprintf("%s_%s.jsonl", cfg.Dataset, suffix))
		w, err := jsonl.NewWriter(path)
		if err != nil {
			return err
		}
		defer w.Close()
		writers[i] = w
	}

	gath, err := buildGatherer(ctx, cfg)
	if err != nil {
		return err
	}

	comb := &combine.Combiner{
		Dataset: dataset,
		Rank:    rank.Config{TimeRatioThreshold: cfg.TimeRatioThreshold},
	}

	startedAt := time.Now()
	gath.StartRun(len(inputs))
	for i, original := range inputs {
		gath.StartTask(i)
		start := time.Now()
		out, err := comb.CombineLine(i, original, runs)
		if err != nil {
			gath.FailTask(i, err)
			return err
		}
		for j, v := range []any{out.Unranked, out.Ranked, out.Base, out.Plus} {
			if err := writers[j].Write(v); err != nil {
				return err
			}
		}
		gath.FinishTask(i, time.Since(start))
	}
	for _, w := range writers {
		if err := w.Close(); err != nil {
			return err
		}
	}
	gath.FinishRun(gatherSummary(len(inputs), comb.Tossed, startedAt))

	slog.Info("combine finished", slog.Int("tossed", comb.Tossed))
	return nil
}
