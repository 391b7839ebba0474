package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/programme-lv/ranker/api"
	"github.com/programme-lv/ranker/internal/dedup"
	"github.com/programme-lv/ranker/internal/jsonl"
)

func filterCommand() *cli.Command {
	return &cli.Command{
		Name:  "filter",
		Usage: "deduplicate and down-sample a tier-ranked stream",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Usage: "tier-ranked jsonl stream", Required: true},
			&cli.StringFlag{Name: "output", Usage: "reduced jsonl stream", Required: true},
			&cli.StringFlag{Name: "dataset", Usage: "HE, HE_plus, MBPP or MBPP_plus"},
			&cli.IntFlag{Name: "pool-size", Usage: "target number of survivors per task"},
		},
		Action: runFilter,
	}
}

func runFilter(ctx context.Context, cmd *cli.Command) error {
	cfg, dataset, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dcfg := dedup.DefaultConfig()
	dcfg.PoolSize = cfg.PoolSize

	r, err := jsonl.NewReader(cmd.String("input"))
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := jsonl.NewWriter(cmd.String("output"))
	if err != nil {
		return err
	}

	lines := 0
	for {
		var rec api.TierRecord
		if err := r.Next(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err := dedup.FilterRecord(&rec, dataset.PromptField(), dcfg); err != nil {
			w.Close()
			return err
		}
		if err := w.Write(&rec); err != nil {
			w.Close()
			return err
		}
		lines++
	}
	if err := w.Close(); err != nil {
		return err
	}

	slog.Info("filter finished", slog.Int("lines", lines))
	return nil
}
