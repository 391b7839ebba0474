package executor

import (
	"context"
	"log/slog"

	"github.com/programme-lv/ranker/api"
	"github.com/programme-lv/ranker/internal/environment"
	"github.com/programme-lv/ranker/internal/invoke"
)

// ScoreOptions tune one scoring pass.
type ScoreOptions struct {
	// AddPrompt prepends the task prompt to the solution body
	// (HumanEval-style references need it, generated candidates don't).
	AddPrompt bool
	// Adaptive derives per-test budgets from the timings of a previous
	// pass instead of the flat default.
	Adaptive bool
}

// ScoreRecord executes the record's tests and attaches both tiers'
// execution results in place. Plain MBPP records have no plus tests; the
// plus result is still attached, with empty outcomes, and the task text
// gains its first test assertion so the text alone states the contract.
func (w *Worker) ScoreRecord(ctx context.Context, dataset environment.Dataset, rec *api.TaskRecord, opts ScoreOptions) error {
	inv, err := invoke.Build(dataset, rec, opts.AddPrompt)
	if err != nil {
		return err
	}

	var baseBudgets, plusBudgets []float64
	if opts.Adaptive {
		baseBudgets = adaptiveBudgets(rec.BaseExecutionResult)
		plusBudgets = adaptiveBudgets(rec.PlusExecutionResult)
	}

	base, err := w.RunTier(ctx, inv.Program, inv.BaseTests, baseBudgets)
	if err != nil {
		return err
	}
	plus, err := w.RunTier(ctx, inv.Program, inv.PlusTests, plusBudgets)
	if err != nil {
		return err
	}
	rec.BaseExecutionResult = base
	rec.PlusExecutionResult = plus

	if anyNonEmpty(base.UnitTestStderrs) || anyNonEmpty(plus.UnitTestStderrs) {
		slog.Warn("tests produced errors", slog.String("task_id", rec.TaskID))
	}

	if dataset == environment.DatasetMBPP && rec.Text != nil && len(rec.TestList) > 0 {
		text := *rec.Text + "\n" + rec.TestList[0] + "\n"
		rec.Text = &text
	}
	return nil
}

// adaptiveBudgets scales a previous pass's per-test timings into budgets,
// floored at the minimum.
func adaptiveBudgets(prev *api.ExecutionResult) []float64 {
	if prev == nil {
		return nil
	}
	budgets := make([]float64, 0, len(prev.TimeTaken))
	for _, t := range prev.TimeTaken {
		b := t * environment.TimeoutMultiple
		if b < environment.TimeoutMin {
			b = environment.TimeoutMin
		}
		budgets = append(budgets, b)
	}
	return budgets
}

func anyNonEmpty(lines []string) bool {
	for _, l := range lines {
		if l != "" {
			return true
		}
	}
	return false
}
