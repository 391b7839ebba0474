package dedup

import (
	"fmt"

	"github.com/programme-lv/ranker/api"
)

// FilterRecord reduces one tier-ranked record's pool in place. Test inputs
// are promoted from the first candidate up to the record before selection;
// afterwards each surviving candidate drops its inputs (HumanEval-style) or
// its test lists (plain MBPP). The surviving rank-1 candidate gets its
// prompt folded into canonical_solution so the field alone is runnable.
func FilterRecord(rec *api.TierRecord, promptField string, cfg Config) error {
	if len(rec.AllSolutions) == 0 {
		return nil
	}

	first := rec.AllSolutions[0].Solution
	hasInputs := len(first.BaseInput) > 0
	if hasInputs {
		rec.BaseInput = first.BaseInput
		rec.PlusInput = first.PlusInput
	}

	updated, err := Process(rec.AllSolutions, cfg)
	if err != nil {
		return err
	}

	for i := range updated {
		sol := updated[i].Solution
		if hasInputs {
			sol.StripInputs()
		} else {
			sol.TestList = nil
			sol.ChallengeTestList = nil
		}
	}

	if updated[0].Rank != 1 {
		return fmt.Errorf("top candidate has rank %d after re-ranking", updated[0].Rank)
	}
	top := updated[0].Solution
	prompt := top.Prompt
	if promptField == "text" {
		prompt = top.Text
	}
	if prompt == nil {
		return fmt.Errorf("rank 1 candidate of task %s has no %s", rec.TaskID, promptField)
	}
	top.CanonicalSolution = *prompt + top.CanonicalSolution

	rec.AllSolutions = updated
	return nil
}
