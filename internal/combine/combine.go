// Package combine joins the reference task stream with the scored candidate
// run files by line position, drops degenerate candidates, ranks each task's
// pool per tier and assembles the unranked, ranked and per-tier output
// records.
package combine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/programme-lv/ranker/api"
	"github.com/programme-lv/ranker/internal/environment"
	"github.com/programme-lv/ranker/internal/rank"
)

// ErrReferenceDegenerate means the reference solution itself failed the
// degeneracy check, which invalidates the whole run.
var ErrReferenceDegenerate = errors.New("reference solution produced errors on every test")

// ReferenceID is the candidate id reserved for the reference solution.
const ReferenceID = 0

// Combiner assembles output records for one run. Not safe for concurrent
// use; Tossed accumulates across lines.
type Combiner struct {
	Dataset environment.Dataset
	Rank    rank.Config

	// Tossed counts candidates dropped by the degeneracy filter.
	Tossed int
}

// Output carries the four records produced for one input line.
type Output struct {
	Unranked *api.UnrankedRecord
	Ranked   *api.RankedRecord
	Base     *api.TierRecord
	Plus     *api.TierRecord
}

// Degenerate reports whether every captured stderr line across both tiers is
// non-blank and not a bare assertion failure. Such a candidate errored on
// every single test, which marks broken extraction rather than a wrong
// answer. A candidate with no stderr lines at all is not degenerate.
func Degenerate(rec *api.TaskRecord) bool {
	var lines []string
	if rec.BaseExecutionResult != nil {
		lines = append(lines, rec.BaseExecutionResult.UnitTestStderrs...)
	}
	if rec.PlusExecutionResult != nil {
		lines = append(lines, rec.PlusExecutionResult.UnitTestStderrs...)
	}
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" || s == "AssertionError()" {
			return false
		}
	}
	return true
}

// CombineLine builds the output records for input line i. Each run file
// contributes at most one candidate; a run file shorter than the input
// stream still consumes its candidate id so ids stay positional. Degenerate
// candidates are dropped and counted; a degenerate reference is fatal.
func (c *Combiner) CombineLine(i int, original *api.TaskRecord, runs []RunFile) (*Output, error) {
	prompt := c.promptOf(original)
	if prompt == nil {
		slog.Warn("input line has no prompt", slog.Int("line", i), slog.String("key", c.Dataset.PromptField()))
	}

	pool := []api.Candidate{{ID: ReferenceID, Solution: original}}
	for fi, run := range runs {
		id := fi + 1
		if i >= len(run.Lines) {
			continue
		}
		cand := run.Lines[i]
		c.checkPrompt(i, id, run.Path, prompt, cand)
		pool = append(pool, api.Candidate{ID: id, Solution: cand})
	}

	kept := pool[:0]
	for _, cand := range pool {
		if Degenerate(cand.Solution) {
			if cand.ID == ReferenceID {
				return nil, fmt.Errorf("line %d: %w", i, ErrReferenceDegenerate)
			}
			c.Tossed++
			continue
		}
		kept = append(kept, cand)
	}
	pool = kept

	out := &Output{Unranked: c.unranked(original, pool)}
	c.ranked(out, original, pool)
	return out, nil
}

func (c *Combiner) promptOf(rec *api.TaskRecord) *string {
	if c.Dataset.PromptField() == "text" {
		return rec.Text
	}
	return rec.Prompt
}

// checkPrompt warns when a candidate's prompt diverges from the reference.
// Plain MBPP candidates carry the reference text plus an appended test
// assertion, so a prefix match is silently truncated back to the original.
func (c *Combiner) checkPrompt(line, id int, path string, prompt *string, cand *api.TaskRecord) {
	if prompt == nil {
		return
	}
	candPrompt := c.promptOf(cand)
	if candPrompt != nil && *candPrompt == *prompt {
		return
	}
	if c.Dataset == environment.DatasetMBPP && candPrompt != nil && strings.HasPrefix(*candPrompt, *prompt) {
		*cand.Text = *prompt
		return
	}
	slog.Warn("prompt mismatch",
		slog.String("file", path), slog.Int("line", line), slog.Int("solution_id", id))
}

// unranked keeps the cleaned pool as-is: candidate solutions retain their
// test inputs, execution results are reduced to the aggregate fields.
func (c *Combiner) unranked(original *api.TaskRecord, pool []api.Candidate) *api.UnrankedRecord {
	top := original.Clone()
	top.StripInputs()
	top.BaseExecutionResult.Clean()
	top.PlusExecutionResult.Clean()

	all := make([]api.Candidate, 0, len(pool))
	for _, cand := range pool {
		sol := cand.Solution.Clone()
		sol.BaseExecutionResult.Clean()
		sol.PlusExecutionResult.Clean()
		all = append(all, api.Candidate{ID: cand.ID, Solution: sol})
	}
	return &api.UnrankedRecord{TaskRecord: *top, AllSolutions: all}
}

// ranked ranks the pool per tier and fills the ranked record plus the two
// tier records. Plain MBPP has no plus tier: plus ranks stay null and the
// plus record carries an empty pool.
func (c *Combiner) ranked(out *Output, original *api.TaskRecord, pool []api.Candidate) {
	baseRanks := rank.Rank(pool, rank.DimBase, ReferenceID, c.Rank)
	plusRanks := map[int]int{}
	if c.Dataset.HasPlusTier() {
		plusRanks = rank.Rank(pool, rank.DimPlus, ReferenceID, c.Rank)
	}

	top := original.Clone()
	top.StripInputs()
	top.BaseExecutionResult = nil
	top.PlusExecutionResult = nil

	all := make([]api.RankedCandidate, 0, len(pool))
	for _, cand := range pool {
		all = append(all, c.rankedCandidate(cand, baseRanks, plusRanks))
	}
	out.Ranked = &api.RankedRecord{TaskRecord: *top, AllSolutions: all}

	out.Base = tierRecord(top, all, func(rc *api.RankedCandidate) (*int, *float64, *api.Seconds) {
		return rc.Rank.BaseExecution, rc.AverageTestScore.BaseExecution, rc.AverageTimeTaken.BaseExecution
	})
	out.Plus = tierRecord(top, all, func(rc *api.RankedCandidate) (*int, *float64, *api.Seconds) {
		return rc.Rank.PlusExecution, rc.AverageTestScore.PlusExecution, rc.AverageTimeTaken.PlusExecution
	})
}

func (c *Combiner) rankedCandidate(cand api.Candidate, baseRanks, plusRanks map[int]int) api.RankedCandidate {
	sol := cand.Solution.Clone()
	sol.BaseExecutionResult.Clean()
	sol.PlusExecutionResult.Clean()

	baseScore := rank.Score(sol, rank.DimBase)
	baseTime := api.Seconds(sol.BaseExecutionResult.AvgTime())

	rc := api.RankedCandidate{
		Rank:             api.RankPair{BaseExecution: rankPtr(baseRanks, cand.ID)},
		AverageTestScore: api.ScorePair{BaseExecution: &baseScore},
		AverageTimeTaken: api.TimePair{BaseExecution: &baseTime},
		Solution:         sol,
	}
	if c.Dataset.HasPlusTier() {
		plusScore := rank.EffectiveScore(sol, rank.DimPlus)
		plusTime := api.Seconds(sol.PlusExecutionResult.AvgTime())
		rc.Rank.PlusExecution = rankPtr(plusRanks, cand.ID)
		rc.AverageTestScore.PlusExecution = &plusScore
		rc.AverageTimeTaken.PlusExecution = &plusTime
	}

	// Aggregates extracted; the ranked streams carry no execution results.
	sol.BaseExecutionResult = nil
	sol.PlusExecutionResult = nil
	return rc
}

// tierRecord filters the ranked pool down to candidates ranked in one tier,
// sorted by rank, scores rounded to two decimals.
func tierRecord(top *api.TaskRecord, all []api.RankedCandidate, pick func(*api.RankedCandidate) (*int, *float64, *api.Seconds)) *api.TierRecord {
	sols := []api.TierCandidate{}
	for i := range all {
		r, score, t := pick(&all[i])
		if r == nil {
			continue
		}
		sols = append(sols, api.TierCandidate{
			Rank:             *r,
			AverageTestScore: round2(*score),
			AverageTimeTaken: *t,
			Solution:         all[i].Solution,
		})
	}
	sort.SliceStable(sols, func(i, j int) bool { return sols[i].Rank < sols[j].Rank })
	return &api.TierRecord{TaskRecord: *top, AllSolutions: sols}
}

func rankPtr(ranks map[int]int, id int) *int {
	r, ok := ranks[id]
	if !ok {
		return nil
	}
	return &r
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
