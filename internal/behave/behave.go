// Package behave loads ranking behaviour scenarios from TOML files and
// converts them into runnable cases: a candidate pool with per-tier scores
// and timings, plus the rank assignment the pool must end up with.
package behave

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/programme-lv/ranker/api"
	"github.com/programme-lv/ranker/internal/rank"
)

// SpecCandidate is one pool member in the behaviour file. Test counts drive
// the plus-tier score blend; they default to 1 each.
type SpecCandidate struct {
	ID        int      `toml:"id"`
	BaseScore float64  `toml:"base_score"`
	BaseTime  float64  `toml:"base_time"`
	PlusScore *float64 `toml:"plus_score"`
	PlusTime  *float64 `toml:"plus_time"`
	BaseTests int      `toml:"base_tests"`
	PlusTests int      `toml:"plus_tests"`
}

// SpecRank is one expected id -> rank assignment.
type SpecRank struct {
	ID   int `toml:"id"`
	Rank int `toml:"rank"`
}

// SpecExpect describes the expected outcome of ranking the pool.
type SpecExpect struct {
	Ranks      []SpecRank `toml:"ranks"`
	Eliminated []int      `toml:"eliminated"`
}

type specScenario struct {
	Description        string          `toml:"description"`
	Dim                string          `toml:"dim"`
	TimeRatioThreshold float64         `toml:"time_ratio_threshold"`
	Candidates         []SpecCandidate `toml:"candidates"`
	Expect             SpecExpect      `toml:"expect"`
}

type specRoot struct {
	Scenarios []specScenario `toml:"scenarios"`
}

// Case is a runnable scenario.
type Case struct {
	Name       string
	Dim        rank.Dim
	Config     rank.Config
	Pool       []api.Candidate
	Ranks      map[int]int
	Eliminated []int
}

// Parse reads a behaviour TOML file into runnable cases.
func Parse(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read behaviour file: %w", err)
	}
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cases := make([]Case, 0, len(root.Scenarios))
	for i, sc := range root.Scenarios {
		if len(sc.Candidates) == 0 {
			return nil, fmt.Errorf("scenario %d has no candidates", i)
		}
		dim := rank.DimBase
		if sc.Dim == string(rank.DimPlus) {
			dim = rank.DimPlus
		} else if sc.Dim != "" && sc.Dim != string(rank.DimBase) {
			return nil, fmt.Errorf("scenario %d: unknown dim %q", i, sc.Dim)
		}
		threshold := sc.TimeRatioThreshold
		if threshold == 0 {
			threshold = 1.0
		}

		c := Case{
			Name:       sc.Description,
			Dim:        dim,
			Config:     rank.Config{TimeRatioThreshold: threshold},
			Ranks:      make(map[int]int, len(sc.Expect.Ranks)),
			Eliminated: sc.Expect.Eliminated,
		}
		for _, cand := range sc.Candidates {
			c.Pool = append(c.Pool, api.Candidate{ID: cand.ID, Solution: record(cand)})
		}
		for _, r := range sc.Expect.Ranks {
			c.Ranks[r.ID] = r.Rank
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func record(c SpecCandidate) *api.TaskRecord {
	baseTests := c.BaseTests
	if baseTests == 0 {
		baseTests = 1
	}
	rec := &api.TaskRecord{
		TaskID:              fmt.Sprintf("behave/%d", c.ID),
		BaseInput:           dummyInputs(baseTests),
		BaseExecutionResult: result(c.BaseScore, c.BaseTime),
	}
	if c.PlusScore != nil {
		plusTests := c.PlusTests
		if plusTests == 0 {
			plusTests = 1
		}
		plusTime := 0.0
		if c.PlusTime != nil {
			plusTime = *c.PlusTime
		}
		rec.PlusInput = dummyInputs(plusTests)
		rec.PlusExecutionResult = result(*c.PlusScore, plusTime)
	}
	return rec
}

func result(score, avgTime float64) *api.ExecutionResult {
	t := api.Seconds(avgTime)
	return &api.ExecutionResult{AverageTestScore: score, AverageTimeTaken: &t}
}

func dummyInputs(n int) []json.RawMessage {
	inputs := make([]json.RawMessage, n)
	for i := range inputs {
		inputs[i] = json.RawMessage("[]")
	}
	return inputs
}
