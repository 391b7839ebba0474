package dedup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programme-lv/ranker/api"
)

func tierSol(rank int, score float64, sol *api.TaskRecord) api.TierCandidate {
	return api.TierCandidate{
		Rank:             rank,
		AverageTestScore: score,
		AverageTimeTaken: 0.1,
		Solution:         sol,
	}
}

func heSolution(prompt string) *api.TaskRecord {
	return &api.TaskRecord{
		TaskID:            "HumanEval/0",
		Prompt:            &prompt,
		CanonicalSolution: "    return 1\n",
		BaseInput:         []json.RawMessage{json.RawMessage(`[1]`)},
		PlusInput:         []json.RawMessage{json.RawMessage(`[2]`)},
	}
}

func TestFilterRecordPromotesInputsAndFoldsPrompt(t *testing.T) {
	rec := &api.TierRecord{
		TaskRecord: api.TaskRecord{TaskID: "HumanEval/0"},
		AllSolutions: []api.TierCandidate{
			tierSol(1, 1.0, heSolution("def f():\n")),
			tierSol(2, 0.5, heSolution("def f():\n")),
		},
	}

	require.NoError(t, FilterRecord(rec, "prompt", DefaultConfig()))

	// Inputs moved up to the record; candidates no longer carry them.
	assert.NotNil(t, rec.BaseInput)
	assert.NotNil(t, rec.PlusInput)
	for _, s := range rec.AllSolutions {
		assert.Nil(t, s.Solution.BaseInput)
		assert.Nil(t, s.Solution.PlusInput)
	}

	require.Equal(t, 1, rec.AllSolutions[0].Rank)
	assert.Equal(t, "def f():\n    return 1\n", rec.AllSolutions[0].Solution.CanonicalSolution)
	// Only the rank-1 candidate gets the prompt folded in.
	assert.Equal(t, "    return 1\n", rec.AllSolutions[1].Solution.CanonicalSolution)
}

func TestFilterRecordMBPPDropsTestLists(t *testing.T) {
	text := "Write a function."
	sol := func(rank int, score float64) api.TierCandidate {
		return tierSol(rank, score, &api.TaskRecord{
			TaskID:            "Mbpp/1",
			Text:              &text,
			CanonicalSolution: "def f():\n    return 1\n",
			TestList:          []string{"assert f() == 1"},
			ChallengeTestList: []string{"assert f() == 1"},
		})
	}
	rec := &api.TierRecord{
		TaskRecord:   api.TaskRecord{TaskID: "Mbpp/1"},
		AllSolutions: []api.TierCandidate{sol(1, 1.0), sol(2, 0.5)},
	}

	require.NoError(t, FilterRecord(rec, "text", DefaultConfig()))

	assert.Nil(t, rec.BaseInput)
	for _, s := range rec.AllSolutions {
		assert.Nil(t, s.Solution.TestList)
		assert.Nil(t, s.Solution.ChallengeTestList)
	}
	assert.Equal(t, text+"def f():\n    return 1\n", rec.AllSolutions[0].Solution.CanonicalSolution)
}

func TestFilterRecordPropagatesMultipleRankOne(t *testing.T) {
	rec := &api.TierRecord{
		AllSolutions: []api.TierCandidate{
			tierSol(1, 1.0, heSolution("p")),
			tierSol(1, 0.5, heSolution("p")),
		},
	}
	assert.ErrorIs(t, FilterRecord(rec, "prompt", DefaultConfig()), ErrMultipleRankOne)
}

func TestFilterRecordEmptyPoolIsNoop(t *testing.T) {
	rec := &api.TierRecord{TaskRecord: api.TaskRecord{TaskID: "Mbpp/2"}}
	require.NoError(t, FilterRecord(rec, "text", DefaultConfig()))
	assert.Empty(t, rec.AllSolutions)
}
