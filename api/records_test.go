package api

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecondsInfinityRoundTrip(t *testing.T) {
	b, err := json.Marshal(Seconds(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, `"Infinity"`, string(b))

	var s Seconds
	require.NoError(t, json.Unmarshal(b, &s))
	assert.True(t, math.IsInf(float64(s), 1))

	b, err = json.Marshal(Seconds(0.25))
	require.NoError(t, err)
	assert.Equal(t, `0.25`, string(b))
	require.NoError(t, json.Unmarshal([]byte(`0.5`), &s))
	assert.Equal(t, Seconds(0.5), s)
}

func TestSecondsAcceptsPythonSpellings(t *testing.T) {
	var s Seconds
	require.NoError(t, json.Unmarshal([]byte(`"inf"`), &s))
	assert.True(t, math.IsInf(float64(s), 1))

	require.NoError(t, json.Unmarshal([]byte(`"-Infinity"`), &s))
	assert.True(t, math.IsInf(float64(s), -1))

	require.Error(t, json.Unmarshal([]byte(`"soon"`), &s))
}

func TestAvgTime(t *testing.T) {
	var missing *ExecutionResult
	assert.True(t, math.IsInf(missing.AvgTime(), 1))

	noTimes := &ExecutionResult{}
	assert.True(t, math.IsInf(noTimes.AvgTime(), 1))

	timed := &ExecutionResult{TimeTaken: []float64{0.2, 0.4}}
	assert.InDelta(t, 0.3, timed.AvgTime(), 1e-12)

	// An explicit average wins over the raw timings.
	explicit := &ExecutionResult{TimeTaken: []float64{9, 9}, AverageTimeTaken: Sec(0.5)}
	assert.Equal(t, 0.5, explicit.AvgTime())
}

func TestCleanDropsTranscriptsAndFillsAverage(t *testing.T) {
	res := &ExecutionResult{
		CorrectTests:     []bool{true, false},
		AverageTestScore: 0.5,
		UnitTestStdouts:  []string{"1", "2"},
		UnitTestStderrs:  []string{"", "boom"},
		Traceback:        []string{"", "boom"},
		TimeTaken:        []float64{0.1, 0.3},
	}
	res.Clean()

	require.NotNil(t, res.AverageTimeTaken)
	assert.InDelta(t, 0.2, float64(*res.AverageTimeTaken), 1e-12)
	assert.Nil(t, res.CorrectTests)
	assert.Nil(t, res.UnitTestStdouts)
	assert.Nil(t, res.UnitTestStderrs)
	assert.Nil(t, res.Traceback)
	assert.Nil(t, res.TimeTaken)
	assert.Equal(t, 0.5, res.AverageTestScore)
}

func TestCloneIsDeep(t *testing.T) {
	prompt := "def f():"
	rec := &TaskRecord{
		TaskID:    "HumanEval/0",
		Prompt:    &prompt,
		BaseInput: []json.RawMessage{json.RawMessage(`[1]`)},
		BaseExecutionResult: &ExecutionResult{
			CorrectTests: []bool{true},
			TimeTaken:    []float64{0.1},
		},
	}

	c := rec.Clone()
	c.BaseExecutionResult.TimeTaken[0] = 99
	*c.Prompt = "changed"
	c.BaseInput[0] = json.RawMessage(`[2]`)

	assert.Equal(t, 0.1, rec.BaseExecutionResult.TimeTaken[0])
	assert.Equal(t, "def f():", *rec.Prompt)
	assert.Equal(t, json.RawMessage(`[1]`), rec.BaseInput[0])
}

func TestRankedCandidateNullRanks(t *testing.T) {
	rc := RankedCandidate{Solution: &TaskRecord{TaskID: "Mbpp/2"}}
	b, err := json.Marshal(rc)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &m))
	assert.JSONEq(t, `{"base_execution":null,"plus_execution":null}`, string(m["rank"]))
}
