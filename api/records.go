package api

import "encoding/json"

// TaskRecord is one line of a task or candidate JSONL stream. The same shape
// carries both the reference stream (no execution results) and the per-run
// candidate streams (with execution results attached by the scorer).
//
// HumanEval-style records use Prompt/EntryPoint/CanonicalSolution with
// BaseInput/PlusInput; plain MBPP records use Text/Code/TestSetupCode with
// TestList/ChallengeTestList.
type TaskRecord struct {
	TaskID            string  `json:"task_id"`
	Prompt            *string `json:"prompt,omitempty"`
	Text              *string `json:"text,omitempty"`
	EntryPoint        string  `json:"entry_point,omitempty"`
	CanonicalSolution string  `json:"canonical_solution,omitempty"`

	Code          string `json:"code,omitempty"`
	TestSetupCode string `json:"test_setup_code,omitempty"`

	BaseInput []json.RawMessage `json:"base_input,omitempty"`
	PlusInput []json.RawMessage `json:"plus_input,omitempty"`

	TestList          []string `json:"test_list,omitempty"`
	ChallengeTestList []string `json:"challenge_test_list,omitempty"`

	BaseExecutionResult *ExecutionResult `json:"base_execution_result,omitempty"`
	PlusExecutionResult *ExecutionResult `json:"plus_execution_result,omitempty"`
}

// ExecutionResult holds per-test outcomes of running one program against one
// tier's test inputs.
type ExecutionResult struct {
	CorrectTests     []bool    `json:"correct_tests,omitempty"`
	AverageTestScore float64   `json:"average_test_score"`
	UnitTestStdouts  []string  `json:"unit_test_stdouts,omitempty"`
	UnitTestStderrs  []string  `json:"unit_test_stderrs,omitempty"`
	Traceback        []string  `json:"traceback,omitempty"`
	TimeTaken        []float64 `json:"time_taken,omitempty"`
	AverageTimeTaken *Seconds  `json:"average_time_taken,omitempty"`
}

// AvgTime returns the average time taken, reconstructing it from the per-test
// timings when absent. No timings at all means worst case, +Inf, so that a
// candidate with missing timing data never wins a timing tie-break.
func (r *ExecutionResult) AvgTime() float64 {
	if r == nil {
		return Inf
	}
	if r.AverageTimeTaken != nil {
		return float64(*r.AverageTimeTaken)
	}
	if len(r.TimeTaken) == 0 {
		return Inf
	}
	sum := 0.0
	for _, t := range r.TimeTaken {
		sum += t
	}
	return sum / float64(len(r.TimeTaken))
}

// Clean fills AverageTimeTaken from the raw timings and drops the per-test
// transcripts, keeping only the aggregate fields for downstream records.
func (r *ExecutionResult) Clean() {
	if r == nil {
		return
	}
	if r.AverageTimeTaken == nil {
		avg := Seconds(r.AvgTime())
		r.AverageTimeTaken = &avg
	}
	r.TimeTaken = nil
	r.UnitTestStderrs = nil
	r.UnitTestStdouts = nil
	r.CorrectTests = nil
	r.Traceback = nil
}

// Clone returns a deep copy of the execution result.
func (r *ExecutionResult) Clone() *ExecutionResult {
	if r == nil {
		return nil
	}
	c := *r
	c.CorrectTests = append([]bool(nil), r.CorrectTests...)
	c.UnitTestStdouts = append([]string(nil), r.UnitTestStdouts...)
	c.UnitTestStderrs = append([]string(nil), r.UnitTestStderrs...)
	c.Traceback = append([]string(nil), r.Traceback...)
	c.TimeTaken = append([]float64(nil), r.TimeTaken...)
	if r.AverageTimeTaken != nil {
		avg := *r.AverageTimeTaken
		c.AverageTimeTaken = &avg
	}
	return &c
}

// Clone returns a deep copy of the record.
func (t *TaskRecord) Clone() *TaskRecord {
	if t == nil {
		return nil
	}
	c := *t
	if t.Prompt != nil {
		p := *t.Prompt
		c.Prompt = &p
	}
	if t.Text != nil {
		s := *t.Text
		c.Text = &s
	}
	c.BaseInput = append([]json.RawMessage(nil), t.BaseInput...)
	c.PlusInput = append([]json.RawMessage(nil), t.PlusInput...)
	c.TestList = append([]string(nil), t.TestList...)
	c.ChallengeTestList = append([]string(nil), t.ChallengeTestList...)
	c.BaseExecutionResult = t.BaseExecutionResult.Clone()
	c.PlusExecutionResult = t.PlusExecutionResult.Clone()
	return &c
}

// ExecResult returns the execution result for the given tier name
// ("base" or "plus"), or nil when missing.
func (t *TaskRecord) ExecResult(tier string) *ExecutionResult {
	if t == nil {
		return nil
	}
	if tier == "plus" {
		return t.PlusExecutionResult
	}
	return t.BaseExecutionResult
}

// StripInputs removes the test-input sequences from the record.
func (t *TaskRecord) StripInputs() {
	t.BaseInput = nil
	t.PlusInput = nil
}

// Candidate is one member of a task's candidate pool. ID 0 is reserved for
// the reference solution; IDs 1..N map to the run files, in file order.
type Candidate struct {
	ID       int         `json:"id"`
	Solution *TaskRecord `json:"solution"`
}

// RankPair holds a candidate's per-tier rank; nil means the candidate was
// dropped from that tier's ranking.
type RankPair struct {
	BaseExecution *int `json:"base_execution"`
	PlusExecution *int `json:"plus_execution"`
}

// ScorePair holds a candidate's per-tier average test score.
type ScorePair struct {
	BaseExecution *float64 `json:"base_execution"`
	PlusExecution *float64 `json:"plus_execution"`
}

// TimePair holds a candidate's per-tier average time taken.
type TimePair struct {
	BaseExecution *Seconds `json:"base_execution"`
	PlusExecution *Seconds `json:"plus_execution"`
}

// RankedCandidate is a candidate annotated with per-tier ranks and
// aggregates, as written to the ranked output stream.
type RankedCandidate struct {
	Rank             RankPair    `json:"rank"`
	AverageTestScore ScorePair   `json:"average_test_score"`
	AverageTimeTaken TimePair    `json:"average_time_taken"`
	Solution         *TaskRecord `json:"solution"`
}

// TierCandidate is a candidate in a tier-specific output stream, carrying
// only that tier's rank and aggregates.
type TierCandidate struct {
	Rank             int         `json:"rank"`
	AverageTestScore float64     `json:"average_test_score"`
	AverageTimeTaken Seconds     `json:"average_time_taken"`
	Solution         *TaskRecord `json:"solution"`
}

// UnrankedRecord is one line of the unranked output stream: the task fields
// plus the raw surviving candidate pool.
type UnrankedRecord struct {
	TaskRecord
	AllSolutions []Candidate `json:"all_solutions"`
}

// RankedRecord is one line of the ranked output stream.
type RankedRecord struct {
	TaskRecord
	AllSolutions []RankedCandidate `json:"all_solutions"`
}

// TierRecord is one line of a tier-specific output stream, candidates sorted
// by rank.
type TierRecord struct {
	TaskRecord
	AllSolutions []TierCandidate `json:"all_solutions"`
}
