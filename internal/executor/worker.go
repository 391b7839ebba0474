// Package executor runs candidate programs against their test inputs in
// sandboxed Python subprocesses and attaches the per-tier results.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/programme-lv/ranker/api"
	"github.com/programme-lv/ranker/internal/sandbox"
)

// timeoutStderr marks a test that exceeded its budget. The degeneracy filter
// treats it as a real error line, so a candidate timing out on every test is
// tossed.
const timeoutStderr = "TimeoutException('Timed out!')"

// Worker executes one tier of tests at a time. Safe for concurrent use.
type Worker struct {
	// PythonBin is the interpreter to invoke.
	PythonBin string
	// Timeout is the default per-test wall-clock budget in seconds.
	Timeout float64
}

// RunTier runs the program once per test statement, each in a fresh sandbox
// with its own interpreter process. A test passes when the process exits
// zero within budget and writes nothing to stderr. budgets optionally
// overrides the per-test budget; missing entries fall back to the default.
// Failures are recorded in the result, never returned: only sandbox setup
// itself can error.
func (w *Worker) RunTier(ctx context.Context, program string, tests []string, budgets []float64) (*api.ExecutionResult, error) {
	res := &api.ExecutionResult{
		CorrectTests:    make([]bool, 0, len(tests)),
		UnitTestStdouts: make([]string, 0, len(tests)),
		UnitTestStderrs: make([]string, 0, len(tests)),
		Traceback:       make([]string, 0, len(tests)),
		TimeTaken:       make([]float64, 0, len(tests)),
	}

	for i, test := range tests {
		budget := w.Timeout
		if i < len(budgets) {
			budget = budgets[i]
		}
		m, err := w.runOne(ctx, program+test, budget)
		if err != nil {
			return nil, fmt.Errorf("test %d: %w", i, err)
		}

		if m.TimedOut {
			res.CorrectTests = append(res.CorrectTests, false)
			res.UnitTestStdouts = append(res.UnitTestStdouts, m.Stdout)
			res.UnitTestStderrs = append(res.UnitTestStderrs, timeoutStderr)
			res.Traceback = append(res.Traceback, timeoutStderr)
			res.TimeTaken = append(res.TimeTaken, budget)
			continue
		}

		passed := m.ExitCode == 0 && m.Stderr == ""
		res.CorrectTests = append(res.CorrectTests, passed)
		res.UnitTestStdouts = append(res.UnitTestStdouts, m.Stdout)
		res.UnitTestStderrs = append(res.UnitTestStderrs, m.Stderr)
		res.Traceback = append(res.Traceback, strings.TrimRight(m.Stderr, "\n"))
		res.TimeTaken = append(res.TimeTaken, m.WallTime.Seconds())
	}

	if n := len(res.CorrectTests); n > 0 {
		passed := 0
		for _, ok := range res.CorrectTests {
			if ok {
				passed++
			}
		}
		res.AverageTestScore = float64(passed) / float64(n)
	}
	return res, nil
}

// runOne executes a single assembled program in a throwaway sandbox.
func (w *Worker) runOne(ctx context.Context, code string, budget float64) (*sandbox.Metrics, error) {
	box, err := sandbox.NewBox()
	if err != nil {
		return nil, err
	}
	defer box.Close()

	if err := box.AddFile("program.py", []byte(code)); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(budget*float64(time.Second)))
	defer cancel()

	// Digit-safety: lift the interpreter's int-to-str conversion limit so
	// huge-integer answers print instead of raising ValueError.
	proc, err := box.Run(runCtx, []string{w.PythonBin, "-X", "int_max_str_digits=0", "program.py"}, nil)
	if err != nil {
		return nil, err
	}
	return proc.Wait()
}
