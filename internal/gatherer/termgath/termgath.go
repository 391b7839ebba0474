// Package termgath prints run progress to the terminal.
package termgath

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fatih/color"

	"github.com/programme-lv/ranker/internal/gatherer"
)

// Every how many finished tasks a progress line is printed.
const progressEvery = 25

type TerminalGatherer struct {
	startedAt time.Time
	total     int64
	done      int64
}

func New() *TerminalGatherer {
	return &TerminalGatherer{startedAt: time.Now()}
}

func (t *TerminalGatherer) StartRun(total int) {
	atomic.StoreInt64(&t.total, int64(total))
	color.Cyan("== Run started: %d tasks ==", total)
}

func (t *TerminalGatherer) StartTask(index int) {
	if index%progressEvery == 0 {
		fmt.Printf("Processing line %d...\n", index)
	}
}

func (t *TerminalGatherer) FinishTask(index int, elapsed time.Duration) {
	done := atomic.AddInt64(&t.done, 1)
	if done%progressEvery == 0 {
		fmt.Printf("Finished %d/%d tasks (last: line %d in %s)\n",
			done, atomic.LoadInt64(&t.total), index, elapsed.Round(time.Millisecond))
	}
}

func (t *TerminalGatherer) FailTask(index int, err error) {
	color.Red("!! Task at line %d failed: %v", index, err)
}

func (t *TerminalGatherer) FinishRun(s gatherer.Summary) {
	dur := time.Since(t.startedAt).Round(time.Millisecond)
	color.Cyan("== Run finished in %s ==", dur)
	fmt.Printf("processed=%d failed=%d tossed=%d\n", s.Processed, s.Failed, s.Tossed)
	if s.Failed > 0 {
		color.Yellow("%d tasks were excluded from the output", s.Failed)
	}
}
