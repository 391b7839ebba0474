// Package gatherer defines the sink for run-progress events. Implementations
// stream them to the terminal, a NATS subject or an SQS queue.
package gatherer

import "time"

// Summary is the end-of-run report.
type Summary struct {
	Processed  int     `json:"processed"`
	Failed     int     `json:"failed"`
	Tossed     int     `json:"tossed"`
	ElapsedSec float64 `json:"elapsed_seconds"`
}

// RunGatherer receives progress events of one pipeline run. Implementations
// must tolerate concurrent calls from worker goroutines.
type RunGatherer interface {
	StartRun(total int)
	StartTask(index int)
	FinishTask(index int, elapsed time.Duration)
	FailTask(index int, err error)
	FinishRun(summary Summary)
}

// Discard is a no-op gatherer.
type Discard struct{}

func (Discard) StartRun(int)                  {}
func (Discard) StartTask(int)                 {}
func (Discard) FinishTask(int, time.Duration) {}
func (Discard) FailTask(int, error)           {}
func (Discard) FinishRun(Summary)             {}
