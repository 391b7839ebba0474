// Package natsgath streams run-progress events to a NATS subject.
package natsgath

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/programme-lv/ranker/internal/gatherer"
)

const (
	MsgTypeStartedRun   = "started_run"
	MsgTypeStartedTask  = "started_task"
	MsgTypeFinishedTask = "finished_task"
	MsgTypeFailedTask   = "failed_task"
	MsgTypeFinishedRun  = "finished_run"
)

type Header struct {
	RunUuid string `json:"run_uuid"`
	MsgType string `json:"msg_type"`
}

type StartedRun struct {
	Header
	Total int `json:"total"`
}

type TaskEvent struct {
	Header
	Index      int     `json:"index"`
	ElapsedSec float64 `json:"elapsed_seconds,omitempty"`
	Error      *string `json:"error,omitempty"`
}

type FinishedRun struct {
	Header
	Summary gatherer.Summary `json:"summary"`
}

type natsGatherer struct {
	nc      *nats.Conn
	subject string
	runUuid string
}

// New connects to the NATS server and returns a gatherer publishing to the
// given subject. Each gatherer carries a fresh run UUID.
func New(url string, subject string) (gatherer.RunGatherer, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &natsGatherer{
		nc:      nc,
		subject: subject,
		runUuid: uuid.NewString(),
	}, nil
}

func (g *natsGatherer) header(msgType string) Header {
	return Header{RunUuid: g.runUuid, MsgType: msgType}
}

func (g *natsGatherer) StartRun(total int) {
	g.send(StartedRun{Header: g.header(MsgTypeStartedRun), Total: total})
}

func (g *natsGatherer) StartTask(index int) {
	g.send(TaskEvent{Header: g.header(MsgTypeStartedTask), Index: index})
}

func (g *natsGatherer) FinishTask(index int, elapsed time.Duration) {
	g.send(TaskEvent{
		Header:     g.header(MsgTypeFinishedTask),
		Index:      index,
		ElapsedSec: elapsed.Seconds(),
	})
}

func (g *natsGatherer) FailTask(index int, err error) {
	msg := err.Error()
	g.send(TaskEvent{Header: g.header(MsgTypeFailedTask), Index: index, Error: &msg})
}

func (g *natsGatherer) FinishRun(s gatherer.Summary) {
	g.send(FinishedRun{Header: g.header(MsgTypeFinishedRun), Summary: s})
	g.nc.Flush()
}

func (g *natsGatherer) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal progress message", "error", err)
		return
	}
	if err := g.nc.Publish(g.subject, b); err != nil {
		slog.Error("failed to publish progress message", "error", err)
	}
}
