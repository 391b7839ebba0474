// Package sqsgath streams run-progress events to an AWS SQS queue.
package sqsgath

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"

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

type StartedTask struct {
	Header
	Index int `json:"index"`
}

type FinishedTask struct {
	Header
	Index      int     `json:"index"`
	ElapsedSec float64 `json:"elapsed_seconds"`
}

type FailedTask struct {
	Header
	Index int    `json:"index"`
	Error string `json:"error"`
}

type FinishedRun struct {
	Header
	Summary gatherer.Summary `json:"summary"`
}

type sqsResQueueGatherer struct {
	sqsClient *sqs.Client
	queueUrl  string
	runUuid   string
}

// New loads the default AWS config for the region and returns a gatherer
// publishing to the queue. Each gatherer carries a fresh run UUID.
func New(ctx context.Context, region string, queueUrl string) (gatherer.RunGatherer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &sqsResQueueGatherer{
		sqsClient: sqs.NewFromConfig(cfg),
		queueUrl:  queueUrl,
		runUuid:   uuid.NewString(),
	}, nil
}

func (s *sqsResQueueGatherer) header(msgType string) Header {
	return Header{RunUuid: s.runUuid, MsgType: msgType}
}

func (s *sqsResQueueGatherer) StartRun(total int) {
	s.send(StartedRun{Header: s.header(MsgTypeStartedRun), Total: total})
}

func (s *sqsResQueueGatherer) StartTask(index int) {
	s.send(StartedTask{Header: s.header(MsgTypeStartedTask), Index: index})
}

func (s *sqsResQueueGatherer) FinishTask(index int, elapsed time.Duration) {
	s.send(FinishedTask{
		Header:     s.header(MsgTypeFinishedTask),
		Index:      index,
		ElapsedSec: elapsed.Seconds(),
	})
}

func (s *sqsResQueueGatherer) FailTask(index int, err error) {
	s.send(FailedTask{Header: s.header(MsgTypeFailedTask), Index: index, Error: err.Error()})
}

func (s *sqsResQueueGatherer) FinishRun(summary gatherer.Summary) {
	s.send(FinishedRun{Header: s.header(MsgTypeFinishedRun), Summary: summary})
}

func (s *sqsResQueueGatherer) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal progress message", "error", err)
		return
	}
	_, err = s.sqsClient.SendMessage(context.TODO(), &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueUrl),
		MessageBody: aws.String(string(b)),
	})
	if err != nil {
		slog.Error("failed to send progress message", "error", err)
	}
}
