package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Process is one running command inside a box.
type Process struct {
	cmd     *exec.Cmd
	ctx     context.Context
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	started time.Time
}

// Metrics is what a finished process leaves behind.
type Metrics struct {
	ExitCode int
	WallTime time.Duration
	TimedOut bool
	Stdout   string
	Stderr   string
}

func (p *Process) start() error {
	p.started = time.Now()
	return p.cmd.Start()
}

// Wait blocks until the process exits or its context expires and returns the
// collected metrics. A non-zero exit is reported through Metrics, not as an
// error; only infrastructure failures return one.
func (p *Process) Wait() (*Metrics, error) {
	err := p.cmd.Wait()
	wall := time.Since(p.started)

	m := &Metrics{
		WallTime: wall,
		Stdout:   p.stdout.String(),
		Stderr:   p.stderr.String(),
	}

	if p.ctx.Err() == context.DeadlineExceeded {
		m.TimedOut = true
		m.ExitCode = -1
		return m, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		m.ExitCode = exitErr.ExitCode()
		return m, nil
	}

	m.ExitCode = 0
	return m, nil
}
