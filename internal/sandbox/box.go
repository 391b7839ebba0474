// Package sandbox runs untrusted programs inside disposable working
// directories. Each Box owns exactly one directory; Close removes it.
// Cleanup is defer-driven on the caller side, no process-global state is
// touched.
package sandbox

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

type Box struct {
	dir string
}

// NewBox creates a fresh disposable working directory.
func NewBox() (*Box, error) {
	dir, err := os.MkdirTemp("", "ranker-box-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox directory: %w", err)
	}
	return &Box{dir: dir}, nil
}

func (b *Box) Path() string {
	return b.dir
}

// AddFile writes a file into the box.
func (b *Box) AddFile(name string, content []byte) error {
	path := filepath.Join(b.dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s into box: %w", name, err)
	}
	return nil
}

// HasFile reports whether the box contains the named file.
func (b *Box) HasFile(name string) bool {
	_, err := os.Stat(filepath.Join(b.dir, name))
	return err == nil
}

// GetFile reads a file out of the box.
func (b *Box) GetFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(b.dir, name))
}

// Run starts argv inside the box with the box directory as working
// directory. The context bounds the wall-clock time of the process; on
// expiry the process is killed and the returned metrics carry TimedOut.
func (b *Box) Run(ctx context.Context, argv []string, stdin io.Reader) (*Process, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = b.dir
	cmd.Stdin = stdin
	cmd.Env = []string{"HOME=" + b.dir, "PATH=" + os.Getenv("PATH")}

	p := &Process{cmd: cmd, ctx: ctx}
	cmd.Stdout = &p.stdout
	cmd.Stderr = &p.stderr

	if err := p.start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	return p, nil
}

// Close removes the box directory and everything the program left in it.
func (b *Box) Close() error {
	return os.RemoveAll(b.dir)
}
