// Package process spawns the package-manager and version-control binaries
// and waits for them to finish.
package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Command describes a single subprocess invocation.
type Command struct {
	Name string
	Args []string
	// Env is appended to the parent environment.
	Env []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes subprocesses. Output captures stdout, Run streams it.
type Runner interface {
	Output(ctx context.Context, cmd Command) ([]byte, error)
	Run(ctx context.Context, cmd Command) error
}

// Exec runs real binaries. Nil writers default to the parent's stdout and
// stderr.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (e *Exec) Output(ctx context.Context, cmd Command) ([]byte, error) {
	slog.Debug("exec", "cmd", cmd.String())

	var stdout, stderr bytes.Buffer
	c := e.command(ctx, cmd)
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		// Surface what the tool printed, it usually explains the failure.
		e.stdout().Write(stdout.Bytes())
		e.stderr().Write(stderr.Bytes())
		return nil, fmt.Errorf("run %s: %w", cmd.Name, err)
	}
	return stdout.Bytes(), nil
}

func (e *Exec) Run(ctx context.Context, cmd Command) error {
	slog.Debug("exec", "cmd", cmd.String())

	c := e.command(ctx, cmd)
	c.Stdout = e.stdout()
	c.Stderr = e.stderr()
	if err := c.Run(); err != nil {
		return fmt.Errorf("run %s: %w", cmd.Name, err)
	}
	return nil
}

func (e *Exec) command(ctx context.Context, cmd Command) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	return c
}

func (e *Exec) stdout() io.Writer {
	if e == nil || e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

func (e *Exec) stderr() io.Writer {
	if e == nil || e.Stderr == nil {
		return os.Stderr
	}
	return e.Stderr
}
