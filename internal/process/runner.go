// Package process runs external version-control binaries and reports their
// outcome without treating a non-zero exit as an error.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pmtools/vcsbridge/internal/failure"
	"go.uber.org/zap"
)

// Command describes one process invocation.
type Command struct {
	Dir  string
	Name string
	Args []string
	Env  []string // appended to the current environment

	Stdin string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the captured outcome of a process that ran to completion.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports a zero exit status.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes commands.
//
// Run blocks until the process exits. The returned error is reserved for
// processes that could not be started at all; a non-zero exit is reported
// through Result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	// Start spawns the process and returns without waiting for it.
	Start(cmd Command) error
}

// Exec is the os/exec backed Runner.
type Exec struct {
	logger *zap.Logger
}

// NewExec creates an os/exec backed runner.
func NewExec(logger *zap.Logger) *Exec {
	return &Exec{logger: logger}
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, c Command) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		e.logger.Debug("process failed to start", zap.String("command", c.String()), zap.Error(err))
		return res, launchError(c, err)
	}

	e.logger.Debug("process finished",
		zap.String("command", c.String()),
		zap.String("dir", c.Dir),
		zap.Int("exit_code", res.ExitCode))

	return res, nil
}

// Start implements Runner.
func (e *Exec) Start(c Command) error {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	if err := cmd.Start(); err != nil {
		return launchError(c, err)
	}

	e.logger.Debug("process detached", zap.String("command", c.String()), zap.Int("pid", cmd.Process.Pid))

	// Reap the child in the background so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()

	return nil
}

func launchError(c Command, err error) *failure.Error {
	category := failure.CategoryProcessLaunch
	if errors.Is(err, exec.ErrNotFound) {
		category = failure.CategoryEnvironment
	}
	return &failure.Error{
		Category: category,
		Op:       c.Name,
		Message:  fmt.Sprintf("failed to run %s", c.Name),
		Detail:   err.Error(),
		Err:      err,
	}
}

// Lines splits output into non-empty lines with trailing whitespace removed.
func Lines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r\t ")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

var _ Runner = (*Exec)(nil)
