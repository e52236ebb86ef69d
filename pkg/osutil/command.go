// Package osutil runs external tools. Every child process gets its own
// process group, inherits the caller's environment plus any overrides, and is
// terminated along with its children when the caller's context is done.
package osutil

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"mvdan.cc/sh/v3/syntax"
)

// Invocation describes one external command
type Invocation struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env holds KEY=VALUE pairs appended to the inherited environment.
	Env []string
}

// String renders the invocation as a shell-quoted command line.
func (i Invocation) String() string {
	parts := make([]string, 0, len(i.Args)+1)
	for _, s := range append([]string{i.Name}, i.Args...) {
		parts = append(parts, shellQuote(s))
	}
	return strings.Join(parts, " ")
}

// Output is the captured result of a finished command
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited 0
func (o Output) Success() bool {
	return o.ExitCode == 0
}

// Runner runs external commands
type Runner interface {
	// Run executes inv and waits for it. A non-zero exit is reported through
	// Output.ExitCode, not the error. The error is non-nil when the command
	// could not start, or when ctx ended before it finished.
	Run(ctx context.Context, inv Invocation) (Output, error)
	// LookPath reports where name resolves on PATH
	LookPath(name string) (string, error)
}

// ExecRunner is the Runner backed by os/exec
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Run implements Runner
func (ExecRunner) Run(ctx context.Context, inv Invocation) (Output, error) {
	cmd := ToolCommand(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), inv.Env...)
	SetProcessGroup(cmd)
	SetProcessGroupKill(cmd)
	cmd.WaitDelay = 2 * GracefulShutdownDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		out.ExitCode = -1
		return out, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		out.ExitCode = -1
		return out, errors.Wrapf(err, "failed to run %s", inv.Name)
	}
	return out, nil
}

// LookPath implements Runner
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func shellQuote(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return s
	}
	return quoted
}
