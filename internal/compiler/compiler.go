// Package compiler assembles and runs the external swiftc invocation.
package compiler

import (
	"fmt"
	"os"
	"os/exec"
)

// Commander interface for testing
type Commander interface {
	Run() error
}

// ExitError reports a compiler process that exited nonzero. The build
// step must terminate with the same status: downstream stages cannot
// tell a failed compilation apart from a truncated one.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("compiler exited with status %d", e.Code)
}

// Runner executes the compiler process
type Runner struct {
	execCommand func(name string, args ...string) Commander
}

// NewRunner creates a runner backed by os/exec
func NewRunner() *Runner {
	return &Runner{
		execCommand: func(name string, args ...string) Commander {
			return exec.Command(name, args...)
		},
	}
}

// Run invokes the compiler with its output attached to this process's
// streams and waits for completion. A nonzero exit is returned as an
// *ExitError carrying the compiler's status.
func (r *Runner) Run(compilerPath string, args []string) error {
	c := r.execCommand(compilerPath, args...)
	if cmd, ok := c.(*exec.Cmd); ok {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	err := c.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &ExitError{Code: exitErr.ExitCode()}
		}

		return fmt.Errorf("failed to run compiler %s: %w", compilerPath, err)
	}

	return nil
}
