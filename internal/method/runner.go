package method

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// ErrCommandFailed is returned when an external command could not be started or exited non-zero.
var ErrCommandFailed = errors.New("external command failed")

// Runner executes the external commands backing a snapshot method.
type Runner interface {
	// Run executes args[0] with the remaining arguments and blocks until it exits.
	Run(ctx context.Context, args ...string) error
	// DryRun reports whether commands are only logged.
	DryRun() bool
}

// ExecRunner runs commands as child processes of the current process.
// There is no timeout: a hung command blocks the run until ctx is cancelled.
type ExecRunner struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
	dryRun bool
}

// NewExecRunner creates a runner writing child output to the process stdout/stderr.
func NewExecRunner(logger *slog.Logger, dryRun bool) *ExecRunner {
	return &ExecRunner{
		Logger: logger,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		dryRun: dryRun,
	}
}

func (r *ExecRunner) DryRun() bool {
	return r.dryRun
}

// Run logs the command, executes it (unless in dry-run mode) and logs its exit code.
func (r *ExecRunner) Run(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: empty command", ErrCommandFailed)
	}

	cmdLog := r.Logger.With("command", strings.Join(args, " "))
	cmdLog.Info("Running command")

	if r.dryRun {
		cmdLog.Info("Command skipped", "exit_code", "dry-run")
		return nil
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		cmdLog.Info("Command exited", "exit_code", 0)
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdLog.Error("Command exited", "exit_code", exitErr.ExitCode())
		return fmt.Errorf("%w: %s exited with code %d", ErrCommandFailed, args[0], exitErr.ExitCode())
	}

	cmdLog.Error("Command could not be started", "error", err)
	return fmt.Errorf("%w: %w", ErrCommandFailed, err)
}
