package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// Report files are named after the time the program was started.
// Microseconds are omitted when they are zero.
const (
	reportNameLayout      = "2006-01-02T15:04:05"
	reportNameMicroLayout = "2006-01-02T15:04:05.000000"
)

// CatchOptions describes a program run whose output is filed as a report.
type CatchOptions struct {
	// ReportsDir receives reports under YYYY/MM/DD.
	ReportsDir string
	// Args is the program and its arguments.
	Args []string
	// Time defaults to the current time.
	Time time.Time
}

// Report lists the files written for a caught program run.
type Report struct {
	Info   string
	Stdout string
	Stderr string
}

// ReportPaths returns the report files for a run started at now.
func ReportPaths(reportsDir string, now time.Time) Report {
	dir := filepath.Join(reportsDir,
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		fmt.Sprintf("%02d", now.Day()))
	layout := reportNameMicroLayout
	if now.Nanosecond()/int(time.Microsecond) == 0 {
		layout = reportNameLayout
	}
	base := filepath.Join(dir, now.Format(layout))

	return Report{
		Info:   base + ".info",
		Stdout: base + ".stdout",
		Stderr: base + ".stderr",
	}
}

// RunCatchWorkflow runs a program with its stdout and stderr captured into dated report
// files, and records its arguments and return code in an .info file.
// It returns the program's exit code.
func RunCatchWorkflow(ctx context.Context, opts CatchOptions) (int, Report, error) {
	if len(opts.Args) == 0 {
		return 1, Report{}, errors.New("no program given")
	}
	now := opts.Time
	if now.IsZero() {
		now = time.Now()
	}

	report := ReportPaths(opts.ReportsDir, now)
	if err := os.MkdirAll(filepath.Dir(report.Info), 0o755); err != nil {
		return 1, report, fmt.Errorf("creating report directory: %w", err)
	}

	if err := appendLine(report.Info, fmt.Sprintf("Arguments: %s", quoteArgs(opts.Args))); err != nil {
		return 1, report, err
	}

	exitCode, runErr := runCaptured(ctx, opts.Args, report)

	if err := appendLine(report.Info, fmt.Sprintf("Return code: %d", exitCode)); err != nil {
		return exitCode, report, err
	}
	return exitCode, report, runErr
}

func runCaptured(ctx context.Context, args []string, report Report) (int, error) {
	stdout, err := openAppend(report.Stdout)
	if err != nil {
		return 1, err
	}
	defer stdout.Close()

	stderr, err := openAppend(report.Stderr)
	if err != nil {
		return 1, err
	}
	defer stderr.Close()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("starting %s: %w", args[0], err)
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening report file: %w", err)
	}
	return f, nil
}

func appendLine(path, line string) error {
	f, err := openAppend(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = strconv.Quote(a)
	}
	return fmt.Sprint(quoted)
}
