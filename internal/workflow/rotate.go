package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aravindh-murugesan/snapsentry-rotate/internal/catalog"
	"github.com/aravindh-murugesan/snapsentry-rotate/internal/config"
	"github.com/aravindh-murugesan/snapsentry-rotate/internal/method"
	"github.com/aravindh-murugesan/snapsentry-rotate/internal/policy"
	"github.com/google/uuid"
)

// ErrOperationsFailed is returned when at least one snapshot creation or removal failed.
var ErrOperationsFailed = errors.New("snapshot operations failed")

// RotationOptions describes one rotation run.
type RotationOptions struct {
	// SourceDir is the directory snapshots are taken of.
	SourceDir string
	// SnapshotDir holds one directory per section. Defaults to "<SourceDir>-snapshots".
	SnapshotDir string
	// ConfigFile defaults to "<SnapshotDir>/rotate.conf".
	ConfigFile string
	// Time replaces the current time when set.
	Time time.Time
	// DryRun logs every command instead of running it.
	DryRun bool
}

// Resolve fills in the default snapshot directory, config file and time.
func (o RotationOptions) Resolve(now func() time.Time) RotationOptions {
	o.SourceDir = filepath.Clean(o.SourceDir)
	if o.SnapshotDir == "" {
		o.SnapshotDir = filepath.Join(filepath.Dir(o.SourceDir), filepath.Base(o.SourceDir)+"-snapshots")
	}
	if o.ConfigFile == "" {
		o.ConfigFile = filepath.Join(o.SnapshotDir, config.DefaultFileName)
	}
	if o.Time.IsZero() {
		o.Time = now()
	}
	o.Time = policy.Naive(o.Time)
	return o
}

// Summary counts what a rotation run did.
type Summary struct {
	Sections int
	Skipped  int
	Covered  int
	Created  int
	Removed  int
	Failures int
}

// Rotator evaluates and applies the retention policy of every configured section.
type Rotator struct {
	Logger *slog.Logger
	Runner method.Runner
	// NewMethod resolves the snapshot mechanism of a section. Defaults to method.New.
	NewMethod func(policy.MethodKind, method.Runner) (method.Method, error)
	// Now defaults to time.Now.
	Now func() time.Time
}

// RunRotationWorkflow executes one rotation over all sections configured for a source directory.
//
// Responsibilities:
//  1. Resolution: Derives the snapshot directory, config file and reference time.
//  2. Configuration: Loads rotate.conf; invalid sections are reported and skipped.
//  3. Iteration: Processes sections strictly sequentially in declaration order.
//  4. Reporting: Returns ErrOperationsFailed if any create or remove failed,
//     after every section has been processed.
func RunRotationWorkflow(ctx context.Context, opts RotationOptions, logLevel string) (Summary, error) {
	logger := SetupLogger(logLevel).With("workflow", "rotate", "run_id", fmt.Sprintf("req-%s", uuid.New().String()))

	rotator := &Rotator{
		Logger: logger,
		Runner: method.NewExecRunner(logger, opts.DryRun),
	}
	return rotator.Run(ctx, opts)
}

// Run performs the rotation described by opts.
func (r *Rotator) Run(ctx context.Context, opts RotationOptions) (Summary, error) {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	opts = opts.Resolve(now)

	logger := r.Logger
	logger.Info("Initializing snapshot rotation workflow",
		"source_dir", opts.SourceDir,
		"snapshot_dir", opts.SnapshotDir,
		"config_file", opts.ConfigFile,
		"time", policy.FormatTimestamp(opts.Time),
		"dry_run", opts.DryRun)

	summary := Summary{}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		logger.Error("Configuration could not be read", "error", err)
		return summary, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Missing {
		logger.Warn("Config file not found, no sections configured", "config_file", opts.ConfigFile)
	}

	summary.Sections = len(cfg.Sections)
	logger.Info("Sections discovered", "sections", cfg.Names())

	for i, res := range cfg.Sections {
		// Fail-safe: Check for cancellation between sections.
		if ctx.Err() != nil {
			logger.Warn("Workflow execution halted due to cancellation")
			return summary, ctx.Err()
		}

		secLogger := logger.With(
			"section", res.Name,
			"progress", fmt.Sprintf("%d/%d", i+1, len(cfg.Sections)),
		)
		r.processSection(ctx, opts, res, secLogger, &summary)
	}

	logger.Info("Snapshot rotation summary",
		"sections", summary.Sections,
		"skipped", summary.Skipped,
		"covered", summary.Covered,
		"created", summary.Created,
		"removed", summary.Removed,
		"failures", summary.Failures)

	if summary.Failures > 0 {
		return summary, fmt.Errorf("%w: %d operation(s) failed", ErrOperationsFailed, summary.Failures)
	}
	return summary, nil
}

// processSection applies the retention policy to a single section.
//
// Workflow:
//  1. Validation: Skips sections whose configuration did not resolve.
//  2. Discovery: Catalogs the existing snapshots of the section directory.
//  3. Evaluation: Decides whether the current interval is already covered.
//  4. Execution: Creates the new snapshot if required.
//  5. Pruning: Removes the oldest snapshots above the section amount, even if creation failed.
func (r *Rotator) processSection(ctx context.Context, opts RotationOptions, res config.SectionResult, logger *slog.Logger, summary *Summary) {
	if len(res.UnknownKeys) > 0 {
		logger.Warn("Ignoring unknown options", "keys", res.UnknownKeys)
	}

	if !res.Valid() {
		logger.Warn("Section is configured incorrectly, skipping it", "error", res.Err)
		summary.Skipped++
		return
	}

	section := res.Section
	logger.Debug("Section configuration loaded",
		"method", section.Method,
		"interval", section.Scheme.String(),
		"offset_days", section.Offset,
		"amount", section.Amount)

	newMethod := r.NewMethod
	if newMethod == nil {
		newMethod = method.New
	}
	m, err := newMethod(section.Method, r.Runner)
	if err != nil {
		logger.Error("Snapshot method unavailable", "error", err)
		summary.Failures++
		return
	}

	sectionDir := filepath.Join(opts.SnapshotDir, section.Name)
	snapshots, err := catalog.ListDir(sectionDir, logger)
	if err != nil {
		logger.Error("Snapshot discovery failed", "error", err)
		summary.Failures++
		return
	}
	logger.Debug("Snapshot discovery completed", "snapshot_count", len(snapshots))

	decision := policy.Evaluate(opts.Time, section, snapshots)

	created := false
	if decision.Create {
		target := filepath.Join(sectionDir, decision.Target)
		logger.Info("Making a new snapshot", "target", target, "reason", decision.Reason)

		if err := m.Create(ctx, opts.SourceDir, target); err != nil {
			logger.Error("Snapshot creation failed", "target", target, "error", err)
			summary.Failures++
		} else {
			created = true
			summary.Created++
		}
	} else {
		logger.Info("Snapshot creation skipped", "reason", decision.Reason)
		summary.Covered++
	}

	expired := decision.Expired(created)
	if len(expired) > 0 {
		logger.Info("Pruning snapshots above section amount", "amount", section.Amount, "expired_count", len(expired))
	}

	for _, snap := range expired {
		if err := m.Remove(ctx, snap.Path); err != nil {
			logger.Error("Snapshot removal failed", "snapshot", snap.Path, "error", err)
			summary.Failures++
			continue
		}
		logger.Info("Snapshot removed", "snapshot", snap.Path)
		summary.Removed++
	}
}
