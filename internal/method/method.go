package method

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aravindh-murugesan/snapsentry-rotate/internal/policy"
)

var (
	// ErrTargetExists is returned by Create when the snapshot target is already present.
	// Nothing is modified on disk in that case.
	ErrTargetExists = errors.New("directory or file already exists")

	// ErrPrepareTarget is returned by Create when the parent of the target cannot be created.
	ErrPrepareTarget = errors.New("could not create parent directory")
)

// Method defines the contract that every snapshot mechanism (copy, hardlink, btrfs) implements.
// The retention logic only observes whether an operation succeeded.
type Method interface {
	// Create makes a snapshot of source at target.
	// It fails with ErrTargetExists if target already exists.
	Create(ctx context.Context, source, target string) error

	// Remove deletes the snapshot at target.
	Remove(ctx context.Context, target string) error

	// Kind returns the config identifier of the method.
	Kind() policy.MethodKind
}

// New returns the method implementation for kind. This is the only place
// that branches on the method kind.
func New(kind policy.MethodKind, runner Runner) (Method, error) {
	switch kind {
	case policy.MethodCopy:
		return &commandMethod{
			kind:   kind,
			runner: runner,
			create: func(source, target string) []string { return []string{"cp", "-ar", source, target} },
			remove: func(target string) []string { return []string{"rm", "-rf", target} },
		}, nil
	case policy.MethodHardlink:
		return &commandMethod{
			kind:   kind,
			runner: runner,
			create: func(source, target string) []string { return []string{"cp", "-arl", source, target} },
			remove: func(target string) []string { return []string{"rm", "-rf", target} },
		}, nil
	case policy.MethodBtrfs:
		return &commandMethod{
			kind:   kind,
			runner: runner,
			create: func(source, target string) []string {
				return []string{"btrfs", "subvolume", "snapshot", "-r", source, target}
			},
			remove: func(target string) []string { return []string{"btrfs", "subvolume", "delete", target} },
		}, nil
	default:
		return nil, fmt.Errorf("unknown snapshot method '%s'", kind)
	}
}

// commandMethod implements Method by shelling out to external tools.
type commandMethod struct {
	kind   policy.MethodKind
	runner Runner
	create func(source, target string) []string
	remove func(target string) []string
}

func (m *commandMethod) Kind() policy.MethodKind {
	return m.kind
}

func (m *commandMethod) Create(ctx context.Context, source, target string) error {
	if err := prepareTarget(target, m.runner.DryRun()); err != nil {
		return err
	}
	if err := m.runner.Run(ctx, m.create(source, target)...); err != nil {
		return fmt.Errorf("could not create snapshot at %s: %w", target, err)
	}
	return nil
}

func (m *commandMethod) Remove(ctx context.Context, target string) error {
	if err := m.runner.Run(ctx, m.remove(target)...); err != nil {
		return fmt.Errorf("could not remove snapshot at %s: %w", target, err)
	}
	return nil
}

// prepareTarget refuses existing targets and creates the target's parent directory.
// The existence check also runs in dry-run mode; directory creation does not.
func prepareTarget(target string, dryRun bool) error {
	if _, err := os.Lstat(target); err == nil {
		return fmt.Errorf("could not create snapshot at %s: %w", target, ErrTargetExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not create snapshot at %s: %w: %w", target, ErrPrepareTarget, err)
	}

	if dryRun {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("could not create snapshot at %s: %w: %w", target, ErrPrepareTarget, err)
	}
	return nil
}
