package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/aravindh-murugesan/snapsentry-rotate/internal/policy"
)

// ListDir catalogs the snapshots stored in dir on the local filesystem.
func ListDir(dir string, logger *slog.Logger) ([]policy.Snapshot, error) {
	return List(os.DirFS(dir), dir, logger)
}

// List returns the snapshots found at the root of fsys, sorted by ascending timestamp.
//
// Behavior:
//   - A missing root yields an empty catalog; a section without snapshots is a normal state.
//   - Entries that are not directories or whose names are not timestamps are skipped and logged.
//   - Entries with identical timestamps keep their enumeration order.
//
// root is only used to build the snapshot paths.
func List(fsys fs.FS, root string, logger *slog.Logger) ([]policy.Snapshot, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("Section directory does not exist yet", "path", root)
			return nil, nil
		}
		return nil, fmt.Errorf("listing snapshots in %s: %w", root, err)
	}

	snapshots := make([]policy.Snapshot, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())

		isDir, err := resolveIsDir(fsys, entry)
		if err != nil {
			logger.Warn("Cannot stat entry, skipping it", "path", path, "error", err)
			continue
		}
		if !isDir {
			logger.Info("Entry is not a directory, skipping it", "path", path)
			continue
		}

		when, err := policy.ParseTimestamp(entry.Name())
		if err != nil {
			logger.Info("Entry name cannot be interpreted as a timestamp, skipping it", "path", path)
			continue
		}

		snapshots = append(snapshots, policy.Snapshot{Path: path, When: when})
	}

	slices.SortStableFunc(snapshots, func(a, b policy.Snapshot) int {
		return a.When.Compare(b.When)
	})

	return snapshots, nil
}

// resolveIsDir follows symlinks so that a link to a snapshot directory still counts.
func resolveIsDir(fsys fs.FS, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir(), nil
	}
	info, err := fs.Stat(fsys, entry.Name())
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
