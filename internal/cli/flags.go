package cli

import (
	"fmt"
	"strings"

	"github.com/aravindh-murugesan/snapsentry-rotate/internal/policy"
	"github.com/aravindh-murugesan/snapsentry-rotate/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// addRotationFlags registers the options shared by every command that works on a source directory.
func addRotationFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("snapshots", "s", "", "Path to the snapshot directory (default: <directory>-snapshots)")
	cmd.Flags().StringP("config", "c", "", "Path to the config file (default: <snapshot dir>/rotate.conf)")
	cmd.Flags().BoolP("dry-run", "d", false, "Don't execute any commands, only log them")
}

// rotationOptions builds the workflow options from flags and SNAPROTATE_* variables.
func rotationOptions(directory string) (workflow.RotationOptions, error) {
	opts := workflow.RotationOptions{
		SourceDir:   directory,
		SnapshotDir: viper.GetString("snapshots"),
		ConfigFile:  viper.GetString("config"),
		DryRun:      viper.GetBool("dry-run"),
	}

	if raw := strings.TrimSpace(viper.GetString("time")); raw != "" {
		t, err := policy.ParseTimestamp(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid --time: %w", err)
		}
		opts.Time = t
	}

	return opts, nil
}

func logLevel() string {
	return viper.GetString("log-level")
}
