package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCommand = &cobra.Command{
	Use:           "snapsentry-rotate",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Flags win over SNAPROTATE_* environment variables.
		return viper.BindPFlags(cmd.Flags())
	},
	Short: "SnapSentry Rotate: time-bucketed snapshot rotation",
	Long: `SnapSentry Rotate creates and rotates snapshots of a source directory in regular intervals.

It supports plain and hardlinked copies as well as read-only btrfs snapshots, and
daily, weekly, monthly, biyearly, yearly and arbitrary day-based intervals that
can be shifted by a fixed number of days.

Expected directory layout:

  <directory>/                 the source directory
  <directory>-snapshots/       the snapshot directory
    +- rotate.conf             the config file
    +- <section-1>/            a section
    +- <section-2>/            another section

Each section of rotate.conf (except DEFAULT, which provides fallback values)
describes a directory of snapshots with these options:

  method    copy | hardlink | btrfs                              (default: copy)
  interval  daily | weekly | monthly | biyearly | yearly | <n>d  (default: daily)
  amount    maximum number of snapshots kept                     (default: 7)
  offset    <n>d added to the date before interval calculations (default: 0d)`,
}

// Execute runs the command tree. Cancelling ctx stops running external commands.
func Execute(ctx context.Context) error {
	return rootCommand.ExecuteContext(ctx)
}

func init() {
	rootCommand.AddGroup(&cobra.Group{ID: "rotate", Title: "Snapshot Rotation"})

	rootCommand.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")

	viper.SetEnvPrefix("SNAPROTATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
