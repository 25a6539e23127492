package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	RotateVersion, RotateCommit, RotateDate string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Display version, commit hash, build date, and other build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("SnapSentry Rotate version: %s\n", RotateVersion)
		fmt.Printf("Commit: %s\n", RotateCommit)
		fmt.Printf("Built: %s\n", RotateDate)
	},
}

func init() {
	rootCommand.AddCommand(versionCommand)
}
