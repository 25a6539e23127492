package cli

import (
	"fmt"

	"github.com/aravindh-murugesan/snapsentry-rotate/internal/workflow"
	"github.com/spf13/cobra"
)

var rotateCommand = &cobra.Command{
	Use:     "rotate DIRECTORY",
	GroupID: "rotate",
	Short:   "Create and prune snapshots once",
	Long:    `Evaluates every configured section once: creates a snapshot if the current interval is not yet covered, then removes the oldest snapshots above the section's amount. Exits non-zero if any snapshot operation failed.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Snapsentry Rotate - Rotation Workflow"))

		opts, err := rotationOptions(args[0])
		if err != nil {
			return err
		}

		_, err = workflow.RunRotationWorkflow(cmd.Context(), opts, logLevel())
		return err
	},
}

func init() {
	addRotationFlags(rotateCommand)
	rotateCommand.Flags().StringP("time", "t", "", "Use this time (YYYY-MM-DD[ HH:MM]) instead of the current time")
	rootCommand.AddCommand(rotateCommand)
}
