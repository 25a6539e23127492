package cli

import (
	"errors"
	"fmt"

	"github.com/aravindh-murugesan/snapsentry-rotate/internal/workflow"
	"github.com/spf13/cobra"
)

// ExitCodeError carries the exit code of a program run by catch.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("program exited with code %d", e.Code)
}

var catchCommand = &cobra.Command{
	Use:   "catch REPORTS_DIR [--] PROGRAM [ARGS...]",
	Short: "Run a program and file its output as a dated report",
	Long: `Runs PROGRAM with its standard output and standard error captured to
REPORTS_DIR/YYYY/MM/DD/<timestamp>.stdout and .stderr. The arguments and the
return code are written to <timestamp>.info. Exits with the program's code.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		program := args[1:]
		// Flag parsing stops at REPORTS_DIR, so a separating "--" is still present.
		if program[0] == "--" {
			program = program[1:]
		}
		if len(program) == 0 {
			return errors.New("no program given after --")
		}

		code, report, err := workflow.RunCatchWorkflow(cmd.Context(), workflow.CatchOptions{
			ReportsDir: args[0],
			Args:       program,
		})
		if err != nil {
			return err
		}

		logger := workflow.SetupLogger(logLevel())
		logger.Debug("Program report written", "info", report.Info, "exit_code", code)

		if code != 0 {
			return &ExitCodeError{Code: code}
		}
		return nil
	},
}

func init() {
	// Flags after REPORTS_DIR belong to the program.
	catchCommand.Flags().SetInterspersed(false)
	rootCommand.AddCommand(catchCommand)
}
