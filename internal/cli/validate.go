package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/aravindh-murugesan/snapsentry-rotate/internal/config"
	"github.com/spf13/cobra"
)

// ErrInvalidConfig is returned by validate when at least one section is rejected.
var ErrInvalidConfig = errors.New("configuration has invalid sections")

var validateCommand = &cobra.Command{
	Use:     "validate DIRECTORY",
	GroupID: "rotate",
	Short:   "Check the section configuration without touching any snapshot",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := rotationOptions(args[0])
		if err != nil {
			return err
		}
		opts = opts.Resolve(time.Now)

		cfg, err := config.Load(opts.ConfigFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config file: %s\n", opts.ConfigFile)
		if cfg.Missing {
			fmt.Fprintln(out, "Config file not found, no sections configured")
			return nil
		}

		invalid := 0
		for _, res := range cfg.Sections {
			if !res.Valid() {
				invalid++
				fmt.Fprintf(out, "%s [%s]\n", invalidStyle.Render("INVALID"), res.Name)
				fmt.Fprintf(out, "  %v\n", res.Err)
				continue
			}

			s := res.Section
			fmt.Fprintf(out, "%s [%s] method=%s interval=%s offset=%dd amount=%d\n",
				validStyle.Render("OK"), s.Name, s.Method, s.Scheme, s.Offset, s.Amount)
			if len(res.UnknownKeys) > 0 {
				fmt.Fprintf(out, "  ignoring unknown options: %v\n", res.UnknownKeys)
			}
		}

		if invalid > 0 {
			return fmt.Errorf("%w: %d of %d", ErrInvalidConfig, invalid, len(cfg.Sections))
		}
		return nil
	},
}

func init() {
	validateCommand.Flags().StringP("snapshots", "s", "", "Path to the snapshot directory (default: <directory>-snapshots)")
	validateCommand.Flags().StringP("config", "c", "", "Path to the config file (default: <snapshot dir>/rotate.conf)")
	rootCommand.AddCommand(validateCommand)
}
