package cli

import (
	"fmt"
	"time"

	"github.com/aravindh-murugesan/snapsentry-rotate/internal/workflow"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var daemonCommand = &cobra.Command{
	Use:     "daemon DIRECTORY",
	Short:   "Run the rotation on a cron schedule",
	GroupID: "rotate",
	Long:    `Starts SnapSentry Rotate as a long running process that performs the rotation workflow on a cron schedule until it receives SIGINT or SIGTERM. Runs never overlap.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		banner := fmt.Sprintf("Snapsentry Rotate - Daemon Mode \n\nVersion: %s\nBuild Date: %s", RotateVersion, RotateDate)
		fmt.Println(headerStyle.Render(banner))

		opts, err := rotationOptions(args[0])
		if err != nil {
			return err
		}
		// Every run uses the clock at the time it fires.
		opts.Time = time.Time{}

		schedule := viper.GetString("schedule")
		ctx := cmd.Context()
		dlog := workflow.SetupLogger(logLevel()).With("component", "daemon")

		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}

		// Declared first so it can be used inside the task closure.
		var rotateJob gocron.Job

		jobOptions := []gocron.JobOption{
			gocron.WithName("Snapshot Rotation Workflow"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		}
		if viper.GetBool("run-on-start") {
			jobOptions = append(jobOptions, gocron.WithStartAt(gocron.WithStartImmediately()))
		}

		rotateJob, err = s.NewJob(
			gocron.CronJob(schedule, false),
			gocron.NewTask(func() {
				summary, err := workflow.RunRotationWorkflow(ctx, opts, logLevel())
				if err != nil {
					dlog.Error("Rotation workflow reported failures", "error", err, "failures", summary.Failures)
				}

				if rotateJob != nil {
					if nextRun, err := rotateJob.NextRun(); err == nil {
						dlog.Info("Rotation workflow completed",
							"next_run", nextRun.Format(time.RFC3339),
							"job_id", rotateJob.ID())
					}
				}
			}),
			jobOptions...,
		)
		if err != nil {
			return fmt.Errorf("failed to schedule rotation: %w", err)
		}

		s.Start()
		dlog.Info("Scheduler started", "source_dir", opts.SourceDir)

		if nextRun, err := rotateJob.NextRun(); err == nil {
			dlog.Info("Job Scheduled",
				"job_name", rotateJob.Name(),
				"job_id", rotateJob.ID(),
				"schedule", schedule,
				"next_run", nextRun.Format(time.RFC3339))
		}

		// Block until the root context is cancelled by a signal.
		<-ctx.Done()

		dlog.Warn("Shutting down scheduler due to system signal...")
		return s.Shutdown()
	},
}

func init() {
	addRotationFlags(daemonCommand)
	daemonCommand.Flags().String("schedule", "0 * * * *", "Cron schedule for the rotation workflow")
	daemonCommand.Flags().Bool("run-on-start", false, "Run the rotation immediately when the daemon starts")
	rootCommand.AddCommand(daemonCommand)
}
