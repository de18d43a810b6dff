package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"library-circulation/internal/config"
	"library-circulation/internal/jobs"
	"library-circulation/internal/logger"
	"library-circulation/internal/scheduler"
	"library-circulation/internal/security"
	"library-circulation/internal/service"
	"library-circulation/internal/storage"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "circulation-jobs",
		Short:         "Scheduled maintenance for the library circulation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.dev.yaml", "Path to configuration file")
	root.AddCommand(scheduleCmd(), runCmd(), tokenCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and opens the store every command needs.
func setup(ctx context.Context) (*config.Config, *storage.Backend, *service.Services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, backend, service.New(backend.Store), nil
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run jobs on their cron schedules until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, backend, svcs, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			cronScheduler, err := scheduler.NewScheduler(jobs.NewJobRunner(svcs, cfg))
			if err != nil {
				return err
			}
			cronScheduler.Start()
			logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			logger.Info("Shutting down cronjob scheduler...")
			cronScheduler.Stop()
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	runner := jobs.NewJobRunner(nil, nil)
	return &cobra.Command{
		Use:       "run <job>",
		Short:     "Run one job once and exit",
		Long:      "Run one job once and exit. Jobs: " + strings.Join(runner.JobNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: runner.JobNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, backend, svcs, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			logger.Info("Running job once", "job", args[0])
			return jobs.NewJobRunner(svcs, cfg).Run(args[0])
		},
	}
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Print an access token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, backend, svcs, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			user, err := svcs.Catalog.GetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tm := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
			token, err := tm.GenerateAccessToken(user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
