package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/BugaPunk/WorkflowS-sub001/internal/health"
)

func init() {
	var (
		watch    bool
		interval time.Duration
	)
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Ping the configured KV engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, eng, cfg, log, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			pinger, ok := eng.(health.HealthPinger)
			if !ok {
				return fmt.Errorf("engine %s does not support health pings", cfg.Driver)
			}

			if watch {
				checker := health.NewPingChecker(cfg.Driver, pinger, log)
				// transitions are logged by the checker; run until
				// interrupted
				checker.Start(cmd.Context(), interval)
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.HealthPing(ctx); err != nil {
				return fmt.Errorf("engine %s unhealthy: %w", cfg.Driver, err)
			}
			fmt.Fprintf(os.Stdout, "engine %s healthy\n", cfg.Driver)
			return nil
		},
	}
	healthCmd.Flags().BoolVar(&watch, "watch", false, "keep pinging on an interval and log state changes")
	healthCmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "ping interval when watching")
	rootCmd.AddCommand(healthCmd)
}
