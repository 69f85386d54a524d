package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/BugaPunk/WorkflowS-sub001/internal/docstore"
)

func init() {
	var minAge time.Duration
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Complete or roll back operations interrupted by a crash",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, eng, cfg, log, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			age := cfg.SweepMinAge
			if minAge > 0 {
				age = minAge
			}
			sweeper := docstore.NewSweeper(eng, log, age, s.Repairers()...)
			n, err := sweeper.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "swept %d intent record(s)\n", n)
			return nil
		},
	}
	sweepCmd.Flags().DurationVar(&minAge, "min-age", 0, "Only sweep intents older than this (defaults to WORKFLOWS_SWEEP_MIN_AGE)")
	rootCmd.AddCommand(sweepCmd)
}
